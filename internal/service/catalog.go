package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// Catalog holds the lookup data the ledger and reports need for pickers
// and names.
type Catalog struct {
	Users      []*domain.User
	Clients    []*domain.Client
	Activities []*domain.Activity
	// Assigned lists the activities offered in the ledger: those assigned
	// to at least one client.
	Assigned []domain.Activity
}

// LoadCatalog fetches users, clients and activities concurrently.
func LoadCatalog(ctx context.Context, users UserService, clients ClientService, activities ActivityService) (*Catalog, error) {
	var c Catalog
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := users.List(ctx, false)
		if err != nil {
			return fmt.Errorf("loading users: %w", err)
		}
		c.Users = list
		return nil
	})
	g.Go(func() error {
		list, err := clients.List(ctx)
		if err != nil {
			return fmt.Errorf("loading clients: %w", err)
		}
		c.Clients = list
		return nil
	})
	g.Go(func() error {
		list, err := activities.List(ctx)
		if err != nil {
			return fmt.Errorf("loading activities: %w", err)
		}
		c.Activities = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]domain.Activity, len(c.Activities))
	for i, a := range c.Activities {
		all[i] = *a
	}
	assignedTo := make([]domain.Client, len(c.Clients))
	for i, cl := range c.Clients {
		assignedTo[i] = *cl
	}
	c.Assigned = domain.AssignedActivities(all, assignedTo)
	return &c, nil
}

func (c *Catalog) ClientName(id string) string {
	for _, cl := range c.Clients {
		if cl.ID == id {
			return cl.Name
		}
	}
	return ""
}

func (c *Catalog) ActivityName(id string) string {
	for _, a := range c.Activities {
		if a.ID == id {
			return a.Name
		}
	}
	return ""
}

func (c *Catalog) UserName(id string) string {
	for _, u := range c.Users {
		if u.ID == id {
			return u.Name()
		}
	}
	return ""
}

// ClientByRef finds a client by id or exact name.
func (c *Catalog) ClientByRef(ref string) (*domain.Client, bool) {
	for _, cl := range c.Clients {
		if cl.ID == ref || cl.Name == ref {
			return cl, true
		}
	}
	return nil, false
}

// ActivityByRef finds an activity by id or exact name.
func (c *Catalog) ActivityByRef(ref string) (*domain.Activity, bool) {
	for _, a := range c.Activities {
		if a.ID == ref || a.Name == ref {
			return a, true
		}
	}
	return nil, false
}

// UserByRef finds a user by id or username.
func (c *Catalog) UserByRef(ref string) (*domain.User, bool) {
	for _, u := range c.Users {
		if u.ID == ref || u.Username == ref {
			return u, true
		}
	}
	return nil, false
}

// Decorate fills the display names of e from the catalog.
func (c *Catalog) Decorate(e domain.Entry) domain.Entry {
	if e.ClientName == "" {
		e.ClientName = c.ClientName(e.ClientID)
	}
	if e.ActivityName == "" {
		e.ActivityName = c.ActivityName(e.ActivityID)
	}
	if e.Username == "" {
		e.Username = c.UserName(e.UserID)
	}
	return e
}

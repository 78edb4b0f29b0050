package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/service"
)

// requireCatalogAdmin lets anyone create the first user; after that the
// catalog is managed by admins.
func requireCatalogAdmin(ctx context.Context, app *App, what string) error {
	users, err := app.Users.List(ctx, true)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}
	actor, err := resolveActor(ctx, app)
	if err != nil {
		return err
	}
	return requireAdmin(actor, what)
}

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(app), newUserListCmd(app), newUserArchiveCmd(app))
	return cmd
}

func newUserAddCmd(app *App) *cobra.Command {
	var username, name string
	var admin bool
	var start dateValue
	var lockDay int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "add users"); err != nil {
				return err
			}
			in := service.NewUser{Username: username, DisplayName: name, IsAdmin: admin, StartDate: start.t}
			if !start.set {
				now := app.now().UTC()
				in.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			}
			if cmd.Flags().Changed("lock-day") {
				in.LockDay = &lockDay
			}
			u, err := app.Users.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created user %s %s\n", u.Username, formatter.TruncID(u.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	cmd.Flags().Var(&start, "start", "First day of work (default: today)")
	cmd.Flags().IntVar(&lockDay, "lock-day", domain.DefaultLockDay, "Day of month after which the previous month locks")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newUserListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Users.List(context.Background(), all)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(out(cmd), "No users found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatUsers(users))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived users")
	return cmd
}

func newUserArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive USER",
		Short: "Archive a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "archive users"); err != nil {
				return err
			}
			u, err := resolveUser(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Users.Archive(ctx, u.ID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Archived user %s\n", u.Username)
			return nil
		},
	}
}

func newClientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientAddCmd(app), newClientListCmd(app), newClientRemoveCmd(app))
	return cmd
}

func newClientAddCmd(app *App) *cobra.Command {
	var c domain.Client
	var activities []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "add clients"); err != nil {
				return err
			}
			catalog, err := service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
			if err != nil {
				return err
			}
			c.ActivityIDs, _, err = resolveRefs(activities, "activity", activityLookup(catalog))
			if err != nil {
				return err
			}
			if err := app.Clients.Create(ctx, &c); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created client %s %s\n", c.Name, formatter.TruncID(c.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Name, "name", "", "Client name")
	cmd.Flags().StringVar(&c.ContactPersonName, "contact", "", "Contact person")
	cmd.Flags().StringVar(&c.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&c.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&c.Notes, "notes", "", "Free-form notes")
	cmd.Flags().StringSliceVar(&activities, "activity", nil, "Assigned activity (name or id, repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newClientListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			catalog, err := service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
			if err != nil {
				return err
			}
			if len(catalog.Clients) == 0 {
				fmt.Fprintln(out(cmd), "No clients found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatClients(catalog.Clients, catalog.ActivityName))
			return nil
		},
	}
}

func newClientRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove CLIENT",
		Short: "Delete a client; its entries keep their other fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "remove clients"); err != nil {
				return err
			}
			catalog, err := service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
			if err != nil {
				return err
			}
			c, ok := catalog.ClientByRef(args[0])
			if !ok {
				return fmt.Errorf("unknown client %q", args[0])
			}
			if err := app.Clients.Delete(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed client %s\n", c.Name)
			return nil
		},
	}
}

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activities",
	}
	cmd.AddCommand(newActivityAddCmd(app), newActivityListCmd(app), newActivityRemoveCmd(app))
	return cmd
}

func newActivityAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "add activities"); err != nil {
				return err
			}
			a := &domain.Activity{Name: args[0]}
			if err := app.Activities.Create(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created activity %s %s\n", a.Name, formatter.TruncID(a.ID))
			return nil
		},
	}
}

func newActivityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			activities, err := app.Activities.List(context.Background())
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				fmt.Fprintln(out(cmd), "No activities found.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatActivities(activities))
			return nil
		},
	}
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ACTIVITY",
		Short: "Delete an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := requireCatalogAdmin(ctx, app, "remove activities"); err != nil {
				return err
			}
			activities, err := app.Activities.List(ctx)
			if err != nil {
				return err
			}
			for _, a := range activities {
				if a.ID == args[0] || a.Name == args[0] {
					if err := app.Activities.Delete(ctx, a.ID); err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "Removed activity %s\n", a.Name)
					return nil
				}
			}
			return fmt.Errorf("unknown activity %q", args[0])
		},
	}
}

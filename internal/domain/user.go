package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DefaultLockDay is the day of month up to which the previous month stays open.
const DefaultLockDay = 5

type User struct {
	ID          string
	Username    string
	DisplayName string
	IsAdmin     bool
	StartDate   time.Time
	LockDay     int
	ArchivedAt  *time.Time
	CreatedAt   time.Time
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	return CoalesceStr(u.DisplayName, u.Username)
}

// Validate checks the user fields that storage cannot enforce.
func (u *User) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(u.Username) == "" {
		fields["username"] = "required"
	} else if strings.ContainsAny(u.Username, " \t") {
		fields["username"] = "must not contain whitespace"
	}
	if u.StartDate.IsZero() {
		fields["startDate"] = "required"
	}
	if u.LockDay < 0 || u.LockDay > 28 {
		fields["lockDay"] = fmt.Sprintf("must be between 0 and 28, got %d", u.LockDay)
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "user validation failed", Fields: fields}
	}
	return nil
}

type Client struct {
	ID                string
	Name              string
	ContactPersonName string
	Phone             string
	Address           string
	Email             string
	Notes             string
	ActivityIDs       []string
	CreatedAt         time.Time
}

func (c *Client) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		fields["name"] = "required"
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			fields["email"] = "invalid email address"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "client validation failed", Fields: fields}
	}
	return nil
}

// HasActivity reports whether the activity is assigned to the client.
func (c *Client) HasActivity(activityID string) bool {
	for _, id := range c.ActivityIDs {
		if id == activityID {
			return true
		}
	}
	return false
}

type Activity struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return &ValidationError{Message: "activity validation failed", Fields: map[string]string{"name": "required"}}
	}
	return nil
}

// AssignedActivities returns the activities referenced by at least one
// client, without duplicates, in the order of all.
func AssignedActivities(all []Activity, clients []Client) []Activity {
	assigned := make(map[string]bool)
	for _, c := range clients {
		for _, id := range c.ActivityIDs {
			assigned[id] = true
		}
	}
	seen := make(map[string]bool)
	var out []Activity
	for _, a := range all {
		if assigned[a.ID] && !seen[a.ID] {
			seen[a.ID] = true
			out = append(out, a)
		}
	}
	return out
}

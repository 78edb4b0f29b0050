package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/timesheet/internal/domain"
)

func itoa(n int) string { return strconv.Itoa(n) }

func FormatUsers(users []*domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		role := Dim("user")
		if u.IsAdmin {
			role = StylePurple.Render("admin")
		}
		state := StyleGreen.Render("active")
		if u.ArchivedAt != nil {
			state = Dim("archived")
		}
		rows = append(rows, []string{
			TruncID(u.ID), u.Username, OrDash(u.DisplayName), role,
			u.StartDate.Format(domain.DateLayout), itoa(u.LockDay), state,
		})
	}
	return RenderTable([]string{"ID", "Username", "Name", "Role", "Start", "Lock day", "State"}, rows)
}

// FormatClients lists clients with their assigned activities by name.
func FormatClients(clients []*domain.Client, activityName func(id string) string) string {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		names := make([]string, 0, len(c.ActivityIDs))
		for _, id := range c.ActivityIDs {
			names = append(names, activityName(id))
		}
		rows = append(rows, []string{TruncID(c.ID), c.Name, OrDash(c.Email), OrDash(strings.Join(names, ", "))})
	}
	return RenderTable([]string{"ID", "Name", "Email", "Activities"}, rows)
}

func FormatActivities(activities []*domain.Activity) string {
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{TruncID(a.ID), a.Name})
	}
	return RenderTable([]string{"ID", "Name"}, rows)
}

// FormatEntryLine summarizes a single stored entry.
func FormatEntryLine(e domain.Entry) string {
	times := ""
	if e.StartTime != "" || e.EndTime != "" {
		times = fmt.Sprintf(" %s-%s", e.StartTime, e.EndTime)
	}
	hours := ""
	if e.Duration.Valid {
		hours = " " + FormatHours(e.Duration.Decimal)
	}
	return fmt.Sprintf("%s %s%s%s", TruncID(e.ID), e.DateString(), times, hours)
}

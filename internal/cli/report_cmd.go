package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/export"
	"github.com/alexanderramin/timesheet/internal/report"
	"github.com/alexanderramin/timesheet/internal/service"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reports across users (admins only)",
	}

	cmd.AddCommand(
		newReportMonthsCmd(app),
		newReportClientsCmd(app),
		newReportAdvancedCmd(app),
	)
	return cmd
}

// reportSetup resolves an admin actor and the lookup catalog.
func reportSetup(ctx context.Context, app *App) (*service.Catalog, error) {
	actor, err := resolveActor(ctx, app)
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(actor, "run reports"); err != nil {
		return nil, err
	}
	return service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
}

// resolveRefs maps names or ids to ids and display names.
func resolveRefs(refs []string, kind string, lookup func(string) (id, name string, ok bool)) (ids, names []string, err error) {
	for _, ref := range refs {
		id, name, ok := lookup(ref)
		if !ok {
			return nil, nil, fmt.Errorf("unknown %s %q", kind, ref)
		}
		ids = append(ids, id)
		names = append(names, name)
	}
	return ids, names, nil
}

func clientLookup(c *service.Catalog) func(string) (string, string, bool) {
	return func(ref string) (string, string, bool) {
		cl, ok := c.ClientByRef(ref)
		if !ok {
			return "", "", false
		}
		return cl.ID, cl.Name, true
	}
}

func userLookup(c *service.Catalog) func(string) (string, string, bool) {
	return func(ref string) (string, string, bool) {
		u, ok := c.UserByRef(ref)
		if !ok {
			return "", "", false
		}
		return u.ID, u.Name(), true
	}
}

func activityLookup(c *service.Catalog) func(string) (string, string, bool) {
	return func(ref string) (string, string, bool) {
		a, ok := c.ActivityByRef(ref)
		if !ok {
			return "", "", false
		}
		return a.ID, a.Name, true
	}
}

// single returns the only name, or "" unless exactly one was given.
func single(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

func newReportMonthsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "List months since the first logged entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if _, err := reportSetup(ctx, app); err != nil {
				return err
			}
			first, err := app.Reports.FirstActivityDate(ctx)
			if err != nil {
				return err
			}
			months := calendar.MonthsSince(first, app.now())
			if len(months) == 0 {
				fmt.Fprintln(out(cmd), "Nothing logged yet.")
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatPeriods(months, months[len(months)-1]))
			return nil
		},
	}
}

func newReportClientsCmd(app *App) *cobra.Command {
	var month monthValue
	var clients []string
	var dir string
	var save bool
	order := newOrderValue()

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Entries of one month grouped by client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			catalog, err := reportSetup(ctx, app)
			if err != nil {
				return err
			}
			ids, names, err := resolveRefs(clients, "client", clientLookup(catalog))
			if err != nil {
				return err
			}

			period := month.period
			if !month.set {
				now := app.now().UTC()
				period = domain.NewPeriod(now.Year(), now.Month())
			}
			res, err := app.Reports.FetchFilteredReports(ctx, service.ReportQuery{
				Start:   period.Start(),
				End:     period.End().AddDate(0, 0, -1),
				GroupBy: service.GroupByClient,
				Filters: service.ReportFilters{Clients: ids},
			})
			if err != nil {
				return err
			}
			sections := report.GroupByClient(res.ByClient)

			if save {
				path, err := export.SaveFile(exportDir(app, dir), report.ClientsFilename(names, period), func(w io.Writer) error {
					return export.WriteClients(w, sections)
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Saved %s\n", path)
				return nil
			}

			fmt.Fprintln(out(cmd), formatter.Bold(period.Display))
			fmt.Fprint(out(cmd), formatter.FormatClientSections(sections, order.order))
			return nil
		},
	}

	cmd.Flags().Var(&month, "month", "Month to report (default: current)")
	cmd.Flags().StringSliceVar(&clients, "client", nil, "Only these clients (name or id, repeatable)")
	cmd.Flags().Var(order, "sort", "Sort field, prefix with - for descending")
	cmd.Flags().BoolVar(&save, "export", false, "Write a CSV file instead of printing")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for --export (default: export.dir)")
	return cmd
}

func newReportAdvancedCmd(app *App) *cobra.Command {
	var from, to dateValue
	var clients, users, activities []string
	var groupBy, dir string
	var save bool
	order := newOrderValue()

	cmd := &cobra.Command{
		Use:   "advanced",
		Short: "Entries in a date range with client, user and activity filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			catalog, err := reportSetup(ctx, app)
			if err != nil {
				return err
			}
			if to.t.Before(from.t) {
				return errors.New("--to must not be before --from")
			}
			clientIDs, clientNames, err := resolveRefs(clients, "client", clientLookup(catalog))
			if err != nil {
				return err
			}
			userIDs, userNames, err := resolveRefs(users, "user", userLookup(catalog))
			if err != nil {
				return err
			}
			activityIDs, activityNames, err := resolveRefs(activities, "activity", activityLookup(catalog))
			if err != nil {
				return err
			}

			res, err := app.Reports.FetchFilteredReports(ctx, service.ReportQuery{
				Start:   from.t,
				End:     to.t,
				GroupBy: groupBy,
				Filters: service.ReportFilters{Clients: clientIDs, Users: userIDs, Activities: activityIDs},
			})
			if err != nil {
				return err
			}

			if save {
				name := report.AdvancedFilename(from.t, to.t, single(clientNames), single(userNames), single(activityNames))
				path, err := export.SaveFile(exportDir(app, dir), name, func(w io.Writer) error {
					if groupBy == service.GroupByClient {
						return export.WriteClients(w, report.GroupByClient(res.ByClient))
					}
					return export.WriteAdvanced(w, report.SortEntries(res.Entries, order.order))
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Saved %s\n", path)
				return nil
			}

			if groupBy == service.GroupByClient {
				fmt.Fprint(out(cmd), formatter.FormatClientSections(report.GroupByClient(res.ByClient), order.order))
				return nil
			}
			if len(res.Entries) == 0 {
				fmt.Fprintln(out(cmd), formatter.Dim("No entries for this selection."))
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatEntries(res.Entries, order.order, true))
			return nil
		},
	}

	cmd.Flags().Var(&from, "from", "First day (inclusive)")
	cmd.Flags().Var(&to, "to", "Last day (inclusive)")
	cmd.Flags().StringSliceVar(&clients, "client", nil, "Only these clients (name or id, repeatable)")
	cmd.Flags().StringSliceVar(&users, "user", nil, "Only these users (username or id, repeatable)")
	cmd.Flags().StringSliceVar(&activities, "activity", nil, "Only these activities (name or id, repeatable)")
	cmd.Flags().StringVar(&groupBy, "group-by", "", `Group entries ("client")`)
	cmd.Flags().Var(order, "sort", "Sort field, prefix with - for descending")
	cmd.Flags().BoolVar(&save, "export", false, "Write a CSV file instead of printing")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory for --export (default: export.dir)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

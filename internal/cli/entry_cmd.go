package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/service"
)

// entryFlags are the editable entry fields as command flags. Only flags
// given on the command line change a field.
type entryFlags struct {
	date     dateValue
	start    string
	end      string
	hours    string
	client   string
	activity string
	notes    string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&f.date, "date", "Entry date")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&f.hours, "hours", "", "Duration in decimal hours")
	cmd.Flags().StringVar(&f.client, "client", "", "Client name or id")
	cmd.Flags().StringVar(&f.activity, "activity", "", "Activity name or id")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
}

func (f *entryFlags) apply(cmd *cobra.Command, catalog *service.Catalog, base domain.EntryFields) (domain.EntryFields, error) {
	changed := cmd.Flags().Changed
	if changed("date") {
		base.Date = f.date.t
	}
	if changed("start") {
		base.StartTime = f.start
	}
	if changed("end") {
		base.EndTime = f.end
	}
	if changed("hours") {
		d, err := domain.ParseHours(f.hours)
		if err != nil {
			return base, fmt.Errorf("invalid hours %q: %w", f.hours, err)
		}
		base.Duration = d
	}
	if changed("client") {
		base.ClientID = ""
		if f.client != "" {
			c, ok := catalog.ClientByRef(f.client)
			if !ok {
				return base, fmt.Errorf("unknown client %q", f.client)
			}
			base.ClientID = c.ID
		}
	}
	if changed("activity") {
		base.ActivityID = ""
		if f.activity != "" {
			a, ok := catalog.ActivityByRef(f.activity)
			if !ok {
				return base, fmt.Errorf("unknown activity %q", f.activity)
			}
			base.ActivityID = a.ID
		}
	}
	if changed("notes") {
		base.Notes = f.notes
	}
	return base, nil
}

// findRow resolves a stored entry id or a unique prefix of one.
func findRow(session *ledger.Session, ref string) (ledger.Row, error) {
	if row, ok := session.Row(ref); ok {
		return row, nil
	}
	var matches []ledger.Row
	for _, r := range session.Rows() {
		if r.Kind() == ledger.KindPersisted && strings.HasPrefix(r.Key(), ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return ledger.Row{}, fmt.Errorf("entry %q not found in %s", ref, session.Period().Key())
	case 1:
		return matches[0], nil
	default:
		return ledger.Row{}, fmt.Errorf("entry id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func newEntryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Add, change and remove single entries",
	}

	cmd.AddCommand(
		newEntryAddCmd(app),
		newEntryUpdateCmd(app),
		newEntryCopyCmd(app),
		newEntryRemoveCmd(app),
	)
	return cmd
}

// entryEdit opens the ledger of the month holding the entry, then runs fn
// against the session.
func entryEdit(cmd *cobra.Command, app *App, forUser string, month monthValue,
	fn func(ctx context.Context, session *ledger.Session, catalog *service.Catalog) (ledger.Row, error),
) error {
	ctx := context.Background()
	_, session, err := loadLedger(ctx, app, forUser, month, false)
	if err != nil {
		return err
	}
	catalog, err := service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
	if err != nil {
		return err
	}
	row, err := fn(ctx, session, catalog)
	if err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), formatter.FormatEntryLine(row.Entry))
	return nil
}

func newEntryAddCmd(app *App) *cobra.Command {
	var forUser string
	var fields entryFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			var month monthValue
			if err := month.Set(fields.date.t.Format("2006-01")); err != nil {
				return err
			}
			return entryEdit(cmd, app, forUser, month, func(ctx context.Context, session *ledger.Session, catalog *service.Catalog) (ledger.Row, error) {
				row, err := session.AddBlank()
				if err != nil {
					return row, err
				}
				f, err := fields.apply(cmd, catalog, row.Entry.Fields())
				if err != nil {
					return row, err
				}
				if _, err := session.Edit(row.Key(), f); err != nil {
					return row, err
				}
				return session.Save(ctx, row.Key())
			})
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "User to add the entry for (admins only)")
	fields.register(cmd)
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newEntryUpdateCmd(app *App) *cobra.Command {
	var forUser string
	var month monthValue
	var fields entryFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a stored entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return entryEdit(cmd, app, forUser, month, func(ctx context.Context, session *ledger.Session, catalog *service.Catalog) (ledger.Row, error) {
				row, err := findRow(session, args[0])
				if err != nil {
					return row, err
				}
				f, err := fields.apply(cmd, catalog, row.Entry.Fields())
				if err != nil {
					return row, err
				}
				if _, err := session.Edit(row.Key(), f); err != nil {
					return row, err
				}
				return session.Save(ctx, row.Key())
			})
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "Owner of the entry (admins only)")
	cmd.Flags().Var(&month, "month", "Month holding the entry (default: current)")
	fields.register(cmd)
	return cmd
}

func newEntryCopyCmd(app *App) *cobra.Command {
	var forUser string
	var month monthValue
	var fields entryFlags

	cmd := &cobra.Command{
		Use:   "copy ID",
		Short: "Duplicate a stored entry with changes",
		Long: "Duplicate a stored entry. The copy must differ from the original " +
			"in its date, start time or end time.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return entryEdit(cmd, app, forUser, month, func(ctx context.Context, session *ledger.Session, catalog *service.Catalog) (ledger.Row, error) {
				orig, err := findRow(session, args[0])
				if err != nil {
					return orig, err
				}
				row, err := session.Duplicate(orig.Key())
				if err != nil {
					return row, err
				}
				f, err := fields.apply(cmd, catalog, row.Entry.Fields())
				if err != nil {
					return row, err
				}
				if _, err := session.Edit(row.Key(), f); err != nil {
					return row, err
				}
				return session.Save(ctx, row.Key())
			})
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "Owner of the entry (admins only)")
	cmd.Flags().Var(&month, "month", "Month holding the entry (default: current)")
	fields.register(cmd)
	return cmd
}

func newEntryRemoveCmd(app *App) *cobra.Command {
	var forUser string
	var month monthValue

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Delete a stored entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, session, err := loadLedger(ctx, app, forUser, month, false)
			if err != nil {
				return err
			}
			row, err := findRow(session, args[0])
			if err != nil {
				return err
			}
			if err := session.Delete(ctx, row.Key()); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Removed %s\n", formatter.FormatEntryLine(row.Entry))
			return nil
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "Owner of the entry (admins only)")
	cmd.Flags().Var(&month, "month", "Month holding the entry (default: current)")
	return cmd
}

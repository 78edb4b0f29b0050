package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/cli/formatter"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/export"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/report"
	"github.com/alexanderramin/timesheet/internal/service"
)

// newSession builds a ledger session acting as actor.
func newSession(app *App, actor *domain.User, showEmptyDays bool) *ledger.Session {
	opts := []ledger.Option{
		ledger.WithClock(app.now),
		ledger.WithLogger(app.logger()),
	}
	if showEmptyDays {
		opts = append(opts, ledger.WithPlaceholders(app.config().Ledger.Weekdays()))
	}
	return ledger.NewSession(service.LedgerStore(app.Entries, actor), opts...)
}

// ledgerTarget bundles what every ledger command resolves first.
type ledgerTarget struct {
	actor, owner *domain.User
	periods      []domain.Period
	period       domain.Period
}

func resolveLedgerTarget(ctx context.Context, app *App, forUser string, month monthValue) (*ledgerTarget, error) {
	actor, err := resolveActor(ctx, app)
	if err != nil {
		return nil, err
	}
	owner, err := resolveOwner(ctx, app, actor, forUser)
	if err != nil {
		return nil, err
	}
	periods := ledgerPeriods(app, actor, owner)
	period, err := pickPeriod(app, owner, periods, month)
	if err != nil {
		return nil, err
	}
	return &ledgerTarget{actor: actor, owner: owner, periods: periods, period: period}, nil
}

func newLedgerCmd(app *App) *cobra.Command {
	var forUser string
	var month monthValue

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Edit a month of entries interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive == nil || !app.IsInteractive() {
				return errors.New("the ledger editor needs a terminal; use 'timesheet ledger show' instead")
			}
			ctx := context.Background()
			target, err := resolveLedgerTarget(ctx, app, forUser, month)
			if err != nil {
				return err
			}
			catalog, err := service.LoadCatalog(ctx, app.Users, app.Clients, app.Activities)
			if err != nil {
				return err
			}
			m := newLedgerModel(app, target, catalog)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "User whose ledger to open (admins only)")
	cmd.Flags().Var(&month, "month", "Month to open (default: current)")

	cmd.AddCommand(
		newLedgerShowCmd(app),
		newLedgerExportCmd(app),
	)
	return cmd
}

// loadLedger opens a session on the target month.
func loadLedger(ctx context.Context, app *App, forUser string, month monthValue, showEmpty bool) (*ledgerTarget, *ledger.Session, error) {
	target, err := resolveLedgerTarget(ctx, app, forUser, month)
	if err != nil {
		return nil, nil, err
	}
	session := newSession(app, target.actor, showEmpty)
	if err := session.Load(ctx, target.period, *target.owner); err != nil {
		return nil, nil, err
	}
	return target, session, nil
}

func newLedgerShowCmd(app *App) *cobra.Command {
	var forUser string
	var month monthValue
	var emptyDays bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a month of entries with its totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if !cmd.Flags().Changed("empty-days") {
				emptyDays = app.config().Ledger.ShowEmptyDays
			}
			target, session, err := loadLedger(ctx, app, forUser, month, emptyDays)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatLedger(target.period, target.owner.Name(), session.Rows(), session.Summary()))
			return nil
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "User whose ledger to show (admins only)")
	cmd.Flags().Var(&month, "month", "Month to show (default: current)")
	cmd.Flags().BoolVar(&emptyDays, "empty-days", false, "Show work days without entries")
	return cmd
}

func newLedgerExportCmd(app *App) *cobra.Command {
	var forUser, dir string
	var month monthValue

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month of entries to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target, session, err := loadLedger(ctx, app, forUser, month, false)
			if err != nil {
				return err
			}
			path, err := saveLedgerCSV(app, dir, target.period, session)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "User whose ledger to export (admins only)")
	cmd.Flags().Var(&month, "month", "Month to export (default: current)")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write to (default: export.dir)")
	return cmd
}

func exportDir(app *App, dir string) string {
	if dir != "" {
		return dir
	}
	return app.config().Export.Dir
}

func saveLedgerCSV(app *App, dir string, period domain.Period, session *ledger.Session) (string, error) {
	entries, summary := session.Entries(), session.Summary()
	return export.SaveFile(exportDir(app, dir), report.MonthFilename(period), func(w io.Writer) error {
		return export.WriteLedger(w, entries, summary)
	})
}

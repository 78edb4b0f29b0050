package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/config"
	"github.com/alexanderramin/timesheet/internal/service"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Entries    service.EntryService
	Reports    service.ReportService
	Users      service.UserService
	Clients    service.ClientService
	Activities service.ActivityService

	Config *config.Config
	Logger *slog.Logger

	// ActingUser is the username or id commands run as.
	ActingUser string
	// Now is the clock used for month lists and new ledger rows.
	Now func() time.Time
	// IsInteractive reports whether stdin is a terminal the ledger editor
	// can take over.
	IsInteractive func() bool
}

func (app *App) now() time.Time {
	if app.Now == nil {
		return time.Now()
	}
	return app.Now()
}

func (app *App) logger() *slog.Logger {
	if app.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return app.Logger
}

func (app *App) config() *config.Config {
	if app.Config == nil {
		cfg := config.DefaultConfig()
		app.Config = &cfg
	}
	return app.Config
}

// NewRootCmd creates the top-level "timesheet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "Monthly time-tracking ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	acting := app.ActingUser
	if acting == "" {
		acting = app.config().User.Name
	}
	root.PersistentFlags().StringVar(&app.ActingUser, "as", acting, "Username or id to act as")

	root.AddCommand(
		newMonthsCmd(app),
		newLedgerCmd(app),
		newEntryCmd(app),
		newReportCmd(app),
		newUserCmd(app),
		newClientCmd(app),
		newActivityCmd(app),
	)

	return root
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

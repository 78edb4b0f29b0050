package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/cli/formatter"
)

func newMonthsCmd(app *App) *cobra.Command {
	var forUser string

	cmd := &cobra.Command{
		Use:   "months",
		Short: "List the months of a ledger and whether they are locked",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			actor, err := resolveActor(ctx, app)
			if err != nil {
				return err
			}
			owner, err := resolveOwner(ctx, app, actor, forUser)
			if err != nil {
				return err
			}

			periods := ledgerPeriods(app, actor, owner)
			if len(periods) == 0 {
				fmt.Fprintln(out(cmd), "No months available.")
				return nil
			}
			current, _ := calendar.Current(periods, app.now())
			fmt.Fprintln(out(cmd), formatter.Header(owner.Name()))
			fmt.Fprint(out(cmd), formatter.FormatPeriods(periods, current))
			return nil
		},
	}

	cmd.Flags().StringVar(&forUser, "for", "", "User whose months to list (admins only)")
	return cmd
}

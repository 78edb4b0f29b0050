package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/repository"
	"github.com/alexanderramin/timesheet/internal/service"
)

var errNoActingUser = errors.New("no acting user: pass --as or set user.name in the config file")

func resolveUser(ctx context.Context, app *App, ref string) (*domain.User, error) {
	u, err := app.Users.Resolve(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("user %q not found", ref)
	}
	return u, err
}

// resolveActor loads the user the command runs as.
func resolveActor(ctx context.Context, app *App) (*domain.User, error) {
	if app.ActingUser == "" {
		return nil, errNoActingUser
	}
	u, err := resolveUser(ctx, app, app.ActingUser)
	if err != nil {
		return nil, err
	}
	if u.ArchivedAt != nil {
		return nil, fmt.Errorf("user %q is archived", u.Username)
	}
	return u, nil
}

// resolveOwner returns whose ledger a command works on. Only admins may
// name another user.
func resolveOwner(ctx context.Context, app *App, actor *domain.User, ref string) (*domain.User, error) {
	if ref == "" || ref == actor.ID || ref == actor.Username {
		return actor, nil
	}
	if !actor.IsAdmin {
		return nil, fmt.Errorf("only admins can open another user's ledger: %w", service.ErrForbidden)
	}
	return resolveUser(ctx, app, ref)
}

func requireAdmin(actor *domain.User, what string) error {
	if !actor.IsAdmin {
		return fmt.Errorf("only admins can %s: %w", what, service.ErrForbidden)
	}
	return nil
}

// ledgerPeriods lists owner's months as seen by actor. Admins see every
// month unlocked.
func ledgerPeriods(app *App, actor, owner *domain.User) []domain.Period {
	return calendar.Periods(*owner, app.now(), actor.IsAdmin)
}

// pickPeriod returns the requested month from periods, or the current one
// when month is unset.
func pickPeriod(app *App, owner *domain.User, periods []domain.Period, month monthValue) (domain.Period, error) {
	if len(periods) == 0 {
		return domain.Period{}, fmt.Errorf("user %q has no start date", owner.Username)
	}
	if !month.set {
		p, _ := calendar.Current(periods, app.now())
		return p, nil
	}
	p, ok := calendar.Find(periods, month.period.Year, month.period.Month)
	if !ok {
		return domain.Period{}, fmt.Errorf("%s is outside %s's ledger (%s to %s)",
			month.period.Key(), owner.Name(), periods[0].Key(), periods[len(periods)-1].Key())
	}
	return p, nil
}

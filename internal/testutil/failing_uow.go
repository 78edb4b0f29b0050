package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/timesheet/internal/db"
)

// FailOnNthExecUoW is a test UoW that injects Err into a transaction: on
// the FailOn-th ExecContext call (counted from 1), or, when FailOnQuery is
// set, on the first ExecContext whose SQL contains it. Reads pass through.
// Executed records the statements that ran before the failure.
type FailOnNthExecUoW struct {
	DB          *sql.DB
	FailOn      int
	FailOnQuery string
	Err         error

	mu       sync.Mutex
	Executed []string
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingTx{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	uow   *FailOnNthExecUoW
	count int
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	u := f.uow
	u.mu.Lock()
	f.count++
	fail := f.count == u.FailOn || (u.FailOnQuery != "" && strings.Contains(query, u.FailOnQuery))
	if !fail {
		u.Executed = append(u.Executed, query)
	}
	u.mu.Unlock()
	if fail {
		return nil, u.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

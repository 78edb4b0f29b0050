package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ConflictError reports a unique constraint violation. It matches
// ErrConflict with errors.Is.
type ConflictError struct {
	Table   string
	Columns []string
	Err     error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: duplicate %s: %v", e.Table, strings.Join(e.Columns, ", "), e.Err)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Err }

const uniqueMarker = "UNIQUE constraint failed: "

// asConflict converts a SQLite unique constraint failure into a
// *ConflictError and returns other errors unchanged.
func asConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	i := strings.Index(msg, uniqueMarker)
	if i < 0 {
		return err
	}
	cols := msg[i+len(uniqueMarker):]
	if j := strings.Index(cols, " ("); j >= 0 {
		cols = cols[:j]
	}
	ce := &ConflictError{Err: err}
	for _, qualified := range strings.Split(cols, ",") {
		table, column, ok := strings.Cut(strings.TrimSpace(qualified), ".")
		if !ok {
			continue
		}
		ce.Table = table
		ce.Columns = append(ce.Columns, column)
	}
	return ce
}

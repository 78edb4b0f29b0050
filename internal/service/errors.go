package service

import (
	"errors"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/repository"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrNoActor   = errors.New("no acting user")
)

// columnFields maps storage columns to the field names shown to users.
var columnFields = map[string]string{
	"username":   "username",
	"name":       "name",
	"date":       domain.FieldDate,
	"start_time": domain.FieldStartTime,
}

// conflictToValidation turns a unique constraint violation into a
// validation error marking each user-facing column as already existing.
// Other errors are returned unchanged.
func conflictToValidation(err error, message string) error {
	var ce *repository.ConflictError
	if !errors.As(err, &ce) {
		return err
	}
	fields := make(map[string]string)
	for _, col := range ce.Columns {
		if f, ok := columnFields[col]; ok {
			fields[f] = "already exists"
		}
	}
	if len(fields) == 0 {
		fields["id"] = "already exists"
	}
	return &domain.ValidationError{Message: message, Fields: fields}
}

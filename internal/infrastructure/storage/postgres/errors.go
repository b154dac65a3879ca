package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"confhub/internal/core/apperror"
)

// SQLSTATE codes mapped to application errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// PgError extracts the server error from err.
func PgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsUniqueViolation reports a 23505 error.
func IsUniqueViolation(err error) bool {
	pgErr, ok := PgError(err)
	return ok && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports a 23503 error.
func IsForeignKeyViolation(err error) bool {
	pgErr, ok := PgError(err)
	return ok && pgErr.Code == codeForeignKeyViolation
}

// TranslateWriteError maps constraint violations on entity to AppErrors.
// field and value describe the unique key for duplicate messages.
// Other errors are returned unchanged.
func TranslateWriteError(err error, entity, field, value string) error {
	pgErr, ok := PgError(err)
	if !ok {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		if field == "" {
			field = constraintField(pgErr.ConstraintName)
		}
		return apperror.NewDuplicate(entity, field, value).WithCause(err)
	case codeForeignKeyViolation:
		return apperror.NewConflict(entity+" is referenced by other records").
			WithDetail("entity", entity).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeCheckViolation:
		return apperror.NewFieldError(entity+" violates a constraint",
			checkField(pgErr.TableName, pgErr.ConstraintName), "out of range").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}

// checkField recovers the column from Postgres' default check names,
// <table>_<column>_check.
func checkField(table, constraint string) string {
	name := strings.TrimSuffix(constraint, "_check")
	if table != "" {
		name = strings.TrimPrefix(name, table+"_")
	}
	return name
}

// constraintField guesses the column from names like stores_items_code_key.
func constraintField(constraint string) string {
	name := strings.TrimSuffix(strings.TrimSuffix(constraint, "_key"), "_idx")
	if i := strings.LastIndex(name, "_"); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}

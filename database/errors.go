package database

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "github.com/kbukum/errkit/errors"
)

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}

// IsNotFoundError reports whether a single-row query matched nothing.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsDuplicateError reports a UNIQUE or PRIMARY KEY constraint violation.
func IsDuplicateError(err error) bool {
	code, ok := sqliteCode(err)
	return ok && (code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

// IsBusyError reports lock contention that a retry may resolve.
func IsBusyError(err error) bool {
	code, ok := sqliteCode(err)
	if !ok {
		return false
	}
	primary := code & 0xff
	return primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED
}

// FromDatabase converts a database error to an AppError. Unknown failures
// become Internal with the driver error kept as cause.
func FromDatabase(err error, resource string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	switch {
	case IsNotFoundError(err):
		return apperrors.NotFound(fmt.Sprintf("The requested %s could not be found.", resource)).WithCause(err)
	case IsDuplicateError(err):
		return apperrors.DuplicateResource(fmt.Sprintf("A %s with these details already exists.", resource)).WithCause(err)
	case IsBusyError(err):
		return apperrors.Internal("Database is busy. Please try again.").WithCause(err)
	default:
		return apperrors.Internal("").WithCause(err)
	}
}

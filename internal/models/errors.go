package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// EmailAlreadyExistsError represents an email uniqueness violation on usuarios.correo
type EmailAlreadyExistsError struct {
	Correo  string
	Message string
}

func (e *EmailAlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("email %s already registered", e.Correo)
}

// IsEmailConstraintError checks if an error is a PostgreSQL unique constraint
// violation on the email column. Returns the error wrapped as
// EmailAlreadyExistsError if it matches, or nil otherwise.
func IsEmailConstraintError(err error) *EmailAlreadyExistsError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE 23505 = unique_violation
		if pgErr.Code == "23505" {
			constraintName := strings.ToLower(pgErr.ConstraintName)
			if strings.Contains(constraintName, "correo") {
				return &EmailAlreadyExistsError{Message: "email already registered"}
			}
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "correo") && (strings.Contains(errMsg, "unique") || strings.Contains(errMsg, "duplicate")) {
		return &EmailAlreadyExistsError{Message: "email already registered"}
	}

	return nil
}

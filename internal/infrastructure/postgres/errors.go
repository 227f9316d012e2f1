package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-tracking/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateSerializationFailure = "40001"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

// isLockConflict indica si la base abortó la sentencia por contención de bloqueos.
func isLockConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case sqlStateLockNotAvailable, sqlStateDeadlockDetected, sqlStateSerializationFailure:
		return true
	}
	return false
}

// wrapErr clasifica un error del driver dentro de la taxonomía del dominio.
// La cancelación del contexto se propaga tal cual para que el llamador la reconozca.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case isLockConflict(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConcurrentModification, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageFailure, err)
	}
}

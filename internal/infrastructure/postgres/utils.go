package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/farmstock-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila sigue referenciada (o la referencia no existe).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// checkViolation 23514 traducido a error de dominio; las restricciones de cantidad dan
// ErrInvalidQuantity. nil si err no es una violación CHECK.
func checkViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23514" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "quantity") {
		return domain.ErrInvalidQuantity
	}
	return domain.ErrInvalidInput
}

// isTransient errores que justifican reintentar la transacción completa: serialización, deadlock,
// timeout de lock, caída del servidor o de la conexión.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57P01": // admin_shutdown
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08") // connection_exception
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// wrapErr envuelve el error con la operación; los transitorios además coinciden con domain.ErrTransientStore.
// La cancelación del contexto del llamador se propaga tal cual.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isTransient(err) {
		return domain.Transient(op, err)
	}
	if derr := checkViolation(err); derr != nil {
		return fmt.Errorf("%s: %w: %w", op, derr, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

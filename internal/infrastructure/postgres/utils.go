package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: la fila referenciada no existe.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// malformed envuelve un error de validación de una fila leída.
func malformed(table, id string, err error) error {
	return fmt.Errorf("%s %s: %w: %v", table, id, domain.ErrMalformedRow, err)
}

// incomeTypes tipos que suman al saldo; el signo se decide en Go y se pasa como parámetro.
func incomeTypes() []string {
	var out []string
	for _, t := range entity.AllMovementTypes {
		if t.Sign() > 0 {
			out = append(out, string(t))
		}
	}
	return out
}

// isUUID evita consultar columnas UUID con identificadores que Postgres rechazaría (22P02).
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

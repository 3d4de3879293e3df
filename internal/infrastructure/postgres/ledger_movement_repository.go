package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LedgerMovementRepository = (*LedgerMovementRepo)(nil)

// LedgerMovementRepo implementación de LedgerMovementRepository (pool o tx).
// Solo inserta y lee: la tabla rechaza UPDATE y DELETE.
type LedgerMovementRepo struct {
	q Querier
}

// NewLedgerMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerMovementRepository(q Querier) *LedgerMovementRepo {
	return &LedgerMovementRepo{q: q}
}

const movementColumns = `id::text, account_id::text, operation_id, lead_id, type, currency, amount_original,
	exchange_rate, amount_usd, method, reference, created_by, created_at`

func (r *LedgerMovementRepo) Create(ctx context.Context, m *entity.LedgerMovement) error {
	query := `
		INSERT INTO ledger_movements (id, account_id, operation_id, lead_id, type, currency,
			amount_original, exchange_rate, amount_usd, method, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.AccountID, m.OperationID, m.LeadID, string(m.Type), string(m.Currency),
		m.AmountOriginal, m.ExchangeRate, m.AmountUSD, string(m.Method), m.Reference,
		m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("insert ledger movement: %w", err)
	}
	return nil
}

func (r *LedgerMovementRepo) GetByID(ctx context.Context, id string) (*entity.LedgerMovement, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM ledger_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// SumSignedUSD suma firmada en USD y cantidad de movimientos de la cuenta en [from, to).
func (r *LedgerMovementRepo) SumSignedUSD(ctx context.Context, accountID string, from, to *time.Time) (decimal.Decimal, int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = ANY($2) THEN amount_usd ELSE -amount_usd END), 0),
		       COUNT(*)
		FROM ledger_movements
		WHERE account_id = $1
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)`
	var (
		sum   decimal.Decimal
		count int64
	)
	if err := r.q.QueryRow(ctx, query, accountID, incomeTypes(), from, to).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum ledger movements: %w", err)
	}
	return sum, count, nil
}

func (r *LedgerMovementRepo) ListByAccount(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerMovement, error) {
	if !isUUID(accountID) {
		return nil, nil
	}
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`
	return r.list(ctx, query, accountID, from, to, limit, offset)
}

// ListForAccounts trae en una sola consulta los movimientos de varias cuentas en
// [from, to), ordenados por fecha. from nil = desde el inicio.
func (r *LedgerMovementRepo) ListForAccounts(ctx context.Context, accountIDs []string, from *time.Time, to time.Time) ([]*entity.LedgerMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements
		WHERE account_id::text = ANY($1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND created_at < $3
		ORDER BY created_at, id`
	return r.list(ctx, query, accountIDs, from, to)
}

func (r *LedgerMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.LedgerMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.LedgerMovement, error) {
	var (
		m                       entity.LedgerMovement
		typ, currency, method   string
		accountID, opID, leadID *string
		rate                    decimal.NullDecimal
	)
	err := row.Scan(&m.ID, &accountID, &opID, &leadID, &typ, &currency, &m.AmountOriginal,
		&rate, &m.AmountUSD, &method, &m.Reference, &m.CreatedBy, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ledger movement: %w", err)
	}
	m.AccountID, m.OperationID, m.LeadID = accountID, opID, leadID
	m.Type = entity.MovementType(typ)
	m.Currency = entity.Currency(currency)
	m.Method = entity.PaymentMethod(method)
	if rate.Valid {
		m.ExchangeRate = &rate.Decimal
	}
	if err := m.Validate(); err != nil {
		return nil, malformed("ledger_movements", m.ID, err)
	}
	return &m, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.FinancialAccountRepository = (*FinancialAccountRepo)(nil)

// FinancialAccountRepo implementación de FinancialAccountRepository (pool o tx).
type FinancialAccountRepo struct {
	q Querier
}

// NewFinancialAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFinancialAccountRepository(q Querier) *FinancialAccountRepo {
	return &FinancialAccountRepo{q: q}
}

const accountColumns = `id::text, agency_id, name, currency, initial_balance, initial_rate,
	initial_balance_usd, is_active, created_at, updated_at`

func (r *FinancialAccountRepo) Create(ctx context.Context, a *entity.FinancialAccount) error {
	query := `
		INSERT INTO financial_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.AgencyID, a.Name, string(a.Currency), a.InitialBalance, a.InitialRate,
		a.InitialBalanceUSD, a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert financial account: %w", err)
	}
	return nil
}

func (r *FinancialAccountRepo) GetByID(ctx context.Context, id string) (*entity.FinancialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate obtiene la cuenta y bloquea su fila hasta el fin de la transacción
// (SELECT FOR UPDATE). Serializa los egresos concurrentes de una misma cuenta.
func (r *FinancialAccountRepo) GetForUpdate(ctx context.Context, id string) (*entity.FinancialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *FinancialAccountRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.FinancialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE id::text = ANY($1) ORDER BY id`
	return r.list(ctx, query, ids)
}

func (r *FinancialAccountRepo) ListActive(ctx context.Context) ([]*entity.FinancialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE is_active ORDER BY id`
	return r.list(ctx, query)
}

func (r *FinancialAccountRepo) UpdateMetadata(ctx context.Context, id, name string, isActive bool) error {
	query := `UPDATE financial_accounts SET name = $2, is_active = $3, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, name, isActive)
	if err != nil {
		return fmt.Errorf("update financial account: %w", err)
	}
	return nil
}

func (r *FinancialAccountRepo) getOne(ctx context.Context, query, id string) (*entity.FinancialAccount, error) {
	if !isUUID(id) {
		return nil, nil
	}
	a, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *FinancialAccountRepo) list(ctx context.Context, query string, args ...any) ([]*entity.FinancialAccount, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list financial accounts: %w", err)
	}
	defer rows.Close()
	var out []*entity.FinancialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (*entity.FinancialAccount, error) {
	var (
		a        entity.FinancialAccount
		currency string
		rate     decimal.NullDecimal
	)
	err := row.Scan(&a.ID, &a.AgencyID, &a.Name, &currency, &a.InitialBalance, &rate,
		&a.InitialBalanceUSD, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan financial account: %w", err)
	}
	a.Currency = entity.Currency(currency)
	if rate.Valid {
		a.InitialRate = &rate.Decimal
	}
	if err := a.Validate(); err != nil {
		return nil, malformed("financial_accounts", a.ID, err)
	}
	return &a, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

var _ repository.IVARecordRepository = (*IVARecordRepo)(nil)

// IVARecordRepo tabla iva_records, única por (operation_id, direction).
type IVARecordRepo struct {
	q Querier
}

// NewIVARecordRepository construye el adaptador.
func NewIVARecordRepository(q Querier) *IVARecordRepo {
	return &IVARecordRepo{q: q}
}

func (r *IVARecordRepo) GetByOperation(ctx context.Context, operationID, direction string) (*entity.IVARecord, error) {
	query := `
		SELECT id::text, direction, operation_id, operator_id, currency, gross_amount, net_amount,
		       iva_rate, iva_amount, exchange_rate, iva_amount_usd, reference_date, created_at
		FROM iva_records
		WHERE operation_id = $1 AND direction = $2`
	var (
		rec      entity.IVARecord
		currency string
	)
	err := r.q.QueryRow(ctx, query, operationID, direction).Scan(
		&rec.ID, &rec.Direction, &rec.OperationID, &rec.OperatorID, &currency,
		&rec.GrossAmount, &rec.NetAmount, &rec.IVARate, &rec.IVAAmount,
		&rec.ExchangeRate, &rec.IVAAmountUSD, &rec.ReferenceDate, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get iva record: %w", err)
	}
	rec.Currency = entity.Currency(currency)
	if _, err := entity.ParseCurrency(currency); err != nil {
		return nil, malformed("iva_records", rec.ID, err)
	}
	return &rec, nil
}

// CreateIfAbsent INSERT ... ON CONFLICT DO NOTHING: si otra petición insertó antes,
// devuelve created=false sin error.
func (r *IVARecordRepo) CreateIfAbsent(ctx context.Context, rec *entity.IVARecord) (bool, error) {
	query := `
		INSERT INTO iva_records (id, direction, operation_id, operator_id, currency, gross_amount,
			net_amount, iva_rate, iva_amount, exchange_rate, iva_amount_usd, reference_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (operation_id, direction) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		rec.ID, rec.Direction, rec.OperationID, rec.OperatorID, string(rec.Currency),
		rec.GrossAmount, rec.NetAmount, rec.IVARate, rec.IVAAmount, rec.ExchangeRate,
		rec.IVAAmountUSD, rec.ReferenceDate, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert iva record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

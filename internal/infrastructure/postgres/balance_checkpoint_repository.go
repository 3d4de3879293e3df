package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/repository"
)

var _ repository.BalanceCheckpointRepository = (*BalanceCheckpointRepo)(nil)

// BalanceCheckpointRepo tabla balance_checkpoints (saldo al cierre de cada día).
type BalanceCheckpointRepo struct {
	q Querier
}

// NewBalanceCheckpointRepository construye el adaptador.
func NewBalanceCheckpointRepository(q Querier) *BalanceCheckpointRepo {
	return &BalanceCheckpointRepo{q: q}
}

// LatestBefore devuelve, por cuenta, el último checkpoint con fecha estrictamente anterior a day.
func (r *BalanceCheckpointRepo) LatestBefore(ctx context.Context, accountIDs []string, day time.Time) (map[string]*entity.BalanceCheckpoint, error) {
	query := `
		SELECT DISTINCT ON (account_id)
		       account_id::text, checkpoint_date, balance_usd, movement_count, created_at
		FROM balance_checkpoints
		WHERE account_id::text = ANY($1) AND checkpoint_date < $2
		ORDER BY account_id, checkpoint_date DESC`
	rows, err := r.q.Query(ctx, query, accountIDs, day)
	if err != nil {
		return nil, fmt.Errorf("latest checkpoints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*entity.BalanceCheckpoint)
	for rows.Next() {
		var cp entity.BalanceCheckpoint
		if err := rows.Scan(&cp.AccountID, &cp.CheckpointDate, &cp.BalanceUSD, &cp.MovementCount, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		out[cp.AccountID] = &cp
	}
	return out, rows.Err()
}

func (r *BalanceCheckpointRepo) Upsert(ctx context.Context, cp *entity.BalanceCheckpoint) error {
	query := `
		INSERT INTO balance_checkpoints (account_id, checkpoint_date, balance_usd, movement_count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, checkpoint_date)
		DO UPDATE SET balance_usd = EXCLUDED.balance_usd,
		              movement_count = EXCLUDED.movement_count,
		              created_at = EXCLUDED.created_at`
	_, err := r.q.Exec(ctx, query, cp.AccountID, cp.CheckpointDate, cp.BalanceUSD, cp.MovementCount, cp.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}
	return nil
}

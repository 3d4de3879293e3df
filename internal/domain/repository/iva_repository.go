package repository

import (
	"context"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// IVARecordRepository registros de IVA, únicos por (operation_id, direction).
type IVARecordRepository interface {
	GetByOperation(ctx context.Context, operationID, direction string) (*entity.IVARecord, error)
	// CreateIfAbsent inserta el registro salvo que ya exista uno para la misma operación y
	// dirección; en ese caso devuelve created=false sin error.
	CreateIfAbsent(ctx context.Context, record *entity.IVARecord) (created bool, err error)
}

package dto

import (
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest alta de cuenta financiera. initial_rate es obligatorio para
// cuentas ARS con saldo inicial distinto de cero.
type CreateAccountRequest struct {
	Name           string           `json:"name" validate:"required"`
	Currency       string           `json:"currency" validate:"required"`
	InitialBalance decimal.Decimal  `json:"initial_balance"`
	InitialRate    *decimal.Decimal `json:"initial_rate"`
}

// UpdateAccountRequest cambia nombre y estado.
type UpdateAccountRequest struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// AccountResponse salida de una cuenta.
type AccountResponse struct {
	ID                string           `json:"id"`
	AgencyID          string           `json:"agency_id,omitempty"`
	Name              string           `json:"name"`
	Currency          string           `json:"currency"`
	InitialBalance    decimal.Decimal  `json:"initial_balance"`
	InitialRate       *decimal.Decimal `json:"initial_rate,omitempty"`
	InitialBalanceUSD decimal.Decimal  `json:"initial_balance_usd"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
}

// BalanceResponse saldo actual de una cuenta (USD).
type BalanceResponse struct {
	AccountID  string          `json:"account_id"`
	BalanceUSD decimal.Decimal `json:"balance_usd"`
}

// ValidateExpenseRequest consulta previa de un egreso.
type ValidateExpenseRequest struct {
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
}

// ValidateExpenseResponse resultado de la consulta (USD). Con OK=false, Remaining se omite.
type ValidateExpenseResponse struct {
	OK        bool             `json:"ok"`
	Available decimal.Decimal  `json:"available_usd"`
	Requested decimal.Decimal  `json:"requested_usd"`
	Remaining *decimal.Decimal `json:"remaining_usd,omitempty"`
}

// RecordMovementRequest registro de un movimiento.
type RecordMovementRequest struct {
	AccountID    *string          `json:"account_id"`
	OperationID  *string          `json:"operation_id"`
	LeadID       *string          `json:"lead_id"`
	Type         string           `json:"type" validate:"required"`
	Currency     string           `json:"currency" validate:"required"`
	Amount       decimal.Decimal  `json:"amount"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	ResolveRate  bool             `json:"resolve_rate"`
	Method       string           `json:"method"`
	Reference    string           `json:"reference"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string           `json:"id"`
	AccountID      *string          `json:"account_id,omitempty"`
	OperationID    *string          `json:"operation_id,omitempty"`
	LeadID         *string          `json:"lead_id,omitempty"`
	Type           string           `json:"type"`
	Currency       string           `json:"currency"`
	AmountOriginal decimal.Decimal  `json:"amount_original"`
	ExchangeRate   *decimal.Decimal `json:"exchange_rate,omitempty"`
	AmountUSD      decimal.Decimal  `json:"amount_usd"`
	Method         string           `json:"method"`
	Reference      string           `json:"reference,omitempty"`
	CreatedBy      string           `json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DailyBalanceResponse un día de la serie de saldos.
type DailyBalanceResponse struct {
	Date      string                     `json:"date"`
	Balance   decimal.Decimal            `json:"balance"`
	ByAccount map[string]decimal.Decimal `json:"by_account"`
}

// CheckpointRequest fecha (YYYY-MM-DD) del cierre a guardar; vacío = ayer.
type CheckpointRequest struct {
	Date string `json:"date"`
}

// CheckpointResponse cantidad de cuentas procesadas.
type CheckpointResponse struct {
	Date     string `json:"date,omitempty"`
	Accounts int    `json:"accounts"`
}

// RecordRateRequest alta o reemplazo de la cotización de un día.
type RecordRateRequest struct {
	Date   string          `json:"date" validate:"required"`
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

// RateBatchRequest fechas (YYYY-MM-DD) a resolver en lote.
type RateBatchRequest struct {
	Dates []string `json:"dates"`
}

// RateResponse cotización (ARS por USD).
type RateResponse struct {
	EffectiveDate string          `json:"effective_date,omitempty"`
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source,omitempty"`
}

// ToAccountResponse convierte la entidad.
func ToAccountResponse(a *entity.FinancialAccount) AccountResponse {
	return AccountResponse{
		ID:                a.ID,
		AgencyID:          a.AgencyID,
		Name:              a.Name,
		Currency:          string(a.Currency),
		InitialBalance:    a.InitialBalance,
		InitialRate:       a.InitialRate,
		InitialBalanceUSD: a.InitialBalanceUSD,
		IsActive:          a.IsActive,
		CreatedAt:         a.CreatedAt,
	}
}

// ToMovementResponse convierte la entidad.
func ToMovementResponse(m *entity.LedgerMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		AccountID:      m.AccountID,
		OperationID:    m.OperationID,
		LeadID:         m.LeadID,
		Type:           string(m.Type),
		Currency:       string(m.Currency),
		AmountOriginal: m.AmountOriginal,
		ExchangeRate:   m.ExchangeRate,
		AmountUSD:      m.AmountUSD,
		Method:         string(m.Method),
		Reference:      m.Reference,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// ToRateResponse convierte la entidad.
func ToRateResponse(r *entity.ExchangeRate) RateResponse {
	return RateResponse{
		EffectiveDate: r.EffectiveDate.Format(time.DateOnly),
		Rate:          r.Rate,
		Source:        r.Source,
	}
}

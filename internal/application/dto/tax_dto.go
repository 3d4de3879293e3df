package dto

import (
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IVARequest IVA de venta o de compra. operator_id solo aplica a compras.
// reference_date en formato YYYY-MM-DD.
type IVARequest struct {
	OperationID   string          `json:"operation_id" validate:"required"`
	OperatorID    string          `json:"operator_id"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	Currency      string          `json:"currency"`
	ReferenceDate string          `json:"reference_date"`
}

// IVAResponse registro de IVA. Created=false indica que ya existía.
type IVAResponse struct {
	ID            string          `json:"id"`
	Direction     string          `json:"direction"`
	OperationID   string          `json:"operation_id"`
	OperatorID    *string         `json:"operator_id,omitempty"`
	Currency      string          `json:"currency"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	IVARate       decimal.Decimal `json:"iva_rate"`
	IVAAmount     decimal.Decimal `json:"iva_amount"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	IVAAmountUSD  decimal.Decimal `json:"iva_amount_usd"`
	ReferenceDate string          `json:"reference_date"`
	Created       bool            `json:"created"`
}

// OperatorPaymentRequest pago a operador. Fechas YYYY-MM-DD; created_at vacío = hoy.
type OperatorPaymentRequest struct {
	OperationID   string          `json:"operation_id" validate:"required"`
	OperatorID    string          `json:"operator_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProductType   string          `json:"product_type"`
	CreatedAt     string          `json:"created_at"`
	CheckinDate   string          `json:"checkin_date"`
	DepartureDate string          `json:"departure_date"`
}

// OperatorPaymentResponse pago a operador. Created=false indica que ya existía.
type OperatorPaymentResponse struct {
	ID          string          `json:"id"`
	OperationID string          `json:"operation_id"`
	OperatorID  string          `json:"operator_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ProductType string          `json:"product_type"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	Created     bool            `json:"created"`
}

// DueDateRequest cálculo puro del vencimiento.
type DueDateRequest struct {
	ProductType   string `json:"product_type"`
	CreatedAt     string `json:"created_at"`
	CheckinDate   string `json:"checkin_date"`
	DepartureDate string `json:"departure_date"`
}

// DueDateResponse vencimiento calculado.
type DueDateResponse struct {
	DueDate string `json:"due_date"`
}

// BackfillRequest limit <= 0 procesa todas las operaciones pendientes.
type BackfillRequest struct {
	Limit int `json:"limit"`
}

// ToIVAResponse convierte la entidad.
func ToIVAResponse(r *entity.IVARecord, created bool) IVAResponse {
	return IVAResponse{
		ID:            r.ID,
		Direction:     r.Direction,
		OperationID:   r.OperationID,
		OperatorID:    r.OperatorID,
		Currency:      string(r.Currency),
		GrossAmount:   r.GrossAmount,
		NetAmount:     r.NetAmount,
		IVARate:       r.IVARate,
		IVAAmount:     r.IVAAmount,
		ExchangeRate:  r.ExchangeRate,
		IVAAmountUSD:  r.IVAAmountUSD,
		ReferenceDate: r.ReferenceDate.Format(time.DateOnly),
		Created:       created,
	}
}

// ToOperatorPaymentResponse convierte la entidad.
func ToOperatorPaymentResponse(p *entity.OperatorPayment, created bool) OperatorPaymentResponse {
	return OperatorPaymentResponse{
		ID:          p.ID,
		OperationID: p.OperationID,
		OperatorID:  p.OperatorID,
		Amount:      p.Amount,
		Currency:    string(p.Currency),
		ProductType: string(p.ProductType),
		DueDate:     p.DueDate.Format(time.DateOnly),
		Status:      p.Status,
		Created:     created,
	}
}

package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agencia-ledger/internal/application/dto"
	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/rs/zerolog"
)

// TaxHandler IVA de ventas y compras, pagos a operadores y backfill.
type TaxHandler struct {
	deriver  TaxService
	backfill BackfillService
	loc      *time.Location
	now      func() time.Time
	log      zerolog.Logger
}

func NewTaxHandler(deriver TaxService, backfill BackfillService, loc *time.Location, log zerolog.Logger) *TaxHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaxHandler{deriver: deriver, backfill: backfill, loc: loc, now: time.Now, log: log}
}

// referenceDay vacío = hoy en la zona del negocio.
func (h *TaxHandler) referenceDay(s string) (time.Time, error) {
	if s == "" {
		return domainledger.DayOf(h.now(), h.loc), nil
	}
	return parseDay(s)
}

// SaleIVA godoc
// @Summary      Crear IVA de venta (idempotente por operación)
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IVARequest  true  "operation_id, gross_amount, currency, reference_date"
// @Success      201   {object}  dto.IVAResponse  "creado"
// @Success      200   {object}  dto.IVAResponse  "ya existía"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/tax/iva/sales [post]
func (h *TaxHandler) SaleIVA(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.IVARequest](c)
	if !ok {
		return nil
	}
	ref, err := h.referenceDay(in.ReferenceDate)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "reference_date debe ser YYYY-MM-DD")
	}
	rec, created, err := h.deriver.CreateSaleIVA(c.UserContext(), tax.SaleIVAInput{
		OperationID:   in.OperationID,
		GrossAmount:   in.GrossAmount,
		Currency:      in.Currency,
		ReferenceDate: ref,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(createdStatus(created)).JSON(dto.ToIVAResponse(rec, created))
}

// PurchaseIVA crea el IVA de compra (crédito fiscal) de la operación.
func (h *TaxHandler) PurchaseIVA(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.IVARequest](c)
	if !ok {
		return nil
	}
	if in.OperatorID == "" {
		return badRequest(c, "VALIDATION", "operator_id es requerido")
	}
	ref, err := h.referenceDay(in.ReferenceDate)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "reference_date debe ser YYYY-MM-DD")
	}
	rec, created, err := h.deriver.CreatePurchaseIVA(c.UserContext(), tax.PurchaseIVAInput{
		OperationID:   in.OperationID,
		OperatorID:    in.OperatorID,
		GrossAmount:   in.GrossAmount,
		Currency:      in.Currency,
		ReferenceDate: ref,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(createdStatus(created)).JSON(dto.ToIVAResponse(rec, created))
}

// OperatorPayment godoc
// @Summary      Programar pago a operador (idempotente por operación)
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OperatorPaymentRequest  true  "operation_id, operator_id, amount, currency, product_type, fechas"
// @Success      201   {object}  dto.OperatorPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/operator-payments [post]
func (h *TaxHandler) OperatorPayment(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.OperatorPaymentRequest](c)
	if !ok {
		return nil
	}
	created, checkin, departure, err := h.paymentDates(in.CreatedAt, in.CheckinDate, in.DepartureDate)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "las fechas deben ser YYYY-MM-DD")
	}
	p, isNew, err := h.deriver.CreateOperatorPayment(c.UserContext(), tax.OperatorPaymentInput{
		OperationID:   in.OperationID,
		OperatorID:    in.OperatorID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		ProductType:   in.ProductType,
		CreatedAt:     created,
		CheckinDate:   checkin,
		DepartureDate: departure,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(createdStatus(isNew)).JSON(dto.ToOperatorPaymentResponse(p, isNew))
}

// DueDate cálculo del vencimiento sin persistir nada.
func (h *TaxHandler) DueDate(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.DueDateRequest](c)
	if !ok {
		return nil
	}
	created, checkin, departure, err := h.paymentDates(in.CreatedAt, in.CheckinDate, in.DepartureDate)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "las fechas deben ser YYYY-MM-DD")
	}
	due, err := h.deriver.CalculateDueDate(in.ProductType, created, checkin, departure)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DueDateResponse{DueDate: due.Format(time.DateOnly)})
}

// Backfill godoc
// @Summary      Derivar IVA y pagos pendientes de operaciones históricas
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BackfillRequest  false  "limit"
// @Success      200   {object}  tax.BackfillReport
// @Router       /api/tax/backfill [post]
func (h *TaxHandler) Backfill(c *fiber.Ctx) error {
	var in dto.BackfillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	report, err := h.backfill.Run(c.UserContext(), in.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report)
}

func (h *TaxHandler) paymentDates(createdAt, checkinDate, departureDate string) (time.Time, *time.Time, *time.Time, error) {
	created, err := h.referenceDay(createdAt)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	checkin, err := parseOptionalDay(checkinDate)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	departure, err := parseOptionalDay(departureDate)
	if err != nil {
		return time.Time{}, nil, nil, err
	}
	return created, checkin, departure, nil
}

func createdStatus(created bool) int {
	if created {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}

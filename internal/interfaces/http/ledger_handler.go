package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agencia-ledger/internal/application/dto"
	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/rs/zerolog"
)

// LedgerHandler registro de movimientos, series diarias y checkpoints.
type LedgerHandler struct {
	movements   MovementService
	series      SeriesService
	checkpoints CheckpointService
	log         zerolog.Logger
}

func NewLedgerHandler(movements MovementService, series SeriesService, checkpoints CheckpointService, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{movements: movements, series: series, checkpoints: checkpoints, log: log}
}

// RecordMovement godoc
// @Summary      Registrar movimiento en el libro
// @Description  Los egresos (EXPENSE, OPERATOR_PAYMENT, COMMISSION) contra una cuenta se
//
//	validan contra el saldo dentro de la misma transacción.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "type, currency, amount, exchange_rate | resolve_rate"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  InsufficientBalanceResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	in, ok := bindAndValidate[dto.RecordMovementRequest](c)
	if !ok {
		return nil
	}
	id, err := h.movements.Record(c.UserContext(), ledger.RecordInput{
		AccountID:    in.AccountID,
		OperationID:  in.OperationID,
		LeadID:       in.LeadID,
		Type:         in.Type,
		Currency:     in.Currency,
		Amount:       in.Amount,
		ExchangeRate: in.ExchangeRate,
		ResolveRate:  in.ResolveRate,
		Method:       in.Method,
		Reference:    in.Reference,
		CreatedBy:    userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/{id} [get]
func (h *LedgerHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.movements.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToMovementResponse(mov))
}

// DailyBalances godoc
// @Summary      Serie de saldos diarios (USD)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        account_ids  query  string  true  "IDs separados por coma"
// @Param        from         query  string  true  "YYYY-MM-DD"
// @Param        to           query  string  true  "YYYY-MM-DD (inclusive)"
// @Success      200  {array}   dto.DailyBalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/balances/daily [get]
func (h *LedgerHandler) DailyBalances(c *fiber.Ctx) error {
	var ids []string
	for _, id := range strings.Split(c.Query("account_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return badRequest(c, "VALIDATION", "account_ids es requerido")
	}
	from, err := parseDay(c.Query("from"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "from debe ser YYYY-MM-DD")
	}
	to, err := parseDay(c.Query("to"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "to debe ser YYYY-MM-DD")
	}

	series, err := h.series.DailySeries(c.UserContext(), ids, from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.DailyBalanceResponse, 0, len(series))
	for _, d := range series {
		out = append(out, dto.DailyBalanceResponse{
			Date:      d.Date.Format(time.DateOnly),
			Balance:   d.Balance,
			ByAccount: d.ByAccount,
		})
	}
	return c.JSON(out)
}

// CreateCheckpoints guarda los saldos de cierre de un día ya cerrado (vacío = ayer).
func (h *LedgerHandler) CreateCheckpoints(c *fiber.Ctx) error {
	var in dto.CheckpointRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	if in.Date == "" {
		n, err := h.checkpoints.CreateForYesterday(c.UserContext())
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.CheckpointResponse{Accounts: n})
	}
	day, err := parseDay(in.Date)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "date debe ser YYYY-MM-DD")
	}
	n, err := h.checkpoints.CreateForDay(c.UserContext(), day)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CheckpointResponse{Date: in.Date, Accounts: n})
}

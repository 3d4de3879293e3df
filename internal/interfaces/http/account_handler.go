package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agencia-ledger/internal/application/dto"
	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	domainledger "github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/rs/zerolog"
)

// AccountHandler cuentas financieras, saldo y validación de egresos.
type AccountHandler struct {
	accounts  AccountService
	balances  BalanceService
	movements MovementService
	loc       *time.Location
	log       zerolog.Logger
}

func NewAccountHandler(accounts AccountService, balances BalanceService, movements MovementService, loc *time.Location, log zerolog.Logger) *AccountHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AccountHandler{accounts: accounts, balances: balances, movements: movements, loc: loc, log: log}
}

// Create godoc
// @Summary      Crear cuenta financiera
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "name, currency, initial_balance, initial_rate (ARS)"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/accounts [post]
func (h *AccountHandler) Create(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.CreateAccountRequest](c)
	if !ok {
		return nil
	}
	account, err := h.accounts.Create(c.UserContext(), ledger.CreateAccountInput{
		AgencyID:       GetAgencyID(c),
		Name:           in.Name,
		Currency:       in.Currency,
		InitialBalance: in.InitialBalance,
		InitialRate:    in.InitialRate,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAccountResponse(account))
}

// GetByID godoc
// @Summary      Obtener cuenta
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.AccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id} [get]
func (h *AccountHandler) GetByID(c *fiber.Ctx) error {
	account, err := h.accounts.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAccountResponse(account))
}

// Update cambia nombre y estado (activa/inactiva).
func (h *AccountHandler) Update(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.UpdateAccountRequest](c)
	if !ok {
		return nil
	}
	account, err := h.accounts.UpdateMetadata(c.UserContext(), c.Params("id"), in.Name, in.IsActive)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAccountResponse(account))
}

// Balance godoc
// @Summary      Saldo actual en USD
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/balance [get]
func (h *AccountHandler) Balance(c *fiber.Ctx) error {
	id := c.Params("id")
	balance, err := h.balances.CurrentBalance(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.BalanceResponse{AccountID: id, BalanceUSD: balance})
}

// ValidateExpense godoc
// @Summary      Consultar si un egreso sería aceptado
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la cuenta"
// @Param        body  body  dto.ValidateExpenseRequest  true  "amount, currency, exchange_rate"
// @Success      200   {object}  dto.ValidateExpenseResponse
// @Failure      409   {object}  InsufficientBalanceResponse
// @Router       /api/accounts/{id}/validate-expense [post]
func (h *AccountHandler) ValidateExpense(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.ValidateExpenseRequest](c)
	if !ok {
		return nil
	}
	check, err := h.balances.ValidateExpense(c.UserContext(), c.Params("id"), in.Amount, in.Currency, in.ExchangeRate)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ValidateExpenseResponse{
		OK:        true,
		Available: check.Available,
		Requested: check.Requested,
		Remaining: &check.Remaining,
	})
}

// Movements godoc
// @Summary      Movimientos de la cuenta (más recientes primero)
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD, inclusive)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Router       /api/accounts/{id}/movements [get]
func (h *AccountHandler) Movements(c *fiber.Ctx) error {
	from, err := parseOptionalDay(c.Query("from"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "from debe ser YYYY-MM-DD")
	}
	to, err := parseOptionalDay(c.Query("to"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "to debe ser YYYY-MM-DD")
	}
	if from != nil {
		start := domainledger.DayStart(*from, h.loc)
		from = &start
	}
	if to != nil {
		end := domainledger.DayEnd(*to, h.loc)
		to = &end
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()

	id := c.Params("id")
	if _, err := h.accounts.Get(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	items, err := h.movements.ListByAccount(c.UserContext(), id, from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, m := range items {
		out.Items = append(out.Items, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

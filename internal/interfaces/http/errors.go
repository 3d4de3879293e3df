package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agencia-ledger/internal/application/dto"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// InsufficientBalanceResponse cuerpo del 409 por saldo insuficiente (montos USD).
type InsufficientBalanceResponse struct {
	dto.ErrorResponse
	AccountID string `json:"account_id"`
	Available string `json:"available_usd"`
	Requested string `json:"requested_usd"`
}

// writeError traduce errores de dominio a respuestas HTTP. Lo no reconocido es 500 y se
// registra; el mensaje interno no se expone.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var insufficient *domain.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(InsufficientBalanceResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_BALANCE", Message: "saldo insuficiente"},
			AccountID:     insufficient.AccountID,
			Available:     insufficient.Available.String(),
			Requested:     insufficient.Requested.String(),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrCurrencyMismatchWithoutRate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CURRENCY_MISMATCH_WITHOUT_RATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidProductTypeForDueDate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PRODUCT_TYPE", Message: err.Error()})
	case errors.Is(err, domain.ErrAccountNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ACCOUNT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrExchangeRateNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EXCHANGE_RATE_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrAccountInactive):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ACCOUNT_INACTIVE", Message: err.Error()})
	case errors.Is(err, domain.ErrMissingExchangeRate):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "MISSING_EXCHANGE_RATE", Message: err.Error()})
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// bindAndValidate parsea el cuerpo y aplica las reglas `validate`. Si falla ya escribió
// la respuesta 400 y devuelve ok=false.
func bindAndValidate[T any](c *fiber.Ctx) (*T, bool) {
	var in T
	if err := c.BodyParser(&in); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		return nil, false
	}
	if err := validate.Struct(in); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		return nil, false
	}
	return &in, true
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// parseDay interpreta YYYY-MM-DD como día calendario.
func parseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// parseOptionalDay vacío = nil.
func parseOptionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDay(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

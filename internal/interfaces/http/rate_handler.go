package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agencia-ledger/internal/application/dto"
	"github.com/rs/zerolog"
)

// RateHandler consulta y carga de tipos de cambio (ARS por USD).
type RateHandler struct {
	rates RateService
	log   zerolog.Logger
}

func NewRateHandler(rates RateService, log zerolog.Logger) *RateHandler {
	return &RateHandler{rates: rates, log: log}
}

// Resolve godoc
// @Summary      Tipo de cambio vigente a una fecha
// @Description  Con fallback=true aplica la cadena fecha → último registrado → respaldo configurado.
// @Tags         exchange-rates
// @Security     Bearer
// @Produce      json
// @Param        date      query  string  true   "YYYY-MM-DD"
// @Param        fallback  query  bool    false  "Aplicar respaldo"
// @Success      200  {object}  dto.RateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/exchange-rates/resolve [get]
func (h *RateHandler) Resolve(c *fiber.Ctx) error {
	day, err := parseDay(c.Query("date"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", "date debe ser YYYY-MM-DD")
	}
	if c.QueryBool("fallback", false) {
		resolved, err := h.rates.ResolveWithFallback(c.UserContext(), day)
		if err != nil {
			return writeError(c, h.log, err)
		}
		out := dto.RateResponse{Rate: resolved.Rate, Source: resolved.Source}
		if !resolved.EffectiveDate.IsZero() {
			out.EffectiveDate = resolved.EffectiveDate.Format(time.DateOnly)
		}
		return c.JSON(out)
	}
	rate, err := h.rates.Resolve(c.UserContext(), day)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToRateResponse(rate))
}

// Batch resuelve varias fechas; las que no tienen cotización no aparecen en la respuesta.
func (h *RateHandler) Batch(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.RateBatchRequest](c)
	if !ok {
		return nil
	}
	days := make([]time.Time, 0, len(in.Dates))
	for _, s := range in.Dates {
		d, err := parseDay(strings.TrimSpace(s))
		if err != nil {
			return badRequest(c, "INVALID_DATE", "fecha inválida: "+s)
		}
		days = append(days, d)
	}
	found, err := h.rates.ResolveBatch(c.UserContext(), days)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make(map[string]dto.RateResponse, len(found))
	for day, rate := range found {
		out[day.Format(time.DateOnly)] = dto.ToRateResponse(rate)
	}
	return c.JSON(out)
}

// Latest último tipo de cambio registrado.
func (h *RateHandler) Latest(c *fiber.Ctx) error {
	rate, err := h.rates.Latest(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToRateResponse(rate))
}

// Record godoc
// @Summary      Registrar tipo de cambio del día
// @Tags         exchange-rates
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordRateRequest  true  "date, rate, source"
// @Success      201   {object}  dto.RateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/exchange-rates [post]
func (h *RateHandler) Record(c *fiber.Ctx) error {
	in, ok := bindAndValidate[dto.RecordRateRequest](c)
	if !ok {
		return nil
	}
	day, err := parseDay(in.Date)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "date debe ser YYYY-MM-DD")
	}
	source := in.Source
	if source == "" {
		source = "manual:" + GetUserID(c)
	}
	rate, err := h.rates.Record(c.UserContext(), day, in.Rate, source)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRateResponse(rate))
}

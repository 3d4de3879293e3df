package tax

import (
	"time"

	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
)

// Anchor fecha de la operación sobre la que se aplica el desplazamiento.
type Anchor int

const (
	AnchorCreated Anchor = iota
	AnchorCheckin
	AnchorDeparture
)

// DueRule regla de vencimiento de un tipo de producto: Anchor + OffsetDays.
type DueRule struct {
	Anchor     Anchor
	OffsetDays int
}

// DefaultGraceDays plazo desde la creación cuando falta la fecha de anclaje.
const DefaultGraceDays = 30

// DefaultDueRules política por tipo de producto.
var DefaultDueRules = map[entity.ProductType]DueRule{
	entity.ProductFlight:     {Anchor: AnchorCreated, OffsetDays: 0},
	entity.ProductHotel:      {Anchor: AnchorCheckin, OffsetDays: -30},
	entity.ProductPackage:    {Anchor: AnchorDeparture, OffsetDays: -45},
	entity.ProductCruise:     {Anchor: AnchorDeparture, OffsetDays: -60},
	entity.ProductAssistance: {Anchor: AnchorDeparture, OffsetDays: -7},
	entity.ProductTransfer:   {Anchor: AnchorDeparture, OffsetDays: -7},
	entity.ProductExcursion:  {Anchor: AnchorDeparture, OffsetDays: -7},
}

// DuePolicy tabla de reglas más el plazo de gracia. Es inmutable una vez construida.
type DuePolicy struct {
	rules     map[entity.ProductType]DueRule
	graceDays int
}

// NewDuePolicy construye la política. graceDays <= 0 usa DefaultGraceDays.
func NewDuePolicy(rules map[entity.ProductType]DueRule, graceDays int) DuePolicy {
	if graceDays <= 0 {
		graceDays = DefaultGraceDays
	}
	copied := make(map[entity.ProductType]DueRule, len(rules))
	for k, v := range rules {
		copied[k] = v
	}
	return DuePolicy{rules: copied, graceDays: graceDays}
}

// DefaultDuePolicy política estándar.
func DefaultDuePolicy() DuePolicy {
	return NewDuePolicy(DefaultDueRules, DefaultGraceDays)
}

// CalculateDueDate calcula el vencimiento con la política estándar.
func CalculateDueDate(productType entity.ProductType, created time.Time, checkin, departure *time.Time) (time.Time, error) {
	return DefaultDuePolicy().Calculate(productType, created, checkin, departure)
}

// Calculate es una función pura: mismas entradas, misma fecha. Trabaja con días
// calendario (se descarta la hora) y nunca devuelve una fecha anterior a la creación.
func (p DuePolicy) Calculate(productType entity.ProductType, created time.Time, checkin, departure *time.Time) (time.Time, error) {
	rule, ok := p.rules[productType]
	if !ok {
		return time.Time{}, domain.ErrInvalidProductTypeForDueDate
	}
	createdDay := calendarDay(created)

	var anchor *time.Time
	switch rule.Anchor {
	case AnchorCreated:
		anchor = &createdDay
	case AnchorCheckin:
		anchor = checkin
	case AnchorDeparture:
		anchor = departure
	}
	if anchor == nil || anchor.IsZero() {
		return createdDay.AddDate(0, 0, p.graceDays), nil
	}

	due := calendarDay(*anchor).AddDate(0, 0, rule.OffsetDays)
	if due.Before(createdDay) {
		return createdDay, nil
	}
	return due, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductType tipo de producto turístico vendido en una operación.
type ProductType string

const (
	ProductFlight     ProductType = "FLIGHT"
	ProductHotel      ProductType = "HOTEL"
	ProductPackage    ProductType = "PACKAGE"
	ProductCruise     ProductType = "CRUISE"
	ProductAssistance ProductType = "ASSISTANCE"
	ProductTransfer   ProductType = "TRANSFER"
	ProductExcursion  ProductType = "EXCURSION"
)

// ParseProductType normaliza el tipo de producto; no valida que tenga política de vencimiento.
func ParseProductType(s string) (ProductType, error) {
	p := ProductType(strings.ToUpper(strings.TrimSpace(s)))
	if p == "" {
		return "", fmt.Errorf("tipo de producto vacío")
	}
	return p, nil
}

// Operation proyección de solo lectura de una operación (venta) gestionada fuera del libro.
type Operation struct {
	ID                   string
	OperatorID           *string
	ProductType          ProductType
	SaleAmount           decimal.Decimal
	SaleCurrency         Currency
	OperatorCost         decimal.Decimal
	OperatorCostCurrency Currency
	CreatedAt            time.Time
	CheckinDate          *time.Time
	DepartureDate        *time.Time
}

package ledger_test

import (
	"testing"

	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/jhoicas/agencia-ledger/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePaymentMethod_Conocidos(t *testing.T) {
	cases := map[string]entity.PaymentMethod{
		"Efectivo":               entity.PaymentCash,
		"  CASH ":                entity.PaymentCash,
		"Transferencia Bancaria": entity.PaymentTransfer,
		"depósito":               entity.PaymentTransfer,
		"Tarjeta de Crédito":     entity.PaymentCard,
		"débito":                 entity.PaymentCard,
		"Mercado Pago":           entity.PaymentMercadoPago,
		"MERCADOPAGO":            entity.PaymentMercadoPago,
		"echeq":                  entity.PaymentCheck,
		"cheque":                 entity.PaymentCheck,
	}
	for raw, want := range cases {
		got, _ := ledger.NormalizePaymentMethod(raw, "")
		assert.Equal(t, want, got, "medio %q", raw)
	}
}

func TestNormalizePaymentMethod_DesconocidoConservaTexto(t *testing.T) {
	method, ref := ledger.NormalizePaymentMethod("Cripto USDT", "Seña reserva 123")
	assert.Equal(t, entity.PaymentOther, method)
	assert.Equal(t, "Seña reserva 123 | medio de pago: Cripto USDT", ref)

	method, ref = ledger.NormalizePaymentMethod("Western Union", "")
	assert.Equal(t, entity.PaymentOther, method)
	assert.Equal(t, "medio de pago: Western Union", ref)
}

func TestNormalizePaymentMethod_ConocidoNoTocaReferencia(t *testing.T) {
	_, ref := ledger.NormalizePaymentMethod("efectivo", "Recibo 44")
	assert.Equal(t, "Recibo 44", ref)
}

func TestNormalizePaymentMethod_Vacio(t *testing.T) {
	method, ref := ledger.NormalizePaymentMethod("   ", "x")
	assert.Equal(t, entity.PaymentOther, method)
	assert.Equal(t, "x", ref)
}

package tax_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/agencia-ledger/internal/application/tax"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	domaintax "github.com/jhoicas/agencia-ledger/internal/domain/tax"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// IVA
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSaleIVA_CalculaNetoIVAyUSD(t *testing.T) {
	f := newFixture(nil)
	f.addRate(day(2026, 3, 1), "1000")

	rec, created, err := f.deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID:   "op-1",
		GrossAmount:   d("121000"),
		Currency:      "ARS",
		ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.IVADirectionSale, rec.Direction)
	assert.True(t, d("100000").Equal(rec.NetAmount))
	assert.True(t, d("21000").Equal(rec.IVAAmount))
	assert.True(t, d("0.21").Equal(rec.IVARate))
	assert.True(t, d("1000").Equal(rec.ExchangeRate))
	assert.True(t, d("21").Equal(rec.IVAAmountUSD), "iva usd %s", rec.IVAAmountUSD)
	assert.Nil(t, rec.OperatorID)
	assert.True(t, day(2026, 3, 3).Equal(rec.ReferenceDate))
}

func TestCreateSaleIVA_NetoMasIVAIgualBruto(t *testing.T) {
	f := newFixture(nil)
	f.addRate(day(2026, 3, 1), "1000")

	rec, _, err := f.deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID:   "op-1",
		GrossAmount:   d("100"),
		Currency:      "USD",
		ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.True(t, d("82.64").Equal(rec.NetAmount))
	assert.True(t, d("17.36").Equal(rec.IVAAmount))
	assert.True(t, rec.GrossAmount.Equal(rec.NetAmount.Add(rec.IVAAmount)))
	assert.True(t, rec.IVAAmount.Equal(rec.IVAAmountUSD), "en USD el IVA no se convierte")
}

func TestCreateSaleIVA_DosVeces_UnSoloRegistro(t *testing.T) {
	f := newFixture(nil)
	f.addRate(day(2026, 3, 1), "1000")
	in := tax.SaleIVAInput{OperationID: "op-1", GrossAmount: d("1210"), Currency: "ARS", ReferenceDate: day(2026, 3, 3)}

	first, created, err := f.deriver.CreateSaleIVA(context.Background(), in)
	require.NoError(t, err)
	require.True(t, created)

	in.GrossAmount = d("9999")
	second, created, err := f.deriver.CreateSaleIVA(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, d("1210").Equal(second.GrossAmount))
	assert.Equal(t, 1, f.iva.inserts)
}

func TestCreateSaleIVA_CarreraConcurrente_DevuelveElGanador(t *testing.T) {
	f := newFixture(nil)
	f.addRate(day(2026, 3, 1), "1000")
	f.iva.racer = &entity.IVARecord{ID: "ganador", OperationID: "op-1", Direction: entity.IVADirectionSale}

	rec, created, err := f.deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op-1", GrossAmount: d("1210"), Currency: "ARS", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "ganador", rec.ID)
}

func TestCreatePurchaseIVA_IndependienteDeLaVenta(t *testing.T) {
	f := newFixture(nil)
	f.addRate(day(2026, 3, 1), "1000")

	_, created, err := f.deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op-1", GrossAmount: d("1210"), Currency: "ARS", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	require.True(t, created)

	rec, created, err := f.deriver.CreatePurchaseIVA(context.Background(), tax.PurchaseIVAInput{
		OperationID: "op-1", OperatorID: "opr-9", GrossAmount: d("605"), Currency: "ARS", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.IVADirectionPurchase, rec.Direction)
	require.NotNil(t, rec.OperatorID)
	assert.Equal(t, "opr-9", *rec.OperatorID)
	assert.True(t, d("105").Equal(rec.IVAAmount))
}

func TestCreateIVA_SinTipoDeCambio_UsaRespaldoOFalla(t *testing.T) {
	in := tax.SaleIVAInput{OperationID: "op-1", GrossAmount: d("1210"), Currency: "ARS", ReferenceDate: day(2026, 3, 3)}

	f := newFixture(nil)
	_, _, err := f.deriver.CreateSaleIVA(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrMissingExchangeRate)
	assert.Equal(t, 0, f.iva.inserts)

	f = newFixture(dp("500"))
	rec, _, err := f.deriver.CreateSaleIVA(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, d("500").Equal(rec.ExchangeRate))
	assert.True(t, d("0.42").Equal(rec.IVAAmountUSD))
}

func TestCreateIVA_EntradaInvalida(t *testing.T) {
	f := newFixture(dp("1000"))
	cases := map[string]tax.SaleIVAInput{
		"sin operación":   {GrossAmount: d("1"), Currency: "ARS", ReferenceDate: day(2026, 3, 3)},
		"monto cero":      {OperationID: "op", GrossAmount: d("0"), Currency: "ARS", ReferenceDate: day(2026, 3, 3)},
		"moneda inválida": {OperationID: "op", GrossAmount: d("1"), Currency: "EUR", ReferenceDate: day(2026, 3, 3)},
		"sin fecha":       {OperationID: "op", GrossAmount: d("1"), Currency: "ARS"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.deriver.CreateSaleIVA(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, _, err := f.deriver.CreatePurchaseIVA(context.Background(), tax.PurchaseIVAInput{
		OperationID: "op", GrossAmount: d("1"), Currency: "ARS", ReferenceDate: day(2026, 3, 3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDeriver_AlicuotaConfigurada(t *testing.T) {
	f := newFixture(dp("1000"))
	deriver := tax.NewDeriver(f.iva, f.payments, f.resolver, tax.Options{IVARate: d("0.105")}, zerolog.Nop())

	rec, _, err := deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op", GrossAmount: d("110.5"), Currency: "USD", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.True(t, d("100").Equal(rec.NetAmount))
	assert.True(t, d("10.5").Equal(rec.IVAAmount))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos a operadores
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOperatorPayment_CalculaVencimiento(t *testing.T) {
	f := newFixture(nil)

	p, created, err := f.deriver.CreateOperatorPayment(context.Background(), tax.OperatorPaymentInput{
		OperationID:   "op-1",
		OperatorID:    "opr-1",
		Amount:        d("800"),
		Currency:      "USD",
		ProductType:   "package",
		CreatedAt:     day(2026, 1, 10),
		DepartureDate: tp(day(2026, 6, 1)),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.ProductPackage, p.ProductType)
	assert.Equal(t, entity.OperatorPaymentPending, p.Status)
	assert.True(t, day(2026, 4, 17).Equal(p.DueDate), "vencimiento %s", p.DueDate)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
}

func TestCreateOperatorPayment_Idempotente(t *testing.T) {
	f := newFixture(nil)
	in := tax.OperatorPaymentInput{
		OperationID: "op-1", OperatorID: "opr-1", Amount: d("800"), Currency: "USD",
		ProductType: "FLIGHT", CreatedAt: day(2026, 1, 10),
	}
	first, _, err := f.deriver.CreateOperatorPayment(context.Background(), in)
	require.NoError(t, err)

	in.Amount = d("1")
	second, created, err := f.deriver.CreateOperatorPayment(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, d("800").Equal(second.Amount))
	assert.Len(t, f.payments.payments, 1)
}

func TestCreateOperatorPayment_Errores(t *testing.T) {
	f := newFixture(nil)
	base := tax.OperatorPaymentInput{
		OperationID: "op-1", OperatorID: "opr-1", Amount: d("10"), Currency: "USD",
		ProductType: "FLIGHT", CreatedAt: day(2026, 1, 10),
	}

	in := base
	in.ProductType = "SPACESHIP"
	_, _, err := f.deriver.CreateOperatorPayment(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidProductTypeForDueDate)

	in = base
	in.OperatorID = ""
	_, _, err = f.deriver.CreateOperatorPayment(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = base
	in.Amount = d("-1")
	_, _, err = f.deriver.CreateOperatorPayment(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.payments.failGet = errors.New("timeout")
	_, _, err = f.deriver.CreateOperatorPayment(context.Background(), base)
	assert.ErrorContains(t, err, "timeout")
	assert.Empty(t, f.payments.payments)
}

func TestCalculateDueDate_UsaPoliticaConfigurada(t *testing.T) {
	f := newFixture(nil)
	policy := domaintax.NewDuePolicy(map[entity.ProductType]domaintax.DueRule{
		entity.ProductHotel: {Anchor: domaintax.AnchorCheckin, OffsetDays: -10},
	}, 5)
	deriver := tax.NewDeriver(f.iva, f.payments, f.resolver, tax.Options{DuePolicy: &policy}, zerolog.Nop())

	due, err := deriver.CalculateDueDate("hotel", day(2026, 1, 1), tp(day(2026, 2, 1)), nil)
	require.NoError(t, err)
	assert.True(t, day(2026, 1, 22).Equal(due))

	due, err = deriver.CalculateDueDate("HOTEL", day(2026, 1, 1), nil, nil)
	require.NoError(t, err)
	assert.True(t, day(2026, 1, 6).Equal(due))

	_, err = deriver.CalculateDueDate("FLIGHT", day(2026, 1, 1), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidProductTypeForDueDate)

	_, err = deriver.CalculateDueDate("  ", time.Now(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidProductTypeForDueDate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Precisión de columnas
// ──────────────────────────────────────────────────────────────────────────────

// assertSameIVA compara por valor los importes de dos registros de IVA.
func assertSameIVA(t *testing.T, want, got *entity.IVARecord) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.GrossAmount.Equal(got.GrossAmount), "bruto %s / %s", want.GrossAmount, got.GrossAmount)
	assert.True(t, want.NetAmount.Equal(got.NetAmount), "neto %s / %s", want.NetAmount, got.NetAmount)
	assert.True(t, want.IVAAmount.Equal(got.IVAAmount), "iva %s / %s", want.IVAAmount, got.IVAAmount)
	assert.True(t, want.IVARate.Equal(got.IVARate), "alícuota %s / %s", want.IVARate, got.IVARate)
	assert.True(t, want.ExchangeRate.Equal(got.ExchangeRate), "tipo %s / %s", want.ExchangeRate, got.ExchangeRate)
	assert.True(t, want.IVAAmountUSD.Equal(got.IVAAmountUSD), "iva usd %s / %s", want.IVAAmountUSD, got.IVAAmountUSD)
}

func TestCreateSaleIVA_PrimeraYSegundaLlamadaDevuelvenLoMismo(t *testing.T) {
	f := newFixture(dp("1234.5678901"))
	in := tax.SaleIVAInput{OperationID: "op-1", GrossAmount: d("1210.00"), Currency: "ARS", ReferenceDate: day(2026, 3, 3)}

	first, created, err := f.deriver.CreateSaleIVA(context.Background(), in)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "1234.56789", first.ExchangeRate.String())

	second, created, err := f.deriver.CreateSaleIVA(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, created)
	assertSameIVA(t, first, second)
	assert.True(t, second.IVAAmountUSD.Equal(second.IVAAmount.DivRound(second.ExchangeRate, 6)))
}

func TestCreateIVA_MontoConMasDeDosDecimales_SeRechaza(t *testing.T) {
	f := newFixture(dp("1000"))
	_, _, err := f.deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op-1", GrossAmount: d("100.004"), Currency: "USD", ReferenceDate: day(2026, 3, 3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.deriver.CreatePurchaseIVA(context.Background(), tax.PurchaseIVAInput{
		OperationID: "op-1", OperatorID: "opr-1", GrossAmount: d("100.004"), Currency: "USD", ReferenceDate: day(2026, 3, 3),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.iva.inserts)
}

func TestCreateOperatorPayment_MontoConMasDeDosDecimales_SeRechaza(t *testing.T) {
	f := newFixture(nil)
	_, _, err := f.deriver.CreateOperatorPayment(context.Background(), tax.OperatorPaymentInput{
		OperationID: "op-1", OperatorID: "opr-1", Amount: d("800.005"), Currency: "USD",
		ProductType: "FLIGHT", CreatedAt: day(2026, 1, 10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.payments.payments)
}

func TestNewDeriver_AlicuotaSeRedondeaACuatroDecimales(t *testing.T) {
	f := newFixture(dp("1000"))
	deriver := tax.NewDeriver(f.iva, f.payments, f.resolver, tax.Options{IVARate: d("0.210049")}, zerolog.Nop())

	first, _, err := deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op", GrossAmount: d("121"), Currency: "USD", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.21", first.IVARate.String())

	second, _, err := deriver.CreateSaleIVA(context.Background(), tax.SaleIVAInput{
		OperationID: "op", GrossAmount: d("121"), Currency: "USD", ReferenceDate: day(2026, 3, 3),
	})
	require.NoError(t, err)
	assertSameIVA(t, first, second)
}

package ledger_test

import (
	"context"
	"testing"

	"github.com/jhoicas/agencia-ledger/internal/application/ledger"
	"github.com/jhoicas/agencia-ledger/internal/domain"
	"github.com/jhoicas/agencia-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount_ARS_FijaSaldoInicialEnUSD(t *testing.T) {
	f := newFixture(recordNow, nil)

	acc, err := f.accounts.Create(context.Background(), ledger.CreateAccountInput{
		AgencyID:       "ag-1",
		Name:           "  Banco Nación  ",
		Currency:       "ars",
		InitialBalance: d("150000"),
		InitialRate:    dp("1500"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Banco Nación", acc.Name)
	assert.Equal(t, entity.CurrencyARS, acc.Currency)
	assert.True(t, d("100").Equal(acc.InitialBalanceUSD))
	assert.True(t, acc.IsActive)

	bal, err := f.validator.CurrentBalance(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.True(t, d("100").Equal(bal))
}

func TestCreateAccount_SaldoCeroNoExigeTipoDeCambio(t *testing.T) {
	f := newFixture(recordNow, nil)
	acc, err := f.accounts.Create(context.Background(), ledger.CreateAccountInput{
		Name:     "Caja pesos",
		Currency: "ARS",
	})
	require.NoError(t, err)
	assert.True(t, acc.InitialBalanceUSD.IsZero())
	assert.Nil(t, acc.InitialRate)
}

func TestCreateAccount_Errores(t *testing.T) {
	f := newFixture(recordNow, nil)

	_, err := f.accounts.Create(context.Background(), ledger.CreateAccountInput{Name: "x", Currency: "ARS", InitialBalance: d("10")})
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatchWithoutRate)

	_, err = f.accounts.Create(context.Background(), ledger.CreateAccountInput{Name: " ", Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.accounts.Create(context.Background(), ledger.CreateAccountInput{Name: "x", Currency: "USD", InitialBalance: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.accounts.Create(context.Background(), ledger.CreateAccountInput{Name: "x", Currency: "CLP"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetAccount_Inexistente(t *testing.T) {
	f := newFixture(recordNow, nil)
	_, err := f.accounts.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestUpdateMetadata_DesactivaSinTocarSaldo(t *testing.T) {
	f := newFixture(recordNow, nil)
	f.s.addAccount("caja", entity.CurrencyUSD, "100")

	acc, err := f.accounts.UpdateMetadata(context.Background(), "caja", "", false)
	require.NoError(t, err)
	assert.False(t, acc.IsActive)
	assert.Equal(t, "cuenta caja", acc.Name)
	assert.True(t, d("100").Equal(acc.InitialBalanceUSD))

	_, err = f.store.Record(context.Background(), expense("caja", "1"))
	assert.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestCreateAccount_TipoInicialConMasDecimales_SeGuardaRedondeado(t *testing.T) {
	f := newFixture(recordNow, nil)
	acc, err := f.accounts.Create(context.Background(), ledger.CreateAccountInput{
		Name:           "Banco",
		Currency:       "ARS",
		InitialBalance: d("1000000000"),
		InitialRate:    dp("1234.5678901"),
	})
	require.NoError(t, err)
	require.NotNil(t, acc.InitialRate)
	assert.Equal(t, "1234.56789", acc.InitialRate.String())
	assert.True(t, acc.InitialBalanceUSD.Equal(acc.InitialBalance.DivRound(*acc.InitialRate, 6)))

	_, err = f.accounts.Create(context.Background(), ledger.CreateAccountInput{
		Name:           "Caja",
		Currency:       "USD",
		InitialBalance: d("0.0000001"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

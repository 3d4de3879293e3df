package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxx@db:5432/ledger?sslmode=disable",
		RedactDSN("postgres://app:secreta@db:5432/ledger?sslmode=disable"))
	assert.Equal(t, "<dsn inválido>", RedactDSN("postgres://%zz"))
}

func TestIncomeTypes_SoloSumanIngresos(t *testing.T) {
	assert.ElementsMatch(t, []string{"INCOME", "FX_GAIN"}, incomeTypes())
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("6f1c1c3e-1111-4a5b-9c9d-000000000001"))
	assert.False(t, isUUID("caja"))
}

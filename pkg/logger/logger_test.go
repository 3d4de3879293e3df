package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jhoicas/agencia-ledger/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("verbose"))
}

func TestComponent_JSONConCampoComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	sub := l.Component("movement_store")
	sub.Info().Str("movement_id", "m1").Msg("movimiento registrado")
	sub.Debug().Msg("no debe aparecer")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "movement_store", entry["component"])
	assert.Equal(t, "m1", entry["movement_id"])
	assert.Equal(t, "info", entry["level"])
}

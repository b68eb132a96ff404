package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/pkg/logger"
)

func TestNew_ProductionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	log.Info().Str("batch_id", "abc").Msg("lote reconciliado")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "la salida en production debe ser JSON")
	assert.Equal(t, "abc", line["batch_id"])
	assert.Equal(t, "info", line["level"])
}

func TestNew_NivelFiltraEventos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe aparecer")
	assert.Zero(t, buf.Len(), "info no debe escribirse con nivel warn")

	log.Warn().Msg("sí debe aparecer")
	assert.NotZero(t, buf.Len())
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("descartado") })
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf}).Component("kafka-feed")

	log.Info().Msg("consumidor iniciado")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kafka-feed", line["component"])
}

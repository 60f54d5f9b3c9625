package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}

func TestRecordSimulation(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSimulation(30000, 0.42)
	})
}

func TestRecordRaceCardFetched(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRaceCardFetched()
	})
}

func TestRecordValueBets(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordValueBets(0)
		RecordValueBets(3)
	})
}

func TestHandler(t *testing.T) {
	handler := Handler()
	assert.NotNil(t, handler)
}

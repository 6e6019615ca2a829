package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/jhoicas/Inventario-minero/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Contadores(t *testing.T) {
	m := metrics.New()
	m.MovementRecorded("IN")
	m.MovementRecorded("IN")
	m.MovementRecorded("OUT")
	m.Rejected("insufficient_stock")
	m.ConflictRetried()

	n, err := testutil.GatherAndCount(m.Registry(), "inventario_movements_recorded_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `inventario_movements_recorded_total{direction="IN"} 2`)
	assert.Contains(t, string(body), `inventario_movements_rejected_total{reason="insufficient_stock"} 1`)
	assert.Contains(t, string(body), "inventario_tx_conflict_retries_total 1")
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/chainblog/internal/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordClassification(t *testing.T) {
	c := NewCollector()

	c.RecordClassification(core.OutcomeCacheHit, 0, time.Millisecond)
	c.RecordClassification(core.OutcomeSuccess, 1, 20*time.Millisecond)
	c.RecordClassification(core.OutcomeSuccess, 3, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.outcomes.WithLabelValues("cache_hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.outcomes.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.outcomes.WithLabelValues("no_key")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RecordLedgerError("donate")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chainblog_ledger_errors_total{operation="donate"} 1`)
}

package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/domain/models"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("send_to_setter", nil)
	m.Observe("send_to_setter", nil)
	m.Observe("send_to_setter", fmt.Errorf("%w: %w", models.ErrValidation, models.ErrCapacityExhausted))
	m.Scrapped(30)
	m.Scrapped(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("send_to_setter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("send_to_setter", "capacity_exhausted")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.scrapped))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("x", nil)
		m.Scrapped(1)
		m.Transferred(1)
		m.Delivered(1)
	})
}

func TestKind(t *testing.T) {
	assert.Equal(t, "insufficient_stock", Kind(&models.InsufficientStockError{Requested: 2, Available: 1}))
	assert.Equal(t, "not_found", Kind(models.NotFoundf("batch 1")))
	assert.Equal(t, "configuration", Kind(models.Configurationf("no eggs product")))
	assert.Equal(t, "consistency", Kind(models.Consistencyf("x")))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.Transferred(80)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hatchery_chicks_transferred_total 80")
}

package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(&Config{Namespace: "test"})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresNamespace(t *testing.T) {
	_, err := New(&Config{})
	assert.Error(t, err)

	c, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "/metrics", c.Config().Path)
}

func TestClient_Counter(t *testing.T) {
	c := newTestClient(t)

	counter, err := c.NewCounter("lookups_total", "Lookups.", []string{"result"})
	require.NoError(t, err)
	counter.WithLabelValues("ok").Add(3)

	_, err = c.NewCounter("lookups_total", "Lookups.", []string{"result"})
	assert.ErrorIs(t, err, ErrMetricExists)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "test_lookups_total", families[0].GetName())
	assert.Equal(t, 3.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestClient_GaugeFuncAndHandler(t *testing.T) {
	c := newTestClient(t)

	require.NoError(t, c.NewGaugeFunc("services", "Registered services.", func() float64 { return 7 }))
	gauge, err := c.NewGauge("in_use", "In use.", nil)
	require.NoError(t, err)
	gauge.WithLabelValues().Set(2)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body), "test_services 7")
	assert.Contains(t, string(body), "test_in_use 2")
}

func TestClient_Closed(t *testing.T) {
	c := newTestClient(t)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err := c.NewCounter("late_total", "Late.", nil)
	assert.ErrorIs(t, err, ErrClientClosed)
}

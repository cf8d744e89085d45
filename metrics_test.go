package mcslices

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.LayersWritten.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mcslices_layers_written_total 3")
}

func TestMemorySamplerTracksPeak(t *testing.T) {
	sampler, err := NewMemorySampler()
	require.NoError(t, err)

	m := NewMetrics()
	rss, err := sampler.Sample(m)
	require.NoError(t, err)

	assert.Positive(t, rss)
	assert.GreaterOrEqual(t, sampler.Peak(), rss)
	assert.Equal(t, float64(sampler.Peak()), counterValue(t, m.PeakResident))
}

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreRegisteredOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("pilott", reg)

	m.PacketsGenerated.WithLabelValues("AU").Inc()
	m.PacketsGenerated.WithLabelValues("AU").Inc()
	m.RecordsExtracted.Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PacketsGenerated.WithLabelValues("AU")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsExtracted))

	// a second set on a fresh registry must not collide
	assert.NotPanics(t, func() { NewNopMetrics() })
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("pilott", reg)
	m.DocumentsLoaded.WithLabelValues("success").Inc()

	path := filepath.Join(t.TempDir(), "pilott.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pilott_documents_loaded_total{status="success"} 1`)
}

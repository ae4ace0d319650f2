package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ChunkCreated()
	m.ChunkCreated()
	m.EditApplied()
	m.SetResident(5)
	m.Extracted(120)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChunksCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EditsApplied))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ResidentChunks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Extractions))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 10)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChunkCreated()
		m.Extracted(3)
		m.SetResident(1)
		m.ObserveTick(0.01)
	})
}

package prommetrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodefinder"
)

var _ nodefinder.MetricsCollector = (*Collector)(nil)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.RecordMinimization(time.Millisecond, true, nil)
	c.RecordMinimization(time.Millisecond, false, nil)
	c.RecordMinimization(time.Millisecond, false, errors.New("boom"))
	c.RecordRefinement(true)
	c.RecordRefinement(false)
	c.RecordCheckpoint(time.Millisecond, 512, nil)
	c.RecordCheckpoint(time.Millisecond, 0, errors.New("disk full"))

	assert.InDelta(t, 1, testutil.ToFloat64(c.nodes), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.refinements.WithLabelValues("scheduled")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.refinements.WithLabelValues("discarded")), 0)
	assert.InDelta(t, 512, testutil.ToFloat64(c.checkpointBytes), 0)
	assert.Equal(t, 3, testutil.CollectAndCount(c.minimizationLatency))
	assert.Equal(t, 2, testutil.CollectAndCount(c.checkpointLatency))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	var are prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &are)
}

package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csg33k/brq-ebookings/internal/metrics"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, m.Write(&pb))
	return pb.GetCounter().GetValue()
}

func TestCollector_RecordParse(t *testing.T) {
	c := metrics.NewCollector("brq", prometheus.NewRegistry())

	c.RecordParse(6, []string{"money", "money", "tarp"}, nil)
	c.RecordParse(0, nil, errors.New("bad header"))

	assert.Equal(t, 1.0, value(t, c.DocumentsParsedTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, value(t, c.DocumentsParsedTotal.WithLabelValues("format_error")))
	assert.Equal(t, 6.0, value(t, c.DetailRecordsTotal))
	assert.Equal(t, 2.0, value(t, c.ConversionFailuresTotal.WithLabelValues("money")))
	assert.Equal(t, 1.0, value(t, c.ConversionFailuresTotal.WithLabelValues("tarp")))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.NewCollector("brq", prometheus.NewRegistry())
		metrics.NewCollector("brq", prometheus.NewRegistry())
	})
	reg := prometheus.NewRegistry()
	metrics.NewCollector("brq", reg)
	assert.Panics(t, func() { metrics.NewCollector("brq", reg) }, "duplicate registration")
}

func TestCollector_Spots(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector("brq", reg)
	c.RecordSpots(11, 3)
	c.RecordSubmitOutcome("Partial")
	c.RecordStageError("spots")
	c.StageTimer("spots").ObserveDuration()

	assert.Equal(t, 11.0, value(t, c.SpotLinesTotal))
	assert.Equal(t, 3.0, value(t, c.SpotPagesTotal))
	assert.Equal(t, 1.0, value(t, c.SubmitOutcomeTotal.WithLabelValues("Partial")))
	assert.Equal(t, 1.0, value(t, c.StageErrors.WithLabelValues("spots")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, f := range families {
		if f.GetName() == "brq_stage_duration_seconds" {
			samples = f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), samples)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection
type Collector struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Parsing
	DocumentsParsedTotal    *prometheus.CounterVec
	DetailRecordsTotal      prometheus.Counter
	ConversionFailuresTotal *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec

	// Downstream payloads
	SpotLinesTotal     prometheus.Counter
	SpotPagesTotal     prometheus.Counter
	SubmitOutcomeTotal *prometheus.CounterVec

	// Pipeline stages
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
}

// NewCollector registers the collector's metrics with reg. A nil reg uses
// the default registerer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),

		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"route"},
		),

		DocumentsParsedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_parsed_total",
				Help:      "BRQ files parsed by outcome",
			},
			[]string{"outcome"}, // "ok", "format_error"
		),

		DetailRecordsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detail_records_total",
				Help:      "Detail records decoded from BRQ files",
			},
		),

		ConversionFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversion_failures_total",
				Help:      "Non-empty field values that could not be converted and were zero-filled",
			},
			[]string{"kind"},
		),

		ValidationFailuresTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Documents rejected by validation, by rule",
			},
			[]string{"rule"},
		),

		SpotLinesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spot_lines_total",
				Help:      "Spot pre-booking lines built",
			},
		),

		SpotPagesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spot_pages_total",
				Help:      "Spot payload pages stored",
			},
		),

		SubmitOutcomeTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submit_outcome_total",
				Help:      "Submitted spot pages by overall downstream status",
			},
			[]string{"status"}, // "Yes", "No", "Partial"
		),

		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"stage"},
		),

		StageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Pipeline stage failures",
			},
			[]string{"stage"},
		),
	}
}

// Timer provides timing functionality for operations
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

// NewTimer creates a new timer
func (c *Collector) NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), observer: observer}
}

// ObserveDuration records the elapsed time since timer creation
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.observer != nil {
		t.observer.Observe(d.Seconds())
	}
	return d
}

// StageTimer times one pipeline stage.
func (c *Collector) StageTimer(stage string) *Timer {
	return c.NewTimer(c.StageDuration.WithLabelValues(stage))
}

func (c *Collector) RecordStageError(stage string) {
	c.StageErrors.WithLabelValues(stage).Inc()
}

func (c *Collector) RecordHTTPRequest(route, method, status string) {
	c.HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
}

// RecordParse counts one parse attempt and, when it succeeded, its records
// and suppressed conversions.
func (c *Collector) RecordParse(details int, conversionKinds []string, err error) {
	if err != nil {
		c.DocumentsParsedTotal.WithLabelValues("format_error").Inc()
		return
	}
	c.DocumentsParsedTotal.WithLabelValues("ok").Inc()
	c.DetailRecordsTotal.Add(float64(details))
	for _, k := range conversionKinds {
		c.ConversionFailuresTotal.WithLabelValues(k).Inc()
	}
}

func (c *Collector) RecordValidationFailure(rule string) {
	c.ValidationFailuresTotal.WithLabelValues(rule).Inc()
}

func (c *Collector) RecordSpots(lines, pages int) {
	c.SpotLinesTotal.Add(float64(lines))
	c.SpotPagesTotal.Add(float64(pages))
}

func (c *Collector) RecordSubmitOutcome(status string) {
	c.SubmitOutcomeTotal.WithLabelValues(status).Inc()
}

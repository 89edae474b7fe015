package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ipmerge/ipmerge/src/internal/errors"
)

const namespace = "ipmerge"

// Stage names used as the "stage" label of the duration gauge.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StageAggregate = "aggregate"
	StageFilter    = "filter"
	StageShuffle   = "shuffle"
	StageWrite     = "write"
	StagePublish   = "publish"
)

// Metrics holds the gauges of one run in a private registry.
type Metrics struct {
	registry *prometheus.Registry

	collected     prometheus.Gauge
	excluded      prometheus.Gauge
	invalid       prometheus.Gauge
	published     prometheus.Gauge
	stageDuration *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		collected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_collected",
			Help:      "Unique addresses collected from the source archive",
		}),
		excluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_excluded",
			Help:      "Addresses removed because they fall inside an exclusion range",
		}),
		invalid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_invalid",
			Help:      "Records that could not be parsed as an IP address",
		}),
		published: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "addresses_published",
			Help:      "Addresses written to the output file",
		}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of the last run of each pipeline stage",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
	}

	m.registry.MustRegister(m.collected, m.excluded, m.invalid, m.published, m.stageDuration, m.lastSuccess)
	return m
}

func (m *Metrics) SetCollected(n int) { m.collected.Set(float64(n)) }
func (m *Metrics) SetExcluded(n int) { m.excluded.Set(float64(n)) }
func (m *Metrics) SetInvalid(n int) { m.invalid.Set(float64(n)) }
func (m *Metrics) SetPublished(n int) { m.published.Set(float64(n)) }

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Track starts timing a stage; call the returned func when the stage ends.
func (m *Metrics) Track(stage string) func() {
	start := time.Now()
	return func() {
		m.ObserveStage(stage, time.Since(start))
	}
}

func (m *Metrics) MarkSuccess(at time.Time) {
	m.lastSuccess.Set(float64(at.Unix()))
}

// Gatherer exposes the registry, e.g. for tests or an HTTP handler.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.NewInternalError("failed to write metrics textfile", err)
	}
	return nil
}

package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type runMetrics struct {
	cases    *prometheus.GaugeVec
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	runTime  prometheus.Gauge
	finished prometheus.Gauge
}

func newRunMetrics(reg prometheus.Registerer) *runMetrics {
	factory := promauto.With(reg)
	return &runMetrics{
		cases: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flightcheck_cases",
			Help: "Cases of the last run by final status",
		}, []string{"status"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flightcheck_case_attempts_total",
			Help: "Attempts made in the last run by test file",
		}, []string{"file"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightcheck_case_duration_seconds",
			Help:    "Case duration including reruns",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}, []string{"file"}),
		runTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flightcheck_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		finished: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flightcheck_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

func (m *runMetrics) observe(run *Run) {
	for _, s := range Statuses {
		m.cases.WithLabelValues(string(s)).Set(0)
	}
	for _, res := range run.Results {
		m.cases.WithLabelValues(string(res.Status)).Inc()
		m.attempts.WithLabelValues(res.File).Add(float64(res.Attempts))
		if res.Status != StatusSkipped {
			m.duration.WithLabelValues(res.File).Observe(res.Duration.Seconds())
		}
	}
	m.runTime.Set(run.Duration().Seconds())
	m.finished.Set(float64(run.FinishedAt.Unix()))
}

// WriteMetrics writes the run's metrics in the node exporter textfile format.
func WriteMetrics(path string, run *Run) error {
	reg := prometheus.NewRegistry()
	newRunMetrics(reg).observe(run)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/tutorial-records/internal/repository"
)

// MetricsService encapsulates Prometheus instrumentation. There is no HTTP
// listener; metrics are written to a textfile for a node exporter to pick up.
type MetricsService struct {
	registry        *prometheus.Registry
	commandDuration *prometheus.HistogramVec
	commandTotal    *prometheus.CounterVec
	snapshotSaves   *prometheus.CounterVec
}

// NewMetricsService registers command collectors and, when store is not nil,
// gauges reporting the size of each registry.
func NewMetricsService(store recordStore) *MetricsService {
	registry := prometheus.NewRegistry()

	commandDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "records_command_duration_seconds",
		Help:    "Duration of executed commands in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"command", "status"})

	commandTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_commands_total",
		Help: "Total number of executed commands",
	}, []string{"command", "status"})

	snapshotSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "records_snapshot_saves_total",
		Help: "Total number of snapshot saves",
	}, []string{"result"})

	registry.MustRegister(commandDuration, commandTotal, snapshotSaves)

	if store != nil {
		count := func(fn func(r *repository.Records) int) func() float64 {
			return func() float64 {
				n := 0
				_ = store.View(func(r *repository.Records) error {
					n = fn(r)
					return nil
				})
				return float64(n)
			}
		}
		registry.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "records_persons", Help: "Persons in the registry"},
				count(func(r *repository.Records) int { return r.Persons.Len() })),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "records_tutorials", Help: "Tutorial groups"},
				count(func(r *repository.Records) int { return r.Tutorials.Len() })),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "records_students", Help: "Enrolled students across tutorials"},
				count(func(r *repository.Records) int { return len(r.Tutorials.Students()) })),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: "records_assessments", Help: "Assessments in the ledger"},
				count(func(r *repository.Records) int { return r.Assessments.Len() })),
		)
	}

	return &MetricsService{
		registry:        registry,
		commandDuration: commandDuration,
		commandTotal:    commandTotal,
		snapshotSaves:   snapshotSaves,
	}
}

// ObserveCommand records one executed command.
func (m *MetricsService) ObserveCommand(command string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.commandDuration.WithLabelValues(command, status).Observe(duration.Seconds())
	m.commandTotal.WithLabelValues(command, status).Inc()
}

// ObserveSave records a snapshot save attempt.
func (m *MetricsService) ObserveSave(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.snapshotSaves.WithLabelValues(result).Inc()
}

// Gatherer exposes the registry.
func (m *MetricsService) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes every metric in the text exposition format to path.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

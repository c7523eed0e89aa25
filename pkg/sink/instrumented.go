package sink

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type sinkMetrics struct {
	writes *prometheus.CounterVec
	bytes  *prometheus.HistogramVec
}

func newSinkMetrics(reg prometheus.Registerer) (*sinkMetrics, error) {
	m := &sinkMetrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reqlog",
			Subsystem: "sink",
			Name:      "writes_total",
			Help:      "Payload writes by sink and result (ok, error).",
		}, []string{"sink", "result"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reqlog",
			Subsystem: "sink",
			Name:      "payload_bytes",
			Help:      "Size of payloads handed to the sink in bytes.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"sink"}),
	}

	var err error
	if m.writes, err = register(reg, m.writes); err != nil {
		return nil, err
	}
	if m.bytes, err = register(reg, m.bytes); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already registered collector when an identical one
// exists so several sinks can share a registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// Instrumented records Prometheus metrics around another sink.
type Instrumented struct {
	next    Sink
	name    string
	metrics *sinkMetrics
}

// NewInstrumented wraps next. A nil reg selects prometheus.DefaultRegisterer.
func NewInstrumented(next Sink, name string, reg prometheus.Registerer) (*Instrumented, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m, err := newSinkMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &Instrumented{next: next, name: name, metrics: m}, nil
}

// Write implements Sink.
func (s *Instrumented) Write(ctx context.Context, payload string) error {
	s.metrics.bytes.WithLabelValues(s.name).Observe(float64(len(payload)))
	err := s.next.Write(ctx, payload)
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.writes.WithLabelValues(s.name, result).Inc()
	return err
}

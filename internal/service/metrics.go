package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion outcomes.
const (
	OutcomeExtracted         = "extracted"
	OutcomeDegraded          = "degraded"
	OutcomeStorageFailed     = "storage_failed"
	OutcomePersistenceFailed = "persistence_failed"
)

// IngestMetrics counts receipt ingestions by outcome.
type IngestMetrics struct {
	total *prometheus.CounterVec
}

// NewIngestMetrics registers the ingestion counter on reg.
func NewIngestMetrics(reg prometheus.Registerer) (*IngestMetrics, error) {
	m := &IngestMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuel_receipt_ingest_total",
				Help: "Total number of receipt ingestions by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.total); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IngestMetrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.total.WithLabelValues(outcome).Inc()
}

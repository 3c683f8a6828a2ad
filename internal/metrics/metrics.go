// Package metrics holds the Prometheus collectors for the settlement ledger
// and the OCR pipeline.
//
// A nil *Metrics is valid and records nothing, so libraries can be used
// without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clubsettle"

// Metrics groups all collectors.
type Metrics struct {
	ledgerOps            *prometheus.CounterVec
	settlementsCompleted prometheus.Counter
	ocrAttempts          *prometheus.CounterVec
	ocrFallbacks         prometheus.Counter
	manualReview         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Settlement ledger operations by operation and result.",
		}, []string{"op", "result"}),
		settlementsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_completed_total",
			Help:      "Settlements that transitioned to completed.",
		}),
		ocrAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_attempts_total",
			Help:      "Recognition attempts by engine and outcome.",
		}, []string{"engine", "outcome"}),
		ocrFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_fallbacks_total",
			Help:      "Recognitions that fell back from the primary to the secondary engine.",
		}),
		manualReview: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_manual_review_total",
			Help:      "Parsed scans flagged for manual review, by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.ledgerOps, m.settlementsCompleted, m.ocrAttempts, m.ocrFallbacks, m.manualReview)
	return m
}

// LedgerOp records one ledger operation. result is derived from err.
func (m *Metrics) LedgerOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ledgerOps.WithLabelValues(op, result).Inc()
}

// SettlementCompleted records a Pending -> Completed transition.
func (m *Metrics) SettlementCompleted() {
	if m == nil {
		return
	}
	m.settlementsCompleted.Inc()
}

// OCRAttempt records one recognizer call.
func (m *Metrics) OCRAttempt(engine, outcome string) {
	if m == nil {
		return
	}
	m.ocrAttempts.WithLabelValues(engine, outcome).Inc()
}

// OCRFallback records a primary -> secondary fallback.
func (m *Metrics) OCRFallback() {
	if m == nil {
		return
	}
	m.ocrFallbacks.Inc()
}

// ManualReview records a scan result flagged for review.
func (m *Metrics) ManualReview(kind string) {
	if m == nil {
		return
	}
	m.manualReview.WithLabelValues(kind).Inc()
}

// Package prom records pipeline metrics with the Prometheus client and
// writes them as a node_exporter textfile, metrics.prom, in each case
// directory.
package prom

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// FileName is the textfile written per case.
const FileName = "metrics.prom"

// Recorder collects metrics for one run at a time. Flush writes them and
// starts a fresh run.
type Recorder struct {
	root string
	mu   sync.Mutex
	reg  *prometheus.Registry

	stageDuration *prometheus.GaugeVec
	callDuration  *prometheus.HistogramVec
	calls         *prometheus.CounterVec
	callFailures  *prometheus.CounterVec
	evidence      *prometheus.GaugeVec
	decision      *prometheus.GaugeVec
	flushed       prometheus.Gauge
}

// NewRecorder creates a recorder writing under root/<client_id>/.
func NewRecorder(root string) *Recorder {
	r := &Recorder{
		root: root,
		reg:  prometheus.NewRegistry(),

		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_stage_duration_seconds",
			Help: "Wall time spent in each pipeline stage",
		}, []string{"stage"}),

		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyc_collaborator_call_duration_seconds",
			Help:    "Duration of task, cascade, utility and synthesis calls",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 15, 30, 60, 120},
		}, []string{"kind", "name"}),

		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_collaborator_calls_total",
			Help: "Collaborator calls by kind and name",
		}, []string{"kind", "name"}),

		callFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kyc_collaborator_failures_total",
			Help: "Collaborator calls that failed and were skipped",
		}, []string{"kind", "name"}),

		evidence: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_evidence_records",
			Help: "Evidence records by evidence class",
		}, []string{"class"}),

		decision: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyc_decision",
			Help: "Set to 1 for the recorded decision and risk level",
		}, []string{"decision", "risk_level"}),

		flushed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kyc_metrics_flushed_timestamp_seconds",
			Help: "Unix time the metrics file was written",
		}),
	}
	r.reg.MustRegister(r.stageDuration, r.callDuration, r.calls, r.callFailures, r.evidence, r.decision, r.flushed)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// ObserveCall records one collaborator call and whether it failed.
func (r *Recorder) ObserveCall(kind, name string, d time.Duration, err error) {
	r.calls.WithLabelValues(kind, name).Inc()
	r.callDuration.WithLabelValues(kind, name).Observe(d.Seconds())
	if err != nil {
		r.callFailures.WithLabelValues(kind, name).Inc()
	}
}

// ObserveEvidence records the class distribution of the evidence base.
func (r *Recorder) ObserveEvidence(records []domain.EvidenceRecord) {
	counts := make(map[domain.EvidenceClass]int, len(domain.EvidenceClasses))
	for _, rec := range records {
		counts[rec.EvidenceClass]++
	}
	for _, class := range domain.EvidenceClasses {
		r.evidence.WithLabelValues(string(class)).Set(float64(counts[class]))
	}
}

// ObserveDecision records the recommended or final decision. A later call
// replaces an earlier one.
func (r *Recorder) ObserveDecision(decision domain.Decision, risk domain.RiskLevel) {
	r.decision.Reset()
	r.decision.WithLabelValues(string(decision), string(risk)).Set(1)
}

// Flush writes the collected metrics to the case directory and resets them.
func (r *Recorder) Flush(_ context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("%w: empty client id", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Join(r.root, clientID)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create case directory: %w", err)
	}
	r.flushed.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(filepath.Join(dir, FileName), r.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	r.stageDuration.Reset()
	r.callDuration.Reset()
	r.calls.Reset()
	r.callFailures.Reset()
	r.evidence.Reset()
	r.decision.Reset()
	return nil
}

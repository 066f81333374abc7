package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records settlement activity counters.
type PaymentMetrics struct {
	recorded *prometheus.CounterVec
	failed   *prometheus.CounterVec
	gateway  *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Payments recorded against orders, by mode.",
	}, []string{"mode"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Payment recording attempts rejected, by reason.",
	}, []string{"reason"})
	gateway := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Outbound payment gateway calls, by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(recorded, failed, gateway)
	return &PaymentMetrics{
		recorded: recorded,
		failed:   failed,
		gateway:  gateway,
	}
}

// IncRecorded increments the recorded counter for the given payment mode.
func (p *PaymentMetrics) IncRecorded(mode string) {
	if p == nil || p.recorded == nil {
		return
	}
	p.recorded.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailed increments the failure counter for the given reason.
func (p *PaymentMetrics) IncFailed(reason string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncGateway increments the gateway call counter.
func (p *PaymentMetrics) IncGateway(operation, outcome string) {
	if p == nil || p.gateway == nil {
		return
	}
	p.gateway.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}

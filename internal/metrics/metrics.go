package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeNotAuthorized   = "not_authorized"
	OutcomeNotFound        = "not_found"
	OutcomeInvalid         = "invalid"
	OutcomeFailed          = "failed"
)

type WorkspaceMetrics struct {
	OperationsTotal      *prometheus.CounterVec
	InvitesAcceptedTotal *prometheus.CounterVec
	InvitesSweptTotal    prometheus.Counter
}

func NewMetrics() *WorkspaceMetrics {
	return &WorkspaceMetrics{
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_operations_total",
			Help: "Total number of workspace service operations by outcome",
		}, []string{"operation", "outcome"}),
		InvitesAcceptedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workspace_invites_accepted_total",
			Help: "Invite redemptions by result (joined, already_member, invalid, expired)",
		}, []string{"result"}),
		InvitesSweptTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workspace_invites_swept_total",
			Help: "Expired invites removed by the sweep",
		}),
	}
}

func (m *WorkspaceMetrics) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.OperationsTotal,
		m.InvitesAcceptedTotal,
		m.InvitesSweptTotal,
	}

	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return nil
}

// ObserveOperation is safe to call on a nil receiver.
func (m *WorkspaceMetrics) ObserveOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *WorkspaceMetrics) ObserveInviteAccepted(result string) {
	if m == nil {
		return
	}
	m.InvitesAcceptedTotal.WithLabelValues(result).Inc()
}

func (m *WorkspaceMetrics) ObserveSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.InvitesSweptTotal.Add(float64(n))
}

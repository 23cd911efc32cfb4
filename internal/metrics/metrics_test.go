package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceMetrics_Register(t *testing.T) {
	m := NewMetrics()
	registry := prometheus.NewRegistry()

	require.NoError(t, m.Register(registry))
	require.Error(t, m.Register(registry), "double registration must fail")
}

func TestWorkspaceMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveOperation("create_workspace", OutcomeOK)
	m.ObserveOperation("create_workspace", OutcomeOK)
	m.ObserveInviteAccepted("joined")
	m.ObserveSwept(3)
	m.ObserveSwept(0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("create_workspace", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.InvitesAcceptedTotal.WithLabelValues("joined")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.InvitesSweptTotal))
}

func TestWorkspaceMetrics_NilSafe(t *testing.T) {
	var m *WorkspaceMetrics
	require.NotPanics(t, func() {
		m.ObserveOperation("get_workspace", OutcomeFailed)
		m.ObserveInviteAccepted("expired")
		m.ObserveSwept(1)
	})
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRecordCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCall("qry-state", time.Now(), "")
	m.RecordCall("qry-state", time.Now(), "")
	m.RecordCall("execute-txlist", time.Now(), "connection error")
	m.RecordReconnect()

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range metric.GetLabel() {
				key += "/" + lp.GetValue()
			}
			if metric.GetCounter() != nil {
				counts[key] = metric.GetCounter().GetValue()
			}
		}
	}

	require.Equal(t, float64(2), counts["mcdclient_rpc_calls_total/qry-state"])
	require.Equal(t, float64(1), counts["mcdclient_rpc_calls_total/execute-txlist"])
	require.Equal(t, float64(1), counts["mcdclient_rpc_errors_total/connection error/execute-txlist"])
	require.Equal(t, float64(1), counts["mcdclient_transport_reconnects_total"])
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	require.Panics(t, func() { NewMetrics(reg) })
}

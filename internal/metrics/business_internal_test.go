// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.GetGauge().GetValue()
}

func getHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, h.Write(metric))
	return metric.GetHistogram().GetSampleCount()
}

func TestActiveSendersGauge(t *testing.T) {
	before := getGaugeValue(t, activeSenders)
	AddActiveSenders(4)
	assert.Equal(t, before+4, getGaugeValue(t, activeSenders))
	AddActiveSenders(-4)
	assert.Equal(t, before, getGaugeValue(t, activeSenders))
}

func TestRecordGeneration(t *testing.T) {
	count := getHistogramCount(t, generationDuration)
	generated := testutil.ToFloat64(messagesGenerated)

	RecordGeneration(250, 40*time.Millisecond)

	assert.Equal(t, count+1, getHistogramCount(t, generationDuration))
	assert.Equal(t, generated+250, testutil.ToFloat64(messagesGenerated))
}

func TestRecordMessageResult(t *testing.T) {
	tests := []struct {
		name    string
		failed  bool
		outcome string
	}{
		{"success", false, "success"},
		{"failure", true, "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := messagesSent.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(counter)
			samples := getHistogramCount(t, messageSimulatedSeconds)

			RecordMessageResult(tt.failed, 3)

			assert.Equal(t, before+1, testutil.ToFloat64(counter))
			assert.Equal(t, samples+1, getHistogramCount(t, messageSimulatedSeconds))
		})
	}
}

func TestLiveSessionsAndQueueDepth(t *testing.T) {
	AddLiveSessions(1)
	defer AddLiveSessions(-1)
	assert.GreaterOrEqual(t, getGaugeValue(t, liveSessions), 1.0)

	SetResultQueueDepth(17)
	assert.Equal(t, 17.0, getGaugeValue(t, resultQueueDepth))
	SetResultQueueDepth(0)
}

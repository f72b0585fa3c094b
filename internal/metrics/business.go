// SPDX-License-Identifier: MIT
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Producer lifecycle
	producersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smsmanager_producers_created_total",
		Help: "Total number of producers created",
	})

	producersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smsmanager_producers_deleted_total",
		Help: "Total number of producers deleted",
	})

	statusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsmanager_producer_status_transitions_total",
		Help: "Producer status transitions by target status",
	}, []string{"status"})

	// Generation
	messagesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "smsmanager_messages_generated_total",
		Help: "Total number of messages generated",
	})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "smsmanager_generation_duration_seconds",
		Help:    "Time spent generating and storing a message batch",
		Buckets: prometheus.DefBuckets,
	})

	// Sending
	messagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsmanager_messages_sent_total",
		Help: "Messages processed by the sender pool by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	messageSimulatedSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "smsmanager_message_simulated_seconds",
		Help:    "Simulated send time per message",
		Buckets: prometheus.LinearBuckets(0, 1, 16),
	})

	activeSenders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "smsmanager_active_senders",
		Help: "Number of sender workers currently running",
	})

	activations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsmanager_activations_total",
		Help: "Producer activations by result",
	}, []string{"result"}) // result=completed|cancelled|failed|conflict

	resultQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "smsmanager_result_queue_depth",
		Help: "Results waiting for the updater goroutine",
	})

	// Dashboard
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsmanager_dashboard_cache_lookups_total",
		Help: "Dashboard query cache lookups by result",
	}, []string{"result"}) // result=hit|miss|error

	liveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "smsmanager_dashboard_live_sessions",
		Help: "Open live-view websocket sessions",
	})

	configReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smsmanager_config_reloads_total",
		Help: "Configuration reloads by outcome",
	}, []string{"outcome"})
)

func IncProducerCreated() { producersCreated.Inc() }
func IncProducerDeleted() { producersDeleted.Inc() }

func RecordStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

// RecordGeneration records a completed generation batch.
func RecordGeneration(count int, d time.Duration) {
	messagesGenerated.Add(float64(count))
	generationDuration.Observe(d.Seconds())
}

// RecordMessageResult records one processed message.
func RecordMessageResult(failed bool, simulatedSeconds int) {
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	messagesSent.WithLabelValues(outcome).Inc()
	messageSimulatedSeconds.Observe(float64(simulatedSeconds))
}

func AddActiveSenders(delta int)    { activeSenders.Add(float64(delta)) }
func IncActivation(result string)   { activations.WithLabelValues(result).Inc() }
func SetResultQueueDepth(depth int) { resultQueueDepth.Set(float64(depth)) }

func IncCacheLookup(result string) { cacheLookups.WithLabelValues(result).Inc() }
func AddLiveSessions(delta int)    { liveSessions.Add(float64(delta)) }

func IncConfigReload(outcome string) { configReloads.WithLabelValues(outcome).Inc() }

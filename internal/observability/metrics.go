// Package observability holds the application's Prometheus collectors.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mikromatter_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnections is the gauge of active feed WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mikromatter_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mikromatter_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// BroadcastEvents counts realtime events published, by event type.
	BroadcastEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mikromatter_broadcast_events_total",
		Help: "Total number of realtime events published by type",
	}, []string{"event_type"})

	// HashtagsIndexed counts hashtag links written by the indexer.
	HashtagsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mikromatter_hashtags_indexed_total",
		Help: "Total number of post-hashtag links written",
	})
)

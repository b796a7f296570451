package main

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	roomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "rooms_created_total",
			Help:      "Total rooms created.",
		},
	)
	roomsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "rooms_active",
			Help:      "Rooms currently registered.",
		},
	)
	joins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "joins_total",
			Help:      "Join attempts by result.",
		},
		[]string{"result"},
	)
	relayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "messages_relayed_total",
			Help:      "Messages forwarded between occupants.",
		},
		[]string{"type"},
	)
	dropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "messages_dropped_total",
			Help:      "Inbound messages dropped without forwarding.",
		},
		[]string{"reason"},
	)
	connectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tictactoe",
			Subsystem: "relay",
			Name:      "connections_active",
			Help:      "Open client connections.",
		},
		[]string{"transport"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(roomsCreated, roomsActive, joins, relayed, dropped, connectionsActive)
	})
}

func RecordRoomCreated(active int) {
	RegisterMetrics()
	roomsCreated.Inc()
	roomsActive.Set(float64(active))
}

func RecordRoomClosed(active int) {
	RegisterMetrics()
	roomsActive.Set(float64(active))
}

func RecordJoin(result string) {
	RegisterMetrics()
	joins.WithLabelValues(result).Inc()
}

func RecordRelayed(messageType string) {
	RegisterMetrics()
	relayed.WithLabelValues(messageType).Inc()
}

func RecordDropped(reason string) {
	RegisterMetrics()
	dropped.WithLabelValues(reason).Inc()
}

func RecordConnectionOpened(transport string) {
	RegisterMetrics()
	connectionsActive.WithLabelValues(transport).Inc()
}

func RecordConnectionClosed(transport string) {
	RegisterMetrics()
	connectionsActive.WithLabelValues(transport).Dec()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bingo_rooms_created_total",
		Help: "Rooms created since process start.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bingo_rooms_active",
		Help: "Rooms currently held in the registry.",
	})

	ClaimsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bingo_claims_accepted_total",
		Help: "Number claims accepted and broadcast.",
	})

	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bingo_games_finished_total",
		Help: "Games that reached a terminal result.",
	})

	ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bingo_ws_connections_open",
		Help: "Live websocket connections.",
	})
)

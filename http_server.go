package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gobwas/ws"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tictactoe-relay/code"
)

type HTTPHandler struct {
	Relay      *Relay
	SendBuffer int
}

func NewHTTPServer(relay *Relay, cfg *Config) http.Handler {
	RegisterMetrics()
	httpHandler := HTTPHandler{Relay: relay, SendBuffer: cfg.SendBuffer}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET"},
		AllowCredentials: false,
	}))
	r.Use(middleware.RealIP)
	if cfg.RateLimit > 0 {
		r.Use(httprate.Limit(cfg.RateLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
	}
	r.Use(middleware.Heartbeat("/"))

	r.Get("/ws", httpHandler.websocket())
	r.Get("/socket", httpHandler.websocket())
	r.Get("/rooms/{roomCode}", httpHandler.getRoom())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h HTTPHandler) websocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		transport := NewWebsocketTransport(conn, r.RemoteAddr)
		NewConnection(transport, "websocket", h.SendBuffer).Serve(h.Relay)
	}
}

func (h HTTPHandler) getRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := code.Normalize(chi.URLParam(r, "roomCode"))
		if !code.Valid(roomCode) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		info, exists := h.Relay.Registry().Info(roomCode)
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	}
}

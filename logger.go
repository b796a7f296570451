package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// ConfigureLogger sets the global level and output. Unknown levels fall
// back to info.
func ConfigureLogger(level string, pretty bool) {
	zerolog.SetGlobalLevel(parseLogLevel(level))
	if pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func parseLogLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug", "dev", "development":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type ConnLogger struct {
	zerolog zerolog.Logger
}

func GetConnLogger(ip string, connID string, transport string) ConnLogger {
	return ConnLogger{log.With().Str("ip", ip).Str("conn-id", connID).Str("transport", transport).Logger()}
}

func (l ConnLogger) Connected() {
	l.zerolog.Info().Msg("Client connected")
}

func (l ConnLogger) Disconnected() {
	l.zerolog.Info().Msg("Client disconnected")
}

func (l ConnLogger) SendQueueFull() {
	l.zerolog.Warn().Msg("Send queue full, closing connection")
}

func (l ConnLogger) WriteFailed(err error) {
	l.zerolog.Debug().Err(err).Msg("Write failed")
}

func (l ConnLogger) ReadFailed(err error) {
	l.zerolog.Debug().Err(err).Msg("Read ended")
}

func (l ConnLogger) EncodeFailed(err error) {
	l.zerolog.Error().Err(err).Msg("Could not encode message")
}

func peerLogger(peer Peer) *zerolog.Logger {
	logger := log.With().Str("conn-id", peer.ID()).Logger()
	return &logger
}

func LogCreatedRoom(peer Peer, roomCode string) {
	peerLogger(peer).Info().Str("room-code", roomCode).Msg("Room created")
}

func LogCreateRoomFailed(peer Peer, err error) {
	peerLogger(peer).Error().Err(err).Msg("Room creation failed")
}

func LogJoinedRoom(peer Peer, roomCode string) {
	peerLogger(peer).Info().Str("room-code", roomCode).Msg("Player joined room")
}

func LogJoinFailed(peer Peer, roomCode string) {
	peerLogger(peer).Info().Str("room-code", roomCode).Msg("Failed to join room")
}

func LogRelayed(peer Peer, roomCode string, messageType string) {
	peerLogger(peer).Debug().Str("room-code", roomCode).Str("type", messageType).Msg("Relayed")
}

func LogDropped(peer Peer, reason string, messageType string) {
	peerLogger(peer).Debug().Str("reason", reason).Str("type", messageType).Msg("Dropped message")
}

func LogMalformedMessage(peer Peer, err error) {
	peerLogger(peer).Warn().Err(err).Msg("Dropped malformed message")
}

func LogPlayerLeft(peer Peer, roomCode string, remaining int) {
	peerLogger(peer).Info().Str("room-code", roomCode).Int("remaining", remaining).Msg("Player left room")
}

func LogClosedRoom(roomCode string) {
	log.Info().Str("room-code", roomCode).Msg("Room closed")
}

func LogStartedServer(addr string) {
	log.Info().Msgf("Starting server on %v", addr)
}

func LogStartedTCPServer(addr string) {
	log.Info().Msgf("Starting TCP server on %v", addr)
}

func LogStoppedServer(rooms int, connections int64) {
	log.Info().Int("rooms", rooms).Int64("connections", connections).Msg("Server stopped")
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}

func LogAcceptFailed(err error) {
	log.Error().Err(err).Msg("Failed to accept TCP connection")
}

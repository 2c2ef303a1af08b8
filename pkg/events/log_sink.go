package events

import (
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// LogSink renders events as structured log lines via zerolog, matching
// the teacher's logging style.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink wraps logger for use as a Sink.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{log: logger}
}

func (l *LogSink) ClientConnected(clientID string) {
	l.log.Info().Str("client_id", clientID).Msg("client connected")
}

func (l *LogSink) ClientDisconnected(clientID string) {
	l.log.Info().Str("client_id", clientID).Msg("client disconnected")
}

func (l *LogSink) OSCMessage(frameID uint32, timestampMillis int64, objectCount, messageSize, connectedClients int) {
	l.log.Debug().
		Uint32("frame_id", frameID).
		Int64("timestamp_ms", timestampMillis).
		Int("object_count", objectCount).
		Str("message_size", humanize.Bytes(uint64(messageSize))).
		Int("connected_clients", connectedClients).
		Msg("osc frame broadcast")
}

func (l *LogSink) ServerStatus(running bool, connectedClients int) {
	l.log.Info().
		Bool("running", running).
		Int("connected_clients", connectedClients).
		Msg("server status changed")
}

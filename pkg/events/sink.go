// Package events defines the observability sink the core publishes
// lifecycle events to. The core never imports a UI or transport layer
// directly; it only calls methods on an injected Sink.
package events

// Sink receives the structured events the core emits. Implementations
// must not block the caller for long and must not panic.
type Sink interface {
	// ClientConnected fires once a peer completes its WebSocket
	// upgrade and is attached to the broadcast hub.
	ClientConnected(clientID string)
	// ClientDisconnected fires once a peer's connection is torn down,
	// for any reason (close, I/O error, or hub closed).
	ClientDisconnected(clientID string)
	// OSCMessage fires once per produced frame.
	OSCMessage(frameID uint32, timestampMillis int64, objectCount, messageSize, connectedClients int)
	// ServerStatus fires when the frame producer starts or stops,
	// carrying the connected-client count at that moment. Client
	// count changes on their own are reported only through
	// ClientConnected/ClientDisconnected.
	ServerStatus(running bool, connectedClients int)
}

// NoopSink discards every event. Used by headless deployments.
type NoopSink struct{}

func (NoopSink) ClientConnected(string)    {}
func (NoopSink) ClientDisconnected(string) {}
func (NoopSink) OSCMessage(uint32, int64, int, int, int) {}
func (NoopSink) ServerStatus(bool, int)    {}

// multiSink fans one event out to several sinks in order.
type multiSink struct {
	sinks []Sink
}

// Multi composes several sinks into one, so a deployment can run e.g.
// a log sink and a metrics sink side by side.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) ClientConnected(clientID string) {
	for _, s := range m.sinks {
		s.ClientConnected(clientID)
	}
}

func (m *multiSink) ClientDisconnected(clientID string) {
	for _, s := range m.sinks {
		s.ClientDisconnected(clientID)
	}
}

func (m *multiSink) OSCMessage(frameID uint32, timestampMillis int64, objectCount, messageSize, connectedClients int) {
	for _, s := range m.sinks {
		s.OSCMessage(frameID, timestampMillis, objectCount, messageSize, connectedClients)
	}
}

func (m *multiSink) ServerStatus(running bool, connectedClients int) {
	for _, s := range m.sinks {
		s.ServerStatus(running, connectedClients)
	}
}

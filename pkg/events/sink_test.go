package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	connected    []string
	disconnected []string
	oscCount     int
	statusCalls  int
	lastRunning  bool
}

func (r *recordingSink) ClientConnected(clientID string)    { r.connected = append(r.connected, clientID) }
func (r *recordingSink) ClientDisconnected(clientID string) { r.disconnected = append(r.disconnected, clientID) }
func (r *recordingSink) OSCMessage(uint32, int64, int, int, int) { r.oscCount++ }
func (r *recordingSink) ServerStatus(running bool, _ int) {
	r.statusCalls++
	r.lastRunning = running
}

func TestNoopSink_DoesNotPanic(t *testing.T) {
	var s Sink = NoopSink{}
	s.ClientConnected("a")
	s.ClientDisconnected("a")
	s.OSCMessage(1, 2, 3, 4, 5)
	s.ServerStatus(true, 1)
}

func TestMulti_FansOutToAllSinks(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	s := Multi(a, b)

	s.ClientConnected("peer-1")
	s.OSCMessage(1, 100, 2, 64, 1)
	s.ServerStatus(true, 1)

	for _, r := range []*recordingSink{a, b} {
		assert.Equal(t, []string{"peer-1"}, r.connected)
		assert.Equal(t, 1, r.oscCount)
		assert.Equal(t, 1, r.statusCalls)
		assert.True(t, r.lastRunning)
	}
}

func TestMulti_EmptyIsNoop(t *testing.T) {
	s := Multi()
	s.ClientConnected("x")
}

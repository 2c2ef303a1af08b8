// Package wsserver accepts loopback WebSocket connections and couples
// each peer to the broadcast hub. Its upgrade handshake, ping/pong
// heartbeat, and read/write goroutine pairing follow the teacher's
// stream WebSocket handler (ws_stream.go's handleStreamWebSocketInternal
// and VideoStreamer.heartbeat), generalized from a video-frame protocol
// to plain OSC bundle frames with no client-to-server payload.
package wsserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/jhbruhn/tuio-simulator/pkg/broadcast"
	"github.com/jhbruhn/tuio-simulator/pkg/events"
)

const (
	pingInterval = 5 * time.Second
	pongWait     = 15 * time.Second
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ErrAlreadyRunning is returned by Start when the server is already
// listening.
var ErrAlreadyRunning = errors.New("wsserver: already running")

// ErrNotRunning is returned by Stop when the server is not listening.
var ErrNotRunning = errors.New("wsserver: not running")

// Server accepts WebSocket clients on a loopback TCP port and attaches
// each one to a broadcast.Hub subscription.
type Server struct {
	hub  *broadcast.Hub
	sink events.Sink
	log  zerolog.Logger

	mu       sync.Mutex
	running  bool
	listener net.Listener
	http     *http.Server
	peers    conc.WaitGroup
}

// New builds a Server bound to hub. sink receives client connect/
// disconnect events.
func New(hub *broadcast.Hub, sink events.Sink, log zerolog.Logger) *Server {
	return &Server{hub: hub, sink: sink, log: log}
}

// SetHub swaps the broadcast hub new connections subscribe to.
// Callers must only call this while the server is stopped —
// typically right before Start, to hand it a freshly created hub for
// the new run.
func (s *Server) SetHub(hub *broadcast.Hub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub = hub
}

// IsRunning reports whether the server currently holds an open
// listener.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addr returns the bound listener address, or nil if the server is
// not running. Useful when Start was called with port 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds 127.0.0.1:port and begins accepting WebSocket upgrades.
// Returns once the listener is bound; a failed bind is retried a
// bounded number of times via retry-go before Start returns the error.
// Accept errors are not retried: once http.Server.Serve returns, the
// error is logged and the acceptor stops.
//
// Stop permanently closes the current hub, so a caller that restarts
// the same Server after Stop must call SetHub with a freshly created
// *broadcast.Hub first; otherwise every new connection's Subscribe
// call will fail against the already-closed one.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	var listener net.Listener
	err := retry.Do(func() error {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		listener = l
		return nil
	}, retry.Attempts(3), retry.Delay(200*time.Millisecond))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)

	httpServer := &http.Server{Handler: mux}

	s.listener = listener
	s.http = httpServer
	s.running = true

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("websocket listener stopped unexpectedly")
		}
	}()

	return nil
}

// Stop closes the listener and closes the broadcast hub so every
// attached peer's subscription reports Closed, then waits for each
// peer's goroutine pair to tear down. Closing the hub is load-bearing:
// http.Server.Shutdown does not touch already-hijacked WebSocket
// connections, so without it a still-connected, ping-responsive peer
// would leave Stop blocked on peers.Wait() forever.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotRunning
	}
	httpServer := s.http
	hub := s.hub
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)

	hub.Close()
	s.peers.Wait()
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub, ok := s.hub.Subscribe()
	if !ok {
		conn.Close()
		return
	}

	clientID := uuid.NewString()
	s.sink.ClientConnected(clientID)

	s.peers.Go(func() {
		s.runPeer(clientID, conn, sub)
	})
}

// runPeer pairs an outbound goroutine (hub events -> socket frames)
// with the connection's own read loop (pings, pongs, client close)
// until either side terminates, then tears the peer down.
func (s *Server) runPeer(clientID string, conn *websocket.Conn, sub *broadcast.Subscriber) {
	defer func() {
		sub.Unsubscribe()
		conn.Close()
		s.sink.ClientDisconnected(clientID)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	readErrCh := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErrCh <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-readErrCh:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Str("client_id", clientID).Msg("websocket read error")
			}
			return

		case ev, open := <-sub.Events():
			if !open {
				s.sendClose(conn)
				return
			}
			if err := s.writeEvent(conn, ev); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ev broadcast.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if ev.Lagged > 0 {
		// No separate control channel exists in the wire protocol; a
		// lag notice is logged server-side rather than sent to peers.
		s.log.Warn().Int("dropped_frames", ev.Lagged).Msg("subscriber lagged, resuming from newest frame")
		return nil
	}
	return conn.WriteMessage(websocket.BinaryMessage, ev.Frame)
}

func (s *Server) sendClose(conn *websocket.Conn) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server closed"))
}

// Package command implements the synchronous validating façade the
// surrounding application drives: start/stop the server, mutate
// objects, read status. It mirrors the teacher's pattern of a thin
// command layer over shared, mutex-guarded state (session_registry.go),
// generalized from desktop session bookkeeping to TUIO object
// bookkeeping, and the validation ranges are ported from
// original_source/src-tauri/src/commands.rs.
package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhbruhn/tuio-simulator/pkg/broadcast"
	"github.com/jhbruhn/tuio-simulator/pkg/events"
	"github.com/jhbruhn/tuio-simulator/pkg/scheduler"
	"github.com/jhbruhn/tuio-simulator/pkg/tuio"
	"github.com/jhbruhn/tuio-simulator/pkg/wsserver"
)

const (
	minComponentID = 1
	maxComponentID = 24
	minFPS         = 1
	maxFPS         = 120
)

// Sentinel validation/state errors, reported verbatim to the caller
// per spec.md §7. There is no ErrNotRunning: StopServer is
// unconditionally idempotent (spec.md scenario 6), so stopping an
// already-stopped server is a successful no-op, not an error.
var (
	ErrAlreadyRunning     = errors.New("command: server already running")
	ErrOutOfRange         = errors.New("command: value out of range")
	ErrDuplicateComponent = errors.New("command: component id already in use")
	ErrNotFound           = errors.New("command: session id not found")
)

// ServerStatus mirrors spec.md §6.1's get_server_status result shape.
type ServerStatus struct {
	Running          bool
	Port             int
	FPS              int
	ConnectedClients int
	FrameCount       uint32
	ObjectCount      int
}

// Surface is the single entry point the application (CLI, UI, tests)
// drives. It owns the object store, scheduler, broadcast hub, and
// WebSocket acceptor for one simulated server instance.
type Surface struct {
	store  *tuio.Store
	config *scheduler.Config
	sched  *scheduler.Scheduler
	ws     *wsserver.Server
	sink   events.Sink
	log    zerolog.Logger

	mu   sync.RWMutex
	hub  *broadcast.Hub
	port int
}

// New builds a Surface with the given starting configuration. The
// server is Stopped until StartServer is called.
func New(fps int, width, height uint16, source string, pointerMode bool, sink events.Sink, log zerolog.Logger) *Surface {
	store := tuio.NewStore()
	hub := broadcast.NewHub()
	config := scheduler.NewConfig(fps, width, height, source, pointerMode)
	sched := scheduler.New(store, hub, config, sink, log)
	ws := wsserver.New(hub, sink, log)

	return &Surface{
		store:  store,
		hub:    hub,
		config: config,
		sched:  sched,
		ws:     ws,
		sink:   sink,
		log:    log,
	}
}

// StartServer binds port and begins frame production. Errors if
// already running or if the bind fails. A fresh broadcast hub is
// wired into the scheduler and acceptor on every start, so a peer
// connected to a prior run can never observe state belonging to a
// later one.
func (s *Surface) StartServer(ctx context.Context, port int) error {
	if s.sched.IsRunning() {
		return ErrAlreadyRunning
	}

	hub := broadcast.NewHub()
	s.mu.Lock()
	s.hub = hub
	s.port = port
	s.mu.Unlock()

	s.sched.SetHub(hub)
	s.ws.SetHub(hub)

	if err := s.ws.Start(port); err != nil {
		return fmt.Errorf("command: bind failed: %w", err)
	}
	s.sched.Start(ctx)
	return nil
}

// StopServer clears the running flag, aborts the producer, and tears
// down the acceptor. Idempotent: calling it when already stopped is a
// no-op success, matching spec.md scenario 6 ("stop_server called
// twice returns without error both times") and the ground-truth
// original's unconditionally-Ok stop_server.
func (s *Surface) StopServer() error {
	if !s.sched.IsRunning() {
		return nil
	}
	s.sched.Stop()
	if err := s.ws.Stop(); err != nil {
		s.log.Warn().Err(err).Msg("websocket acceptor stop reported an error")
	}
	return nil
}

// AddObject allocates a session id for a new object at (x, y) tagged
// with componentID, which doubles as the TUIO type id (the simulator
// exposes no separate type-id selection). Rejects componentID outside
// [1,24], out-of-range coordinates, or an already-live componentID.
func (s *Surface) AddObject(componentID uint16, x, y float32) (uint32, error) {
	if componentID < minComponentID || componentID > maxComponentID {
		return 0, ErrOutOfRange
	}
	if !tuio.InCanvasRange(x, y) {
		return 0, ErrOutOfRange
	}
	if s.store.HasComponentID(componentID) {
		return 0, ErrDuplicateComponent
	}

	id := s.store.AllocateSessionID()
	now := time.Now().UnixMilli()
	obj := tuio.Object{
		SessionID:   id,
		TypeID:      componentID,
		UserID:      0,
		ComponentID: componentID,
		X:           x,
		Y:           y,
		LastX:       x,
		LastY:       y,
		LastUpdate:  now,
	}
	if err := s.store.Add(obj); err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateObject moves the object identified by sessionID. Rejects
// out-of-range coordinates or an unknown session id.
func (s *Surface) UpdateObject(sessionID uint32, x, y, angle float32) error {
	if !tuio.InCanvasRange(x, y) {
		return ErrOutOfRange
	}
	now := time.Now().UnixMilli()
	if err := s.store.Update(sessionID, x, y, angle, now); err != nil {
		return ErrNotFound
	}
	return nil
}

// RemoveObject deletes the object identified by sessionID.
func (s *Surface) RemoveObject(sessionID uint32) error {
	if err := s.store.Remove(sessionID); err != nil {
		return ErrNotFound
	}
	return nil
}

// SetFrameRate updates the tick rate, effective at the scheduler's
// next cycle. Rejects fps outside [1,120].
func (s *Surface) SetFrameRate(fps int) error {
	if fps < minFPS || fps > maxFPS {
		return ErrOutOfRange
	}
	s.config.SetFPS(fps)
	return nil
}

// SetCanvasDimensions updates the dimensions stamped into every FRM
// message. Rejects width or height of 0.
func (s *Surface) SetCanvasDimensions(width, height uint16) error {
	if width == 0 || height == 0 {
		return ErrOutOfRange
	}
	s.config.SetDimensions(width, height)
	return nil
}

// GetServerStatus returns the current snapshot described by spec.md
// §6.1.
func (s *Surface) GetServerStatus() ServerStatus {
	s.mu.RLock()
	hub, port := s.hub, s.port
	s.mu.RUnlock()

	return ServerStatus{
		Running:          s.sched.IsRunning(),
		Port:             port,
		FPS:              s.config.FPS(),
		ConnectedClients: hub.Count(),
		FrameCount:       s.sched.FrameCount(),
		ObjectCount:      s.store.Len(),
	}
}

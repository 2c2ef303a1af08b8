// Package scheduler drives the periodic frame production loop: at
// each tick it estimates velocities, snapshots the object store,
// encodes an OSC bundle, and publishes it to the broadcast hub. Its
// Stopped/Running lifecycle and atomic running flag follow the
// teacher's SharedVideoSource start/stop pattern
// (shared_video_source.go), generalized from a single GStreamer
// pipeline to a configurable-fps ticker.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhbruhn/tuio-simulator/pkg/broadcast"
	"github.com/jhbruhn/tuio-simulator/pkg/events"
	"github.com/jhbruhn/tuio-simulator/pkg/osc"
	"github.com/jhbruhn/tuio-simulator/pkg/tuio"
)

// FrameSource supplies the live object snapshot for each tick.
// *tuio.Store satisfies this.
type FrameSource interface {
	Snapshot(nowMillis int64) []tuio.Object
}

// Publisher delivers an encoded frame to every connected subscriber.
// *broadcast.Hub satisfies this.
type Publisher interface {
	Publish(frame []byte)
	Count() int
}

// Clock abstracts wall-clock reads so tests can inject a deterministic
// source instead of time.Now.
type Clock func() time.Time

// Config is the live, concurrently-adjustable frame configuration. A
// *Config is shared between the scheduler and the command surface;
// Get/Set use atomics so a running scheduler picks up changes from the
// next tick onward without a restart.
type Config struct {
	fps         atomic.Int64
	width       atomic.Int64
	height      atomic.Int64
	source      atomic.Value // string
	pointerMode atomic.Bool
}

// NewConfig returns a Config seeded with the given values. pointerMode
// selects whether ticks encode /tuio2/ptr (pointer) or /tuio2/tok
// (token) messages; it is a deploy-time capability (see DESIGN.md,
// "PTR mode") with no corresponding command-surface setter.
func NewConfig(fps int, width, height uint16, source string, pointerMode bool) *Config {
	c := &Config{}
	c.fps.Store(int64(fps))
	c.width.Store(int64(width))
	c.height.Store(int64(height))
	c.source.Store(source)
	c.pointerMode.Store(pointerMode)
	return c
}

func (c *Config) FPS() int { return int(c.fps.Load()) }

// SetFPS updates the tick rate the scheduler reads on its next cycle.
func (c *Config) SetFPS(fps int) { c.fps.Store(int64(fps)) }

func (c *Config) Dimensions() (width, height uint16) {
	return uint16(c.width.Load()), uint16(c.height.Load())
}

// SetDimensions updates the canvas dimensions stamped into every FRM
// message.
func (c *Config) SetDimensions(width, height uint16) {
	c.width.Store(int64(width))
	c.height.Store(int64(height))
}

func (c *Config) Source() string {
	s, _ := c.source.Load().(string)
	return s
}

// Scheduler runs the Stopped -> Running -> Stopped frame loop. A
// Scheduler instance is reusable across multiple Start/Stop cycles.
type Scheduler struct {
	store  FrameSource
	hub    Publisher
	config *Config
	sink   events.Sink
	clock  Clock
	log    zerolog.Logger

	mu      sync.Mutex
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	frameID atomic.Uint32
}

// New builds a Scheduler. sink may be events.NoopSink{} if the caller
// does not want lifecycle/frame events.
func New(store FrameSource, hub Publisher, config *Config, sink events.Sink, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		hub:    hub,
		config: config,
		sink:   sink,
		clock:  time.Now,
		log:    log,
	}
}

// IsRunning reports whether the tick loop is currently active.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// SetHub swaps the publisher ticks are broadcast through. Callers
// must only call this while the scheduler is stopped — typically
// right before Start, to hand the scheduler a freshly created hub for
// the new run.
func (s *Scheduler) SetHub(hub Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub = hub
}

// FrameCount returns the number of frames produced so far, wrapping
// modulo 2^32 alongside the frame ids themselves.
func (s *Scheduler) FrameCount() uint32 {
	return s.frameID.Load()
}

// Start transitions Stopped -> Running and launches the tick loop.
// Returns false if the scheduler was already running.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.CompareAndSwap(false, true) {
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(loopCtx)

	s.sink.ServerStatus(true, s.hub.Count())
	return true
}

// Stop transitions Running -> Stopped and blocks until the tick loop
// has exited. Returns false if the scheduler was already stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if !s.running.CompareAndSwap(true, false) {
		return false
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	s.sink.ServerStatus(false, s.hub.Count())
	return true
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.tick()

		fps := s.config.FPS()
		if fps < 1 {
			fps = 1
		}
		interval := time.Duration(1000/fps) * time.Millisecond

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (s *Scheduler) tick() {
	now := s.clock()
	nowMillis := now.UnixMilli()

	objects := s.store.Snapshot(nowMillis)
	frameID := s.frameID.Add(1)

	width, height := s.config.Dimensions()
	kind := osc.KindToken
	if s.config.pointerMode.Load() {
		kind = osc.KindPointer
	}
	frame, err := osc.EncodeBundle(frameID, nowMillis, osc.FrameConfig{
		Width:  width,
		Height: height,
		Source: s.config.Source(),
	}, objectArgs(objects), kind)
	if err != nil {
		s.log.Error().Err(err).Uint32("frame_id", frameID).Msg("failed to encode osc bundle, skipping tick")
		return
	}

	s.hub.Publish(frame)
	s.sink.OSCMessage(frameID, nowMillis, len(objects), len(frame), s.hub.Count())
}

func objectArgs(objects []tuio.Object) []osc.ObjectArgs {
	out := make([]osc.ObjectArgs, len(objects))
	for i, o := range objects {
		out[i] = o.Args()
	}
	return out
}

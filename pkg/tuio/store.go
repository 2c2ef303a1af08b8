package tuio

import (
	"errors"
	"sort"
	"sync"
)

// ErrDuplicateSessionID is returned by Add when the object's session
// id is already live.
var ErrDuplicateSessionID = errors.New("tuio: duplicate session id")

// ErrNotFound is returned by Update and Remove when the session id is
// not live.
var ErrNotFound = errors.New("tuio: session id not found")

// ErrOutOfRange is returned by Add and Update when x or y falls
// outside [0,1], the store's own canvas-range invariant (spec.md §3:
// "the store rejects values outside the range").
var ErrOutOfRange = errors.New("tuio: x/y out of [0,1] range")

// Store is the keyed collection of live objects. All mutations hold a
// short-lived mutex; no method call suspends while holding it.
type Store struct {
	mu         sync.Mutex
	objects    map[uint32]*Object
	nextSessID uint32
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{objects: make(map[uint32]*Object)}
}

// AllocateSessionID returns a fresh session id, wrapping modulo 2^32
// and skipping any candidate that collides with a currently live id.
func (s *Store) AllocateSessionID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocateLocked()
}

func (s *Store) allocateLocked() uint32 {
	id := s.nextSessID
	for {
		if _, live := s.objects[id]; !live {
			break
		}
		id++
	}
	s.nextSessID = id + 1
	return id
}

// Add inserts obj iff its SessionID is unique and its position lies in
// [0,1]x[0,1].
func (s *Store) Add(obj Object) error {
	if !InCanvasRange(obj.X, obj.Y) {
		return ErrOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[obj.SessionID]; exists {
		return ErrDuplicateSessionID
	}
	o := obj
	s.objects[obj.SessionID] = &o
	return nil
}

// Update sets x, y, angle, and LastUpdate on the object identified by
// id. Shadow fields (LastX/LastY/LastAngle) are left for the velocity
// estimator. Returns ErrOutOfRange if x or y falls outside [0,1], or
// ErrNotFound if id is not live.
func (s *Store) Update(id uint32, x, y, angle float32, nowMillis int64) error {
	if !InCanvasRange(x, y) {
		return ErrOutOfRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.objects[id]
	if !exists {
		return ErrNotFound
	}
	obj.X = x
	obj.Y = y
	obj.Angle = angle
	obj.LastUpdate = nowMillis
	return nil
}

// Remove deletes the object identified by id. Returns ErrNotFound if
// it was not live.
func (s *Store) Remove(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[id]; !exists {
		return ErrNotFound
	}
	delete(s.objects, id)
	return nil
}

// Get returns a copy of the object identified by id.
func (s *Store) Get(id uint32) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.objects[id]
	if !exists {
		return Object{}, false
	}
	return *obj, true
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// HasComponentID reports whether any live object carries componentID.
// Used by the command surface to enforce its duplicate-component
// policy; the store itself has no opinion on component id uniqueness.
func (s *Store) HasComponentID(componentID uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obj := range s.objects {
		if obj.ComponentID == componentID {
			return true
		}
	}
	return false
}

// Snapshot runs the velocity estimator against now and returns a
// cloned, stably-ordered (ascending session id) list of live objects
// for off-lock consumption by the encoder.
func (s *Store) Snapshot(nowMillis int64) []Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	estimateVelocitiesLocked(s.objects, nowMillis)

	out := make([]Object, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, *obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// Package osc builds and encodes TUIO 2.0 messages as OSC 1.0 binary
// packets. Only the subset of OSC needed to carry TUIO 2.0 frames is
// implemented: int32, float32, string, and OSC-timetag arguments, and
// bundles of messages.
package osc

import (
	"bytes"
	"encoding/binary"
)

// MessageKind selects which per-object message shape the bundle
// encoder emits: the tagged-tangible TOK shape or the pointer/touch
// PTR shape. Modeled as a tagged variant per the object's own design
// notes, not as an interface hierarchy.
type MessageKind int

const (
	KindToken MessageKind = iota
	KindPointer
)

// Addresses used by the TUIO 2.0 messages this package builds.
const (
	AddrFrame   = "/tuio2/frm"
	AddrAlive   = "/tuio2/alv"
	AddrToken   = "/tuio2/tok"
	AddrPointer = "/tuio2/ptr"
)

// argType is the OSC type-tag character for one argument.
type argType byte

const (
	typeInt    argType = 'i'
	typeFloat  argType = 'f'
	typeString argType = 's'
	typeTime   argType = 't'
)

// message is an address plus an ordered, typed argument list — the
// OSC 1.0 message shape. Building one and calling encode is the whole
// contract; there is nothing else to a message.
type message struct {
	addr string
	tags []argType
	// Argument payloads are appended in order as encode closures
	// instead of separate typed slices, so iteration order always
	// matches tags regardless of argument type.
	encoders []func(*bytes.Buffer)
}

func newMessage(addr string) *message {
	return &message{addr: addr}
}

func (m *message) addInt(v int32) {
	m.tags = append(m.tags, typeInt)
	m.encoders = append(m.encoders, func(b *bytes.Buffer) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(v))
		b.Write(tmp[:])
	})
}

func (m *message) addFloat(v float32) {
	m.tags = append(m.tags, typeFloat)
	m.encoders = append(m.encoders, func(b *bytes.Buffer) {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], float32bits(v))
		b.Write(tmp[:])
	})
}

func (m *message) addString(v string) {
	m.tags = append(m.tags, typeString)
	m.encoders = append(m.encoders, func(b *bytes.Buffer) {
		b.WriteString(v)
		b.WriteByte(0)
		padTo4(b)
	})
}

func (m *message) addTimeTag(seconds, fractional uint32) {
	m.tags = append(m.tags, typeTime)
	m.encoders = append(m.encoders, func(b *bytes.Buffer) {
		var tmp [8]byte
		binary.BigEndian.PutUint32(tmp[0:4], seconds)
		binary.BigEndian.PutUint32(tmp[4:8], fractional)
		b.Write(tmp[:])
	})
}

// encode serializes the message per OSC 1.0: null-terminated, 4-byte
// padded address; null-terminated, 4-byte padded type-tag string
// starting with ','; then each argument's payload in order.
func (m *message) encode() []byte {
	var buf bytes.Buffer

	buf.WriteString(m.addr)
	buf.WriteByte(0)
	padTo4(&buf)

	buf.WriteByte(',')
	for _, t := range m.tags {
		buf.WriteByte(byte(t))
	}
	buf.WriteByte(0)
	padTo4(&buf)

	for _, enc := range m.encoders {
		enc(&buf)
	}

	return buf.Bytes()
}

// padTo4 appends zero bytes until buf's length is a multiple of 4.
func padTo4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

// frmMessage builds the FRM message per spec: frame id, OSC timetag
// derived from a millisecond timestamp, packed dimension, source.
func frmMessage(frameID uint32, tsMillis int64, width, height uint16, source string) *message {
	m := newMessage(AddrFrame)
	m.addInt(int32(frameID))

	seconds := uint32(tsMillis / 1000)
	fractional := uint32((uint64(tsMillis%1000) << 32) / 1000)
	m.addTimeTag(seconds, fractional)

	dimension := (int32(width) << 16) | int32(height)
	m.addInt(dimension)

	m.addString(source)
	return m
}

// alvMessage builds the ALV message: one int32 session id per live
// object, in the order given.
func alvMessage(sessionIDs []uint32) *message {
	m := newMessage(AddrAlive)
	for _, id := range sessionIDs {
		m.addInt(int32(id))
	}
	return m
}

// ObjectArgs is the subset of an Object needed to build a TOK or PTR
// message; pkg/tuio.Object converts to it via its Args method.
type ObjectArgs struct {
	SessionID   uint32
	TypeID      uint16
	UserID      uint16
	ComponentID uint16
	X, Y        float32
	Angle       float32
	XVel        float32
	YVel        float32
	AngleVel    float32
}

// tokMessage builds the 9-argument TOK message.
func tokMessage(o ObjectArgs) *message {
	m := newMessage(AddrToken)
	m.addInt(int32(o.SessionID))
	m.addInt((int32(o.TypeID) << 16) | int32(o.UserID))
	m.addInt(int32(o.ComponentID))
	m.addFloat(o.X)
	m.addFloat(o.Y)
	m.addFloat(o.Angle)
	m.addFloat(o.XVel)
	m.addFloat(o.YVel)
	m.addFloat(o.AngleVel)
	return m
}

// ptrMessage builds the 13-argument PTR message. Promoted defaults per
// spec: shear=0, radius=0, pressure=1 (touching), pressure_vel=0,
// accel=0.
func ptrMessage(o ObjectArgs) *message {
	m := newMessage(AddrPointer)
	m.addInt(int32(o.SessionID))
	m.addInt((int32(o.TypeID) << 16) | int32(o.UserID))
	m.addInt(int32(o.ComponentID))
	m.addFloat(o.X)
	m.addFloat(o.Y)
	m.addFloat(o.Angle)
	m.addFloat(0) // shear
	m.addFloat(0) // radius
	m.addFloat(1) // pressure (touching)
	m.addFloat(o.XVel)
	m.addFloat(o.YVel)
	m.addFloat(0) // pressure_vel
	m.addFloat(0) // accel
	return m
}

func objectMessage(kind MessageKind, o ObjectArgs) *message {
	if kind == KindPointer {
		return ptrMessage(o)
	}
	return tokMessage(o)
}

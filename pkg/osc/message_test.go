package osc

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokMessage_ArgCountAndTypeUser(t *testing.T) {
	m := tokMessage(ObjectArgs{SessionID: 42, TypeID: 7, UserID: 0, ComponentID: 7, X: 0.5, Y: 0.5})
	assert.Equal(t, AddrToken, m.addr)
	assert.Len(t, m.tags, 9)

	encoded := m.encode()
	// locate args after addr(padded) + tags(padded)
	// addr "/tuio2/tok\0\0" = 12 bytes
	off := 12
	// tags: "," + 9 chars + \0 = 11 bytes -> pad to 12
	off += 12
	sessionID := int32(binary.BigEndian.Uint32(encoded[off : off+4]))
	assert.EqualValues(t, 42, sessionID)
	typeUser := int32(binary.BigEndian.Uint32(encoded[off+4 : off+8]))
	assert.EqualValues(t, 458752, typeUser) // (7<<16)|0
}

func TestPtrMessage_ArgCountAndDefaults(t *testing.T) {
	m := ptrMessage(ObjectArgs{SessionID: 1})
	assert.Equal(t, AddrPointer, m.addr)
	assert.Len(t, m.tags, 13)

	encoded := m.encode()
	// addr "/tuio2/ptr\0\0" = 12 bytes; tags "," + 13 chars + \0 = 15
	// bytes -> pad to 16; then 3 ints and x, y, angle (24 bytes).
	off := 12 + 16 + 24
	floatAt := func(o int) float32 {
		return math.Float32frombits(binary.BigEndian.Uint32(encoded[o : o+4]))
	}
	assert.Equal(t, float32(0), floatAt(off))    // shear
	assert.Equal(t, float32(0), floatAt(off+4))  // radius
	assert.Equal(t, float32(1), floatAt(off+8))  // pressure
	assert.Equal(t, float32(0), floatAt(off+20)) // pressure_vel
	assert.Equal(t, float32(0), floatAt(off+24)) // accel
}

func TestAlvMessage_EmptyAndPopulated(t *testing.T) {
	empty := alvMessage(nil)
	assert.Len(t, empty.tags, 0)

	populated := alvMessage([]uint32{1, 2, 3})
	assert.Len(t, populated.tags, 3)
}

func TestFrmMessage_DimensionPacking(t *testing.T) {
	m := frmMessage(1234, 1705500000000, 1920, 1080, "tuio-simulator")
	assert.Equal(t, AddrFrame, m.addr)
	assert.Len(t, m.tags, 4)

	encoded := m.encode()
	// addr 12 bytes, tags ",itis\0" padded to 8, frame id 4, timetag 8.
	off := 12 + 8 + 4 + 8
	dimension := int32(binary.BigEndian.Uint32(encoded[off : off+4]))
	assert.EqualValues(t, 125830200, dimension) // (1920<<16)|1080
}

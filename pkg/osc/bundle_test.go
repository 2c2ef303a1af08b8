package osc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeBundle_EmptyFrame(t *testing.T) {
	cfg := FrameConfig{Width: 1920, Height: 1080, Source: "tuio-simulator"}
	data, err := EncodeBundle(1, 1000, cfg, nil, KindToken)
	require.NoError(t, err)

	require.True(t, len(data) >= 8)
	assert.Equal(t, "#bundle\x00", string(data[0:8]))

	// timetag immediate {0,1}
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(data[8:12]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(data[12:16]))

	addrs, typeTags := decodeElementAddrs(t, data[16:])
	require.Equal(t, []string{AddrFrame, AddrAlive}, addrs)
	assert.Equal(t, "", typeTags[AddrAlive])
}

func TestEncodeBundle_SingleObjectToken(t *testing.T) {
	cfg := FrameConfig{Width: 1920, Height: 1080, Source: "tuio-simulator"}
	objs := []ObjectArgs{{
		SessionID: 7, TypeID: 7, UserID: 0, ComponentID: 7,
		X: 0.5, Y: 0.5,
	}}
	data, err := EncodeBundle(1, 1000, cfg, objs, KindToken)
	require.NoError(t, err)

	addrs, _ := decodeElementAddrs(t, data[16:])
	assert.Equal(t, []string{AddrFrame, AddrToken, AddrAlive}, addrs)
}

func TestEncodeBundle_DimensionPacking(t *testing.T) {
	cfg := FrameConfig{Width: 1920, Height: 1080, Source: "test"}
	data, err := EncodeBundle(1, 1000, cfg, nil, KindToken)
	require.NoError(t, err)

	// Parse the FRM message manually: skip bundle header (16 bytes),
	// skip this element's 4-byte size prefix.
	off := 16 + 4
	// addr "/tuio2/frm\0\0" (11 bytes -> padded to 12)
	off += 12
	// type tag ",itis\0" wait: args are int, time, int, string => tags "itis"
	// tag string: "," + "itis" + 0 padded to 4 -> 6 bytes -> pad to 8
	off += 8
	// first arg: frame id int32
	off += 4
	// second arg: timetag 8 bytes
	off += 8
	dimension := int32(binary.BigEndian.Uint32(data[off : off+4]))
	assert.EqualValues(t, (1920<<16)|1080, dimension)
	assert.EqualValues(t, 125830200, dimension)
}

func TestEncodeBundle_TooLarge(t *testing.T) {
	cfg := FrameConfig{Width: 1, Height: 1, Source: "s", MaxBundleBytes: 8}
	_, err := EncodeBundle(1, 1000, cfg, nil, KindToken)
	require.Error(t, err)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
}

func TestEncodeBundle_Deterministic(t *testing.T) {
	cfg := FrameConfig{Width: 800, Height: 600, Source: "s"}
	objs := []ObjectArgs{{SessionID: 1, X: 0.1, Y: 0.2, Angle: 0.3}}

	a, err := EncodeBundle(5, 1000, cfg, objs, KindToken)
	require.NoError(t, err)
	b, err := EncodeBundle(5, 1000, cfg, objs, KindToken)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := EncodeBundle(6, 1000, cfg, objs, KindToken)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

// decodeElementAddrs walks the size-prefixed element list of an
// encoded bundle (the part after the 16-byte bundle header) and
// returns each element's OSC address, plus a map of address to that
// element's type-tag characters (without the leading ',').
func decodeElementAddrs(t *testing.T, rest []byte) ([]string, map[string]string) {
	t.Helper()
	var addrs []string
	tags := map[string]string{}
	for len(rest) > 0 {
		size := binary.BigEndian.Uint32(rest[0:4])
		el := rest[4 : 4+size]
		rest = rest[4+size:]

		end := 0
		for el[end] != 0 {
			end++
		}
		addr := string(el[:end])
		tagStart := (end + 4) &^ 3 // address plus its null, padded to 4
		tagEnd := tagStart
		for el[tagEnd] != 0 {
			tagEnd++
		}
		addrs = append(addrs, addr)
		tags[addr] = string(el[tagStart+1 : tagEnd])
	}
	return addrs, tags
}

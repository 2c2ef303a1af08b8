package osc

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// bundleMagic is the fixed 8-byte OSC bundle header.
var bundleMagic = []byte("#bundle\x00")

// immediateSeconds and immediateFractional form the OSC "dispatch now"
// timetag used for every emitted bundle, per spec.
const (
	immediateSeconds   uint32 = 0
	immediateFractional uint32 = 1
)

// EncodeError wraps a failure to encode a bundle. Per spec, encoding
// cannot fail on well-formed input; this exists only to surface
// allocation failures, modeled here as exceeding MaxBundleBytes.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return "osc: encode bundle: " + e.Err.Error() }
func (e *EncodeError) Unwrap() error { return e.Err }

// ErrBundleTooLarge is the sentinel wrapped by EncodeError when a
// bundle's encoded size exceeds the configured allocation ceiling.
var ErrBundleTooLarge = errors.New("encoded bundle exceeds allocation ceiling")

// FrameConfig carries the per-tick canvas configuration needed to
// build the FRM message.
type FrameConfig struct {
	Width, Height uint16
	Source        string
	// MaxBundleBytes bounds the encoded bundle size; zero means
	// unbounded. Exists so out-of-memory-style failures are
	// exercisable in tests without real allocation pressure.
	MaxBundleBytes int
}

// EncodeBundle assembles FRM, one TOK/PTR message per object (in the
// order given), and ALV into a single OSC bundle and serializes it to
// bytes. Element order is fixed: FRM, objects, ALV.
func EncodeBundle(frameID uint32, tsMillis int64, cfg FrameConfig, objects []ObjectArgs, kind MessageKind) ([]byte, error) {
	var elements [][]byte

	frm := frmMessage(frameID, tsMillis, cfg.Width, cfg.Height, cfg.Source)
	elements = append(elements, frm.encode())

	sessionIDs := make([]uint32, len(objects))
	for i, o := range objects {
		elements = append(elements, objectMessage(kind, o).encode())
		sessionIDs[i] = o.SessionID
	}

	elements = append(elements, alvMessage(sessionIDs).encode())

	var buf bytes.Buffer
	buf.Write(bundleMagic)

	var timetag [8]byte
	binary.BigEndian.PutUint32(timetag[0:4], immediateSeconds)
	binary.BigEndian.PutUint32(timetag[4:8], immediateFractional)
	buf.Write(timetag[:])

	for _, el := range elements {
		var sizePrefix [4]byte
		binary.BigEndian.PutUint32(sizePrefix[:], uint32(len(el)))
		buf.Write(sizePrefix[:])
		buf.Write(el)
		// Elements are already individually 4-byte padded by their
		// own encoding (address/type-tags/strings); no further
		// padding is needed between elements.
	}

	if cfg.MaxBundleBytes > 0 && buf.Len() > cfg.MaxBundleBytes {
		return nil, &EncodeError{Err: ErrBundleTooLarge}
	}

	return buf.Bytes(), nil
}

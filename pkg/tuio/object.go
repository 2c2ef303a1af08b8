// Package tuio holds the live object store and velocity estimation
// that feed the frame scheduler. Its only tie to OSC is Object.Args,
// which produces the osc.ObjectArgs shape the encoder consumes; it has
// no knowledge of WebSockets.
package tuio

import "github.com/jhbruhn/tuio-simulator/pkg/osc"

// Object is one live tangible/pointer object on the normalized canvas.
// Once the object is in the store, velocity fields and LastX/LastY/
// LastAngle are written only by the velocity estimator that
// Store.Snapshot runs; LastUpdate is written by that estimator and by
// Store.Update.
type Object struct {
	SessionID   uint32
	TypeID      uint16
	UserID      uint16
	ComponentID uint16

	X, Y  float32
	Angle float32

	XVel, YVel, AngleVel float32

	LastX, LastY, LastAngle float32
	LastUpdate              int64 // unix millis
}

// Args converts the object into the argument shape the OSC message
// builder consumes, decoupling pkg/osc from this package's types.
func (o Object) Args() osc.ObjectArgs {
	return osc.ObjectArgs{
		SessionID:   o.SessionID,
		TypeID:      o.TypeID,
		UserID:      o.UserID,
		ComponentID: o.ComponentID,
		X:           o.X,
		Y:           o.Y,
		Angle:       o.Angle,
		XVel:        o.XVel,
		YVel:        o.YVel,
		AngleVel:    o.AngleVel,
	}
}

// InCanvasRange reports whether x and y both lie in [0,1], the
// invariant the store enforces on every externally visible mutation.
func InCanvasRange(x, y float32) bool {
	return x >= 0 && x <= 1 && y >= 0 && y <= 1
}

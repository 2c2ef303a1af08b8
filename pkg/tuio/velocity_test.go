package tuio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateVelocities_NoMovementIsZero(t *testing.T) {
	objects := map[uint32]*Object{
		1: {SessionID: 1, X: 0.5, Y: 0.5, LastX: 0.5, LastY: 0.5, LastUpdate: 0},
	}
	estimateVelocitiesLocked(objects, 10)

	assert.Equal(t, float32(0), objects[1].XVel)
	assert.Equal(t, float32(0), objects[1].YVel)
}

func TestEstimateVelocities_SubMillisecondGuard(t *testing.T) {
	objects := map[uint32]*Object{
		1: {SessionID: 1, X: 0.9, Y: 0.9, LastX: 0.1, LastY: 0.1, LastUpdate: 1000, XVel: 42},
	}
	estimateVelocitiesLocked(objects, 1001) // delta == 1ms, guard applies

	assert.Equal(t, float32(42), objects[1].XVel, "velocity and shadow fields must be left untouched")
	assert.Equal(t, float32(0.1), objects[1].LastX)
	assert.Equal(t, int64(1000), objects[1].LastUpdate)
}

func TestEstimateVelocities_DerivesFromDelta(t *testing.T) {
	objects := map[uint32]*Object{
		1: {
			SessionID: 1,
			X:         0.6, Y: 0.7, Angle: 1.57,
			LastX: 0.5, LastY: 0.5, LastAngle: 0,
			LastUpdate: 900,
		},
	}
	estimateVelocitiesLocked(objects, 1000) // 100ms elapsed

	obj := objects[1]
	require.InDelta(t, 1.0, obj.XVel, 0.01)
	require.InDelta(t, 2.0, obj.YVel, 0.01)
	require.InDelta(t, 15.7, obj.AngleVel, 0.01)

	assert.Equal(t, obj.X, obj.LastX)
	assert.Equal(t, obj.Y, obj.LastY)
	assert.Equal(t, obj.Angle, obj.LastAngle)
	assert.Equal(t, int64(1000), obj.LastUpdate)
}

func TestEstimateVelocities_MultipleObjectsIndependent(t *testing.T) {
	objects := map[uint32]*Object{
		1: {SessionID: 1, X: 0.6, Y: 0.5, LastX: 0.5, LastY: 0.5, LastUpdate: 900},
		2: {SessionID: 2, X: 0.3, Y: 0.4, LastX: 0.3, LastY: 0.3, LastUpdate: 900},
	}
	estimateVelocitiesLocked(objects, 1000)

	require.InDelta(t, 1.0, objects[1].XVel, 0.01)
	require.InDelta(t, 0.0, objects[1].YVel, 0.01)
	require.InDelta(t, 0.0, objects[2].XVel, 0.01)
	require.InDelta(t, 1.0, objects[2].YVel, 0.01)
}

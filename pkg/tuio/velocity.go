package tuio

// estimateVelocitiesLocked derives x_vel/y_vel/angle_vel for every
// object from the delta against its motion-history shadow fields, then
// commits the shadow fields. Must be called with the store's mutex
// held.
//
// Per spec: deltas of 1ms or less leave velocities and shadow fields
// untouched, avoiding divide-by-zero when the scheduler ticks faster
// than the motion clock's resolution. Angle velocity is the raw delta
// with no wrap-around normalization.
func estimateVelocitiesLocked(objects map[uint32]*Object, nowMillis int64) {
	for _, obj := range objects {
		deltaMillis := nowMillis - obj.LastUpdate
		if deltaMillis <= 1 {
			continue
		}

		deltaSeconds := float32(deltaMillis) / 1000
		obj.XVel = (obj.X - obj.LastX) / deltaSeconds
		obj.YVel = (obj.Y - obj.LastY) / deltaSeconds
		obj.AngleVel = (obj.Angle - obj.LastAngle) / deltaSeconds

		obj.LastX = obj.X
		obj.LastY = obj.Y
		obj.LastAngle = obj.Angle
		obj.LastUpdate = nowMillis
	}
}

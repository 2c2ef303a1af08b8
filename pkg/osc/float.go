package osc

import "math"

func float32bits(v float32) uint32 {
	return math.Float32bits(v)
}

package ui

import (
	"math"
	"time"

	"github.com/oshokin/aevum/internal/config"
)

// Velocity is the friction-based scroll velocity of a scrollable widget.
//
// It is re-evaluated on every render instead of on a timer: each Apply moves
// the offset by everything that decayed since the previous Apply.
type Velocity struct {
	// lastTick is the baseline instant; nil while waiting for the first sample.
	lastTick *time.Time
	velocity float64
}

// IsMoving reports whether any velocity is left.
func (v *Velocity) IsMoving() bool {
	return v.velocity != 0
}

// Set replaces the velocity and drops the tick baseline.
func (v *Velocity) Set(velocity float64) {
	v.velocity = velocity
	v.lastTick = nil
}

// Apply advances offset by the velocity accumulated since the last call.
func (v *Velocity) Apply(input config.Input, offset *float64) {
	if v.velocity == 0 {
		return
	}

	// The first tick after Set only records the baseline, so the delta the
	// touch handler already applied is not counted twice.
	if v.lastTick == nil {
		now := time.Now()
		v.lastTick = &now

		return
	}

	now := time.Now()
	interval := float64(now.Sub(*v.lastTick).Microseconds()) / (float64(input.VelocityInterval) * 1_000)
	friction := input.VelocityFriction

	*offset += v.velocity * (1 - math.Pow(friction, interval+1)) / (1 - friction)
	v.velocity *= math.Pow(friction, interval)

	if math.Abs(v.velocity) > 1 {
		v.lastTick = &now
	} else {
		v.velocity = 0
		v.lastTick = nil
	}
}

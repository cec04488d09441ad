// pkg/entity/vessel.go
package entity

import (
	"sync"

	"github.com/opd-ai/go-vesselsim/pkg/physics"
)

// Vessel is a single moving point in the simulation: a position and heading
// advancing toward a target point at constant speed under a bounded turning
// rate. The identifier and speed are fixed at creation; position and heading
// are mutated only by the engine tick, the target only by SetTarget.
//
// All mutable fields are guarded by a single per-vessel lock so that a reader
// never observes a half-written coordinate pair while the tick is running.
type Vessel struct {
	id    ID
	speed float64 // distance units per second

	mu       sync.RWMutex
	position physics.Vector2D
	heading  float64 // compass degrees, invariant: [0, 360)
	target   physics.Vector2D
	arrived  bool
}

// VesselState is a flat, immutable record of a vessel's state, suitable for
// serialization by a transport layer.
type VesselState struct {
	ID      ID      `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// NewVessel creates a vessel at the given position. The target defaults to
// the creation position, so a new vessel holds station until retargeted.
// Heading is normalized into [0, 360); speed is taken as given, without
// validation (a negative speed produces well-defined backward motion).
func NewVessel(id ID, position physics.Vector2D, heading, speed float64) *Vessel {
	return &Vessel{
		id:       id,
		speed:    speed,
		position: position,
		heading:  physics.NormalizeHeading(heading),
		target:   position,
		arrived:  true,
	}
}

// GetID returns the vessel's immutable identifier.
func (v *Vessel) GetID() ID {
	return v.id
}

// Speed returns the vessel's fixed speed in distance units per second.
func (v *Vessel) Speed() float64 {
	return v.speed
}

// Snapshot returns a consistent copy of the vessel's current state.
func (v *Vessel) Snapshot() VesselState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return VesselState{
		ID:      v.id,
		X:       v.position.X,
		Y:       v.position.Y,
		Heading: v.heading,
		Speed:   v.speed,
		TargetX: v.target.X,
		TargetY: v.target.Y,
	}
}

// SetTarget atomically overwrites the vessel's target point. Position and
// heading are left alone: steering resumes from wherever the vessel is.
func (v *Vessel) SetTarget(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.target = physics.Vector2D{X: x, Y: y}
	v.arrived = false
}

// Advance moves the vessel speed*dt along its current heading. It has no
// side effects beyond position and never fails.
func (v *Vessel) Advance(dt float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.advance(dt)
}

// SteerToward rotates the vessel's heading toward the bearing of its target,
// limited to turnRatePerSec*dt degrees. When the remaining difference fits
// inside that budget the heading snaps exactly onto the bearing, so a vessel
// never overshoots and oscillates around alignment.
func (v *Vessel) SteerToward(dt, turnRatePerSec float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.steerToward(dt, turnRatePerSec)
}

// HasReachedTarget reports whether the vessel is within tolerance of its
// target (strict Euclidean distance comparison).
func (v *Vessel) HasReachedTarget(tolerance float64) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.hasReachedTarget(tolerance)
}

// Step performs one tick for this vessel under a single lock acquisition:
// if the target has not been reached, steer then advance, in that order
// (the position update uses the post-steer heading). Vessels already at
// target are left untouched. Step returns true on the tick where the vessel
// first comes within tolerance of its target.
func (v *Vessel) Step(dt, turnRatePerSec, tolerance float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.hasReachedTarget(tolerance) {
		if !v.arrived {
			v.arrived = true
			return true
		}
		return false
	}

	v.steerToward(dt, turnRatePerSec)
	v.advance(dt)

	if v.hasReachedTarget(tolerance) && !v.arrived {
		v.arrived = true
		return true
	}
	return false
}

func (v *Vessel) advance(dt float64) {
	v.position = v.position.Add(physics.FromHeading(v.heading, v.speed*dt))
}

func (v *Vessel) steerToward(dt, turnRatePerSec float64) {
	bearing := physics.Bearing(v.position, v.target)
	diff := physics.AngleDiff(v.heading, bearing)
	maxTurn := turnRatePerSec * dt

	if diff >= -maxTurn && diff <= maxTurn {
		v.heading = physics.NormalizeHeading(bearing)
		return
	}
	if diff > 0 {
		v.heading = physics.NormalizeHeading(v.heading + maxTurn)
	} else {
		v.heading = physics.NormalizeHeading(v.heading - maxTurn)
	}
}

func (v *Vessel) hasReachedTarget(tolerance float64) bool {
	return v.position.Distance(v.target) < tolerance
}

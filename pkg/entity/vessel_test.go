// pkg/entity/vessel_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-vesselsim/pkg/physics"
)

const (
	testDt        = 0.1
	testTurnRate  = 20.0
	testTolerance = 5.0
	floatEps      = 1e-9
)

func TestNewVessel_TargetDefaultsToPosition(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 12, Y: -7}, 45, 30)

	state := v.Snapshot()
	if state.TargetX != 12 || state.TargetY != -7 {
		t.Errorf("expected target (12, -7), got (%v, %v)", state.TargetX, state.TargetY)
	}
	if !v.HasReachedTarget(testTolerance) {
		t.Error("a freshly created vessel should already be at its target")
	}
}

func TestNewVessel_NormalizesHeading(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{}, -90, 10)
	if got := v.Snapshot().Heading; got != 270 {
		t.Errorf("expected heading 270, got %v", got)
	}
}

// Scenario: a vessel with no retarget stays exactly where it was created.
func TestStep_VesselAtTargetIsUntouched(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 100, Y: 100}, 90, 50)

	for i := 0; i < 10; i++ {
		if arrived := v.Step(testDt, testTurnRate, testTolerance); arrived {
			t.Fatal("vessel created at its target must not report a new arrival")
		}
	}

	state := v.Snapshot()
	if state.X != 100 || state.Y != 100 {
		t.Errorf("position changed to (%v, %v)", state.X, state.Y)
	}
	if state.Heading != 90 {
		t.Errorf("heading changed to %v", state.Heading)
	}
}

// Scenario: heading 0 (due north), target due north. The bearing matches the
// heading, so one tick advances straight up by speed*dt = 50*0.1 = 5.
func TestStep_AlignedVesselAdvancesStraight(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 0, 50)
	v.SetTarget(0, 100)

	v.Step(testDt, testTurnRate, testTolerance)

	state := v.Snapshot()
	if state.Heading != 0 {
		t.Errorf("expected heading to stay 0, got %v", state.Heading)
	}
	if math.Abs(state.X) > floatEps || math.Abs(state.Y-5.0) > floatEps {
		t.Errorf("expected position (0, 5), got (%v, %v)", state.X, state.Y)
	}
}

// Scenario: heading 0, target due east (bearing 90). The 90 degree turn is
// rationed out at turnRate*dt = 2 degrees per tick, reaching exactly 90 on
// tick 45 and holding there afterwards.
func TestStep_TurnIsRateLimited(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 0, 50)
	v.SetTarget(100, 0)

	// Steering runs before the position update, so the first tick turns by
	// exactly turnRate*dt = 2 degrees toward the bearing of 90.
	v.Step(testDt, testTurnRate, testTolerance)
	if got := v.Snapshot().Heading; math.Abs(got-2.0) > floatEps {
		t.Fatalf("after one tick expected heading 2, got %v", got)
	}
}

func TestSteerToward_ReachesBearingExactly(t *testing.T) {
	// Pure steering from a fixed position: a 90 degree turn rationed at 2
	// degrees per call lands exactly on the bearing on call 45 and holds
	// there afterwards.
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 0, 50)
	v.SetTarget(100, 0)

	for i := 0; i < 44; i++ {
		v.SteerToward(testDt, testTurnRate)
	}
	if got := v.Snapshot().Heading; math.Abs(got-88.0) > floatEps {
		t.Fatalf("after 44 turn steps expected heading 88, got %v", got)
	}

	v.SteerToward(testDt, testTurnRate)
	if got := v.Snapshot().Heading; math.Abs(got-90.0) > floatEps {
		t.Fatalf("after 45 turn steps expected heading exactly 90, got %v", got)
	}

	v.SteerToward(testDt, testTurnRate)
	if got := v.Snapshot().Heading; math.Abs(got-90.0) > floatEps {
		t.Errorf("aligned heading drifted to %v", got)
	}
}

func TestSteerToward_SnapsWithoutOvershoot(t *testing.T) {
	// 1.5 degrees shy of the bearing with a 2 degree budget: the heading
	// must land exactly on the bearing, not 0.5 degrees past it.
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 88.5, 10)
	v.SetTarget(100, 0)

	v.SteerToward(testDt, testTurnRate)
	if got := v.Snapshot().Heading; math.Abs(got-90.0) > floatEps {
		t.Errorf("expected snap to bearing 90, got %v", got)
	}
}

func TestSteerToward_TakesShorterArc(t *testing.T) {
	tests := []struct {
		name    string
		heading float64
		// target bearing is 0 (due north) in all cases
		expectedAfterOneTick float64
	}{
		{name: "clockwise_across_north", heading: 350, expectedAfterOneTick: 352},
		{name: "counter_clockwise_across_north", heading: 10, expectedAfterOneTick: 8},
		{name: "counter_clockwise_long_way_avoided", heading: 170, expectedAfterOneTick: 168},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, tt.heading, 10)
			v.SetTarget(0, 1000)

			v.SteerToward(testDt, testTurnRate)
			got := v.Snapshot().Heading
			if math.Abs(got-tt.expectedAfterOneTick) > floatEps {
				t.Errorf("heading after one steer = %v, expected %v", got, tt.expectedAfterOneTick)
			}
		})
	}
}

func TestSteerToward_HeadingStaysNormalized(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 359, 10)
	v.SetTarget(-50, 800) // slightly west of north, pulls across the 0 wrap

	for i := 0; i < 500; i++ {
		v.SteerToward(testDt, testTurnRate)
		h := v.Snapshot().Heading
		if h < 0 || h >= 360 {
			t.Fatalf("heading %v escaped [0, 360) on iteration %d", h, i)
		}
	}
}

func TestAdvance_MovesAlongHeading(t *testing.T) {
	tests := []struct {
		name      string
		heading   float64
		dt        float64
		expectedX float64
		expectedY float64
	}{
		{name: "north", heading: 0, dt: 1, expectedX: 0, expectedY: 20},
		{name: "east", heading: 90, dt: 1, expectedX: 20, expectedY: 0},
		{name: "south_west", heading: 225, dt: 1, expectedX: -20 / math.Sqrt2, expectedY: -20 / math.Sqrt2},
		{name: "zero_dt", heading: 42, dt: 0, expectedX: 0, expectedY: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, tt.heading, 20)
			v.Advance(tt.dt)
			state := v.Snapshot()
			if math.Abs(state.X-tt.expectedX) > 1e-9 || math.Abs(state.Y-tt.expectedY) > 1e-9 {
				t.Errorf("position = (%v, %v), expected (%v, %v)", state.X, state.Y, tt.expectedX, tt.expectedY)
			}
		})
	}
}

func TestStep_ArrivalIsEdgeTriggered(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 0, 50)
	v.SetTarget(0, 8) // within two ticks of travel, bearing already aligned

	arrivals := 0
	for i := 0; i < 20; i++ {
		if v.Step(testDt, testTurnRate, testTolerance) {
			arrivals++
		}
	}
	if arrivals != 1 {
		t.Errorf("expected exactly one arrival report, got %d", arrivals)
	}

	// Once arrived, state is frozen until retargeted.
	before := v.Snapshot()
	for i := 0; i < 10; i++ {
		v.Step(testDt, testTurnRate, testTolerance)
	}
	after := v.Snapshot()
	if before != after {
		t.Errorf("arrived vessel mutated: %+v -> %+v", before, after)
	}

	// Retargeting resumes motion and arms the arrival edge again.
	v.SetTarget(0, 100)
	arrivals = 0
	for i := 0; i < 300; i++ {
		if v.Step(testDt, testTurnRate, testTolerance) {
			arrivals++
		}
	}
	if arrivals != 1 {
		t.Errorf("expected one arrival after retarget, got %d", arrivals)
	}
}

func TestSetTarget_DoesNotResetPose(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 3, Y: 4}, 77, 10)
	v.SetTarget(-50, -60)

	state := v.Snapshot()
	if state.X != 3 || state.Y != 4 || state.Heading != 77 {
		t.Errorf("SetTarget must not touch position or heading, got %+v", state)
	}
	if state.TargetX != -50 || state.TargetY != -60 {
		t.Errorf("target not updated, got (%v, %v)", state.TargetX, state.TargetY)
	}
}

func TestHasReachedTarget_StrictComparison(t *testing.T) {
	v := NewVessel("sv-1", physics.Vector2D{X: 0, Y: 0}, 0, 10)
	v.SetTarget(5, 0)
	if v.HasReachedTarget(5.0) {
		t.Error("distance exactly equal to tolerance must not count as reached")
	}
	if !v.HasReachedTarget(5.0001) {
		t.Error("distance below tolerance should count as reached")
	}
}

func TestGenerateID_Uniqueness(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("GenerateID() produced duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

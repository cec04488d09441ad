// pkg/engine/simulation.go
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/event"
)

// Simulation owns the vessel collection and advances it on a fixed-timestep
// background scheduler. Register, ListAll and SetTarget are safe to call
// from any number of goroutines concurrently with a running tick: the
// collection is a sync.Map keyed by vessel ID, and each vessel carries its
// own lock for field-level consistency.
//
// The scheduler is a two-state machine: Stopped (initial) and Running. Start
// and Stop are the only transitions and both are idempotent. Exactly one
// scheduler goroutine exists while Running, so tick executions never overlap.
type Simulation struct {
	cfg      *config.SimConfig
	EventBus *event.Bus

	vessels   sync.Map // entity.ID -> *entity.Vessel
	tickCount atomic.Uint64

	mu      sync.Mutex // guards the scheduler state below
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSimulation creates a stopped simulation with an empty vessel collection.
// A nil config selects the defaults (100ms tick, 20 degrees/s turn rate,
// arrival tolerance of 5).
func NewSimulation(cfg *config.SimConfig) *Simulation {
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Fleet = nil
	}
	return &Simulation{
		cfg:      cfg,
		EventBus: event.NewEventBus(),
	}
}

// Register adds a vessel to the simulation, keyed by its identifier. When
// the identifier is already taken the call is a no-op and the existing
// vessel is preserved; Register reports whether the vessel was added.
func (s *Simulation) Register(v *entity.Vessel) bool {
	_, loaded := s.vessels.LoadOrStore(v.GetID(), v)
	if loaded {
		return false
	}
	s.EventBus.Publish(event.NewVesselEvent(event.VesselRegistered, s, string(v.GetID())))
	return true
}

// ListAll returns a snapshot of every registered vessel. The slice and its
// records are copies: they do not mutate while a tick runs, and the order
// is unspecified.
func (s *Simulation) ListAll() []entity.VesselState {
	states := make([]entity.VesselState, 0, 16)
	s.vessels.Range(func(_, value any) bool {
		states = append(states, value.(*entity.Vessel).Snapshot())
		return true
	})
	return states
}

// SetTarget reassigns the target of the vessel with the given identifier.
// It reports false when no such vessel is registered; it never creates one.
func (s *Simulation) SetTarget(id entity.ID, x, y float64) bool {
	value, ok := s.vessels.Load(id)
	if !ok {
		return false
	}
	value.(*entity.Vessel).SetTarget(x, y)
	s.EventBus.Publish(event.NewTargetEvent(s, string(id), x, y))
	return true
}

// Start launches the tick scheduler. The first tick fires immediately,
// subsequent ticks every tick interval. Calling Start while already running
// is a no-op.
func (s *Simulation) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)
	s.mu.Unlock()

	s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationStarted, Source: s})
}

// Stop halts the scheduler. It is safe to call when not running. After Stop
// returns no further ticks fire: a tick already in flight is not
// interrupted, but Stop waits for it to finish.
func (s *Simulation) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	s.EventBus.Publish(&event.BaseEvent{EventType: event.SimulationStopped, Source: s})
}

// Running reports whether the scheduler is active.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ArrivalTolerance returns the distance below which a vessel counts as
// having reached its target.
func (s *Simulation) ArrivalTolerance() float64 {
	return s.cfg.ArrivalTolerance
}

// TickCount returns the number of completed ticks.
func (s *Simulation) TickCount() uint64 {
	return s.tickCount.Load()
}

// run is the scheduler goroutine. It is the only caller of Update while the
// simulation is running, which keeps tick executions strictly sequential; a
// tick that overruns the interval delays the next firing (time.Ticker drops
// missed firings rather than stacking them).
func (s *Simulation) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.TickInterval())
	defer ticker.Stop()

	s.Update()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			s.Update()
		}
	}
}

// Update advances the simulation by one tick: every vessel not yet at its
// target steers toward it and then advances along the post-steer heading.
// Vessels already at target are left untouched. Exposed for deterministic
// stepping in tests and headless embedding; while the scheduler runs it must
// not be called from other goroutines.
func (s *Simulation) Update() {
	dt := s.cfg.TickSeconds
	s.vessels.Range(func(_, value any) bool {
		v := value.(*entity.Vessel)
		if arrived := v.Step(dt, s.cfg.TurnRate, s.cfg.ArrivalTolerance); arrived {
			s.EventBus.Publish(event.NewVesselEvent(event.VesselArrived, s, string(v.GetID())))
		}
		return true
	})
	s.tickCount.Add(1)
}

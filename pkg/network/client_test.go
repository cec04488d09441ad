// pkg/network/client_test.go
package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/engine"
	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/physics"

	"github.com/sony/gobreaker"
)

func testEnvConfig() *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		ReadTimeout:                       2 * time.Second,
		WriteTimeout:                      2 * time.Second,
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            time.Minute,
		CircuitBreakerTimeout:             time.Minute,
		CircuitBreakerMaxConsecutiveFails: 3,
	}
}

// startLiveServer binds a real server on an ephemeral port and returns its
// base URL.
func startLiveServer(t *testing.T) (string, *engine.Simulation) {
	t.Helper()
	sim := engine.NewSimulation(nil)
	cfg := config.DefaultConfig().NetworkConfig
	cfg.ServerPort = 0
	srv := NewServer(sim, cfg, nil)
	if err := srv.Start(); err != nil {
		t.Fatalf("starting server: %v", err)
	}
	t.Cleanup(func() { srv.Stop(context.Background()) })
	return "http://" + srv.Addr(), sim
}

func TestClient_RegisterListRetarget(t *testing.T) {
	baseURL, _ := startLiveServer(t)
	client := NewClient(baseURL, testEnvConfig())
	ctx := context.Background()

	state, err := client.RegisterVessel(ctx, RegisterVesselRequest{
		ID: "sv-client", X: 5, Y: 5, Heading: 180, Speed: 7,
	})
	if err != nil {
		t.Fatalf("registering vessel: %v", err)
	}
	if state.ID != "sv-client" || state.Heading != 180 {
		t.Errorf("unexpected registered state: %+v", state)
	}

	if err := client.SetTarget(ctx, "sv-client", 50, 60); err != nil {
		t.Fatalf("setting target: %v", err)
	}

	states, err := client.ListVessels(ctx)
	if err != nil {
		t.Fatalf("listing vessels: %v", err)
	}
	if len(states) != 1 || states[0].TargetX != 50 || states[0].TargetY != 60 {
		t.Errorf("unexpected fleet listing: %+v", states)
	}

	summary, err := client.FleetSummary(ctx)
	if err != nil {
		t.Fatalf("fetching summary: %v", err)
	}
	if summary.Count != 1 || summary.Underway != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestClient_SetTargetUnknownVessel(t *testing.T) {
	baseURL, _ := startLiveServer(t)
	client := NewClient(baseURL, testEnvConfig())

	err := client.SetTarget(context.Background(), "sv-ghost", 1, 1)
	if !errors.Is(err, ErrVesselNotFound) {
		t.Errorf("expected ErrVesselNotFound, got %v", err)
	}
}

func TestClient_DuplicateRegisterReturnsExisting(t *testing.T) {
	baseURL, sim := startLiveServer(t)
	sim.Register(entity.NewVessel("sv-dup", physics.Vector2D{X: 1, Y: 2}, 0, 10))
	client := NewClient(baseURL, testEnvConfig())

	state, err := client.RegisterVessel(context.Background(), RegisterVesselRequest{
		ID: "sv-dup", X: 999, Y: 999, Speed: 99,
	})
	if err != nil {
		t.Fatalf("duplicate registration should not error: %v", err)
	}
	if state.X != 1 || state.Y != 2 {
		t.Errorf("expected the preserved vessel back, got %+v", state)
	}
}

func TestBreakerService_OpensAfterConsecutiveFailures(t *testing.T) {
	env := testEnvConfig()
	env.CircuitBreakerMaxConsecutiveFails = 2
	svc := NewBreakerService(env)

	failing := func() error { return errors.New("connection refused") }
	for i := 0; i < 2; i++ {
		if err := svc.Execute(context.Background(), failing); err == nil {
			t.Fatal("expected failure to propagate")
		}
	}
	if svc.State() != gobreaker.StateOpen {
		t.Fatalf("expected open circuit, got %v", svc.State())
	}

	// Operations are rejected without being invoked while open.
	invoked := false
	err := svc.Execute(context.Background(), func() error {
		invoked = true
		return nil
	})
	if err == nil {
		t.Error("expected rejection from open circuit")
	}
	if invoked {
		t.Error("operation must not run while the circuit is open")
	}
}

func TestBreakerService_ExecuteWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	svc := NewBreakerService(testEnvConfig())

	attempts := 0
	err := svc.ExecuteWithRetry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestBreakerService_ExecuteWithRetryHonorsContext(t *testing.T) {
	svc := NewBreakerService(testEnvConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.ExecuteWithRetry(ctx, func() error { return errors.New("always") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_UnreachableServerFailsFast(t *testing.T) {
	env := testEnvConfig()
	env.CircuitBreakerMaxConsecutiveFails = 1
	client := NewClient("http://127.0.0.1:1", env)

	if _, err := client.ListVessels(context.Background()); err == nil {
		t.Fatal("expected error against unreachable server")
	}
	if client.svc.State() != gobreaker.StateOpen {
		t.Errorf("expected open circuit after failure, got %v", client.svc.State())
	}
}

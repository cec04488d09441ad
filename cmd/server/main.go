// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/engine"
	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/event"
	"github.com/opd-ai/go-vesselsim/pkg/health"
	"github.com/opd-ai/go-vesselsim/pkg/logging"
	"github.com/opd-ai/go-vesselsim/pkg/network"
	"github.com/opd-ai/go-vesselsim/pkg/physics"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		defaultConfig := config.DefaultConfig()
		if err := config.SaveConfig(defaultConfig, *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration
	var simConfig *config.SimConfig

	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", *configPath,
		)
		simConfig = config.DefaultConfig()
	} else {
		simConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "Failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	// Apply environment variable overrides
	if err := config.ApplyEnvironmentOverrides(simConfig); err != nil {
		logger.Error(ctx, "Failed to apply environment configuration", err)
		os.Exit(1)
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}

	// Create the simulation and seed the configured fleet
	sim := engine.NewSimulation(simConfig)
	for _, vc := range simConfig.Fleet {
		vessel := entity.NewVessel(entity.ID(vc.ID), physics.Vector2D{X: vc.X, Y: vc.Y}, vc.Heading, vc.Speed)
		if vc.TargetX != nil && vc.TargetY != nil {
			vessel.SetTarget(*vc.TargetX, *vc.TargetY)
		}
		if !sim.Register(vessel) {
			logger.Warn(ctx, "Duplicate vessel in fleet configuration, skipped",
				"vessel_id", vc.ID,
			)
		}
	}

	// Log arrivals as they happen
	sim.EventBus.Subscribe(event.VesselArrived, func(e event.Event) {
		if ve, ok := e.(*event.VesselEvent); ok {
			logger.Info(ctx, "Vessel reached its target", "vessel_id", ve.VesselID)
		}
	})

	// Setup health checks
	healthChecker := health.NewChecker()

	healthChecker.AddProbe(health.EngineProbe(sim.Running))

	// Memory health check (limit: 500MB)
	healthChecker.AddProbe(health.MemoryProbe(500, func() int64 {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return int64(m.Alloc / 1024 / 1024)
	}))

	// Create the HTTP transport
	server := network.NewServer(sim, simConfig.NetworkConfig, healthChecker)
	healthChecker.AddProbe(health.ListenerProbe(server.Addr))

	sim.Start()
	logger.Info(ctx, "Simulation started",
		"tick_seconds", simConfig.TickSeconds,
		"turn_rate", simConfig.TurnRate,
		"fleet_size", len(simConfig.Fleet),
	)

	if err := server.Start(); err != nil {
		logger.Error(ctx, "Failed to start server", err,
			"address", simConfig.NetworkConfig.ListenAddr(),
		)
		sim.Stop()
		os.Exit(1)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", err)
	}
	sim.Stop()
	logger.Info(ctx, "Simulation stopped", "ticks", sim.TickCount())
}

// pkg/config/env_config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds deployment settings sourced from VESSELSIM_*
// environment variables. File configuration describes the simulation; the
// environment describes where and how the process runs.
type EnvironmentConfig struct {
	ServerAddr   string
	ServerPort   int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	TickSeconds      float64
	TurnRate         float64
	ArrivalTolerance float64

	// Circuit breaker configuration for the API client
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int

	ShutdownTimeout time.Duration
}

// LoadConfigFromEnv reads the environment configuration, falling back to
// defaults for unset variables. It returns an error for values that are set
// but unparseable, rather than silently running with defaults.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{
		ServerAddr:                        "localhost",
		ServerPort:                        4590,
		ReadTimeout:                       5 * time.Second,
		WriteTimeout:                      5 * time.Second,
		TickSeconds:                       0.1,
		TurnRate:                          20.0,
		ArrivalTolerance:                  5.0,
		CircuitBreakerMaxRequests:         3,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		CircuitBreakerMaxConsecutiveFails: 5,
		ShutdownTimeout:                   30 * time.Second,
	}

	var err error
	if cfg.ServerAddr, err = envString("VESSELSIM_SERVER_ADDR", cfg.ServerAddr); err != nil {
		return nil, err
	}
	if cfg.ServerPort, err = envInt("VESSELSIM_SERVER_PORT", cfg.ServerPort); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = envDuration("VESSELSIM_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = envDuration("VESSELSIM_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.TickSeconds, err = envFloat("VESSELSIM_TICK_SECONDS", cfg.TickSeconds); err != nil {
		return nil, err
	}
	if cfg.TurnRate, err = envFloat("VESSELSIM_TURN_RATE", cfg.TurnRate); err != nil {
		return nil, err
	}
	if cfg.ArrivalTolerance, err = envFloat("VESSELSIM_ARRIVAL_TOLERANCE", cfg.ArrivalTolerance); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxRequests, err = envInt("VESSELSIM_CB_MAX_REQUESTS", cfg.CircuitBreakerMaxRequests); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerInterval, err = envDuration("VESSELSIM_CB_INTERVAL", cfg.CircuitBreakerInterval); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerTimeout, err = envDuration("VESSELSIM_CB_TIMEOUT", cfg.CircuitBreakerTimeout); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerMaxConsecutiveFails, err = envInt("VESSELSIM_CB_MAX_CONSECUTIVE_FAILS", cfg.CircuitBreakerMaxConsecutiveFails); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration("VESSELSIM_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvironmentOverrides overlays environment settings onto a file-based
// configuration. Environment variables win when both are present.
func ApplyEnvironmentOverrides(cfg *SimConfig) error {
	env, err := LoadConfigFromEnv()
	if err != nil {
		return err
	}

	if isSet("VESSELSIM_SERVER_ADDR") {
		cfg.NetworkConfig.ServerAddress = env.ServerAddr
	}
	if isSet("VESSELSIM_SERVER_PORT") {
		cfg.NetworkConfig.ServerPort = env.ServerPort
	}
	if isSet("VESSELSIM_READ_TIMEOUT") {
		cfg.NetworkConfig.ReadTimeoutS = int(env.ReadTimeout / time.Second)
	}
	if isSet("VESSELSIM_WRITE_TIMEOUT") {
		cfg.NetworkConfig.WriteTimeoutS = int(env.WriteTimeout / time.Second)
	}
	if isSet("VESSELSIM_TICK_SECONDS") {
		cfg.TickSeconds = env.TickSeconds
	}
	if isSet("VESSELSIM_TURN_RATE") {
		cfg.TurnRate = env.TurnRate
	}
	if isSet("VESSELSIM_ARRIVAL_TOLERANCE") {
		cfg.ArrivalTolerance = env.ArrivalTolerance
	}

	return nil
}

func isSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func envString(key, fallback string) (string, error) {
	if value, ok := os.LookupEnv(key); ok {
		if value == "" {
			return "", fmt.Errorf("%s is set but empty", key)
		}
		return value, nil
	}
	return fallback, nil
}

func envInt(key string, fallback int) (int, error) {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return parsed, nil
	}
	return fallback, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return parsed, nil
	}
	return fallback, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return parsed, nil
	}
	return fallback, nil
}

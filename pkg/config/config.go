// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SimConfig contains the configuration for a vessel simulation
type SimConfig struct {
	// TickSeconds is the fixed interval between simulation ticks, in seconds.
	TickSeconds float64 `json:"tickSeconds"`
	// TurnRate is the maximum heading change per second, in degrees,
	// applied globally to all vessels.
	TurnRate float64 `json:"turnRate"`
	// ArrivalTolerance is the distance below which a vessel counts as
	// having reached its target.
	ArrivalTolerance float64 `json:"arrivalTolerance"`
	// Fleet describes vessels registered at startup.
	Fleet []VesselConfig `json:"fleet"`

	NetworkConfig NetworkConfig `json:"network"`
}

// VesselConfig describes one vessel to register at startup
type VesselConfig struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	Speed   float64 `json:"speed"`
	// Optional initial target; when absent the vessel holds station at
	// its starting position.
	TargetX *float64 `json:"targetX,omitempty"`
	TargetY *float64 `json:"targetY,omitempty"`
}

// NetworkConfig contains the HTTP transport configuration
type NetworkConfig struct {
	ServerAddress  string `json:"serverAddress"`
	ServerPort     int    `json:"serverPort"`
	ReadTimeoutS   int    `json:"readTimeout"`
	WriteTimeoutS  int    `json:"writeTimeout"`
	RequestsPerMin int    `json:"requestsPerMin"`
}

// TickInterval returns the tick interval as a duration.
func (c *SimConfig) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds * float64(time.Second))
}

// ListenAddr returns the address:port string the HTTP server binds to.
func (n NetworkConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", n.ServerAddress, n.ServerPort)
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default simulation configuration
func DefaultConfig() *SimConfig {
	return &SimConfig{
		TickSeconds:      0.1,
		TurnRate:         20.0,
		ArrivalTolerance: 5.0,
		Fleet: []VesselConfig{
			{
				ID:      "sv-aurora",
				X:       100,
				Y:       100,
				Heading: 90,
				Speed:   50,
			},
			{
				ID:      "sv-boreal",
				X:       0,
				Y:       0,
				Heading: 0,
				Speed:   35,
			},
		},
		NetworkConfig: NetworkConfig{
			ServerAddress:  "localhost",
			ServerPort:     4590,
			ReadTimeoutS:   5,
			WriteTimeoutS:  5,
			RequestsPerMin: 600,
		},
	}
}

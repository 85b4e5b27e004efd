package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/qctl/cryosim/simulation"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig       `yaml:"server"`
	Prometheus PrometheusConfig   `yaml:"prometheus"`
	MQTT       MQTTConfig         `yaml:"mqtt"`
	Simulation *simulation.Config `yaml:"simulation"`
}

// ServerConfig contains HTTP server and tick loop settings
type ServerConfig struct {
	Listen         string  `yaml:"listen"`           // HTTP listen address (default ":8090")
	TickIntervalMs int     `yaml:"tick_interval_ms"` // Engine invocation period (default 50)
	TimeScale      float64 `yaml:"time_scale"`       // Simulated ns advanced per tick ns (default 1.0)
	StartPaused    bool    `yaml:"start_paused"`     // Freeze the time accumulator on startup
	Seed           int64   `yaml:"seed"`             // Engine RNG seed (0 = time-based)
}

// PrometheusConfig controls the /metrics endpoint
type PrometheusConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTConfig contains broker settings for metrics publishing
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Broker          string `yaml:"broker"` // e.g. tcp://localhost:1883
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	TopicPrefix     string `yaml:"topic_prefix"`     // default "cryosim"
	PublishInterval int    `yaml:"publish_interval"` // seconds, default 10
}

// LoadConfig reads and validates the YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8090"
	}
	if c.Server.TickIntervalMs <= 0 {
		c.Server.TickIntervalMs = 50
	}
	if c.Server.TimeScale <= 0 {
		c.Server.TimeScale = 1.0
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "cryosim"
	}
	if c.MQTT.PublishInterval <= 0 {
		c.MQTT.PublishInterval = 10
	}
	if c.Simulation == nil {
		c.Simulation = simulation.DefaultConfig()
	}

	// Components declared without an id get a stable generated one so the
	// chain processor can key their filter memory.
	assignComponentIDs(c.Simulation.RoomStage.Components)
	assignComponentIDs(c.Simulation.CryoStage.Components)
}

func assignComponentIDs(components []simulation.ChainComponent) {
	for i := range components {
		if components[i].ID == "" {
			components[i].ID = uuid.NewString()
		}
	}
}

func (c *Config) validate() error {
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	ids := make(map[string]bool)
	for _, comps := range [][]simulation.ChainComponent{
		c.Simulation.RoomStage.Components,
		c.Simulation.CryoStage.Components,
	} {
		for _, comp := range comps {
			if ids[comp.ID] {
				return fmt.Errorf("duplicate chain component id: %s", comp.ID)
			}
			ids[comp.ID] = true
		}
	}
	return nil
}

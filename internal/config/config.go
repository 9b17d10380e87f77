package config

import "time"

// EngineConfig is the root configuration for an auction engine instance.
type EngineConfig struct {
	Instance   InstanceConfig   `yaml:"instance"`
	Database   DBConfig         `yaml:"database"`
	Store      StoreConfig      `yaml:"store"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	AutoExtend AutoExtendConfig `yaml:"auto_extend"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Health     HealthConfig     `yaml:"health"`
}

// InstanceConfig identifies this engine instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StoreConfig holds store-layer settings.
type StoreConfig struct {
	// Timeout bounds every store call. Hitting it surfaces as a
	// transient, retryable failure.
	Timeout time.Duration `yaml:"timeout"`
}

// SchedulerConfig holds auction lifecycle scheduler settings.
type SchedulerConfig struct {
	Interval    time.Duration `yaml:"interval"`    // tick cadence
	Concurrency int           `yaml:"concurrency"` // max auctions processed at once per pass
}

// AutoExtendConfig holds the sniping-protection window.
// A bid landing within Threshold of the end time pushes the end time
// forward by Extension; this can repeat as long as bids keep landing
// inside the (already extended) window.
type AutoExtendConfig struct {
	Threshold time.Duration `yaml:"threshold"`
	Extension time.Duration `yaml:"extension"`
}

// NotifierConfig holds outbound notification dispatcher settings.
type NotifierConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// HealthConfig holds the health/debug HTTP endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}

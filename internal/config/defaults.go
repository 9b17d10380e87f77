package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultStoreTimeout         = 5 * time.Second
	DefaultSchedulerInterval    = 15 * time.Second
	DefaultSchedulerConcurrency = 8
	DefaultAutoExtendThreshold  = 5 * time.Minute
	DefaultAutoExtendExtension  = 10 * time.Minute
	DefaultNotifierBufferSize   = 1024
	DefaultHealthPort           = 8080
)

func (c *EngineConfig) applyDefaults() {
	applyDBDefaults(&c.Database)

	if c.Store.Timeout == 0 {
		c.Store.Timeout = DefaultStoreTimeout
	}

	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = DefaultSchedulerInterval
	}
	if c.Scheduler.Concurrency == 0 {
		c.Scheduler.Concurrency = DefaultSchedulerConcurrency
	}

	if c.AutoExtend.Threshold == 0 {
		c.AutoExtend.Threshold = DefaultAutoExtendThreshold
	}
	if c.AutoExtend.Extension == 0 {
		c.AutoExtend.Extension = DefaultAutoExtendExtension
	}

	if c.Notifier.BufferSize == 0 {
		c.Notifier.BufferSize = DefaultNotifierBufferSize
	}

	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

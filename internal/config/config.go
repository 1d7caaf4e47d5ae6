package config

import "time"

// Config holds every tunable the server reads at startup.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	LogFile           string        `mapstructure:"log_file" yaml:"log_file"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	IdleThreshold     time.Duration `mapstructure:"idle_threshold" yaml:"idle_threshold"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
	HistoryLimit      int           `mapstructure:"history_limit" yaml:"history_limit"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MetricsAddr       string        `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// Default returns configuration with the same starter values the
// original messaging system shipped with, except for the inactivity
// threshold: the reference server's main() wired it to two minutes
// even though its own comments describe one minute as typical, so we
// make it an explicit, overridable setting instead of guessing which
// the author meant.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogFile:           "messaging_system.log",
		LogLevel:          "info",
		IdleThreshold:     60 * time.Second,
		SweepInterval:     10 * time.Second,
		HistoryLimit:      1000,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		MetricsAddr:       ":9090",
	}
}

// UpdateFrom overwrites non-zero values from other into the receiver,
// letting CLI flags win over file/env values without clobbering
// whatever a flag left untouched.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.IdleThreshold != 0 {
		c.IdleThreshold = other.IdleThreshold
	}
	if other.SweepInterval != 0 {
		c.SweepInterval = other.SweepInterval
	}
	if other.HistoryLimit != 0 {
		c.HistoryLimit = other.HistoryLimit
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.MetricsAddr != "" {
		c.MetricsAddr = other.MetricsAddr
	}
}

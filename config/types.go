// Package config provides configuration management for the secwire simulator
package config

import (
	"log/slog"
	"time"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// SlogLevel maps the configured level onto slog's leveling.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config represents the complete simulator configuration
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Simulation configuration
	Sim SimConfig `yaml:"sim" json:"sim"`

	// Server dispatch configuration
	Server ServerConfig `yaml:"server" json:"server"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Application version
	Version string `yaml:"version" json:"version"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level
	Level LogLevel `yaml:"level" json:"level"`

	// Log format (json, text)
	Format string `yaml:"format" json:"format"`
}

// SimConfig contains the medium and channel defaults for a run
type SimConfig struct {
	// Arbitration interval of the medium's tick loop
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`

	// Default timeout applied to blocking channel operations
	DefaultTimeout time.Duration `yaml:"default_timeout" json:"default_timeout"`

	// Default queue priority of derived channels
	DefaultPriority int `yaml:"default_priority" json:"default_priority"`
}

// ServerConfig contains request-dispatch configuration
type ServerConfig struct {
	// ListenTimeout bounds each listen iteration; an idle period of this
	// length ends the dispatch loop
	ListenTimeout time.Duration `yaml:"listen_timeout" json:"listen_timeout"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "secwire",
			Version: "1.0.0",
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "text",
		},
		Sim: SimConfig{
			TickInterval:    100 * time.Millisecond,
			DefaultTimeout:  10 * time.Second,
			DefaultPriority: 0,
		},
		Server: ServerConfig{
			ListenTimeout: 10 * time.Second,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	if c.Sim.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}
	if c.Sim.DefaultTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Server.ListenTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

package config

import "errors"

// Configuration errors
var (
	// ErrConfigFileNotFound indicates no configuration file was found
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrInvalidAppName indicates an invalid application name
	ErrInvalidAppName = errors.New("invalid application name")

	// ErrInvalidLogLevel indicates an invalid log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidTickInterval indicates a non-positive tick interval
	ErrInvalidTickInterval = errors.New("invalid tick interval")

	// ErrInvalidTimeout indicates an invalid timeout value
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Package config provides configuration types and defaults for jvlbi.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidProtocol indicates an unrecognized protocol string.
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrNoEndpoints indicates a connect with no (host, port) endpoints.
	ErrNoEndpoints = errors.New("no endpoints configured")

	// ErrNoMountpoints indicates no mountpoint pattern resolved to a
	// usable directory.
	ErrNoMountpoints = errors.New("no mountpoints configured")

	// ErrInvalidQueueDepth indicates a non-positive queue depth.
	ErrInvalidQueueDepth = errors.New("queue depth out of range")
)

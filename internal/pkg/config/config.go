package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving time-based configuration values.
type TimeConfig interface {
	// GetSecond retrieves the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetDay retrieves the value for key as a number of days (24h).
	GetDay(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations return the zero value when the key is missing or cannot be converted.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetBinary retrieves the value for key as a byte slice.
	// The configuration value is stored base64 encoded.
	GetBinary(key string) []byte

	// GetArray retrieves the value for key as a slice of strings.
	// The configuration value is stored as <element1>,<element2>,...
	// Empty elements are dropped.
	GetArray(key string) []string
}

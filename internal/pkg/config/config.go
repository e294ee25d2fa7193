package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values of various types.
// Implementations handle retrieval and type conversion and return the zero
// value for keys that are not set.
type Config interface {
	io.Closer

	// GetBool retrieves the value associated with the given key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value associated with the given key as an int.
	GetInt(key string) int

	// GetFloat64 retrieves the value associated with the given key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the value associated with the given key as seconds.
	GetSecond(key string) time.Duration

	// GetString retrieves the value associated with the given key as a string.
	GetString(key string) string

	// GetBinary retrieves the value associated with the given key as a byte slice.
	// Configuration value is stored as base64 encoded.
	GetBinary(key string) []byte

	// GetArray retrieves the value associated with the given key as a slice of strings.
	// Scalar values are stored with format <element1>,<element2>,...
	GetArray(key string) []string

	// IsSet reports whether the key has a value from any source, defaults included.
	IsSet(key string) bool

	// Source returns the file the values were read from, or "" when the
	// configuration came from the environment alone.
	Source() string
}

package rest

import (
	"go.uber.org/zap"
)

type Config struct {
	// Port is the port where the server will listen
	Port int

	// JwtHeaderName is the name of the header inspected on the /ws handshake
	JwtHeaderName string

	// JwtValidationURL is the URL which validates the JWT; when empty, the
	// handshake is not authorized
	JwtValidationURL string

	// CacheType selects the cache implementation for validated tokens
	CacheType string

	// CacheTTL is how long a validated token stays cached, in seconds
	CacheTTL int64

	Logger *zap.Logger
}

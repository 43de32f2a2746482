package server

type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string
	// RateLimit is the number of analysis/history requests allowed per
	// client IP per minute. Zero disables limiting.
	RateLimit int
	// AllowedOrigins lists CORS and websocket origins; "*" allows any.
	AllowedOrigins []string
}

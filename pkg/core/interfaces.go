package core

// Logger interface for photon mapping logging
type Logger interface {
	Printf(format string, args ...interface{})
}

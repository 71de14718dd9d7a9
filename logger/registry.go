package logger

import "sync"

// components holds the loggers handed out by Get, one per package name.
var components sync.Map

// Register makes Get(name) return l.
func Register(name string, l *Logger) {
	components.Store(name, l)
}

// Get returns the logger registered for a package. Unregistered names get
// the global logger tagged with the name, so packages can log before the
// CLI has called Init.
func Get(name string) *Logger {
	if l, ok := components.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers component-tagged children of the global
// logger. Call it after Init so the children share its level and sink.
func RegisterDefaults(names ...string) {
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

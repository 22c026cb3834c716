package logger

import (
	"slices"
	"sync"
)

// Component names used across the module.
const (
	ComponentPipeline = "pipeline"
	ComponentProcess  = "process"
	ComponentConfig   = "config"
)

// components maps a component name to the logger it should use.
var components sync.Map

// Register makes l the logger returned by Get(name). A nil logger removes
// the registration.
func Register(name string, l *Logger) {
	if l == nil {
		components.Delete(name)
		return
	}
	components.Store(name, l)
}

// Get returns the logger registered for name, or the global logger tagged
// with name as its component.
func Get(name string) *Logger {
	if v, ok := components.Load(name); ok {
		return v.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the registered component names, sorted.
func Registered() []string {
	var names []string
	components.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}

// RegisterDefaults registers component loggers derived from the global
// logger. Call it after Init.
func RegisterDefaults(names ...string) {
	if len(names) == 0 {
		names = []string{ComponentPipeline, ComponentProcess, ComponentConfig}
	}
	for _, name := range names {
		Register(name, GetGlobalLogger().WithComponent(name))
	}
}

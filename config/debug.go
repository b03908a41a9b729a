package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/kbukum/errkit/logger"
)

// DebugKey is the config key watched by WatchDebug.
const DebugKey = "debug"

// DebugSwitch is a debug flag that can be flipped while the service runs.
// The zero value is off. It satisfies render.DebugFlag.
type DebugSwitch struct {
	on atomic.Bool
}

// NewDebugSwitch returns a switch with the given initial state.
func NewDebugSwitch(enabled bool) *DebugSwitch {
	s := &DebugSwitch{}
	s.on.Store(enabled)
	return s
}

// Enabled reports whether debug mode is on.
func (s *DebugSwitch) Enabled() bool { return s.on.Load() }

// Set turns debug mode on or off.
func (s *DebugSwitch) Set(enabled bool) { s.on.Store(enabled) }

// WatchDebug watches the config file behind v and updates sw whenever the
// debug key changes. It is a no-op when v has no config file.
func WatchDebug(v *viper.Viper, sw *DebugSwitch, log *logger.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(debugChangeHandler(v, sw, log))
	v.WatchConfig()
}

func debugChangeHandler(v *viper.Viper, sw *DebugSwitch, log *logger.Logger) func(fsnotify.Event) {
	return func(e fsnotify.Event) {
		next := v.GetBool(DebugKey)
		if sw.Enabled() == next {
			return
		}
		sw.Set(next)
		if log != nil {
			log.Warn("debug mode changed", map[string]interface{}{
				"debug": next,
				"file":  e.Name,
			})
		}
	}
}

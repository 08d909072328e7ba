// Package configmanager defines how commands obtain their configuration.
package configmanager

import (
	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
)

// LoadOptions configures a Load call.
type LoadOptions struct {
	// Timer adds stage timing to the "config loaded" message.
	Timer timer.Timer
	// Silent suppresses the loading messages. Commands whose stdout is
	// machine readable load silently.
	Silent bool
}

// ConfigManager resolves a configuration of type T from files, environment
// and flags.
type ConfigManager[T any] interface {
	// Load returns the configuration, reading it on the first call only.
	Load(opts LoadOptions) (*T, error)
	// ConfigFileUsed returns the path of the file that was read, if any.
	ConfigFileUsed() string
}

package state

import (
	"time"

	"spelunk/selector"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:   time.Now(),
		Options: selector.Options{Mode: selector.ModeReplace},
	}
}

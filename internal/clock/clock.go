// Package clock abstracts wall-clock time so services that stamp deposit
// and status dates can be tested deterministically.
package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(func() Clock {
		return SystemClock{}
	}),
)

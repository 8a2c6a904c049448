package registry

import "time"

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Options {
	return func(o *options) {
		o.now = now
	}
}

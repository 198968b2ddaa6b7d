package feed

import "time"

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithHorizon bounds how far into the future candidates are gathered.
func WithHorizon(horizon time.Duration) Option {
	return func(p *Pipeline) {
		if horizon > 0 {
			p.horizon = horizon
		}
	}
}

// WithLocation sets the timezone whose day boundaries drive bucket
// assignment.
func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) {
		if loc != nil {
			p.location = loc
		}
	}
}

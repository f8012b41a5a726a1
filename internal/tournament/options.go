package tournament

import (
	"time"

	"ranker/internal/sorter"
)

// Option configures a Tournament.
type Option func(*options)

type options struct {
	sorterOpts []sorter.Option
	outputs    []string
	now        func() time.Time
}

func defaultOptions() options {
	return options{now: time.Now}
}

// WithSource sets the pairing randomness of the underlying sorter.
func WithSource(src sorter.Source) Option {
	return func(o *options) {
		o.sorterOpts = append(o.sorterOpts, sorter.WithSource(src))
	}
}

// WithSeed seeds the default pairing source.
func WithSeed(seed uint64, skipMean float64) Option {
	return func(o *options) {
		o.sorterOpts = append(o.sorterOpts, sorter.WithSeed(seed, skipMean))
	}
}

// WithOutputs records where the final ranking should be exported.
func WithOutputs(paths ...string) Option {
	return func(o *options) {
		o.outputs = append(o.outputs, paths...)
	}
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

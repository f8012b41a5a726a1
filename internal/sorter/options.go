package sorter

import "time"

// Option configures a Sorter.
type Option func(*options)

type options struct {
	source Source
}

func defaultOptions() options {
	return options{}
}

func (o *options) resolve() {
	if o.source == nil {
		o.source = NewSource(uint64(time.Now().UnixNano()), DefaultSkipMean)
	}
}

// WithSource sets the randomness used for pairing.
func WithSource(src Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithSeed uses the default PCG source with the given seed and skip mean.
func WithSeed(seed uint64, skipMean float64) Option {
	return func(o *options) {
		o.source = NewSource(seed, skipMean)
	}
}

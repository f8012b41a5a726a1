package config

import "time"

// PairingConfig controls how candidates are paired before each round of
// splitting.
type PairingConfig struct {
	// SkipMean is the Poisson mean of how far past its neighbour a candidate's
	// partner is picked. 0 pairs neighbours, like textbook merge-insertion.
	SkipMean float64 `yaml:"skip_mean"`

	// Seed fixes the pairing randomness. 0 seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

// DefaultPairingConfig returns the defaults.
func DefaultPairingConfig() *PairingConfig {
	return &PairingConfig{
		SkipMean: 1.0,
		Seed:     0,
	}
}

// SeedOrNow returns Seed, or a clock-derived seed when Seed is 0.
func (c PairingConfig) SeedOrNow(now time.Time) uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(now.UnixNano())
}

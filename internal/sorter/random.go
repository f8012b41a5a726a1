package sorter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
)

// DefaultSkipMean is the mean of the Poisson draw used to pick pairing partners.
const DefaultSkipMean = 1.0

// Source supplies the randomness used while pairing a layer. Tests inject a
// scripted Source to make pairings deterministic.
type Source interface {
	// Skip returns the offset (>= 1) of the partner chosen for the first
	// remaining element of a layer.
	Skip() int
	// Shuffle permutes n items through swap, like rand.Shuffle.
	Shuffle(n int, swap func(i, j int))
}

// PCGSource is the default Source. Partner offsets follow Knuth's Poisson
// counter, which never returns less than one, so a skip mean of zero always
// pairs adjacent elements.
//
// The generator state and the skip mean can be marshalled, which lets a saved
// tournament resume with the exact pairings it would have produced
// uninterrupted, whatever source it is restored into.
type PCGSource struct {
	pcg      *rand.PCG
	rng      *rand.Rand
	skipMean float64
}

// NewSource returns a PCGSource seeded with seed.
func NewSource(seed uint64, skipMean float64) *PCGSource {
	if !validSkipMean(skipMean) {
		skipMean = 0
	}
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &PCGSource{
		pcg:      pcg,
		rng:      rand.New(pcg),
		skipMean: skipMean,
	}
}

// Skip draws a partner offset.
func (s *PCGSource) Skip() int {
	limit := math.Exp(-s.skipMean)
	p := 1.0
	k := 0
	for {
		k++
		p *= s.rng.Float64()
		if p <= limit {
			return k
		}
	}
}

// Shuffle permutes n items.
func (s *PCGSource) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// SkipMean returns the Poisson mean used by Skip.
func (s *PCGSource) SkipMean() float64 { return s.skipMean }

func validSkipMean(m float64) bool {
	return m >= 0 && !math.IsNaN(m) && !math.IsInf(m, 0)
}

// skipMeanSize prefixes the PCG state in MarshalBinary output.
const skipMeanSize = 8

// MarshalBinary captures the skip mean and the generator state.
func (s *PCGSource) MarshalBinary() ([]byte, error) {
	pcg, err := s.pcg.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, skipMeanSize, skipMeanSize+len(pcg))
	binary.BigEndian.PutUint64(out, math.Float64bits(s.skipMean))
	return append(out, pcg...), nil
}

// UnmarshalBinary restores a state captured by MarshalBinary, skip mean
// included. A bare PCG state, as saved before the skip mean was recorded,
// keeps the configured mean. s is unchanged on error.
func (s *PCGSource) UnmarshalBinary(data []byte) error {
	if bytes.HasPrefix(data, []byte("pcg:")) {
		return s.pcg.UnmarshalBinary(data)
	}
	if len(data) <= skipMeanSize {
		return errors.New("pcg source state too short")
	}
	mean := math.Float64frombits(binary.BigEndian.Uint64(data[:skipMeanSize]))
	if !validSkipMean(mean) {
		return errors.New("pcg source state has an invalid skip mean")
	}
	pcg := rand.NewPCG(0, 0)
	if err := pcg.UnmarshalBinary(data[skipMeanSize:]); err != nil {
		return err
	}
	*s.pcg = *pcg
	s.skipMean = mean
	return nil
}

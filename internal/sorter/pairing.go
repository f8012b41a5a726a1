package sorter

import (
	"slices"

	"ranker/internal/types"
)

// Unpaired is the sentinel partner of the leftover element of an odd layer.
const Unpaired = -1

// Pairing maps every element of a layer to its partner. The mapping is
// symmetric; an odd layer's leftover maps to Unpaired and Unpaired maps back.
type Pairing map[int]int

// Partner returns v's partner. ok is false when v is not in the layer.
func (p Pairing) Partner(v int) (partner int, ok bool) {
	partner, ok = p[v]
	return partner, ok
}

// Leftover returns the element paired with the sentinel, if any.
func (p Pairing) Leftover() (int, bool) {
	v, ok := p[Unpaired]
	return v, ok
}

// Clone returns an independent copy.
func (p Pairing) Clone() Pairing {
	if p == nil {
		return nil
	}
	out := make(Pairing, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GeneratePairing pairs the elements of layer and returns the pairing together
// with the duels that decide each pair, in shuffled order.
//
// The first remaining element is paired with the element src.Skip() places
// further along (clamped to the end of the pool), not always its neighbour.
// The leftover of an odd layer is paired with Unpaired and gets no duel.
func GeneratePairing(layer []int, src Source) (Pairing, []types.Duel[int]) {
	pairing := make(Pairing, len(layer)+1)
	if len(layer) == 0 {
		return pairing, nil
	}

	pool := slices.Clone(layer)
	duels := make([]types.Duel[int], 0, len(layer)/2)
	for len(pool) > 1 {
		first := pool[0]
		offset := min(max(src.Skip(), 1), len(pool)-1)
		partner := pool[offset]

		pool = slices.Delete(pool, offset, offset+1)
		pool = pool[1:]

		pairing[first] = partner
		pairing[partner] = first
		duels = append(duels, types.NewDuel(first, partner))
	}

	if len(pool) == 1 {
		pairing[pool[0]] = Unpaired
		pairing[Unpaired] = pool[0]
	}

	src.Shuffle(len(duels), func(i, j int) {
		duels[i], duels[j] = duels[j], duels[i]
	})
	for i := range duels {
		src.Shuffle(2, func(a, b int) {
			if a != b {
				duels[i] = duels[i].Swap()
			}
		})
	}
	return pairing, duels
}

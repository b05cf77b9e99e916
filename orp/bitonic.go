package orp

import (
	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/bitutil"
	"github.com/wCloudRain/orp/record"
)

// Bitonic realizes π in place over a power-of-two-sized array using a
// bitonic comparator network (spec.md §4.4). Every comparator compares
// elements not by key but by π(key) itself: since π is already a uniformly
// random bijection over [0,n), sorting ascending by π(key) trivially lands
// each key at output index π(key), which is exactly what the network needs
// to converge on.
type Bitonic struct {
	svc    arraystore.Service
	oracle *PermutationOracle
	n      uint32
}

// NewBitonic constructs a Bitonic ORP over n elements. n must be a power of
// two; spec.md §4.4 leaves padding to the caller.
func NewBitonic(svc arraystore.Service, n uint32, seed int64) (*Bitonic, error) {
	if n == 0 {
		return nil, ErrInvalidLength
	}
	if !bitutil.IsPow2(uint64(n)) {
		return nil, ErrNotPowerOfTwo
	}
	return &Bitonic{
		svc:    svc,
		oracle: NewPermutationOracle(n, seed),
		n:      n,
	}, nil
}

func (b *Bitonic) GetPi(key uint32) uint32     { return b.oracle.Pi(key) }
func (b *Bitonic) GetInvPi(index uint32) uint32 { return b.oracle.InvPi(index) }

// Permute sorts the n elements at inputName into π order in place, then
// returns inputName unchanged: the comparator network is the only pass, and
// it never needs a second array.
func (b *Bitonic) Permute(inputName Name) (Name, error) {
	n := b.n

	rank := func(i uint32) (record.Element, uint32, error) {
		e, err := b.svc.Get(inputName, i)
		if err != nil {
			return record.Element{}, 0, err
		}
		return e, b.oracle.Pi(e.Key), nil
	}

	for k := uint32(2); k <= n; k *= 2 {
		for j := k / 2; j > 0; j /= 2 {
			for i := uint32(0); i < n; i++ {
				l := i ^ j
				if l <= i {
					continue
				}
				ei, pi, err := rank(i)
				if err != nil {
					return Name(0), err
				}
				el, pl, err := rank(l)
				if err != nil {
					return Name(0), err
				}
				ascending := (i & k) == 0
				swap := pi > pl
				if !ascending {
					swap = pi < pl
				}
				if swap {
					ei, el = el, ei
				}
				if err := b.svc.Put(inputName, i, ei); err != nil {
					return Name(0), err
				}
				if err := b.svc.Put(inputName, l, el); err != nil {
					return Name(0), err
				}
			}
		}
	}

	// Clear aux on every output element; the network never touches aux, so
	// this also guards against a caller reusing an array that came in with
	// stale scratch state.
	for i := uint32(0); i < n; i++ {
		e, err := b.svc.Get(inputName, i)
		if err != nil {
			return Name(0), err
		}
		e.ClearAux()
		if err := b.svc.Put(inputName, i, e); err != nil {
			return Name(0), err
		}
	}

	return inputName, nil
}

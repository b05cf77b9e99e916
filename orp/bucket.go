package orp

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/avalanche"
	"github.com/wCloudRain/orp/bitutil"
	"github.com/wCloudRain/orp/config"
	"github.com/wCloudRain/orp/record"
)

// Bucket realizes π via a butterfly network of oblivious bucket splits
// (Asharov, Chan, Nayak, Pass, Ren & Shi, "Bucket oblivious sort"), followed
// by one non-oblivious rearrangement pass (spec.md §4.5). Z is the bucket
// capacity; it must be chosen large enough that a real split bucket
// overflowing it is astronomically unlikely.
type Bucket struct {
	svc    arraystore.Service
	oracle *PermutationOracle
	alloc  *arraystore.Allocator
	rng    *rand.Rand
	n      uint32
	Z      uint32
	seed   uint32
}

// NewBucket constructs a Bucket ORP over n elements with bucket capacity Z.
// Z must be even, since the first butterfly level splits a Z/2-wide slice
// of the (dummy-free) input into two halves of an output bucket.
func NewBucket(svc arraystore.Service, n, z uint32, seed int64) (*Bucket, error) {
	if n == 0 {
		return nil, ErrInvalidLength
	}
	if z == 0 || z%2 != 0 {
		return nil, ErrInvalidLength
	}
	return &Bucket{
		svc:    svc,
		oracle: NewPermutationOracle(n, seed),
		alloc:  arraystore.NewAllocator(),
		rng:    rand.New(rand.NewSource(seed + 1)),
		n:      n,
		Z:      z,
		seed:   uint32(seed),
	}, nil
}

// NewBucketFromConfig constructs a Bucket ORP using cfg.BucketZ, validating
// cfg first.
func NewBucketFromConfig(svc arraystore.Service, n uint32, cfg config.Config, seed int64) (*Bucket, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewBucket(svc, n, cfg.BucketZ, seed)
}

func (bk *Bucket) GetPi(key uint32) uint32     { return bk.oracle.Pi(key) }
func (bk *Bucket) GetInvPi(index uint32) uint32 { return bk.oracle.InvPi(index) }

// Permute runs the butterfly phase followed by the non-oblivious rearrange
// phase and returns the name of the final, π-ordered output array. Every
// temporary array either phase creates is deleted on any error exit, per
// spec.md §5.
func (bk *Bucket) Permute(inputName Name) (out Name, err error) {
	bk.seed += 2
	temps := newTempArrays(bk.svc)
	defer func() {
		if err != nil {
			temps.abort()
		}
	}()

	shuffled, err := bk.butterfly(inputName, temps)
	if err != nil {
		return Name(0), err
	}
	out, err = bk.rearrange(shuffled, temps)
	return out, err
}

// butterfly runs log2(B) levels of bucket splits, returning the name of an
// array holding exactly n real elements (no dummies, no particular order)
// in its first n slots.
func (bk *Bucket) butterfly(inputName Name, temps *tempArrays) (Name, error) {
	b := bitutil.NextPow2(bitutil.CeilDiv(2*uint64(bk.n), uint64(bk.Z)))
	if b == 0 {
		b = 1
	}
	B := uint32(b)
	numLevels := int(bitutil.BitLength64(uint64(B))) - 1

	hasher := avalanche.New(bk.seed)
	arr := inputName

	var inLeft, inRight, outLeft, outRight []record.Element
	var count uint32

	for i := 0; i < numLevels; i++ {
		ii := uint32(i)
		next := bk.alloc.Reserve(1)[0]
		if err := temps.create(next, B*bk.Z); err != nil {
			return Name(0), err
		}

		width := bk.Z
		if i == 0 {
			width = bk.Z / 2
		}

		for j := uint32(0); j < B/2; j++ {
			jprime := (j / (1 << ii)) * (1 << ii)

			var err error
			inLeft, err = bk.getBucket(arr, width, (j+jprime)*width, inLeft)
			if err != nil {
				return Name(0), err
			}
			inRight, err = bk.getBucket(arr, width, (j+jprime+(1<<ii))*width, inRight)
			if err != nil {
				return Name(0), err
			}

			outLeft, outRight = bk.splitBucket(inLeft, outLeft, outRight, hasher, B, ii)
			outLeft, outRight = bk.splitBucket(inRight, outLeft, outRight, hasher, B, ii)

			if i == numLevels-1 {
				count, err = bk.finalRound(outLeft, outRight, next, count)
				if err != nil {
					return Name(0), err
				}
			} else {
				if err := bk.putBucket(next, 2*j*bk.Z, outLeft); err != nil {
					return Name(0), err
				}
				if err := bk.putBucket(next, (2*j+1)*bk.Z, outRight); err != nil {
					return Name(0), err
				}
			}
			outLeft, outRight = outLeft[:0], outRight[:0]
		}

		if err := temps.delete(arr); err != nil {
			return Name(0), err
		}
		arr = next
	}
	return arr, nil
}

// getBucket reads the real elements in arr[offset:offset+width) into buck
// (reused across calls; truncated, not reallocated).
func (bk *Bucket) getBucket(arr Name, width, offset uint32, buck []record.Element) ([]record.Element, error) {
	buck = buck[:0]
	for i := offset; i < offset+width; i++ {
		if !bk.svc.Check(arr, i) {
			continue
		}
		e, err := bk.svc.Get(arr, i)
		if err != nil {
			return nil, err
		}
		if !e.IsDummy() {
			buck = append(buck, e)
		}
	}
	return buck, nil
}

// splitBucket appends input's real elements to outLeft or outRight based on
// bit i of hash(key, seed) mod B — the butterfly network's routing decision
// at level i.
func (bk *Bucket) splitBucket(input, outLeft, outRight []record.Element, hasher avalanche.Hasher, B, i uint32) ([]record.Element, []record.Element) {
	for _, e := range input {
		tag := hasher.Hash32Mod(e.Key, B)
		if tag&(1<<i) != 0 {
			outRight = append(outRight, e)
		} else {
			outLeft = append(outLeft, e)
		}
	}
	return outLeft, outRight
}

// putBucket writes buck's real elements starting at offset, then pads with
// dummies out to Z. It fails with ErrBucketOverflow if buck holds more than
// Z real elements.
func (bk *Bucket) putBucket(arr Name, offset uint32, buck []record.Element) error {
	if uint32(len(buck)) > bk.Z {
		logger.WithFields(logrus.Fields{"offset": offset, "count": len(buck), "z": bk.Z}).
			Error("orp: bucket overflow")
		return ErrBucketOverflow
	}
	if uint32(len(buck)) > bk.Z*3/4 {
		logger.WithFields(logrus.Fields{"offset": offset, "fillPct": 100 * len(buck) / int(bk.Z), "z": bk.Z}).
			Warn("orp: bucket nearing capacity")
	}
	for i, e := range buck {
		if err := bk.svc.Put(arr, offset+uint32(i), e); err != nil {
			return err
		}
	}
	for i := uint32(len(buck)); i < bk.Z; i++ {
		if err := bk.svc.Put(arr, offset+i, record.NewDummy()); err != nil {
			return err
		}
	}
	return nil
}

// finalRound locally shuffles left and right (now dummy-free) and appends
// them to arr starting at count, with no padding. It returns the new count.
func (bk *Bucket) finalRound(left, right []record.Element, arr Name, count uint32) (uint32, error) {
	bk.rng.Shuffle(len(left), func(i, j int) { left[i], left[j] = left[j], left[i] })
	bk.rng.Shuffle(len(right), func(i, j int) { right[i], right[j] = right[j], right[i] })

	for i, e := range left {
		if err := bk.svc.Put(arr, count+uint32(i), e); err != nil {
			return 0, err
		}
	}
	count += uint32(len(left))
	for i, e := range right {
		if err := bk.svc.Put(arr, count+uint32(i), e); err != nil {
			return 0, err
		}
	}
	count += uint32(len(right))
	return count, nil
}

// rearrange non-obliviously writes each of the n real elements in shuffled
// (indices 0..n-1) to π(key) of a fresh output array — safe because the
// butterfly phase already randomized the incoming order.
func (bk *Bucket) rearrange(shuffled Name, temps *tempArrays) (Name, error) {
	out := bk.alloc.Reserve(1)[0]
	if err := temps.create(out, bk.n); err != nil {
		return Name(0), err
	}
	for i := uint32(0); i < bk.n; i++ {
		e, err := bk.svc.Get(shuffled, i)
		if err != nil {
			return Name(0), err
		}
		if err := bk.svc.Put(out, bk.oracle.Pi(e.Key), e); err != nil {
			return Name(0), err
		}
	}
	if err := temps.delete(shuffled); err != nil {
		return Name(0), err
	}
	temps.release(out)
	return out, nil
}

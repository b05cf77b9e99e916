package orp

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wCloudRain/orp/arraystore"
	"github.com/wCloudRain/orp/bitutil"
	"github.com/wCloudRain/orp/config"
	"github.com/wCloudRain/orp/record"
)

// Reserved handles for Melbourne's temporary arrays, shared across every
// Melbourne instance the way the reference's Ta/Tb/Tc/Td macros are: they
// sit at the base of arraystore's reserved range (spec.md §6).
const (
	melbourneTa Name = arraystore.ReservedBase
	melbourneTb Name = arraystore.ReservedBase + 1
	melbourneTc Name = arraystore.ReservedBase + 2
	melbourneTd Name = arraystore.ReservedBase + 3
)

// Melbourne realizes π with two independent shuffle passes over four
// arrays, the way Ohrimenko, Goodrich, Tamassia & Upfal's Melbourne Shuffle
// does (spec.md §4.6): distribute into chunks, distribute chunks into
// buckets, then sort each bucket into place. A single pass cannot realize
// every permutation (property 10), so permute always runs two, reseeding
// the oracle in between.
type Melbourne struct {
	svc    arraystore.Service
	oracle *PermutationOracle
	alloc  *arraystore.Allocator
	n      uint32
	p1, p2 uint32

	numChunks       uint32
	numBuckets      uint32
	bucketsPerChunk uint32
	bucketWidth     uint32
	chunkWidth      uint32
}

// NewMelbourne constructs a Melbourne ORP over n elements with dummy-padding
// multipliers p1 (distribution 1) and p2 (distribution 2).
func NewMelbourne(svc arraystore.Service, n, p1, p2 uint32, seed int64) (*Melbourne, error) {
	if n == 0 || p1 == 0 || p2 == 0 {
		return nil, ErrInvalidLength
	}
	numBuckets := uint32(bitutil.CeilSqrt(uint64(n)))
	bucketWidth := numBuckets
	if bucketWidth*numBuckets-bucketWidth >= n {
		bucketWidth--
	}
	numChunks := uint32(bitutil.CeilNthRoot4(uint64(n)))
	bucketsPerChunk := uint32(bitutil.CeilDiv(uint64(numBuckets), uint64(numChunks)))
	chunkWidth := bucketsPerChunk * bucketWidth

	return &Melbourne{
		svc:             svc,
		oracle:          NewPermutationOracle(n, seed),
		alloc:           arraystore.NewAllocator(),
		n:               n,
		p1:              p1,
		p2:              p2,
		numChunks:       numChunks,
		numBuckets:      numBuckets,
		bucketsPerChunk: bucketsPerChunk,
		bucketWidth:     bucketWidth,
		chunkWidth:      chunkWidth,
	}, nil
}

// NewMelbourneFromConfig constructs a Melbourne ORP using cfg's P1 and P2,
// validating cfg first.
func NewMelbourneFromConfig(svc arraystore.Service, n uint32, cfg config.Config, seed int64) (*Melbourne, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewMelbourne(svc, n, cfg.MelbourneP1, cfg.MelbourneP2, seed)
}

func (m *Melbourne) GetPi(key uint32) uint32     { return m.oracle.Pi(key) }
func (m *Melbourne) GetInvPi(index uint32) uint32 { return m.oracle.InvPi(index) }

// Permute runs two shuffle passes back to back on independent π's, since a
// single Melbourne pass does not realize the full symmetric group. Every
// temporary array either pass creates is deleted on any error exit, per
// spec.md §5.
func (m *Melbourne) Permute(inputName Name) (out Name, err error) {
	outs := m.alloc.Reserve(2)
	out1, out2 := outs[0], outs[1]
	temps := newTempArrays(m.svc)
	defer func() {
		if err != nil {
			temps.abort()
		}
	}()

	// T1 holds numChunks regions of numBuckets bins of maxLoad1 slots; T2
	// holds numChunks regions of bucketsPerChunk^2 bins of maxLoad2 slots.
	t1Len := m.numChunks * m.numBuckets * m.p1 * m.numChunks
	t2Len := m.numChunks * m.bucketsPerChunk * m.bucketsPerChunk * m.p2 * m.numChunks

	if err = temps.create(melbourneTa, t1Len); err != nil {
		return Name(0), err
	}
	if err = temps.create(melbourneTb, t2Len); err != nil {
		return Name(0), err
	}
	if err = temps.create(out1, m.n); err != nil {
		return Name(0), err
	}
	if err = m.shufflePass(inputName, melbourneTa, melbourneTb, out1); err != nil {
		return Name(0), err
	}
	if err = temps.delete(melbourneTa); err != nil {
		return Name(0), err
	}
	if err = temps.delete(melbourneTb); err != nil {
		return Name(0), err
	}
	if err = temps.delete(inputName); err != nil {
		return Name(0), err
	}

	logger.WithField("n", m.n).Debug("orp: melbourne reseeding oracle for second shuffle pass")
	m.oracle.Reseed()

	if err = temps.create(melbourneTc, t1Len); err != nil {
		return Name(0), err
	}
	if err = temps.create(melbourneTd, t2Len); err != nil {
		return Name(0), err
	}
	if err = temps.create(out2, m.n); err != nil {
		return Name(0), err
	}
	if err = m.shufflePass(out1, melbourneTc, melbourneTd, out2); err != nil {
		return Name(0), err
	}
	if err = temps.delete(melbourneTc); err != nil {
		return Name(0), err
	}
	if err = temps.delete(melbourneTd); err != nil {
		return Name(0), err
	}
	if err = temps.delete(out1); err != nil {
		return Name(0), err
	}
	temps.release(out2)

	return out2, nil
}

func (m *Melbourne) shufflePass(i, t1, t2, o Name) error {
	if err := m.distributionPhase1(i, t1); err != nil {
		return err
	}
	if err := m.distributionPhase2(t1, t2); err != nil {
		return err
	}
	return m.cleanupPhase(t2, o)
}

// distributionPhase1 streams I one bucket at a time, grouping real elements
// by destination chunk, and writes each chunk's bin into T1 interleaved
// across num_buckets blocks of max_load slots.
func (m *Melbourne) distributionPhase1(i, t1 Name) error {
	maxLoad := m.p1 * m.numChunks
	revBin := make([][]record.Element, m.numChunks)

	idx := uint32(0)
	for id := uint32(0); id < m.numBuckets; id++ {
		rng := m.bucketWidth
		if idx+m.bucketWidth >= m.n {
			rng = m.n - idx
		}
		for k := uint32(0); k < rng; k++ {
			e, err := m.svc.Get(i, idx+k)
			if err != nil {
				return err
			}
			cid := m.oracle.Pi(e.Key) / m.chunkWidth
			revBin[cid] = append(revBin[cid], e)
		}

		offset := id * maxLoad
		blockSize := m.numBuckets * maxLoad
		for c := uint32(0); c < m.numChunks; c++ {
			if uint32(len(revBin[c])) > maxLoad {
				logger.WithFields(logrus.Fields{"phase": 1, "chunk": c, "count": len(revBin[c]), "maxLoad": maxLoad}).
					Error("orp: melbourne bin overload")
				return ErrBinOverload
			}
			if err := m.putBin(t1, offset, revBin[c], maxLoad); err != nil {
				return err
			}
			offset += blockSize
			revBin[c] = revBin[c][:0]
		}
		idx += m.bucketWidth
	}
	return nil
}

// distributionPhase2 processes T1 chunk by chunk, in sub-segments of
// num_bins bins, sorting real elements into their destination bucket within
// the chunk and writing them to T2 at a stride of max_load2 interleaved by
// sub-segment.
func (m *Melbourne) distributionPhase2(t1, t2 Name) error {
	maxLoad1 := m.p1 * m.numChunks
	maxLoad2 := m.p2 * m.numChunks
	revBin := make([][]record.Element, m.bucketsPerChunk)

	chunkCard := m.numBuckets * maxLoad1
	numBins := uint32(bitutil.CeilDiv(uint64(m.numBuckets), uint64(m.bucketsPerChunk)))

	for cid := uint32(0); cid < m.numChunks; cid++ {
		offsetBins := uint32(0)
		for j := uint32(0); j < m.bucketsPerChunk; j++ {
			rng := numBins
			if offsetBins+numBins >= m.numBuckets {
				rng = m.numBuckets - offsetBins
			}
			rng *= maxLoad1

			base := cid*chunkCard + offsetBins*maxLoad1
			for k := uint32(0); k < rng; k++ {
				e, err := m.svc.Get(t1, base+k)
				if err != nil {
					return err
				}
				if e.IsDummy() {
					continue
				}
				bid := (m.oracle.Pi(e.Key) / m.bucketWidth) % m.bucketsPerChunk
				revBin[bid] = append(revBin[bid], e)
			}

			offset := cid*maxLoad2*m.bucketsPerChunk*m.bucketsPerChunk + j*maxLoad2
			for bid := uint32(0); bid < m.bucketsPerChunk; bid++ {
				if uint32(len(revBin[bid])) > maxLoad2 {
					logger.WithFields(logrus.Fields{"phase": 2, "bucket": bid, "count": len(revBin[bid]), "maxLoad": maxLoad2}).
						Error("orp: melbourne bin overload")
					return ErrBinOverload
				}
				if err := m.putBin(t2, offset, revBin[bid], maxLoad2); err != nil {
					return err
				}
				offset += maxLoad2 * m.bucketsPerChunk
				revBin[bid] = revBin[bid][:0]
			}
			offsetBins += numBins
		}
	}
	return nil
}

// cleanupPhase reads each of the num_buckets buckets from T2, drops
// dummies, sorts the survivors by π(key), and writes them into O.
func (m *Melbourne) cleanupPhase(t2, o Name) error {
	maxLoad := m.p2 * m.numChunks
	t2BucketSize := m.bucketsPerChunk * maxLoad

	offset := uint32(0)
	for id := uint32(0); id < m.numBuckets; id++ {
		var catchment []record.Element
		base := id * t2BucketSize
		for k := uint32(0); k < t2BucketSize; k++ {
			e, err := m.svc.Get(t2, base+k)
			if err != nil {
				return err
			}
			if e.IsDummy() {
				continue
			}
			e.Aux = m.oracle.Pi(e.Key)
			catchment = append(catchment, e)
		}
		sort.Slice(catchment, func(a, b int) bool { return catchment[a].Aux < catchment[b].Aux })
		if err := m.putBucket(o, offset, catchment); err != nil {
			return err
		}
		offset += m.bucketWidth
	}
	return nil
}

func (m *Melbourne) putBin(t Name, idx uint32, bin []record.Element, maxLoad uint32) error {
	for k, e := range bin {
		if err := m.svc.Put(t, idx+uint32(k), e); err != nil {
			return err
		}
	}
	for k := uint32(len(bin)); k < maxLoad; k++ {
		if err := m.svc.Put(t, idx+k, record.NewDummy()); err != nil {
			return err
		}
	}
	return nil
}

// putBucket writes bucket's elements (with aux cleared) starting at offset;
// the last bucket in a row may be shorter than bucket_width.
func (m *Melbourne) putBucket(o Name, offset uint32, bucket []record.Element) error {
	rng := m.bucketWidth
	if offset+m.bucketWidth >= m.n {
		rng = m.n - offset
	}
	for k := uint32(0); k < rng; k++ {
		e := bucket[k]
		e.ClearAux()
		if err := m.svc.Put(o, offset+k, e); err != nil {
			return err
		}
	}
	return nil
}

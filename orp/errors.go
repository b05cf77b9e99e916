package orp

import "errors"

var (
	// ErrInvalidLength is returned by every algorithm constructor when n is
	// too small for the algorithm (zero, or below 2 for Waksman), and by the
	// Bucket and Melbourne constructors when Z is zero or odd or p1/p2 is
	// zero.
	ErrInvalidLength = errors.New("orp: invalid element count")

	// ErrNotPowerOfTwo is returned by Bitonic ORP when n is not a power of
	// two; spec.md §4.4 leaves padding to the caller rather than doing it
	// implicitly.
	ErrNotPowerOfTwo = errors.New("orp: n must be a power of two")

	// ErrBucketOverflow is returned by Bucket ORP when an output bucket
	// would need to hold more real elements than its capacity Z. The
	// reference implementation aborts the process here; this port turns it
	// into an ordinary error per the "error-as-result" design note.
	ErrBucketOverflow = errors.New("orp: bucket overflow, raise Z or shrink input")

	// ErrBinOverload is returned by Melbourne Shuffle when a distribution
	// bin would need to hold more than max_load real elements; a bin holding
	// exactly max_load is legal.
	ErrBinOverload = errors.New("orp: bin overload, raise p1/p2")
)

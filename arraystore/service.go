// Package arraystore implements the External Array Service: named,
// length-bounded arrays of fixed-size records that every ORP algorithm
// treats as its only channel to durable storage (spec.md §4.1).
//
// Two implementations share the Service interface, mirroring the split the
// teacher's massifs/storage package draws between a Reader contract and its
// concrete backends: MemoryService is the in-process reference used by
// every test and benchmark, and BlobService is a durable Azure Blob Storage
// backend exercising the same contract against real object storage.
package arraystore

import "github.com/wCloudRain/orp/record"

// Name identifies an array. Caller-chosen names are small integers;
// temporary arrays created by an algorithm during a permute use names at
// or above ReservedBase (spec.md §3, §6).
type Name uint32

// ReservedBase is the first name reserved for algorithm-internal temporary
// arrays. Caller-supplied names must stay below it.
const ReservedBase Name = 1 << 28

// Service is the storage tier every ORP algorithm speaks to. All operations
// are synchronous; there is no concurrency contract (spec.md §5) and no
// cancellation protocol.
type Service interface {
	// Create allocates a new array of the given length. Fails if name
	// already exists.
	Create(name Name, length uint32) error

	// Get returns a freshly owned copy of the element at (name, index) and
	// counts one I/O operation. Reading a slot not yet written in the
	// current pass returns the zero Element; callers are responsible for
	// never doing so (spec.md §3).
	Get(name Name, index uint32) (record.Element, error)

	// Put stores e at (name, index), consuming it, and counts one I/O
	// operation.
	Put(name Name, index uint32, e record.Element) error

	// Check reports whether index is within bounds of an existing array
	// named name. No I/O is counted.
	Check(name Name, index uint32) bool

	// Delete releases the array. Deleting a nonexistent array is an error.
	Delete(name Name) error

	// Length returns the declared length of an existing array.
	Length(name Name) (uint32, error)

	// ResetIO zeroes the I/O counter.
	ResetIO()

	// IOCount returns the number of Get/Put calls observed since the last
	// ResetIO (or since construction).
	IOCount() uint64
}

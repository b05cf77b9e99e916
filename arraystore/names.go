package arraystore

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// Allocator hands out reserved Names for algorithm-internal temporary
// arrays. Every Allocator is namespaced with a random offset derived from a
// uuid, the way massifs/storage/prefixeduuid.go namespaces a log's storage
// path with a uuid: two independent Allocators sharing one Service (for
// instance two benchmark iterations both backed by the same BlobService
// container) get disjoint reserved ranges, so a slow cleanup in one run
// cannot collide with a fresh Create in another.
type Allocator struct {
	mu   sync.Mutex
	next Name
}

// fixedReservedNames is the span at the bottom of the reserved range
// reserved for algorithms that use literal offsets from a base name rather
// than the Allocator (Melbourne's Ta/Tb/Tc/Td, spec.md §6) — kept clear so
// an Allocator-issued name can never collide with one of them.
const fixedReservedNames = 16

// NewAllocator returns an Allocator whose reserved range starts at a
// uuid-derived offset at or above ReservedBase+fixedReservedNames.
func NewAllocator() *Allocator {
	id := uuid.New()
	offset := Name(binary.BigEndian.Uint32(id[:4])&0x0FFFFFFF) + fixedReservedNames
	return &Allocator{next: ReservedBase + offset}
}

// Reserve returns n fresh, never-before-returned names from this
// Allocator's range.
func (a *Allocator) Reserve(n int) []Name {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]Name, n)
	for i := range names {
		names[i] = a.next
		a.next++
	}
	return names
}

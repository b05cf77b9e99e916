package arraystore

import (
	"sync/atomic"

	"github.com/wCloudRain/orp/record"
)

// MemoryService is the in-process reference implementation of Service: one
// map of named slices, with an I/O counter for the benchmark hooks in
// spec.md §4.1. It enforces single-writer/single-reader only in the sense
// that spec.md requires — it does not serialize concurrent callers, it just
// doesn't need to, since none are expected (spec.md §5).
type MemoryService struct {
	arrays map[Name][]record.Element
	io     atomic.Uint64
}

// NewMemoryService returns an empty MemoryService.
func NewMemoryService() *MemoryService {
	return &MemoryService{arrays: make(map[Name][]record.Element)}
}

func (s *MemoryService) Create(name Name, length uint32) error {
	if _, exists := s.arrays[name]; exists {
		return ErrArrayExists
	}
	s.arrays[name] = make([]record.Element, length)
	return nil
}

func (s *MemoryService) Get(name Name, index uint32) (record.Element, error) {
	arr, exists := s.arrays[name]
	if !exists {
		return record.Element{}, ErrArrayNotFound
	}
	if index >= uint32(len(arr)) {
		return record.Element{}, ErrOutOfBounds
	}
	s.io.Add(1)
	return arr[index], nil
}

func (s *MemoryService) Put(name Name, index uint32, e record.Element) error {
	arr, exists := s.arrays[name]
	if !exists {
		return ErrArrayNotFound
	}
	if index >= uint32(len(arr)) {
		return ErrOutOfBounds
	}
	s.io.Add(1)
	arr[index] = e
	return nil
}

func (s *MemoryService) Check(name Name, index uint32) bool {
	arr, exists := s.arrays[name]
	if !exists {
		return false
	}
	return index < uint32(len(arr))
}

func (s *MemoryService) Delete(name Name) error {
	if _, exists := s.arrays[name]; !exists {
		return ErrArrayNotFound
	}
	delete(s.arrays, name)
	return nil
}

func (s *MemoryService) Length(name Name) (uint32, error) {
	arr, exists := s.arrays[name]
	if !exists {
		return 0, ErrArrayNotFound
	}
	return uint32(len(arr)), nil
}

func (s *MemoryService) ResetIO() {
	s.io.Store(0)
}

func (s *MemoryService) IOCount() uint64 {
	return s.io.Load()
}

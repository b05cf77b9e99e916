// Package record defines the element type shuffled by every ORP algorithm
// and its wire encoding for external storage.
package record

// DummyKey is the single sentinel reserved across every algorithm to mark a
// padding element. spec.md's reference implementation splits between
// INT32_MAX and UINT32_MAX depending on code path (open question 1); this
// codebase picks one and audits every comparison against it.
const DummyKey uint32 = 0xFFFFFFFF

// ValueBytes is the fixed payload width carried by every element. 800 bits,
// per spec.md §3.
const ValueBytes = 800 / 8

// Element is a single logical record: a caller key, a scratch field used by
// Waksman's switch-setting stack and Melbourne's sort key, and an opaque
// fixed-width payload the client never inspects.
type Element struct {
	Key   uint32
	Aux   uint32
	Value [ValueBytes]byte
}

// NewDummy returns a padding element: dummy key, zero aux, zero payload.
func NewDummy() Element {
	return Element{Key: DummyKey}
}

// IsDummy reports whether e carries the reserved sentinel key.
func (e Element) IsDummy() bool {
	return e.Key == DummyKey
}

// ClearAux zeroes the scratch field. Every output element handed back to a
// caller must satisfy this (spec.md §3 invariant "aux = 0 on all output
// elements").
func (e *Element) ClearAux() {
	e.Aux = 0
}

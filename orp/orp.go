package orp

import "github.com/wCloudRain/orp/arraystore"

// Name is an external array handle, as defined by package arraystore.
type Name = arraystore.Name

// ORP is the contract every permutation algorithm implements (spec.md
// §4.3/§6): permute the n elements at inputName and return the name of an
// array holding them reordered by π — a fresh array, or inputName itself for
// an in-place algorithm such as Bitonic. The returned array is the only
// one the call leaves behind among those it created; every temporary is
// deleted before return, on every exit path including errors.
type ORP interface {
	// Permute takes inputName (an array of n distinct real elements), which
	// it either deletes or permutes in place and returns, and returns the
	// name of an array of length n holding the same elements at
	// their π-permuted positions. No dummies remain in the output and every
	// output element's aux field is zero.
	Permute(inputName Name) (Name, error)

	// GetPi returns π(key).
	GetPi(key uint32) uint32

	// GetInvPi returns π⁻¹(index).
	GetInvPi(index uint32) uint32
}

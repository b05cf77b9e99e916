package arraystore

import "errors"

var (
	// ErrArrayExists is returned by Create when name is already allocated.
	ErrArrayExists = errors.New("arraystore: array already exists")

	// ErrArrayNotFound is returned by Get, Put, Delete, and Length when
	// name has no allocated array.
	ErrArrayNotFound = errors.New("arraystore: array not found")

	// ErrOutOfBounds is returned by Get and Put when index is not less than
	// the array's declared length.
	ErrOutOfBounds = errors.New("arraystore: index out of bounds")
)

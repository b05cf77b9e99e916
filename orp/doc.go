// Package orp implements oblivious random permutation of records held in an
// external array service (see package arraystore), the way a memory-bound
// client would shuffle a dataset that lives on an untrusted server: every
// operation against the service leaks only its name and index, never the
// content, and the sequence of operations must not depend on the data.
//
// Four algorithms share one contract (ORP): Bitonic, Bucket, Melbourne, and
// Waksman, trading client memory for I/O rounds in different ways. A
// PermutationOracle supplies the target permutation π each algorithm
// realizes. Each constructor builds its own oracle from the seed it is
// given, so the same seed yields the same π; there is no exported way to
// hand an algorithm a specific π.
package orp

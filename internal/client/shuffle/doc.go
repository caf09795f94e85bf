// Package shuffle arranges the browse catalog reproducibly.
//
// A persisted 32-bit seed drives a small deterministic generator. The same
// seed, catalog and poster pool always give the same arrangement on a
// device. The generator is not cryptographically secure; it only has to be
// stable.
package shuffle

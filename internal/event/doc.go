// Package event provides the canonical stocking event model and its
// identity scheme.
//
// Each event carries a deterministic SHA1-based ID derived from a
// fingerprint of its defining fields (water, county, species, quantity,
// length, date), so re-extracting the same real-world stocking in a later
// poll cycle yields the same ID and ingestion stays idempotent. The
// normalizer in this package is where all "is this field usable" decisions
// live; extractors stay simple and total.
package event

// Package dataset implements the funding-record normalizer: it reads a raw
// delimited table with an unreliable layout, extracts a fixed set of semantic
// fields through an explicit column-selection plan, repairs or discards
// malformed values and emits an immutable, typed record set.
//
// The transformation is pure and deterministic. Rows that cannot be made
// valid are dropped silently; only configuration problems (a plan that does
// not resolve against the source) abort the whole run.
package dataset

// Package heal repairs spacing and encoding corruption in extracted text.
//
// The [Healer] runs a language-aware rule set to a fixpoint: single-letter
// runs collapse, detached Turkish particles and suffixes reattach to their
// stems, hyphen-wrapped words rejoin, and remaining unrecognized tokens are
// corrected against a frequency [Dictionary] within a bounded edit
// distance. English input gets only the conservative subset of merges.
// Healing is idempotent: applying it to already-healed text changes
// nothing.
package heal

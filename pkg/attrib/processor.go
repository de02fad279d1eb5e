// Package attrib implements the validated-collection abstraction shared by
// all channel providers: bounded, deduplicated, normalized lists of
// recipients, tags, attachments, media files, and per-recipient data.
//
// Every variant follows the same lifecycle: constructed fresh per send from
// caller options merged with channel defaults, then read-only. In strict
// mode a missing or invalid required value fails construction; in
// non-strict mode construction succeeds with Valid() == false and empty
// data.
package attrib

// Processor is the common contract of every validated collection.
type Processor interface {
	// Keyword identifies the attribute in config and error messages.
	Keyword() string
	// Required reports whether the attribute must be non-empty.
	Required() bool
	// Valid reports whether the processed data satisfies the contract.
	// It is false only when a required collection came up empty in
	// non-strict mode.
	Valid() bool
	// Len returns the number of processed items.
	Len() int
}

// base carries the bookkeeping shared by all processors.
type base struct {
	keyword  string
	required bool
	valid    bool
	minNum   int
	maxNum   int
}

// Keyword identifies the attribute in config and error messages.
func (b base) Keyword() string { return b.keyword }

// Required reports whether the attribute must be non-empty.
func (b base) Required() bool { return b.required }

// Valid reports whether the processed data satisfies the contract.
func (b base) Valid() bool { return b.valid }

// clampMax keeps maxNum >= minNum.
func clampMax(minNum, maxNum int) int {
	if maxNum < minNum {
		return minNum
	}
	return maxNum
}

// capItems truncates a slice to at most maxNum items.
func capItems[T any](items []T, maxNum int) []T {
	if maxNum > 0 && len(items) > maxNum {
		return items[:maxNum]
	}
	return items
}

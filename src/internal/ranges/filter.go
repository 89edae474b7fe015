package ranges

import "github.com/ipmerge/ipmerge/src/internal/log"

// InvalidPolicy decides what happens to records that are not IP addresses.
type InvalidPolicy int

const (
	// KeepInvalid passes malformed records through; they cannot be inside a range.
	KeepInvalid InvalidPolicy = iota
	// DropInvalid removes malformed records.
	DropInvalid
)

// FilterResult is the outcome of Filter.
type FilterResult struct {
	Kept     []string
	Excluded int
	Invalid  int
}

// Filter returns the records not contained in exclude, preserving their order.
// Records that fail ParseAddress are kept or dropped according to policy and are
// counted in Invalid either way. Filtering an already filtered list is a no-op.
func Filter(records []string, exclude *Set, policy InvalidPolicy) FilterResult {
	result := FilterResult{Kept: make([]string, 0, len(records))}

	for _, record := range records {
		addr, ok := ParseAddress(record)
		if !ok {
			result.Invalid++
			if policy == DropInvalid {
				log.Debugf("Dropping malformed address %q", record)
				continue
			}
			result.Kept = append(result.Kept, record)
			continue
		}

		if exclude.Contains(addr) {
			result.Excluded++
			continue
		}
		result.Kept = append(result.Kept, record)
	}

	return result
}

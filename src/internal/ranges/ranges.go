package ranges

import (
	"fmt"
	"net/netip"
	"strings"

	"go4.org/netipx"

	"github.com/ipmerge/ipmerge/src/internal/errors"
)

// Range is a contiguous block of addresses given in network/prefix-length notation.
type Range struct {
	prefix netip.Prefix
}

// ParseRange parses "network/prefix-length". Host bits in the network part are
// ignored, so "104.16.5.5/13" and "104.16.0.0/13" describe the same range.
func ParseRange(cidr string) (Range, error) {
	prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
	if err != nil {
		return Range{}, errors.NewFilterError(fmt.Sprintf("invalid range %q", cidr), err)
	}
	return Range{prefix: prefix.Masked()}, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(cidr string) Range {
	r, err := ParseRange(cidr)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether addr shares the range's leading prefix-length bits.
func (r Range) Contains(addr netip.Addr) bool {
	return r.prefix.Contains(addr.Unmap())
}

func (r Range) String() string {
	return r.prefix.String()
}

// Set is a union of ranges with a single membership test.
type Set struct {
	ips    *netipx.IPSet
	ranges []Range
}

// NewSet builds a Set from ranges. Overlapping and adjacent ranges are merged.
func NewSet(ranges ...Range) (*Set, error) {
	var b netipx.IPSetBuilder
	for _, r := range ranges {
		b.AddPrefix(r.prefix)
	}
	ips, err := b.IPSet()
	if err != nil {
		return nil, errors.NewFilterError("failed to build range set", err)
	}
	return &Set{ips: ips, ranges: append([]Range(nil), ranges...)}, nil
}

// ParseSet parses every CIDR string and builds a Set from them.
func ParseSet(cidrs []string) (*Set, error) {
	ranges := make([]Range, 0, len(cidrs))
	for _, cidr := range cidrs {
		r, err := ParseRange(cidr)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return NewSet(ranges...)
}

// Contains reports whether addr falls inside any range of the set.
func (s *Set) Contains(addr netip.Addr) bool {
	if s == nil || s.ips == nil {
		return false
	}
	return s.ips.Contains(addr.Unmap())
}

// Len returns the number of ranges the set was built from.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ranges)
}

// Prefixes returns the minimal list of prefixes covering the set.
func (s *Set) Prefixes() []netip.Prefix {
	if s == nil || s.ips == nil {
		return nil
	}
	return s.ips.Prefixes()
}

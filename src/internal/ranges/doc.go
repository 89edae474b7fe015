// Package ranges implements address range membership for the exclusion filter.
//
// Range wraps a single network/prefix-length block and Set is the union of
// several blocks, built with go4.org/netipx. Both expose one predicate,
// Contains, so membership can be tested without any string handling. Filter
// applies a Set to raw address records: records are parsed strictly with
// net/netip, and records that do not parse are kept or dropped according to
// an explicit InvalidPolicy.
package ranges

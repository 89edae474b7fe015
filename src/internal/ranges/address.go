package ranges

import (
	"net/netip"
	"strings"
)

// ParseAddress parses an address record. Besides a bare IPv4 or IPv6 address it
// accepts "ip:port" and "[ipv6]:port" records, returning the address part.
// Leading zeros in IPv4 octets are rejected, so "1.2.3.04" is malformed.
func ParseAddress(record string) (netip.Addr, bool) {
	record = strings.TrimSpace(record)
	if addr, err := netip.ParseAddr(record); err == nil {
		return addr.Unmap(), true
	}
	if addrPort, err := netip.ParseAddrPort(record); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

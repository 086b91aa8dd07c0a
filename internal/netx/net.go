// Package netx holds network address helpers shared by both transports.
package netx

import (
	"net"
	"strings"
)

// Host strips the port from addr. IPv6 brackets are removed. Values that
// are not host:port pairs are returned unchanged.
func Host(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
}

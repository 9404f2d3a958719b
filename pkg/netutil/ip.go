package netutil

import (
	"net"
	"net/http"
	"strings"
)

const (
	clientIPHeader = "x-forwarded-for"
)

// GetClientIP gets the client's IP address, preferring the first entry of
// the x-forwarded-for header set by the load balancer.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(clientIPHeader); len(forwarded) > 0 {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if len(first) > 0 {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

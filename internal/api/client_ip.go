package api

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver resolves the client IP address for rate limiting and
// logging. Forwarding headers are honoured only when the immediate peer is a
// trusted proxy.
type ClientIPResolver struct {
	trustedProxies []netip.Prefix
}

func NewClientIPResolver(trustedProxyCIDRs []string) (*ClientIPResolver, error) {
	resolver := &ClientIPResolver{}

	for _, raw := range trustedProxyCIDRs {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}

		if addr, err := netip.ParseAddr(value); err == nil {
			addr = addr.Unmap()
			resolver.trustedProxies = append(resolver.trustedProxies, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(value)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy CIDR %q: %w", value, err)
		}
		resolver.trustedProxies = append(resolver.trustedProxies, prefix.Masked())
	}

	return resolver, nil
}

func (r *ClientIPResolver) Resolve(req *http.Request) string {
	peer, ok := parseRemoteAddr(req.RemoteAddr)
	if !ok {
		return "unknown"
	}

	if r.isTrustedProxy(peer) {
		if forwarded, ok := parseForwardedFor(req.Header.Get("X-Forwarded-For")); ok {
			return forwarded.String()
		}
		if realIP, ok := parseAddr(req.Header.Get("X-Real-IP")); ok {
			return realIP.String()
		}
	}

	return peer.String()
}

func (r *ClientIPResolver) isTrustedProxy(addr netip.Addr) bool {
	for _, prefix := range r.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseForwardedFor returns the left-most parseable address.
func parseForwardedFor(header string) (netip.Addr, bool) {
	for _, part := range strings.Split(header, ",") {
		if addr, ok := parseAddr(part); ok {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

func parseRemoteAddr(remoteAddr string) (netip.Addr, bool) {
	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	return parseAddr(remoteAddr)
}

func parseAddr(value string) (netip.Addr, bool) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return netip.Addr{}, false
	}

	if addr, err := netip.ParseAddr(strings.Trim(value, "[]")); err == nil {
		return addr.Unmap(), true
	}
	if addrPort, err := netip.ParseAddrPort(value); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

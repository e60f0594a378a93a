package api

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyList holds the networks whose forwarding headers are believed.
type proxyList []netip.Prefix

func parseProxies(entries []string, logger *slog.Logger) proxyList {
	var out proxyList
	for _, e := range entries {
		if p, err := netip.ParsePrefix(e); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		logger.Warn("ignoring invalid trusted proxy", "entry", e)
	}
	return out
}

func (p proxyList) contains(a netip.Addr) bool {
	a = a.Unmap()
	for _, prefix := range p {
		if prefix.Contains(a) {
			return true
		}
	}
	return false
}

// realIP rewrites RemoteAddr to the forwarded client address, but only for
// requests arriving from a trusted proxy. X-Forwarded-For is walked right to
// left and the first hop that is not itself a trusted proxy wins.
func (s *Server) realIP(next http.Handler) http.Handler {
	if len(s.proxies) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, port, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		peer, err := netip.ParseAddr(host)
		if err != nil || !s.proxies.contains(peer) {
			next.ServeHTTP(w, r)
			return
		}

		if client, ok := s.forwardedClient(r); ok {
			r.RemoteAddr = net.JoinHostPort(client.String(), port)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) forwardedClient(r *http.Request) (netip.Addr, bool) {
	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(v, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		a, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !s.proxies.contains(a) {
			return a.Unmap(), true
		}
	}
	if a, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

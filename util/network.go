package util

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// ResolveHost returns the address a client should dial for host.  IPv4
// results are preferred, and the first one wins.  With noDNS only
// numeric IPs are accepted.
func ResolveHost(ctx context.Context, host string, noDNS bool) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	if noDNS {
		return "", fmt.Errorf("cannot parse %q as an IP address (DNS disabled)", host)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", fmt.Errorf("DNS lookup for %q: %w", host, err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("DNS lookup for %q: no addresses", host)
	}
	for _, ip := range ips {
		if v4 := ip.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return ips[0].IP.String(), nil
}

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// FindFreePort returns an available TCP port on 127.0.0.1.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

package ddns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

// DefaultDNSName is the name that OpenDNS answers with the querying client's address.
const DefaultDNSName = "myip.opendns.com"

// DNSResolver constructs a resolver that asks a nameserver which echoes the client address,
// e.g. DNSResolver("resolver1.opendns.com", DefaultDNSName).
// The server may include a port; 53 is used otherwise.
// The first A record in the answer section is returned.
func DNSResolver(server, name string) Resolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	if name == "" {
		name = DefaultDNSName
	}
	return &dnsResolver{server: server, name: dns.Fqdn(name)}
}

type dnsResolver struct {
	server  string
	name    string
	timeout time.Duration
}

// Resolve implements ddns.Resolver.
func (r *dnsResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := &dns.Client{Timeout: timeout}

	m := new(dns.Msg)
	m.SetQuestion(r.name, dns.TypeA)
	in, _, err := c.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("dns query to %s failed: %w", r.server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("dns query to %s returned %s", r.server, dns.RcodeToString[in.Rcode])
	}
	for _, rr := range in.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}
		if ip, ok := netip.AddrFromSlice(a.A); ok {
			return ip.Unmap(), nil
		}
	}
	return netip.Addr{}, errors.New("dns answer contained no A record")
}

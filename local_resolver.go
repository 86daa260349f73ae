package ddns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceResolver constructs a resolver that returns the first IPv4 address bound to the named interface.
// Loopback and link-local addresses are skipped.
// It suits hosts whose public address is assigned directly to a local interface.
func InterfaceResolver(iface string) Resolver {
	return interfaceResolver{name: iface, addrs: interfaceAddrs}
}

type interfaceResolver struct {
	name  string
	addrs func(name string) ([]net.Addr, error)
}

func interfaceAddrs(name string) ([]net.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("error getting interface %s by name: %w", name, err)
	}
	a, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("error looking up addresses for interface %s: %w", name, err)
	}
	return a, nil
}

func (r interfaceResolver) Resolve(ctx context.Context) (netip.Addr, error) {
	adds, err := r.addrs(r.name)
	if err != nil {
		return netip.Addr{}, err
	}
	// addr: ip+net:192.168.86.253/24
	// addr: ip+net:fe80::2cc9:801b:3551:9a43/64
	var parseErrors []error
	for _, addr := range adds {
		ip, err := netip.ParsePrefix(addr.String())
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("error parsing local ip %s for interface %s: %s", addr.String(), r.name, err))
			continue
		}
		a := ip.Addr().Unmap()
		if !a.Is4() || a.IsLoopback() || a.IsLinkLocalUnicast() {
			continue
		}
		return a, nil
	}
	parseErrors = append(parseErrors, fmt.Errorf("interface %s has no usable IPv4 address", r.name))
	return netip.Addr{}, errors.Join(parseErrors...)
}

package ddns

import (
	"context"
	"net/netip"
)

// Resolver looks up the address that DNS records should point to.
type Resolver interface {
	Resolve(context.Context) (netip.Addr, error)
}

// ResolverFunc adapts an ordinary function to the Resolver interface.
type ResolverFunc func(context.Context) (netip.Addr, error)

// Resolve implements ddns.Resolver.
func (f ResolverFunc) Resolve(ctx context.Context) (netip.Addr, error) {
	return f(ctx)
}

// Provider reads and writes the A records of a single DNS zone.
//
// FindRecord returns the first A record named domain, with found set to false when there is none.
// Implementations filter by exact name and type; only the first match is ever used.
type Provider interface {
	FindRecord(ctx context.Context, domain string) (record Record, found bool, err error)
	UpdateRecord(ctx context.Context, id string, record Record) error
	CreateRecord(ctx context.Context, record Record) error
}

// Record is a DNS record as seen by a Provider.
// The zero values of TTL, Proxied and Comment leave the provider's defaults in place.
type Record struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl,omitempty"`
	Proxied *bool  `json:"proxied,omitempty"`
	Comment string `json:"comment,omitempty"`
}

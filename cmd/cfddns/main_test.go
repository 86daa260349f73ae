package main

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dynip/ddns/internal/config"
)

func TestNewResolverPrecedence(t *testing.T) {
	cfg := config.Config{
		PublicIP:      "198.51.100.1",
		IPInterface:   "eth0",
		IPDNSServer:   "127.0.0.1",
		IPServiceURLs: []string{"https://api.ipify.org"},
	}
	r, err := newResolver(cfg)
	if err != nil {
		t.Fatalf("newResolver failed: %s", err)
	}
	ip, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve failed: %s", err)
	}
	if expected := netip.MustParseAddr("198.51.100.1"); ip != expected {
		t.Fatalf("Expected the fixed address %q; got %q", expected, ip)
	}
}

func TestNewResolverRejectsBadInput(t *testing.T) {
	if _, err := newResolver(config.Config{PublicIP: "nope"}); err == nil {
		t.Fatalf("Expected error for invalid PUBLIC_IP; got err == nil")
	}
	if _, err := newResolver(config.Config{}); err == nil {
		t.Fatalf("Expected error for an empty service list; got err == nil")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Config{
		Token:          "token",
		ZoneID:         "zone",
		Domains:        config.DomainList{"a.example.com"},
		Interval:       900,
		RequestTimeout: time.Second,
		// PUBLIC_IP avoids a network lookup; the cancelled context stops the loop before any DNS call
		PublicIP: "198.51.100.1",
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, cfg, logr.Discard(), prometheus.NewRegistry()); err != nil {
		t.Fatalf("Expected a clean exit after cancellation; got %s", err)
	}
}

func TestNewLogger(t *testing.T) {
	logger, flush, err := newLogger(true)
	if err != nil {
		t.Fatalf("newLogger failed: %s", err)
	}
	defer flush()
	if !logger.V(1).Enabled() {
		t.Fatalf("Expected debug logging to be enabled in verbose mode")
	}
	logger, _, _ = newLogger(false)
	if logger.V(1).Enabled() {
		t.Fatalf("Expected debug logging to be disabled by default")
	}
}

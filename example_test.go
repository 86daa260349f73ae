package ddns_test

import (
	"context"
	"log"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/logr/funcr"

	"github.com/dynip/ddns"
)

func ExampleNew() {
	c, err := ddns.New(
		[]string{"home.example.com", "vpn.example.com"},
		ddns.UsingCloudflare(os.Getenv("CF_TOKEN"), os.Getenv("ZONE_ID")),
		ddns.WithLogger(funcr.New(func(prefix, args string) { log.Println(prefix, args) }, funcr.Options{})),
		ddns.UsingHTTPClient(&http.Client{Timeout: 10 * time.Second}),
	)
	if err != nil {
		log.Fatalf("error creating ddns client: %s", err)
	}
	// run once:
	err = c.RunDDNS(context.Background())
	if err != nil {
		log.Fatalf("ddns update failed: %s", err)
	}
}

func ExampleWebResolver() {
	// I'm not vouching for these services, but they do return the IP of the client connection.
	// If possible, run your own and provide the URL here instead.
	r, err := ddns.WebResolver(
		"https://api.ipify.org",
		"https://ipv4.icanhazip.com/", // only asked when the first service fails
	)
	if err != nil {
		log.Fatalf("error creating resolver: %s", err)
	}
	c, err := ddns.New([]string{"home.example.com"},
		ddns.UsingCloudflare(os.Getenv("CF_TOKEN"), os.Getenv("ZONE_ID")),
		ddns.UsingResolver(r),
	)
	if err != nil {
		log.Fatalf("error creating ddns client: %s", err)
	}
	if err := c.RunDDNS(context.Background()); err != nil {
		log.Fatalf("ddns update failed: %s", err)
	}
}

func ExampleDNSResolver() {
	c, err := ddns.New([]string{"home.example.com"},
		ddns.UsingCloudflare(os.Getenv("CF_TOKEN"), os.Getenv("ZONE_ID")),
		ddns.UsingResolver(ddns.DNSResolver("resolver1.opendns.com", ddns.DefaultDNSName)),
	)
	if err != nil {
		log.Fatalf("error creating ddns client: %s", err)
	}
	if err := c.RunDDNS(context.Background()); err != nil {
		log.Fatalf("ddns update failed: %s", err)
	}
}

func ExampleClient_Run() {
	c, err := ddns.New([]string{"home.example.com"},
		ddns.UsingCloudflare(os.Getenv("CF_TOKEN"), os.Getenv("ZONE_ID")),
		ddns.WithInterval(5*time.Minute),
	)
	if err != nil {
		log.Fatalf("error creating ddns client: %s", err)
	}

	// check every 5 minutes until interrupted:
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_ = c.Run(ctx)
}

func ExampleResolverFunc() {
	fn := func(ctx context.Context) (netip.Addr, error) {
		select {
		case <-ctx.Done():
			return netip.Addr{}, ctx.Err()
		case <-time.After(100 * time.Millisecond): // simulating some lookup method
			return netip.ParseAddr("10.0.0.10")
		}
	}
	c, err := ddns.New([]string{"home.example.com"},
		ddns.UsingCloudflare(os.Getenv("CF_TOKEN"), os.Getenv("ZONE_ID")),
		ddns.UsingResolver(ddns.ResolverFunc(fn)),
	)
	if err != nil {
		log.Fatalf("error creating ddns client: %s", err)
	}
	if err := c.RunDDNS(context.Background()); err != nil {
		log.Fatalf("ddns update failed: %s", err)
	}
}

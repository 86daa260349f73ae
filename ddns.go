package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// DefaultServiceURL is the IP echo service used when no other resolver is registered.
const DefaultServiceURL = "https://api.ipify.org"

const (
	// DefaultInterval is the pause between the end of one cycle and the start of the next.
	DefaultInterval = 900 * time.Second
	// DefaultRequestTimeout bounds every outbound call made by the client and its dependencies.
	DefaultRequestTimeout = 15 * time.Second
)

// DefaultResolver returns a new resolver that asks DefaultServiceURL for the public IP.
func DefaultResolver() Resolver {
	return &webResolver{serviceURLs: []*url.URL{mustParseURL(DefaultServiceURL)}}
}

// New constructs a Client that manages the A records for domains.
// Domains are reconciled in the order given; duplicates are not removed.
//
// A Provider must be registered with UsingCloudflare or UsingProvider.
// The resolver defaults to DefaultResolver(), the interval to DefaultInterval,
// and log output is discarded unless WithLogger is supplied.
func New(domains []string, options ...clientOption) (*Client, error) {
	if len(domains) == 0 {
		return nil, errors.New("ddns.New: at least one domain is required")
	}
	for i, d := range domains {
		if d == "" {
			return nil, fmt.Errorf("ddns.New: domain %d is empty", i)
		}
	}
	c := &Client{
		domains:  append([]string(nil), domains...),
		interval: DefaultInterval,
		timeout:  DefaultRequestTimeout,
		logger:   logr.Discard(),
		template: Record{Type: "A"},
	}
	for i, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("ddns.New: option %d returned an error: %s", i, err)
		}
	}

	if c.Resolver == nil {
		c.Resolver = DefaultResolver()
	}
	if c.Provider == nil {
		return nil, fmt.Errorf("ddns.New: no DNS provider was registered and there is no default option - use ddns.UsingCloudflare or similar")
	}

	// dependencies may have been registered after WithLogger or UsingHTTPClient
	if err := c.propagate(); err != nil {
		return nil, fmt.Errorf("ddns.New: %w", err)
	}
	return c, nil
}

type clientOption func(*Client) error

// UsingCloudflare registers a Cloudflare provider for the zone identified by zoneID.
//
// The API client never retries on its own; a failed call is retried by the next cycle.
// Extra cloudflare options (such as cloudflare.BaseURL) are applied after the defaults.
func UsingCloudflare(token, zoneID string, opts ...cloudflare.Option) clientOption {
	return func(c *Client) (err error) {
		if c.Provider, err = newCloudflareProvider(token, zoneID, opts...); err != nil {
			return fmt.Errorf("ddns.UsingCloudflare: error creating cloudflare DNS provider: %w", err)
		}
		return nil
	}
}

// UsingProvider registers an arbitrary Provider implementation.
func UsingProvider(p Provider) clientOption {
	return func(c *Client) error {
		if p == nil {
			return errors.New("provider cannot be nil")
		}
		c.Provider = p
		return nil
	}
}

// UsingResolver replaces the resolver. A nil resolver restores the default.
func UsingResolver(resolver Resolver) clientOption {
	return func(c *Client) error {
		c.Resolver = resolver
		return nil
	}
}

// UsingWebResolver is shorthand for UsingResolver(WebResolver(serviceURL...)).
func UsingWebResolver(serviceURL ...string) clientOption {
	return func(c *Client) error {
		r, err := WebResolver(serviceURL...)
		if err != nil {
			return err
		}
		c.Resolver = r
		return nil
	}
}

// UsingHTTPClient sets the HTTP client used by the web resolver and the Cloudflare provider.
func UsingHTTPClient(httpclient *http.Client) clientOption {
	return func(c *Client) error {
		c.httpClient = httpclient
		return nil
	}
}

// WithLogger sets the logger for the client and its dependencies.
func WithLogger(logger logr.Logger) clientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics records cycle and record outcomes in m.
func WithMetrics(m *Metrics) clientOption {
	return func(c *Client) error {
		c.metrics = m
		return nil
	}
}

// WithInterval sets the pause between cycles used by Run.
func WithInterval(interval time.Duration) clientOption {
	return func(c *Client) error {
		if interval <= 0 {
			return fmt.Errorf("interval must be positive; got %s", interval)
		}
		c.interval = interval
		return nil
	}
}

// WithRequestTimeout bounds each resolver and provider call.
func WithRequestTimeout(timeout time.Duration) clientOption {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive; got %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithRecordSettings attaches a TTL, proxied flag and comment to every record the client writes.
// A ttl of 0 or 1 lets the provider choose; a nil proxied leaves the provider default.
func WithRecordSettings(ttl int, proxied *bool, comment string) clientOption {
	return func(c *Client) error {
		if ttl < 0 {
			return fmt.Errorf("ttl cannot be negative; got %d", ttl)
		}
		c.template.TTL = ttl
		c.template.Proxied = proxied
		c.template.Comment = comment
		return nil
	}
}

func (c *Client) propagate() error {
	type setLogger interface {
		SetLogger(logr.Logger)
	}
	type setHTTPClient interface {
		SetHTTPClient(*http.Client)
	}

	switch p := c.Provider.(type) {
	case *cloudflareProvider:
		p.logger = c.logger.WithName("cloudflare")
		if c.httpClient != nil {
			if err := cloudflare.HTTPClient(c.httpClient)(p.api); err != nil {
				return fmt.Errorf("error setting cloudflare HTTP client: %w", err)
			}
		}
	case setLogger:
		p.SetLogger(c.logger)
	}

	switch r := c.Resolver.(type) {
	case *webResolver:
		if c.httpClient != nil {
			r.httpClient = c.httpClient
		}
		if r.timeout == 0 {
			r.timeout = c.timeout
		}
	case *dnsResolver:
		if r.timeout == 0 {
			r.timeout = c.timeout
		}
	case setHTTPClient:
		if c.httpClient != nil {
			r.SetHTTPClient(c.httpClient)
		}
	}
	return nil
}

// Client reconciles a fixed list of domains against the public IP.
// It is built with New and is safe to read from other goroutines (see LastResolved)
// while Run is active, but cycles themselves must not overlap.
type Client struct {
	Resolver
	Provider

	domains    []string
	interval   time.Duration
	timeout    time.Duration
	template   Record
	httpClient *http.Client
	logger     logr.Logger
	metrics    *Metrics

	lastResolved atomic.Int64 // unix nanos of the last successful IP lookup
}

// Domains returns the managed domains in reconciliation order.
func (c *Client) Domains() []string {
	return append([]string(nil), c.domains...)
}

// LastResolved reports when the public IP was last looked up successfully.
// The zero time means no cycle has succeeded yet.
func (c *Client) LastResolved() time.Time {
	n := c.lastResolved.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// RunDDNS runs one cycle.
//
// When the public IP cannot be resolved no DNS calls are made and the returned error wraps ErrIPFetch.
// Otherwise every domain is reconciled in order; failures are logged,
// do not stop the remaining domains, and are joined into the returned error.
func (c *Client) RunDDNS(ctx context.Context) error {
	log := c.logger.WithValues("cycle", uuid.NewString())
	c.metrics.cycleStarted()

	ip, err := c.resolve(ctx)
	if err != nil {
		c.metrics.ipFetchFailed()
		log.Error(err, "skipping updates due to IP fetch failure")
		return err
	}
	c.lastResolved.Store(time.Now().UnixNano())
	c.metrics.ipResolved()
	log.Info("current public IP", "ip", ip.String())

	var errs []error
	for _, domain := range c.domains {
		if _, err := c.reconcile(ctx, log, domain, ip); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run calls RunDDNS, sleeps for the configured interval, and repeats.
// The interval is measured from the end of each cycle.
// Cycle errors are logged by RunDDNS and never stop the loop;
// Run only returns, with ctx.Err(), once ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	c.logger.Info("starting ddns loop", "domains", c.domains, "interval", c.interval.String())
	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("stopping ddns loop")
			return err
		}
		_ = c.RunDDNS(ctx)

		c.logger.V(1).Info("sleeping until next cycle", "interval", c.interval.String())
		timer := time.NewTimer(c.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (c *Client) resolve(ctx context.Context) (netip.Addr, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ip, err := c.Resolve(ctx)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %w", ErrIPFetch, err)
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrIPFetch, ip)
	}
	return ip, nil
}

func mustParseURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Package config loads the daemon's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrMissing is wrapped by every error about a required setting that is absent or empty.
	ErrMissing = errors.New("missing required configuration")
	// ErrInvalid is wrapped by errors about settings that are present but unusable.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is read once at startup and passed by value afterwards.
type Config struct {
	Token     string     `env:"CF_TOKEN"`
	TokenFile string     `env:"CF_TOKEN_FILE"`
	ZoneID    string     `env:"ZONE_ID"`
	Domains   DomainList `env:"DOMAINS"`
	// Interval is in seconds.
	Interval int `env:"INTERVAL" envDefault:"900"`

	IPServiceURLs URLList `env:"IP_SERVICE_URLS" envDefault:"https://api.ipify.org"`
	IPDNSServer   string  `env:"IP_DNS_SERVER"`
	IPDNSName     string  `env:"IP_DNS_NAME" envDefault:"myip.opendns.com"`
	IPInterface   string  `env:"IP_INTERFACE"`
	PublicIP      string  `env:"PUBLIC_IP"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	RecordTTL     int    `env:"RECORD_TTL" envDefault:"1"`
	RecordProxied *bool  `env:"RECORD_PROXIED"`
	RecordComment string `env:"RECORD_COMMENT"`

	MetricsAddr string `env:"METRICS_ADDR"`
	Verbose     bool   `env:"VERBOSE"`
}

// Load reads a .env file from the working directory when one exists,
// then parses and validates the process environment.
// Variables already set in the environment take precedence over the .env file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse builds a Config from environ, or from the process environment when environ is nil,
// reads the token file if no token was given directly, and validates the result.
func Parse(environ map[string]string) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	c.Token = StripQuotes(c.Token)
	c.ZoneID = StripQuotes(c.ZoneID)
	c.TokenFile = StripQuotes(c.TokenFile)

	if c.Token == "" && c.TokenFile != "" {
		key, err := readKey(c.TokenFile)
		if err != nil {
			return c, fmt.Errorf("%w: CF_TOKEN_FILE: %w", ErrInvalid, err)
		}
		c.Token = key
	}
	return c, c.Validate()
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, fmt.Errorf("%w: CF_TOKEN (or CF_TOKEN_FILE) is required", ErrMissing))
	}
	if len(c.Domains) == 0 {
		errs = append(errs, fmt.Errorf("%w: DOMAINS is required", ErrMissing))
	}
	if c.ZoneID == "" {
		errs = append(errs, fmt.Errorf("%w: ZONE_ID is required", ErrMissing))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: INTERVAL must be a positive number of seconds; got %d", ErrInvalid, c.Interval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: REQUEST_TIMEOUT must be positive; got %s", ErrInvalid, c.RequestTimeout))
	}
	if c.RecordTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: RECORD_TTL cannot be negative; got %d", ErrInvalid, c.RecordTTL))
	}
	return errors.Join(errs...)
}

// PollInterval returns Interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// DomainList is a comma separated list of domain names.
// The whole value and each entry have surrounding quotes removed; empty entries are dropped.
type DomainList []string

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DomainList) UnmarshalText(text []byte) error {
	*d = splitList(text)
	return nil
}

// URLList is a comma separated list of IP echo service URLs, read like DomainList.
type URLList []string

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *URLList) UnmarshalText(text []byte) error {
	*u = splitList(text)
	return nil
}

func splitList(text []byte) []string {
	var list []string
	for _, s := range strings.Split(StripQuotes(string(text)), ",") {
		if s = StripQuotes(strings.TrimSpace(s)); s != "" {
			list = append(list, s)
		}
	}
	return list
}

// StripQuotes removes one leading and one trailing quote character (' or ")
// when the value both starts and ends with one.
func StripQuotes(s string) string {
	if len(s) == 0 || !isQuote(s[0]) || !isQuote(s[len(s)-1]) {
		return s
	}
	if len(s) == 1 {
		return ""
	}
	return s[1 : len(s)-1]
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

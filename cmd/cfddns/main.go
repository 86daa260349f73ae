// Command cfddns keeps Cloudflare A records pointed at this host's public IPv4 address.
//
// It is configured entirely through environment variables (optionally from a .env file):
//
//	CF_TOKEN         Cloudflare API token (or CF_TOKEN_FILE, a 0600 file holding it)
//	ZONE_ID          zone containing the records
//	DOMAINS          comma separated record names
//	INTERVAL         seconds between checks (default 900)
//
// See internal/config for the optional settings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/dynip/ddns"
	"github.com/dynip/ddns/internal/config"
	"github.com/dynip/ddns/internal/health"
)

func main() {
	cfg, cfgErr := config.Load()

	logger, flush, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	if cfgErr != nil {
		logger.Error(cfgErr, "invalid configuration")
		flush()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, prometheus.DefaultRegisterer); err != nil {
		logger.Error(err, "exiting")
		flush()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger logr.Logger, reg prometheus.Registerer) error {
	resolver, err := newResolver(cfg)
	if err != nil {
		return fmt.Errorf("error creating resolver: %w", err)
	}

	metrics, err := ddns.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("error registering metrics: %w", err)
	}

	client, err := ddns.New(cfg.Domains,
		ddns.UsingCloudflare(cfg.Token, cfg.ZoneID),
		ddns.UsingResolver(resolver),
		ddns.WithLogger(logger),
		ddns.WithMetrics(metrics),
		ddns.WithInterval(cfg.PollInterval()),
		ddns.WithRequestTimeout(cfg.RequestTimeout),
		ddns.WithRecordSettings(cfg.RecordTTL, cfg.RecordProxied, cfg.RecordComment),
	)
	if err != nil {
		return fmt.Errorf("error creating ddns client: %w", err)
	}

	if cfg.MetricsAddr != "" {
		srv := health.New(cfg.MetricsAddr, health.WithLogger(logger.WithName("health")))
		srv.RegisterChecker("public-ip", func(context.Context) error {
			if client.LastResolved().IsZero() {
				return errors.New("public IP has not been resolved yet")
			}
			return nil
		})
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newResolver picks the IP source: a fixed address, a local interface,
// a DNS echo server, or web services, in that order of precedence.
func newResolver(cfg config.Config) (ddns.Resolver, error) {
	switch {
	case cfg.PublicIP != "":
		return ddns.FromString(cfg.PublicIP)
	case cfg.IPInterface != "":
		return ddns.InterfaceResolver(cfg.IPInterface), nil
	case cfg.IPDNSServer != "":
		return ddns.DNSResolver(cfg.IPDNSServer, cfg.IPDNSName), nil
	default:
		return ddns.WebResolver(cfg.IPServiceURLs...)
	}
}

// newLogger logs human readable lines on a terminal and JSON otherwise.
func newLogger(verbose bool) (logr.Logger, func(), error) {
	var zc zap.Config
	if term.IsTerminal(int(os.Stderr.Fd())) {
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

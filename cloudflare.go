package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudflare/cloudflare-go"
	"github.com/go-logr/logr"
)

func newCloudflareProvider(token, zoneID string, opts ...cloudflare.Option) (cf *cloudflareProvider, err error) {
	if zoneID == "" {
		return nil, errors.New("zone ID cannot be empty")
	}
	defaults := []cloudflare.Option{
		cloudflare.UsingRetryPolicy(0, 0, 0),
		cloudflare.HTTPClient(&http.Client{Timeout: DefaultRequestTimeout}),
	}
	cf = new(cloudflareProvider)
	cf.api, err = cloudflare.NewWithAPIToken(token, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	cf.zone = cloudflare.ZoneIdentifier(zoneID)
	cf.logger = logr.Discard()
	return cf, nil
}

// cloudflareProvider implements ddns.Provider for a single Cloudflare zone.
//
// It should be constructed using newCloudflareProvider.
type cloudflareProvider struct {
	api    *cloudflare.API
	zone   *cloudflare.ResourceContainer
	logger logr.Logger
}

// FindRecord implements ddns.Provider.
func (cf *cloudflareProvider) FindRecord(ctx context.Context, domain string) (Record, bool, error) {
	if cf.api == nil {
		return Record{}, false, errors.New("cloudflare provider was not constructed with newCloudflareProvider")
	}
	cf.logger.V(1).Info("looking up A records", "zone", cf.zone.Identifier, "domain", domain)

	// only the first match is used, so a single page is enough
	records, _, err := cf.api.ListDNSRecords(ctx, cf.zone, cloudflare.ListDNSRecordsParams{
		Type:       "A",
		Name:       domain,
		ResultInfo: cloudflare.ResultInfo{Page: 1, PerPage: 50},
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("error listing DNS records: %w", err)
	}
	cf.logger.V(1).Info("found existing records", "domain", domain, "count", len(records))
	if len(records) == 0 {
		return Record{}, false, nil
	}
	r := records[0]
	return Record{
		ID:      r.ID,
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     r.TTL,
		Proxied: r.Proxied,
		Comment: r.Comment,
	}, true, nil
}

// UpdateRecord implements ddns.Provider.
func (cf *cloudflareProvider) UpdateRecord(ctx context.Context, id string, r Record) error {
	if cf.api == nil {
		return errors.New("cloudflare provider was not constructed with newCloudflareProvider")
	}
	cf.logger.V(1).Info("updating record", "recordID", id, "domain", r.Name, "content", r.Content)
	_, err := cf.api.UpdateDNSRecord(ctx, cf.zone, cloudflare.UpdateDNSRecordParams{
		ID:      id,
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     r.TTL,
		Proxied: r.Proxied,
		Comment: r.Comment,
	})
	if err != nil {
		return fmt.Errorf("error updating DNS record: %w", err)
	}
	return nil
}

// CreateRecord implements ddns.Provider.
func (cf *cloudflareProvider) CreateRecord(ctx context.Context, r Record) error {
	if cf.api == nil {
		return errors.New("cloudflare provider was not constructed with newCloudflareProvider")
	}
	cf.logger.V(1).Info("creating record", "domain", r.Name, "content", r.Content)
	resp, err := cf.api.CreateDNSRecord(ctx, cf.zone, cloudflare.CreateDNSRecordParams{
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		ZoneID:  cf.zone.Identifier,
		TTL:     r.TTL,
		Proxied: r.Proxied,
		Comment: r.Comment,
	})
	if err != nil {
		return fmt.Errorf("error creating DNS record: %w", err)
	}
	cf.logger.V(1).Info("successfully added record", "recordID", resp.ID)
	return nil
}

package ddns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/go-logr/logr"
)

// Outcome is the result of reconciling one domain.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeUnchanged
	OutcomeUpdated
	OutcomeCreated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeUpdated:
		return "updated"
	case OutcomeCreated:
		return "created"
	default:
		return "failed"
	}
}

// Reconcile makes the A record for domain point at ip.
//
// The current record is read first; if its content is exactly ip.String() nothing is written.
// A read failure is logged and treated as a stale record.
// Before writing, the record is looked up again to choose between updating the first match and creating a new record.
// Errors from that second phase are logged with the attempted payload and wrap ErrDNSRead or ErrDNSWrite.
func (c *Client) Reconcile(ctx context.Context, domain string, ip netip.Addr) (Outcome, error) {
	return c.reconcile(ctx, c.logger, domain, ip)
}

func (c *Client) reconcile(ctx context.Context, log logr.Logger, domain string, ip netip.Addr) (Outcome, error) {
	log = log.WithValues("domain", domain)
	want := ip.String()

	current, found, err := c.findRecord(ctx, domain)
	switch {
	case err != nil:
		log.Error(err, "unable to read current record, continuing as if it were stale")
	case found && current.Content == want:
		log.Info("IP has not changed, no update needed", "ip", want)
		c.metrics.recordOutcome(OutcomeUnchanged)
		return OutcomeUnchanged, nil
	case found:
		log.V(1).Info("record is stale", "recordID", current.ID, "current", current.Content, "ip", want)
	default:
		log.V(1).Info("no existing record", "ip", want)
	}

	payload := c.template
	payload.Name = domain
	payload.Content = want

	outcome, err := c.write(ctx, payload)
	c.metrics.recordOutcome(outcome)
	switch outcome {
	case OutcomeUpdated:
		log.Info("updated DNS record", "ip", want)
	case OutcomeCreated:
		log.Info("created DNS record", "ip", want)
	default:
		log.Error(err, "error updating or creating DNS record", "payload", formatPayload(payload))
	}
	return outcome, err
}

// write looks the record up again rather than trusting the first read,
// so a record created or removed in between is still handled.
func (c *Client) write(ctx context.Context, payload Record) (Outcome, error) {
	existing, found, err := c.findRecord(ctx, payload.Name)
	if err != nil {
		return OutcomeFailed, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if found {
		if err := c.UpdateRecord(ctx, existing.ID, payload); err != nil {
			return OutcomeFailed, fmt.Errorf("%w: updating record %s for %s: %w", ErrDNSWrite, existing.ID, payload.Name, err)
		}
		return OutcomeUpdated, nil
	}
	if err := c.CreateRecord(ctx, payload); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: creating record for %s: %w", ErrDNSWrite, payload.Name, err)
	}
	return OutcomeCreated, nil
}

func (c *Client) findRecord(ctx context.Context, domain string) (Record, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	r, found, err := c.FindRecord(ctx, domain)
	if err != nil {
		return Record{}, false, fmt.Errorf("%w for %s: %w", ErrDNSRead, domain, err)
	}
	return r, found, nil
}

func formatPayload(r Record) string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", r)
	}
	return string(b)
}

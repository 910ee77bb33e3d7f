package repository

import (
	"context"

	"tab-sweeper/domain/model"
)

// ITabs talks to the running browser about its open tabs.
type ITabs interface {
	// Query returns the open tabs whose URL host is the given domain or one
	// of its subdomains.
	Query(ctx context.Context, domain string) ([]model.Tab, error)
	// Close removes the tabs with the given target IDs. Tabs that vanished
	// in the meantime are skipped, not errors.
	Close(ctx context.Context, ids []string) error
}

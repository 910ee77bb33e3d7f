package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"tab-sweeper/domain/model"
	"tab-sweeper/infrastructure/logger"
	"tab-sweeper/infrastructure/utils"
)

// Tabs implements the tab collaborator against a running Chrome/Chromium
// exposed over the DevTools protocol (--remote-debugging-port).
type Tabs struct {
	devtoolsURL string
	opTimeout   time.Duration
}

func NewTabs(devtoolsURL string) *Tabs {
	return &Tabs{devtoolsURL: devtoolsURL, opTimeout: 15 * time.Second}
}

// connect attaches to the running browser without opening a new tab.
func (t *Tabs) connect(ctx context.Context) (context.Context, context.CancelFunc, error) {
	ctx, timeoutCancel := context.WithTimeout(ctx, t.opTimeout)
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, t.devtoolsURL)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		browserCancel()
		allocCancel()
		timeoutCancel()
	}
	// Listing targets forces the connection and never spawns a page.
	if _, err := chromedp.Targets(browserCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("connect to browser at %s: %w", t.devtoolsURL, err)
	}
	return browserCtx, cancel, nil
}

// Query returns open page tabs whose URL host is the domain or a subdomain.
func (t *Tabs) Query(ctx context.Context, domain string) ([]model.Tab, error) {
	browserCtx, cancel, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	infos, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("list browser targets: %w", err)
	}

	tabs := make([]model.Tab, 0, len(infos))
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		if !utils.HostMatchesDomain(info.URL, domain) {
			continue
		}
		tabs = append(tabs, model.Tab{
			ID:    string(info.TargetID),
			URL:   info.URL,
			Title: info.Title,
		})
	}
	return tabs, nil
}

// Close removes the tabs with the given target IDs. A tab that disappeared
// between Query and Close is logged and skipped.
func (t *Tabs) Close(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	browserCtx, cancel, err := t.connect(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	c := chromedp.FromContext(browserCtx)
	execCtx := cdp.WithExecutor(browserCtx, c.Browser)
	for _, id := range ids {
		if err := target.CloseTarget(target.ID(id)).Do(execCtx); err != nil {
			logger.GetLogger().
				WithField("target_id", id).
				WithField("error", err).
				Warn("Failed to close tab, skipping")
		}
	}
	return nil
}

package provision

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/prosceniumhq/proscenium/internal/logging"
)

// CDPNavigator attaches to provider-hosted browsers through chromedp.
type CDPNavigator struct {
	log *logging.Logger
}

// NewCDPNavigator creates the production Navigator.
func NewCDPNavigator(log *logging.Logger) *CDPNavigator {
	if log == nil {
		log = logging.NewNop()
	}
	return &CDPNavigator{log: log.Component("cdp")}
}

// Connect dials the browser behind connectURL and attaches to the page the
// provider opened. The connection outlives the caller's context: the
// chromedp chain hangs off Background, and ctx only bounds the dial.
func (n *CDPNavigator) Connect(ctx context.Context, connectURL string) (Page, error) {
	if connectURL == "" {
		return nil, fmt.Errorf("connect url is empty")
	}

	// NoModifyURL keeps the signed query parameters on the provider's
	// websocket URL intact.
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.Background(), connectURL, chromedp.NoModifyURL)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	detachAll := func() {
		cancelBrowser()
		cancelAlloc()
	}

	targets, err := listTargets(ctx, browserCtx)
	if err != nil {
		detachAll()
		return nil, fmt.Errorf("attach to remote browser: %w", err)
	}

	var pageID target.ID
	for _, t := range targets {
		if t.Type == "page" {
			pageID = t.TargetID
			break
		}
	}
	if pageID == "" {
		detachAll()
		return nil, fmt.Errorf("remote browser exposes no page target")
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx, chromedp.WithTargetID(pageID))

	n.log.Debug("attached to remote page", zap.String("target_id", string(pageID)))

	return &cdpPage{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			detachAll()
		},
		log: n.log,
	}, nil
}

// listTargets bounds the chromedp target listing with the caller's context;
// the underlying dial has no deadline of its own.
func listTargets(ctx, browserCtx context.Context) ([]*target.Info, error) {
	type result struct {
		targets []*target.Info
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		ts, err := chromedp.Targets(browserCtx)
		ch <- result{ts, err}
	}()

	select {
	case r := <-ch:
		return r.targets, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cdpPage is a Page over one attached chromedp target.
type cdpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *logging.Logger
}

// Navigate drives the page to url and returns at DOM-parsed.
func (p *cdpPage) Navigate(ctx context.Context, url string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- chromedp.Run(p.ctx, waitDOMParsed(url))
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("navigate to %s: %w", url, err)
		}
		p.log.Debug("landing page parsed", zap.String("url", url))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Detach drops the CDP connection without closing the remote page; the
// provider owns the page's lifetime.
func (p *cdpPage) Detach() {
	p.cancel()
}

// waitDOMParsed navigates and returns at DOMContentLoaded rather than the
// full load event: the page is presentable long before every asset lands,
// and the curtain delay covers the rest.
func waitDOMParsed(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		parsed := make(chan struct{}, 1)
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Subscribe before navigating so a fast parse cannot slip past.
		chromedp.ListenTarget(lctx, func(ev interface{}) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				select {
				case parsed <- struct{}{}:
				default:
				}
				cancel()
			}
		})

		_, _, errText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("navigation failed: %s", errText)
		}

		select {
		case <-parsed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Defaults for the browser session. The listing page renders client-side, so
// a settle delay after navigation is unavoidable.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
)

// Options configure the browser session against the portal.
type Options struct {
	URL               string
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	Headless          bool
}

// DefaultOptions returns a headless session against url.
func DefaultOptions(url string) Options {
	return Options{
		URL:               url,
		NavigationTimeout: DefaultNavigationTimeout,
		SettleDelay:       DefaultSettleDelay,
		Headless:          true,
	}
}

// HERP drives the HERP agent portal in a browser. One value is one browser
// session; callers serialize access, since the portal cannot host two
// concurrent form flows in one session anyway.
type HERP struct {
	opts Options
	log  zerolog.Logger

	browserCtx context.Context
	cancels    []context.CancelFunc
}

// NewHERP returns an unstarted session. Call Start before any Portal method
// and Close when done.
func NewHERP(opts Options, logger zerolog.Logger) *HERP {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &HERP{opts: opts, log: logger}
}

// Start launches the browser and navigates to the listing page.
func (h *HERP) Start(ctx context.Context) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", h.opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)
	h.browserCtx = browserCtx
	h.cancels = []context.CancelFunc{cancelCtx, cancelAlloc}

	navCtx, cancel := context.WithTimeout(browserCtx, h.opts.NavigationTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(h.opts.URL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(h.opts.SettleDelay),
	)
	if err != nil {
		h.Close()
		return &Error{Op: "navigate", Message: "portal page did not load", Cause: err}
	}
	h.log.Info().Str("url", h.opts.URL).Msg("portal session started")
	return nil
}

// Close tears the browser session down. Safe to call more than once.
func (h *HERP) Close() {
	for _, cancel := range h.cancels {
		cancel()
	}
	h.cancels = nil
	h.browserCtx = nil
}

// ListPostings scrapes the titles of every recommendable posting currently
// visible on the listing page.
func (h *HERP) ListPostings(ctx context.Context) ([]string, error) {
	html, err := h.renderHTML(ctx)
	if err != nil {
		return nil, &Error{Op: "list", Message: "failed to read listing page", Cause: err}
	}
	postings, err := parsePostings(html)
	if err != nil {
		return nil, err
	}
	h.log.Info().Int("count", len(postings)).Msg("postings scraped")
	return postings, nil
}

// selectScript clicks the recommendation button on the row whose name cell
// matches the target title exactly. Mirrors the listing scrape's row walk.
const selectScript = `(() => {
	const target = %q;
	const buttons = Array.from(document.querySelectorAll('button'))
		.filter(b => b.textContent && b.textContent.includes(%q));
	for (const btn of buttons) {
		let el = btn;
		for (let i = 0; i < %d; i++) {
			el = el.parentElement;
			if (!el) break;
			const a = el.querySelector('.agent-requisitions-table-list__cell.--name a, td:first-child a');
			if (a && a.textContent.trim() === target) {
				btn.click();
				return true;
			}
		}
	}
	return false;
})()`

// SelectPosting invokes the portal's own per-posting action for title.
func (h *HERP) SelectPosting(ctx context.Context, title string) error {
	if h.browserCtx == nil {
		return &Error{Op: "select", Message: "session not started"}
	}
	runCtx, cancel := h.sessionCtx(ctx)
	defer cancel()

	var clicked bool
	script := fmt.Sprintf(selectScript, title, recommendLabel, maxAncestorHops)
	err := chromedp.Run(runCtx,
		chromedp.Evaluate(script, &clicked),
		chromedp.Sleep(h.opts.SettleDelay),
	)
	if err != nil {
		return &Error{Op: "select", Message: "failed to click posting action", Cause: err}
	}
	if !clicked {
		return &Error{Op: "select", Message: fmt.Sprintf("posting %q not found on page", title)}
	}
	h.log.Info().Str("posting", title).Msg("posting selected")
	return nil
}

// ReadFormFields scrapes the recommendation form's field list after the
// settle delay that SelectPosting already waited out.
func (h *HERP) ReadFormFields(ctx context.Context) ([]types.FormField, error) {
	html, err := h.renderHTML(ctx)
	if err != nil {
		return nil, &Error{Op: "read-fields", Message: "failed to read form page", Cause: err}
	}
	fields, err := parseFormFields(html)
	if err != nil {
		return nil, err
	}
	h.log.Info().Int("count", len(fields)).Msg("form fields scraped")
	return fields, nil
}

func (h *HERP) renderHTML(ctx context.Context) (string, error) {
	if h.browserCtx == nil {
		return "", fmt.Errorf("session not started")
	}
	runCtx, cancel := h.sessionCtx(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html))
	return html, err
}

// sessionCtx derives a run context from the browser session, bounded by the
// navigation timeout and cancelled with the caller's context.
func (h *HERP) sessionCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancelTimeout := context.WithTimeout(h.browserCtx, h.opts.NavigationTimeout)
	stop := context.AfterFunc(ctx, cancelTimeout)
	return runCtx, func() {
		stop()
		cancelTimeout()
	}
}

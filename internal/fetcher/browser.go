package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserOptions configures the headless browser fetcher.
type BrowserOptions struct {
	Headless          bool
	ExecPath          string
	UserAgent         string
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
}

// BrowserFetcher implements Client by driving a headless Chrome. One browser
// process is shared; every Fetch runs in its own tab so sessions never share
// page state.
type BrowserFetcher struct {
	opts          BrowserOptions
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowserFetcher starts the browser process.
func NewBrowserFetcher(opts BrowserOptions) (*BrowserFetcher, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 10 * time.Second
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: start")
	}

	return &BrowserFetcher{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close shuts down the browser process.
func (b *BrowserFetcher) Close() {
	b.browserCancel()
	b.allocCancel()
}

// Fetch navigates a fresh tab to target.URL, optionally submits the form,
// waits for target.WaitFor and returns the rendered document.
func (b *BrowserFetcher) Fetch(ctx context.Context, target Target) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, b.opts.NavigationTimeout)
	defer cancelRun()

	// Tie the tab to the caller's context as well as the navigation timeout.
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	var html string
	err := chromedp.Run(runCtx, b.tasks(target, &html))
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "browser: caller cancelled")
		}
		return nil, classifyBrowserError(target.URL, err, runCtx.Err())
	}

	zap.L().Debug("browser: page rendered",
		zap.String("url", target.URL),
		zap.Int("bytes", len(html)),
	)
	return []byte(html), nil
}

func (b *BrowserFetcher) tasks(target Target, html *string) chromedp.Tasks {
	tasks := chromedp.Tasks{chromedp.Navigate(target.URL)}

	if f := target.Form; f != nil {
		tasks = append(tasks,
			chromedp.WaitVisible(f.Input, chromedp.ByQuery),
			chromedp.SetValue(f.Input, f.Value, chromedp.ByQuery),
			chromedp.Click(f.Submit, chromedp.ByQuery),
		)
	}

	if target.WaitFor != "" {
		tasks = append(tasks, b.waitFor(target))
	}

	return append(tasks, chromedp.OuterHTML("html", html, chromedp.ByQuery))
}

func (b *BrowserFetcher) waitFor(target Target) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, b.opts.WaitTimeout)
		defer cancel()

		err := chromedp.WaitVisible(target.WaitFor, chromedp.ByQuery).Do(waitCtx)
		if err == nil {
			return nil
		}
		if target.AllowMissing && ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			zap.L().Debug("browser: selector never appeared, capturing page as is",
				zap.String("url", target.URL),
				zap.String("selector", target.WaitFor),
			)
			return nil
		}
		return err
	})
}

func classifyBrowserError(rawURL string, err, runErr error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(runErr, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	return &FetchError{Kind: KindNetwork, URL: rawURL, Err: err}
}

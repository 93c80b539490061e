// Package shot captures Steam profile pages with a headless browser and
// doctors the page before the screenshot: cookie banners removed, the
// logged-out profile action buttons injected back in.
package shot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/avdave/steamwatch/core/logger"
)

// Config holds capture settings.
type Config struct {
	ViewportWidth  int
	ViewportHeight int
	SettleDelay    time.Duration
	Timeout        time.Duration
}

// Capturer screenshots pages via headless Chrome.
type Capturer struct {
	cfg Config
}

// NewCapturer builds a capturer with 1920×1080 viewport, 4s settle delay and
// a 60s per-shot budget as defaults.
func NewCapturer(cfg Config) *Capturer {
	if cfg.ViewportWidth <= 0 {
		cfg.ViewportWidth = 1920
	}
	if cfg.ViewportHeight <= 0 {
		cfg.ViewportHeight = 1080
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 4 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Capturer{cfg: cfg}
}

// Capture navigates to url, doctors the page and returns the viewport
// screenshot as PNG bytes. Each call runs its own browser instance; callers
// are expected to be rare and interactive.
func (c *Capturer) Capture(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(c.cfg.ViewportWidth, c.cfg.ViewportHeight),
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(c.cfg.ViewportWidth), int64(c.cfg.ViewportHeight)),
		chromedp.Navigate(url),
		chromedp.Sleep(c.cfg.SettleDelay),
		chromedp.Evaluate(removeBannersJS, nil),
		chromedp.Evaluate(injectActionButtonsJS, nil),
		chromedp.Sleep(c.cfg.SettleDelay/2),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("shot: capture %s: %w", url, err)
	}

	logger.Info(ctx, "shot", "capture.done",
		slog.String("url", url),
		slog.Duration("duration_ms", time.Since(start)),
	)
	return buf, nil
}

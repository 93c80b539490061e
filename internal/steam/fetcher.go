package steam

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/avdave/steamwatch/core/logger"
)

// UnknownName is used when a profile page carries no persona name block
// (private or deleted profiles render without it).
const UnknownName = "Неизвестный пользователь"

const defaultFetchTimeout = 10 * time.Second

// Profile is the snapshot of a profile page relevant to tracking.
type Profile struct {
	Name   string
	Status Status
}

// FetchError wraps any failure to obtain or parse a profile page.
// Kind is one of: request, timeout, http, parse.
type FetchError struct {
	Kind string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("steam fetch (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Code implements the error-code hook used by handler summary logging.
func (e *FetchError) Code() string { return "FETCH_" + strings.ToUpper(e.Kind) }

// Config holds fetcher settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches and parses Steam community profile pages.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a profile fetcher. Zero-valued config fields fall back to
// the public community origin and a 10s timeout.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}
}

// Fetch performs a single GET of the target's profile page and extracts the
// display name and classified status. It never retries; callers own the retry
// policy.
func (c *Client) Fetch(ctx context.Context, targetID string) (Profile, error) {
	url := fmt.Sprintf("%s/profiles/%s", c.base, targetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Profile{}, &FetchError{Kind: "request", Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := "request"
		if ctx.Err() != nil || strings.Contains(err.Error(), "Client.Timeout") {
			kind = "timeout"
		}
		return Profile{}, &FetchError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, &FetchError{
			Kind: "http",
			Err:  fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Profile{}, &FetchError{Kind: "parse", Err: err}
	}

	name := strings.TrimSpace(doc.Find(".actual_persona_name").First().Text())
	if name == "" {
		name = UnknownName
	}
	rawStatus := strings.TrimSpace(doc.Find(".profile_in_game_header").First().Text())

	p := Profile{Name: name, Status: Classify(rawStatus)}

	logger.Debug(ctx, "steam", "fetch.done",
		slog.String("target_id", targetID),
		slog.String("profile_status", string(p.Status)),
		slog.Duration("duration_ms", time.Since(start)),
	)
	return p, nil
}

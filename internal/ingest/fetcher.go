package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/claimsift/internal/logger"
	"github.com/ppiankov/claimsift/internal/model"
	"github.com/ppiankov/claimsift/internal/util"
)

var (
	// ErrDisallowedByRobots is returned when robots.txt forbids fetching the input URL
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
	// ErrBodyTooLarge is returned when a response exceeds the configured size cap
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// RateLimiter throttles requests per host
type RateLimiter interface {
	WaitWithDelay(ctx context.Context, rawURL string, additionalDelay time.Duration) error
}

// Fetcher downloads post dumps over HTTP
type Fetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    RateLimiter
	userAgent  string
	maxBytes   int64
	log        logger.Logger
}

// NewFetcher creates a new Fetcher. limiter may be nil.
func NewFetcher(cfg model.InputConfig, limiter RateLimiter, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := util.NewHTTPClient(cfg.HTTPProxy, cfg.HTTPSProxy, timeout)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		limiter:    limiter,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		log:        log,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.UserAgent, client)
	}
	return f
}

// Fetch retrieves the body at rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		verdict, err := f.robots.Check(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !verdict.Allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowedByRobots)
		}
		crawlDelay = verdict.CrawlDelay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		// One extra byte tells a body at the cap from an oversized one
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", rawURL, ErrBodyTooLarge, f.maxBytes)
	}

	f.log.Debug("Fetched input",
		logger.String("url", resp.Request.URL.String()),
		logger.Int("bytes", len(body)),
		logger.Duration("duration", time.Since(start)),
	)

	return body, nil
}

package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsVerdict is the robots.txt answer for one URL
type RobotsVerdict struct {
	Allowed    bool
	CrawlDelay time.Duration
}

// RobotsChecker checks robots.txt compliance, caching one parsed file per host
type RobotsChecker struct {
	hosts      map[string]*robotstxt.RobotsData
	mu         sync.RWMutex
	httpClient *http.Client
	userAgent  string
	agentToken string
}

// NewRobotsChecker creates a new robots.txt checker
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		hosts:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
		agentToken: NormalizeUserAgent(userAgent),
	}
}

// Check reports whether rawURL may be fetched. A robots.txt that cannot be
// retrieved allows everything.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (RobotsVerdict, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RobotsVerdict{}, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return RobotsVerdict{}, fmt.Errorf("parse URL: missing host in %q", rawURL)
	}

	data, err := r.robotsFor(ctx, parsed)
	if err != nil {
		return RobotsVerdict{Allowed: true}, nil
	}

	path := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	verdict := RobotsVerdict{Allowed: data.TestAgent(path, r.agentToken)}
	if group := data.FindGroup(r.agentToken); group != nil {
		verdict.CrawlDelay = group.CrawlDelay
	}
	return verdict, nil
}

// robotsFor returns the cached robots data for the URL's host, fetching it once
func (r *RobotsChecker) robotsFor(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, ok := r.hosts[target.Host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all
	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.hosts[target.Host] = data
	r.mu.Unlock()

	return data, nil
}

// Clear drops every cached robots.txt
func (r *RobotsChecker) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = make(map[string]*robotstxt.RobotsData)
}

// NormalizeUserAgent reduces a User-Agent header to its product token,
// which is what robots.txt groups match against.
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	product, _, _ := strings.Cut(parts[0], "/")
	return product
}

// Package api fetches the latest update for a repository from the public
// what's-new endpoint.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hay-kot/whatsnew/internal/core/logging"
)

const (
	// DefaultBaseURL is the public endpoint serving what's-new summaries.
	DefaultBaseURL = "https://chglog.app/api/public/v1/whats-new"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second
	// DefaultRatePerSec caps outgoing requests when checking many repositories.
	DefaultRatePerSec = 2

	maxBodyBytes = 1 << 20
)

// Options configures a Client. Zero values fall back to the defaults, except
// Timeout where zero means no timeout.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks to the what's-new endpoint.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       zerolog.Logger
}

// NewClient validates the base URL and builds a client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	rps := opts.RatePerSec
	if rps <= 0 {
		rps = DefaultRatePerSec
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "whatsnew"
	}

	return &Client{
		base:      base,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(rps), rps),
		userAgent: ua,
		log:       logging.Component("api"),
	}, nil
}

// LatestURL returns the request URL for a repository's latest update.
func (c *Client) LatestURL(repositoryID string) string {
	u := *c.base
	u.Path = c.base.Path + "/" + repositoryID
	u.RawPath = c.base.EscapedPath() + "/" + url.PathEscape(repositoryID)
	u.RawQuery = url.Values{"limit": {"1"}, "format": {"summary"}}.Encode()
	return u.String()
}

// FetchLatest requests at most one update for the repository. A 404 means the
// repository has no updates and returns nil without error.
func (c *Client) FetchLatest(ctx context.Context, repositoryID string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := c.LatestURL(repositoryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request updates for %q: %w", repositoryID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.log.Debug().Str("repo", repositoryID).Msg("repository has no updates")
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("request updates for %q: status %d", repositoryID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

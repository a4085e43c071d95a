package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies a common desktop browser. Some shops serve a
// reduced page or block requests that carry a library user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// RobotsChecker decides whether a page may be fetched before the request is sent.
type RobotsChecker interface {
	Check(ctx context.Context, pageURL string) error
}

// Client issues a single GET per call. There is no retry and, unless Timeout
// is set, no deadline beyond the caller's context.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds one Get including the body read. Zero disables it.
	Timeout time.Duration
	// Robots is consulted before the request when non-nil.
	Robots RobotsChecker

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (10).
	RedirectMaxHops int
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) userAgent() string {
	if strings.TrimSpace(c.UserAgent) == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

// Get fetches rawURL and returns the response body decoded to UTF-8 text.
// Every failure is returned as *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", &Error{URL: rawURL, Err: fmt.Errorf("parse url: %w", err)}
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(u) || u.Host == "" {
		return "", &Error{URL: rawURL, Err: fmt.Errorf("unsupported URL: %q", rawURL)}
	}
	target := u.String()

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.Robots != nil {
		if err := c.Robots.Check(ctx, target); err != nil {
			return "", &Error{URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &Error{URL: target, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent())

	start := time.Now()
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", &Error{URL: target, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	// Decode legacy encodings declared in the header or a <meta> tag.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(b), nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 10
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		// Keep the browser identification across hops
		req.Header.Set("User-Agent", c.userAgent())
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

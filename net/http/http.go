// The http package provides the HTTP client shared by all grabbers.
// It carries a common cookie jar and user agent, retries failed fetches a
// fixed number of times, and can pause between requests when a site asks
// for polite scraping. A fetch failure is reported to the caller, which
// treats it as "no data for this unit" rather than aborting the run.

package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// UserAgent is sent with every request.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/66.0.3359.181 Safari/537.36"

// retries is the fixed count of immediate re-fetches after a transport
// failure. No backoff: the sites either answer or they don't.
const retries = 2

// Client is the stdlib client with a cookie jar, a user agent and an
// optional inter-request delay.
type Client struct {
	*http.Client
	userAgent string
	delay     time.Duration
	Jar       *cookiejar.Jar
}

// SetCookieJar is a configuration function providing a cookie jar.
func SetCookieJar(cj *cookiejar.Jar) func(c *Client) {
	return func(c *Client) {
		c.Jar = cj
		c.Client.Jar = cj
	}
}

// SetUserAgent is a configuration function setting the user agent string.
func SetUserAgent(ua string) func(c *Client) {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// SetTransport is a configuration function replacing the transport, used
// by tests to serve fixture files.
func SetTransport(rt http.RoundTripper) func(c *Client) {
	return func(c *Client) {
		c.Client.Transport = rt
	}
}

// SetDelay is a configuration function adding a pause before every
// request.
func SetDelay(d time.Duration) func(c *Client) {
	return func(c *Client) {
		c.delay = d
	}
}

// NewClient creates a Client and applies the configuration functions.
func NewClient(conf ...func(c *Client)) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		Client:    &http.Client{Jar: jar, Timeout: 30 * time.Second},
		userAgent: UserAgent,
		Jar:       jar,
	}
	for _, f := range conf {
		f(c)
	}
	return c
}

// Get fetches the url and returns the response body. Non-200 statuses are
// errors. The request is retried a fixed number of times before giving up;
// the context cancels both the delay and the requests.
func (c *Client) Get(ctx context.Context, u string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("can't get %s: %w", u, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("can't get %s: %w", u, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("can't get %s: %s", u, resp.Status)
			continue
		}
		return resp.Body, nil
	}
	return nil, lastErr
}

// GetBytes fetches the url and returns the whole body.
func (c *Client) GetBytes(ctx context.Context, u string) ([]byte, error) {
	r, err := c.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("can't read %s: %w", u, err)
	}
	return b, nil
}

func (c *Client) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxDetail bounds how much of an error body ends up in a NetworkError.
const maxDetail = 4096

// Fetcher returns the raw body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Client struct {
	http *resty.Client
}

// NewClient builds a Fetcher that issues one GET per call. Retries stay
// disabled: a failed request aborts the run.
func NewClient(timeout time.Duration, userAgent string) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)
	return &Client{http: c}
}

func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > maxDetail {
			body = body[:maxDetail]
		}
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Detail:     strings.TrimSpace(string(body)),
		}
	}

	return resp.Body(), nil
}

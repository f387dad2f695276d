package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/proxy"
)

// ErrHTTPStatus is returned when the server answers with a 4xx or 5xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Loader retrieves the HTML document at url. finalURL is the address the
// document was served from after redirects; relative links resolve against it.
type Loader interface {
	Load(ctx context.Context, url string) (body []byte, finalURL string, err error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, url string) ([]byte, string, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, url string) ([]byte, string, error) {
	return f(ctx, url)
}

// Fetcher is a Loader over HTTP.
type Fetcher struct {
	client *resty.Client
}

// fetcherOptions collects the FetcherOption values.
type fetcherOptions struct {
	timeout   time.Duration
	userAgent string
	proxy     string
}

// FetcherOption configures NewFetcher.
type FetcherOption func(*fetcherOptions)

// WithFetchTimeout bounds a single request.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(o *fetcherOptions) {
		o.timeout = d
	}
}

// WithFetchUserAgent sets the User-Agent header.
func WithFetchUserAgent(ua string) FetcherOption {
	return func(o *fetcherOptions) {
		o.userAgent = ua
	}
}

// WithSOCKS5Proxy dials every connection through the SOCKS5 proxy at address.
func WithSOCKS5Proxy(address string) FetcherOption {
	return func(o *fetcherOptions) {
		o.proxy = address
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	o := fetcherOptions{
		timeout: defaultActionWait,
	}
	for _, opt := range opts {
		opt(&o)
	}

	client := resty.New().
		SetTimeout(o.timeout).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "ru,en;q=0.8")
	if o.userAgent != "" {
		client.SetHeader("User-Agent", o.userAgent)
	}

	if o.proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", o.proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", o.proxy)
		}
		client.SetTransport(&http.Transport{
			DialContext:         contextDialer.DialContext,
			TLSHandshakeTimeout: o.timeout,
		})
	}

	return &Fetcher{client: client}, nil
}

// Load fetches url and returns the body and the final URL.
func (f *Fetcher) Load(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, url, resp.StatusCode())
	}

	finalURL := url
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	return resp.Body(), finalURL, nil
}

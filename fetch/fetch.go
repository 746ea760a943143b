package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mempirate/docparser/cache"
	"github.com/mempirate/docparser/log"
)

const DEFAULT_USER_AGENT = "docparser/1.0"

// ErrFetch marks every failure to obtain a page. Callers treat it as "no result".
var ErrFetch = errors.New("fetch failed")

// Response is a successfully fetched page. Body is always interpreted as UTF-8.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	FromCache  bool
}

// Text returns the body decoded as UTF-8.
func (r *Response) Text() string {
	return string(r.Body)
}

// Fetcher retrieves a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Client is a Fetcher that issues HTTP GET requests through a response cache.
type Client struct {
	log zerolog.Logger

	http      *http.Client
	cache     cache.Cache
	userAgent string

	group singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// NewClient creates a client backed by the given cache. A nil cache disables caching.
func NewClient(c cache.Cache, opts ...Option) *Client {
	if c == nil {
		c = cache.NewMemoryCache()
	}

	client := &Client{
		log:       log.NewLogger("fetch"),
		http:      &http.Client{Timeout: 30 * time.Second},
		cache:     c,
		userAgent: DEFAULT_USER_AGENT,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// ClearCache drops every cached response. It must run before the first fetch.
func (c *Client) ClearCache() error {
	n := c.cache.Len()
	if err := c.cache.Clear(); err != nil {
		return err
	}

	c.log.Info().Int("entries", n).Msg("Cache cleared")
	return nil
}

// Fetch returns the body of url, from the cache if present. Failures are logged and
// returned wrapped in ErrFetch.
func (c *Client) Fetch(ctx context.Context, url string) (*Response, error) {
	if body, ok := c.cache.Get(url); ok {
		c.log.Debug().Str("url", url).Msg("Cache hit")
		return &Response{URL: url, StatusCode: http.StatusOK, Body: body, FromCache: true}, nil
	}

	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("Failed to load page")
		return nil, errors.Wrapf(ErrFetch, "%s: %s", url, err)
	}

	return v.(*Response), nil
}

func (c *Client) get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}

	if err := c.cache.Put(url, body); err != nil {
		// The page is still usable, it just won't be cached.
		c.log.Warn().Err(err).Str("url", url).Msg("Failed to cache response")
	}

	c.log.Debug().Str("url", url).Int("bytes", len(body)).Msg("Fetched")

	return &Response{URL: url, StatusCode: resp.StatusCode, Body: body}, nil
}

// IsFetchError reports whether err is a fetch failure.
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetch)
}

// Document fetches url and parses it. The document URL is set so relative links can be resolved.
func Document(ctx context.Context, f Fetcher, pageURL string) (*goquery.Document, error) {
	resp, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		l := log.NewLogger("fetch")
		l.Error().Err(err).Str("url", pageURL).Msg("Malformed response")
		return nil, errors.Wrapf(ErrFetch, "%s: malformed response: %s", pageURL, err)
	}

	if u, err := url.Parse(pageURL); err == nil {
		doc.Url = u
	}

	return doc, nil
}

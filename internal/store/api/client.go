// Package api talks to a REST article service exposing a json-server style
// /blogs resource.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/logging"
	"github.com/matheuskafuri/blogreader/internal/retry"
	"golang.org/x/sync/singleflight"
)

const resource = "/blogs"

type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.Config
	now     func() time.Time
	group   singleflight.Group
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithNow sets the clock used to stamp new articles.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
		logger:  logging.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListArticles fetches the whole collection. Concurrent callers share one
// request.
func (c *Client) ListArticles(ctx context.Context) ([]article.Article, error) {
	v, err, shared := c.group.Do("list", func() (any, error) {
		var articles []article.Article
		err := retry.Do(ctx, "list articles", c.retry, func() error {
			articles = nil
			return c.get(ctx, resource, &articles)
		})
		return articles, err
	})
	if err != nil {
		return nil, wrapFetch("listing articles", err)
	}
	if shared {
		c.logger.Debug("shared in-flight list request")
	}
	articles := v.([]article.Article)
	if articles == nil {
		articles = []article.Article{}
	}
	return articles, nil
}

func (c *Client) GetArticle(ctx context.Context, id int) (article.Article, error) {
	var a article.Article
	err := retry.Do(ctx, "get article", c.retry, func() error {
		return c.get(ctx, resource+"/"+strconv.Itoa(id), &a)
	})
	if errors.Is(err, article.ErrNotFound) {
		return article.Article{}, article.NotFound(id)
	}
	if err != nil {
		return article.Article{}, wrapFetch(fmt.Sprintf("getting article %d", id), err)
	}
	return a, nil
}

// newArticle is the create payload: the service assigns the id.
type newArticle struct {
	article.Draft
	Date string `json:"date"`
}

// CreateArticle validates the draft and posts it. The article date is the
// creation instant.
func (c *Client) CreateArticle(ctx context.Context, d article.Draft) (article.Article, error) {
	if err := d.Validate(); err != nil {
		return article.Article{}, err
	}
	payload := newArticle{Draft: d, Date: article.FormatTimestamp(c.now())}
	body, err := json.Marshal(payload)
	if err != nil {
		return article.Article{}, fmt.Errorf("encoding article: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resource, bytes.NewReader(body))
	if err != nil {
		return article.Article{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created article.Article
	if err := c.do(req, &created); err != nil {
		return article.Article{}, wrapFetch("creating article", err)
	}
	c.logger.Info("article created", "id", created.ID, "title", created.Title)
	return created, nil
}

// Close is a no-op; the client holds no resources.
func (c *Client) Close() error { return nil }

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("building request: %w", err))
	}
	err = c.do(req, out)
	var se *statusError
	if errors.Is(err, article.ErrNotFound) || errors.Is(err, errMalformed) {
		return retry.Permanent(err)
	}
	if errors.As(err, &se) && !se.retryable() {
		return retry.Permanent(err)
	}
	return err
}

var errMalformed = errors.New("malformed response")

// statusError is a non-2xx response other than 404.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// retryable reports whether the service might answer differently next time:
// server errors and rate limiting.
func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return article.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func wrapFetch(op string, err error) error {
	var fe *article.FetchError
	if errors.As(err, &fe) || errors.Is(err, article.ErrNotFound) {
		return err
	}
	return &article.FetchError{Op: op, Err: err}
}

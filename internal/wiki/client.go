// Package wiki resolves topics to Wikipedia articles through the MediaWiki
// action API.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/abhisek/wikiquiz/internal/lang"
)

// Config holds MediaWiki client configuration.
type Config struct {
	// BaseURLTemplate is the api.php endpoint with a %s placeholder for the
	// language code.
	BaseURLTemplate string        `yaml:"base_url_template"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	LinkLimit       int           `yaml:"link_limit"`
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialBackoff  time.Duration `yaml:"initial_backoff"`
	MaxBackoff      time.Duration `yaml:"max_backoff"`
}

// DefaultConfig returns a Config targeting the public Wikipedia API.
func DefaultConfig() Config {
	return Config{
		BaseURLTemplate: "https://%s.wikipedia.org/w/api.php",
		UserAgent:       "wikiquiz/1.0 (https://github.com/abhisek/wikiquiz)",
		Timeout:         15 * time.Second,
		LinkLimit:       100,
		MaxAttempts:     3,
		InitialBackoff:  500 * time.Millisecond,
		MaxBackoff:      5 * time.Second,
	}
}

// Article is a fetched encyclopedia article. It is never mutated after
// FetchArticle returns it.
type Article struct {
	PageID         int
	Title          string
	Language       lang.Language
	Extract        string // plain text, HTML removed
	URL            string
	LastModified   time.Time
	Length         int // Extract length in code points
	Links          []string
	Categories     []string
	Disambiguation bool
}

// Client talks to the MediaWiki API. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// New creates a new Client. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURLTemplate == "" {
		cfg.BaseURLTemplate = def.BaseURLTemplate
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.LinkLimit <= 0 {
		cfg.LinkLimit = def.LinkLimit
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "wiki")),
	}
}

// ResolveExactTitle finds the canonical article title closest to text.
// It returns "" and a nil error when nothing matches.
func (c *Client) ResolveExactTitle(ctx context.Context, text string, l lang.Language) (string, error) {
	code, err := lang.CodeFor(l)
	if err != nil {
		return "", err
	}

	normalized := NormalizeTitle(text, l)
	if normalized == "" {
		return "", nil
	}

	params := url.Values{
		"action":    {"opensearch"},
		"format":    {"json"},
		"search":    {normalized},
		"limit":     {"1"},
		"namespace": {"0"},
		"redirects": {"resolve"},
	}

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "resolve", code, params, &raw); err != nil {
		return "", err
	}
	if len(raw) < 2 {
		return "", fmt.Errorf("wiki resolve: malformed opensearch response")
	}

	var titles []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return "", fmt.Errorf("wiki resolve: decode titles: %w", err)
	}
	if len(titles) == 0 {
		c.logger.Debug("no title match", zap.String("topic", text), zap.String("lang", code))
		return "", nil
	}
	return titles[0], nil
}

// FetchArticle resolves topic to a title and downloads that article.
func (c *Client) FetchArticle(ctx context.Context, topic string, l lang.Language) (*Article, error) {
	title, err := c.ResolveExactTitle(ctx, topic, l)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, &ArticleNotFoundError{Topic: topic, Language: l}
	}
	return c.FetchTitle(ctx, title, topic, l)
}

// FetchTitle downloads the article with an exact title. topic is only used
// for error reporting.
func (c *Client) FetchTitle(ctx context.Context, title, topic string, l lang.Language) (*Article, error) {
	code, err := lang.CodeFor(l)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"titles":      {title},
		"prop":        {"extracts|info|links|categories|pageprops"},
		"inprop":      {"url"},
		"redirects":   {"1"},
		"pllimit":     {strconv.Itoa(c.cfg.LinkLimit)},
		"plnamespace": {"0"},
		"cllimit":     {"max"},
		"clshow":      {"!hidden"},
		"ppprop":      {"disambiguation"},
	}

	var resp queryResponse
	if err := c.getJSON(ctx, "fetch", code, params, &resp); err != nil {
		return nil, err
	}

	page := resp.firstPageWithExtract()
	if page == nil {
		return nil, &ArticleNotFoundError{Topic: topic, Language: l}
	}

	article := page.toArticle(l, c.cfg.LinkLimit)
	c.logger.Debug("fetched article",
		zap.Int("page_id", article.PageID),
		zap.String("title", article.Title),
		zap.Int("length", article.Length),
		zap.Bool("disambiguation", article.Disambiguation))
	return article, nil
}

type queryResponse struct {
	Query struct {
		Pages map[string]queryPage `json:"pages"`
	} `json:"query"`
}

type queryPage struct {
	PageID     int               `json:"pageid"`
	Title      string            `json:"title"`
	Extract    *string           `json:"extract"`
	FullURL    string            `json:"fullurl"`
	Touched    string            `json:"touched"`
	Links      []nsTitle         `json:"links"`
	Categories []nsTitle         `json:"categories"`
	PageProps  map[string]string `json:"pageprops"`
}

type nsTitle struct {
	NS    int    `json:"ns"`
	Title string `json:"title"`
}

// firstPageWithExtract walks pages in ascending page-id order. Missing pages
// carry negative ids and no extract, so they never match.
func (r *queryResponse) firstPageWithExtract() *queryPage {
	pages := make([]queryPage, 0, len(r.Query.Pages))
	for _, p := range r.Query.Pages {
		pages = append(pages, p)
	}
	slices.SortFunc(pages, func(a, b queryPage) int { return a.PageID - b.PageID })

	for i := range pages {
		if pages[i].Extract != nil {
			return &pages[i]
		}
	}
	return nil
}

func (p *queryPage) toArticle(l lang.Language, linkLimit int) *Article {
	extract := StripHTML(*p.Extract)

	a := &Article{
		PageID:   p.PageID,
		Title:    p.Title,
		Language: l,
		Extract:  extract,
		URL:      p.FullURL,
		Length:   utf8.RuneCountInString(extract),
	}

	if t, err := time.Parse(time.RFC3339, p.Touched); err == nil {
		a.LastModified = t
	}

	for _, link := range p.Links {
		if len(a.Links) == linkLimit {
			break
		}
		a.Links = append(a.Links, link.Title)
	}

	for _, cat := range p.Categories {
		name := cat.Title
		if i := strings.IndexByte(name, ':'); i >= 0 {
			name = name[i+1:]
		}
		a.Categories = append(a.Categories, name)
	}

	_, a.Disambiguation = p.PageProps["disambiguation"]
	return a
}

// getJSON performs a GET against the language's API endpoint and decodes
// the body into out, retrying transient failures.
func (c *Client) getJSON(ctx context.Context, op, code string, params url.Values, out any) error {
	endpoint := fmt.Sprintf(c.cfg.BaseURLTemplate, code) + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		body, err := c.doRequest(ctx, op, endpoint)
		if err == nil {
			err = json.NewDecoder(body).Decode(out)
			body.Close()
			if err != nil {
				return fmt.Errorf("wiki %s: decode response: %w", op, err)
			}
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return contextError(op, ctxErr)
		}

		var transient *TransientFetchError
		if !errors.As(err, &transient) || attempt == c.cfg.MaxAttempts {
			break
		}

		backoff := c.backoff(attempt, transient)
		c.logger.Warn("request failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return contextError(op, ctx.Err())
		case <-time.After(backoff):
		}
	}

	return lastErr
}

// doRequest returns the response body on HTTP 200. The caller closes it.
func (c *Client) doRequest(ctx context.Context, op, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("wiki %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(op, ctx.Err())
		}
		var netErr net.Error
		timedOut := errors.As(err, &netErr) && netErr.Timeout()
		return nil, &TransientFetchError{Op: op, TimedOut: timedOut, Err: err}
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	statusErr := fmt.Errorf("unexpected status: %s", resp.Status)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &TransientFetchError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        statusErr,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return nil, fmt.Errorf("wiki %s: %w", op, statusErr)
}

func (c *Client) backoff(attempt int, err *TransientFetchError) time.Duration {
	if err.retryAfter > 0 {
		return min(err.retryAfter, c.cfg.MaxBackoff)
	}
	backoff := c.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.cfg.MaxBackoff {
		backoff = c.cfg.MaxBackoff
	}
	return backoff
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// contextError maps a done context to the error the caller sees:
// cancellation passes through wrapped, a deadline becomes a timed-out
// TransientFetchError.
func contextError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientFetchError{Op: op, TimedOut: true, Err: err}
	}
	return fmt.Errorf("wiki %s: %w", op, err)
}

package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/wikiquiz/internal/lang"
	"github.com/abhisek/wikiquiz/internal/wiki/wikitest"
)

var washington = wikitest.Page{
	PageID:     11968,
	Title:      "George Washington",
	HTML:       "<p><b>George Washington</b> (February 22, 1732 &ndash; December 14, 1799) was an American Founding Father.</p><p>He served as the first president of the United States.</p>",
	Links:      []string{"American Revolutionary War", "Mount Vernon", "John Adams"},
	Categories: []string{"Presidents of the United States", "1732 births"},
	Touched:    "2026-03-14T10:00:00Z",
}

func newTestClient(t *testing.T, srv *wikitest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURLTemplate = srv.URLTemplate()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, zaptest.NewLogger(t))
}

func TestResolveExactTitle(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	title, err := c.ResolveExactTitle(context.Background(), "  george   washington ", lang.English)
	require.NoError(t, err)
	assert.Equal(t, "George Washington", title)
}

func TestResolveExactTitle_NoMatch(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	title, err := c.ResolveExactTitle(context.Background(), "Zzyzx Qwerty", lang.English)
	require.NoError(t, err)
	assert.Equal(t, "", title)
}

func TestResolveExactTitle_UnknownLanguage(t *testing.T) {
	srv := wikitest.NewServer(t, nil)
	c := newTestClient(t, srv)

	_, err := c.ResolveExactTitle(context.Background(), "Rome", lang.Language("Klingon"))
	var langErr *lang.LanguageError
	assert.ErrorAs(t, err, &langErr)
	assert.Equal(t, 0, srv.Requests())
}

func TestFetchArticle(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	a, err := c.FetchArticle(context.Background(), "george washington", lang.English)
	require.NoError(t, err)

	assert.Equal(t, 11968, a.PageID)
	assert.Equal(t, "George Washington", a.Title)
	assert.Equal(t, lang.English, a.Language)
	assert.Equal(t, "https://en.wikipedia.org/wiki/George_Washington", a.URL)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), a.LastModified)
	assert.Equal(t,
		"George Washington (February 22, 1732 – December 14, 1799) was an American Founding Father.\nHe served as the first president of the United States.",
		a.Extract)
	assert.Equal(t, len([]rune(a.Extract)), a.Length)
	assert.Equal(t, washington.Links, a.Links)
	assert.Equal(t, washington.Categories, a.Categories)
	assert.False(t, a.Disambiguation)
}

func TestFetchArticle_LinkLimit(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv, func(cfg *Config) { cfg.LinkLimit = 2 })

	a, err := c.FetchArticle(context.Background(), "George Washington", lang.English)
	require.NoError(t, err)
	assert.Equal(t, []string{"American Revolutionary War", "Mount Vernon"}, a.Links)
}

func TestFetchArticle_Disambiguation(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {{
		PageID:         42,
		Title:          "Mercury",
		HTML:           "<p>Mercury may refer to:</p><ul><li>Mercury (planet)</li><li>Mercury (element)</li></ul>",
		Disambiguation: true,
	}}})
	c := newTestClient(t, srv)

	a, err := c.FetchArticle(context.Background(), "mercury", lang.English)
	require.NoError(t, err)
	assert.True(t, a.Disambiguation)
	assert.Equal(t, "Mercury may refer to:\nMercury (planet)\nMercury (element)", a.Extract)
}

func TestFetchArticle_OtherLanguage(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{
		"de": {{PageID: 7, Title: "Berlin", HTML: "<p>Berlin ist die Hauptstadt Deutschlands.</p>"}},
	})
	c := newTestClient(t, srv)

	a, err := c.FetchArticle(context.Background(), "berlin", lang.German)
	require.NoError(t, err)
	assert.Equal(t, "https://de.wikipedia.org/wiki/Berlin", a.URL)
	assert.Equal(t, lang.German, a.Language)

	_, err = c.FetchArticle(context.Background(), "berlin", lang.French)
	var nf *ArticleNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, lang.French, nf.Language)
	assert.Equal(t, "berlin", nf.Topic)
}

func TestFetchArticle_NotFound(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	_, err := c.FetchArticle(context.Background(), "Nonexistent Topic", lang.English)
	var nf *ArticleNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestFetchTitle_MissingPage(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	_, err := c.FetchTitle(context.Background(), "Not There", "not there", lang.English)
	var nf *ArticleNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestFetchArticle_RetriesTransient(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	srv.FailNext.Store(2)
	c := newTestClient(t, srv)

	a, err := c.FetchArticle(context.Background(), "George Washington", lang.English)
	require.NoError(t, err)
	assert.Equal(t, "George Washington", a.Title)
	// Two failures, then resolve and fetch.
	assert.Equal(t, 4, srv.Requests())
}

func TestFetchArticle_TransientExhausted(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	srv.FailNext.Store(10)
	srv.FailStatus = http.StatusTooManyRequests
	c := newTestClient(t, srv)

	_, err := c.FetchArticle(context.Background(), "George Washington", lang.English)
	var tf *TransientFetchError
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, "resolve", tf.Op)
	assert.Equal(t, http.StatusTooManyRequests, tf.StatusCode)
	assert.False(t, tf.Timeout())
	assert.Equal(t, 3, srv.Requests())
}

func TestFetchArticle_ClientErrorNotRetried(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	srv.FailNext.Store(1)
	srv.FailStatus = http.StatusBadRequest
	c := newTestClient(t, srv)

	_, err := c.FetchArticle(context.Background(), "George Washington", lang.English)
	require.Error(t, err)
	var tf *TransientFetchError
	assert.False(t, errors.As(err, &tf))
	assert.Equal(t, 1, srv.Requests())
}

func TestFetchArticle_ContextCanceled(t *testing.T) {
	srv := wikitest.NewServer(t, map[string][]wikitest.Page{"en": {washington}})
	c := newTestClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchArticle(ctx, "George Washington", lang.English)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var tf *TransientFetchError
	assert.False(t, errors.As(err, &tf))
}

func TestFetchArticle_Deadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() { close(block); srv.Close() })

	c := New(Config{BaseURLTemplate: srv.URL + "/%s/w/api.php", MaxAttempts: 3}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FetchArticle(ctx, "George Washington", lang.English)
	var tf *TransientFetchError
	require.ErrorAs(t, err, &tf)
	assert.True(t, tf.Timeout())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchArticle_SendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["x",[],[],[]]`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURLTemplate: srv.URL + "/%s", UserAgent: "quiz-test/0.1"}, nil)
	_, err := c.ResolveExactTitle(context.Background(), "x", lang.English)
	require.NoError(t, err)
	assert.Equal(t, "quiz-test/0.1", ua)
}

func TestFirstPageWithExtract_AscendingOrder(t *testing.T) {
	later, earlier := "later", "earlier"
	r := queryResponse{}
	r.Query.Pages = map[string]queryPage{
		"-1": {PageID: 0, Title: "Missing"},
		"20": {PageID: 20, Title: "B", Extract: &later},
		"10": {PageID: 10, Title: "A", Extract: &earlier},
		"5":  {PageID: 5, Title: "No extract"},
	}
	p := r.firstPageWithExtract()
	require.NotNil(t, p)
	assert.Equal(t, "A", p.Title)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}

func TestTransientFetchError_Message(t *testing.T) {
	err := &TransientFetchError{Op: "fetch", StatusCode: 503, Err: errors.New("unexpected status: 503")}
	assert.True(t, strings.Contains(err.Error(), "HTTP 503"))
}

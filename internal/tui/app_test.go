package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/debounce"
	"github.com/matheuskafuri/blogreader/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	articles []article.Article
	err      error
}

func (f *fakeStore) ListArticles(ctx context.Context) ([]article.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeStore) GetArticle(ctx context.Context, id int) (article.Article, error) {
	for _, a := range f.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return article.Article{}, article.NotFound(id)
}

func (f *fakeStore) CreateArticle(ctx context.Context, d article.Draft) (article.Article, error) {
	return article.Article{}, errors.New("read only")
}

func (f *fakeStore) Close() error { return nil }

type watchingStore struct {
	fakeStore
	changes chan struct{}
}

func (w *watchingStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	return w.changes, nil
}

type offlineStore struct {
	fakeStore
	offline bool
}

func (o *offlineStore) Offline() bool { return o.offline }

func sampleArticles() []article.Article {
	return []article.Article{
		{ID: 1, Title: "Tax Tips", Description: "Save money", Category: []string{"FINANCE"}, Date: "2024-01-01", Content: "Short."},
		{ID: 2, Title: "React Basics", Description: "Components and hooks", Category: []string{"TECH"}, Date: "2024-02-01"},
		{ID: 3, Title: "Landing the Job", Description: "Interview prep", Category: []string{"CAREER"}, Date: "2024-03-01", CoverImage: "https://img/3.jpg"},
	}
}

type harness struct {
	app    *App
	clock  *debounce.ManualClock
	sent   []tea.Msg
	opened []string
}

func newHarness(t *testing.T, debounceDelay string) *harness {
	t.Helper()
	h := &harness{clock: debounce.NewManualClock(time.Unix(0, 0))}
	s := &fakeStore{articles: sampleArticles()}
	h.app = NewApp(RunOpts{
		Store:  s,
		Config: &config.Config{Search: config.SearchConfig{Debounce: debounceDelay}},
		Clock:  h.clock,
		Send:   func(msg tea.Msg) { h.sent = append(h.sent, msg) },
		Open: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	t.Cleanup(h.app.Close)
	h.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.app.Update(articlesLoadedMsg{articles: s.articles})
	return h
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.app.Update(keyMsg(k))
	}
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(string(r))
	}
}

func resultIDs(a *App) []int {
	out := make([]int, 0, len(a.result.Articles))
	for _, art := range a.result.Articles {
		out = append(out, art.ID)
	}
	return out
}

func TestLoadBuildsIndexAndReport(t *testing.T) {
	h := newHarness(t, "300ms")

	assert.Equal(t, []int{3, 2, 1}, resultIDs(h.app))
	assert.Equal(t, []string{"CAREER", "FINANCE", "TECH"}, h.app.filterBar.categories)
	assert.Equal(t, "3 articles available", h.app.report.String())
	assert.Equal(t, 3, h.app.detailID, "newest article is selected")
}

func TestSearchIsDebounced(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("/")
	h.typeText("t")
	h.clock.Advance(100 * time.Millisecond)
	h.typeText("a")
	h.clock.Advance(100 * time.Millisecond)
	h.typeText("x")

	assert.Empty(t, h.sent, "nothing settles while typing")
	assert.Equal(t, []int{3, 2, 1}, resultIDs(h.app))
	assert.False(t, h.app.state.Settled())

	h.clock.Advance(299 * time.Millisecond)
	assert.Empty(t, h.sent)

	h.clock.Advance(time.Millisecond)
	require.Len(t, h.sent, 1)
	assert.Equal(t, termSettledMsg{term: "tax"}, h.sent[0])

	h.app.Update(h.sent[0])
	assert.Equal(t, []int{1}, resultIDs(h.app))
	assert.Equal(t, "1 of 3 articles", h.app.report.String())
	assert.True(t, h.app.state.Settled())
}

func TestEnterSettlesImmediately(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("/")
	h.typeText("hooks")
	h.press("enter")

	assert.Equal(t, []int{2}, resultIDs(h.app))
	assert.Equal(t, modeNormal, h.app.mode)
	assert.Zero(t, h.clock.Pending(), "pending settle is cancelled")

	h.clock.Advance(time.Second)
	assert.Empty(t, h.sent)
}

func TestStaleSettleIsDropped(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("/")
	h.typeText("tax")

	h.app.Update(termSettledMsg{term: "ta"})
	assert.Equal(t, "", h.app.state.DebouncedTerm())
	assert.Equal(t, []int{3, 2, 1}, resultIDs(h.app))

	h.press("enter")
	h.app.Update(termSettledMsg{term: "tax"})
	assert.Equal(t, []int{1}, resultIDs(h.app))
}

func TestEscClearsSearch(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("/")
	h.typeText("tax")
	h.press("enter")
	require.Equal(t, []int{1}, resultIDs(h.app))

	h.press("/")
	h.typeText("es")
	h.press("esc")

	assert.Equal(t, "", h.app.state.RawTerm())
	assert.Equal(t, "", h.app.state.DebouncedTerm())
	assert.Equal(t, []int{3, 2, 1}, resultIDs(h.app))
	assert.Zero(t, h.clock.Pending())
}

func TestZeroDebounceSettlesInline(t *testing.T) {
	h := newHarness(t, "0")

	h.press("/")
	h.typeText("tax")

	assert.Equal(t, []int{1}, resultIDs(h.app))
	assert.Empty(t, h.sent, "zero delay never goes through Send")
	assert.Zero(t, h.clock.Pending())
}

func TestCategoryToggle(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("f", " ")
	assert.Equal(t, []int{3}, resultIDs(h.app))
	assert.Equal(t, "1 of 3 articles", h.app.report.String())

	h.press("2")
	assert.Equal(t, []int{3, 1}, resultIDs(h.app))

	h.press(" ")
	assert.Equal(t, []int{1}, resultIDs(h.app), "toggling again removes the label")

	h.press("esc")
	assert.Equal(t, modeNormal, h.app.mode)
	assert.False(t, h.app.filterBar.filterMode)
}

func TestSortToggle(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("s")
	assert.Equal(t, query.Oldest, h.app.state.Sort())
	assert.Equal(t, []int{1, 2, 3}, resultIDs(h.app))

	h.press("s")
	assert.Equal(t, []int{3, 2, 1}, resultIDs(h.app))
}

func TestClearKeepsSort(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("s", "f", " ", "esc", "/")
	h.typeText("landing")
	h.press("enter")
	require.Equal(t, []int{3}, resultIDs(h.app))

	h.press("c")
	assert.Equal(t, "", h.app.state.RawTerm())
	assert.Empty(t, h.app.state.SelectedCategories())
	assert.Equal(t, query.Oldest, h.app.state.Sort())
	assert.Equal(t, []int{1, 2, 3}, resultIDs(h.app))
	assert.Equal(t, "3 articles available", h.app.report.String())
}

func TestStaleArticleResponseIsDropped(t *testing.T) {
	h := newHarness(t, "300ms")
	require.Equal(t, 3, h.app.detailID)

	h.app.Update(articleLoadedMsg{id: 2, article: article.Article{ID: 2, Title: "wrong"}})
	assert.Nil(t, h.app.detail)

	h.app.Update(articleLoadedMsg{id: 3, article: article.Article{ID: 3, Title: "Landing the Job", Content: "Full body"}})
	require.NotNil(t, h.app.detail)
	cur, ok := h.app.current()
	require.True(t, ok)
	assert.Equal(t, "Full body", cur.Content)
}

func TestSelectionFetchesDetail(t *testing.T) {
	h := newHarness(t, "300ms")

	cmd := h.press("j")
	require.NotNil(t, cmd)
	assert.Equal(t, 2, h.app.detailID)

	msg := cmd()
	assert.Equal(t, articleLoadedMsg{id: 2, article: sampleArticles()[1]}, msg)
}

func TestDetailLoadClearsOffline(t *testing.T) {
	s := &offlineStore{fakeStore: fakeStore{articles: sampleArticles()}, offline: true}
	app := NewApp(RunOpts{Store: s, Config: &config.Config{}, Clock: debounce.NewManualClock(time.Unix(0, 0))})
	defer app.Close()

	_, fetch := app.Update(app.loadArticlesCmd()())
	require.True(t, app.offline)
	require.NotNil(t, fetch)

	s.offline = false
	app.Update(fetch())
	assert.False(t, app.offline)
	require.NotNil(t, app.detail)
	assert.Equal(t, "Landing the Job", app.detail.Title)
}

func TestLoadErrorKeepsCollection(t *testing.T) {
	h := newHarness(t, "300ms")

	fetchErr := &article.FetchError{Op: "GET /blogs", Err: errors.New("connection refused")}
	h.app.Update(loadErrMsg{err: fetchErr})

	assert.Equal(t, 3, h.app.pipeline.Total())
	assert.Contains(t, h.app.View(), "Articles unavailable")
}

func TestLoadErrorWithoutArticles(t *testing.T) {
	app := NewApp(RunOpts{
		Store:  &fakeStore{},
		Config: &config.Config{},
		Clock:  debounce.NewManualClock(time.Unix(0, 0)),
	})
	defer app.Close()
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	msg := app.loadArticlesCmd()()
	app.Update(msg)
	assert.Equal(t, "0 articles available", app.report.String())

	app.store = &fakeStore{err: &article.FetchError{Op: "GET /blogs", Err: errors.New("down")}}
	app.Update(app.loadArticlesCmd()())
	assert.Contains(t, app.View(), "r to retry")
}

func TestNotFoundDetail(t *testing.T) {
	h := newHarness(t, "300ms")

	h.app.Update(articleErrMsg{id: 3, err: article.NotFound(3)})
	assert.Contains(t, h.app.View(), "no longer exists")
}

func TestQuitCancelsPendingSearch(t *testing.T) {
	h := newHarness(t, "300ms")

	h.press("/")
	h.typeText("a")
	require.Equal(t, 1, h.clock.Pending())

	cmd := h.press("ctrl+c")
	require.NotNil(t, cmd)
	assert.Zero(t, h.clock.Pending())
	assert.Error(t, h.app.ctx.Err())

	h.clock.Advance(time.Second)
	assert.Empty(t, h.sent)
}

func TestOpenCoverImage(t *testing.T) {
	h := newHarness(t, "300ms")

	cmd := h.press("o")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"https://img/3.jpg"}, h.opened)

	h.press("j")
	assert.Nil(t, h.press("o"), "no cover image, nothing to open")
}

func TestWatchReloadsCollection(t *testing.T) {
	s := &watchingStore{fakeStore: fakeStore{articles: sampleArticles()[:1]}, changes: make(chan struct{}, 1)}
	app := NewApp(RunOpts{Store: s, Config: &config.Config{}, Clock: debounce.NewManualClock(time.Unix(0, 0))})
	defer app.Close()

	started := app.watchCmd()()
	_, wait := app.Update(started)
	require.NotNil(t, wait)

	// changed feeds one change notification through the app and returns the
	// command that waits for the next one.
	changed := func(articles []article.Article) tea.Cmd {
		t.Helper()
		s.articles = articles
		s.changes <- struct{}{}
		_, next := app.Update(wait())
		require.NotNil(t, next)

		batch, ok := next().(tea.BatchMsg)
		require.True(t, ok, "expected reload and re-armed watch")
		require.Len(t, batch, 2)
		app.Update(batch[0]())
		return batch[1]
	}

	wait = changed(sampleArticles())
	assert.Equal(t, 3, app.pipeline.Total())
	assert.Equal(t, []string{"CAREER", "FINANCE", "TECH"}, app.filterBar.categories)

	wait = changed(sampleArticles()[1:])
	assert.Equal(t, 2, app.pipeline.Total(), "second edit reloads too")
	assert.Equal(t, []string{"CAREER", "TECH"}, app.filterBar.categories)
	require.NotNil(t, wait)
}

func TestRefreshReportsFailures(t *testing.T) {
	h := newHarness(t, "300ms")
	h.app.refresh = func(ctx context.Context) (int, []error) {
		return 2, []error{errors.New("feed down")}
	}

	h.press("r")
	assert.True(t, h.app.refreshing)

	msg := h.app.doRefresh()()
	_, cmd := h.app.Update(msg)
	assert.False(t, h.app.refreshing)
	assert.NotNil(t, cmd)
	assert.ErrorContains(t, h.app.err, "1 source(s) failed")
}

func TestViewShowsReport(t *testing.T) {
	h := newHarness(t, "300ms")

	view := h.app.View()
	assert.Contains(t, view, "blogreader")
	assert.Contains(t, view, "3 articles available")
	assert.Contains(t, view, "Landing the Job")
}

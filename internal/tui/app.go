package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/blogreader/internal/article"
	"github.com/matheuskafuri/blogreader/internal/browser"
	"github.com/matheuskafuri/blogreader/internal/config"
	"github.com/matheuskafuri/blogreader/internal/debounce"
	"github.com/matheuskafuri/blogreader/internal/logging"
	"github.com/matheuskafuri/blogreader/internal/query"
	"github.com/matheuskafuri/blogreader/internal/store"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilter
	modeHelp
)

const (
	loadTimeout    = 30 * time.Second
	refreshTimeout = 60 * time.Second
)

// offliner is implemented by stores that can fall back to a local copy.
type offliner interface {
	Offline() bool
}

type App struct {
	store   store.Store
	refresh RefreshFunc
	open    func(url string) error
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	// changes is set once the store watch starts.
	changes <-chan struct{}

	state     query.State
	pipeline  *query.Pipeline
	result    query.Result
	report    query.Report
	debouncer *debounce.Debouncer[string]

	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	// Detail view of the selected article
	detailID      int
	detail        *article.Article
	detailErr     error
	previewScroll int

	loading     bool
	loadErr     error
	refreshing  bool
	offline     bool
	currentDate string
	err         error
}

// RefreshFunc pulls new articles into the store, returning how many were
// imported and the per-source failures.
type RefreshFunc func(ctx context.Context) (int, []error)

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Store  store.Store
	Config *config.Config
	// Refresh is optional. Without it "r" only reloads the list.
	Refresh RefreshFunc
	// Clock drives the search debouncer. Defaults to the real clock.
	Clock debounce.Clock
	// Send delivers messages produced outside the update loop. Run wires it
	// to the program.
	Send func(tea.Msg)
	// Open launches a URL. Defaults to the system browser.
	Open func(url string) error
	Now  func() time.Time
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search titles and descriptions..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	open := opts.Open
	if open == nil {
		open = browser.Open
	}
	send := opts.Send
	if send == nil {
		send = func(tea.Msg) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		store:       opts.Store,
		refresh:     opts.Refresh,
		open:        open,
		logger:      logging.WithComponent("tui"),
		ctx:         ctx,
		cancel:      cancel,
		state:       query.NewState(opts.Config.SortOrder()),
		searchInput: ti,
		spinner:     sp,
		currentDate: now().Format("Jan 2"),
		loading:     true,
	}
	a.pipeline = query.NewPipeline(query.NewReporter(func(r query.Report) {
		a.report = r
	}))

	var dopts []debounce.Option
	if opts.Clock != nil {
		dopts = append(dopts, debounce.WithClock(opts.Clock))
	}
	a.debouncer = debounce.New(opts.Config.DebounceDuration(), func(term string) {
		send(termSettledMsg{term: term})
	}, dopts...)

	a.recompute()
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadArticlesCmd(), a.spinner.Tick, a.watchCmd())
}

// Close stops the pending debounce timer and any store watch.
func (a *App) Close() {
	a.debouncer.Cancel()
	a.cancel()
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	a.Close()
	return a, tea.Quit
}

func (a *App) loadArticlesCmd() tea.Cmd {
	s := a.store
	ctx := a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		articles, err := s.ListArticles(ctx)
		if err != nil {
			return loadErrMsg{err: err}
		}
		msg := articlesLoadedMsg{articles: articles}
		if o, ok := s.(offliner); ok {
			msg.offline = o.Offline()
		}
		return msg
	}
}

func (a *App) fetchArticleCmd(id int) tea.Cmd {
	s := a.store
	ctx := a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loadTimeout)
		defer cancel()
		art, err := s.GetArticle(ctx, id)
		if err != nil {
			return articleErrMsg{id: id, err: err}
		}
		msg := articleLoadedMsg{id: id, article: art}
		if o, ok := s.(offliner); ok {
			msg.offline = o.Offline()
		}
		return msg
	}
}

func (a *App) watchCmd() tea.Cmd {
	w, ok := a.store.(store.Watcher)
	if !ok {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		changes, err := w.Watch(ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("watching store: %w", err)}
		}
		return watchStartedMsg{changes: changes}
	}
}

func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return collectionChangedMsg{}
	}
}

func (a *App) doRefresh() tea.Cmd {
	refresh := a.refresh
	ctx := a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		count, errs := refresh(ctx)
		return refreshDoneMsg{count: count, errs: errs}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// recompute runs the pipeline for the current query and keeps the cursor in
// range. The pipeline skips the work when nothing relevant changed.
func (a *App) recompute() {
	a.result = a.pipeline.Result(a.state.Query())
	if a.cursor >= len(a.result.Articles) {
		a.cursor = max(0, len(a.result.Articles)-1)
	}
}

func (a *App) selected() (article.Article, bool) {
	if a.cursor < len(a.result.Articles) {
		return a.result.Articles[a.cursor], true
	}
	return article.Article{}, false
}

// syncSelection requests the full article when the selection moved to a
// different id.
func (a *App) syncSelection() tea.Cmd {
	sel, ok := a.selected()
	if !ok {
		a.detailID = 0
		a.detail = nil
		a.detailErr = nil
		return nil
	}
	if sel.ID == a.detailID && (a.detail != nil || a.detailErr == nil) {
		return nil
	}
	a.detailID = sel.ID
	a.detail = nil
	a.detailErr = nil
	a.previewScroll = 0
	return a.fetchArticleCmd(sel.ID)
}

// queryChanged re-runs the pipeline after a query state mutation.
func (a *App) queryChanged() tea.Cmd {
	a.cursor = 0
	a.recompute()
	return a.syncSelection()
}

func (a *App) settle(term string) tea.Cmd {
	a.state.SettleTerm(term)
	return a.queryChanged()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case articlesLoadedMsg:
		a.loading = false
		a.loadErr = nil
		a.offline = msg.offline
		a.pipeline.SetArticles(msg.articles)
		a.filterBar.setCategories(a.pipeline.Categories())
		a.recompute()
		// A changed collection may hold a newer copy of the open article.
		a.detailID = 0
		return a, a.syncSelection()

	case loadErrMsg:
		a.loading = false
		a.loadErr = msg.err
		a.logger.Warn("listing articles", "error", msg.err)
		return a, nil

	case articleLoadedMsg:
		if _, ok := a.store.(offliner); ok {
			a.offline = msg.offline
		}
		if msg.id != a.detailID {
			return a, nil
		}
		art := msg.article
		a.detail = &art
		a.detailErr = nil
		return a, nil

	case articleErrMsg:
		if msg.id != a.detailID {
			return a, nil
		}
		a.detailErr = msg.err
		return a, nil

	case termSettledMsg:
		// Only catch up to what is typed now. A settle that lost the race
		// with enter or esc is dropped.
		if msg.term != a.state.RawTerm() || a.state.Settled() {
			return a, nil
		}
		return a, a.settle(msg.term)

	case watchStartedMsg:
		a.changes = msg.changes
		return a, waitForChange(a.changes)

	case collectionChangedMsg:
		// Re-arm the watch so later edits reload too.
		return a, tea.Batch(a.loadArticlesCmd(), waitForChange(a.changes))

	case refreshDoneMsg:
		a.refreshing = false
		if len(msg.errs) > 0 {
			a.err = fmt.Errorf("%d source(s) failed: %w", len(msg.errs), errors.Join(msg.errs...))
		}
		return a, a.loadArticlesCmd()

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	// Mode-specific handling
	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a.quit()
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.result.Articles)-1 {
			a.cursor++
			return a, a.syncSelection()
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			return a, a.syncSelection()
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "g", "home":
		if a.focus == focusPreview {
			a.previewScroll = 0
			return a, nil
		}
		a.cursor = 0
		return a, a.syncSelection()
	case "G", "end":
		if a.focus == focusList {
			a.cursor = max(0, len(a.result.Articles)-1)
			return a, a.syncSelection()
		}
		return a, nil
	case "tab", "enter":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o":
		if sel, ok := a.current(); ok && sel.CoverImage != "" {
			return a, a.openCmd(sel.CoverImage)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.SetValue(a.state.RawTerm())
		a.searchInput.CursorEnd()
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "s":
		a.state.SetSort(a.state.Sort().Toggle())
		return a, a.queryChanged()
	case "c":
		return a, a.clearFilters()
	case "r":
		if a.refreshing {
			return a, nil
		}
		if a.refresh != nil {
			a.refreshing = true
			return a, tea.Batch(a.doRefresh(), a.spinner.Tick)
		}
		a.loading = true
		return a, tea.Batch(a.loadArticlesCmd(), a.spinner.Tick)
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

// clearFilters resets the term and category selection. Sort is kept.
func (a *App) clearFilters() tea.Cmd {
	a.debouncer.Cancel()
	a.state.Clear()
	a.searchInput.SetValue("")
	return a.queryChanged()
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.searchInput.SetValue("")
		a.debouncer.Cancel()
		a.state.SetRawTerm("")
		return a, a.settle("")
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.debouncer.Cancel()
		return a, a.settle(a.state.RawTerm())
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only re-query on actual value changes, not cursor moves etc.
	v := a.searchInput.Value()
	if v == a.state.RawTerm() {
		return a, cmd
	}
	a.state.SetRawTerm(v)
	if a.debouncer.Delay() <= 0 {
		// Settling through the debouncer would Send from inside Update.
		return a, tea.Batch(cmd, a.settle(v))
	}
	a.debouncer.Schedule(v)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.left()
		return a, nil
	case "right", "l":
		a.filterBar.right()
		return a, nil
	case " ", "enter":
		if label, ok := a.filterBar.current(); ok {
			a.state.ToggleCategory(label)
			return a, a.queryChanged()
		}
		return a, nil
	case "c":
		return a, a.clearFilters()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if label, ok := a.filterBar.at(int(msg.String()[0] - '1')); ok {
			a.state.ToggleCategory(label)
			return a, a.queryChanged()
		}
		return a, nil
	case "q":
		return a.quit()
	}
	return a, nil
}

// current is the article shown in the preview: the fetched detail when it
// matches the selection, otherwise the list copy.
func (a *App) current() (article.Article, bool) {
	sel, ok := a.selected()
	if !ok {
		return article.Article{}, false
	}
	if a.detail != nil && a.detail.ID == sel.ID {
		return *a.detail, true
	}
	return sel, true
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  blogreader")
	}

	if a.mode == modeHelp {
		return a.renderHelp()
	}

	// Layout calculations
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.38)
	previewWidth := a.width - listWidth - 1 // gap

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("blogreader")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Search bar replaces the filter bar while typing
	filter := a.filterBar.render(a.state, a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	// List pane
	innerListW := listWidth - 4 // border + padding
	var listContent string
	switch {
	case a.loading && a.pipeline.Total() == 0:
		listContent = renderMessage(a.spinner.View()+" Loading articles...", innerListW, contentHeight)
	case a.loadErr != nil && a.pipeline.Total() == 0:
		listContent = renderMessage("Could not load articles. r to retry", innerListW, contentHeight)
	default:
		listContent = renderList(a.result.Articles, a.cursor, contentHeight, innerListW)
	}

	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	// Preview pane
	innerPreviewW := previewWidth - 4
	var previewContent string
	if a.detailErr != nil && errors.Is(a.detailErr, article.ErrNotFound) {
		previewContent = renderMessage("This article no longer exists", innerPreviewW, contentHeight)
	} else if sel, ok := a.current(); ok {
		lines := previewLines(sel, innerPreviewW)
		a.previewScroll = min(a.previewScroll, maxScroll(lines, contentHeight-1))
		previewContent = renderPreview(lines, innerPreviewW, contentHeight, a.previewScroll)
	} else {
		previewContent = renderPreview(nil, innerPreviewW, contentHeight, 0)
	}

	previewStyle := previewPaneStyle
	if a.focus == focusPreview {
		previewStyle = previewPaneActiveStyle
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	// Join panes
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		report:     a.report,
		state:      a.state,
		mode:       a.mode,
		refreshing: a.refreshing,
		offline:    a.offline,
	}, a.width)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}

	// Error display
	switch {
	case a.err != nil:
		status = errorStyle.Render(a.err.Error())
	case a.loadErr != nil:
		status = errorStyle.Render(loadErrorText(a.loadErr))
	case a.detailErr != nil && !errors.Is(a.detailErr, article.ErrNotFound):
		status = errorStyle.Render("Could not load article: " + a.detailErr.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func loadErrorText(err error) string {
	if errors.Is(err, article.ErrFetch) {
		return "Articles unavailable: " + err.Error() + " (r to retry)"
	}
	return err.Error()
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("blogreader")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate list or scroll article\n" +
		"  g/G           First / last article\n" +
		"  tab, enter    Switch focus between list and article\n\n" +
		dim.Render("Query") + "\n" +
		"  /             Search titles and descriptions\n" +
		"  f             Category filter mode\n" +
		"  s             Toggle newest / oldest\n" +
		"  c             Clear search and categories\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between categories\n" +
		"  space/enter   Toggle category\n" +
		"  1-9           Toggle category by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  o             Open cover image\n" +
		"  r             Reload articles\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	var p *tea.Program
	if opts.Send == nil {
		opts.Send = func(msg tea.Msg) { p.Send(msg) }
	}
	app := NewApp(opts)
	defer app.Close()

	p = tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

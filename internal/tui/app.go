// Package tui is the interactive selection surface: pick an account and
// keywords, fetch, tick off articles, ask for AI picks, and walk out with
// a composed report on the clipboard. All cycle state lives in a session
// object; the model only holds cursors and view state on top of it.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"metrowatch/internal/cache"
	"metrowatch/internal/config"
	"metrowatch/internal/fetch"
	"metrowatch/internal/recency"
	"metrowatch/internal/recommend"
	"metrowatch/internal/report"
	"metrowatch/internal/scrape"
	"metrowatch/internal/serpapi"
	"metrowatch/internal/session"
	"metrowatch/internal/shorten"
)

type mode int

const (
	modeSetup mode = iota
	modeBrowse
	modePrompt
	modeReport
	modeHelp
)

// Notifier pushes a finished report to an external channel. Nil means the
// channel is not configured and the key is hidden.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

type App struct {
	cfg    *config.Config
	store  *cache.Cache
	engine *recommend.Engine
	policy recency.Policy

	composer  *report.Composer
	previewer *scrape.Previewer
	notifier  Notifier

	mode   mode
	width  int
	height int

	// Setup screen.
	keywordInput  textinput.Model
	accounts      []string
	accountCursor int
	quota         map[string]*serpapi.AccountInfo
	quotaErrs     map[string]string

	// Browse screen. keys is the flat cursor order over the session.
	sess      *session.Session
	keys      []session.ItemKey
	cursor    int
	fetchErrs []fetch.KeywordError
	previews  map[session.ItemKey]string

	// Prompt editor.
	promptInput textarea.Model
	prompt      string

	reportText string

	spinner spinner.Model
	busy    bool
	status  string
	err     error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg       *config.Config
	Store     *cache.Cache
	Generator recommend.Generator
	Notifier  Notifier
}

func NewApp(opts RunOpts) *App {
	cfg := opts.Cfg

	ti := textinput.New()
	ti.Placeholder = "keywords, comma separated"
	ti.SetValue(cfg.Keywords)
	ti.CharLimit = 200
	ti.Focus()

	ta := textarea.New()
	ta.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}

	var engine *recommend.Engine
	if opts.Generator != nil {
		engine = recommend.NewEngine(opts.Generator, opts.Store, 10*time.Minute)
	}

	shortener := shorten.NewClient(opts.Store, cfg.Timeout())

	return &App{
		cfg:          cfg,
		store:        opts.Store,
		engine:       engine,
		policy:       recency.NewPolicy(loc, recency.Mode(cfg.Recency.Mode)),
		composer:     report.NewComposer(cfg.Categories, shortener),
		previewer:    scrape.NewPreviewer(cfg.Timeout(), 600),
		notifier:     opts.Notifier,
		keywordInput: ti,
		promptInput:  ta,
		prompt:       cfg.Prompt,
		accounts:     cfg.AccountNames(),
		quota:        make(map[string]*serpapi.AccountInfo),
		quotaErrs:    make(map[string]string),
		previews:     make(map[session.ItemKey]string),
		spinner:      sp,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if name := a.selectedAccount(); name != "" {
		cmds = append(cmds, a.quotaCmd(name))
	}
	return tea.Batch(cmds...)
}

func (a *App) selectedAccount() string {
	if a.accountCursor < 0 || a.accountCursor >= len(a.accounts) {
		return ""
	}
	return a.accounts[a.accountCursor]
}

func (a *App) newClient() *serpapi.Client {
	return serpapi.NewClient(a.cfg.Accounts[a.selectedAccount()], a.cfg.Timeout())
}

func (a *App) searchOptions() serpapi.SearchOptions {
	return serpapi.SearchOptions{
		Language: a.cfg.Search.Language,
		Country:  a.cfg.Search.Country,
		Num:      a.cfg.Search.Num,
		Window:   a.cfg.Search.Window,
	}
}

// quotaCmd resolves the remaining search quota for an account, through the
// short-TTL cache so flipping between accounts does not burn requests.
func (a *App) quotaCmd(name string) tea.Cmd {
	client := a.newClientFor(name)
	store := a.store
	return func() tea.Msg {
		key := cache.Key("quota", name)
		if v, ok := store.Get(key); ok {
			return quotaMsg{account: name, info: v.(*serpapi.AccountInfo)}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		info, err := client.Account(ctx)
		if err != nil {
			return quotaMsg{account: name, err: err}
		}
		store.Set(key, info, time.Minute)
		return quotaMsg{account: name, info: info}
	}
}

func (a *App) newClientFor(name string) *serpapi.Client {
	return serpapi.NewClient(a.cfg.Accounts[name], a.cfg.Timeout())
}

func (a *App) fetchCmd() tea.Cmd {
	keywords := config.SplitKeywords(a.keywordInput.Value())
	orch := fetch.New(a.newClient(), a.policy, a.searchOptions(), a.cfg.Search.Pages)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		buckets, errs := orch.Fetch(ctx, keywords)
		return fetchDoneMsg{buckets: buckets, errs: errs}
	}
}

func (a *App) recommendCmd() tea.Cmd {
	engine := a.engine
	buckets := a.sess.Buckets
	prompt := a.prompt
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		titles, err := engine.Recommend(ctx, buckets, prompt)
		return recommendDoneMsg{titles: titles, err: err}
	}
}

func (a *App) composeCmd() tea.Cmd {
	composer := a.composer
	selected := a.sess.SelectedArticles()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return reportDoneMsg{text: composer.Compose(ctx, selected)}
	}
}

func (a *App) previewCmd(key session.ItemKey) tea.Cmd {
	item, ok := a.sess.Item(key)
	if !ok {
		return nil
	}
	previewer := a.previewer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		text, err := previewer.Preview(ctx, item.URL)
		return previewMsg{key: key, text: text, err: err}
	}
}

func (a *App) sendCmd() tea.Cmd {
	notifier := a.notifier
	text := a.reportText
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return sendDoneMsg{err: notifier.Send(ctx, text)}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{err: clipboard.WriteAll(text)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.promptInput.SetWidth(max(20, a.width-8))
		a.promptInput.SetHeight(max(5, a.height-8))
		return a, nil

	case tea.KeyMsg:
		a.err = nil
		return a.handleKey(msg)

	case fetchDoneMsg:
		a.busy = false
		a.sess = session.New(msg.buckets)
		a.keys = a.sess.Keys()
		a.cursor = 0
		a.fetchErrs = msg.errs
		a.previews = make(map[session.ItemKey]string)
		a.reportText = ""
		a.mode = modeBrowse
		a.status = fmt.Sprintf("%d articles across %d keywords", msg.buckets.Len(), len(msg.buckets.Keywords))
		if len(msg.errs) > 0 {
			a.status += fmt.Sprintf(", %d keyword(s) failed", len(msg.errs))
		}
		return a, nil

	case quotaMsg:
		if msg.err != nil {
			a.quotaErrs[msg.account] = msg.err.Error()
		} else {
			a.quota[msg.account] = msg.info
			delete(a.quotaErrs, msg.account)
		}
		return a, nil

	case recommendDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		// The operator may have reset to setup while the call was in
		// flight; the session is gone and the result has nowhere to land.
		if a.sess == nil {
			return a, nil
		}
		a.sess.ApplyRecommendations(msg.titles)
		a.status = fmt.Sprintf("%d titles recommended, %d selected", len(msg.titles), a.sess.SelectedCount())
		return a, nil

	case reportDoneMsg:
		a.busy = false
		a.reportText = msg.text
		a.mode = modeReport
		a.status = ""
		return a, nil

	case previewMsg:
		a.busy = false
		if msg.err != nil {
			a.status = "preview failed: " + msg.err.Error()
			return a, nil
		}
		a.previews[msg.key] = msg.text
		return a, nil

	case copyDoneMsg:
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.status = "report copied to clipboard"
		}
		return a, nil

	case sendDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.err = msg.err
		} else {
			a.status = "report sent"
		}
		return a, nil

	case spinner.TickMsg:
		if a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSetup:
		return a.handleSetupKey(msg)
	case modeBrowse:
		return a.handleBrowseKey(msg)
	case modePrompt:
		return a.handlePromptKey(msg)
	case modeReport:
		return a.handleReportKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeBrowse
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "ctrl+p":
		if a.accountCursor > 0 {
			a.accountCursor--
			return a, a.maybeQuotaCmd()
		}
		return a, nil
	case "down", "ctrl+n":
		if a.accountCursor < len(a.accounts)-1 {
			a.accountCursor++
			return a, a.maybeQuotaCmd()
		}
		return a, nil
	case "enter":
		if a.busy {
			return a, nil
		}
		keywords := config.SplitKeywords(a.keywordInput.Value())
		if len(keywords) == 0 {
			a.status = "enter at least one keyword"
			return a, nil
		}
		a.busy = true
		a.status = "fetching..."
		return a, tea.Batch(a.fetchCmd(), a.spinner.Tick)
	}

	var cmd tea.Cmd
	a.keywordInput, cmd = a.keywordInput.Update(msg)
	return a, cmd
}

// maybeQuotaCmd fires a quota lookup only when the selected account has no
// answer yet; cached answers render immediately.
func (a *App) maybeQuotaCmd() tea.Cmd {
	name := a.selectedAccount()
	if name == "" {
		return nil
	}
	if _, ok := a.quota[name]; ok {
		return nil
	}
	return a.quotaCmd(name)
}

func (a *App) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.keys)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case " ":
		if key, ok := a.currentKey(); ok {
			a.sess.Toggle(key)
		}
		return a, nil
	case "c":
		if key, ok := a.currentKey(); ok {
			a.sess.SetCategory(key, a.nextCategory(a.sess.Entry(key).Category))
		}
		return a, nil
	case "a":
		if a.engine == nil {
			a.status = "no Gemini key configured, AI picks disabled"
			return a, nil
		}
		if a.busy {
			return a, nil
		}
		a.busy = true
		a.status = "asking the model..."
		return a, tea.Batch(a.recommendCmd(), a.spinner.Tick)
	case "v":
		key, ok := a.currentKey()
		if !ok || a.busy {
			return a, nil
		}
		if _, done := a.previews[key]; done {
			delete(a.previews, key)
			return a, nil
		}
		a.busy = true
		a.status = "loading preview..."
		return a, tea.Batch(a.previewCmd(key), a.spinner.Tick)
	case "g", "enter":
		if a.busy {
			return a, nil
		}
		if a.sess.SelectedCount() == 0 {
			a.status = "nothing selected yet"
			return a, nil
		}
		a.busy = true
		a.status = "composing report..."
		return a, tea.Batch(a.composeCmd(), a.spinner.Tick)
	case "r":
		if a.busy {
			return a, nil
		}
		a.busy = true
		a.status = "fetching..."
		return a, tea.Batch(a.fetchCmd(), a.spinner.Tick)
	case "R":
		a.mode = modeSetup
		a.sess = nil
		a.keys = nil
		a.keywordInput.Focus()
		return a, textinput.Blink
	case "e":
		a.mode = modePrompt
		a.promptInput.SetValue(a.prompt)
		a.promptInput.Focus()
		return a, textarea.Blink
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

func (a *App) currentKey() (session.ItemKey, bool) {
	if a.cursor < 0 || a.cursor >= len(a.keys) {
		return session.ItemKey{}, false
	}
	return a.keys[a.cursor], true
}

// nextCategory cycles through the configured categories and back to unset.
func (a *App) nextCategory(current string) string {
	if current == "" {
		return a.cfg.Categories[0]
	}
	for i, c := range a.cfg.Categories {
		if c == current {
			if i+1 < len(a.cfg.Categories) {
				return a.cfg.Categories[i+1]
			}
			return ""
		}
	}
	return a.cfg.Categories[0]
}

func (a *App) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.promptInput.Blur()
		return a, nil
	case "ctrl+s":
		a.prompt = a.promptInput.Value()
		a.mode = modeBrowse
		a.promptInput.Blur()
		a.status = "prompt updated for this session"
		return a, nil
	}

	var cmd tea.Cmd
	a.promptInput, cmd = a.promptInput.Update(msg)
	return a, cmd
}

func (a *App) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		a.mode = modeBrowse
		return a, nil
	case "y":
		return a, copyCmd(a.reportText)
	case "s":
		if a.notifier == nil {
			a.status = "telegram not configured"
			return a, nil
		}
		if a.busy {
			return a, nil
		}
		a.busy = true
		a.status = "sending..."
		return a, tea.Batch(a.sendCmd(), a.spinner.Tick)
	case "n":
		a.mode = modeSetup
		a.sess = nil
		a.keys = nil
		a.reportText = ""
		a.keywordInput.Focus()
		return a, textinput.Blink
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

// Run starts the interactive application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Package tui is a terminal browser over the prompt store. Every filter or
// mutation goes through the ops layer and re-reads the list, so the screen
// always shows what a fresh List call would return.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hpungsan/promptbase/internal/config"
	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/ops"
	"github.com/hpungsan/promptbase/internal/prompt"
	"github.com/hpungsan/promptbase/internal/query"
)

// item adapts a prompt to bubbles/list.Item.
type item struct {
	p prompt.Prompt
}

func (i item) Title() string {
	star := mutedStyle.Render(starOff)
	if i.p.IsFavorite {
		star = favStyle.Render(starOn)
	}
	return fmt.Sprintf("%s %s", star, i.p.Title)
}

func (i item) Description() string {
	created := time.Unix(i.p.CreatedAt, 0).Format("2006-01-02 15:04")
	return created + "  " + oneLine(i.p.Body, 80)
}

func (i item) FilterValue() string { return i.p.Title }

// Model is the Bubble Tea model of the browser.
type Model struct {
	ctx   context.Context
	store ops.Store
	cfg   *config.Config

	list   list.Model
	search textinput.Model

	searching     bool
	confirmDelete bool

	query     string
	sortIdx   int
	direction query.Direction
	sinceIdx  int
	favOnly   bool

	total  int
	label  string
	status string
	err    string
}

var (
	searchKey   = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	sortKey     = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort"))
	reverseKey  = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse"))
	sinceKey    = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "date"))
	favOnlyKey  = key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "favorites only"))
	favoriteKey = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite"))
	deleteKey   = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	quitKey     = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
)

// New builds a browser model and loads the first page.
func New(ctx context.Context, store ops.Store, cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Prompts"
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetShowStatusBar(false)
	// search is a store query, not the list's fuzzy filter
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	extra := func() []key.Binding {
		return []key.Binding{searchKey, sortKey, reverseKey, sinceKey, favOnlyKey, favoriteKey, deleteKey, quitKey}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title or body"
	ti.CharLimit = 200

	m := Model{
		ctx:       ctx,
		store:     store,
		cfg:       cfg,
		list:      l,
		search:    ti,
		direction: query.Descending,
	}
	if d, err := query.ParseDirection(cfg.DefaultDirection); err == nil {
		m.direction = d
	}
	if k, err := query.ParseSortKey(cfg.DefaultSort); err == nil {
		m.sortIdx = indexOf(query.SortKeys, k)
	}
	m.refresh()
	return m
}

// Run starts the browser on the alternate screen and blocks until it quits.
func Run(ctx context.Context, store ops.Store, cfg *config.Config) error {
	p := tea.NewProgram(New(ctx, store, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := panelStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-2)
		return m, nil

	case tea.KeyMsg:
		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() == "y" {
				m.deleteSelected()
			} else {
				m.status = "delete cancelled"
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, quitKey):
			return m, tea.Quit
		case key.Matches(msg, searchKey):
			m.searching = true
			m.search.SetValue(m.query)
			m.search.CursorEnd()
			return m, m.search.Focus()
		case key.Matches(msg, sortKey):
			m.sortIdx = (m.sortIdx + 1) % len(query.SortKeys)
			m.refresh()
			return m, nil
		case key.Matches(msg, reverseKey):
			if m.direction.IsDescending() {
				m.direction = query.Ascending
			} else {
				m.direction = query.Descending
			}
			m.refresh()
			return m, nil
		case key.Matches(msg, sinceKey):
			m.sinceIdx = (m.sinceIdx + 1) % len(query.DateFilters)
			m.refresh()
			return m, nil
		case key.Matches(msg, favOnlyKey):
			m.favOnly = !m.favOnly
			m.refresh()
			return m, nil
		case key.Matches(msg, favoriteKey):
			m.toggleFavorite()
			return m, nil
		case key.Matches(msg, deleteKey):
			if _, ok := m.selected(); ok {
				m.confirmDelete = true
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			m.query = m.search.Value()
			m.searching = false
			m.search.Blur()
			m.refresh()
			return m, nil
		case "esc":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.list.View())

	switch {
	case m.searching:
		b.WriteString("\n" + m.search.View())
	case m.confirmDelete:
		if it, ok := m.selected(); ok {
			b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("delete %q? (y/n)", it.p.Title)))
		}
	case m.err != "":
		b.WriteString("\n" + errorStyle.Render(m.err))
	case m.status != "":
		b.WriteString("\n" + mutedStyle.Render(m.status))
	}
	return panelStyle.Render(b.String())
}

func (m Model) header() string {
	parts := []string{
		accentStyle.Render(m.label),
		"since " + string(query.DateFilters[m.sinceIdx]),
		fmt.Sprintf("%d total", m.total),
	}
	if m.favOnly {
		parts = append(parts, favStyle.Render(starOn+" only"))
	}
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("search %q", m.query))
	}
	return strings.Join(parts, mutedStyle.Render("  ·  "))
}

// refresh re-runs the list query with the current selection.
func (m *Model) refresh() {
	out, err := ops.List(m.ctx, m.store, m.cfg, ops.ListInput{
		Search:        m.query,
		Sort:          string(query.SortKeys[m.sortIdx]),
		Direction:     string(m.direction),
		Since:         string(query.DateFilters[m.sinceIdx]),
		FavoritesOnly: m.favOnly,
		Limit:         config.MaxListLimit,
	})
	if err != nil {
		m.setErr(err)
		return
	}

	items := make([]list.Item, len(out.Items))
	for i, p := range out.Items {
		items[i] = item{p: p}
	}
	m.list.SetItems(items)
	m.total = out.Pagination.Total
	m.label = out.Sort
	m.err = ""
}

func (m *Model) toggleFavorite() {
	it, ok := m.selected()
	if !ok {
		return
	}
	p, err := ops.Favorite(m.ctx, m.store, ops.FavoriteInput{ID: it.p.ID})
	if err != nil {
		m.setErr(err)
		return
	}
	if p.IsFavorite {
		m.status = "favorited " + p.Title
	} else {
		m.status = "unfavorited " + p.Title
	}
	m.refresh()
}

func (m *Model) deleteSelected() {
	it, ok := m.selected()
	if !ok {
		return
	}
	if _, err := ops.Delete(m.ctx, m.store, it.p.ID); err != nil {
		m.setErr(err)
		return
	}
	m.status = "deleted " + it.p.Title
	m.refresh()
}

func (m Model) selected() (item, bool) {
	it, ok := m.list.SelectedItem().(item)
	return it, ok
}

func (m *Model) setErr(err error) {
	if pErr := errors.As(err); pErr != nil {
		m.err = fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message)
		return
	}
	m.err = err.Error()
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

// oneLine collapses whitespace and cuts s to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

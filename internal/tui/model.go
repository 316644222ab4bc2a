// Package tui renders the post browser in a terminal and turns key presses
// into controller intents.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"post_browser/internal/domain"
)

const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keyTab    = "tab"
	keySlash  = "/"
	keySort   = "s"
	keyNew    = "n"
	keyDelete = "d"
	keyReload = "r"
	keyLeft   = "left"
	keyRight  = "right"
	keyUp     = "up"
	keyDown   = "down"

	inputCharLimit = 200
	inputWidth     = 60
)

// Controller is the set of intents the renderer may issue.
type Controller interface {
	Snapshot() domain.Snapshot
	SetPage(ctx context.Context, n int) error
	GoToPage(ctx context.Context, delta int) error
	Refresh(ctx context.Context) error
	SetSort(key domain.SortKey) error
	SetSearch(query string)
	Create(post domain.Post) error
	Remove(id int64) error
	NextID() int64
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeCompose
)

// StateChangedMsg tells the model the controller state moved on. The model
// pulls the latest snapshot itself, so late or duplicate deliveries are
// harmless.
type StateChangedMsg struct{}

type intentDoneMsg struct {
	err error
}

// Model is the Bubble Tea model for the post list.
type Model struct {
	ctx  context.Context
	ctrl Controller
	snap domain.Snapshot

	mode     mode
	search   textinput.Model
	title    textinput.Model
	body     textinput.Model
	selected int
	notice   string

	width  int
	height int
}

func New(ctx context.Context, ctrl Controller) *Model {
	search := newInput("Search...")
	search.Prompt = "/ "

	return &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		snap:   ctrl.Snapshot(),
		search: search,
		title:  newInput("Title"),
		body:   newInput("Description"),
	}
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = inputCharLimit
	ti.Width = inputWidth
	return ti
}

// Init loads the first page.
func (m *Model) Init() tea.Cmd {
	return m.intent(func(ctx context.Context) error {
		return m.ctrl.SetPage(ctx, 1)
	})
}

// intent runs a fetching controller call off the update loop.
func (m *Model) intent(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentDoneMsg{err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case StateChangedMsg:
		m.setSnapshot(m.ctrl.Snapshot())
		return m, nil
	case intentDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, domain.ErrSuperseded) {
			m.notice = msg.err.Error()
		}
		m.setSnapshot(m.ctrl.Snapshot())
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKey(msg)
		case modeCompose:
			return m.handleComposeKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}
	return m, nil
}

func (m *Model) setSnapshot(s domain.Snapshot) {
	m.snap = s
	if m.selected >= len(s.Visible) {
		m.selected = len(s.Visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

//nolint:gocyclo // one branch per key binding.
func (m *Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m, tea.Quit
	case keyLeft, "h":
		if !m.snap.HasPrev() {
			return m, nil
		}
		return m, m.intent(func(ctx context.Context) error {
			return m.ctrl.GoToPage(ctx, -1)
		})
	case keyRight, "l":
		if !m.snap.HasNext() {
			return m, nil
		}
		return m, m.intent(func(ctx context.Context) error {
			return m.ctrl.GoToPage(ctx, 1)
		})
	case keyReload:
		return m, m.intent(m.ctrl.Refresh)
	case keyUp, "k":
		if m.selected > 0 {
			m.selected--
		}
	case keyDown, "j":
		if m.selected < len(m.snap.Visible)-1 {
			m.selected++
		}
	case keySlash:
		m.mode = modeSearch
		return m, m.search.Focus()
	case keySort:
		m.cycleSort()
	case keyNew:
		m.mode = modeCompose
		m.body.Blur()
		return m, m.title.Focus()
	case keyDelete:
		m.removeSelected()
	case keyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.ctrl.SetSearch("")
			m.setSnapshot(m.ctrl.Snapshot())
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		return m, tea.Quit
	case keyEnter, keyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetSearch(m.search.Value())
	m.setSnapshot(m.ctrl.Snapshot())
	return m, cmd
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC:
		return m, tea.Quit
	case keyEsc:
		m.resetComposer()
		return m, nil
	case keyTab:
		if m.title.Focused() {
			m.title.Blur()
			return m, m.body.Focus()
		}
		m.body.Blur()
		return m, m.title.Focus()
	case keyEnter:
		m.submitPost()
		return m, nil
	}

	var cmd tea.Cmd
	if m.title.Focused() {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m *Model) cycleSort() {
	next := domain.SortKeys[0]
	for i, k := range domain.SortKeys {
		if k == m.snap.SortKey {
			next = domain.SortKeys[(i+1)%len(domain.SortKeys)]
			break
		}
	}
	if err := m.ctrl.SetSort(next); err != nil {
		m.notice = err.Error()
	}
	m.setSnapshot(m.ctrl.Snapshot())
}

func (m *Model) removeSelected() {
	if len(m.snap.Visible) == 0 {
		return
	}
	if err := m.ctrl.Remove(m.snap.Visible[m.selected].ID); err != nil {
		m.notice = err.Error()
	}
	m.setSnapshot(m.ctrl.Snapshot())
}

func (m *Model) submitPost() {
	if m.title.Value() == "" {
		m.notice = "title is required"
		return
	}

	post := domain.Post{
		ID:    m.ctrl.NextID(),
		Title: m.title.Value(),
		Body:  m.body.Value(),
	}
	if err := m.ctrl.Create(post); err != nil {
		m.notice = err.Error()
		return
	}

	m.resetComposer()
	m.setSnapshot(m.ctrl.Snapshot())
}

func (m *Model) resetComposer() {
	m.mode = modeBrowse
	m.title.SetValue("")
	m.body.SetValue("")
	m.title.Blur()
	m.body.Blur()
}

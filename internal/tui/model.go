// Package tui is the interactive paged browser for income and expense lists.
package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finflow/internal/listing"
	"github.com/Veraticus/finflow/internal/model"
	ftable "github.com/Veraticus/finflow/internal/table"
	"github.com/Veraticus/finflow/internal/tui/themes"
)

// Mode is what the browser is waiting for.
type Mode int

const (
	ModeBrowse Mode = iota
	ModeConfirmDelete
)

var statusCycle = []model.PendingStatus{model.StatusAll, model.StatusPending, model.StatusSettled}

var columnWidths = map[string]int{
	"id":          5,
	"date":        11,
	"description": 28,
	"amount":      15,
	"category":    16,
	"subcategory": 16,
	"recurring":   9,
	"status":      9,
}

// Model holds the browser state. All mutation happens in Update.
type Model struct {
	ctx        context.Context
	lastError  error
	view       *listing.View
	deleter    Deleter
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	kind       model.Kind
	notice     string
	columns    []ftable.Column[model.Transaction]
	categories []model.Category
	rows       []model.Transaction
	table      btable.Model
	pendingDel int
	inFlight   int
	width      int
	height     int
	mode       Mode
	quitting   bool
}

// New creates a browser model over an existing list view.
func New(ctx context.Context, cfg Config) Model {
	cols := ftable.TransactionColumns(cfg.Kind)
	tcols := make([]btable.Column, 0, len(cols))
	for _, c := range cols {
		tcols = append(tcols, btable.Column{Title: c.Header, Width: columnWidths[c.Key]})
	}

	t := btable.New(
		btable.WithColumns(tcols),
		btable.WithFocused(true),
		btable.WithHeight(max(cfg.Height-8, 3)),
	)
	styles := btable.DefaultStyles()
	styles.Header = cfg.Theme.Header
	styles.Selected = cfg.Theme.Selected
	t.SetStyles(styles)

	return Model{
		ctx:        ctx,
		view:       cfg.View,
		deleter:    cfg.Deleter,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       help.New(),
		kind:       cfg.Kind,
		columns:    cols,
		categories: cfg.Categories,
		table:      t,
		width:      cfg.Width,
		height:     cfg.Height,
		inFlight:   1,
	}
}

// Init issues the first fetch, already counted in inFlight by New.
func (m Model) Init() tea.Cmd {
	return m.fetch(m.view.Refresh())
}

func (m *Model) issue(req listing.Request) tea.Cmd {
	m.inFlight++
	return m.fetch(req)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case fetchedMsg:
		m.inFlight = max(m.inFlight-1, 0)
		if m.view.Apply(msg.result) {
			m.lastError = msg.result.Err
			m.syncRows()
		}
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.view.Remove(msg.id)
		m.notice = fmt.Sprintf("%s %d deleted", m.kind.Label(), msg.id)
		m.syncRows()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.mode == ModeConfirmDelete {
		switch {
		case key.Matches(msg, m.keymap.Confirm):
			m.mode = ModeBrowse
			return m, m.remove(m.pendingDel)
		case key.Matches(msg, m.keymap.Cancel):
			m.mode = ModeBrowse
			m.notice = "delete cancelled"
		}
		return m, nil
	}

	m.notice = ""
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.NextPage):
		if req, ok := m.view.Next(); ok {
			return m, m.issue(req)
		}
		return m, nil

	case key.Matches(msg, m.keymap.PrevPage):
		if req, ok := m.view.Prev(); ok {
			return m, m.issue(req)
		}
		return m, nil

	case key.Matches(msg, m.keymap.CycleStatus):
		c := m.view.Criteria()
		c.Status = nextStatus(c.Status)
		return m, m.issue(m.view.SetCriteria(c))

	case key.Matches(msg, m.keymap.CycleCategory):
		c := m.view.Criteria()
		c.CategoryID = nextCategory(m.categories, c.CategoryID)
		return m, m.issue(m.view.SetCriteria(c))

	case key.Matches(msg, m.keymap.ClearFilters):
		return m, m.issue(m.view.ClearFilters())

	case key.Matches(msg, m.keymap.Refresh):
		return m, m.issue(m.view.Refresh())

	case key.Matches(msg, m.keymap.Delete):
		if m.deleter == nil || len(m.rows) == 0 {
			return m, nil
		}
		m.pendingDel = m.rows[m.table.Cursor()].ID
		m.mode = ModeConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) syncRows() {
	m.rows = m.view.Current().Content
	rows := make([]btable.Row, 0, len(m.rows))
	for _, t := range m.rows {
		rows = append(rows, ftable.Cells(m.columns, t))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func nextStatus(s model.PendingStatus) model.PendingStatus {
	for i, v := range statusCycle {
		if v == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return model.StatusPending
}

// nextCategory cycles none → each category → none.
func nextCategory(cats []model.Category, current int) int {
	if len(cats) == 0 {
		return 0
	}
	if current == 0 {
		return cats[0].ID
	}
	for i, c := range cats {
		if c.ID == current && i+1 < len(cats) {
			return cats[i+1].ID
		}
	}
	return 0
}

func (m Model) categoryName(id int) string {
	if id == 0 {
		return "all"
	}
	for _, c := range m.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return strconv.Itoa(id)
}

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finflow/internal/listing"
)

const requestTimeout = 30 * time.Second

// fetch runs req off the update loop.
func (m Model) fetch(req listing.Request) tea.Cmd {
	view, ctx := m.view, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return fetchedMsg{result: view.Fetch(ctx, req)}
	}
}

// remove deletes id on the backend.
func (m Model) remove(id int) tea.Cmd {
	deleter, ctx := m.deleter, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()
		return deletedMsg{id: id, err: deleter.Delete(ctx, id)}
	}
}

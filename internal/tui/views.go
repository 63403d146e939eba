package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/finflow/internal/model"
	ftable "github.com/Veraticus/finflow/internal/table"
)

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(m.theme.StatusPending.Render("No records match the current filters."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(m.help.View(m.keymap)))
	return b.String()
}

func (m Model) title() string {
	if m.kind == model.KindIncome {
		return "Receitas"
	}
	return "Despesas"
}

func (m Model) renderFilters() string {
	c := m.view.Criteria()
	from, to := "…", "…"
	if c.StartDate != "" {
		from = ftable.Date(c.StartDate)
	}
	if c.EndDate != "" {
		to = ftable.Date(c.EndDate)
	}
	parts := []string{
		fmt.Sprintf("period %s – %s", from, to),
		"status " + strings.ToLower(string(c.Status)),
		"category " + m.categoryName(c.CategoryID),
	}
	if c.Status == "" {
		parts[1] = "status all"
	}
	return m.theme.Subtitle.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderFooter() string {
	page, total := m.view.Position()
	sum := m.view.Summary()
	totalLabel := ftable.Currency(sum.Total)
	if sum.Partial {
		totalLabel += " (this page)"
	}
	left := fmt.Sprintf("page %d/%d  ·  %d records  ·  total %s", page, max(total, 1), sum.Count, totalLabel)
	if m.inFlight > 0 {
		left += "  ·  loading…"
	}

	var status string
	switch {
	case m.mode == ModeConfirmDelete:
		status = m.theme.StatusWarning.Render(fmt.Sprintf("Delete %s %d? (y/n)", strings.ToLower(m.kind.Label()), m.pendingDel))
	case m.lastError != nil:
		status = m.theme.StatusError.Render(m.lastError.Error())
	case m.notice != "":
		status = m.theme.StatusSuccess.Render(m.notice)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.theme.Normal.Render(left), status)
}

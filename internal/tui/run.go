package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/finflow/internal/listing"
	"github.com/Veraticus/finflow/internal/model"
)

// Run starts the browser over view and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, view *listing.View, kind model.Kind, opts ...Option) error {
	if view == nil {
		return fmt.Errorf("a list view is required")
	}
	cfg := defaultConfig()
	cfg.View, cfg.Kind = view, kind
	for _, opt := range opts {
		opt(&cfg)
	}

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(New(ctx, cfg), progOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

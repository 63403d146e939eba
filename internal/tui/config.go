package tui

import (
	"context"

	"github.com/Veraticus/finflow/internal/listing"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/tui/themes"
)

// Deleter removes a record on the backend.
type Deleter interface {
	Delete(ctx context.Context, id int) error
}

// Config holds TUI configuration.
type Config struct {
	Theme      themes.Theme
	View       *listing.View
	Deleter    Deleter
	Kind       model.Kind
	Categories []model.Category
	Width      int
	Height     int
	// AltScreen runs the program in the terminal's alternate screen.
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Width:     100,
		Height:    24,
		AltScreen: true,
	}
}

// WithTheme sets the theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) { c.Theme = theme }
}

// WithCategories sets the categories the category filter cycles through.
func WithCategories(cats []model.Category) Option {
	return func(c *Config) { c.Categories = cats }
}

// WithDeleter enables deleting the selected row.
func WithDeleter(d Deleter) Option {
	return func(c *Config) { c.Deleter = d }
}

// WithSize sets the initial dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) { c.AltScreen = enabled }
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finflow/internal/api"
	"github.com/Veraticus/finflow/internal/category"
	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/session"
	"github.com/Veraticus/finflow/internal/storage"
)

// app bundles the services one command needs.
type app struct {
	cfg           *config.Config
	session       *session.Session
	client        *api.Client
	auth          *api.AuthService
	categories    *api.CategoryService
	subcategories *api.SubcategoryService
	incomes       *api.TransactionService
	expenses      *api.TransactionService
}

// openApp opens the session store, restores the session and builds the
// API services. Callers must call close.
func (o *rootOptions) openApp(ctx context.Context) (*app, error) {
	if o.cfg == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", common.ErrMissingConfig)
	}

	store, err := storage.Open(ctx, o.cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	sess := session.New(store)
	if err := sess.Init(ctx); err != nil {
		_ = sess.Teardown()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	client := api.NewClient(o.cfg.API.BaseURL, sess, api.WithTimeout(o.cfg.API.Timeout))
	return &app{
		cfg:           o.cfg,
		session:       sess,
		client:        client,
		auth:          api.NewAuthService(client),
		categories:    api.NewCategoryService(client),
		subcategories: api.NewSubcategoryService(client),
		incomes:       api.NewIncomeService(client),
		expenses:      api.NewExpenseService(client),
	}, nil
}

func (a *app) close() {
	if err := a.session.Teardown(); err != nil {
		common.LogError(context.Background(), err, "failed to close session store", common.Fields{"path": a.cfg.Session.Path})
	}
}

// requireLogin fails fast when no usable session is held.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("%w; run 'finflow login' first", common.ErrNotAuthenticated)
	}
	if a.session.Expired() {
		return fmt.Errorf("%w; run 'finflow login' again", common.ErrSessionExpired)
	}
	return nil
}

func (a *app) transactions(kind model.Kind) *api.TransactionService {
	if kind == model.KindIncome {
		return a.incomes
	}
	return a.expenses
}

// withApp opens the app, checks the session when auth is set and runs fn.
func (o *rootOptions) withApp(cmd *cobra.Command, auth bool, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := o.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !auth {
		return fn(ctx, a)
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	return explain(fn(ctx, a))
}

// explain turns a rejected token into a hint to log in again.
func explain(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return common.NewUserError("the backend rejected the session; run 'finflow login' again", err)
	}
	return err
}

// confirmer returns the prompt used by destructive commands.
func confirmer(cmd *cobra.Command, force bool) category.Confirmer {
	if force {
		return cli.AutoConfirm{}
	}
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// newManager builds a category manager honoring the configured count mode.
// Per-category counting reports progress on stderr.
func (a *app) newManager(cmd *cobra.Command, confirm category.Confirmer) *category.Manager {
	counter := category.NewCounter(a.cfg.Categories.CountMode, a.subcategories, a.cfg.Categories.Concurrency)

	switch c := counter.(type) {
	case *category.FanoutCounter:
		counter = &progressCounter{fanout: c, w: cmd.ErrOrStderr()}
	case *category.BatchCounter:
		if f, ok := c.Fallback.(*category.FanoutCounter); ok {
			c.Fallback = &progressCounter{fanout: f, w: cmd.ErrOrStderr()}
		}
	}
	return category.NewManager(a.categories, a.subcategories, counter, confirm)
}

// progressCounter drives a progress bar while a fan-out count runs.
type progressCounter struct {
	fanout *category.FanoutCounter
	w      io.Writer
}

func (p *progressCounter) Count(ctx context.Context, categories []model.Category) (map[int]int, error) {
	bar := cli.NewProgress(p.w, len(categories), "Counting subcategories")
	defer bar.Finish()
	p.fanout.Progress = bar.Step
	return p.fanout.Count(ctx, categories)
}

func formatExpiry(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("02/01/2006 15:04")
}

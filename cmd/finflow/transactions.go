package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/config"
	"github.com/Veraticus/finflow/internal/form"
	"github.com/Veraticus/finflow/internal/listing"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/table"
	"github.com/Veraticus/finflow/internal/tui"
	"github.com/Veraticus/finflow/internal/tui/themes"
)

func incomeCmd(opts *rootOptions) *cobra.Command {
	return transactionsCmd(opts, model.KindIncome, "receitas", []string{"income"})
}

func expenseCmd(opts *rootOptions) *cobra.Command {
	return transactionsCmd(opts, model.KindExpense, "despesas", []string{"expenses"})
}

// transactionsCmd builds the command tree shared by receitas and despesas.
func transactionsCmd(opts *rootOptions, kind model.Kind, use string, aliases []string) *cobra.Command {
	noun := strings.ToLower(kind.Label())
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   fmt.Sprintf("Manage %s records (%s)", noun, use),
	}

	cmd.AddCommand(listTransactionsCmd(opts, kind))
	cmd.AddCommand(pendingTransactionsCmd(opts, kind))
	cmd.AddCommand(showTransactionCmd(opts, kind))
	cmd.AddCommand(addTransactionCmd(opts, kind))
	cmd.AddCommand(updateTransactionCmd(opts, kind))
	cmd.AddCommand(deleteTransactionCmd(opts, kind))
	cmd.AddCommand(browseTransactionsCmd(opts, kind))

	return cmd
}

// filterFlags are the list filters shared by list and browse.
type filterFlags struct {
	from, to   string
	status     string
	pagination string
	category   int
	page       int
	pageSize   int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "only records on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "only records on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.category, "category", 0, "only records of this category id")
	cmd.Flags().StringVar(&f.status, "status", "all", "all, pending or settled")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "records per page (default from config)")
	cmd.Flags().StringVar(&f.pagination, "pagination", "", "client or server (default from config)")
}

func (f *filterFlags) criteria() (model.FilterCriteria, error) {
	if err := checkDate("from", f.from); err != nil {
		return model.FilterCriteria{}, err
	}
	if err := checkDate("to", f.to); err != nil {
		return model.FilterCriteria{}, err
	}
	status, err := model.ParsePendingStatus(f.status)
	if err != nil {
		return model.FilterCriteria{}, common.NewValidationError("status", err.Error())
	}
	return model.FilterCriteria{
		StartDate:  f.from,
		EndDate:    f.to,
		CategoryID: f.category,
		Status:     status,
	}, nil
}

// view builds a list view honoring the flag overrides of the configured
// pagination strategy.
func (f *filterFlags) view(cfg *config.Config, source listing.Source) (*listing.View, error) {
	mode := cfg.List.Pagination
	if f.pagination != "" {
		mode = strings.ToLower(f.pagination)
	}
	if mode != config.PaginationClient && mode != config.PaginationServer {
		return nil, common.NewValidationError("pagination", fmt.Sprintf("invalid pagination %q (want client or server)", f.pagination))
	}
	size := cfg.List.PageSize
	if f.pageSize > 0 {
		size = f.pageSize
	}
	return listing.NewView(listing.NewPaginator(mode, source, size)), nil
}

func checkDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, value); err != nil {
		return common.NewValidationError(field, field+" must be in YYYY-MM-DD format")
	}
	return nil
}

func listTransactionsCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var (
		filters filterFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, filtered and paginated",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			criteria, err := filters.criteria()
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				view, err := filters.view(a.cfg, a.transactions(kind))
				if err != nil {
					return err
				}
				req := view.SetCriteria(criteria)
				if filters.page > 1 {
					req = view.SetPage(view.PageIndex() + filters.page - 1)
				}
				if err := view.Load(ctx, req); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				page := view.Current()
				if format != outputTable {
					return render(out, format, table.TransactionColumns(kind), page.Content, toTransactionRecord)
				}
				if len(page.Content) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No records found"))
					return nil
				}
				if err := render(out, format, table.TransactionColumns(kind), page.Content, toTransactionRecord); err != nil {
					return err
				}
				fmt.Fprintln(out, listFooter(view))
				return nil
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml, csv)")
	return cmd
}

// listFooter shows the position and the totals of the filtered set.
func listFooter(view *listing.View) string {
	n, total := view.Position()
	summary := view.Summary()
	label := "Total"
	if summary.Partial {
		label = "Page total"
	}
	return cli.FormatInfo(fmt.Sprintf("Page %d of %d · %s records · %s: %s",
		n, max(total, 1), humanize.Comma(int64(summary.Count)), label, table.Currency(summary.Total)))
}

func pendingTransactionsCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List records still pending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				records, err := a.transactions(kind).ListPending(ctx)
				if err != nil {
					return err
				}
				listing.SortByDateDesc(records)
				return render(cmd.OutOrStdout(), format, table.TransactionColumns(kind), records, toTransactionRecord)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml, csv)")
	return cmd
}

func showTransactionCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				t, err := a.transactions(kind).Get(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(fmt.Sprintf("%s %d", kind.Label(), t.ID), describe(t)))
				return nil
			})
		},
	}
}

func describe(t model.Transaction) string {
	cols := table.TransactionColumns(t.Kind)
	cells := table.Cells(cols, t)
	width := 0
	for _, c := range cols {
		width = max(width, len(c.Header))
	}

	lines := make([]string, 0, len(cols))
	for i, c := range cols {
		if c.Key == "id" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-*s  %s", width, c.Header+":", cells[i]))
	}
	return strings.Join(lines, "\n")
}

// transactionFlags are the editable fields of a record.
type transactionFlags struct {
	description, amount, date string
	category, subcategory     int
	recurring, pending        bool
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "description")
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "amount, e.g. 1234.56")
	cmd.Flags().StringVar(&f.date, "date", "", "entry date for receitas, due date for despesas (YYYY-MM-DD); add defaults to today, so only --date \"\" leaves it blank")
	cmd.Flags().IntVar(&f.category, "category", 0, "category id (0 for none)")
	cmd.Flags().IntVar(&f.subcategory, "subcategory", 0, "subcategory id of the chosen category")
	cmd.Flags().BoolVar(&f.recurring, "recurring", false, "mark as recurring")
	cmd.Flags().BoolVar(&f.pending, "pending", false, "mark as pending")
}

// apply copies every flag the user set onto the form. Unset flags keep the
// loaded values.
func (f *transactionFlags) apply(ctx context.Context, cmd *cobra.Command, tf *form.TransactionForm) error {
	changed := cmd.Flags().Changed
	if changed("description") {
		tf.Input.Description = f.description
	}
	if changed("amount") {
		tf.Input.Amount = f.amount
	}
	if changed("date") {
		tf.Input.Date = f.date
	}
	if changed("recurring") {
		tf.Input.Recurring = f.recurring
	}
	if changed("pending") {
		tf.Input.Pending = f.pending
	}

	if changed("category") {
		if f.category != 0 && !slices.ContainsFunc(tf.Categories, func(c model.Category) bool { return c.ID == f.category }) {
			return common.NewValidationError("category", fmt.Sprintf("category %d is not a %s category", f.category, tf.Kind().CategoryType()))
		}
		if err := tf.SelectCategory(ctx, f.category); err != nil {
			return err
		}
	}
	if changed("subcategory") {
		if f.subcategory != 0 && !slices.ContainsFunc(tf.Subcategories, func(s model.Subcategory) bool { return s.ID == f.subcategory }) {
			return common.NewValidationError("subcategory", fmt.Sprintf("subcategory %d does not belong to the selected category", f.subcategory))
		}
		tf.Input.SubcategoryID = f.subcategory
	}
	return nil
}

func newTransactionForm(a *app, kind model.Kind) *form.TransactionForm {
	return form.NewTransactionForm(a.transactions(kind), a.categories, a.subcategories)
}

func addTransactionCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var fields transactionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new " + strings.ToLower(kind.Label()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				f := newTransactionForm(a, kind)
				if err := f.LoadCategories(ctx); err != nil {
					return err
				}
				f.Input.Date = time.Now().Format(model.DateLayout)
				if err := fields.apply(ctx, cmd, f); err != nil {
					return err
				}

				t, dest, err := f.Submit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s %d: %s %s",
					strings.ToLower(kind.Label()), t.ID, t.Description, table.Currency(t.Amount))))
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Next: "+nextStep(dest)))
				return nil
			})
		},
	}

	fields.register(cmd)
	return cmd
}

func updateTransactionCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var fields transactionFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an existing " + strings.ToLower(kind.Label()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				f := newTransactionForm(a, kind)
				if err := f.LoadCategories(ctx); err != nil {
					return err
				}
				if err := f.LoadForEdit(ctx, id); err != nil {
					return err
				}
				if err := fields.apply(ctx, cmd, f); err != nil {
					return err
				}

				t, _, err := f.Submit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s %d", strings.ToLower(kind.Label()), t.ID)))
				return nil
			})
		},
	}

	fields.register(cmd)
	return cmd
}

func deleteTransactionCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + strings.ToLower(kind.Label()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				ok, err := confirmer(cmd, force).Confirm(ctx, fmt.Sprintf("Delete %s %d?", strings.ToLower(kind.Label()), id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
				if err := a.transactions(kind).Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s %d", strings.ToLower(kind.Label()), id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func browseTransactionsCmd(opts *rootOptions, kind model.Kind) *cobra.Command {
	var (
		filters filterFlags
		theme   string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse records interactively",
		Long: `Open an interactive list. Filters can be cycled with s (status) and
c (category), pages turned with n/p, and records deleted with d.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := filters.criteria()
			if err != nil {
				return err
			}
			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				view, err := filters.view(a.cfg, a.transactions(kind))
				if err != nil {
					return err
				}
				view.SetCriteria(criteria)
				if filters.page > 1 {
					view.SetPage(view.PageIndex() + filters.page - 1)
				}

				cats, err := a.categories.ListByType(ctx, kind.CategoryType())
				if err != nil {
					return fmt.Errorf("failed to load categories: %w", err)
				}

				return tui.Run(ctx, view, kind,
					tui.WithTheme(themes.ByName(theme)),
					tui.WithCategories(cats),
					tui.WithDeleter(a.transactions(kind)),
				)
			})
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin-mocha)")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/dashboard"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/table"
)

var feedColumns = []table.Column[dashboard.FeedItem]{
	{Key: "date", Header: "Date", Format: func(f dashboard.FeedItem) string { return table.Date(f.Date) }},
	{Key: "kind", Header: "Kind", Format: func(f dashboard.FeedItem) string { return f.Kind.Label() }},
	{Key: "description", Header: "Description", Format: func(f dashboard.FeedItem) string { return f.Description }},
	{Key: "amount", Header: "Amount", Format: func(f dashboard.FeedItem) string {
		if f.Kind == model.KindExpense {
			return table.Currency(f.Amount.Neg())
		}
		return table.Currency(f.Amount)
	}},
	{Key: "status", Header: "Status", Format: func(f dashboard.FeedItem) string { return table.Status(f.Kind, f.Pending) }},
}

func dashboardCmd(opts *rootOptions) *cobra.Command {
	var (
		period dashboard.Period
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, balance and recent activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkDate("from", period.Start); err != nil {
				return err
			}
			if err := checkDate("to", period.End); err != nil {
				return err
			}
			if err := period.Validate(); err != nil {
				return common.NewValidationError("period", err.Error())
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				summary, err := dashboard.NewLoader(a.incomes, a.expenses).Load(ctx, period)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				title := "Dashboard"
				if !period.IsZero() {
					title = fmt.Sprintf("Dashboard %s to %s", table.Date(period.Start), table.Date(period.End))
				}
				fmt.Fprintln(out, cli.FormatTitle(title))
				if user, ok := a.session.User(); ok {
					fmt.Fprintf(out, "Hello, %s!\n", user.DisplayName())
				}

				var b strings.Builder
				fmt.Fprintf(&b, "Income:   %s\n", table.Currency(summary.TotalIncome))
				fmt.Fprintf(&b, "Expenses: %s\n", table.Currency(summary.TotalExpense))
				fmt.Fprintf(&b, "Balance:  %s", cli.FormatBalance(table.Currency(summary.Balance), summary.Positive()))
				fmt.Fprintln(out, cli.RenderBox(cli.ChartIcon+" Summary", b.String()))

				recent := summary.Recent
				if limit > 0 && limit < len(recent) {
					recent = recent[:limit]
				}
				if len(recent) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No recent activity"))
					return nil
				}
				fmt.Fprintln(out, cli.FormatTitle("Recent activity ("+strconv.Itoa(len(recent))+")"))
				fmt.Fprintln(out, table.Render(feedColumns, recent))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&period.Start, "from", "", "period start (YYYY-MM-DD); requires --to")
	cmd.Flags().StringVar(&period.End, "to", "", "period end (YYYY-MM-DD); requires --from")
	cmd.Flags().IntVar(&limit, "limit", dashboard.RecentLimit, "maximum recent items to show")
	return cmd
}

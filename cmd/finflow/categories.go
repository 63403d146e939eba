package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/finflow/internal/cli"
	"github.com/Veraticus/finflow/internal/common"
	"github.com/Veraticus/finflow/internal/form"
	"github.com/Veraticus/finflow/internal/model"
	"github.com/Veraticus/finflow/internal/table"
)

func categoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"categorias"},
		Short:   "Manage categories and subcategories",
		Long:    `List, add, update, and delete the categories that classify receitas and despesas.`,
	}

	cmd.AddCommand(listCategoriesCmd(opts))
	cmd.AddCommand(showCategoryCmd(opts))
	cmd.AddCommand(addCategoryCmd(opts))
	cmd.AddCommand(updateCategoryCmd(opts))
	cmd.AddCommand(deleteCategoryCmd(opts))
	cmd.AddCommand(subcategoriesCmd(opts))

	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, common.NewValidationError("id", fmt.Sprintf("invalid id %q", arg))
	}
	return id, nil
}

// nextStep turns a form destination into the command that continues there.
func nextStep(dest form.Destination) string {
	switch dest.View {
	case form.ViewCategoryEdit:
		return fmt.Sprintf("finflow categories subcategories add %d <name>", dest.ID)
	case form.ViewCategoryList:
		return "finflow categories list"
	default:
		return "finflow " + string(dest.View) + " list"
	}
}

func parseTypeFlag(s string) (model.CategoryType, error) {
	if s == "" {
		return "", nil
	}
	t, err := model.ParseCategoryType(s)
	if err != nil {
		return "", common.NewValidationError("type", err.Error())
	}
	return t, nil
}

func listCategoriesCmd(opts *rootOptions) *cobra.Command {
	var typeFlag, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with their subcategory counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			t, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				manager := a.newManager(cmd, confirmer(cmd, false))
				if err := manager.Load(ctx); err != nil {
					return err
				}
				manager.SetFilter(t)

				items := manager.Items()
				if len(items) == 0 && format == outputTable {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No categories found. Use 'finflow categories add' to create one."))
					return nil
				}
				return render(cmd.OutOrStdout(), format, table.CategoryColumns, items, toCategoryRecord)
			})
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "only show RECEITA or DESPESA categories")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml, csv)")
	return cmd
}

func showCategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a category and its subcategories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				manager := a.newManager(cmd, confirmer(cmd, false))
				c, err := manager.Get(ctx, id)
				if err != nil {
					return err
				}
				subs, err := manager.Subcategories(c.ID)
				if err != nil {
					return err
				}
				if err := subs.Load(ctx); err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.RenderBox(c.Name, fmt.Sprintf("ID:   %d\nType: %s", c.ID, c.Type)))
				if len(subs.Items()) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No subcategories"))
					return nil
				}
				fmt.Fprintln(out, table.Render(table.SubcategoryColumns, subs.Items()))
				return nil
			})
		},
	}
}

func addCategoryCmd(opts *rootOptions) *cobra.Command {
	var (
		typeFlag      string
		subcategories []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a category of type RECEITA or DESPESA. Subcategories can be added in
the same step with repeated --subcategory flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				manager := a.newManager(cmd, confirmer(cmd, false))
				f := form.NewCategoryForm(manager)
				f.Name, f.Type = args[0], t

				c, dest, err := f.Submit(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", c.Name, c.ID)))

				if len(subcategories) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("Next: "+nextStep(dest)))
					return nil
				}
				list, err := f.Subcategories()
				if err != nil {
					return err
				}
				for _, name := range subcategories {
					s, err := list.Add(ctx, name)
					if err != nil {
						return fmt.Errorf("failed to add subcategory %q: %w", name, err)
					}
					fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("  Added subcategory %q (id %d)", s.Name, s.ID)))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "category type (RECEITA or DESPESA)")
	cmd.Flags().StringArrayVar(&subcategories, "subcategory", nil, "subcategory to create under the new category (repeatable)")
	return cmd
}

func updateCategoryCmd(opts *rootOptions) *cobra.Command {
	var name, typeFlag string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category or change its type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}
			if name == "" && t == "" {
				return common.NewValidationError("name", "nothing to update; pass --name or --type")
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				f := form.NewCategoryForm(a.newManager(cmd, confirmer(cmd, false)))
				if err := f.LoadForEdit(ctx, id); err != nil {
					return err
				}
				if name != "" {
					f.Name = name
				}
				if t != "" {
					f.Type = t
				}

				c, _, err := f.Submit(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q (%s)", c.Name, c.Type)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "new type (RECEITA or DESPESA)")
	return cmd
}

func deleteCategoryCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category without subcategories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				manager := a.newManager(cmd, confirmer(cmd, force))
				deleted, err := manager.Delete(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func subcategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subcategories",
		Aliases: []string{"subs"},
		Short:   "Manage the subcategories of a category",
	}

	cmd.AddCommand(listSubcategoriesCmd(opts))
	cmd.AddCommand(addSubcategoryCmd(opts))
	cmd.AddCommand(updateSubcategoryCmd(opts))
	cmd.AddCommand(deleteSubcategoryCmd(opts))

	return cmd
}

func listSubcategoriesCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list <category-id>",
		Short: "List the subcategories of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			categoryID, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				list, err := a.newManager(cmd, confirmer(cmd, false)).Subcategories(categoryID)
				if err != nil {
					return err
				}
				if err := list.Load(ctx); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, table.SubcategoryColumns, list.Items(), toSubcategoryRecord)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml, csv)")
	return cmd
}

func addSubcategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category-id> <name>",
		Short: "Add a subcategory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				list, err := a.newManager(cmd, confirmer(cmd, false)).Subcategories(categoryID)
				if err != nil {
					return err
				}
				s, err := list.Add(ctx, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added subcategory %q (id %d)", s.Name, s.ID)))
				return nil
			})
		},
	}
}

func updateSubcategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <category-id> <id> <name>",
		Short: "Rename a subcategory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				list, err := a.newManager(cmd, confirmer(cmd, false)).Subcategories(categoryID)
				if err != nil {
					return err
				}
				s, err := list.Rename(ctx, id, args[2])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Renamed subcategory %d to %q", s.ID, s.Name)))
				return nil
			})
		},
	}
}

func deleteSubcategoryCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <category-id> <id>",
		Short: "Delete a subcategory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}

			return opts.withApp(cmd, true, func(ctx context.Context, a *app) error {
				list, err := a.newManager(cmd, confirmer(cmd, force)).Subcategories(categoryID)
				if err != nil {
					return err
				}
				deleted, err := list.Remove(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted subcategory %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

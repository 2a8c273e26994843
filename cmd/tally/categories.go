package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/storage"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		Long:  `List, add, update, and delete the income and expense categories transactions are filed under.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.updateCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				categories, err := store.ListCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(categories) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No categories found. Use 'tally categories add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(categories))
				for _, cat := range categories {
					desc := cat.Description
					if desc == "" {
						desc = cli.SubtleStyle.Render("(no description)")
					}
					rows = append(rows, []string{strconv.FormatInt(cat.ID, 10), cat.Name, cat.Kind.String(), desc})
				}
				return cli.WriteTable(out, []string{"ID", "Name", "Kind", "Description"}, rows)
			})
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	var (
		kind        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				category, err := store.CreateCategory(cmd.Context(), args[0], description, k)
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (ID: %d)",
					category.Kind, category.Name, category.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "category kind (income, expense)")
	cmd.Flags().StringVar(&description, "description", "", "category description")

	return cmd
}

func (a *app) updateCategoryCmd() *cobra.Command {
	var (
		name        string
		kind        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long:  `Update the name, kind or description of an existing category. Unset flags keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("kind") && !flags.Changed("description") {
				return fmt.Errorf("must specify --name, --kind or --description to update")
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				current, err := store.GetCategory(cmd.Context(), id)
				if err != nil {
					return err
				}
				if current == nil {
					return notFound("category", id)
				}

				if flags.Changed("name") {
					current.Name = name
				}
				if flags.Changed("description") {
					current.Description = description
				}
				if flags.Changed("kind") {
					if current.Kind, err = parseKind(kind); err != nil {
						return err
					}
				}

				if err := store.UpdateCategory(cmd.Context(), id, current.Name, current.Description, current.Kind); err != nil {
					return fmt.Errorf("failed to update category: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new category name")
	cmd.Flags().StringVar(&kind, "kind", "", "new category kind (income, expense)")
	cmd.Flags().StringVar(&description, "description", "", "new category description")

	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long:  `Delete a category. Categories that still have transactions cannot be deleted.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store *storage.SQLiteStorage) error {
				category, err := store.GetCategory(cmd.Context(), id)
				if err != nil {
					return err
				}
				if category == nil {
					return notFound("category", id)
				}

				ok, err := a.confirm(cmd, fmt.Sprintf("Delete category %q?", category.Name))
				if err != nil || !ok {
					return err
				}

				if err := store.DeleteCategory(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
				return nil
			})
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}

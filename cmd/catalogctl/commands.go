package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dias221467/Message_Catalog/internal/importer"
	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a spreadsheet into the taxonomy by category name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := a.importService()
			grouping, err := svc.Load(f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			if dryRun {
				return a.printJSON(dryRunSummary(a.taxonomy, grouping))
			}

			summary, err := svc.Apply(cmd.Context(), services.SystemActor, grouping)
			if summary != nil {
				if perr := a.printJSON(summary); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and group the file without writing")
	return cmd
}

func dryRunSummary(t models.Taxonomy, g *importer.Grouping) *models.ImportSummary {
	return &models.ImportSummary{
		Taxonomy:    t,
		Rows:        g.Rows,
		Categories:  len(g.Categories),
		Skipped:     len(g.Skipped),
		SkippedRows: g.Skipped,
		Warnings:    g.Warnings,
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "analyze FILE",
		Short:       "Show how a spreadsheet's columns resolve, without importing",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			table, err := importer.ParseFile(f, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			return a.printJSON(importer.Analyze(table, 5))
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every category of the taxonomy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the %s taxonomy without --yes", a.taxonomy)
			}
			n, err := a.categoryService().DeleteAll(cmd.Context(), services.SystemActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %d categories from the %s taxonomy\n", n, a.taxonomy)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func newPromoteCmd(a *app) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change the role of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			users := services.NewUserService(a.stores.Users, nil, a.cfg.AppURL)
			user, err := users.SetRole(cmd.Context(), email, models.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the account (required)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role to assign: admin or member")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/registrar/internal/app/migrations"
	"github.com/yigit/registrar/internal/seed"
)

var seedAdmin seed.Admin

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return deps.Migrator.Migrate(cmd.Context(), appMigrations.Files())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default department, courses, terms and admin account",
	Long: `Create the default catalog data if it does not exist yet.

Examples:
  registrar seed
  registrar seed --admin-email admin@example.edu --admin-password 'S3cure!pass'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed.CreateDefaultData(cmd.Context(), deps.Services, seedAdmin, deps.Logger)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdmin.Email, "admin-email", "", "email of the admin account to create")
	seedCmd.Flags().StringVar(&seedAdmin.Password, "admin-password", "", "password of the admin account")
	seedCmd.Flags().StringVar(&seedAdmin.FirstName, "admin-first-name", "System", "first name of the admin account")
	seedCmd.Flags().StringVar(&seedAdmin.LastName, "admin-last-name", "Administrator", "last name of the admin account")
	seedCmd.MarkFlagsRequiredTogether("admin-email", "admin-password")

	rootCmd.AddCommand(migrateCmd, seedCmd)
}

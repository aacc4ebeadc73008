package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/olambola-backend/internal/modules/admin"
	"github.com/georgemunganga/olambola-backend/internal/platform/config"
	"github.com/georgemunganga/olambola-backend/internal/platform/logger"
	"github.com/georgemunganga/olambola-backend/internal/platform/remote"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var (
	bootstrapEmail    string
	bootstrapPassword string
)

// olambola admin bootstrap: create the main admin account.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the main admin account (only one may exist)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Setup(cfg.AppEnv, os.Stdout)

		db, err := remote.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		account, err := admin.NewStore(admin.NewPostgresRepository(db)).
			Bootstrap(cmd.Context(), bootstrapEmail, bootstrapPassword)
		if err != nil {
			return err
		}
		fmt.Printf("✅  Main admin %s created (%s)\n", account.Email, account.ID)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapEmail, "email", "", "main admin email")
	bootstrapCmd.Flags().StringVar(&bootstrapPassword, "password", "", "main admin password")
	bootstrapCmd.MarkFlagRequired("email")
	bootstrapCmd.MarkFlagRequired("password")
}

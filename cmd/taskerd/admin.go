package main

import (
	"errors"
	"fmt"

	"taskerhub/backend/internal/config"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/spf13/cobra"
)

// createAdminCmd bootstraps the first Admin. Registration over HTTP never
// grants the Admin role.
func createAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an Admin user",
		Long: `Create an Admin user in the configured store.

Examples:
  taskerd create-admin --name "Ops" --email ops@example.com --password 'S3cure!pass'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			b, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.store.Close()

			if err := services.ValidatePassword(password); err != nil {
				return err
			}

			role := models.RoleAdmin
			user, err := services.NewUserService(b.store, cfg.Auth.BCryptCost).Create(cmd.Context(), services.UserInput{
				Name:     &name,
				Email:    &email,
				Role:     &role,
				Password: &password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")

	return cmd
}

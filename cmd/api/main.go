package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"example.com/storefront/internal/app"
	"example.com/storefront/internal/model"
	"example.com/storefront/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Storefront API: products, orders and accounts",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), promoteCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the confirmation worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)
			srv, cleanup, err := app.NewServer(cfg, logger)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenDB(cfg)
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return err
			}
			log.Println("migrations applied")
			return nil
		},
	}
}

// promote bootstraps the first admin; after that admins manage roles over HTTP.
func promoteCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Give an existing account the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenDB(cfg)
			if err != nil {
				return err
			}
			profiles := store.NewProfiles(db)
			p, err := profiles.FindByEmail(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("find %s: %w", email, err)
			}
			if _, err := profiles.UpdateRole(cmd.Context(), p.ID, model.RoleAdmin); err != nil {
				return err
			}
			log.Printf("%s is now an admin", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

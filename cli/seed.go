package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gadgethub/auth"
	"gadgethub/config"
	"gadgethub/products"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-load products from a JSON file",
	Long: `Reads a JSON array of products (name, description, price, category,
brand, condition, ...) and inserts them in one batch. Nothing is inserted
if any entry is invalid.`,
	RunE: runSeed,
}

var adminReq auth.RegisterRequest

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a verified admin account",
	RunE:  runCreateAdmin,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "products.json", "path to the products JSON file")
	rootCmd.AddCommand(seedCmd)

	createAdminCmd.Flags().StringVar(&adminReq.Name, "name", "Admin", "display name")
	createAdminCmd.Flags().StringVar(&adminReq.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminReq.Phone, "phone", "", "login phone")
	createAdminCmd.Flags().StringVar(&adminReq.Password, "password", "", "login password")
	for _, f := range []string{"email", "phone", "password"} {
		_ = createAdminCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(createAdminCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	raw, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", seedFile, err)
	}
	var in []products.ProductInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parse %s: %w", seedFile, err)
	}

	return withApp(cmd, func(ctx context.Context, app *App) error {
		created, err := app.Products.BulkCreate(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", len(created))
		return nil
	})
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, app *App) error {
		u, err := app.Auth.CreateAdmin(ctx, adminReq)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", u.Email, u.ID.Hex())
		return nil
	})
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	app, err := NewApp(ctx, cfg, Options{InMemory: inMemory})
	if err != nil {
		return err
	}
	defer app.Close(context.Background())
	return fn(ctx, app)
}

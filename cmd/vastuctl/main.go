package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vastustructural/internal/app"
	"vastustructural/internal/catalog"
	"vastustructural/internal/config"
	"vastustructural/internal/model"
	"vastustructural/internal/payment"
	"vastustructural/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "vastuctl",
	Short: "Operator tool for the VastuStructural portal",
	Long: `vastuctl runs the same service layer as the API server against the configured store.
Lifecycle rules apply exactly as they do in the admin portal.`,
	SilenceUsage: true,
}

// operator is the actor recorded for changes made from the command line.
func operator(cmd *cobra.Command) service.Actor {
	name, _ := cmd.Flags().GetString("as")
	if name == "" {
		name = "vastuctl"
	}
	return service.Actor{Role: model.RoleAdmin, Name: name}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func openServices() (*service.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := app.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	plans, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	gateway := payment.New(payment.Config{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
		BaseURL:   cfg.Payment.APIURL,
	})
	tokens := service.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	return service.NewServices(store, plans, gateway, nil, tokens), nil
}

func init() {
	rootCmd.PersistentFlags().String("as", "", "Name recorded as the author of changes")

	rootCmd.AddCommand(statusesCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(contractorsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "replate-api/docs" // Swagger docs
)

// @title Replate API
// @version 1.0
// @description Surplus food marketplace API: accounts, merchant onboarding, store review and product catalogue.

// @contact.name API Support
// @contact.email support@replate.id

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "replate",
	Short:        "Replate API server",
	Long:         "Replate serves the marketplace REST API and its maintenance commands.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(janitorCmd)
}

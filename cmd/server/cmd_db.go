package main

import (
	"fmt"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/config"
	"replate-api/internal/core/services"

	"github.com/spf13/cobra"
)

// replate migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := boot()
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		if err := models.AutoMigrate(db); err != nil {
			return err
		}
		fmt.Println("Database migration completed")
		return nil
	},
}

// replate seed-admin
var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		if err := models.AutoMigrate(db); err != nil {
			return err
		}

		created, err := config.NewSeeder(db, cfg.Admin).SeedAdmin()
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Admin %s created\n", cfg.Admin.Email)
		} else {
			fmt.Printf("Admin %s already exists\n", cfg.Admin.Email)
		}
		return nil
	},
}

// replate janitor
var janitorCmd = &cobra.Command{
	Use:   "janitor",
	Short: "Delete uploaded files no store or product references",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		defer config.CloseDatabase(db)

		files, err := storage.New(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}

		janitor := services.NewUploadJanitor(repositories.NewStoreRepository(db), files, nil)
		removed, err := janitor.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d orphaned uploads\n", removed)
		return nil
	},
}

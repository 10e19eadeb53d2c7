package main

import (
	"github.com/spf13/cobra"

	"github.com/pcacademy/backend/storage/docstore/postgres"
)

var migrateFunc = postgres.Migrate // mockable

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err = migrateFunc(cmd.Context(), db); err != nil {
			return err
		}
		logger.Println("schema applied")
		return nil
	},
}

package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/storage/docstore/postgres"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "PC Academy admin tasks",
	Long:         "Administrative tasks for the PC Academy backend: migrations, curriculum seeding and user management.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("database-url", "", "Database connection URL (overrides configuration)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(addUserCmd)
}

func openDB(cmd *cobra.Command) (*sqlx.DB, error) {
	conf := core.Conf.Database
	if url, _ := cmd.Flags().GetString("database-url"); url != "" {
		conf.URL = url
	}
	return postgres.Open(conf)
}

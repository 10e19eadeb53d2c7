package main

import (
	"embed"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pcacademy/backend/core/catalog"
	logsvc "github.com/pcacademy/backend/services/logger"
	"github.com/pcacademy/backend/storage/docstore/postgres"
)

//go:embed seed/curriculum.json
var seedFS embed.FS

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load the curriculum into the store",
	Long: "Load learning paths from a JSON file into the document store, replacing " +
		"paths with the same ids. Without an argument the built-in curriculum is loaded.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) > 0 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = seedFS.ReadFile("seed/curriculum.json")
		}
		if err != nil {
			return errors.Wrap(err, "reading curriculum")
		}

		var paths []catalog.LearningPath
		if err = json.Unmarshal(data, &paths); err != nil {
			return errors.Wrap(err, "decoding curriculum")
		}

		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		svc := catalog.NewService(catalog.NewRepository(postgres.NewStore(db)), nil, logsvc.NewStdLogger(logger), 0)
		if err = svc.Seed(cmd.Context(), paths); err != nil {
			return err
		}
		logger.Printf("seeded %d learning path(s)", len(paths))
		return nil
	},
}

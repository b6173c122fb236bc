package main

import (
	"os"

	"github.com/rpggio/jobsite/internal/app"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the fixture projects and records into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(os.Stderr, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := app.Seed(cmd.Context(), rt.db)
			if err != nil {
				return err
			}
			return writeJSON(res)
		},
	}
}

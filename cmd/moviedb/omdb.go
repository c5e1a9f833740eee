package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/varoOP/moviedb/internal/app"
)

var omdbCmd = &cobra.Command{
	Use:   "omdb [title...]",
	Short: "Import movies from OMDb by title or IMDb id",
	Long: `Look up each title on OMDb and import the matches. Titles can be given
as arguments, in a YAML file of the form

  titles:
    - Inception
    - The Matrix

or both. IMDb ids (tt...) can be added with --imdb-id. Titles and ids OMDb
does not know are logged and skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		titlesFile, _ := cmd.Flags().GetString("titles-file")
		imdbIDs, _ := cmd.Flags().GetStringSlice("imdb-id")

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.ImportOMDB(cmd.Context(), args, titlesFile, imdbIDs); err != nil {
			return fmt.Errorf("omdb import failed: %w", err)
		}

		return nil
	},
}

func init() {
	omdbCmd.Flags().String("titles-file", "", "YAML file with a titles list")
	omdbCmd.Flags().StringSlice("imdb-id", nil, "IMDb id to import, repeatable (e.g. tt1375666)")
	rootCmd.AddCommand(omdbCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/moviedb/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import the TMDB popular movies listing",
	Long: `Run walks the TMDB popular movies listing page by page:
1. Ensures the movies, genres and movie_genres tables exist
2. Fetches each page until total_pages, --max-pages or the first failed page
3. Normalizes every record and skips movies already stored (same title and year)
4. Inserts new movies with their genres, one transaction per movie

A page that cannot be fetched ends the run early without failing it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.ImportPopular(cmd.Context()); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		return nil
	},
}

func init() {
	runCmd.Flags().Int("start-page", 0, "first page to fetch (default from config, 1)")
	runCmd.Flags().Int("max-pages", 0, "stop after this many pages (0 = until total_pages)")

	viper.BindPFlag("start_page", runCmd.Flags().Lookup("start-page"))
	viper.BindPFlag("max_pages", runCmd.Flags().Lookup("max-pages"))

	rootCmd.AddCommand(runCmd)
}

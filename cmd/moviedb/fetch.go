package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/varoOP/moviedb/internal/app"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <tmdb-id>...",
	Short: "Import single movies by TMDB id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid tmdb id %q", arg)
			}
			ids = append(ids, id)
		}

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.ImportByID(cmd.Context(), ids); err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/varoOP/moviedb/internal/app"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the movie tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		if err := application.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("init-db failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/seminarhub/core/cmd/api/commands"
)

// @title Seminars API
// @version 1.0
// @description CRUD API for seminar records stored in a JSON file

// @host localhost:3001
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:   "seminars",
		Short: "Seminars API Server",
		Long:  `Seminars serves a list of seminar records from a JSON file over a small REST API.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewSeminarsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

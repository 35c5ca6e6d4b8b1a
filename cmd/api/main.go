package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/board/cmd/api/commands"
)

// @title ProjectBoard API
// @version 1.0
// @description Collection CRUD over the project board document

// @contact.name TaskMaster Support
// @contact.url https://github.com/taskmaster/board

// @license.name MIT
// @license.url https://github.com/taskmaster/board/blob/main/LICENSE

// @host localhost:3001
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:           "board",
		Short:         "ProjectBoard API Server",
		Long:          `ProjectBoard serves users, projects, tasks and sessions stored in a single JSON document over a REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewDBCommand())
	rootCmd.AddCommand(commands.NewRecordsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/db"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "scrumd",
	Short: "Sprint planning and tracking from the terminal",
	Long: `scrumd manages scrum projects: backlog grooming, sprint planning,
capacity allocation and story history, all backed by a local database.
It can also serve the same operations over an HTTP JSON API.`,
}

// initDB initializes the database and panics on error
func initDB() {
	if err := db.Initialize(); err != nil {
		panic(err)
	}
}

// withDB wraps a command function to initialize the database first
func withDB(fn func(*cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		initDB()
		fn(cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(sprintCmd)
	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(backlogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

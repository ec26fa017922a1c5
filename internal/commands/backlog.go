package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/db"
	"github.com/aguilarm/scrumd/internal/tui"
)

var backlogCmd = &cobra.Command{
	Use:   "backlog <project-id>",
	Short: "Browse a project's backlog",
	Long: `Browse a project's backlog, highest sprint priority first. Opens an
interactive browser by default; use --no-ui for plain table output.`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		project, err := db.GetProjectByID(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		stories, err := db.Backlog(id)
		if err != nil {
			fmt.Printf("Error fetching backlog: %v\n", err)
			return
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if !noUI {
			if err := tui.RunBacklogTUI(project.Name, stories); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			return
		}

		if len(stories) == 0 {
			fmt.Println("Backlog is empty. Use 'scrumd story add' to create the first story.")
			return
		}

		fmt.Printf("%-10s %-40s %-6s %-6s %-6s %s\n", "CODE", "TITLE", "PRIO", "BV", "TP", "EST")
		fmt.Println(strings.Repeat("-", 80))
		for _, story := range stories {
			title := story.Title
			if len(title) > 38 {
				title = title[:35] + "..."
			}
			fmt.Printf("%-10s %-40s %-6d %-6d %-6d %d\n",
				story.Code, title, story.SprintPriority,
				story.BusinessValue, story.TechnicalPriority, story.EstimationTime)
		}
	}),
}

func init() {
	backlogCmd.Flags().Bool("no-ui", false, "Plain table output")
}

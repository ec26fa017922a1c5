package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/db"
)

var sprintCmd = &cobra.Command{
	Use:   "sprint",
	Short: "Plan, run and finish sprints",
}

var sprintCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Plan a new sprint",
	Long: `Plan a new sprint for a project. Sprint numbers are assigned in
order and never reused. Only one planned sprint can exist at a time.`,
	Run: withDB(func(cmd *cobra.Command, args []string) {
		projectID, _ := cmd.Flags().GetUint("project")
		duration, _ := cmd.Flags().GetInt("duration")
		sprint, err := db.CreateSprint(projectID, duration)
		if err != nil {
			fmt.Printf("Error creating sprint: %v\n", err)
			return
		}
		fmt.Printf("Planned %s (#%d), %d working days\n", sprint.Name(), sprint.ID, sprint.Duration)
	}),
}

var sprintStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a planned sprint",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		sprint, err := db.StartSprint(id)
		if err != nil {
			fmt.Printf("Error starting sprint: %v\n", err)
			return
		}
		fmt.Printf("%s started: %s -> %s\n", sprint.Name(),
			sprint.StartDate.Format("2006-01-02"), sprint.EndDate.Format("2006-01-02"))
	}),
}

var sprintFinishCmd = &cobra.Command{
	Use:   "finish <id>",
	Short: "Finish a running sprint",
	Long: `Finish a running sprint. Stories sitting in the terminal board
column are closed with it; everything else goes back to the backlog with
a priority boost.`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		actor, _ := cmd.Flags().GetUint("actor")
		result, err := db.FinishSprint(id, actor)
		if err != nil {
			fmt.Printf("Error finishing sprint: %v\n", err)
			return
		}
		fmt.Printf("%s finished: %d stories done, %d returned to backlog\n",
			result.Sprint.Name(), len(result.Finished), len(result.Returned))
	}),
}

var sprintJoinCmd = &cobra.Command{
	Use:   "join <id>",
	Short: "Add a project member to a sprint",
	Run: withDB(func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("Usage: scrumd sprint join <sprint-id> --user <id> --workload <hours/day>")
			return
		}
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		userID, _ := cmd.Flags().GetUint("user")
		workload, _ := cmd.Flags().GetInt("workload")
		member, err := db.AddSprintMember(id, userID, workload)
		if err != nil {
			fmt.Printf("Error adding sprint member: %v\n", err)
			return
		}
		fmt.Printf("Added sprint member #%d with workload %d h/day\n", member.ID, member.Workload)
	}),
}

var sprintWorkloadCmd = &cobra.Command{
	Use:   "workload <member-id>",
	Short: "Change a sprint member's daily workload",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		workload, _ := cmd.Flags().GetInt("workload")
		member, err := db.EditSprintMember(id, workload)
		if err != nil {
			fmt.Printf("Error updating workload: %v\n", err)
			return
		}
		fmt.Printf("Sprint member #%d now at %d h/day\n", member.ID, member.Workload)
	}),
}

var sprintStatusCmd = &cobra.Command{
	Use:   "status <id>",
	Short: "Show a sprint's capacity, members and stories",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		sprint, err := db.GetSprintByID(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		available, err := db.AvailableCapacity(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("%s [%s]\n", sprint.Name(), sprint.Status)
		if sprint.StartDate != nil && sprint.EndDate != nil {
			fmt.Printf("  %s -> %s\n", sprint.StartDate.Format("2006-01-02"), sprint.EndDate.Format("2006-01-02"))
		}
		fmt.Printf("  Capacity: %d h total, %d h available\n\n", sprint.Capacity, available)

		members, err := db.GetSprintMembers(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		for _, m := range members {
			fmt.Printf("  %-30s %d h/day\n", m.User.Email, m.Workload)
		}

		stories, err := db.SprintStories(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(stories) > 0 {
			fmt.Printf("\n%-10s %-40s %-8s %s\n", "CODE", "TITLE", "EST", "COLUMN")
			fmt.Println(strings.Repeat("-", 70))
			for _, story := range stories {
				columns := story.UsType.Columns()
				column := ""
				if story.Column >= 0 && story.Column < len(columns) {
					column = columns[story.Column]
				}
				title := story.Title
				if len(title) > 38 {
					title = title[:35] + "..."
				}
				fmt.Printf("%-10s %-40s %-8d %s\n", story.Code, title, story.EstimationTime, column)
			}
		}
	}),
}

var sprintBurndownCmd = &cobra.Command{
	Use:   "burndown <id>",
	Short: "Print the sprint burndown series",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		points, err := db.SprintBurndown(id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("%-12s %-16s %s\n", "DATE", "IDEAL REMAINING", "WORKED")
		for _, p := range points {
			fmt.Printf("%-12s %-16.1f %d\n", p.Date.Format("2006-01-02"), p.IdealRemaining, p.WorkedHours)
		}
	}),
}

func init() {
	sprintCreateCmd.Flags().Uint("project", 0, "Project ID")
	sprintCreateCmd.Flags().IntP("duration", "d", 10, "Duration in working days")
	sprintCreateCmd.MarkFlagRequired("project")

	sprintFinishCmd.Flags().Uint("actor", 0, "User ID performing the finish")
	sprintFinishCmd.MarkFlagRequired("actor")

	sprintJoinCmd.Flags().Uint("user", 0, "User ID to add")
	sprintJoinCmd.Flags().IntP("workload", "w", 8, "Hours per day (1-12)")
	sprintJoinCmd.MarkFlagRequired("user")

	sprintWorkloadCmd.Flags().IntP("workload", "w", 0, "Hours per day (1-12)")
	sprintWorkloadCmd.MarkFlagRequired("workload")

	sprintCmd.AddCommand(sprintCreateCmd)
	sprintCmd.AddCommand(sprintStartCmd)
	sprintCmd.AddCommand(sprintFinishCmd)
	sprintCmd.AddCommand(sprintJoinCmd)
	sprintCmd.AddCommand(sprintWorkloadCmd)
	sprintCmd.AddCommand(sprintStatusCmd)
	sprintCmd.AddCommand(sprintBurndownCmd)
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/db"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Manage user stories",
}

var storyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a story to the backlog",
	Long: `Add a story to a project's backlog. The story code is built from the
project prefix and a per-project counter; the sprint priority comes from
the business value and technical priority.`,
	Run: withDB(func(cmd *cobra.Command, args []string) {
		projectID, _ := cmd.Flags().GetUint("project")
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		businessValue, _ := cmd.Flags().GetInt("business-value")
		technicalPriority, _ := cmd.Flags().GetInt("technical-priority")
		estimationTime, _ := cmd.Flags().GetInt("estimation")
		usType, _ := cmd.Flags().GetUint("type")

		story, err := db.CreateUserStory(db.CreateStoryRequest{
			ProjectID:         projectID,
			UsTypeID:          usType,
			Title:             title,
			Description:       description,
			BusinessValue:     businessValue,
			TechnicalPriority: technicalPriority,
			EstimationTime:    estimationTime,
		})
		if err != nil {
			fmt.Printf("Error creating story: %v\n", err)
			return
		}
		fmt.Printf("Created %s: %s (priority %d)\n", story.Code, story.Title, story.SprintPriority)
	}),
}

var storyEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a story",
	Long: `Edit a story's fields. Only the flags you pass are changed, and every
change is recorded in the story history with a snapshot of the previous
state.`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		actor, _ := cmd.Flags().GetUint("actor")

		var patch db.StoryPatch
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			patch.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			patch.Description = &v
		}
		if cmd.Flags().Changed("business-value") {
			v, _ := cmd.Flags().GetInt("business-value")
			patch.BusinessValue = &v
		}
		if cmd.Flags().Changed("technical-priority") {
			v, _ := cmd.Flags().GetInt("technical-priority")
			patch.TechnicalPriority = &v
		}
		if cmd.Flags().Changed("estimation") {
			v, _ := cmd.Flags().GetInt("estimation")
			patch.EstimationTime = &v
		}

		story, err := db.EditUserStory(id, patch, actor)
		if err != nil {
			fmt.Printf("Error editing story: %v\n", err)
			return
		}
		fmt.Printf("Updated %s (priority %d)\n", story.Code, story.SprintPriority)
	}),
}

var storyAssignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Assign a story to a sprint or a sprint member",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		actor, _ := cmd.Flags().GetUint("actor")

		if cmd.Flags().Changed("sprint") {
			sprintID, _ := cmd.Flags().GetUint("sprint")
			story, err := db.AssignStoryToSprint(sprintID, id, actor)
			if err != nil {
				fmt.Printf("Error assigning story: %v\n", err)
				return
			}
			fmt.Printf("%s assigned to sprint #%d\n", story.Code, sprintID)
			return
		}
		if cmd.Flags().Changed("member") {
			memberID, _ := cmd.Flags().GetUint("member")
			var target *uint
			if memberID != 0 {
				target = &memberID
			}
			story, err := db.AssignStoryToMember(target, id, actor)
			if err != nil {
				fmt.Printf("Error assigning story: %v\n", err)
				return
			}
			if target == nil {
				fmt.Printf("%s unassigned\n", story.Code)
			} else {
				fmt.Printf("%s assigned to sprint member #%d\n", story.Code, memberID)
			}
			return
		}
		fmt.Println("Pass --sprint <id> or --member <id> (0 unassigns)")
	}),
}

var storyRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Return a story from its sprint to the backlog",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		actor, _ := cmd.Flags().GetUint("actor")
		story, err := db.RemoveStoryFromSprint(id, actor)
		if err != nil {
			fmt.Printf("Error removing story: %v\n", err)
			return
		}
		fmt.Printf("%s returned to the backlog\n", story.Code)
	}),
}

var storyMoveCmd = &cobra.Command{
	Use:   "move <id>",
	Short: "Move a story to another board column",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		column, _ := cmd.Flags().GetInt("column")
		actor, _ := cmd.Flags().GetUint("actor")
		story, err := db.MoveStoryColumn(id, column, actor)
		if err != nil {
			fmt.Printf("Error moving story: %v\n", err)
			return
		}
		columns := story.UsType.Columns()
		fmt.Printf("%s moved to %q\n", story.Code, columns[story.Column])
	}),
}

var storyTaskCmd = &cobra.Command{
	Use:   "task <id>",
	Short: "Log worked hours against a story",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		description, _ := cmd.Flags().GetString("description")
		hours, _ := cmd.Flags().GetInt("hours")
		task, err := db.CreateTask(id, description, hours)
		if err != nil {
			fmt.Printf("Error logging task: %v\n", err)
			return
		}
		fmt.Printf("Logged task #%d: %d h\n", task.ID, task.HoursWorked)
	}),
}

var storyHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a story's change history",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		entries, err := db.StoryHistory(id)
		if err != nil {
			fmt.Printf("Error fetching history: %v\n", err)
			return
		}
		if len(entries) == 0 {
			fmt.Println("No history yet.")
			return
		}
		fmt.Printf("%-6s %-20s %s\n", "ID", "WHEN", "CHANGED")
		fmt.Println(strings.Repeat("-", 60))
		for _, e := range entries {
			fmt.Printf("%-6d %-20s %s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Description)
		}
	}),
}

var storyRestoreCmd = &cobra.Command{
	Use:   "restore <history-id>",
	Short: "Restore a story to the state a history entry captured",
	Long: `Restore a story to the snapshot a history entry carries. The restore
itself is recorded as a new history entry; nothing is rewritten.`,
	Args: cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		actor, _ := cmd.Flags().GetUint("actor")
		story, err := db.RestoreStory(id, actor)
		if err != nil {
			fmt.Printf("Error restoring story: %v\n", err)
			return
		}
		fmt.Printf("%s restored (priority %d)\n", story.Code, story.SprintPriority)
	}),
}

func init() {
	storyAddCmd.Flags().Uint("project", 0, "Project ID")
	storyAddCmd.Flags().StringP("title", "t", "", "Story title")
	storyAddCmd.Flags().StringP("description", "d", "", "Story description")
	storyAddCmd.Flags().Int("business-value", 0, "Business value (0-100)")
	storyAddCmd.Flags().Int("technical-priority", 0, "Technical priority (0-100)")
	storyAddCmd.Flags().IntP("estimation", "e", 0, "Estimation in hours")
	storyAddCmd.Flags().Uint("type", 0, "Story type ID (default type when omitted)")
	storyAddCmd.MarkFlagRequired("project")
	storyAddCmd.MarkFlagRequired("title")

	storyEditCmd.Flags().Uint("actor", 0, "User ID performing the edit")
	storyEditCmd.Flags().StringP("title", "t", "", "New title")
	storyEditCmd.Flags().StringP("description", "d", "", "New description")
	storyEditCmd.Flags().Int("business-value", 0, "New business value")
	storyEditCmd.Flags().Int("technical-priority", 0, "New technical priority")
	storyEditCmd.Flags().IntP("estimation", "e", 0, "New estimation in hours")
	storyEditCmd.MarkFlagRequired("actor")

	storyAssignCmd.Flags().Uint("sprint", 0, "Sprint ID to assign to")
	storyAssignCmd.Flags().Uint("member", 0, "Sprint member ID (0 unassigns)")
	storyAssignCmd.Flags().Uint("actor", 0, "User ID performing the change")
	storyAssignCmd.MarkFlagRequired("actor")

	storyRemoveCmd.Flags().Uint("actor", 0, "User ID performing the change")
	storyRemoveCmd.MarkFlagRequired("actor")

	storyMoveCmd.Flags().IntP("column", "c", 0, "Target column index")
	storyMoveCmd.Flags().Uint("actor", 0, "User ID performing the move")
	storyMoveCmd.MarkFlagRequired("actor")

	storyTaskCmd.Flags().StringP("description", "d", "", "What was done")
	storyTaskCmd.Flags().Int("hours", 1, "Hours worked")

	storyRestoreCmd.Flags().Uint("actor", 0, "User ID performing the restore")
	storyRestoreCmd.MarkFlagRequired("actor")

	storyCmd.AddCommand(storyAddCmd)
	storyCmd.AddCommand(storyEditCmd)
	storyCmd.AddCommand(storyAssignCmd)
	storyCmd.AddCommand(storyRemoveCmd)
	storyCmd.AddCommand(storyMoveCmd)
	storyCmd.AddCommand(storyTaskCmd)
	storyCmd.AddCommand(storyHistoryCmd)
	storyCmd.AddCommand(storyRestoreCmd)
}

package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aguilarm/scrumd/internal/db"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects, members and holidays",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project",
	Long: `Create a new project with a story code prefix and a scrum master.
The scrum master is enrolled as the first project member and a default
story type with To do / Doing / Done columns is set up.`,
	Run: withDB(func(cmd *cobra.Command, args []string) {
		name, _ := cmd.Flags().GetString("name")
		prefix, _ := cmd.Flags().GetString("prefix")
		description, _ := cmd.Flags().GetString("description")
		scrumMaster, _ := cmd.Flags().GetUint("scrum-master")

		project, err := db.CreateProject(db.CreateProjectRequest{
			Name:        name,
			Description: description,
			Prefix:      prefix,
			ScrumMaster: scrumMaster,
		})
		if err != nil {
			fmt.Printf("Error creating project: %v\n", err)
			return
		}
		fmt.Printf("Created project #%d: %s (%s)\n", project.ID, project.Name, project.Prefix)
	}),
}

var projectStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Move a project into progress",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		project, err := db.StartProject(id)
		if err != nil {
			fmt.Printf("Error starting project: %v\n", err)
			return
		}
		fmt.Printf("Project #%d is now in progress\n", project.ID)
	}),
}

var projectFinishCmd = &cobra.Command{
	Use:   "finish <id>",
	Short: "Finish a project",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		project, err := db.FinishProject(id)
		if err != nil {
			fmt.Printf("Error finishing project: %v\n", err)
			return
		}
		fmt.Printf("Project #%d finished\n", project.ID)
	}),
}

var projectCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a project and everything still open in it",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		result, err := db.CancelProject(id)
		if err != nil {
			fmt.Printf("Error cancelling project: %v\n", err)
			return
		}
		fmt.Printf("Project #%d cancelled (%d sprints, %d stories closed with it)\n",
			result.Project.ID, len(result.Sprints), len(result.Stories))
	}),
}

var projectMembersCmd = &cobra.Command{
	Use:   "members <id>",
	Short: "List project members and their roles",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		members, err := db.GetProjectMembers(id)
		if err != nil {
			fmt.Printf("Error fetching members: %v\n", err)
			return
		}
		if len(members) == 0 {
			fmt.Println("No members yet.")
			return
		}
		fmt.Printf("%-4s %-30s %s\n", "ID", "USER", "ROLES")
		fmt.Println(strings.Repeat("-", 60))
		for _, m := range members {
			var roles []string
			for _, r := range m.Roles {
				roles = append(roles, r.Name)
			}
			fmt.Printf("%-4d %-30s %s\n", m.ID, m.User.Email, strings.Join(roles, ", "))
		}
	}),
}

var projectEnrollCmd = &cobra.Command{
	Use:   "enroll <id>",
	Short: "Enroll a user into a project",
	Args:  cobra.ExactArgs(1),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		userID, _ := cmd.Flags().GetUint("user")
		roles, _ := cmd.Flags().GetStringSlice("roles")
		member, err := db.AddProjectMember(id, userID, roles)
		if err != nil {
			fmt.Printf("Error enrolling user: %v\n", err)
			return
		}
		fmt.Printf("Enrolled user #%d as member #%d\n", userID, member.ID)
	}),
}

var projectHolidayCmd = &cobra.Command{
	Use:   "holiday <id> <date>",
	Short: "Register a project holiday (YYYY-MM-DD)",
	Long: `Register a non-working day for the project. Running sprint end dates
are pushed out to compensate. Use --remove to delete a holiday by its ID
instead.`,
	Args: cobra.RangeArgs(1, 2),
	Run: withDB(func(cmd *cobra.Command, args []string) {
		remove, _ := cmd.Flags().GetBool("remove")
		if remove {
			holidayID, err := parseID(args[0])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			if err := db.DeleteHoliday(holidayID); err != nil {
				fmt.Printf("Error removing holiday: %v\n", err)
				return
			}
			fmt.Printf("Holiday #%d removed\n", holidayID)
			return
		}

		if len(args) != 2 {
			fmt.Println("Usage: scrumd project holiday <project-id> <YYYY-MM-DD>")
			return
		}
		id, err := parseID(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		day, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			fmt.Printf("Error: date must be YYYY-MM-DD\n")
			return
		}
		holiday, err := db.CreateHoliday(id, day)
		if err != nil {
			fmt.Printf("Error adding holiday: %v\n", err)
			return
		}
		fmt.Printf("Holiday #%d added for %s\n", holiday.ID, holiday.Date.Format("2006-01-02"))
	}),
}

var userAddCmd = &cobra.Command{
	Use:   "user",
	Short: "Register a user",
	Run: withDB(func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		user, err := db.CreateUser(email, name)
		if err != nil {
			fmt.Printf("Error creating user: %v\n", err)
			return
		}
		fmt.Printf("Created user #%d: %s\n", user.ID, user.Email)
	}),
}

// parseID parses a positional numeric ID argument.
func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func init() {
	projectCreateCmd.Flags().StringP("name", "n", "", "Project name")
	projectCreateCmd.Flags().StringP("prefix", "p", "", "Story code prefix, e.g. PHX")
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectCreateCmd.Flags().Uint("scrum-master", 0, "User ID of the scrum master")
	projectCreateCmd.MarkFlagRequired("name")
	projectCreateCmd.MarkFlagRequired("prefix")
	projectCreateCmd.MarkFlagRequired("scrum-master")

	projectEnrollCmd.Flags().Uint("user", 0, "User ID to enroll")
	projectEnrollCmd.Flags().StringSlice("roles", []string{"Developer"}, "Roles to grant")
	projectEnrollCmd.MarkFlagRequired("user")

	projectHolidayCmd.Flags().Bool("remove", false, "Remove a holiday by its ID")

	userAddCmd.Flags().String("email", "", "Email address")
	userAddCmd.Flags().String("name", "", "Display name")
	userAddCmd.MarkFlagRequired("email")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectStartCmd)
	projectCmd.AddCommand(projectFinishCmd)
	projectCmd.AddCommand(projectCancelCmd)
	projectCmd.AddCommand(projectMembersCmd)
	projectCmd.AddCommand(projectEnrollCmd)
	projectCmd.AddCommand(projectHolidayCmd)

	rootCmd.AddCommand(userAddCmd)
}

package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aguilarm/scrumd/internal/models"
)

// setupTestDB points the package at a throwaway sqlite file.
func setupTestDB(t *testing.T) {
	t.Helper()
	if err := InitializeAt(filepath.Join(t.TempDir(), "scrumd-test.db")); err != nil {
		t.Fatalf("initialize test db: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})
}

var testUserSeq int

// testProject creates a project with a scrum master and returns both.
func testProject(t *testing.T) (*models.Project, *models.User) {
	t.Helper()
	testUserSeq++
	sm, err := CreateUser(fmt.Sprintf("sm%d@example.com", testUserSeq), "Sam Master")
	if err != nil {
		t.Fatalf("create scrum master: %v", err)
	}
	project, err := CreateProject(CreateProjectRequest{
		Name:        "Phoenix",
		Description: "Rewrite of the billing stack",
		Prefix:      "PHX",
		ScrumMaster: sm.ID,
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project, sm
}

// testDeveloper adds a developer member to the project.
func testDeveloper(t *testing.T, projectID uint, email string) *models.User {
	t.Helper()
	user, err := CreateUser(email, "Dev "+email)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := AddProjectMember(projectID, user.ID, []string{models.RoleDeveloper}); err != nil {
		t.Fatalf("add project member: %v", err)
	}
	return user
}

// testStory creates a backlog story with the given priorities.
func testStory(t *testing.T, projectID uint, title string, businessValue, technicalPriority, estimation int) *models.UserStory {
	t.Helper()
	story, err := CreateUserStory(CreateStoryRequest{
		ProjectID:         projectID,
		Title:             title,
		Description:       "as a user I want " + title,
		BusinessValue:     businessValue,
		TechnicalPriority: technicalPriority,
		EstimationTime:    estimation,
	})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	return story
}

func TestInitializeSeedsDefaultRoles(t *testing.T) {
	setupTestDB(t)

	for _, name := range []string{models.RoleScrumMaster, models.RoleProductOwner, models.RoleDeveloper} {
		var role models.Role
		if err := DB.Where("name = ? AND project_id IS NULL", name).First(&role).Error; err != nil {
			t.Errorf("default role %q not seeded: %v", name, err)
		}
	}
}

func TestCreateProjectBootstrapsDefaults(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)

	members, err := GetProjectMembers(project.ID)
	if err != nil {
		t.Fatalf("get members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != sm.ID {
		t.Fatalf("expected one scrum master membership, got %+v", members)
	}
	if len(members[0].Roles) != 1 || members[0].Roles[0].Name != models.RoleScrumMaster {
		t.Errorf("scrum master role not attached: %+v", members[0].Roles)
	}

	usType, err := GetDefaultUserStoryType(project.ID)
	if err != nil {
		t.Fatalf("default story type: %v", err)
	}
	cols := usType.Columns()
	if len(cols) != 3 || cols[2] != "Done" {
		t.Errorf("unexpected default columns: %v", cols)
	}
}

func TestCancelProjectCascades(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	sprint, err := CreateSprint(project.ID, 10)
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	story := testStory(t, project.ID, "login page", 50, 50, 8)

	result, err := CancelProject(project.ID)
	if err != nil {
		t.Fatalf("cancel project: %v", err)
	}
	if result.Project.Status != models.ProjectCancelled {
		t.Errorf("project status = %s, want CANCELLED", result.Project.Status)
	}
	if len(result.Sprints) != 1 || len(result.Stories) != 1 {
		t.Fatalf("cascade touched %d sprints, %d stories; want 1 and 1", len(result.Sprints), len(result.Stories))
	}

	got, err := GetSprintByID(sprint.ID)
	if err != nil {
		t.Fatalf("get sprint: %v", err)
	}
	if got.Status != models.SprintCancelled {
		t.Errorf("sprint status = %s, want CANCELLED", got.Status)
	}
	gotStory, err := GetUserStoryByID(story.ID)
	if err != nil {
		t.Fatalf("get story: %v", err)
	}
	if gotStory.Status != models.StoryCancelled {
		t.Errorf("story status = %s, want CANCELLED", gotStory.Status)
	}
}

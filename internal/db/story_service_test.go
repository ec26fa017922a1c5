package db

import (
	"errors"
	"testing"

	"github.com/aguilarm/scrumd/internal/models"
)

func TestCreateUserStory(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	story := testStory(t, project.ID, "payments", 80, 50, 8)

	t.Run("code from prefix and sequence", func(t *testing.T) {
		if story.Code != "PHX-1" {
			t.Errorf("code = %s, want PHX-1", story.Code)
		}
		second := testStory(t, project.ID, "refunds", 10, 10, 3)
		if second.Code != "PHX-2" {
			t.Errorf("code = %s, want PHX-2", second.Code)
		}
	})

	t.Run("rejected create does not consume a code", func(t *testing.T) {
		_, err := CreateUserStory(CreateStoryRequest{
			ProjectID: project.ID,
			UsTypeID:  9999,
			Title:     "ghost",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		next := testStory(t, project.ID, "ledger", 10, 10, 3)
		if next.Code != "PHX-3" {
			t.Errorf("code = %s, want PHX-3: the sequence must not skip on failure", next.Code)
		}
	})

	t.Run("sprint priority formula", func(t *testing.T) {
		// round(0.6*80 + 0.4*50) = round(68) = 68
		if story.SprintPriority != 68 {
			t.Errorf("sprint priority = %d, want 68", story.SprintPriority)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		if story.Column != 0 || story.Status != models.StoryInProgress {
			t.Errorf("column %d status %s, want 0/IN_PROGRESS", story.Column, story.Status)
		}
		if story.SprintID != nil || story.SprintMemberID != nil {
			t.Error("new story must start unassigned")
		}
	})
}

func TestComputeSprintPriorityRounding(t *testing.T) {
	cases := []struct {
		businessValue, technicalPriority, want int
	}{
		{80, 50, 68},
		{100, 100, 100},
		{0, 0, 0},
		{1, 1, 1},
		{33, 66, 46},  // 19.8 + 26.4 = 46.2
		{34, 66, 47},  // 20.4 + 26.4 = 46.8 -> 47
	}
	for _, c := range cases {
		if got := models.ComputeSprintPriority(c.businessValue, c.technicalPriority); got != c.want {
			t.Errorf("ComputeSprintPriority(%d, %d) = %d, want %d",
				c.businessValue, c.technicalPriority, got, c.want)
		}
	}
}

func TestEditUserStoryPatch(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "reporting", 80, 50, 8)

	t.Run("only touched fields change", func(t *testing.T) {
		title := "reporting v2"
		got, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID)
		if err != nil {
			t.Fatalf("edit story: %v", err)
		}
		if got.Title != "reporting v2" || got.Description != story.Description {
			t.Errorf("patch touched the wrong fields: %+v", got)
		}
		if got.SprintPriority != 68 {
			t.Errorf("priority must not change on a title edit, got %d", got.SprintPriority)
		}
	})

	t.Run("priority recomputed when an input is patched", func(t *testing.T) {
		bv := 100
		got, err := EditUserStory(story.ID, StoryPatch{BusinessValue: &bv}, sm.ID)
		if err != nil {
			t.Fatalf("edit story: %v", err)
		}
		// round(0.6*100 + 0.4*50) = 80
		if got.SprintPriority != 80 {
			t.Errorf("sprint priority = %d, want 80", got.SprintPriority)
		}
	})

	t.Run("column range validated", func(t *testing.T) {
		bad := 7
		if _, err := EditUserStory(story.ID, StoryPatch{Column: &bad}, sm.ID); !errors.Is(err, ErrColumnRange) {
			t.Errorf("err = %v, want ErrColumnRange", err)
		}
	})
}

func TestBacklogOrder(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	low := testStory(t, project.ID, "low", 10, 10, 1)
	high := testStory(t, project.ID, "high", 90, 90, 1)
	mid := testStory(t, project.ID, "mid", 50, 50, 1)

	stories, err := Backlog(project.ID)
	if err != nil {
		t.Fatalf("backlog: %v", err)
	}
	if len(stories) != 3 {
		t.Fatalf("backlog size = %d, want 3", len(stories))
	}
	wantOrder := []uint{high.ID, mid.ID, low.ID}
	for i, want := range wantOrder {
		if stories[i].ID != want {
			t.Errorf("backlog[%d] = %s, wrong order", i, stories[i].Title)
		}
	}
}

func TestAssignStoryToMember(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	sprint, err := CreateSprint(project.ID, 10)
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	dev := testDeveloper(t, project.ID, "dev@example.com")
	member, err := AddSprintMember(sprint.ID, dev.ID, 8)
	if err != nil {
		t.Fatalf("add sprint member: %v", err)
	}
	story := testStory(t, project.ID, "profile page", 40, 40, 5)

	t.Run("member of another sprint rejected", func(t *testing.T) {
		if _, err := AssignStoryToMember(&member.ID, story.ID, sm.ID); !errors.Is(err, ErrMemberNotInSprint) {
			t.Errorf("err = %v, want ErrMemberNotInSprint", err)
		}
	})

	if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign to sprint: %v", err)
	}

	t.Run("bind", func(t *testing.T) {
		got, err := AssignStoryToMember(&member.ID, story.ID, sm.ID)
		if err != nil {
			t.Fatalf("assign to member: %v", err)
		}
		if got.SprintMemberID == nil || *got.SprintMemberID != member.ID {
			t.Errorf("member not bound: %+v", got.SprintMemberID)
		}
		used, err := SprintMemberUsedCapacity(member.ID)
		if err != nil {
			t.Fatalf("used capacity: %v", err)
		}
		if used != 5 {
			t.Errorf("used capacity = %d, want 5", used)
		}
	})

	t.Run("nil unassigns", func(t *testing.T) {
		got, err := AssignStoryToMember(nil, story.ID, sm.ID)
		if err != nil {
			t.Fatalf("unassign member: %v", err)
		}
		if got.SprintMemberID != nil {
			t.Errorf("member still bound: %+v", got.SprintMemberID)
		}
	})
}

func TestRemoveStoryFromSprint(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	sprint, err := CreateSprint(project.ID, 10)
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	dev := testDeveloper(t, project.ID, "dev@example.com")
	if _, err := AddSprintMember(sprint.ID, dev.ID, 8); err != nil {
		t.Fatalf("add sprint member: %v", err)
	}
	story := testStory(t, project.ID, "export", 40, 40, 5)
	if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign story: %v", err)
	}

	t.Run("allowed while planned", func(t *testing.T) {
		got, err := RemoveStoryFromSprint(story.ID, sm.ID)
		if err != nil {
			t.Fatalf("remove story: %v", err)
		}
		if got.SprintID != nil || got.SprintMemberID != nil || got.Column != 0 {
			t.Errorf("story not fully detached: %+v", got)
		}
	})

	t.Run("rejected while in progress", func(t *testing.T) {
		if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
			t.Fatalf("assign story: %v", err)
		}
		if _, err := StartSprint(sprint.ID); err != nil {
			t.Fatalf("start sprint: %v", err)
		}
		if _, err := RemoveStoryFromSprint(story.ID, sm.ID); !errors.Is(err, ErrSprintInProgress) {
			t.Errorf("err = %v, want ErrSprintInProgress", err)
		}
	})
}

func TestTasksAndColumnMoves(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	sprint, err := CreateSprint(project.ID, 10)
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	dev := testDeveloper(t, project.ID, "dev@example.com")
	member, err := AddSprintMember(sprint.ID, dev.ID, 8)
	if err != nil {
		t.Fatalf("add sprint member: %v", err)
	}
	story := testStory(t, project.ID, "imports", 60, 60, 10)
	if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign story: %v", err)
	}
	if _, err := AssignStoryToMember(&member.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign member: %v", err)
	}

	t.Run("task requires a running sprint", func(t *testing.T) {
		if _, err := CreateTask(story.ID, "wire the parser", 3); !errors.Is(err, ErrSprintNotStarted) {
			t.Errorf("err = %v, want ErrSprintNotStarted", err)
		}
	})

	if _, err := StartSprint(sprint.ID); err != nil {
		t.Fatalf("start sprint: %v", err)
	}

	task, err := CreateTask(story.ID, "wire the parser", 3)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Column != 0 || task.Disabled {
		t.Errorf("task snapshot = column %d disabled %v, want 0/false", task.Column, task.Disabled)
	}

	hours, err := StoryWorkedHours(story.ID)
	if err != nil {
		t.Fatalf("worked hours: %v", err)
	}
	if hours != 3 {
		t.Errorf("worked hours = %d, want 3", hours)
	}

	t.Run("column move disables superseded tasks", func(t *testing.T) {
		if _, err := MoveStoryColumn(story.ID, 1, sm.ID); err != nil {
			t.Fatalf("move column: %v", err)
		}
		tasks, err := StoryTasks(story.ID)
		if err != nil {
			t.Fatalf("story tasks: %v", err)
		}
		if len(tasks) != 1 || !tasks[0].Disabled {
			t.Errorf("task not disabled after the move: %+v", tasks)
		}
	})

	t.Run("terminal column does not finish the story", func(t *testing.T) {
		got, err := MoveStoryColumn(story.ID, 2, sm.ID)
		if err != nil {
			t.Fatalf("move column: %v", err)
		}
		if got.Status != models.StoryInProgress {
			t.Errorf("status = %s, the finish decision belongs to the sprint close", got.Status)
		}
	})
}

package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/aguilarm/scrumd/internal/models"
)

func TestRecordStoryChange(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "invoices", 80, 50, 8)

	t.Run("no-op produces no entry", func(t *testing.T) {
		same := *story
		entry, err := RecordStoryChange(story, &same, sm.ID, project.ID)
		if err != nil {
			t.Fatalf("record change: %v", err)
		}
		if entry != nil {
			t.Errorf("identical states must not produce history, got %+v", entry)
		}
	})

	t.Run("description lists exactly the changed fields", func(t *testing.T) {
		changed := *story
		changed.Title = "invoices v2"
		changed.BusinessValue = 90
		entry, err := RecordStoryChange(story, &changed, sm.ID, project.ID)
		if err != nil {
			t.Fatalf("record change: %v", err)
		}
		if entry == nil {
			t.Fatal("expected a history entry")
		}
		if entry.Description != "Title, Business value" {
			t.Errorf("description = %q, want %q", entry.Description, "Title, Business value")
		}
	})

	t.Run("unassigned sprint is a comparable state", func(t *testing.T) {
		changed := *story
		changed.SprintID = new(uint)
		*changed.SprintID = 42
		entry, err := RecordStoryChange(story, &changed, sm.ID, project.ID)
		if err != nil {
			t.Fatalf("record change: %v", err)
		}
		if entry == nil || !strings.Contains(entry.Description, "Sprint") {
			t.Errorf("sprint attach must be tracked, got %+v", entry)
		}
	})

	t.Run("snapshot captures the old state", func(t *testing.T) {
		changed := *story
		changed.Title = "invoices v3"
		entry, err := RecordStoryChange(story, &changed, sm.ID, project.ID)
		if err != nil {
			t.Fatalf("record change: %v", err)
		}
		snap, err := models.DecodeSnapshot(entry.SnapshotJSON)
		if err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.Version != models.SnapshotVersion {
			t.Errorf("snapshot version = %d, want %d", snap.Version, models.SnapshotVersion)
		}
		if snap.Title != "invoices" || snap.Code != story.Code || snap.ProjectID != project.ID {
			t.Errorf("snapshot did not capture the old state: %+v", snap)
		}
		if snap.SprintID != 0 {
			t.Errorf("unassigned sprint must snapshot as 0, got %d", snap.SprintID)
		}
	})

	t.Run("actor must belong to the project", func(t *testing.T) {
		outsider, err := CreateUser("nobody@example.com", "No Body")
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		changed := *story
		changed.Title = "x"
		if _, err := RecordStoryChange(story, &changed, outsider.ID, project.ID); !errors.Is(err, ErrNotProjectMember) {
			t.Errorf("err = %v, want ErrNotProjectMember", err)
		}
	})
}

func TestEditAppendsHistory(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "catalog", 50, 50, 5)

	title := "catalog v2"
	if _, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}
	// Resubmitting the same value is a no-op save and must stay silent.
	if _, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}

	entries, err := StoryHistory(story.ID)
	if err != nil {
		t.Fatalf("story history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history size = %d, want 1", len(entries))
	}
	if entries[0].Description != "Title" {
		t.Errorf("description = %q, want Title", entries[0].Description)
	}
}

func TestRestoreStory(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "gateway", 80, 50, 8)

	bv := 100
	if _, err := EditUserStory(story.ID, StoryPatch{BusinessValue: &bv}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}
	entries, err := StoryHistory(story.ID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("story history: %v (%d entries)", err, len(entries))
	}

	restored, err := RestoreStory(entries[0].ID, sm.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.BusinessValue != 80 {
		t.Errorf("business value = %d, want the pre-edit 80", restored.BusinessValue)
	}
	if restored.SprintPriority != 68 {
		t.Errorf("sprint priority = %d, want 68 recomputed from the snapshot", restored.SprintPriority)
	}

	t.Run("restore itself is recorded", func(t *testing.T) {
		entries, err := StoryHistory(story.ID)
		if err != nil {
			t.Fatalf("story history: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("history size = %d, want 2: the audit trail is forward-only", len(entries))
		}
	})
}

func TestRestoreIntoDeadSprintDetaches(t *testing.T) {
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
	story := testStory(t, project.ID, "ledger", 60, 60, 8)
	if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign story: %v", err)
	}
	if _, err := AssignStoryToMember(&member.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign member: %v", err)
	}
	if _, err := StartSprint(sprint.ID); err != nil {
		t.Fatalf("start sprint: %v", err)
	}
	// Move the story so a snapshot exists that references the sprint,
	// the member and a non-zero column.
	if _, err := MoveStoryColumn(story.ID, 1, sm.ID); err != nil {
		t.Fatalf("move column: %v", err)
	}
	if _, err := FinishSprint(sprint.ID, sm.ID); err != nil {
		t.Fatalf("finish sprint: %v", err)
	}

	// The move snapshot has sprint, member and column 0 captured; pick the
	// entry that recorded the column move (it references the sprint).
	entries, err := StoryHistory(story.ID)
	if err != nil {
		t.Fatalf("story history: %v", err)
	}
	var target *models.UserStoryHistory
	for i := range entries {
		snap, err := models.DecodeSnapshot(entries[i].SnapshotJSON)
		if err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.SprintID == sprint.ID {
			target = &entries[i]
			break
		}
	}
	if target == nil {
		t.Fatal("no snapshot referencing the sprint found")
	}

	restored, err := RestoreStory(target.ID, sm.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.SprintID != nil || restored.SprintMemberID != nil {
		t.Errorf("restore re-attached a finished sprint: sprint %v member %v",
			restored.SprintID, restored.SprintMemberID)
	}
	if restored.Column != 0 {
		t.Errorf("column = %d, want 0 when the snapshot sprint is dead", restored.Column)
	}
}

func TestRestoreClearsDeletedSprintMember(t *testing.T) {
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
	story := testStory(t, project.ID, "exports", 60, 60, 8)
	if _, err := AssignStoryToSprint(sprint.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign story: %v", err)
	}
	if _, err := AssignStoryToMember(&member.ID, story.ID, sm.ID); err != nil {
		t.Fatalf("assign member: %v", err)
	}
	// An edit whose snapshot captures the sprint and the member.
	title := "exports v2"
	if _, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}

	if err := DB.Delete(&models.SprintMember{}, member.ID).Error; err != nil {
		t.Fatalf("delete sprint member: %v", err)
	}

	entries, err := StoryHistory(story.ID)
	if err != nil || len(entries) == 0 {
		t.Fatalf("story history: %v (%d entries)", err, len(entries))
	}
	restored, err := RestoreStory(entries[0].ID, sm.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.SprintID == nil || *restored.SprintID != sprint.ID {
		t.Errorf("the live sprint must stay attached, got %v", restored.SprintID)
	}
	if restored.SprintMemberID != nil {
		t.Errorf("a deleted member must not be re-attached, got %v", restored.SprintMemberID)
	}
}

func TestRestoreRejectsForeignOrMissingType(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "notifications", 50, 50, 5)

	title := "notifications v2"
	if _, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}
	entries, err := StoryHistory(story.ID)
	if err != nil || len(entries) != 1 {
		t.Fatalf("story history: %v (%d entries)", err, len(entries))
	}

	// Rewrite the snapshot to point at another project's story type.
	other, _ := testProject(t)
	otherType, err := GetDefaultUserStoryType(other.ID)
	if err != nil {
		t.Fatalf("other default type: %v", err)
	}
	snap, err := models.DecodeSnapshot(entries[0].SnapshotJSON)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	snap.UsTypeID = otherType.ID
	if err := DB.Model(&entries[0]).Update("snapshot", snap.Encode()).Error; err != nil {
		t.Fatalf("rewrite snapshot: %v", err)
	}

	if _, err := RestoreStory(entries[0].ID, sm.ID); !errors.Is(err, ErrSnapshotTypeGone) {
		t.Errorf("err = %v, want ErrSnapshotTypeGone", err)
	}
}

func TestRestoreRejectsUnknownSnapshotVersion(t *testing.T) {
	setupTestDB(t)
	project, sm := testProject(t)
	story := testStory(t, project.ID, "billing", 50, 50, 5)

	title := "billing v2"
	if _, err := EditUserStory(story.ID, StoryPatch{Title: &title}, sm.ID); err != nil {
		t.Fatalf("edit story: %v", err)
	}
	entries, _ := StoryHistory(story.ID)
	snap, err := models.DecodeSnapshot(entries[0].SnapshotJSON)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	snap.Version = 99
	if err := DB.Model(&entries[0]).Update("snapshot", snap.Encode()).Error; err != nil {
		t.Fatalf("rewrite snapshot: %v", err)
	}

	if _, err := RestoreStory(entries[0].ID, sm.ID); !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("err = %v, want ErrSnapshotVersion", err)
	}
}

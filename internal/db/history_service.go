package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// Display names for the tracked fields, in the order they are compared.
// The comma-joined names of the fields that changed become the entry
// description shown in the history view.
var trackedFields = []struct {
	name    string
	changed func(old, new *models.UserStory) bool
}{
	{"Title", func(o, n *models.UserStory) bool { return o.Title != n.Title }},
	{"Description", func(o, n *models.UserStory) bool { return o.Description != n.Description }},
	{"Business value", func(o, n *models.UserStory) bool { return o.BusinessValue != n.BusinessValue }},
	{"Technical priority", func(o, n *models.UserStory) bool { return o.TechnicalPriority != n.TechnicalPriority }},
	{"Estimation time", func(o, n *models.UserStory) bool { return o.EstimationTime != n.EstimationTime }},
	{"Column", func(o, n *models.UserStory) bool { return o.Column != n.Column }},
	{"Sprint", func(o, n *models.UserStory) bool { return refID(o.SprintID) != refID(n.SprintID) }},
	{"Sprint member", func(o, n *models.UserStory) bool { return refID(o.SprintMemberID) != refID(n.SprintMemberID) }},
}

// refID maps an optional reference onto the 0 sentinel, so "unassigned" is
// a comparable state of its own rather than a skipped one.
func refID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

// RecordStoryChange diffs two story states and appends a history entry
// capturing the old state when at least one tracked field differs. No-op
// saves produce no entry, keeping resubmitted forms out of the history.
func RecordStoryChange(old, new *models.UserStory, actorUserID, projectID uint) (*models.UserStoryHistory, error) {
	return recordStoryChange(DB, old, new, actorUserID, projectID)
}

func recordStoryChange(tx *gorm.DB, old, new *models.UserStory, actorUserID, projectID uint) (*models.UserStoryHistory, error) {
	var changed []string
	for _, f := range trackedFields {
		if f.changed(old, new) {
			changed = append(changed, f.name)
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}

	var member models.ProjectMember
	err := tx.Where("project_id = ? AND user_id = ?", projectID, actorUserID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotProjectMember
	}
	if err != nil {
		return nil, err
	}

	entry := models.UserStoryHistory{
		UserStoryID:     new.ID,
		ProjectMemberID: member.ID,
		Description:     strings.Join(changed, ", "),
		SnapshotJSON:    models.SnapshotOf(old).Encode(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// StoryHistory returns a story's history entries, newest first.
func StoryHistory(storyID uint) ([]models.UserStoryHistory, error) {
	var entries []models.UserStoryHistory
	if err := DB.Where("user_story_id = ?", storyID).Order("id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetHistoryEntry retrieves one history entry by ID.
func GetHistoryEntry(id uint) (*models.UserStoryHistory, error) {
	var entry models.UserStoryHistory
	if err := DB.First(&entry, id).Error; err != nil {
		return nil, ErrNotFound
	}
	return &entry, nil
}

// RestoreStory applies a historical snapshot back onto the live story
// through the normal edit path, so the restore itself appends a new entry
// and the audit trail stays forward-only. A snapshot pointing at a sprint
// that has since been cancelled or finished is restored detached instead:
// sprint and member cleared, column reset. A snapshot whose story type no
// longer exists in the project is rejected.
func RestoreStory(historyID, actorUserID uint) (*models.UserStory, error) {
	entry, err := GetHistoryEntry(historyID)
	if err != nil {
		return nil, err
	}
	snap, err := models.DecodeSnapshot(entry.SnapshotJSON)
	if err != nil {
		return nil, err
	}
	if snap.Version != models.SnapshotVersion {
		return nil, ErrSnapshotVersion
	}

	story, err := GetUserStoryByID(entry.UserStoryID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}

	usType, err := GetUserStoryType(snap.UsTypeID)
	if err != nil || usType.ProjectID != story.ProjectID {
		return nil, ErrSnapshotTypeGone
	}

	old := *story
	story.Code = snap.Code
	story.Title = snap.Title
	story.Description = snap.Description
	story.BusinessValue = snap.BusinessValue
	story.TechnicalPriority = snap.TechnicalPriority
	story.EstimationTime = snap.EstimationTime
	story.UsTypeID = snap.UsTypeID
	story.Column = snap.Column
	story.SprintPriority = models.ComputeSprintPriority(snap.BusinessValue, snap.TechnicalPriority)

	story.SprintID = nil
	story.SprintMemberID = nil
	if snap.SprintID != 0 {
		sprint, err := GetSprintByID(snap.SprintID)
		if err == nil && !sprint.Closed() {
			story.SprintID = &sprint.ID
			if snap.SprintMemberID != 0 {
				// The member may have been removed since the snapshot was
				// taken; re-attach only a member still in this sprint.
				member, err := GetSprintMemberByID(snap.SprintMemberID)
				if err == nil && member.SprintID == sprint.ID {
					story.SprintMemberID = &member.ID
				}
			}
		} else {
			// Re-attaching to a dead sprint is disallowed.
			story.Column = 0
		}
	}

	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(story).Error; err != nil {
			return err
		}
		_, err := recordStoryChange(tx, &old, story, actorUserID, story.ProjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

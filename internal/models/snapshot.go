package models

import "encoding/json"

// SnapshotVersion tags every history snapshot so future field additions
// don't break restores of old entries.
const SnapshotVersion = 1

// StorySnapshot is the typed full-state capture stored with each history
// entry. Sprint and SprintMember use 0 as the "unassigned" sentinel; the
// absence of a sprint is itself a comparable state.
type StorySnapshot struct {
	Version           int    `json:"version"`
	Code              string `json:"code"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	BusinessValue     int    `json:"business_value"`
	TechnicalPriority int    `json:"technical_priority"`
	EstimationTime    int    `json:"estimation_time"`
	UsTypeID          uint   `json:"us_type"`
	Column            int    `json:"column"`
	ProjectID         uint   `json:"project"`
	SprintID          uint   `json:"sprint"`
	SprintMemberID    uint   `json:"sprint_member"`
}

// SnapshotOf captures the tracked fields of a story.
func SnapshotOf(us *UserStory) StorySnapshot {
	snap := StorySnapshot{
		Version:           SnapshotVersion,
		Code:              us.Code,
		Title:             us.Title,
		Description:       us.Description,
		BusinessValue:     us.BusinessValue,
		TechnicalPriority: us.TechnicalPriority,
		EstimationTime:    us.EstimationTime,
		UsTypeID:          us.UsTypeID,
		Column:            us.Column,
		ProjectID:         us.ProjectID,
	}
	if us.SprintID != nil {
		snap.SprintID = *us.SprintID
	}
	if us.SprintMemberID != nil {
		snap.SprintMemberID = *us.SprintMemberID
	}
	return snap
}

// Encode serializes the snapshot for storage.
func (s StorySnapshot) Encode() string {
	raw, _ := json.Marshal(s)
	return string(raw)
}

// DecodeSnapshot parses a stored snapshot.
func DecodeSnapshot(raw string) (StorySnapshot, error) {
	var s StorySnapshot
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}

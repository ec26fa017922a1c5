package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// User story statuses.
const (
	StoryInProgress = "IN_PROGRESS"
	StoryCancelled  = "CANCELLED"
	StoryFinished   = "FINISHED"
)

// SprintPriorityBoost is added to a story's sprint priority when a finished
// sprint pushes it back to the backlog, so carried-over work is not starved
// by fresh high-value stories.
const SprintPriorityBoost = 30

// UserStory is a unit of backlog work. Column indexes into the story
// type's ordered column list; reaching the last column signals completion.
type UserStory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID uint `gorm:"not null;index" json:"project_id"`
	UsTypeID  uint `gorm:"not null" json:"us_type_id"`

	SprintID       *uint `gorm:"index" json:"sprint_id"`
	SprintMemberID *uint `json:"sprint_member_id"`

	Code              string `gorm:"not null" json:"code"`
	Title             string `gorm:"not null" json:"title"`
	Description       string `json:"description"`
	BusinessValue     int    `json:"business_value"`
	TechnicalPriority int    `json:"technical_priority"`
	EstimationTime    int    `json:"estimation_time"` // hours
	SprintPriority    int    `json:"sprint_priority"` // derived, see ComputeSprintPriority
	Column            int    `gorm:"default:0" json:"column"`
	Status            string `gorm:"default:IN_PROGRESS" json:"status"`

	UsType UserStoryType `json:"us_type"`
}

// Closed reports whether the story can no longer be modified.
func (u *UserStory) Closed() bool {
	return u.Status == StoryCancelled || u.Status == StoryFinished
}

// ComputeSprintPriority blends business value and technical priority into
// the backlog sort key. Business value weighs higher because it reflects
// stakeholder-visible priority.
func ComputeSprintPriority(businessValue, technicalPriority int) int {
	return int(math.Round(0.6*float64(businessValue) + 0.4*float64(technicalPriority)))
}

// UserStoryTask is the unit of logged work. Column is a snapshot taken at
// creation; the task is disabled once the parent story moves on.
type UserStoryTask struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserStoryID    uint   `gorm:"not null;index" json:"user_story_id"`
	SprintID       uint   `gorm:"not null" json:"sprint_id"`
	SprintMemberID uint   `gorm:"not null" json:"sprint_member_id"`
	Description    string `gorm:"not null" json:"description"`
	HoursWorked    int    `gorm:"not null" json:"hours_worked"`
	Column         int    `gorm:"not null" json:"column"`
	Disabled       bool   `gorm:"default:false" json:"disabled"`
}

// UserStoryHistory is an append-only record of a story's prior state.
// Entries are never mutated or deleted.
type UserStoryHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserStoryID     uint   `gorm:"not null;index" json:"user_story_id"`
	ProjectMemberID uint   `gorm:"not null" json:"project_member_id"`
	Description     string `gorm:"not null" json:"description"`
	SnapshotJSON    string `gorm:"column:snapshot;not null" json:"-"`
}

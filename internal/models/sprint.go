package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Sprint statuses.
const (
	SprintPlanned    = "PLANNED"
	SprintInProgress = "IN_PROGRESS"
	SprintCancelled  = "CANCELLED"
	SprintFinished   = "FINISHED"
)

// Workload bounds for sprint members, in hours per day.
const (
	MinWorkload = 1
	MaxWorkload = 12
)

// Sprint is a fixed-duration iteration. At most one sprint per project may
// be PLANNED and at most one IN_PROGRESS at any time. Capacity is derived
// additively from member workloads, never recomputed from scratch.
type Sprint struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Number    int    `gorm:"not null" json:"number"`
	Status    string `gorm:"default:PLANNED" json:"status"`
	Duration  int    `gorm:"not null" json:"duration"` // working days
	Capacity  int    `gorm:"default:0" json:"capacity"` // hours

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"` // computed, never user-entered

	Members []SprintMember `gorm:"foreignKey:SprintID" json:"members,omitempty"`
}

// Name returns the display name, e.g. "Sprint 3".
func (s *Sprint) Name() string {
	return fmt.Sprintf("Sprint %d", s.Number)
}

// Closed reports whether the sprint can no longer be modified.
func (s *Sprint) Closed() bool {
	return s.Status == SprintCancelled || s.Status == SprintFinished
}

// SprintMember is a project member's capacity allocation within one sprint.
type SprintMember struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SprintID uint `gorm:"not null;index" json:"sprint_id"`
	UserID   uint `gorm:"not null" json:"user_id"`
	Workload int  `gorm:"not null" json:"workload"` // hours per day, 1-12

	User User `json:"user"`
}

// Capacity returns this member's total hours for the given sprint duration.
func (m *SprintMember) Capacity(duration int) int {
	return m.Workload * duration
}

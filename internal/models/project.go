package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Project statuses.
const (
	ProjectCreated    = "CREATED"
	ProjectInProgress = "IN_PROGRESS"
	ProjectCancelled  = "CANCELLED"
	ProjectFinished   = "FINISHED"
)

// Default role names. Roles with a nil ProjectID are global defaults seeded
// at migration time.
const (
	RoleScrumMaster  = "Scrum Master"
	RoleProductOwner = "Product Owner"
	RoleDeveloper    = "Developer"
)

// Project groups members, holidays, user story types and sprints.
type Project struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Description string     `json:"description"`
	Prefix      string     `gorm:"not null" json:"prefix"`
	Status      string     `gorm:"default:CREATED" json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	// StoryCount is the per-project sequence used to build story codes
	// like "P1-7". It only ever grows.
	StoryCount uint `gorm:"default:0" json:"story_count"`

	// Relationships
	Holidays []Holiday       `gorm:"foreignKey:ProjectID" json:"holidays,omitempty"`
	Members  []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	UsTypes  []UserStoryType `gorm:"foreignKey:ProjectID" json:"us_types,omitempty"`
	Sprints  []Sprint        `gorm:"foreignKey:ProjectID" json:"sprints,omitempty"`
}

// User is the minimal identity this tool stores; accounts themselves live
// in an external identity provider.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email string `gorm:"unique;not null" json:"email"`
	Name  string `json:"name"`
}

// Role names are treated as opaque strings by capacity and permission
// checks. ProjectID is nil for the seeded default roles.
type Role struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	ProjectID   *uint  `json:"project_id"`

	Members []ProjectMember `gorm:"many2many:project_member_roles;" json:"-"`
}

// ProjectMember links a user to a project with one or more roles.
type ProjectMember struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID uint `gorm:"not null;index" json:"project_id"`
	UserID    uint `gorm:"not null" json:"user_id"`

	User  User   `json:"user"`
	Roles []Role `gorm:"many2many:project_member_roles;" json:"roles"`
}

// Holiday is a project-declared non-working date. The (project, date) pair
// is unique.
type Holiday struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_date" json:"project_id"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_project_date" json:"date"`
}

// UserStoryType defines the ordered workflow columns stories of that type
// move through. Columns are stored JSON-encoded; sqlite has no array type.
type UserStoryType struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProjectID   uint   `gorm:"not null;index" json:"project_id"`
	Name        string `gorm:"not null" json:"name"`
	ColumnsJSON string `gorm:"column:columns;not null" json:"-"`
}

// Columns decodes the ordered workflow column names.
func (t *UserStoryType) Columns() []string {
	var cols []string
	if err := json.Unmarshal([]byte(t.ColumnsJSON), &cols); err != nil {
		return nil
	}
	return cols
}

// SetColumns encodes the ordered workflow column names.
func (t *UserStoryType) SetColumns(cols []string) {
	raw, _ := json.Marshal(cols)
	t.ColumnsJSON = string(raw)
}

// DefaultStoryTypeColumns are the columns of the story type every new
// project starts with.
var DefaultStoryTypeColumns = []string{"To do", "Doing", "Done"}

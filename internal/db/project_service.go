package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// CreateProjectRequest holds the data needed to create a new project
type CreateProjectRequest struct {
	Name        string
	Description string
	Prefix      string
	ScrumMaster uint // user id
}

// CreateProject creates a project with its scrum master membership and the
// default user story type.
func CreateProject(req CreateProjectRequest) (*models.Project, error) {
	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Prefix:      req.Prefix,
		Status:      models.ProjectCreated,
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		var scrumRole models.Role
		if err := tx.Where("name = ? AND project_id IS NULL", models.RoleScrumMaster).First(&scrumRole).Error; err != nil {
			return fmt.Errorf("scrum master role not seeded: %w", err)
		}
		member := models.ProjectMember{ProjectID: project.ID, UserID: req.ScrumMaster}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		if err := tx.Model(&member).Association("Roles").Append(&scrumRole); err != nil {
			return err
		}

		usType := models.UserStoryType{ProjectID: project.ID, Name: "User Story"}
		usType.SetColumns(models.DefaultStoryTypeColumns)
		return tx.Create(&usType).Error
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// GetProjectByID retrieves a project by ID
func GetProjectByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := DB.First(&project, id).Error; err != nil {
		return nil, fmt.Errorf("project #%d: %w", id, ErrNotFound)
	}
	return &project, nil
}

// StartProject moves a project into progress.
func StartProject(projectID uint) (*models.Project, error) {
	project, err := GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	project.Status = models.ProjectInProgress
	project.StartDate = &now
	if err := DB.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// FinishProject marks a project as finished.
func FinishProject(projectID uint) (*models.Project, error) {
	project, err := GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	project.Status = models.ProjectFinished
	project.EndDate = &now
	if err := DB.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// CancelProjectResult lists everything a project cancellation touched, for
// logging and notification.
type CancelProjectResult struct {
	Project *models.Project
	Sprints []models.Sprint
	Stories []models.UserStory
}

// CancelProject cancels a project and cascades to its unfinished sprints
// and stories in one transaction.
func CancelProject(projectID uint) (*CancelProjectResult, error) {
	project, err := GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}

	result := CancelProjectResult{Project: project}
	now := time.Now()

	err = DB.Transaction(func(tx *gorm.DB) error {
		project.Status = models.ProjectCancelled
		project.EndDate = &now
		if err := tx.Save(project).Error; err != nil {
			return err
		}

		var sprints []models.Sprint
		if err := tx.Where("project_id = ? AND status IN ?", projectID,
			[]string{models.SprintPlanned, models.SprintInProgress}).Find(&sprints).Error; err != nil {
			return err
		}
		for i := range sprints {
			sprints[i].Status = models.SprintCancelled
			if err := tx.Save(&sprints[i]).Error; err != nil {
				return err
			}
		}
		result.Sprints = sprints

		var stories []models.UserStory
		if err := tx.Where("project_id = ? AND status = ?", projectID, models.StoryInProgress).Find(&stories).Error; err != nil {
			return err
		}
		for i := range stories {
			stories[i].Status = models.StoryCancelled
			if err := tx.Save(&stories[i]).Error; err != nil {
				return err
			}
		}
		result.Stories = stories
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// CreateUser registers a user coming from the identity provider.
func CreateUser(email, name string) (*models.User, error) {
	user := models.User{Email: email, Name: name}
	if err := DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// AddProjectMember adds a user to a project with the given role names.
func AddProjectMember(projectID, userID uint, roleNames []string) (*models.ProjectMember, error) {
	if _, err := GetProjectByID(projectID); err != nil {
		return nil, err
	}

	member := models.ProjectMember{ProjectID: projectID, UserID: userID}
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		for _, name := range roleNames {
			var role models.Role
			err := tx.Where("name = ? AND (project_id IS NULL OR project_id = ?)", name, projectID).First(&role).Error
			if err != nil {
				return fmt.Errorf("role %q: %w", name, ErrNotFound)
			}
			if err := tx.Model(&member).Association("Roles").Append(&role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetProjectMembers returns the memberships of a project with users and
// roles preloaded.
func GetProjectMembers(projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := DB.Where("project_id = ?", projectID).
		Preload("User").
		Preload("Roles").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// getProjectMember returns a user's membership in a project.
func getProjectMember(projectID, userID uint) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := DB.Where("project_id = ? AND user_id = ?", projectID, userID).
		Preload("Roles").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotProjectMember
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// holdsOnlyRole reports whether the membership carries exactly one role
// with the given name.
func holdsOnlyRole(member *models.ProjectMember, roleName string) bool {
	return len(member.Roles) == 1 && member.Roles[0].Name == roleName
}

// CreateUserStoryType creates a story type with an ordered column list.
func CreateUserStoryType(projectID uint, name string, columns []string) (*models.UserStoryType, error) {
	if _, err := GetProjectByID(projectID); err != nil {
		return nil, err
	}
	usType := models.UserStoryType{ProjectID: projectID, Name: name}
	usType.SetColumns(columns)
	if err := DB.Create(&usType).Error; err != nil {
		return nil, err
	}
	return &usType, nil
}

// GetUserStoryType retrieves a story type by ID
func GetUserStoryType(id uint) (*models.UserStoryType, error) {
	var usType models.UserStoryType
	if err := DB.First(&usType, id).Error; err != nil {
		return nil, fmt.Errorf("user story type #%d: %w", id, ErrNotFound)
	}
	return &usType, nil
}

// GetDefaultUserStoryType returns the story type created with the project.
func GetDefaultUserStoryType(projectID uint) (*models.UserStoryType, error) {
	var usType models.UserStoryType
	err := DB.Where("project_id = ?", projectID).Order("id ASC").First(&usType).Error
	if err != nil {
		return nil, fmt.Errorf("default story type for project #%d: %w", projectID, ErrNotFound)
	}
	return &usType, nil
}

// CreateHoliday declares a non-working date for the project and, inside the
// same transaction, recalculates the end date of the in-progress sprint so
// the projection stays consistent with the calendar.
func CreateHoliday(projectID uint, date time.Time) (*models.Holiday, error) {
	if _, err := GetProjectByID(projectID); err != nil {
		return nil, err
	}

	day := truncateToDay(date)
	var existing models.Holiday
	if err := DB.Where("project_id = ? AND date = ?", projectID, day).First(&existing).Error; err == nil {
		return nil, ErrHolidayExists
	}

	holiday := models.Holiday{ProjectID: projectID, Date: day}
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&holiday).Error; err != nil {
			return err
		}
		return recalculateCurrentSprint(tx, projectID)
	})
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

// DeleteHoliday removes a holiday and recalculates the in-progress
// sprint's end date.
func DeleteHoliday(holidayID uint) error {
	var holiday models.Holiday
	if err := DB.First(&holiday, holidayID).Error; err != nil {
		return fmt.Errorf("holiday #%d: %w", holidayID, ErrNotFound)
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&holiday).Error; err != nil {
			return err
		}
		return recalculateCurrentSprint(tx, holiday.ProjectID)
	})
}

// GetHolidays returns a project's holidays ordered by date.
func GetHolidays(projectID uint) ([]models.Holiday, error) {
	var holidays []models.Holiday
	if err := DB.Where("project_id = ?", projectID).Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// CreateSprint creates the next sprint for a project in the planned state.
// Only one sprint may be in planning at a time; numbers are a monotonic
// per-project sequence and are never reused, even after a cancellation.
func CreateSprint(projectID uint, duration int) (*models.Sprint, error) {
	if duration < 1 {
		return nil, ErrDurationRange
	}
	if _, err := GetProjectByID(projectID); err != nil {
		return nil, err
	}

	var sprint models.Sprint
	err := DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Sprint{}).
			Where("project_id = ? AND status = ?", projectID, models.SprintPlanned).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPlannedSprintExists
		}

		number := 1
		var last models.Sprint
		err := tx.Where("project_id = ?", projectID).Order("number DESC").First(&last).Error
		if err == nil {
			number = last.Number + 1
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sprint = models.Sprint{
			ProjectID: projectID,
			Number:    number,
			Status:    models.SprintPlanned,
			Duration:  duration,
			Capacity:  0,
		}
		return tx.Create(&sprint).Error
	})
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// GetSprintByID retrieves a sprint by ID
func GetSprintByID(id uint) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := DB.First(&sprint, id).Error; err != nil {
		return nil, fmt.Errorf("sprint #%d: %w", id, ErrNotFound)
	}
	return &sprint, nil
}

// GetLastSprint returns the highest-numbered sprint of a project, or nil.
func GetLastSprint(projectID uint) (*models.Sprint, error) {
	var sprint models.Sprint
	err := DB.Where("project_id = ?", projectID).Order("number DESC").First(&sprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// GetSprints lists a project's sprints by number.
func GetSprints(projectID uint) ([]models.Sprint, error) {
	var sprints []models.Sprint
	if err := DB.Where("project_id = ?", projectID).Order("number ASC").Find(&sprints).Error; err != nil {
		return nil, err
	}
	return sprints, nil
}

// ExistsPlannedSprint reports whether the project has a sprint in planning.
func ExistsPlannedSprint(projectID uint) (bool, error) {
	var count int64
	err := DB.Model(&models.Sprint{}).
		Where("project_id = ? AND status = ?", projectID, models.SprintPlanned).
		Count(&count).Error
	return count > 0, err
}

// ExistsActiveSprint reports whether the project has a sprint in progress.
func ExistsActiveSprint(projectID uint) (bool, error) {
	var count int64
	err := DB.Model(&models.Sprint{}).
		Where("project_id = ? AND status = ?", projectID, models.SprintInProgress).
		Count(&count).Error
	return count > 0, err
}

// GetCurrentSprint returns the project's in-progress sprint, or nil. The
// one-active-sprint invariant is enforced at write time in StartSprint, so
// this lookup can trust the status column.
func GetCurrentSprint(projectID uint) (*models.Sprint, error) {
	var sprint models.Sprint
	err := DB.Where("project_id = ? AND status = ?", projectID, models.SprintInProgress).First(&sprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sprint, nil
}

// StartSprint moves a planned sprint into progress, stamping the start
// date and computing the end date from the project calendar. Every
// precondition failure returns a distinct error and leaves the sprint
// untouched.
func StartSprint(sprintID uint) (*models.Sprint, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintPlanned {
		return nil, ErrSprintNotPlanned
	}

	err = DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Sprint{}).
			Where("project_id = ? AND status = ?", sprint.ProjectID, models.SprintInProgress).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveSprintExists
		}

		if err := tx.Model(&models.UserStory{}).
			Where("sprint_id = ?", sprint.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrSprintNoStories
		}

		if err := tx.Model(&models.SprintMember{}).
			Where("sprint_id = ?", sprint.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrSprintNoMembers
		}

		start := truncateToDay(time.Now())
		end, err := addWorkingDays(tx, sprint.ProjectID, start, sprint.Duration)
		if err != nil {
			return err
		}

		sprint.Status = models.SprintInProgress
		sprint.StartDate = &start
		sprint.EndDate = &end
		return tx.Save(sprint).Error
	})
	if err != nil {
		return nil, err
	}
	return sprint, nil
}

// RecalculateSprintEndDate recomputes the end date of an in-progress
// sprint from its stored start date. Called when the holiday calendar
// changes; a full recomputation is correct regardless of how many
// holidays were added or removed.
func RecalculateSprintEndDate(sprintID uint) (*models.Sprint, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	if err := recalculateEndDate(DB, sprint); err != nil {
		return nil, err
	}
	return sprint, nil
}

func recalculateEndDate(tx *gorm.DB, sprint *models.Sprint) error {
	if sprint.Status != models.SprintInProgress || sprint.StartDate == nil {
		return ErrSprintNotStarted
	}
	end, err := addWorkingDays(tx, sprint.ProjectID, *sprint.StartDate, sprint.Duration)
	if err != nil {
		return err
	}
	sprint.EndDate = &end
	return tx.Save(sprint).Error
}

// recalculateCurrentSprint refreshes the end date of the project's
// in-progress sprint, if there is one.
func recalculateCurrentSprint(tx *gorm.DB, projectID uint) error {
	var sprint models.Sprint
	err := tx.Where("project_id = ? AND status = ?", projectID, models.SprintInProgress).First(&sprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return recalculateEndDate(tx, &sprint)
}

// FinishSprintResult lists the stories a finish cascade touched.
type FinishSprintResult struct {
	Sprint   *models.Sprint
	Finished []models.UserStory // reached the terminal column
	Returned []models.UserStory // pushed back to the backlog with a boost
}

// FinishSprint closes a sprint. Stories that reached the terminal workflow
// column are marked finished and keep their sprint; everything else goes
// back to the backlog with column reset and a priority boost so
// carried-over work is re-planned ahead of untouched backlog items. Each
// mutation is run through the history engine attributed to the actor.
func FinishSprint(sprintID, actorUserID uint) (*FinishSprintResult, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintInProgress {
		return nil, ErrSprintNotStarted
	}

	result := FinishSprintResult{Sprint: sprint}
	err = DB.Transaction(func(tx *gorm.DB) error {
		now := truncateToDay(time.Now())
		sprint.Status = models.SprintFinished
		sprint.EndDate = &now
		if err := tx.Save(sprint).Error; err != nil {
			return err
		}

		finished, returned, err := finishSprintStories(tx, sprint, actorUserID)
		if err != nil {
			return err
		}
		result.Finished = finished
		result.Returned = returned
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// finishSprintStories applies the finish cascade to every story assigned
// to the sprint and returns the affected stories split by outcome.
func finishSprintStories(tx *gorm.DB, sprint *models.Sprint, actorUserID uint) (finished, returned []models.UserStory, err error) {
	var stories []models.UserStory
	if err := tx.Where("sprint_id = ? AND status = ?", sprint.ID, models.StoryInProgress).
		Preload("UsType").Find(&stories).Error; err != nil {
		return nil, nil, err
	}

	for i := range stories {
		story := &stories[i]
		old := *story

		columns := story.UsType.Columns()
		if len(columns) > 0 && story.Column == len(columns)-1 {
			story.Status = models.StoryFinished
			finished = append(finished, *story)
		} else {
			story.SprintID = nil
			story.SprintMemberID = nil
			story.Column = 0
			story.SprintPriority += models.SprintPriorityBoost
			returned = append(returned, *story)
		}

		if err := tx.Save(story).Error; err != nil {
			return nil, nil, err
		}
		if _, err := recordStoryChange(tx, &old, story, actorUserID, story.ProjectID); err != nil {
			return nil, nil, err
		}
	}
	return finished, returned, nil
}

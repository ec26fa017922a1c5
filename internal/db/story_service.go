package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// CreateStoryRequest holds the data needed to create a new user story
type CreateStoryRequest struct {
	ProjectID         uint
	UsTypeID          uint // 0 picks the project's default type
	Title             string
	Description       string
	BusinessValue     int
	TechnicalPriority int
	EstimationTime    int
}

// CreateUserStory creates a backlog story. The code is built from the
// project prefix and a per-project sequence; the sprint priority is
// derived from business value and technical priority.
func CreateUserStory(req CreateStoryRequest) (*models.UserStory, error) {
	if _, err := GetProjectByID(req.ProjectID); err != nil {
		return nil, err
	}

	usTypeID := req.UsTypeID
	if usTypeID == 0 {
		usType, err := GetDefaultUserStoryType(req.ProjectID)
		if err != nil {
			return nil, err
		}
		usTypeID = usType.ID
	} else if _, err := GetUserStoryType(usTypeID); err != nil {
		return nil, err
	}

	// The sequence read-increment-write happens inside the transaction so
	// two concurrent creates cannot mint the same code.
	var story models.UserStory
	err := DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, req.ProjectID).Error; err != nil {
			return fmt.Errorf("project #%d: %w", req.ProjectID, ErrNotFound)
		}
		project.StoryCount++
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		story = models.UserStory{
			ProjectID:         req.ProjectID,
			UsTypeID:          usTypeID,
			Code:              fmt.Sprintf("%s-%d", project.Prefix, project.StoryCount),
			Title:             req.Title,
			Description:       req.Description,
			BusinessValue:     req.BusinessValue,
			TechnicalPriority: req.TechnicalPriority,
			EstimationTime:    req.EstimationTime,
			SprintPriority:    models.ComputeSprintPriority(req.BusinessValue, req.TechnicalPriority),
			Column:            0,
			Status:            models.StoryInProgress,
		}
		return tx.Create(&story).Error
	})
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// GetUserStoryByID retrieves a story by ID with its type preloaded.
func GetUserStoryByID(id uint) (*models.UserStory, error) {
	var story models.UserStory
	if err := DB.Preload("UsType").First(&story, id).Error; err != nil {
		return nil, fmt.Errorf("user story #%d: %w", id, ErrNotFound)
	}
	return &story, nil
}

// StoryPatch carries the fields an edit wants to touch; nil fields are
// left alone. The sprint priority is recomputed only when business value
// or technical priority is present in the patch.
type StoryPatch struct {
	Title             *string
	Description       *string
	BusinessValue     *int
	TechnicalPriority *int
	EstimationTime    *int
	Column            *int
}

// EditUserStory applies a patch to a story and appends a history entry
// attributed to the actor when anything tracked actually changed.
func EditUserStory(storyID uint, patch StoryPatch, actorUserID uint) (*models.UserStory, error) {
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}

	old := *story
	if patch.Title != nil {
		story.Title = *patch.Title
	}
	if patch.Description != nil {
		story.Description = *patch.Description
	}
	if patch.BusinessValue != nil {
		story.BusinessValue = *patch.BusinessValue
	}
	if patch.TechnicalPriority != nil {
		story.TechnicalPriority = *patch.TechnicalPriority
	}
	if patch.EstimationTime != nil {
		story.EstimationTime = *patch.EstimationTime
	}
	if patch.Column != nil {
		columns := story.UsType.Columns()
		if *patch.Column < 0 || *patch.Column >= len(columns) {
			return nil, ErrColumnRange
		}
		story.Column = *patch.Column
	}
	if patch.BusinessValue != nil || patch.TechnicalPriority != nil {
		story.SprintPriority = models.ComputeSprintPriority(story.BusinessValue, story.TechnicalPriority)
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

// Backlog returns the project's unassigned active stories ordered by
// sprint priority, highest first. This is the order stories are proposed
// for sprint assignment in.
func Backlog(projectID uint) ([]models.UserStory, error) {
	var stories []models.UserStory
	err := DB.Where("project_id = ? AND sprint_id IS NULL AND status = ?", projectID, models.StoryInProgress).
		Order("sprint_priority DESC, id ASC").
		Preload("UsType").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// AssignableStories returns the stories that can still be pulled into the
// sprint: active and not attached to any sprint.
func AssignableStories(projectID, sprintID uint) ([]models.UserStory, error) {
	if _, err := GetSprintByID(sprintID); err != nil {
		return nil, err
	}
	return Backlog(projectID)
}

// SprintStories returns the stories currently assigned to a sprint.
func SprintStories(sprintID uint) ([]models.UserStory, error) {
	var stories []models.UserStory
	err := DB.Where("sprint_id = ?", sprintID).
		Order("sprint_priority DESC, id ASC").
		Preload("UsType").
		Find(&stories).Error
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// AssignStoryToSprint attaches a story to a sprint. Capacity is not a hard
// gate here; the remaining capacity is surfaced to the planner instead.
func AssignStoryToSprint(sprintID, storyID, actorUserID uint) (*models.UserStory, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Closed() {
		return nil, ErrSprintClosed
	}
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}

	old := *story
	story.SprintID = &sprint.ID
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

// AssignStoryToMember binds a story to a sprint member, or clears the
// binding when memberID is nil. The member must belong to the story's
// sprint.
func AssignStoryToMember(memberID *uint, storyID, actorUserID uint) (*models.UserStory, error) {
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}

	if memberID != nil {
		member, err := GetSprintMemberByID(*memberID)
		if err != nil {
			return nil, err
		}
		if story.SprintID == nil || member.SprintID != *story.SprintID {
			return nil, ErrMemberNotInSprint
		}
	}

	old := *story
	story.SprintMemberID = memberID
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

// RemoveStoryFromSprint detaches a story from its sprint and resets its
// board position. Not permitted once the sprint is running.
func RemoveStoryFromSprint(storyID, actorUserID uint) (*models.UserStory, error) {
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.SprintID == nil {
		return story, nil
	}
	sprint, err := GetSprintByID(*story.SprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status == models.SprintInProgress {
		return nil, ErrSprintInProgress
	}

	old := *story
	story.SprintID = nil
	story.SprintMemberID = nil
	story.Column = 0
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

// MoveStoryColumn moves a story across its board. Tasks logged against the
// previous column no longer track current state, so they are disabled.
// Reaching the terminal column does not finish the story; that decision is
// made when the sprint closes.
func MoveStoryColumn(storyID uint, column int, actorUserID uint) (*models.UserStory, error) {
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}
	columns := story.UsType.Columns()
	if column < 0 || column >= len(columns) {
		return nil, ErrColumnRange
	}
	if column == story.Column {
		return story, nil
	}

	old := *story
	story.Column = column
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(story).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserStoryTask{}).
			Where("user_story_id = ? AND disabled = ?", story.ID, false).
			Update("disabled", true).Error; err != nil {
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

// CreateTask logs worked hours against a story while its sprint runs. The
// task snapshots the story's current column.
func CreateTask(storyID uint, description string, hoursWorked int) (*models.UserStoryTask, error) {
	story, err := GetUserStoryByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.Closed() {
		return nil, ErrStoryClosed
	}
	if story.SprintID == nil || story.SprintMemberID == nil {
		return nil, ErrMemberNotInSprint
	}
	sprint, err := GetSprintByID(*story.SprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintInProgress {
		return nil, ErrSprintNotStarted
	}

	task := models.UserStoryTask{
		UserStoryID:    story.ID,
		SprintID:       *story.SprintID,
		SprintMemberID: *story.SprintMemberID,
		Description:    description,
		HoursWorked:    hoursWorked,
		Column:         story.Column,
	}
	if err := DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// StoryTasks returns a story's tasks, newest first.
func StoryTasks(storyID uint) ([]models.UserStoryTask, error) {
	var tasks []models.UserStoryTask
	if err := DB.Where("user_story_id = ?", storyID).Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// StoryWorkedHours sums the hours logged against a story.
func StoryWorkedHours(storyID uint) (int, error) {
	var hours int64
	err := DB.Model(&models.UserStoryTask{}).
		Where("user_story_id = ?", storyID).
		Select("COALESCE(SUM(hours_worked), 0)").
		Scan(&hours).Error
	return int(hours), err
}

// BurndownPoint is one day of the sprint burndown: the linearly decreasing
// ideal remaining estimate against the hours actually logged so far.
type BurndownPoint struct {
	Date           time.Time `json:"date"`
	IdealRemaining float64   `json:"ideal_remaining"`
	WorkedHours    int       `json:"worked_hours"`
}

// SprintBurndown builds the chart series for a started sprint: one point
// per working day between the start and end dates.
func SprintBurndown(sprintID uint) ([]BurndownPoint, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.StartDate == nil || sprint.EndDate == nil {
		return nil, ErrSprintNotStarted
	}

	var total int64
	err = DB.Model(&models.UserStory{}).
		Where("sprint_id = ?", sprintID).
		Select("COALESCE(SUM(estimation_time), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	var tasks []models.UserStoryTask
	if err := DB.Where("sprint_id = ?", sprintID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	var points []BurndownPoint
	day := truncateToDay(*sprint.StartDate)
	end := truncateToDay(*sprint.EndDate)
	step := 0
	for !day.After(end) {
		working, err := IsWorkingDay(sprint.ProjectID, day)
		if err != nil {
			return nil, err
		}
		if working {
			step++
			worked := 0
			cutoff := day.AddDate(0, 0, 1)
			for _, t := range tasks {
				if t.CreatedAt.Before(cutoff) {
					worked += t.HoursWorked
				}
			}
			remaining := float64(total) * float64(sprint.Duration-step) / float64(sprint.Duration)
			points = append(points, BurndownPoint{Date: day, IdealRemaining: remaining, WorkedHours: worked})
		}
		day = day.AddDate(0, 0, 1)
	}
	return points, nil
}

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// AddSprintMember allocates a project member into a sprint with a daily
// workload. The sprint's capacity grows by workload * duration inside the
// same transaction as the insert, so the additive capacity invariant holds
// after every mutation. Users holding only the Product Owner role are
// excluded: they do not perform implementation work.
func AddSprintMember(sprintID, userID uint, workload int) (*models.SprintMember, error) {
	if workload < models.MinWorkload || workload > models.MaxWorkload {
		return nil, ErrWorkloadRange
	}

	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return nil, err
	}
	projectMember, err := getProjectMember(sprint.ProjectID, userID)
	if err != nil {
		return nil, err
	}
	if holdsOnlyRole(projectMember, models.RoleProductOwner) {
		return nil, ErrProductOwnerOnly
	}

	// The status and duplicate checks run inside the transaction so the
	// insert and capacity bump cannot race a concurrent add or finish.
	var member models.SprintMember
	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(sprint, sprint.ID).Error; err != nil {
			return err
		}
		if sprint.Closed() {
			return ErrSprintClosed
		}

		var count int64
		if err := tx.Model(&models.SprintMember{}).
			Where("sprint_id = ? AND user_id = ?", sprintID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySprintMember
		}

		member = models.SprintMember{SprintID: sprintID, UserID: userID, Workload: workload}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		sprint.Capacity += workload * sprint.Duration
		return tx.Save(sprint).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// EditSprintMember changes a member's workload. Capacity is adjusted by the
// exact delta between the old and new contribution, never recomputed from
// scratch, so repeated edits cannot drift.
func EditSprintMember(memberID uint, newWorkload int) (*models.SprintMember, error) {
	if newWorkload < models.MinWorkload || newWorkload > models.MaxWorkload {
		return nil, ErrWorkloadRange
	}

	member, err := GetSprintMemberByID(memberID)
	if err != nil {
		return nil, err
	}
	sprint, err := GetSprintByID(member.SprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Closed() {
		return nil, ErrSprintClosed
	}

	oldWorkload := member.Workload
	err = DB.Transaction(func(tx *gorm.DB) error {
		member.Workload = newWorkload
		if err := tx.Save(member).Error; err != nil {
			return err
		}
		sprint.Capacity += (newWorkload - oldWorkload) * sprint.Duration
		return tx.Save(sprint).Error
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// GetSprintMemberByID retrieves a sprint member by ID
func GetSprintMemberByID(id uint) (*models.SprintMember, error) {
	var member models.SprintMember
	if err := DB.Preload("User").First(&member, id).Error; err != nil {
		return nil, fmt.Errorf("sprint member #%d: %w", id, ErrNotFound)
	}
	return &member, nil
}

// GetSprintMembers returns a sprint's members with users preloaded.
func GetSprintMembers(sprintID uint) ([]models.SprintMember, error) {
	var members []models.SprintMember
	if err := DB.Where("sprint_id = ?", sprintID).Preload("User").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// AvailableCapacity returns the sprint's capacity minus the estimation
// time of every story assigned to it. It may be negative; over-assignment
// is surfaced for a human decision, not hard-blocked.
func AvailableCapacity(sprintID uint) (int, error) {
	sprint, err := GetSprintByID(sprintID)
	if err != nil {
		return 0, err
	}
	var used int64
	err = DB.Model(&models.UserStory{}).
		Where("sprint_id = ?", sprintID).
		Select("COALESCE(SUM(estimation_time), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, err
	}
	return sprint.Capacity - int(used), nil
}

// SprintMemberUsedCapacity sums the estimation time of the stories
// assigned to one member within the sprint.
func SprintMemberUsedCapacity(memberID uint) (int, error) {
	member, err := GetSprintMemberByID(memberID)
	if err != nil {
		return 0, err
	}
	var used int64
	err = DB.Model(&models.UserStory{}).
		Where("sprint_id = ? AND sprint_member_id = ?", member.SprintID, member.ID).
		Select("COALESCE(SUM(estimation_time), 0)").
		Scan(&used).Error
	if err != nil {
		return 0, err
	}
	return int(used), nil
}

// AddableUsers returns the project members who can still be allocated into
// the sprint: not already sprint members and not Product-Owner-only.
func AddableUsers(projectID, sprintID uint) ([]models.User, error) {
	members, err := GetProjectMembers(projectID)
	if err != nil {
		return nil, err
	}

	var inSprint []models.SprintMember
	if err := DB.Where("sprint_id = ?", sprintID).Find(&inSprint).Error; err != nil {
		return nil, err
	}
	taken := make(map[uint]bool, len(inSprint))
	for _, m := range inSprint {
		taken[m.UserID] = true
	}

	var users []models.User
	for i := range members {
		m := &members[i]
		if taken[m.UserID] || holdsOnlyRole(m, models.RoleProductOwner) {
			continue
		}
		users = append(users, m.User)
	}
	return users, nil
}

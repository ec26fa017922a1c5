package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/aguilarm/scrumd/internal/models"
)

// maxHolidayRun bounds how many consecutive non-working days the end-date
// walk may skip. A real calendar never skips a full year; hitting the
// bound means the holiday data is pathological.
const maxHolidayRun = 366

// truncateToDay drops the time-of-day component so dates compare cleanly.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay reports whether date is a working day for the project:
// neither a weekend day nor a project-declared holiday.
func IsWorkingDay(projectID uint, date time.Time) (bool, error) {
	return isWorkingDay(DB, projectID, date)
}

func isWorkingDay(tx *gorm.DB, projectID uint, date time.Time) (bool, error) {
	day := truncateToDay(date)
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}
	var count int64
	err := tx.Model(&models.Holiday{}).
		Where("project_id = ? AND date = ?", projectID, day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// AddWorkingDays walks forward from start one calendar day at a time and
// returns the date on which the working-day counter reaches duration.
// start itself counts as day 1 when it is a working day; weekends and
// holidays are skipped entirely, they never consume a slot. The walk is
// day-by-day on purpose: holiday sets are sparse and irregular, so there
// is no closed form worth the complexity.
func AddWorkingDays(projectID uint, start time.Time, duration int) (time.Time, error) {
	return addWorkingDays(DB, projectID, start, duration)
}

func addWorkingDays(tx *gorm.DB, projectID uint, start time.Time, duration int) (time.Time, error) {
	if duration < 1 {
		return time.Time{}, ErrDurationRange
	}
	day := truncateToDay(start)
	counted := 0
	skipped := 0
	for {
		working, err := isWorkingDay(tx, projectID, day)
		if err != nil {
			return time.Time{}, err
		}
		if working {
			counted++
			skipped = 0
			if counted == duration {
				return day, nil
			}
		} else {
			skipped++
			if skipped > maxHolidayRun {
				return time.Time{}, ErrHolidayRunTooLong
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}

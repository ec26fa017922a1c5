package db

import (
	"errors"
	"testing"
	"time"
)

// 2022-11-07 is a Monday.
var monday = time.Date(2022, 11, 7, 0, 0, 0, 0, time.UTC)

func TestIsWorkingDay(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	t.Run("weekday", func(t *testing.T) {
		working, err := IsWorkingDay(project.ID, monday)
		if err != nil {
			t.Fatalf("is working day: %v", err)
		}
		if !working {
			t.Error("Monday should be a working day")
		}
	})

	t.Run("weekend", func(t *testing.T) {
		saturday := monday.AddDate(0, 0, 5)
		sunday := monday.AddDate(0, 0, 6)
		for _, day := range []time.Time{saturday, sunday} {
			working, err := IsWorkingDay(project.ID, day)
			if err != nil {
				t.Fatalf("is working day: %v", err)
			}
			if working {
				t.Errorf("%s should not be a working day", day.Weekday())
			}
		}
	})

	t.Run("holiday", func(t *testing.T) {
		wednesday := monday.AddDate(0, 0, 2)
		if _, err := CreateHoliday(project.ID, wednesday); err != nil {
			t.Fatalf("create holiday: %v", err)
		}
		working, err := IsWorkingDay(project.ID, wednesday)
		if err != nil {
			t.Fatalf("is working day: %v", err)
		}
		if working {
			t.Error("a project holiday should not be a working day")
		}
	})

	t.Run("holiday of another project", func(t *testing.T) {
		other, _ := testProject(t)
		wednesday := monday.AddDate(0, 0, 2)
		working, err := IsWorkingDay(other.ID, wednesday)
		if err != nil {
			t.Fatalf("is working day: %v", err)
		}
		if !working {
			t.Error("holidays must not leak across projects")
		}
	})
}

func TestAddWorkingDays(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	t.Run("start counts as day one", func(t *testing.T) {
		end, err := AddWorkingDays(project.ID, monday, 1)
		if err != nil {
			t.Fatalf("add working days: %v", err)
		}
		if !end.Equal(monday) {
			t.Errorf("end = %v, want the start date itself", end)
		}
	})

	t.Run("five days from Monday is Friday", func(t *testing.T) {
		end, err := AddWorkingDays(project.ID, monday, 5)
		if err != nil {
			t.Fatalf("add working days: %v", err)
		}
		friday := monday.AddDate(0, 0, 4)
		if !end.Equal(friday) {
			t.Errorf("end = %v, want Friday %v", end, friday)
		}
	})

	t.Run("weekend is skipped not consumed", func(t *testing.T) {
		end, err := AddWorkingDays(project.ID, monday, 6)
		if err != nil {
			t.Fatalf("add working days: %v", err)
		}
		nextMonday := monday.AddDate(0, 0, 7)
		if !end.Equal(nextMonday) {
			t.Errorf("end = %v, want next Monday %v", end, nextMonday)
		}
	})

	t.Run("holiday shifts the end by a calendar day", func(t *testing.T) {
		wednesday := monday.AddDate(0, 0, 2)
		if _, err := CreateHoliday(project.ID, wednesday); err != nil {
			t.Fatalf("create holiday: %v", err)
		}
		end, err := AddWorkingDays(project.ID, monday, 5)
		if err != nil {
			t.Fatalf("add working days: %v", err)
		}
		// Wednesday out, so the fifth working day lands on the next Monday.
		nextMonday := monday.AddDate(0, 0, 7)
		if !end.Equal(nextMonday) {
			t.Errorf("end = %v, want next Monday %v", end, nextMonday)
		}
	})

	t.Run("saturday start does not count as day one", func(t *testing.T) {
		saturday := monday.AddDate(0, 0, 5)
		end, err := AddWorkingDays(project.ID, saturday, 1)
		if err != nil {
			t.Fatalf("add working days: %v", err)
		}
		nextMonday := monday.AddDate(0, 0, 7)
		if !end.Equal(nextMonday) {
			t.Errorf("end = %v, want next Monday %v", end, nextMonday)
		}
	})

	// The walk counts upward, so a non-positive target could never be
	// reached; it must fail fast instead of walking forever.
	t.Run("non-positive duration fails fast", func(t *testing.T) {
		for _, duration := range []int{0, -3} {
			if _, err := AddWorkingDays(project.ID, monday, duration); !errors.Is(err, ErrDurationRange) {
				t.Errorf("duration %d: err = %v, want ErrDurationRange", duration, err)
			}
		}
	})
}

func TestAddWorkingDaysPathologicalHolidayRun(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	// Declare every single day of the next year and a half a holiday.
	day := monday.AddDate(0, 0, 1)
	for i := 0; i < maxHolidayRun+10; i++ {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			if _, err := CreateHoliday(project.ID, day); err != nil {
				t.Fatalf("create holiday: %v", err)
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	_, err := AddWorkingDays(project.ID, monday, 2)
	if !errors.Is(err, ErrHolidayRunTooLong) {
		t.Errorf("err = %v, want ErrHolidayRunTooLong", err)
	}
}

func TestCreateHolidayRejectsDuplicates(t *testing.T) {
	setupTestDB(t)
	project, _ := testProject(t)

	if _, err := CreateHoliday(project.ID, monday); err != nil {
		t.Fatalf("create holiday: %v", err)
	}
	if _, err := CreateHoliday(project.ID, monday); !errors.Is(err, ErrHolidayExists) {
		t.Errorf("err = %v, want ErrHolidayExists", err)
	}
}

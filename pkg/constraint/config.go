package constraint

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid constraint configuration")

// Window is an inclusive range of dates. The zero Window disables the exam window constraint.
type Window struct {
	Start time.Time
	End   time.Time
}

func (window Window) IsZero() bool {
	return window.Start.IsZero() && window.End.IsZero()
}

// Config parametrizes the constraint set. It replaces any global lookup table: the set built from
// it is self-contained.
type Config struct {
	TeacherCaps         map[string]float64 // Weekly hour cap per teacher
	WeeklyTolerance     float64            // Hours a teacher may exceed the cap by
	ExamWindow          Window
	ExamMinDaysApart    int64
	ConsecutiveSubjects []string // Subjects whose lessons must be scheduled back to back
	MaxGap              time.Duration
}

func DefaultConfig() Config {
	return Config{
		TeacherCaps:         map[string]float64{},
		WeeklyTolerance:     2,
		ExamMinDaysApart:    2,
		ConsecutiveSubjects: []string{"13.4", "11.5"},
		MaxGap:              30 * time.Minute,
	}
}

func (config Config) Validate() error {
	if !config.ExamWindow.IsZero() && config.ExamWindow.End.Before(config.ExamWindow.Start) {
		return fmt.Errorf("%w: exam window ends (%v) before it starts (%v)", ErrInvalidConfig, config.ExamWindow.End.Format(time.DateOnly), config.ExamWindow.Start.Format(time.DateOnly))
	}
	if config.MaxGap < 0 {
		return fmt.Errorf("%w: maximum gap must not be negative: %v", ErrInvalidConfig, config.MaxGap)
	}
	if config.WeeklyTolerance < 0 {
		return fmt.Errorf("%w: weekly tolerance must not be negative: %v", ErrInvalidConfig, config.WeeklyTolerance)
	}
	if config.ExamMinDaysApart < 0 {
		return fmt.Errorf("%w: exam minimum days apart must not be negative: %v", ErrInvalidConfig, config.ExamMinDaysApart)
	}
	for teacher, limit := range config.TeacherCaps {
		if limit < 0 {
			return fmt.Errorf("%w: cap of teacher %q must not be negative: %v", ErrInvalidConfig, teacher, limit)
		}
	}
	return nil
}

// NewTimetableConstraints builds the school timetabling constraint set: hard constraints first
func NewTimetableConstraints(config Config) (*Set, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	constraints := []Constraint{
		// Hard constraints
		TeacherConflict(),
		StudentGroupConflict(),
		MaximumWorkingHours(config.TeacherCaps, config.WeeklyTolerance),
	}
	if !config.ExamWindow.IsZero() {
		constraints = append(constraints, ExamWindow(config.ExamWindow.Start, config.ExamWindow.End))
	}
	constraints = append(constraints,
		ExamConsecutive(config.ExamMinDaysApart),
		DesignatedSubjectConsecutive(config.ConsecutiveSubjects, config.MaxGap),
		// Soft constraints
		TeacherTimeEfficiency(config.MaxGap),
		SubjectSpacing(),
	)
	return NewSet(constraints...), nil
}

package constraint

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

var ErrMissingTeacherCap = errors.New("teacher has no weekly hour cap")

const (
	TeacherConflictName              = "Teacher conflict"
	StudentGroupConflictName         = "Student group conflict"
	MaximumWorkingHoursName          = "Maximum working hours per week"
	ExamWindowName                   = "Exam window"
	ExamConsecutiveName              = "Exam consecutive"
	DesignatedSubjectConsecutiveName = "Designated subject consecutive"
	TeacherTimeEfficiencyName        = "Teacher time efficiency"
	SubjectSpacingName               = "Subject spacing"
)

type timeslotTeacher struct {
	timeslot model.TimeslotKey
	teacher  string
}

type timeslotGroup struct {
	timeslot model.TimeslotKey
	group    string
}

type teacherDay struct {
	teacher string
	day     int64
}

type teacherWeek struct {
	year, week int
	teacher    string
}

func always(_, _ *model.Lesson) int64 { return 1 }

// TeacherConflict penalizes two lessons taught by the same teacher in the same timeslot
func TeacherConflict() Constraint {
	return &pairConstraint[timeslotTeacher]{
		name:   TeacherConflictName,
		weight: score.OneHard.Negate(),
		key: func(lesson *model.Lesson) (timeslotTeacher, bool) {
			if lesson.Timeslot == nil {
				return timeslotTeacher{}, false
			}
			return timeslotTeacher{lesson.Timeslot.Key(), lesson.Teacher}, true
		},
		match: always,
	}
}

// StudentGroupConflict penalizes two lessons attended by the same student group in the same timeslot
func StudentGroupConflict() Constraint {
	return &pairConstraint[timeslotGroup]{
		name:   StudentGroupConflictName,
		weight: score.OneHard.Negate(),
		key: func(lesson *model.Lesson) (timeslotGroup, bool) {
			if lesson.Timeslot == nil {
				return timeslotGroup{}, false
			}
			return timeslotGroup{lesson.Timeslot.Key(), lesson.StudentGroup}, true
		},
		match: always,
	}
}

type workingHoursConstraint struct {
	groupConstraint[teacherWeek]
	caps map[string]float64
}

// MaximumWorkingHours penalizes once every (ISO week, teacher) whose summed lesson hours exceed
// the teacher's cap by more than tolerance hours. Every teacher must be present in caps.
func MaximumWorkingHours(caps map[string]float64, tolerance float64) Constraint {
	c := &workingHoursConstraint{caps: caps}
	c.groupConstraint = groupConstraint[teacherWeek]{
		name:   MaximumWorkingHoursName,
		weight: score.OneHard.Negate(),
		key: func(lesson *model.Lesson) (teacherWeek, bool) {
			if lesson.Timeslot == nil {
				return teacherWeek{}, false
			}
			year, week := lesson.Timeslot.Week()
			return teacherWeek{year, week, lesson.Teacher}, true
		},
		value: func(lesson *model.Lesson) int64 {
			return lesson.Timeslot.Hours()
		},
		match: func(key teacherWeek, hours int64) int64 {
			limit, ok := caps[key.teacher]
			if !ok {
				panic(fmt.Sprintf("%v: %q (Check must run before scoring)", ErrMissingTeacherCap, key.teacher))
			}
			if float64(hours) > limit+tolerance {
				return 1
			}
			return 0
		},
	}
	return c
}

func (c *workingHoursConstraint) Check(lessons []*model.Lesson) error {
	missing := lo.Uniq(lo.FilterMap(lessons, func(lesson *model.Lesson, _ int) (string, bool) {
		_, ok := c.caps[lesson.Teacher]
		return lesson.Teacher, !ok
	}))
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%w: %q", ErrMissingTeacherCap, missing)
	}
	return nil
}

// ExamWindow penalizes every exam scheduled before start or after end (both dates inclusive)
func ExamWindow(start, end time.Time) Constraint {
	first := model.NewTimeslot(0, start, 0, 0).Day()
	last := model.NewTimeslot(0, end, 0, 0).Day()
	return &unaryConstraint{
		name:   ExamWindowName,
		weight: score.OneHard.Negate(),
		match: func(lesson *model.Lesson) int64 {
			if !lesson.Exam || lesson.Timeslot == nil {
				return 0
			}
			if day := lesson.Timeslot.Day(); day < first || day > last {
				return 1
			}
			return 0
		},
	}
}

// ExamConsecutive penalizes two exams scheduled less than minDaysApart days from each other
func ExamConsecutive(minDaysApart int64) Constraint {
	return &pairConstraint[bool]{
		name:   ExamConsecutiveName,
		weight: score.OneHard.Negate(),
		key: func(lesson *model.Lesson) (bool, bool) {
			return true, lesson.Exam && lesson.Timeslot != nil
		},
		match: func(a, b *model.Lesson) int64 {
			if model.DaysBetween(*a.Timeslot, *b.Timeslot) < minDaysApart {
				return 1
			}
			return 0
		},
	}
}

// DesignatedSubjectConsecutive penalizes two lessons of a designated subject that are not
// scheduled back to back (same date, at most maxGap between one's end and the other's start)
func DesignatedSubjectConsecutive(subjects []string, maxGap time.Duration) Constraint {
	designated := lo.SliceToMap(subjects, func(subject string) (string, struct{}) { return subject, struct{}{} })
	return &pairConstraint[string]{
		name:   DesignatedSubjectConsecutiveName,
		weight: score.OneHard.Negate(),
		key: func(lesson *model.Lesson) (string, bool) {
			_, ok := designated[lesson.Subject]
			return lesson.Subject, ok && lesson.Timeslot != nil
		},
		match: func(a, b *model.Lesson) int64 {
			if model.BackToBack(*a.Timeslot, *b.Timeslot, maxGap) {
				return 0
			}
			return 1
		},
	}
}

// TeacherTimeEfficiency rewards two lessons of the same teacher scheduled back to back
func TeacherTimeEfficiency(maxGap time.Duration) Constraint {
	return &pairConstraint[teacherDay]{
		name:   TeacherTimeEfficiencyName,
		weight: score.OneSoft,
		key: func(lesson *model.Lesson) (teacherDay, bool) {
			if lesson.Timeslot == nil {
				return teacherDay{}, false
			}
			return teacherDay{lesson.Teacher, lesson.Timeslot.Day()}, true
		},
		match: func(a, b *model.Lesson) int64 {
			if model.BackToBack(*a.Timeslot, *b.Timeslot, maxGap) {
				return 1
			}
			return 0
		},
	}
}

// SubjectSpacing penalizes two lessons of the same subject by the whole weeks between them
func SubjectSpacing() Constraint {
	return &pairConstraint[string]{
		name:   SubjectSpacingName,
		weight: score.OneSoft.Negate(),
		key: func(lesson *model.Lesson) (string, bool) {
			return lesson.Subject, lesson.Timeslot != nil
		},
		match: func(a, b *model.Lesson) int64 {
			return model.WeeksBetween(*a.Timeslot, *b.Timeslot)
		},
	}
}

package demo

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
)

func TestTimeslots(t *testing.T) {
	//** Act
	timeslots := Timeslots()

	//** Assert
	assert.Len(t, timeslots, 119)
	assert.Equal(t, slot(model.Date(2023, time.March, 8), 8, 0).Key(), timeslots[0].Key(), "the extra morning slot comes first")
	assert.Empty(t, lo.FindDuplicates(lo.Map(timeslots, func(timeslot model.Timeslot, _ int) uint64 { return timeslot.Id })))

	for _, timeslot := range timeslots {
		assert.False(t, weekend(timeslot.Date), timeslot.String())
		assert.Equal(t, 90*time.Minute, timeslot.Duration())
		assert.False(t, lo.ContainsBy(blockedSlots, timeslot.Equal), timeslot.String())
	}

	onMarch8 := lo.Filter(timeslots, func(timeslot model.Timeslot, _ int) bool { return timeslot.Date.Equal(model.Date(2023, time.March, 8)) })
	assert.Len(t, onMarch8, 1)

	fridayAfternoons := lo.Filter(timeslots, func(timeslot model.Timeslot, _ int) bool {
		return timeslot.Date.Weekday() == time.Friday && timeslot.StartTime == model.Clock(14, 0)
	})
	require.Len(t, fridayAfternoons, 1)
	assert.Equal(t, model.Date(2023, time.February, 17), fridayAfternoons[0].Date)
}

func TestLessons(t *testing.T) {
	lessons := Lessons()

	assert.Len(t, lessons, 111)
	exams := lo.Filter(lessons, func(lesson model.Lesson, _ int) bool { return lesson.Exam })
	assert.ElementsMatch(t, []string{"2.5 Klausur", "3.5 Klausur"}, lo.Map(exams, func(lesson model.Lesson, _ int) string { return lesson.Subject }))
	for _, lesson := range lessons {
		assert.Equal(t, StudentGroup, lesson.StudentGroup)
		assert.Contains(t, teacherCaps, lesson.Teacher, "every demo teacher has a cap")
	}
}

func TestProblemIsValid(t *testing.T) {
	problem := Problem()

	require.NoError(t, problem.Validate())
	set, err := constraint.NewTimetableConstraints(ConstraintConfig())
	require.NoError(t, err)
	assert.NoError(t, set.Check(problem.LessonPointers()))
}

func TestTeacherCapsReturnsACopy(t *testing.T) {
	caps := TeacherCaps()
	caps["Sonja"] = 0

	assert.Equal(t, 13.5, TeacherCaps()["Sonja"])
	assert.Len(t, caps, 24)
}

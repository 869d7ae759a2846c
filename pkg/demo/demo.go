// Package demo generates the demo school term: a spring term calendar with blocked days and
// slots, a single room and the lessons of one student group
package demo

import (
	"time"

	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
)

const (
	StudentGroup = "Chaosclub"
	ExamMarker   = "Klausur"
	RoomName     = "Raum"
)

var (
	termStart = model.Date(2023, time.February, 13)
	termEnd   = model.Date(2023, time.April, 6) // Exclusive

	examWindow = constraint.Window{Start: model.Date(2023, time.February, 17), End: model.Date(2023, time.March, 3)}

	blockedDays = []time.Time{
		model.Date(2023, time.March, 8),
		model.Date(2023, time.March, 24),
		model.Date(2023, time.March, 17),
		model.Date(2023, time.March, 27),
		model.Date(2023, time.April, 6),
	}

	blockedSlots = []model.Timeslot{
		slot(model.Date(2023, time.March, 15), 12, 15),
		slot(model.Date(2023, time.March, 15), 14, 0),
		slot(model.Date(2023, time.March, 23), 12, 15),
		slot(model.Date(2023, time.March, 23), 14, 0),
		slot(model.Date(2023, time.March, 28), 12, 15),
		slot(model.Date(2023, time.March, 28), 14, 0),
		slot(model.Date(2023, time.March, 29), 12, 15),
		slot(model.Date(2023, time.March, 29), 14, 0),
		slot(model.Date(2023, time.March, 3), 14, 0),
		slot(model.Date(2023, time.March, 31), 12, 15),
		slot(model.Date(2023, time.March, 31), 14, 0),
		slot(model.Date(2023, time.April, 5), 12, 15),
		slot(model.Date(2023, time.April, 5), 14, 0),
		slot(model.Date(2023, time.March, 17), 8, 0),
		slot(model.Date(2023, time.March, 17), 10, 0),
		slot(model.Date(2023, time.April, 3), 8, 0),
		slot(model.Date(2023, time.February, 13), 8, 0),
		slot(model.Date(2023, time.April, 3), 10, 0),
	}

	// Weekly hour cap of every teacher of the school
	teacherCaps = map[string]float64{
		"Sonja":            13.5,
		"Barbara":          9,
		"Susanne":          13.5,
		"Stefanie Puhl":    10.8,
		"Tanja":            18,
		"Anette":           18,
		"Jasmin":           18,
		"Carolin":          10.8,
		"Roland":           18,
		"Sabrina":          10.8,
		"Andreas":          18,
		"Andrea":           18,
		"Norbert":          18,
		"Martin":           18,
		"Stefanie Hermann": 9,
		"Laura":            9,
		"Hanna":            18,
		"Dorothea":         15.3,
		"Isabelle":         18,
		"Anna":             10.8,
		"Michael":          18,
		"Barbel":           9,
		"Julia":            18,
		"Elena":            18,
	}

	courses = []struct {
		count            int
		subject, teacher string
	}{
		{1, "2.5 Klausur", "Norbert"},
		{1, "3.5 Klausur", "Norbert"},
		{13, "2.6 a", "Sonja"},
		{6, "2.6 b", "Isabelle"},
		{15, "3.6", "Martin"},
		{8, "3.7", "Barbel"},
		{14, "4.3", "Julia"},
		{9, "9.4", "Norbert"},
		{7, "10.2", "Susanne"},
		{2, "13.4", "Susanne"},
		{2, "11.5", "Elena"},
		{12, "11.7", "Isabelle"},
		{10, "12.1 b", "Michael"},
		{11, "13.3", "Andrea"},
	}
)

// Slot starts are 08:00, 10:00, 12:15 and 14:00, each lasting 90 minutes
func slot(date time.Time, hour, minute int) model.Timeslot {
	start := model.Clock(hour, minute)
	return model.NewTimeslot(0, date, start, start+90*time.Minute)
}

// Timeslots lists the term's weekday slots, minus blocked days and blocked slots. The Friday
// afternoon slot only exists on odd aligned weeks of the year, and March 8 keeps its morning slot
// even though the day is otherwise blocked.
func Timeslots() []model.Timeslot {
	candidates := []model.Timeslot{slot(model.Date(2023, time.March, 8), 8, 0)}
	for date := termStart; date.Before(termEnd); date = date.AddDate(0, 0, 1) {
		if weekend(date) || lo.ContainsBy(blockedDays, date.Equal) {
			continue
		}
		candidates = append(candidates, slot(date, 8, 0), slot(date, 10, 0), slot(date, 12, 15))
		if date.Weekday() != time.Friday || alignedWeek(date)%2 == 1 {
			candidates = append(candidates, slot(date, 14, 0))
		}
	}

	timeslots := lo.Reject(candidates, func(candidate model.Timeslot, _ int) bool {
		return lo.ContainsBy(blockedSlots, candidate.Equal)
	})
	for i := range timeslots {
		timeslots[i].Id = uint64(i)
	}
	return timeslots
}

func Rooms() []model.Room {
	return []model.Room{{Id: 0, Name: RoomName}}
}

// Lessons lists every lesson of the student group, exams flagged
func Lessons() []model.Lesson {
	lessons := make([]model.Lesson, 0)
	for _, course := range courses {
		for range course.count {
			lessons = append(lessons, model.Lesson{
				Id:           uint64(len(lessons)),
				Subject:      course.subject,
				Teacher:      course.teacher,
				StudentGroup: StudentGroup,
			})
		}
	}
	model.MarkExams(lessons, ExamMarker)
	return lessons
}

func Problem() model.Problem {
	return model.Problem{
		Timeslots: Timeslots(),
		Rooms:     Rooms(),
		Lessons:   Lessons(),
	}
}

// TeacherCaps returns a copy of the weekly hour caps
func TeacherCaps() map[string]float64 {
	return lo.Assign(teacherCaps)
}

// ConstraintConfig is the default constraint configuration completed with the school's caps and
// exam window
func ConstraintConfig() constraint.Config {
	config := constraint.DefaultConfig()
	config.TeacherCaps = TeacherCaps()
	config.ExamWindow = examWindow
	return config
}

func weekend(date time.Time) bool {
	return date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
}

// alignedWeek numbers weeks from January 1st, the first seven days being week 1
func alignedWeek(date time.Time) int {
	return (date.YearDay()-1)/7 + 1
}

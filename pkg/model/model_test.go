package model

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeslotEqualityIgnoresId(t *testing.T) {
	a := NewTimeslot(1, Date(2023, time.February, 16), Clock(8, 0), Clock(9, 30))
	b := NewTimeslot(2, time.Date(2023, time.February, 16, 17, 45, 0, 0, time.UTC), Clock(8, 0), Clock(9, 30))
	c := NewTimeslot(1, Date(2023, time.February, 16), Clock(10, 0), Clock(11, 30))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
}

func TestTimeslotDerivedValues(t *testing.T) {
	timeslot := NewTimeslot(1, Date(2023, time.February, 16), Clock(8, 0), Clock(9, 30))

	assert.Equal(t, int64(1), timeslot.Hours())
	assert.Equal(t, 90*time.Minute, timeslot.Duration())
	year, week := timeslot.Week()
	assert.Equal(t, 2023, year)
	assert.Equal(t, 7, week)
	assert.Equal(t, "2023-02-16 08:00-09:30", timeslot.String())
}

func TestDaysAndWeeksBetweenAreSymmetric(t *testing.T) {
	a := NewTimeslot(1, Date(2023, time.February, 13), Clock(8, 0), Clock(9, 30))
	b := NewTimeslot(2, Date(2023, time.March, 3), Clock(8, 0), Clock(9, 30))

	assert.Equal(t, int64(18), DaysBetween(a, b))
	assert.Equal(t, int64(18), DaysBetween(b, a))
	assert.Equal(t, int64(2), WeeksBetween(a, b))
	assert.Equal(t, int64(2), WeeksBetween(b, a))
}

func TestBackToBack(t *testing.T) {
	date := Date(2023, time.February, 16)
	first := NewTimeslot(1, date, Clock(8, 0), Clock(10, 0))
	near := NewTimeslot(2, date, Clock(10, 20), Clock(11, 0))
	far := NewTimeslot(3, date, Clock(11, 0), Clock(12, 0))
	otherDay := NewTimeslot(4, date.AddDate(0, 0, 1), Clock(10, 0), Clock(11, 0))

	assert.True(t, BackToBack(first, near, 30*time.Minute))
	assert.True(t, BackToBack(near, first, 30*time.Minute))
	assert.False(t, BackToBack(first, far, 30*time.Minute))
	assert.False(t, BackToBack(first, otherDay, 30*time.Minute))
}

func TestMarkExams(t *testing.T) {
	lessons := []Lesson{
		{Id: 1, Subject: "2.5 Klausur"},
		{Id: 2, Subject: "2.6 a"},
	}

	MarkExams(lessons, "Klausur")

	assert.True(t, lessons[0].Exam)
	assert.False(t, lessons[1].Exam)
}

func TestCloneRepointsPlanningVariables(t *testing.T) {
	//** Arrange
	problem := Problem{
		Timeslots: []Timeslot{NewTimeslot(1, Date(2023, time.February, 16), Clock(8, 0), Clock(9, 30))},
		Rooms:     []Room{{Id: 1, Name: "Raum"}},
		Lessons:   []Lesson{{Id: 1, Subject: "s", Teacher: "t", StudentGroup: "g"}},
	}
	problem.Lessons[0].Timeslot = &problem.Timeslots[0]
	problem.Lessons[0].Room = &problem.Rooms[0]

	//** Act
	clone := problem.Clone()
	clone.Lessons[0].Timeslot = nil

	//** Assert
	require.NotNil(t, problem.Lessons[0].Timeslot)
	assert.Same(t, &clone.Rooms[0], clone.Lessons[0].Room)
	assert.NotSame(t, &problem.Rooms[0], clone.Lessons[0].Room)
}

func TestValidate(t *testing.T) {
	valid := Problem{
		Timeslots: []Timeslot{NewTimeslot(1, Date(2023, time.February, 16), Clock(8, 0), Clock(9, 30))},
		Rooms:     []Room{{Id: 1, Name: "Raum"}},
		Lessons:   []Lesson{{Id: 1, Subject: "s", Teacher: "t", StudentGroup: "g"}},
	}
	assert.NoError(t, valid.Validate())

	duplicated := valid.Clone()
	duplicated.Lessons = append(duplicated.Lessons, duplicated.Lessons[0])
	assert.ErrorIs(t, duplicated.Validate(), ErrInvalidProblem)

	inverted := valid.Clone()
	inverted.Timeslots[0].EndTime = Clock(7, 0)
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidProblem)

	foreign := valid.Clone()
	foreign.Lessons[0].Room = &Room{Id: 99, Name: "Elsewhere"}
	assert.ErrorIs(t, foreign.Validate(), ErrInvalidProblem)

	unlabeled := valid.Clone()
	unlabeled.Lessons[0].Teacher = ""
	assert.ErrorIs(t, unlabeled.Validate(), ErrInvalidProblem)
}

func TestProblemFromJson(t *testing.T) {
	//** Arrange
	input := map[string]any{
		"timeslots": []map[string]any{
			{"id": 1, "date": "2023-02-16", "startTime": "08:00", "endTime": "09:30"},
			{"id": 2, "date": "2023-02-16", "startTime": "10:00", "endTime": "11:30"},
		},
		"rooms": []map[string]any{{"id": 1, "name": "Raum"}},
		"lessons": []map[string]any{
			{"id": 1, "subject": "2.5 Klausur", "teacher": "Norbert", "studentGroup": "Chaosclub", "exam": true},
			{"id": 2, "subject": "3.6", "teacher": "Martin", "studentGroup": "Chaosclub", "timeslot": 2, "room": 1},
		},
	}
	bytes, err := json.Marshal(input)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(file, bytes, 0666))

	//** Act
	problem, err := ProblemFromJson(file)

	//** Assert
	require.NoError(t, err)
	assert.Len(t, problem.Timeslots, 2)
	assert.Equal(t, Clock(10, 0), problem.Timeslots[1].StartTime)
	assert.Equal(t, Date(2023, time.February, 16), problem.Timeslots[1].Date)
	assert.True(t, problem.Lessons[0].Exam)
	assert.Nil(t, problem.Lessons[0].Timeslot)
	require.NotNil(t, problem.Lessons[1].Timeslot)
	assert.Same(t, &problem.Timeslots[1], problem.Lessons[1].Timeslot)
	assert.Same(t, &problem.Rooms[0], problem.Lessons[1].Room)
}

func TestProcessRawInputRejectsInvalidInput(t *testing.T) {
	cases := map[string]RawProblem{
		"bad date": {
			Timeslots: []RawTimeslot{{Id: 1, Date: "16.02.2023", StartTime: "08:00", EndTime: "09:30"}},
		},
		"missing teacher": {
			Lessons: []RawLesson{{Id: 1, Subject: "s", StudentGroup: "g"}},
		},
		"unknown room": {
			Lessons: []RawLesson{{Id: 1, Subject: "s", Teacher: "t", StudentGroup: "g", Room: new(uint64)}},
		},
	}

	for name, raw := range cases {
		_, err := ProcessRawInput(raw)
		assert.True(t, errors.Is(err, ErrInvalidProblem), name)
	}
}

func TestNewOutputSortsByStart(t *testing.T) {
	problem := Problem{
		Timeslots: []Timeslot{
			NewTimeslot(1, Date(2023, time.February, 17), Clock(8, 0), Clock(9, 30)),
			NewTimeslot(2, Date(2023, time.February, 16), Clock(8, 0), Clock(9, 30)),
		},
		Rooms: []Room{{Id: 1, Name: "Raum"}},
		Lessons: []Lesson{
			{Id: 1, Subject: "a", Teacher: "t", StudentGroup: "g"},
			{Id: 2, Subject: "b", Teacher: "t", StudentGroup: "g"},
			{Id: 3, Subject: "c", Teacher: "t", StudentGroup: "g"},
		},
	}
	problem.Lessons[0].Timeslot = &problem.Timeslots[0]
	problem.Lessons[1].Timeslot = &problem.Timeslots[1]
	problem.Lessons[1].Room = &problem.Rooms[0]

	output := NewOutput(problem.Lessons, "0hard/0soft", "FEASIBLE")

	assert.Equal(t, []uint64{3, 2, 1}, []uint64{output.Lessons[0].Id, output.Lessons[1].Id, output.Lessons[2].Id})
	assert.Equal(t, "Raum", output.Lessons[1].RoomName)
	assert.Nil(t, output.Lessons[0].Timeslot)
	_, err := output.ToJson()
	assert.NoError(t, err)
}

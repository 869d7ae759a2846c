package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/samber/lo"
)

type OutputLesson struct {
	Id           uint64  `json:"id"`
	Subject      string  `json:"subject"`
	Teacher      string  `json:"teacher"`
	StudentGroup string  `json:"studentGroup"`
	Exam         bool    `json:"exam,omitempty"`
	Timeslot     *uint64 `json:"timeslot"`
	Date         string  `json:"date,omitempty"`
	StartTime    string  `json:"startTime,omitempty"`
	EndTime      string  `json:"endTime,omitempty"`
	Room         *uint64 `json:"room"`
	RoomName     string  `json:"roomName,omitempty"`
}

type Output struct {
	Score   string         `json:"score"`
	Status  string         `json:"status"`
	Lessons []OutputLesson `json:"lessons"`
}

// NewOutput flattens lessons into their serializable form, sorted by start then lesson id
func NewOutput(lessons []Lesson, score, status string) Output {
	output := Output{
		Score:  score,
		Status: status,
		Lessons: lo.Map(lessons, func(lesson Lesson, _ int) OutputLesson {
			outputLesson := OutputLesson{
				Id:           lesson.Id,
				Subject:      lesson.Subject,
				Teacher:      lesson.Teacher,
				StudentGroup: lesson.StudentGroup,
				Exam:         lesson.Exam,
			}
			if lesson.Timeslot != nil {
				outputLesson.Timeslot = lo.ToPtr(lesson.Timeslot.Id)
				outputLesson.Date = lesson.Timeslot.Date.Format(time.DateOnly)
				outputLesson.StartTime = formatClock(lesson.Timeslot.StartTime)
				outputLesson.EndTime = formatClock(lesson.Timeslot.EndTime)
			}
			if lesson.Room != nil {
				outputLesson.Room = lo.ToPtr(lesson.Room.Id)
				outputLesson.RoomName = lesson.Room.Name
			}
			return outputLesson
		}),
	}

	slices.SortStableFunc(output.Lessons, func(a, b OutputLesson) int {
		if a.Date+a.StartTime != b.Date+b.StartTime {
			if a.Date+a.StartTime < b.Date+b.StartTime {
				return -1
			}
			return 1
		}
		if a.Id < b.Id {
			return -1
		} else if a.Id > b.Id {
			return 1
		}
		return 0
	})
	return output
}

func (output Output) ToJson() ([]byte, error) {
	return json.MarshalIndent(output, "", "  ")
}

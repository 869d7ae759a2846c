package model

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

const clockLayout = "15:04"

type RawTimeslot struct {
	Id        uint64 `mapstructure:"id"`
	Date      string `mapstructure:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `mapstructure:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `mapstructure:"endTime" validate:"required,datetime=15:04"`
}

type RawRoom struct {
	Id   uint64 `mapstructure:"id"`
	Name string `mapstructure:"name" validate:"required"`
}

type RawLesson struct {
	Id           uint64  `mapstructure:"id"`
	Subject      string  `mapstructure:"subject" validate:"required"`
	Teacher      string  `mapstructure:"teacher" validate:"required"`
	StudentGroup string  `mapstructure:"studentGroup" validate:"required"`
	Exam         bool    `mapstructure:"exam"`
	Timeslot     *uint64 `mapstructure:"timeslot"`
	Room         *uint64 `mapstructure:"room"`
}

type RawProblem struct {
	Timeslots []RawTimeslot `mapstructure:"timeslots" validate:"dive"`
	Rooms     []RawRoom     `mapstructure:"rooms" validate:"dive"`
	Lessons   []RawLesson   `mapstructure:"lessons" validate:"dive"`
}

var inputValidator = validator.New()

func ProblemFromJson(file string) (Problem, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Problem{}, fmt.Errorf("cannot read input file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Problem{}, err
	}

	var rawInput RawProblem
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	return ProcessRawInput(rawInput)
}

func ProcessRawInput(rawInput RawProblem) (Problem, error) {
	if err := inputValidator.Struct(rawInput); err != nil {
		return Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}

	problem := Problem{
		Timeslots: make([]Timeslot, 0, len(rawInput.Timeslots)),
		Rooms: lo.Map(rawInput.Rooms, func(room RawRoom, _ int) Room {
			return Room{Id: room.Id, Name: room.Name}
		}),
	}

	//** Manage timeslots
	for _, rawTimeslot := range rawInput.Timeslots {
		// Formats were already checked by the validator
		date, _ := time.Parse(time.DateOnly, rawTimeslot.Date)
		start, _ := time.Parse(clockLayout, rawTimeslot.StartTime)
		end, _ := time.Parse(clockLayout, rawTimeslot.EndTime)
		problem.Timeslots = append(problem.Timeslots, NewTimeslot(
			rawTimeslot.Id,
			date,
			Clock(start.Hour(), start.Minute()),
			Clock(end.Hour(), end.Minute()),
		))
	}

	//** Manage lessons
	timeslotIndex, roomIndex := problem.TimeslotIndex(), problem.RoomIndex()
	problem.Lessons = make([]Lesson, 0, len(rawInput.Lessons))
	for _, rawLesson := range rawInput.Lessons {
		lesson := Lesson{
			Id:           rawLesson.Id,
			Subject:      rawLesson.Subject,
			Teacher:      rawLesson.Teacher,
			StudentGroup: rawLesson.StudentGroup,
			Exam:         rawLesson.Exam,
		}
		// Pre-assigned planning variables must reference known facts
		if rawLesson.Timeslot != nil {
			index, ok := timeslotIndex[*rawLesson.Timeslot]
			if !ok {
				return Problem{}, fmt.Errorf("%w: lesson %v references unknown timeslot %v", ErrInvalidProblem, rawLesson.Id, *rawLesson.Timeslot)
			}
			lesson.Timeslot = &problem.Timeslots[index]
		}
		if rawLesson.Room != nil {
			index, ok := roomIndex[*rawLesson.Room]
			if !ok {
				return Problem{}, fmt.Errorf("%w: lesson %v references unknown room %v", ErrInvalidProblem, rawLesson.Id, *rawLesson.Room)
			}
			lesson.Room = &problem.Rooms[index]
		}
		problem.Lessons = append(problem.Lessons, lesson)
	}

	if err := problem.Validate(); err != nil {
		return Problem{}, err
	}
	return problem, nil
}

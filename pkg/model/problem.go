package model

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var ErrInvalidProblem = errors.New("invalid problem")

// Problem groups the facts (timeslots, rooms) and the planning entities (lessons) of a timetable
type Problem struct {
	Timeslots []Timeslot
	Rooms     []Room
	Lessons   []Lesson
}

// Clone deep-copies the problem. Planning variables of the copied lessons point into the copy's facts.
func (problem Problem) Clone() Problem {
	clone := Problem{
		Timeslots: make([]Timeslot, len(problem.Timeslots)),
		Rooms:     make([]Room, len(problem.Rooms)),
		Lessons:   make([]Lesson, len(problem.Lessons)),
	}
	copy(clone.Timeslots, problem.Timeslots)
	copy(clone.Rooms, problem.Rooms)
	copy(clone.Lessons, problem.Lessons)

	timeslotIndex, roomIndex := problem.TimeslotIndex(), problem.RoomIndex()
	for i := range clone.Lessons {
		lesson := &clone.Lessons[i]
		if lesson.Timeslot != nil {
			if index, ok := timeslotIndex[lesson.Timeslot.Id]; ok {
				lesson.Timeslot = &clone.Timeslots[index]
			}
		}
		if lesson.Room != nil {
			if index, ok := roomIndex[lesson.Room.Id]; ok {
				lesson.Room = &clone.Rooms[index]
			}
		}
	}
	return clone
}

// TimeslotIndex maps every timeslot id to its position in Timeslots
func (problem Problem) TimeslotIndex() map[uint64]int {
	index := make(map[uint64]int, len(problem.Timeslots))
	for i, timeslot := range problem.Timeslots {
		index[timeslot.Id] = i
	}
	return index
}

// RoomIndex maps every room id to its position in Rooms
func (problem Problem) RoomIndex() map[uint64]int {
	index := make(map[uint64]int, len(problem.Rooms))
	for i, room := range problem.Rooms {
		index[room.Id] = i
	}
	return index
}

// LessonPointers returns pointers to the problem's lessons, the shape constraints are evaluated on
func (problem Problem) LessonPointers() []*Lesson {
	return lo.Map(problem.Lessons, func(_ Lesson, i int) *Lesson { return &problem.Lessons[i] })
}

// Validate checks ids are unique, labels are present, timeslots are well-formed and pre-set
// planning variables reference facts of the problem
func (problem Problem) Validate() error {
	if duplicates := lo.FindDuplicates(lo.Map(problem.Timeslots, func(timeslot Timeslot, _ int) uint64 { return timeslot.Id })); len(duplicates) > 0 {
		return fmt.Errorf("%w: duplicate timeslot ids %v", ErrInvalidProblem, duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(problem.Rooms, func(room Room, _ int) uint64 { return room.Id })); len(duplicates) > 0 {
		return fmt.Errorf("%w: duplicate room ids %v", ErrInvalidProblem, duplicates)
	}
	if duplicates := lo.FindDuplicates(lo.Map(problem.Lessons, func(lesson Lesson, _ int) uint64 { return lesson.Id })); len(duplicates) > 0 {
		return fmt.Errorf("%w: duplicate lesson ids %v", ErrInvalidProblem, duplicates)
	}

	for _, timeslot := range problem.Timeslots {
		if timeslot.EndTime <= timeslot.StartTime {
			return fmt.Errorf("%w: timeslot %v ends before it starts", ErrInvalidProblem, timeslot.Id)
		}
	}

	timeslotIndex, roomIndex := problem.TimeslotIndex(), problem.RoomIndex()
	for _, lesson := range problem.Lessons {
		if lesson.Subject == "" || lesson.Teacher == "" || lesson.StudentGroup == "" {
			return fmt.Errorf("%w: lesson %v must have a subject, a teacher and a student group", ErrInvalidProblem, lesson.Id)
		}
		if lesson.Timeslot != nil {
			if index, ok := timeslotIndex[lesson.Timeslot.Id]; !ok || !problem.Timeslots[index].Equal(*lesson.Timeslot) {
				return fmt.Errorf("%w: lesson %v references unknown timeslot %v", ErrInvalidProblem, lesson.Id, lesson.Timeslot.Id)
			}
		}
		if lesson.Room != nil {
			if _, ok := roomIndex[lesson.Room.Id]; !ok {
				return fmt.Errorf("%w: lesson %v references unknown room %v", ErrInvalidProblem, lesson.Id, lesson.Room.Id)
			}
		}
	}
	return nil
}

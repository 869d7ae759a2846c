package solver

import (
	"fmt"
	"math/rand"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

const unassigned = -1

// workingSolution is a chain's private copy of the problem together with its incremental score
type workingSolution struct {
	problem    model.Problem
	lessons    []*model.Lesson
	calculator *constraint.Calculator

	// Position of every lesson's planning variables in the problem's facts (unassigned when nil)
	timeslots []int
	rooms     []int
}

func newWorkingSolution(problem model.Problem, constraints *constraint.Set) *workingSolution {
	clone := problem.Clone()
	lessons := clone.LessonPointers()
	solution := &workingSolution{
		problem:    clone,
		lessons:    lessons,
		calculator: constraints.NewCalculator(lessons),
		timeslots:  make([]int, len(lessons)),
		rooms:      make([]int, len(lessons)),
	}

	timeslotIndex, roomIndex := clone.TimeslotIndex(), clone.RoomIndex()
	for i, lesson := range lessons {
		solution.timeslots[i], solution.rooms[i] = unassigned, unassigned
		if lesson.Timeslot != nil {
			solution.timeslots[i] = timeslotIndex[lesson.Timeslot.Id]
		}
		if lesson.Room != nil {
			solution.rooms[i] = roomIndex[lesson.Room.Id]
		}
	}
	return solution
}

func (solution *workingSolution) score() score.HardSoftScore {
	return solution.calculator.Score()
}

// setTimeslot changes lesson's timeslot keeping the score up to date
func (solution *workingSolution) setTimeslot(lesson, timeslot int) {
	solution.calculator.Retract(lesson)
	solution.assignTimeslot(lesson, timeslot)
	solution.calculator.Insert(lesson)
}

func (solution *workingSolution) setRoom(lesson, room int) {
	solution.calculator.Retract(lesson)
	solution.assignRoom(lesson, room)
	solution.calculator.Insert(lesson)
}

func (solution *workingSolution) assignTimeslot(lesson, timeslot int) {
	solution.timeslots[lesson] = timeslot
	if timeslot == unassigned {
		solution.lessons[lesson].Timeslot = nil
	} else {
		solution.lessons[lesson].Timeslot = &solution.problem.Timeslots[timeslot]
	}
}

func (solution *workingSolution) assignRoom(lesson, room int) {
	solution.rooms[lesson] = room
	if room == unassigned {
		solution.lessons[lesson].Room = nil
	} else {
		solution.lessons[lesson].Room = &solution.problem.Rooms[room]
	}
}

// snapshot copies the current assignment into a problem independent from the working solution
func (solution *workingSolution) snapshot() model.Problem {
	return solution.problem.Clone()
}

func (solution *workingSolution) validLesson(lesson int) bool {
	return lesson >= 0 && lesson < len(solution.lessons)
}

func (solution *workingSolution) validTimeslot(timeslot int) bool {
	return timeslot == unassigned || (timeslot >= 0 && timeslot < len(solution.problem.Timeslots))
}

func (solution *workingSolution) validRoom(room int) bool {
	return room == unassigned || (room >= 0 && room < len(solution.problem.Rooms))
}

// move is an atomic change of planning variables. A move is only applied when isDoable holds,
// and do returns the move that reverts it.
type move interface {
	isDoable(solution *workingSolution) bool
	do(solution *workingSolution) move
	// planningLessons lists the lessons whose variables the move changes
	planningLessons() []int
	fmt.Stringer
}

//** Change timeslot

type changeTimeslotMove struct {
	lesson, timeslot int
}

func (m changeTimeslotMove) isDoable(solution *workingSolution) bool {
	return solution.validLesson(m.lesson) &&
		solution.validTimeslot(m.timeslot) &&
		solution.timeslots[m.lesson] != m.timeslot
}

func (m changeTimeslotMove) do(solution *workingSolution) move {
	undo := changeTimeslotMove{lesson: m.lesson, timeslot: solution.timeslots[m.lesson]}
	solution.setTimeslot(m.lesson, m.timeslot)
	return undo
}

func (m changeTimeslotMove) planningLessons() []int { return []int{m.lesson} }

func (m changeTimeslotMove) String() string {
	return fmt.Sprintf("lesson %v => timeslot %v", m.lesson, m.timeslot)
}

//** Swap timeslots

type swapTimeslotsMove struct {
	left, right int
}

func (m swapTimeslotsMove) isDoable(solution *workingSolution) bool {
	if !solution.validLesson(m.left) || !solution.validLesson(m.right) || m.left == m.right {
		return false
	}
	left, right := solution.timeslots[m.left], solution.timeslots[m.right]
	if left == right {
		return false
	}
	// Swapping two timeslots with the same business key changes nothing
	if left != unassigned && right != unassigned {
		return !solution.problem.Timeslots[left].Equal(solution.problem.Timeslots[right])
	}
	return true
}

func (m swapTimeslotsMove) do(solution *workingSolution) move {
	left, right := solution.timeslots[m.left], solution.timeslots[m.right]
	solution.calculator.Retract(m.left)
	solution.calculator.Retract(m.right)
	solution.assignTimeslot(m.left, right)
	solution.assignTimeslot(m.right, left)
	solution.calculator.Insert(m.left)
	solution.calculator.Insert(m.right)
	return m
}

func (m swapTimeslotsMove) planningLessons() []int { return []int{m.left, m.right} }

func (m swapTimeslotsMove) String() string {
	return fmt.Sprintf("lesson %v <=> lesson %v", m.left, m.right)
}

//** Change room

type changeRoomMove struct {
	lesson, room int
}

func (m changeRoomMove) isDoable(solution *workingSolution) bool {
	return solution.validLesson(m.lesson) &&
		solution.validRoom(m.room) &&
		solution.rooms[m.lesson] != m.room
}

func (m changeRoomMove) do(solution *workingSolution) move {
	undo := changeRoomMove{lesson: m.lesson, room: solution.rooms[m.lesson]}
	solution.setRoom(m.lesson, m.room)
	return undo
}

func (m changeRoomMove) planningLessons() []int { return []int{m.lesson} }

func (m changeRoomMove) String() string {
	return fmt.Sprintf("lesson %v => room %v", m.lesson, m.room)
}

//** Selection

// moveSelector draws random moves. Timeslot moves are favoured because rooms carry no constraint.
type moveSelector struct {
	random *rand.Rand
}

func (selector moveSelector) next(solution *workingSolution) move {
	lessons, timeslots, rooms := len(solution.lessons), len(solution.problem.Timeslots), len(solution.problem.Rooms)
	if lessons == 0 {
		return changeTimeslotMove{lesson: unassigned, timeslot: unassigned}
	}

	switch pick := selector.random.Intn(10); {
	case pick < 5 && timeslots > 0:
		return changeTimeslotMove{lesson: selector.random.Intn(lessons), timeslot: selector.random.Intn(timeslots)}
	case pick < 9 || rooms == 0:
		return swapTimeslotsMove{left: selector.random.Intn(lessons), right: selector.random.Intn(lessons)}
	default:
		return changeRoomMove{lesson: selector.random.Intn(lessons), room: selector.random.Intn(rooms)}
	}
}

// anyDoable reports whether the problem admits at least one doable move once every lesson is
// assigned as far as the facts allow. Without timeslots no move can change the score: rooms carry
// no constraint and the construction already assigned them.
func anyDoable(solution *workingSolution) bool {
	if len(solution.lessons) == 0 || len(solution.problem.Timeslots) == 0 {
		return false
	}
	if len(solution.problem.Timeslots) > 1 || len(solution.problem.Rooms) > 1 {
		return true
	}
	// Single fact sets: a lesson can still move from unassigned onto the only fact
	for i := range solution.lessons {
		if (len(solution.problem.Timeslots) == 1 && solution.timeslots[i] == unassigned) ||
			(len(solution.problem.Rooms) == 1 && solution.rooms[i] == unassigned) {
			return true
		}
	}
	return false
}

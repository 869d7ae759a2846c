package solver

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
)

var ErrInvalidSolution = errors.New("invalid solution")

// Verify checks solution against the problem it was solved from: every lesson is present with
// unchanged facts, planning variables reference the problem's timeslots and rooms, and the stored
// score and status match a from-scratch evaluation
func Verify(constraints *constraint.Set, problem model.Problem, solution Solution) error {
	if len(solution.Problem.Lessons) != len(problem.Lessons) {
		return fmt.Errorf("%w: %v lessons were expected, got %v", ErrInvalidSolution, len(problem.Lessons), len(solution.Problem.Lessons))
	} else if duplicates := lo.FindDuplicatesBy(solution.Problem.Lessons, func(lesson model.Lesson) uint64 { return lesson.Id }); len(duplicates) > 0 {
		return fmt.Errorf("%w: lesson %v appears more than once", ErrInvalidSolution, duplicates[0].Id)
	}

	originals := lo.SliceToMap(problem.Lessons, func(lesson model.Lesson) (uint64, model.Lesson) { return lesson.Id, lesson })
	timeslots := lo.SliceToMap(problem.Timeslots, func(timeslot model.Timeslot) (uint64, model.Timeslot) { return timeslot.Id, timeslot })
	rooms := lo.SliceToMap(problem.Rooms, func(room model.Room) (uint64, model.Room) { return room.Id, room })

	for _, lesson := range solution.Lessons() {
		original, ok := originals[lesson.Id]
		if !ok {
			return fmt.Errorf("%w: unknown lesson %v", ErrInvalidSolution, lesson.Id)
		} else if !lesson.SameFacts(&original) {
			return fmt.Errorf("%w: lesson %v was modified", ErrInvalidSolution, lesson.Id)
		}

		if lesson.Timeslot != nil {
			if timeslot, ok := timeslots[lesson.Timeslot.Id]; !ok || !timeslot.Equal(*lesson.Timeslot) {
				return fmt.Errorf("%w: lesson %v is scheduled in unknown timeslot %v", ErrInvalidSolution, lesson.Id, lesson.Timeslot)
			}
		}
		if lesson.Room != nil {
			if room, ok := rooms[lesson.Room.Id]; !ok || room != *lesson.Room {
				return fmt.Errorf("%w: lesson %v is held in unknown room %v", ErrInvalidSolution, lesson.Id, lesson.Room)
			}
		}
	}

	if recomputed := constraints.Score(solution.Lessons()); recomputed != solution.Score {
		return fmt.Errorf("%w: score %v does not match the recomputed score %v", ErrInvalidSolution, solution.Score, recomputed)
	}
	if solution.Status.Terminated() && solution.Status != statusOf(solution.Score) {
		return fmt.Errorf("%w: status %v does not match score %v", ErrInvalidSolution, solution.Status, solution.Score)
	}
	return nil
}

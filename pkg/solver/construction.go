package solver

import (
	"context"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// difficultyOrder sorts lessons most constrained first: exams, then lessons whose teacher and
// student group carry the most lessons
func difficultyOrder(lessons []*model.Lesson) []int {
	teacherLoad := lo.CountValuesBy(lessons, func(lesson *model.Lesson) string { return lesson.Teacher })
	groupLoad := lo.CountValuesBy(lessons, func(lesson *model.Lesson) string { return lesson.StudentGroup })
	difficulty := func(lesson *model.Lesson) int {
		load := teacherLoad[lesson.Teacher] + groupLoad[lesson.StudentGroup]
		if lesson.Exam {
			load += len(lessons) * 2
		}
		return load
	}

	order := lo.Range(len(lessons))
	slices.SortStableFunc(order, func(a, b int) int {
		return difficulty(lessons[b]) - difficulty(lessons[a])
	})
	return order
}

// construct assigns every unassigned timeslot greedily, the hardest lessons first, each one to the
// timeslot giving the best score so far. Rooms are matched afterwards.
// A cancelled context leaves the remaining lessons unassigned.
func construct(ctx context.Context, solution *workingSolution) {
	timeslots := len(solution.problem.Timeslots)
	if timeslots > 0 {
		for _, lesson := range difficultyOrder(solution.lessons) {
			if ctx.Err() != nil {
				return
			}
			if solution.timeslots[lesson] != unassigned {
				continue
			}

			best, bestScore := unassigned, score.HardSoftScore{}
			for timeslot := range timeslots {
				solution.setTimeslot(lesson, timeslot)
				if current := solution.score(); best == unassigned || current.BetterThan(bestScore) {
					best, bestScore = timeslot, current
				}
			}
			solution.setTimeslot(lesson, best)
		}
	}
	matchRooms(solution, false)
}

// matchRooms gives lessons sharing a timeslot distinct rooms whenever there are enough of them,
// through a maximum bipartite matching between lessons and free rooms. Lessons left over share
// rooms round robin. Unless reassign is set, rooms already assigned are kept.
func matchRooms(solution *workingSolution, reassign bool) {
	rooms := len(solution.problem.Rooms)
	if rooms == 0 {
		return
	}

	order, groups := groupByTimeslot(solution)
	leftover := 0
	for _, key := range order {
		group := groups[key]
		pending := lo.Filter(group, func(lesson int, _ int) bool {
			return reassign || solution.rooms[lesson] == unassigned
		})
		if len(pending) == 0 {
			continue
		}
		taken := lo.FilterMap(group, func(lesson int, _ int) (int, bool) {
			return solution.rooms[lesson], !reassign && solution.rooms[lesson] != unassigned
		})
		free := lo.Filter(lo.Range(rooms), func(room int, _ int) bool { return !slices.Contains(taken, room) })

		// Lessons keep the room they hold when no other lesson of the timeslot claims it, the
		// rest share out the remaining free rooms
		matched := matchLessonsToRooms(pending, free, func(lesson, room int) bool {
			return solution.rooms[lesson] == room
		})
		unmatched := lo.Filter(pending, func(lesson int, _ int) bool { return !lo.HasKey(matched, lesson) })
		remaining := lo.Without(free, lo.Values(matched)...)
		matched = lo.Assign(matched, matchLessonsToRooms(unmatched, remaining, func(_, _ int) bool { return true }))

		for _, lesson := range pending {
			room, ok := matched[lesson]
			if !ok {
				room = leftover % rooms
				leftover++
			}
			solution.setRoom(lesson, room)
		}
	}
}

// groupByTimeslot buckets lesson positions by their timeslot's business key, unassigned
// lessons together
func groupByTimeslot(solution *workingSolution) ([]model.TimeslotKey, map[model.TimeslotKey][]int) {
	order := make([]model.TimeslotKey, 0)
	groups := make(map[model.TimeslotKey][]int)
	for i, lesson := range solution.lessons {
		var key model.TimeslotKey
		if lesson.Timeslot != nil {
			key = lesson.Timeslot.Key()
		}
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	return order, groups
}

// matchLessonsToRooms finds a largest matching between lessons and the rooms compatible with them
func matchLessonsToRooms(lessons, rooms []int, compatible func(lesson, room int) bool) map[int]int {
	assignments := make(map[int]int, len(lessons))
	if len(lessons) == 0 || len(rooms) == 0 {
		return assignments
	}

	neighbors := func(lesson any, room any) (bool, error) {
		return compatible(lesson.(int), room.(int)), nil
	}

	lessonsAny, roomsAny := lo.Map(lessons, func(lesson int, _ int) any { return lesson }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(lessonsAny, roomsAny, neighbors)
	if err != nil {
		return assignments
	}

	for _, edge := range graph.LargestMatching() {
		lessonIndex, roomIndex := edge.Node1, edge.Node2-len(lessons)
		assignments[lessons[lessonIndex]] = rooms[roomIndex]
	}
	return assignments
}

package constraint

import (
	"errors"
	"sort"

	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// Set is an ordered list of constraints scored together
type Set struct {
	constraints []Constraint
}

func NewSet(constraints ...Constraint) *Set {
	return &Set{constraints: constraints}
}

func (set *Set) Constraints() []Constraint {
	return set.constraints
}

// Check runs every constraint's pre-solving validation and joins their errors
func (set *Set) Check(lessons []*model.Lesson) error {
	errs := lo.FilterMap(set.constraints, func(constraint Constraint, _ int) (error, bool) {
		checker, ok := constraint.(Checker)
		if !ok {
			return nil, false
		}
		err := checker.Check(lessons)
		return err, err != nil
	})
	return errors.Join(errs...)
}

// Score evaluates every constraint from scratch, each one on its own goroutine, and sums the
// results together with the init level (unassigned planning variables)
func (set *Set) Score(lessons []*model.Lesson) score.HardSoftScore {
	total := initScore(lessons)
	if len(set.constraints) == 0 {
		return total
	}

	scoresChannel := make(chan score.HardSoftScore) // Channel to collect constraint scores

	for _, constraint := range set.constraints {
		go func(constraint Constraint) {
			scoresChannel <- constraint.Score(lessons)
		}(constraint)
	}

	collected := 0
	for constraintScore := range scoresChannel {
		total = total.Add(constraintScore)

		// Check whether all constraints have been collected to properly close the channel
		if collected++; collected == len(set.constraints) {
			close(scoresChannel)
		}
	}
	return total
}

// Analysis is the contribution of a single constraint to a score
type Analysis struct {
	Name    string
	Score   score.HardSoftScore
	Matches []Match
}

// Analyze explains a score constraint by constraint, the most impactful penalties first
func (set *Set) Analyze(lessons []*model.Lesson) []Analysis {
	analyses := lo.Map(set.constraints, func(constraint Constraint, _ int) Analysis {
		matches := constraint.Matches(lessons)
		return Analysis{
			Name: constraint.Name(),
			Score: lo.Reduce(matches, func(total score.HardSoftScore, match Match, _ int) score.HardSoftScore {
				return total.Add(match.Impact)
			}, score.Zero),
			Matches: matches,
		}
	})
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[j].Score.BetterThan(analyses[i].Score)
	})
	return analyses
}

func initScore(lessons []*model.Lesson) score.HardSoftScore {
	return score.HardSoftScore{Init: -lo.SumBy(lessons, func(lesson *model.Lesson) int64 { return lesson.Unassigned() })}
}

// Calculator keeps the score of a working set of lessons up to date incrementally.
// Every change to a lesson's planning variables must be bracketed by Retract and Insert.
type Calculator struct {
	set      *Set
	lessons  []*model.Lesson
	trackers []tracker
	score    score.HardSoftScore
}

func (set *Set) NewCalculator(lessons []*model.Lesson) *Calculator {
	calculator := &Calculator{
		set:      set,
		lessons:  lessons,
		trackers: lo.Map(set.constraints, func(constraint Constraint, _ int) tracker { return constraint.newTracker(lessons) }),
	}
	for i := range lessons {
		calculator.score.Init -= lessons[i].Unassigned()
		for _, tracker := range calculator.trackers {
			calculator.score = calculator.score.Add(tracker.insert(i))
		}
	}
	return calculator
}

func (calculator *Calculator) Retract(lesson int) {
	calculator.score.Init += calculator.lessons[lesson].Unassigned()
	for _, tracker := range calculator.trackers {
		calculator.score = calculator.score.Add(tracker.retract(lesson))
	}
}

func (calculator *Calculator) Insert(lesson int) {
	calculator.score.Init -= calculator.lessons[lesson].Unassigned()
	for _, tracker := range calculator.trackers {
		calculator.score = calculator.score.Add(tracker.insert(lesson))
	}
}

func (calculator *Calculator) Score() score.HardSoftScore {
	return calculator.score
}

func (calculator *Calculator) Lessons() []*model.Lesson {
	return calculator.lessons
}

// Recompute scores the working set from scratch, without touching the incremental state
func (calculator *Calculator) Recompute() score.HardSoftScore {
	return calculator.set.Score(calculator.lessons)
}

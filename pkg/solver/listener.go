package solver

import (
	"time"

	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// Listener observes a solve. Chains run concurrently, so implementations must be safe for
// concurrent use.
type Listener interface {
	BestSolutionChanged(event BestSolutionEvent)
	StepEnded(event StepEvent)
	Finished(event FinishedEvent)
}

type BestSolutionEvent struct {
	Chain int
	Step  int64
	Score score.HardSoftScore
}

type StepEvent struct {
	Chain    int
	Step     int64
	Score    score.HardSoftScore
	Accepted bool // Whether the step applied a move
}

type FinishedEvent struct {
	Status   Status
	Score    score.HardSoftScore
	Steps    int64
	Duration time.Duration
	Reason   Reason
}

type listeners []Listener

func (all listeners) bestSolutionChanged(event BestSolutionEvent) {
	for _, listener := range all {
		listener.BestSolutionChanged(event)
	}
}

func (all listeners) stepEnded(event StepEvent) {
	for _, listener := range all {
		listener.StepEnded(event)
	}
}

func (all listeners) finished(event FinishedEvent) {
	for _, listener := range all {
		listener.Finished(event)
	}
}

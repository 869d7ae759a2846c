package solver

import (
	"context"
	"time"

	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

// Reason explains why a search stopped
type Reason string

const (
	ReasonCancelled       Reason = "cancelled"
	ReasonTimeLimit       Reason = "time limit"
	ReasonStepLimit       Reason = "step limit"
	ReasonUnimproved      Reason = "unimproved step limit"
	ReasonFeasiblePlateau Reason = "feasible plateau"
	ReasonTargetScore     Reason = "target score"
	ReasonNoDoableMove    Reason = "no doable move"
)

type termination struct {
	config   Config
	deadline time.Time
	now      func() time.Time
}

func newTermination(config Config, start time.Time, now func() time.Time) termination {
	t := termination{config: config, now: now}
	if config.TimeLimit > 0 {
		t.deadline = start.Add(config.TimeLimit)
	}
	return t
}

// check is evaluated between steps, never while a move is applied
func (t termination) check(ctx context.Context, step, unimproved int64, best score.HardSoftScore) (Reason, bool) {
	switch {
	case t.config.TargetScore != nil && best.NotWorseThan(*t.config.TargetScore):
		return ReasonTargetScore, true
	case ctx.Err() != nil:
		return ReasonCancelled, true
	case !t.deadline.IsZero() && !t.now().Before(t.deadline):
		return ReasonTimeLimit, true
	case t.config.StepLimit > 0 && step >= t.config.StepLimit:
		return ReasonStepLimit, true
	case t.config.UnimprovedStepLimit > 0 && unimproved >= t.config.UnimprovedStepLimit:
		return ReasonUnimproved, true
	case t.config.FeasiblePlateauSteps > 0 && best.IsFeasible() && unimproved >= t.config.FeasiblePlateauSteps:
		return ReasonFeasiblePlateau, true
	}
	return "", false
}

package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

const defaultSeed int64 = 1

var errTargetReached = errors.New("target score reached")

// Solution is the best timetable a solve found. Problem holds an independent copy of the input
// whose lessons carry the assigned planning variables.
type Solution struct {
	Problem  model.Problem
	Score    score.HardSoftScore
	Status   Status
	Steps    int64 // Local search steps summed over every chain
	Duration time.Duration
	Reason   Reason
}

func (solution Solution) Lessons() []*model.Lesson {
	return solution.Problem.LessonPointers()
}

type Solver struct {
	config      Config
	constraints *constraint.Set
	logger      *zap.Logger
	listeners   listeners
	now         func() time.Time
}

type Option func(solver *Solver)

func WithLogger(logger *zap.Logger) Option {
	return func(solver *Solver) {
		if logger != nil {
			solver.logger = logger
		}
	}
}

func WithListener(listener Listener) Option {
	return func(solver *Solver) {
		solver.listeners = append(solver.listeners, listener)
	}
}

func New(config Config, constraints *constraint.Set, options ...Option) (*Solver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	} else if constraints == nil {
		return nil, fmt.Errorf("%w: a constraint set is required", ErrInvalidConfig)
	}

	solver := &Solver{
		config:      config,
		constraints: constraints,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, option := range options {
		option(solver)
	}
	return solver, nil
}

func (solver *Solver) Config() Config {
	return solver.config
}

func (solver *Solver) Constraints() *constraint.Set {
	return solver.constraints
}

// Solve searches the best timetable for problem until a termination condition holds.
// The input problem is never modified. Invalid problems and missing configuration for the
// problem's lessons are reported as errors before any search; cancellation is not an error.
func (solver *Solver) Solve(ctx context.Context, problem model.Problem) (Solution, error) {
	if err := problem.Validate(); err != nil {
		return Solution{Status: Unsolved}, err
	}
	if err := solver.constraints.Check(problem.LessonPointers()); err != nil {
		return Solution{Status: Unsolved}, err
	}

	start := solver.now()
	seed := solver.config.Seed
	if seed == 0 {
		seed = defaultSeed
	}
	solver.logger.Info("Solving started",
		zap.Int("lessons", len(problem.Lessons)),
		zap.Int("timeslots", len(problem.Timeslots)),
		zap.Int("rooms", len(problem.Rooms)),
		zap.String("acceptor", solver.config.Acceptor),
		zap.Int("chains", solver.config.Chains),
		zap.Int64("seed", seed),
	)

	best := &globalBest{solver: solver}
	results := make([]chainResult, solver.config.Chains)
	group, groupCtx := errgroup.WithContext(ctx)
	for chain := range solver.config.Chains {
		group.Go(func() error {
			results[chain] = solver.runChain(groupCtx, chain, problem, deriveSeed(seed, uint64(chain)), start, best)
			if results[chain].reason == ReasonTargetScore {
				// Stop the remaining chains
				return errTargetReached
			}
			return nil
		})
	}
	_ = group.Wait()

	winner := results[0]
	var steps int64
	for _, result := range results {
		steps += result.steps
		if result.score.BetterThan(winner.score) {
			winner = result
		}
	}

	solution := Solution{
		Problem:  winner.best,
		Score:    winner.score,
		Status:   statusOf(winner.score),
		Steps:    steps,
		Duration: solver.now().Sub(start),
		Reason:   winner.reason,
	}
	solver.logger.Info("Solving ended",
		zap.Stringer("score", solution.Score),
		zap.Stringer("status", solution.Status),
		zap.String("reason", string(solution.Reason)),
		zap.Int64("steps", solution.Steps),
		zap.Duration("duration", solution.Duration),
	)
	solver.listeners.finished(FinishedEvent{
		Status:   solution.Status,
		Score:    solution.Score,
		Steps:    solution.Steps,
		Duration: solution.Duration,
		Reason:   solution.Reason,
	})
	return solution, nil
}

type chainResult struct {
	best   model.Problem
	score  score.HardSoftScore
	steps  int64
	reason Reason
}

// runChain builds an initial solution and improves it by local search. The working solution is
// only touched by this goroutine; the best solution is kept as an independent snapshot.
func (solver *Solver) runChain(ctx context.Context, chain int, problem model.Problem, seed int64, start time.Time, global *globalBest) chainResult {
	logger := solver.logger.With(zap.Int("chain", chain))
	random := rand.New(rand.NewSource(seed))
	solution := newWorkingSolution(problem, solver.constraints)

	// The construction heuristic shares the time budget of the search
	constructionCtx := ctx
	if solver.config.TimeLimit > 0 {
		var cancel context.CancelFunc
		constructionCtx, cancel = context.WithDeadline(ctx, start.Add(solver.config.TimeLimit))
		defer cancel()
	}
	construct(constructionCtx, solution)
	result := chainResult{best: solution.snapshot(), score: solution.score()}
	logger.Debug("Construction heuristic ended", zap.Stringer("score", result.score))
	global.offer(chain, 0, result.score)

	if !anyDoable(solution) {
		result.reason = ReasonNoDoableMove
		return result
	}

	var (
		step, unimproved int64
		selector         = moveSelector{random: random}
		acceptor         = newAcceptor(solver.config, result.score, random)
		termination      = newTermination(solver.config, start, solver.now)
	)
	for {
		if reason, done := termination.check(ctx, step, unimproved, result.score); done {
			result.reason = reason
			break
		}
		step++

		last := solution.score()
		var (
			picked      move
			pickedScore score.HardSoftScore
		)
		for range solver.config.MoveSampleSize {
			candidate := selector.next(solution)
			if !candidate.isDoable(solution) {
				continue
			}
			undo := candidate.do(solution)
			candidateScore := solution.score()
			undo.do(solution)

			if acceptor.isAccepted(candidateScore, last, result.score, candidate) &&
				(picked == nil || candidateScore.BetterThan(pickedScore)) {
				picked, pickedScore = candidate, candidateScore
			}
		}
		if picked != nil {
			picked.do(solution)
		}

		stepScore := solution.score()
		acceptor.stepEnded(step, stepScore, picked)
		solver.listeners.stepEnded(StepEvent{Chain: chain, Step: step, Score: stepScore, Accepted: picked != nil})

		if stepScore.BetterThan(result.score) {
			result.best, result.score = solution.snapshot(), stepScore
			unimproved = 0
			logger.Debug("New best solution", zap.Int64("step", step), zap.Stringer("score", stepScore))
			global.offer(chain, step, stepScore)
		} else {
			unimproved++
		}
	}
	result.steps = step

	// Rooms carry no constraint, so rematching them keeps the score
	polished := newWorkingSolution(result.best, solver.constraints)
	matchRooms(polished, true)
	if polished.score() == result.score {
		result.best = polished.snapshot()
	}

	logger.Debug("Local search ended", zap.Int64("steps", step), zap.Stringer("score", result.score), zap.String("reason", string(result.reason)))
	return result
}

// globalBest reports improvements of the best score across every chain
type globalBest struct {
	solver *Solver
	mutex  sync.Mutex
	score  *score.HardSoftScore
}

func (best *globalBest) offer(chain int, step int64, candidate score.HardSoftScore) {
	best.mutex.Lock()
	defer best.mutex.Unlock()

	if best.score != nil && !candidate.BetterThan(*best.score) {
		return
	}
	best.score = &candidate
	best.solver.listeners.bestSolutionChanged(BestSolutionEvent{Chain: chain, Step: step, Score: candidate})
}

// deriveSeed mixes a parent seed and a chain number into an independent seed (SplitMix64 finalizer)
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

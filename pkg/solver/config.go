package solver

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

var ErrInvalidConfig = errors.New("invalid solver configuration")

const (
	HillClimbing       = "hill-climbing"
	LateAcceptance     = "late-acceptance"
	SimulatedAnnealing = "simulated-annealing"
	Tabu               = "tabu"
)

var ValidAcceptors = []string{HillClimbing, LateAcceptance, SimulatedAnnealing, Tabu}

// Config parametrizes a solve. Zero limits are disabled, but a time, step or unimproved step
// limit must bound every solve.
type Config struct {
	TimeLimit            time.Duration
	StepLimit            int64
	UnimprovedStepLimit  int64
	FeasiblePlateauSteps int64 // Steps without improvement tolerated once the best score is feasible
	TargetScore          *score.HardSoftScore

	MoveSampleSize      int // Moves evaluated per step
	Acceptor            string
	StartingTemperature float64
	CoolingRate         float64 // Factor applied to the temperature after every step
	LateAcceptanceSize  int
	TabuSize            int

	Chains int   // Independent search chains run concurrently
	Seed   int64 // 0 picks a fixed default seed
}

func DefaultConfig() Config {
	return Config{
		TimeLimit:            30 * time.Second,
		UnimprovedStepLimit:  20000,
		FeasiblePlateauSteps: 5000,
		MoveSampleSize:       64,
		Acceptor:             LateAcceptance,
		StartingTemperature:  2,
		CoolingRate:          0.9995,
		LateAcceptanceSize:   400,
		TabuSize:             7,
		Chains:               1,
	}
}

func (config Config) Validate() error {
	switch {
	case !slices.Contains(ValidAcceptors, config.Acceptor):
		return fmt.Errorf("%w: unknown acceptor %q, allowed values are %q", ErrInvalidConfig, config.Acceptor, ValidAcceptors)
	case config.TimeLimit < 0 || config.StepLimit < 0 || config.UnimprovedStepLimit < 0 || config.FeasiblePlateauSteps < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	case config.TimeLimit == 0 && config.StepLimit == 0 && config.UnimprovedStepLimit == 0:
		return fmt.Errorf("%w: at least one of time limit, step limit or unimproved step limit must be set", ErrInvalidConfig)
	case config.MoveSampleSize <= 0:
		return fmt.Errorf("%w: move sample size must be positive: %v", ErrInvalidConfig, config.MoveSampleSize)
	case config.Chains <= 0:
		return fmt.Errorf("%w: chains must be positive: %v", ErrInvalidConfig, config.Chains)
	case config.Acceptor == SimulatedAnnealing && (config.StartingTemperature <= 0 || config.CoolingRate <= 0 || config.CoolingRate > 1):
		return fmt.Errorf("%w: simulated annealing needs a positive starting temperature and a cooling rate in (0, 1]", ErrInvalidConfig)
	case config.Acceptor == LateAcceptance && config.LateAcceptanceSize <= 0:
		return fmt.Errorf("%w: late acceptance size must be positive: %v", ErrInvalidConfig, config.LateAcceptanceSize)
	case config.Acceptor == Tabu && config.TabuSize <= 0:
		return fmt.Errorf("%w: tabu size must be positive: %v", ErrInvalidConfig, config.TabuSize)
	}
	return nil
}

// Status is the lifecycle of a solve
type Status int

const (
	Unsolved Status = iota
	Solving
	Feasible
	InfeasibleTimeout
)

func (status Status) String() string {
	switch status {
	case Unsolved:
		return "UNSOLVED"
	case Solving:
		return "SOLVING"
	case Feasible:
		return "FEASIBLE"
	case InfeasibleTimeout:
		return "INFEASIBLE_TIMEOUT"
	default:
		return fmt.Sprintf("Status(%d)", int(status))
	}
}

// Terminated reports whether the status is final
func (status Status) Terminated() bool {
	return status == Feasible || status == InfeasibleTimeout
}

func statusOf(best score.HardSoftScore) Status {
	if best.IsFeasible() {
		return Feasible
	}
	return InfeasibleTimeout
}

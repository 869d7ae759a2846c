package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	envPrefix = "TIMETABLE"
)

type Config struct {
	Env         string
	Log         LogConfig
	MetricsAddr string
	ExamMarker  string // Lessons whose subject contains it are exams

	Solver      solver.Config
	Constraints constraint.Config
}

type LogConfig struct {
	Level  string
	Format string
}

// TeacherCap is a teacher's weekly hour cap. Caps are listed rather than keyed by teacher because
// configuration keys are case-insensitive.
type TeacherCap struct {
	Teacher string  `mapstructure:"teacher"`
	Hours   float64 `mapstructure:"hours"`
}

// Load reads the configuration from path (JSON, YAML or TOML, optional), a .env file (optional)
// and TIMETABLE_ prefixed environment variables, in increasing order of precedence
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read configuration file %v: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		MetricsAddr: v.GetString("metrics.addr"),
		ExamMarker:  v.GetString("problem.exam_marker"),
	}

	var err error
	if cfg.Solver, err = loadSolver(v); err != nil {
		return nil, err
	}
	if cfg.Constraints, err = loadConstraints(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSolver(v *viper.Viper) (solver.Config, error) {
	cfg := solver.Config{
		TimeLimit:            v.GetDuration("solver.time_limit"),
		StepLimit:            v.GetInt64("solver.step_limit"),
		UnimprovedStepLimit:  v.GetInt64("solver.unimproved_step_limit"),
		FeasiblePlateauSteps: v.GetInt64("solver.feasible_plateau_steps"),
		MoveSampleSize:       v.GetInt("solver.move_sample_size"),
		Acceptor:             strings.ToLower(v.GetString("solver.acceptor")),
		StartingTemperature:  v.GetFloat64("solver.starting_temperature"),
		CoolingRate:          v.GetFloat64("solver.cooling_rate"),
		LateAcceptanceSize:   v.GetInt("solver.late_acceptance_size"),
		TabuSize:             v.GetInt("solver.tabu_size"),
		Chains:               v.GetInt("solver.chains"),
		Seed:                 v.GetInt64("solver.seed"),
	}

	if raw := v.GetString("solver.target_score"); raw != "" {
		target, err := score.Parse(raw)
		if err != nil {
			return solver.Config{}, fmt.Errorf("invalid solver.target_score: %w", err)
		}
		cfg.TargetScore = &target
	}

	if err := cfg.Validate(); err != nil {
		return solver.Config{}, err
	}
	return cfg, nil
}

func loadConstraints(v *viper.Viper) (constraint.Config, error) {
	cfg := constraint.Config{
		TeacherCaps:         make(map[string]float64),
		WeeklyTolerance:     v.GetFloat64("constraints.weekly_tolerance"),
		ExamMinDaysApart:    v.GetInt64("constraints.exam_min_days_apart"),
		ConsecutiveSubjects: v.GetStringSlice("constraints.consecutive_subjects"),
		MaxGap:              v.GetDuration("constraints.max_gap"),
	}

	var caps []TeacherCap
	if err := v.UnmarshalKey("constraints.teacher_caps", &caps); err != nil {
		return constraint.Config{}, fmt.Errorf("invalid constraints.teacher_caps: %w", err)
	}
	for _, c := range caps {
		cfg.TeacherCaps[c.Teacher] = c.Hours
	}

	start, err := parseDate(v.GetString("constraints.exam_window.start"))
	if err != nil {
		return constraint.Config{}, fmt.Errorf("invalid constraints.exam_window.start: %w", err)
	}
	end, err := parseDate(v.GetString("constraints.exam_window.end"))
	if err != nil {
		return constraint.Config{}, fmt.Errorf("invalid constraints.exam_window.end: %w", err)
	}
	if start.IsZero() != end.IsZero() {
		return constraint.Config{}, fmt.Errorf("%w: the exam window needs both a start and an end", constraint.ErrInvalidConfig)
	}
	cfg.ExamWindow = constraint.Window{Start: start, End: end}

	if err := cfg.Validate(); err != nil {
		return constraint.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("problem.exam_marker", "Klausur")

	solverDefaults := solver.DefaultConfig()
	v.SetDefault("solver.time_limit", solverDefaults.TimeLimit)
	v.SetDefault("solver.step_limit", solverDefaults.StepLimit)
	v.SetDefault("solver.unimproved_step_limit", solverDefaults.UnimprovedStepLimit)
	v.SetDefault("solver.feasible_plateau_steps", solverDefaults.FeasiblePlateauSteps)
	v.SetDefault("solver.target_score", "")
	v.SetDefault("solver.move_sample_size", solverDefaults.MoveSampleSize)
	v.SetDefault("solver.acceptor", solverDefaults.Acceptor)
	v.SetDefault("solver.starting_temperature", solverDefaults.StartingTemperature)
	v.SetDefault("solver.cooling_rate", solverDefaults.CoolingRate)
	v.SetDefault("solver.late_acceptance_size", solverDefaults.LateAcceptanceSize)
	v.SetDefault("solver.tabu_size", solverDefaults.TabuSize)
	v.SetDefault("solver.chains", solverDefaults.Chains)
	v.SetDefault("solver.seed", solverDefaults.Seed)

	constraintDefaults := constraint.DefaultConfig()
	v.SetDefault("constraints.weekly_tolerance", constraintDefaults.WeeklyTolerance)
	v.SetDefault("constraints.exam_min_days_apart", constraintDefaults.ExamMinDaysApart)
	v.SetDefault("constraints.consecutive_subjects", constraintDefaults.ConsecutiveSubjects)
	v.SetDefault("constraints.max_gap", constraintDefaults.MaxGap)
	v.SetDefault("constraints.exam_window.start", "")
	v.SetDefault("constraints.exam_window.end", "")
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, raw)
}

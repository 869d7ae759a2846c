package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "Klausur", cfg.ExamMarker)
	assert.Equal(t, solver.DefaultConfig(), cfg.Solver)
	assert.Equal(t, constraint.DefaultConfig(), cfg.Constraints)
}

func TestLoadFile(t *testing.T) {
	//** Arrange
	path := writeConfig(t, "config.json", `{
		"log": {"level": "debug", "format": "json"},
		"solver": {
			"time_limit": "2m",
			"acceptor": "Tabu",
			"tabu_size": 9,
			"chains": 4,
			"seed": 7,
			"target_score": "0hard/-10soft"
		},
		"constraints": {
			"teacher_caps": [{"teacher": "Sonja", "hours": 13.5}, {"teacher": "Stefanie Puhl", "hours": 10.8}],
			"exam_window": {"start": "2023-02-17", "end": "2023-03-03"},
			"consecutive_subjects": ["13.4"],
			"max_gap": "20m"
		}
	}`)

	//** Act
	cfg, err := Load(path)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Minute, cfg.Solver.TimeLimit)
	assert.Equal(t, solver.Tabu, cfg.Solver.Acceptor)
	assert.Equal(t, 9, cfg.Solver.TabuSize)
	assert.Equal(t, 4, cfg.Solver.Chains)
	assert.Equal(t, int64(7), cfg.Solver.Seed)
	require.NotNil(t, cfg.Solver.TargetScore)
	assert.Equal(t, score.Of(0, -10), *cfg.Solver.TargetScore)

	assert.Equal(t, map[string]float64{"Sonja": 13.5, "Stefanie Puhl": 10.8}, cfg.Constraints.TeacherCaps, "teacher names keep their case")
	assert.Equal(t, model.Date(2023, time.February, 17), cfg.Constraints.ExamWindow.Start)
	assert.Equal(t, model.Date(2023, time.March, 3), cfg.Constraints.ExamWindow.End)
	assert.Equal(t, []string{"13.4"}, cfg.Constraints.ConsecutiveSubjects)
	assert.Equal(t, 20*time.Minute, cfg.Constraints.MaxGap)
	assert.Equal(t, int64(2), cfg.Constraints.ExamMinDaysApart)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", "solver:\n  acceptor: tabu\n  step_limit: 100\n")
	t.Setenv("TIMETABLE_SOLVER_ACCEPTOR", "simulated-annealing")
	t.Setenv("TIMETABLE_SOLVER_TIME_LIMIT", "5s")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, solver.SimulatedAnnealing, cfg.Solver.Acceptor)
	assert.Equal(t, 5*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, int64(100), cfg.Solver.StepLimit)
}

func TestLoadRejectsInvalidConfiguration(t *testing.T) {
	cases := map[string]string{
		"unknown acceptor":   `{"solver": {"acceptor": "great-deluge"}}`,
		"bad target score":   `{"solver": {"target_score": "zero"}}`,
		"bad window date":    `{"constraints": {"exam_window": {"start": "17.02.2023", "end": "2023-03-03"}}}`,
		"half open window":   `{"constraints": {"exam_window": {"start": "2023-02-17"}}}`,
		"inverted window":    `{"constraints": {"exam_window": {"start": "2023-03-03", "end": "2023-02-17"}}}`,
		"negative tolerance": `{"constraints": {"weekly_tolerance": -1}}`,
		"unbounded solve":    `{"solver": {"time_limit": "0s", "step_limit": 0, "unimproved_step_limit": 0}}`,
	}

	for name, content := range cases {
		_, err := Load(writeConfig(t, "config.json", content))
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

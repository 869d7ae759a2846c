package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
)

func TestVerifyRejectsTamperedSolutions(t *testing.T) {
	//** Arrange
	problem := smallProblem()
	constraints := conflictConstraints()
	solved, err := newTestSolver(t, testConfig(HillClimbing), constraints).Solve(context.Background(), problem)
	require.NoError(t, err)
	require.NoError(t, Verify(constraints, problem, solved))

	tamper := func(change func(solution *Solution)) Solution {
		solution := solved
		solution.Problem = solved.Problem.Clone()
		change(&solution)
		return solution
	}

	cases := map[string]Solution{
		"missing lesson": tamper(func(solution *Solution) {
			solution.Problem.Lessons = solution.Problem.Lessons[:3]
		}),
		"duplicated lesson": tamper(func(solution *Solution) {
			solution.Problem.Lessons[3] = solution.Problem.Lessons[0]
		}),
		"modified lesson": tamper(func(solution *Solution) {
			solution.Problem.Lessons[0].Teacher = "Teacher3"
		}),
		"unknown timeslot": tamper(func(solution *Solution) {
			timeslot := model.NewTimeslot(99, model.Date(2023, time.March, 1), model.Clock(8, 0), model.Clock(9, 30))
			solution.Problem.Lessons[0].Timeslot = &timeslot
		}),
		"unknown room": tamper(func(solution *Solution) {
			solution.Problem.Lessons[0].Room = &model.Room{Id: 9, Name: "Room9"}
		}),
		"wrong score": tamper(func(solution *Solution) {
			solution.Score = solution.Score.Add(score.OneHard.Negate())
		}),
		"wrong status": tamper(func(solution *Solution) {
			solution.Status = InfeasibleTimeout
		}),
	}

	for name, solution := range cases {
		//** Act
		err := Verify(constraints, problem, solution)

		//** Assert
		assert.ErrorIs(t, err, ErrInvalidSolution, name)
	}
}

func TestVerifyAcceptsUnassignedLessonsReflectedInScore(t *testing.T) {
	//** Arrange
	problem := smallProblem()
	constraints := conflictConstraints()
	solution, err := newTestSolver(t, testConfig(HillClimbing), constraints).Solve(context.Background(), problem)
	require.NoError(t, err)

	solution.Problem = solution.Problem.Clone()
	solution.Problem.Lessons[0].Timeslot = nil
	solution.Problem.Lessons[0].Room = nil
	solution.Score = constraints.Score(solution.Lessons())
	solution.Status = statusOf(solution.Score)

	//** Act
	err = Verify(constraints, problem, solution)

	//** Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(-2), solution.Score.Init)
	assert.Equal(t, InfeasibleTimeout, solution.Status)
}

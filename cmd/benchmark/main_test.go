package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/limaJavier/lesson-timetabling/pkg/demo"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, int64(60*1000+1000+120), parseDuration("00:01:01.12"))
	assert.Equal(t, int64(60*60*1000+60*1000+1000+120), parseDuration("01:01:01.12"))
	assert.Equal(t, int64(60*1000+1000+120), parseDuration("1:01.12"))
	assert.Equal(t, int64(120), parseDuration("0:00.12"))
	assert.Equal(t, int64(120), parseDuration("00:00:00.12"))
}

func TestParseTimeLines(t *testing.T) {
	assert.Equal(t, int64(10*1000+50), parseDurationLine("\tElapsed (wall clock) time (h:mm:ss or m:ss): 0:10.05"))
	assert.Equal(t, float32(20), parseMemoryLine("\tMaximum resident set size (kbytes): 20480"))
	assert.Equal(t, int64(385), parseCpuPercentageLine("\tPercent of CPU this job got: 385%"))
}

func TestParseScoreLine(t *testing.T) {
	assert.Equal(t, score.Of(0, -42), parseScoreLine("Score: 0hard/-42soft"))
	assert.Equal(t, score.HardSoftScore{Init: -3, Hard: -1, Soft: 0}, parseScoreLine("Score: -3init/-1hard/0soft"))
}

func TestInputArgs(t *testing.T) {
	assert.Equal(t, []string{"-demo"}, inputArgs(demoTest))
	assert.Equal(t, []string{"-file", "in.json"}, inputArgs("in.json"))
}

func TestToRecord(t *testing.T) {
	//** Arrange
	result := BenchmarkResult{
		Acceptor:      solver.Tabu,
		Seed:          2,
		Test:          testMetadata(demoTest, demo.Problem()),
		Duration:      1500,
		Memory:        12.3,
		CpuPercentage: 99,
		Score:         score.Of(-1, -30),
		Result:        infeasible,
	}

	//** Act
	record := toRecord(result)

	//** Assert
	assert.Equal(t, []string{solver.Tabu, "2", demoTest, "119", "1", "111"}, record[:6])
	assert.Equal(t, []string{"1500", "12.3", "99", "-1", "-30", "infeasible"}, record[7:])
}

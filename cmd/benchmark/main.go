package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/limaJavier/lesson-timetabling/pkg/demo"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/score"
	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

const (
	executablePath = "../../bin/timetable"
	testDirectory  = "../../test/in/"
	demoTest       = "demo"
	KB             = 1024
)

type ResultType int

const (
	feasible ResultType = iota
	infeasible
	invalid
)

var resultTypes = map[ResultType]string{
	feasible:   "feasible",
	infeasible: "infeasible",
	invalid:    "invalid",
}

type TestMetadata struct {
	Name      string
	Timeslots int
	Rooms     int
	Lessons   int
	Exams     int
}

type BenchmarkResult struct {
	Acceptor      string
	Seed          int64
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Score         score.HardSoftScore
	Result        ResultType
}

func main() {
	timeLimitPtr := flag.String("time-limit", "10s", "Time limit of every run")
	seedsPtr := flag.Int("seeds", 3, "Number of seeds per acceptor and test")
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV results file")
	flag.Parse()

	tests := getTests()
	seeds := lo.RangeFrom(int64(1), *seedsPtr)
	results := make([]BenchmarkResult, 0, len(tests)*len(solver.ValidAcceptors)*len(seeds))

	for _, test := range tests {
		for _, acceptor := range solver.ValidAcceptors {
			for _, seed := range seeds {
				fmt.Printf("Benchmarking test \"%v\" with acceptor \"%v\" and seed \"%v\"\n", test.Name, acceptor, seed)

				duration, maxMemory, cpuPercentage, finalScore, result := measure(acceptor, seed, *timeLimitPtr, test.Name)

				results = append(results, BenchmarkResult{
					Acceptor:      acceptor,
					Seed:          seed,
					Test:          test,
					Duration:      duration,
					Memory:        maxMemory,
					CpuPercentage: cpuPercentage,
					Score:         finalScore,
					Result:        result,
				})
			}
		}
	}

	toCsv(*outPtr, results)
}

// getTests lists the demo school term followed by every input file of the test directory
func getTests() []TestMetadata {
	tests := []TestMetadata{testMetadata(demoTest, demo.Problem())}

	testFiles, err := os.ReadDir(testDirectory)
	if err != nil {
		if os.IsNotExist(err) {
			return tests
		}
		log.Fatalf("cannot read directory: %v", err)
	}

	for _, file := range testFiles {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		filename := testDirectory + file.Name()
		problem, err := model.ProblemFromJson(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}
		model.MarkExams(problem.Lessons, demo.ExamMarker)
		tests = append(tests, testMetadata(filename, problem))
	}

	return tests
}

func testMetadata(name string, problem model.Problem) TestMetadata {
	return TestMetadata{
		Name:      name,
		Timeslots: len(problem.Timeslots),
		Rooms:     len(problem.Rooms),
		Lessons:   len(problem.Lessons),
		Exams:     lo.CountBy(problem.Lessons, func(lesson model.Lesson) bool { return lesson.Exam }),
	}
}

func measure(acceptor string, seed int64, timeLimit, test string) (duration int64, maxMemory float32, cpuPercentage int64, finalScore score.HardSoftScore, result ResultType) {
	cmd := exec.Command("/usr/bin/time", append([]string{"-v", executablePath, "-acceptor", acceptor, "-seed", fmt.Sprint(seed), "-time-limit", timeLimit}, inputArgs(test)...)...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	switch cmd.ProcessState.ExitCode() {
	case 10:
		result = feasible
	case 15:
		result = invalid
	case 20:
		result = infeasible
	default:
		log.Fatalf("an error occurred during the execution \"timetable\" at test \"%v\" using acceptor \"%v\" and seed \"%v\": %v\n", test, acceptor, seed, stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))
	if result != invalid {
		finalScore = parseScoreLine(getLine("score:"))
	}

	return duration, maxMemory, cpuPercentage, finalScore, result
}

func inputArgs(test string) []string {
	if test == demoTest {
		return []string{"-demo"}
	}
	return []string{"-file", test}
}

func toCsv(path string, results []BenchmarkResult) {
	file, err := os.Create(path)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Acceptor", "Seed", "Test", "Timeslots", "Rooms", "Lessons", "Exams", "Duration(ms)", "Memory(MB)", "CPU(%)", "Hard", "Soft", "Result"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		if err := writer.Write(toRecord(result)); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func toRecord(result BenchmarkResult) []string {
	return []string{
		result.Acceptor,
		fmt.Sprintf("%d", result.Seed),
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.Timeslots),
		fmt.Sprintf("%d", result.Test.Rooms),
		fmt.Sprintf("%d", result.Test.Lessons),
		fmt.Sprintf("%d", result.Test.Exams),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		fmt.Sprintf("%d", result.Score.Hard),
		fmt.Sprintf("%d", result.Score.Soft),
		resultTypes[result.Result],
	}
}

func parseScoreLine(line string) score.HardSoftScore {
	scoreStr := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
	return lo.Must(score.Parse(scoreStr))
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / KB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}

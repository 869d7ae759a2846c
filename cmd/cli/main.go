package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/lesson-timetabling/pkg/config"
	"github.com/limaJavier/lesson-timetabling/pkg/constraint"
	"github.com/limaJavier/lesson-timetabling/pkg/demo"
	"github.com/limaJavier/lesson-timetabling/pkg/logger"
	"github.com/limaJavier/lesson-timetabling/pkg/metrics"
	"github.com/limaJavier/lesson-timetabling/pkg/model"
	"github.com/limaJavier/lesson-timetabling/pkg/solver"
)

// Exit codes read by the benchmark
const (
	exitFeasible   = 10
	exitInvalid    = 15
	exitInfeasible = 20
)

const analysisMatches = 5

func main() {
	// Define arguments
	configPathPtr := flag.String("config", "", "Path to a configuration file (JSON, YAML or TOML)")
	filePathPtr := flag.String("file", "", "Path to the input file")
	demoPtr := flag.Bool("demo", false, "Solve the demo school term instead of an input file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	acceptorPtr := flag.String("acceptor", "", fmt.Sprintf("Move acceptor of the local search. Allowed values are: %q; overrides the configuration", solver.ValidAcceptors))
	timeLimitPtr := flag.Duration("time-limit", 0, "Maximum solving time (e.g. \"30s\"); overrides the configuration")
	stepsPtr := flag.Int64("steps", 0, "Maximum local search steps; overrides the configuration")
	chainsPtr := flag.Int("chains", 0, "Number of concurrent search chains; overrides the configuration")
	seedPtr := flag.Int64("seed", 0, "Random seed; overrides the configuration")
	examMarkerPtr := flag.String("exam-marker", "", "Lessons whose subject contains this text are exams; overrides the configuration")
	metricsAddrPtr := flag.String("metrics-addr", "", "Address serving Prometheus metrics while solving (e.g. \":9090\"); disabled when empty")
	analyzePtr := flag.Bool("analyze", false, "Print the score of every constraint and its worst matches to the Standard Error")
	flag.Parse()

	// Validate arguments
	acceptor := strings.ToLower(*acceptorPtr)
	if acceptor != "" && !slices.Contains(solver.ValidAcceptors, acceptor) {
		log.Fatalf("%v is not a valid acceptor", acceptor)
	} else if *filePathPtr == "" && !*demoPtr {
		log.Fatal("an input file must be specified (or -demo)")
	} else if *filePathPtr != "" && *demoPtr {
		log.Fatal("-file and -demo are mutually exclusive")
	}

	cfg, err := config.Load(*configPathPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	overrideConfig(cfg, acceptor, *timeLimitPtr, *stepsPtr, *chainsPtr, *seedPtr, *examMarkerPtr, *metricsAddrPtr)
	if err := cfg.Solver.Validate(); err != nil {
		log.Fatal(err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	// Extract input
	var problem model.Problem
	if *demoPtr {
		problem = demo.Problem()
		cfg.Constraints = withDemoDefaults(cfg.Constraints)
	} else if problem, err = model.ProblemFromJson(*filePathPtr); err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}
	model.MarkExams(problem.Lessons, cfg.ExamMarker)

	// Initialize engines
	constraints, err := constraint.NewTimetableConstraints(cfg.Constraints)
	if err != nil {
		log.Fatalf("invalid constraint configuration: %v", err)
	}
	options := []solver.Option{solver.WithLogger(zapLogger)}
	if cfg.MetricsAddr != "" {
		collector := metrics.NewCollector()
		options = append(options, solver.WithListener(collector))
		serveMetrics(cfg.MetricsAddr, collector, zapLogger)
	}
	timetabler, err := solver.New(cfg.Solver, constraints, options...)
	if err != nil {
		log.Fatal(err)
	}

	// Build timetable; an interrupt stops the search and keeps the best timetable found so far
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	solution, err := timetabler.Solve(ctx, problem)
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}

	if *analyzePtr {
		printAnalysis(constraints.Analyze(solution.Lessons()))
	}

	// Marshal output into json
	output, err := model.NewOutput(solution.Problem.Lessons, solution.Score.String(), solution.Status.String()).ToJson()
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if *outFilePathPtr == "" {
		fmt.Println(string(output))
	} else if err := os.WriteFile(*outFilePathPtr, output, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	// Verify timetable correctness
	if err := solver.Verify(constraints, problem, solution); err != nil {
		zapLogger.Error("Timetable verification failed", zap.Error(err))
		os.Exit(exitInvalid)
	}

	fmt.Fprintf(os.Stderr, "Score: %v\n", solution.Score)
	fmt.Fprintf(os.Stderr, "Steps: %v\n", solution.Steps)
	if solution.Status == solver.Feasible {
		os.Exit(exitFeasible)
	}
	os.Exit(exitInfeasible)
}

func overrideConfig(cfg *config.Config, acceptor string, timeLimit time.Duration, steps int64, chains int, seed int64, examMarker, metricsAddr string) {
	if acceptor != "" {
		cfg.Solver.Acceptor = acceptor
	}
	if timeLimit > 0 {
		cfg.Solver.TimeLimit = timeLimit
	}
	if steps > 0 {
		cfg.Solver.StepLimit = steps
	}
	if chains > 0 {
		cfg.Solver.Chains = chains
	}
	if seed != 0 {
		cfg.Solver.Seed = seed
	}
	if examMarker != "" {
		cfg.ExamMarker = examMarker
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
}

// withDemoDefaults fills the teacher caps and exam window of the demo school when the
// configuration leaves them empty
func withDemoDefaults(constraints constraint.Config) constraint.Config {
	demoConstraints := demo.ConstraintConfig()
	if len(constraints.TeacherCaps) == 0 {
		constraints.TeacherCaps = demoConstraints.TeacherCaps
	}
	if constraints.ExamWindow.IsZero() {
		constraints.ExamWindow = demoConstraints.ExamWindow
	}
	return constraints
}

func serveMetrics(addr string, collector *metrics.Collector, zapLogger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	zapLogger.Info("Serving metrics", zap.String("addr", addr))
}

func printAnalysis(analyses []constraint.Analysis) {
	for _, analysis := range analyses {
		fmt.Fprintf(os.Stderr, "%-32v %v (%v matches)\n", analysis.Name, analysis.Score, len(analysis.Matches))
		for _, match := range lo.Slice(analysis.Matches, 0, analysisMatches) {
			lessons := lo.Map(match.Lessons, func(lesson *model.Lesson, _ int) string { return lesson.String() })
			fmt.Fprintf(os.Stderr, "    %v: %v\n", match.Impact, strings.Join(lessons, ", "))
		}
	}
}

package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/lesson-timetabling/pkg/model"
)

var (
	ErrJobNotFound   = errors.New("solver job not found")
	ErrManagerClosed = errors.New("solver manager closed")
)

// ManagerConfig configures the worker pool running solver jobs
type ManagerConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Manager runs solves asynchronously. Jobs are identified by a UUID and can be polled,
// terminated early (still yielding their best solution) and awaited. Jobs stay known until
// they are forgotten.
type Manager struct {
	solver *Solver
	logger *zap.Logger

	queue  chan *job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	jobs   map[uuid.UUID]*job
	closed bool
}

type job struct {
	id      uuid.UUID
	problem model.Problem
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	status   Status
	solution Solution
	err      error
}

func NewManager(solver *Solver, config ManagerConfig) *Manager {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.BufferSize <= 0 {
		config.BufferSize = config.Workers * 4
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	manager := &Manager{
		solver: solver,
		logger: config.Logger,
		queue:  make(chan *job, config.BufferSize),
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[uuid.UUID]*job),
	}
	for i := range config.Workers {
		manager.wg.Add(1)
		go manager.worker(i + 1)
	}
	manager.logger.Sugar().Infow("solver manager started", "workers", config.Workers)
	return manager
}

// Solve enqueues problem and returns the id of its job
func (manager *Manager) Solve(problem model.Problem) (uuid.UUID, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.closed {
		return uuid.Nil, ErrManagerClosed
	}

	ctx, cancel := context.WithCancel(manager.ctx)
	j := &job{
		id:      uuid.New(),
		problem: problem.Clone(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  Unsolved,
	}

	select {
	case manager.queue <- j:
	default:
		cancel()
		return uuid.Nil, fmt.Errorf("solver queue is full (%v jobs)", cap(manager.queue))
	}
	manager.jobs[j.id] = j
	manager.logger.Sugar().Infow("solver job enqueued", "job_id", j.id, "lessons", len(problem.Lessons))
	return j.id, nil
}

func (manager *Manager) Status(id uuid.UUID) (Status, error) {
	j, err := manager.find(id)
	if err != nil {
		return Unsolved, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, nil
}

// Terminate stops a job early. The job still produces the best solution found so far.
func (manager *Manager) Terminate(id uuid.UUID) error {
	j, err := manager.find(id)
	if err != nil {
		return err
	}
	j.cancel()
	manager.logger.Sugar().Infow("solver job terminated", "job_id", id)
	return nil
}

// Result blocks until the job ends or ctx is done
func (manager *Manager) Result(ctx context.Context, id uuid.UUID) (Solution, error) {
	j, err := manager.find(id)
	if err != nil {
		return Solution{}, err
	}
	select {
	case <-ctx.Done():
		return Solution{}, ctx.Err()
	case <-j.done:
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.solution, j.err
}

// Forget drops a job from the manager, terminating it first when it is still running.
// Its id is unknown afterwards.
func (manager *Manager) Forget(id uuid.UUID) error {
	manager.mu.Lock()
	j, ok := manager.jobs[id]
	if ok {
		delete(manager.jobs, id)
	}
	manager.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %v", ErrJobNotFound, id)
	}
	j.cancel()
	manager.logger.Sugar().Infow("solver job forgotten", "job_id", id)
	return nil
}

// Close terminates every job and waits for the workers to exit. Pending jobs end unsolved.
func (manager *Manager) Close() {
	manager.mu.Lock()
	if manager.closed {
		manager.mu.Unlock()
		return
	}
	manager.closed = true
	manager.cancel()
	close(manager.queue)
	manager.mu.Unlock()

	manager.wg.Wait()
	manager.logger.Sugar().Infow("solver manager stopped")
}

func (manager *Manager) find(id uuid.UUID) (*job, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	j, ok := manager.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrJobNotFound, id)
	}
	return j, nil
}

func (manager *Manager) worker(workerID int) {
	defer manager.wg.Done()
	for j := range manager.queue {
		manager.run(workerID, j)
	}
}

func (manager *Manager) run(workerID int, j *job) {
	defer close(j.done)
	defer j.cancel()

	if manager.ctx.Err() != nil {
		j.mu.Lock()
		j.err = fmt.Errorf("%w: job %v never started", ErrManagerClosed, j.id)
		j.mu.Unlock()
		return
	}

	j.mu.Lock()
	j.status = Solving
	j.mu.Unlock()
	manager.logger.Sugar().Infow("solver job started", "job_id", j.id, "worker", workerID)

	solution, err := manager.solver.Solve(j.ctx, j.problem)

	j.mu.Lock()
	j.solution, j.err = solution, err
	j.status = solution.Status
	j.mu.Unlock()

	if err != nil {
		manager.logger.Sugar().Errorw("solver job failed", "job_id", j.id, "error", err)
		return
	}
	manager.logger.Sugar().Infow("solver job ended", "job_id", j.id, "score", solution.Score.String(), "status", solution.Status.String())
}

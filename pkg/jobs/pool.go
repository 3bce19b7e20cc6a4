package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of CPU-bound work executed on the pool.
type Task func(ctx context.Context) (interface{}, error)

// Result carries a finished task's value or error.
type Result struct {
	Value interface{}
	Err   error
}

// job pairs a task with the channel its result is delivered on.
type job struct {
	id       string
	kind     string
	task     Task
	result   chan Result
	enqueued time.Time
}

// PoolConfig configures worker pool behaviour.
type PoolConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Pool is a bounded in-process worker pool. Submit hands back a channel
// the caller can await without the pool blocking other submissions.
type Pool struct {
	name       string
	workers    int
	bufferSize int
	logger     *zap.Logger

	jobs    chan job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPool builds a pool with the provided configuration.
func NewPool(name string, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		name:       name,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		jobs:       make(chan job, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}
	p.started = true
	p.logger.Sugar().Infow("worker pool started", "pool", p.name, "workers", p.workers)
}

// Stop cancels workers and waits for them to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("worker pool stopped", "pool", p.name)
}

// Submit schedules the task and returns a channel that receives exactly
// one Result. The channel is buffered, so an abandoned caller never
// wedges a worker.
func (p *Pool) Submit(ctx context.Context, id, kind string, task Task) (<-chan Result, error) {
	p.mu.Lock()
	poolCtx := p.ctx
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil, fmt.Errorf("pool %s not started", p.name)
	}

	j := job{
		id:       id,
		kind:     kind,
		task:     task,
		result:   make(chan Result, 1),
		enqueued: time.Now().UTC(),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-poolCtx.Done():
		return nil, fmt.Errorf("pool %s stopped: %w", p.name, poolCtx.Err())
	case p.jobs <- j:
		return j.result, nil
	}
}

func (p *Pool) worker(workerID int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.jobs:
			p.run(workerID, j)
		}
	}
}

func (p *Pool) run(workerID int, j job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Sugar().Errorw("task panicked",
				"pool", p.name, "worker", workerID, "job_id", j.id, "type", j.kind, "panic", r)
			j.result <- Result{Err: fmt.Errorf("task %s panicked: %v", j.id, r)}
		}
	}()

	value, err := j.task(p.ctx)
	if err != nil {
		p.logger.Sugar().Warnw("task failed",
			"pool", p.name, "job_id", j.id, "type", j.kind,
			"queued_for", time.Since(j.enqueued), "error", err)
	}
	j.result <- Result{Value: value, Err: err}
}

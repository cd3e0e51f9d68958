// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
)

var (
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool stopped")
)

var _ adapter.JobQueue = (*Pool)(nil)

// Task is a unit of background work.
type Task func(ctx context.Context) error

type job struct {
	id   string
	name string
	task Task
}

// Pool runs submitted tasks on a fixed number of goroutines. Submit never
// blocks: when the queue is full the task is dropped.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan job
	quit    chan struct{}
	n       int
	log     *zerolog.Logger
	stopped sync.Once
}

func NewPool(workers, queue int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = workers * 4
	}
	l := logger.With().Str("component", "worker.Pool").Logger()
	return &Pool{jobs: make(chan job, queue), quit: make(chan struct{}), n: workers, log: &l}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case j := <-p.jobs:
					p.run(ctx, id, j)
				}
			}
		}(i)
	}
	p.log.Info().Int("workers", p.n).Int("queue", cap(p.jobs)).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, worker int, j job) {
	ctx = logging.WithJobID(ctx, j.id)
	log := p.log.With().Int("worker", worker).Str("job_id", j.id).Str("job", j.name).Logger()
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.task(ctx)
	}()
	if err != nil {
		metrics.IncWorkerJob("failed")
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	metrics.IncWorkerJob("completed")
	log.Debug().Dur("took", time.Since(start)).Msg("job completed")
}

// Stop signals workers to exit and waits for running jobs. Queued jobs are discarded.
func (p *Pool) Stop() {
	p.stopped.Do(func() {
		close(p.quit)
		p.wg.Wait()
		if n := len(p.jobs); n > 0 {
			p.log.Warn().Int("discarded", n).Msg("worker pool stopped with queued jobs")
		}
	})
}

func (p *Pool) Submit(name string, task Task) (string, error) {
	if task == nil {
		return "", errors.New("nil task")
	}
	select {
	case <-p.quit:
		return "", ErrPoolClosed
	default:
	}
	j := job{id: ulid.Make().String(), name: name, task: task}
	select {
	case p.jobs <- j:
		return j.id, nil
	default:
		metrics.IncWorkerJob("dropped")
		p.log.Warn().Str("job", name).Msg("worker queue full, job dropped")
		return "", ErrQueueFull
	}
}

// Enqueue adapts Submit to the adapter.JobQueue port.
func (p *Pool) Enqueue(name string, fn func(ctx context.Context) error) (string, error) {
	return p.Submit(name, fn)
}

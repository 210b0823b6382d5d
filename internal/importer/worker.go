package importer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull  = errors.New("import queue full")
	ErrPoolClosed = errors.New("import pool closed")
)

type Importer interface {
	Import(ctx context.Context, artifact Artifact) (*ImportResult, error)
}

type ImportJob struct {
	Artifact Artifact
	// Done, when set, receives the outcome on the worker goroutine.
	Done func(result *ImportResult, err error)
}

type Worker struct {
	ID         int
	WorkerPool chan chan ImportJob
	JobChannel chan ImportJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan ImportJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan ImportJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(ImportJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing import", "worker_id", w.ID, "artifact", job.Artifact.Name())
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	MaxWorkers   int
	JobQueueSize int
}

// Pool runs imports on a fixed set of workers fed from a bounded queue.
type Pool struct {
	importer Importer
	logger   *slog.Logger

	jobQueue   chan ImportJob
	workerPool chan chan ImportJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewPool(importer Importer, config PoolConfig, logger *slog.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 16
	}

	pool := &Pool{
		importer:   importer,
		logger:     logger,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan ImportJob, jobQueueSize),
		workerPool: make(chan chan ImportJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	pool.start()

	return pool
}

func (p *Pool) start() {
	p.once.Do(func() {
		for i := 0; i < p.maxWorkers; i++ {
			worker := NewWorker(i, p.workerPool, p.logger)
			worker.Start(p.ctx, &p.wg, p.processJob)
		}

		p.wg.Add(1)
		go p.dispatch()

		p.logger.Info("import worker pool started",
			"max_workers", p.maxWorkers,
			"queue_size", cap(p.jobQueue))
	})
}

func (p *Pool) dispatch() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			select {
			case jobChannel := <-p.workerPool:
				select {
				case jobChannel <- job:
				case <-p.ctx.Done():
					p.logger.Info("import dispatcher shutting down")
					return
				}
			case <-p.ctx.Done():
				p.logger.Info("import dispatcher shutting down")
				return
			}
		case <-p.ctx.Done():
			p.logger.Info("import dispatcher shutting down")
			return
		}
	}
}

// Submit queues job without blocking.
func (p *Pool) Submit(job ImportJob) error {
	if p.ctx.Err() != nil {
		return ErrPoolClosed
	}

	select {
	case p.jobQueue <- job:
		p.logger.Info("import job queued",
			"artifact", job.Artifact.Name(),
			"queue_length", len(p.jobQueue))
		return nil
	default:
		p.logger.Warn("import queue full, rejecting job",
			"artifact", job.Artifact.Name(),
			"queue_capacity", cap(p.jobQueue))
		return ErrQueueFull
	}
}

func (p *Pool) Shutdown() {
	p.logger.Info("shutting down import worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("import worker pool shutdown complete")
}

func (p *Pool) processJob(job ImportJob) {
	result, err := p.importer.Import(p.ctx, job.Artifact)
	if err != nil {
		p.logger.Error("import job failed", "artifact", job.Artifact.Name(), "error", err)
	} else {
		p.logger.Info("import job finished",
			"artifact", job.Artifact.Name(),
			"imported", len(result.Transactions),
			"skipped", result.Skipped)
	}

	if job.Done != nil {
		job.Done(result, err)
	}
}

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/job"
	"github.com/akolanti/LessonRAG/internal/metrics"
	"github.com/akolanti/LessonRAG/pkg/logger_i"
)

// Runner executes one index job. *indexer.Indexer satisfies it.
type Runner interface {
	RunJob(ctx context.Context, job lessonModel.IndexJob) lessonModel.IndexStatus
}

// Pool grows on dispatcher signals up to maxWorkers and shrinks back to
// minWorkers as workers sit idle.
type Pool struct {
	jobService         *job.Service
	runner             Runner
	stopWorkerChannel  chan struct{}
	stopOnce           sync.Once
	workerWaitGroup    sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     int64
	maxWorkerCount     int64
	idleTimeout        time.Duration
	jobTimeout         time.Duration
	cancelGrace        time.Duration
	jobsCtx            context.Context
	cancelJobs         context.CancelFunc
	runningMu          sync.Mutex
	running            map[string]lessonModel.IndexJob
	logger             *logger_i.Logger
}

func NewPool(jobService *job.Service, runner Runner, cfg config.WorkerConfig) *Pool {
	p := &Pool{
		jobService:        jobService,
		runner:            runner,
		stopWorkerChannel: make(chan struct{}),
		minWorkerCount:    config.MinWorkerCount,
		maxWorkerCount:    cfg.MaxWorkers,
		idleTimeout:       cfg.IdleTimeout,
		jobTimeout:        cfg.JobTimeout,
		cancelGrace:       config.WorkerCancelGrace,
		running:           make(map[string]lessonModel.IndexJob),
		logger:            logger_i.NewLogger("WorkerPool"),
	}
	p.jobsCtx, p.cancelJobs = context.WithCancel(context.Background())
	if p.maxWorkerCount < p.minWorkerCount {
		p.maxWorkerCount = config.MaxWorkerCount
	}
	if p.idleTimeout <= 0 {
		p.idleTimeout = config.IdleWorkerTimeout
	}
	if p.jobTimeout <= 0 {
		p.jobTimeout = config.IndexJobTimeout
	}
	return p
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool", "maxWorkers", p.maxWorkerCount)
	p.workerWaitGroup.Add(1)
	go p.dispatcher()
}

// Stop retires every worker once its current job is done. When ctx ends first
// the running jobs are cancelled; any that still do not return within the
// cancel grace are recorded as failed and Stop gives up on them.
func (p *Pool) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.stopWorkerChannel) })
	defer p.cancelJobs()

	done := make(chan struct{})
	go func() {
		p.workerWaitGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Worker pool stopped")
		return nil
	case <-ctx.Done():
	}

	p.logger.Warn("Drain deadline reached, cancelling index jobs", "running", len(p.runningJobs()))
	p.cancelJobs()
	select {
	case <-done:
		p.logger.Info("Worker pool stopped after cancelling jobs")
		return nil
	case <-time.After(p.cancelGrace):
	}

	stuck := p.runningJobs()
	for _, j := range stuck {
		p.jobService.Abandon(ctx, j)
	}
	return errors.New("index jobs still running after cancel")
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	defer p.workerWaitGroup.Done()
	p.createWorker()
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if atomic.LoadInt64(&p.currentWorkerCount) < p.maxWorkerCount {
				p.logger.Debug("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopWorkerChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)

		case <-p.stopWorkerChannel:
			p.removeWorker("Stop worker signal received")
			return

		case <-time.After(p.idleTimeout):
			if p.tryRetire() {
				return
			}
		}
	}
}

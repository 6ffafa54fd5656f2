package worker

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/LessonRAG/internal/config"
	"github.com/akolanti/LessonRAG/internal/domain/lessonModel"
	"github.com/akolanti/LessonRAG/internal/metrics"
)

func (p *Pool) executeJob(job lessonModel.IndexJob) {
	ctxTrace := context.WithValue(p.jobsCtx, config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()

	p.track(job)
	defer p.untrack(job.Id)

	log := p.logger.WithContext(ctx).With("jobId", job.Id, config.LESSON_ID_KEY, job.LessonId)
	log.Debug("Processing job")

	defer func() {
		// the runner recovers its own panics; this keeps the worker alive if it does not
		if r := recover(); r != nil {
			log.Error("Index job panicked", "panic", r)
		}
	}()
	status := p.runner.RunJob(ctx, job)
	log.Debug("Finished job", "state", status.State)
}

// tryRetire drops an idle worker unless the pool is already at its minimum.
func (p *Pool) tryRetire() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			p.workerWaitGroup.Done()
			metrics.DecrementActiveWorkerCount()
			p.logger.Debug("Idle worker timeout - removed worker", "workerCount", current-1)
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	count := atomic.AddInt64(&p.currentWorkerCount, -1)
	p.workerWaitGroup.Done()
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", count)
}

func (p *Pool) track(job lessonModel.IndexJob) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	p.running[job.Id] = job
}

func (p *Pool) untrack(jobId string) {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	delete(p.running, jobId)
}

func (p *Pool) runningJobs() []lessonModel.IndexJob {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()
	jobs := make([]lessonModel.IndexJob, 0, len(p.running))
	for _, j := range p.running {
		jobs = append(jobs, j)
	}
	return jobs
}

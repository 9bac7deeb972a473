package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jmartens/shopvault/internal/core/domain"
	"github.com/jmartens/shopvault/internal/core/repository"
)

// JobFunc is the body of a background job. The returned string becomes the
// job's recorded output on success.
type JobFunc func(ctx context.Context) (string, error)

// JobRunner supervises background operations. Every job gets its own
// cancellable context and a persistent job record that API callers poll by
// command ID. Cancel works by resource ID so handlers can cancel a running
// backup without knowing its job.
type JobRunner struct {
	jobRepo repository.JobRepository
	log     *logrus.Entry

	mu         sync.Mutex
	cancels    map[string]context.CancelFunc // command ID -> cancel
	byResource map[string]string             // resource ID -> command ID
	wg         sync.WaitGroup
}

func NewJobRunner(jobRepo repository.JobRepository) *JobRunner {
	return &JobRunner{
		jobRepo:    jobRepo,
		log:        logrus.WithField("component", "jobs"),
		cancels:    make(map[string]context.CancelFunc),
		byResource: make(map[string]string),
	}
}

// Start records a job and runs fn in a supervised goroutine. The job
// outcome is persisted when fn returns: success with output, failure with
// the error string, or cancelled when the job context was cancelled.
func (r *JobRunner) Start(ctx context.Context, kind domain.JobKind, resourceID *string, fn JobFunc) (*domain.Job, error) {
	job := domain.NewJob(kind, resourceID)
	if err := r.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	jobCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.cancels[job.CommandID] = cancel
	if resourceID != nil {
		r.byResource[*resourceID] = job.CommandID
	}
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run(jobCtx, job, fn)

	return job, nil
}

func (r *JobRunner) run(ctx context.Context, job *domain.Job, fn JobFunc) {
	defer r.wg.Done()
	defer r.release(job)

	log := r.log.WithFields(logrus.Fields{
		"command_id": job.CommandID,
		"kind":       job.Kind,
	})

	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("job panicked: %v", rec)
			job.Fail(fmt.Sprintf("panic: %v", rec))
			if err := r.jobRepo.Update(context.Background(), job); err != nil {
				log.WithError(err).Error("failed to persist job outcome")
			}
		}
	}()

	output, err := fn(ctx)
	switch {
	case ctx.Err() == context.Canceled:
		log.Info("job cancelled")
		job.MarkCancelled()
	case err != nil:
		log.WithError(err).Error("job failed")
		job.Fail(err.Error())
	default:
		log.Info("job completed")
		job.Complete(output)
	}

	if err := r.jobRepo.Update(context.Background(), job); err != nil {
		log.WithError(err).Error("failed to persist job outcome")
	}
}

func (r *JobRunner) release(job *domain.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancels, job.CommandID)
	if job.ResourceID != nil && r.byResource[*job.ResourceID] == job.CommandID {
		delete(r.byResource, *job.ResourceID)
	}
}

// Cancel cancels a running job by command ID.
func (r *JobRunner) Cancel(commandID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[commandID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// CancelByResource cancels the running job operating on the given resource.
func (r *JobRunner) CancelByResource(resourceID string) bool {
	r.mu.Lock()
	commandID, ok := r.byResource[resourceID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.Cancel(commandID)
}

// Wait blocks until all running jobs have finished. Used on shutdown.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}

// GetJob retrieves a job by database ID.
func (r *JobRunner) GetJob(ctx context.Context, id int64) (*domain.Job, error) {
	return r.jobRepo.FindByID(ctx, id)
}

// GetJobByCommandID retrieves a job by its polling command ID.
func (r *JobRunner) GetJobByCommandID(ctx context.Context, commandID string) (*domain.Job, error) {
	return r.jobRepo.FindByCommandID(ctx, commandID)
}

// ListJobs lists jobs with filtering.
func (r *JobRunner) ListJobs(ctx context.Context, filter repository.JobFilter) ([]*domain.Job, error) {
	return r.jobRepo.List(ctx, filter)
}

// CountJobs counts jobs with filtering.
func (r *JobRunner) CountJobs(ctx context.Context, filter repository.JobFilter) (int, error) {
	return r.jobRepo.Count(ctx, filter)
}

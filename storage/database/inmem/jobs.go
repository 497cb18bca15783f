package inmem

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

// JobRepository keeps jobs in memory; used in tests and debug runs where no
// database is available.
type JobRepository struct {
	mu   sync.RWMutex
	jobs map[string]present.Job
}

var _ present.JobRepository = (*JobRepository)(nil)

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[string]present.Job)}
}

func (repo *JobRepository) CreateJob(job present.Job) (present.Job, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	repo.jobs[job.ID] = job
	return job, nil
}

func (repo *JobRepository) GetJobByID(id string) (present.Job, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	job, ok := repo.jobs[id]
	if !ok {
		return present.Job{}, present.ErrJobNotFound
	}
	return job, nil
}

func (repo *JobRepository) QueryAllJobs() ([]present.Job, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	jobs := make([]present.Job, 0, len(repo.jobs))
	for _, job := range repo.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (repo *JobRepository) UpdateJob(job present.Job) (present.Job, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.jobs[job.ID]; !ok {
		return present.Job{}, present.ErrJobNotFound
	}
	repo.jobs[job.ID] = job
	return job, nil
}

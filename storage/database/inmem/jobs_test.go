package inmem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

func TestJobRepository(t *testing.T) {
	repo := NewJobRepository()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		job, err := repo.CreateJob(present.Job{DeckName: "a.pptx", Status: present.JobPending})
		assert.NoError(t, err)
		assert.NotEmpty(t, job.ID)
		assert.False(t, job.CreatedAt.IsZero())

		got, err := repo.GetJobByID(job.ID)
		assert.NoError(t, err)
		assert.Equal(t, job, got)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := repo.GetJobByID("nope")
		assert.ErrorIs(t, err, present.ErrJobNotFound)
	})

	t.Run("update unknown", func(t *testing.T) {
		_, err := repo.UpdateJob(present.Job{ID: "nope"})
		assert.ErrorIs(t, err, present.ErrJobNotFound)
	})

	t.Run("query newest first", func(t *testing.T) {
		repo := NewJobRepository()
		now := time.Now().UTC()
		older, _ := repo.CreateJob(present.Job{DeckName: "old.pptx", CreatedAt: now.Add(-time.Hour)})
		newer, _ := repo.CreateJob(present.Job{DeckName: "new.pptx", CreatedAt: now})

		jobs, err := repo.QueryAllJobs()
		assert.NoError(t, err)
		assert.Len(t, jobs, 2)
		assert.Equal(t, newer.ID, jobs[0].ID)
		assert.Equal(t, older.ID, jobs[1].ID)
	})
}

package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

type jobRepository struct {
	db *sqlx.DB
}

var _ present.JobRepository = (*jobRepository)(nil)

func NewJobRepository(db *sql.DB) *jobRepository {
	return &jobRepository{db: sqlx.NewDb(db, "postgres")}
}

// jobRow mirrors the conversion_job table; warnings travel as jsonb.
type jobRow struct {
	ID          string    `db:"id"`
	DeckName    string    `db:"deck_name"`
	DeckPath    string    `db:"deck_path"`
	OutputPath  string    `db:"output_path"`
	Rate        int       `db:"rate"`
	Voice       string    `db:"voice"`
	NotifyEmail string    `db:"notify_email"`
	Status      string    `db:"status"`
	ErrorKind   string    `db:"error_kind"`
	Error       string    `db:"error"`
	Segments    int       `db:"segments"`
	Duration    float64   `db:"duration"`
	Warnings    []byte    `db:"warnings"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toRow(job present.Job) (jobRow, error) {
	warnings, err := json.Marshal(job.Warnings)
	if err != nil {
		return jobRow{}, errors.Wrap(err, "encoding warnings")
	}
	return jobRow{
		ID:          job.ID,
		DeckName:    job.DeckName,
		DeckPath:    job.DeckPath,
		OutputPath:  job.OutputPath,
		Rate:        job.Rate,
		Voice:       job.Voice,
		NotifyEmail: job.NotifyEmail,
		Status:      string(job.Status),
		ErrorKind:   job.ErrorKind,
		Error:       job.Error,
		Segments:    job.Segments,
		Duration:    job.Duration,
		Warnings:    warnings,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}, nil
}

func (r jobRow) toJob() (present.Job, error) {
	var warnings []present.Warning
	if len(r.Warnings) > 0 {
		if err := json.Unmarshal(r.Warnings, &warnings); err != nil {
			return present.Job{}, errors.Wrap(err, "decoding warnings")
		}
	}
	return present.Job{
		ID:          r.ID,
		DeckName:    r.DeckName,
		DeckPath:    r.DeckPath,
		OutputPath:  r.OutputPath,
		Rate:        r.Rate,
		Voice:       r.Voice,
		NotifyEmail: r.NotifyEmail,
		Status:      present.JobStatus(r.Status),
		ErrorKind:   r.ErrorKind,
		Error:       r.Error,
		Segments:    r.Segments,
		Duration:    r.Duration,
		Warnings:    warnings,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func (repo *jobRepository) CreateJob(job present.Job) (present.Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	row, err := toRow(job)
	if err != nil {
		return present.Job{}, err
	}
	const q = `
		INSERT INTO conversion_job (
			id, deck_name, deck_path, output_path, rate, voice, notify_email,
			status, error_kind, error, segments, duration, warnings, created_at, updated_at
		) VALUES (
			:id, :deck_name, :deck_path, :output_path, :rate, :voice, :notify_email,
			:status, :error_kind, :error, :segments, :duration, :warnings, :created_at, :updated_at
		)`
	if _, err = repo.db.NamedExec(q, row); err != nil {
		return present.Job{}, errors.Wrap(err, "creating job")
	}
	return job, nil
}

func (repo *jobRepository) GetJobByID(id string) (present.Job, error) {
	var row jobRow
	err := repo.db.Get(&row, `SELECT * FROM conversion_job WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return present.Job{}, present.ErrJobNotFound
	}
	if err != nil {
		return present.Job{}, errors.Wrap(err, "getting job")
	}
	return row.toJob()
}

func (repo *jobRepository) QueryAllJobs() ([]present.Job, error) {
	var rows []jobRow
	if err := repo.db.Select(&rows, `SELECT * FROM conversion_job ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "querying jobs")
	}
	jobs := make([]present.Job, 0, len(rows))
	for _, row := range rows {
		job, err := row.toJob()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (repo *jobRepository) UpdateJob(job present.Job) (present.Job, error) {
	job.UpdatedAt = time.Now().UTC()

	row, err := toRow(job)
	if err != nil {
		return present.Job{}, err
	}
	const q = `
		UPDATE conversion_job SET
			status = :status, error_kind = :error_kind, error = :error,
			segments = :segments, duration = :duration, warnings = :warnings,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExec(q, row)
	if err != nil {
		return present.Job{}, errors.Wrap(err, "updating job")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return present.Job{}, present.ErrJobNotFound
	}
	return job, nil
}

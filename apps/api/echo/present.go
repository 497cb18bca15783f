package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

var errDeckFileRequired = "a deck file is required"

type presentApi struct {
	conf     *core.Config
	jobs     present.JobRepository
	worker   *present.Worker
	validate *validator.Validate
}

func registerPresentAPI(g *echo.Group, deps ServerDeps) {
	api := presentApi{
		conf:     deps.Conf,
		jobs:     deps.Jobs,
		worker:   deps.Worker,
		validate: deps.Validate,
	}

	pg := g.Group("/presentations")
	pg.POST("/convert", api.convert)
	pg.GET("/jobs", api.query)
	pg.GET("/jobs/:id", api.retrieve)
	pg.GET("/jobs/:id/video", api.video)
}

// Handlers

func (api *presentApi) convert(ctx echo.Context) error {
	var data ConvertRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConvertRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fh, err := ctx.FormFile("deck")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "deck", Error: errDeckFileRequired})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".ppt" && ext != ".pptx" {
		return core.NewValidationError(nil, core.FieldError{Field: "deck", Error: "only .ppt and .pptx decks are supported"})
	}

	id := uuid.NewString()
	deckPath, err := api.saveUpload(fh, id+ext)
	if err != nil {
		return errors.Wrap(err, "saving uploaded deck")
	}

	rate := data.Rate
	if rate <= 0 {
		rate = api.conf.Present.Rate
	}
	job, err := api.jobs.CreateJob(present.Job{
		ID:          id,
		DeckName:    fh.Filename,
		DeckPath:    deckPath,
		OutputPath:  filepath.Join(api.conf.Present.UploadDir, id+".mp4"),
		Rate:        rate,
		Voice:       data.Voice,
		NotifyEmail: data.NotifyEmail,
		Status:      present.JobPending,
	})
	if err != nil {
		_ = os.Remove(deckPath)
		return errors.Wrap(err, "creating job")
	}

	if err = api.worker.Enqueue(job.ID); err != nil {
		_ = os.Remove(deckPath)
		job.Status = present.JobFailed
		job.Error = err.Error()
		job.UpdatedAt = time.Now().UTC()
		if _, uErr := api.jobs.UpdateJob(job); uErr != nil {
			return errors.Wrap(uErr, "recording rejected job")
		}
		return err
	}

	return ctx.JSON(http.StatusAccepted, job)
}

func (api *presentApi) query(ctx echo.Context) error {
	jobs, err := api.jobs.QueryAllJobs()
	if err != nil {
		return errors.Wrap(err, "querying jobs")
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (api *presentApi) retrieve(ctx echo.Context) error {
	job, err := api.jobs.GetJobByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding job by ID")
	}
	return ctx.JSON(http.StatusOK, job)
}

func (api *presentApi) video(ctx echo.Context) error {
	job, err := api.jobs.GetJobByID(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding job by ID")
	}
	if job.Status != present.JobDone {
		return errVideoNotReady
	}

	name := strings.TrimSuffix(job.DeckName, filepath.Ext(job.DeckName)) + ".mp4"
	return ctx.Attachment(job.OutputPath, name)
}

func (api *presentApi) saveUpload(fh *multipart.FileHeader, name string) (string, error) {
	if err := os.MkdirAll(api.conf.Present.UploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(api.conf.Present.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

type (
	ConvertRequest struct {
		Rate        int    `form:"rate" validate:"omitempty,min=80,max=450"`
		Voice       string `form:"voice" validate:"omitempty,max=64"`
		NotifyEmail string `form:"notify_email" validate:"omitempty,email"`
	}
)

func (cr *ConvertRequest) Validate(validate *validator.Validate) error {
	cr.Voice = core.CleanString(cr.Voice)
	cr.NotifyEmail = core.CleanString(cr.NotifyEmail, true /* lower */)
	return validate.Struct(cr)
}

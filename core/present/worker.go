package present

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
)

var ErrQueueFull = errors.New("conversion queue is full")

// Worker drains the conversion queue in the background so web requests never
// block on a multi-minute pipeline run. Each job runs in its own working
// directory, so jobs may be processed concurrently.
type Worker struct {
	svc     ServiceInterface
	repo    JobRepository
	mailSvc core.EmailService
	logger  core.Logger

	queue chan string
	wg    sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

func NewWorker(
	svc ServiceInterface,
	repo JobRepository,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Worker {
	size := conf.Present.QueueSize
	if size <= 0 {
		size = 1
	}
	return &Worker{
		svc:     svc,
		repo:    repo,
		mailSvc: mailSvc,
		logger:  logger,
		queue:   make(chan string, size),
	}
}

// Start launches n processing goroutines. It is a no-op when already started.
func (w *Worker) Start(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for jobID := range w.queue {
				w.process(jobID)
			}
		}()
	}
}

// Enqueue schedules a pending job for processing. It never blocks; a full
// queue is reported to the caller instead.
func (w *Worker) Enqueue(jobID string) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return errors.New("worker is stopped")
	}

	select {
	case w.queue <- jobID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight jobs, honoring ctx's deadline.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(ctx.Err(), "waiting for conversion worker")
	}
}

func (w *Worker) process(jobID string) {
	job, err := w.repo.GetJobByID(jobID)
	if err != nil {
		w.logger.Error(fmt.Sprintf("loading job %s: %v", jobID, err), err)
		return
	}

	job.Status = JobRunning
	job.UpdatedAt = time.Now().UTC()
	if job, err = w.repo.UpdateJob(job); err != nil {
		w.logger.Error(fmt.Sprintf("updating job %s: %v", jobID, err), err)
		return
	}

	opts := SynthesisOptions{Rate: job.Rate, Voice: job.Voice}
	res, convErr := w.svc.Convert(context.Background(), job.DeckPath, job.OutputPath, opts)

	if convErr != nil {
		job.Status = JobFailed
		job.Error = convErr.Error()
		job.ErrorKind = string(KindOf(convErr))
	} else {
		job.Status = JobDone
		job.Segments = res.Segments
		job.Duration = res.Duration
		job.Warnings = res.Warnings
	}
	job.UpdatedAt = time.Now().UTC()

	if job, err = w.repo.UpdateJob(job); err != nil {
		w.logger.Error(fmt.Sprintf("updating job %s: %v", jobID, err), err)
		return
	}

	// the uploaded deck is no longer needed once the run has ended
	if err = os.Remove(job.DeckPath); err != nil && !os.IsNotExist(err) {
		w.logger.Warn(fmt.Sprintf("removing uploaded deck %s: %v", job.DeckPath, err), err)
	}

	w.notify(job)
}

func (w *Worker) notify(job Job) {
	if job.NotifyEmail == "" {
		return
	}
	addr, err := mail.ParseAddress(job.NotifyEmail)
	if err != nil {
		w.logger.Warn(fmt.Sprintf("job %s: invalid notify email %q", job.ID, job.NotifyEmail))
		return
	}

	msg := &core.EmailMessage{To: []mail.Address{*addr}}
	if job.Status == JobDone {
		msg.Subject = "Your presentation video is ready"
		msg.BodyStr = fmt.Sprintf(
			"The video for %q has been generated (%d segments, %.1fs). You can download it from your dashboard.",
			job.DeckName, job.Segments, job.Duration,
		)
		if len(job.Warnings) > 0 {
			msg.BodyStr += fmt.Sprintf(" Note: narration for %d slide(s) used a fallback.", len(job.Warnings))
		}
	} else {
		msg.Subject = "Your presentation video could not be generated"
		msg.BodyStr = fmt.Sprintf("Converting %q failed (%s). Please check the file and try again.", job.DeckName, job.ErrorKind)
	}
	w.mailSvc.SendMessages(msg)
}

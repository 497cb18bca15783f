package present

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	ErrNoSlides    = stderrors.New("deck contains no slides")
	ErrOutputSmall = stderrors.New("output video missing or implausibly small")
)

// ErrorKind classifies a fatal pipeline failure by the stage that caused it.
// Synthesis has no kind: it degrades per slide and never fails a run.
type ErrorKind string

const (
	KindRender   ErrorKind = "render"
	KindAssembly ErrorKind = "assembly"
	KindEncode   ErrorKind = "encode"
)

// PipelineError wraps a stage failure with its classification so callers can
// map it to user-visible behavior without inspecting stage internals.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

func (e *PipelineError) Error() string {
	return string(e.Kind) + " failed: " + e.Err.Error()
}

func (e *PipelineError) Unwrap() error { return e.Err }

func NewRenderError(err error) error   { return newPipelineError(KindRender, err) }
func NewAssemblyError(err error) error { return newPipelineError(KindAssembly, err) }
func NewEncodeError(err error) error   { return newPipelineError(KindEncode, err) }

func newPipelineError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Kind: kind, Err: err}
}

// KindOf returns the classification of err, or "" if it is not a pipeline error.
func KindOf(err error) ErrorKind {
	if pe, ok := errors.Cause(err).(*PipelineError); ok {
		return pe.Kind
	}
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

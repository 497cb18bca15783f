package present

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
)

// runState tracks one conversion through its stages. A run fails from
// rendering, assembling or encoding; synthesizing degrades but never fails.
type runState int

const (
	stateIdle runState = iota
	stateRendering
	stateSynthesizing
	stateAssembling
	stateEncoding
	stateDone
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRendering:
		return "rendering"
	case stateSynthesizing:
		return "synthesizing"
	case stateAssembling:
		return "assembling"
	case stateEncoding:
		return "encoding"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

type (
	// ServiceInterface is the whole surface the web layer needs: one call,
	// a deck in, a video out. Temp directories, subprocess timeouts and
	// fallback tiers stay behind it.
	ServiceInterface interface {
		Convert(ctx context.Context, deckPath, outputPath string, opts SynthesisOptions) (Result, error)
	}

	Service struct {
		renderer  DeckRenderer
		synth     NarrationSynthesizer
		assembler TimelineAssembler
		encoder   VideoEncoder
		logger    core.Logger

		minVideoBytes int64
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	renderer DeckRenderer,
	synth NarrationSynthesizer,
	assembler TimelineAssembler,
	encoder VideoEncoder,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		renderer:      renderer,
		synth:         synth,
		assembler:     assembler,
		encoder:       encoder,
		logger:        logger,
		minVideoBytes: conf.Present.MinVideoBytes,
	}
}

// Convert runs the full deck-to-video pipeline for one deck. The scoped
// working directory is removed on every exit path; a failed run never leaves
// a partial output file behind.
func (svc *Service) Convert(ctx context.Context, deckPath, outputPath string, opts SynthesisOptions) (Result, error) {
	run := &PipelineRun{DeckPath: deckPath, OutputPath: outputPath}

	workDir, err := os.MkdirTemp("", "present-")
	if err != nil {
		return Result{}, errors.Wrap(err, "creating working directory")
	}
	run.WorkDir = workDir
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			svc.logger.Warn(fmt.Sprintf("removing working directory %s: %v", workDir, rmErr), rmErr)
		}
	}()

	svc.transition(run, stateRendering)
	slides, err := svc.renderer.Render(ctx, deckPath, workDir)
	if err != nil {
		return svc.fail(run, NewRenderError(err))
	}
	if len(slides) == 0 {
		return svc.fail(run, NewRenderError(ErrNoSlides))
	}
	run.Slides = slides

	svc.transition(run, stateSynthesizing)
	clips, err := svc.synth.Synthesize(ctx, slides, workDir, opts)
	if err != nil {
		// only the context's error can surface here; per-slide failures
		// degrade to fallback clips inside the synthesizer
		return svc.fail(run, errors.Wrap(err, "synthesizing narration"))
	}
	run.Clips = clips

	svc.transition(run, stateAssembling)
	timeline, err := svc.assembler.Assemble(ctx, slides, clips)
	if err != nil {
		return svc.fail(run, NewAssemblyError(err))
	}
	run.Timeline = timeline

	svc.transition(run, stateEncoding)
	if err = svc.encoder.Encode(ctx, timeline, outputPath); err != nil {
		svc.discardOutput(outputPath)
		return svc.fail(run, NewEncodeError(err))
	}
	if err = svc.verifyOutput(outputPath); err != nil {
		svc.discardOutput(outputPath)
		return svc.fail(run, NewEncodeError(err))
	}

	svc.transition(run, stateDone)
	return Result{
		OutputPath: outputPath,
		Segments:   len(timeline.Segments),
		Duration:   timeline.TotalDuration(),
		Warnings:   degradations(clips),
	}, nil
}

func (svc *Service) transition(run *PipelineRun, to runState) {
	svc.logger.Info(fmt.Sprintf("pipeline %s: %s", run.DeckPath, to))
}

func (svc *Service) fail(run *PipelineRun, err error) (Result, error) {
	svc.transition(run, stateFailed)
	svc.logger.Error(fmt.Sprintf("pipeline %s: %v", run.DeckPath, err), err)
	return Result{}, err
}

// verifyOutput guards against encoder configurations that silently drop a
// stream: the file must exist and exceed the minimum plausible size.
func (svc *Service) verifyOutput(outputPath string) error {
	info, err := os.Stat(outputPath)
	if err != nil {
		return ErrOutputSmall
	}
	if info.Size() < svc.minVideoBytes {
		return errors.Wrapf(ErrOutputSmall, "%d bytes", info.Size())
	}
	return nil
}

func (svc *Service) discardOutput(outputPath string) {
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		svc.logger.Warn(fmt.Sprintf("removing corrupt output %s: %v", outputPath, err), err)
	}
}

func degradations(clips []NarrationClip) []Warning {
	var warns []Warning
	for _, clip := range clips {
		if clip.Tier == TierClean {
			continue
		}
		warns = append(warns, Warning{
			SlideIndex: clip.SlideIndex,
			Tier:       clip.Tier,
			Detail:     fmt.Sprintf("slide %d narration degraded to %s tier", clip.SlideIndex, clip.Tier),
		})
	}
	return warns
}

package present

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	testutil "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/tests"
)

type fakeRenderer struct {
	slides  []Slide
	err     error
	workDir string
}

func (r *fakeRenderer) Render(_ context.Context, _, outDir string) ([]Slide, error) {
	r.workDir = outDir
	return r.slides, r.err
}

type fakeSynth struct {
	tiers []SynthesisTier
	err   error
}

func (s *fakeSynth) Synthesize(_ context.Context, slides []Slide, outDir string, _ SynthesisOptions) ([]NarrationClip, error) {
	if s.err != nil {
		return nil, s.err
	}
	clips := make([]NarrationClip, len(slides))
	for i, slide := range slides {
		tier := TierClean
		if i < len(s.tiers) {
			tier = s.tiers[i]
		}
		clips[i] = NarrationClip{SlideIndex: slide.Index, AudioPath: filepath.Join(outDir, "a.wav"), Tier: tier}
	}
	return clips, nil
}

type fakeAssembler struct{ err error }

func (a *fakeAssembler) Assemble(_ context.Context, slides []Slide, clips []NarrationClip) (Timeline, error) {
	if a.err != nil {
		return Timeline{}, a.err
	}
	segments := make([]TimedSegment, len(slides))
	start := 0.0
	for i := range slides {
		segments[i] = TimedSegment{Slide: slides[i], Clip: clips[i], Start: start, Duration: 2.0}
		start += 2.0
	}
	return Timeline{Segments: segments}, nil
}

type fakeEncoder struct {
	err       error
	writeSize int
}

func (e *fakeEncoder) Encode(_ context.Context, _ Timeline, outputPath string) error {
	if e.writeSize > 0 {
		if err := os.WriteFile(outputPath, make([]byte, e.writeSize), 0o644); err != nil {
			return err
		}
	}
	return e.err
}

func slidesN(n int) []Slide {
	slides := make([]Slide, n)
	for i := range slides {
		slides[i] = Slide{Index: i + 1, ImagePath: "s.png", Narration: "text"}
	}
	return slides
}

func newTestService(r DeckRenderer, s NarrationSynthesizer, a TimelineAssembler, e VideoEncoder) *Service {
	return &Service{
		renderer: r, synth: s, assembler: a, encoder: e,
		logger:        testutil.NewLogger(),
		minVideoBytes: 64,
	}
}

func outputPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "video.mp4")
}

func TestConvert(t *testing.T) {
	renderer := &fakeRenderer{slides: slidesN(3)}
	svc := newTestService(renderer, &fakeSynth{}, &fakeAssembler{}, &fakeEncoder{writeSize: 128})

	out := outputPath(t)
	res, err := svc.Convert(context.Background(), "deck.pptx", out, SynthesisOptions{})
	assert.NoError(t, err)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, 3, res.Segments)
	assert.InDelta(t, 6.0, res.Duration, 1e-9)
	assert.Empty(t, res.Warnings)
	assert.FileExists(t, out)
	assert.NoDirExists(t, renderer.workDir)
}

func TestConvertReportsDegradations(t *testing.T) {
	renderer := &fakeRenderer{slides: slidesN(3)}
	synth := &fakeSynth{tiers: []SynthesisTier{TierClean, TierRetry, TierFallback}}
	svc := newTestService(renderer, synth, &fakeAssembler{}, &fakeEncoder{writeSize: 128})

	res, err := svc.Convert(context.Background(), "deck.pptx", outputPath(t), SynthesisOptions{})
	assert.NoError(t, err)
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, 2, res.Warnings[0].SlideIndex)
	assert.Equal(t, TierRetry, res.Warnings[0].Tier)
	assert.Equal(t, 3, res.Warnings[1].SlideIndex)
	assert.Equal(t, TierFallback, res.Warnings[1].Tier)
}

func TestConvertRenderFailure(t *testing.T) {
	renderer := &fakeRenderer{err: assert.AnError}
	svc := newTestService(renderer, &fakeSynth{}, &fakeAssembler{}, &fakeEncoder{})

	out := outputPath(t)
	_, err := svc.Convert(context.Background(), "deck.pptx", out, SynthesisOptions{})
	assert.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))
	assert.NoFileExists(t, out)
	assert.NoDirExists(t, renderer.workDir)
}

func TestConvertNoSlides(t *testing.T) {
	svc := newTestService(&fakeRenderer{}, &fakeSynth{}, &fakeAssembler{}, &fakeEncoder{})

	_, err := svc.Convert(context.Background(), "deck.pptx", outputPath(t), SynthesisOptions{})
	assert.Error(t, err)
	assert.Equal(t, KindRender, KindOf(err))
	assert.ErrorIs(t, err, ErrNoSlides)
}

func TestConvertSynthesisContextError(t *testing.T) {
	renderer := &fakeRenderer{slides: slidesN(1)}
	svc := newTestService(renderer, &fakeSynth{err: context.Canceled}, &fakeAssembler{}, &fakeEncoder{})

	_, err := svc.Convert(context.Background(), "deck.pptx", outputPath(t), SynthesisOptions{})
	assert.Error(t, err)
	// synthesis failures carry no stage kind
	assert.Equal(t, ErrorKind(""), KindOf(err))
	assert.NoDirExists(t, renderer.workDir)
}

func TestConvertAssemblyFailure(t *testing.T) {
	svc := newTestService(&fakeRenderer{slides: slidesN(2)}, &fakeSynth{}, &fakeAssembler{err: assert.AnError}, &fakeEncoder{})

	_, err := svc.Convert(context.Background(), "deck.pptx", outputPath(t), SynthesisOptions{})
	assert.Error(t, err)
	assert.Equal(t, KindAssembly, KindOf(err))
}

func TestConvertEncodeFailureDiscardsOutput(t *testing.T) {
	// encoder errors out after writing a partial file
	encoder := &fakeEncoder{err: assert.AnError, writeSize: 128}
	svc := newTestService(&fakeRenderer{slides: slidesN(1)}, &fakeSynth{}, &fakeAssembler{}, encoder)

	out := outputPath(t)
	_, err := svc.Convert(context.Background(), "deck.pptx", out, SynthesisOptions{})
	assert.Error(t, err)
	assert.Equal(t, KindEncode, KindOf(err))
	assert.NoFileExists(t, out)
}

func TestConvertUndersizedOutputDiscarded(t *testing.T) {
	encoder := &fakeEncoder{writeSize: 10}
	svc := newTestService(&fakeRenderer{slides: slidesN(1)}, &fakeSynth{}, &fakeAssembler{}, encoder)

	out := outputPath(t)
	_, err := svc.Convert(context.Background(), "deck.pptx", out, SynthesisOptions{})
	assert.Error(t, err)
	assert.Equal(t, KindEncode, KindOf(err))
	assert.ErrorIs(t, err, ErrOutputSmall)
	assert.NoFileExists(t, out)
}

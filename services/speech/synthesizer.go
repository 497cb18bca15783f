package speechsvc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

type runnerFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

// Service produces one narration clip per slide by driving a speech engine
// binary. Every attempt runs in its own process under a hard deadline; a
// wedged engine costs one slide one timeout, never the whole run. A slide
// whose narration cannot be synthesized after a retry falls back to a tone
// clip, so the clip count always matches the slide count.
type Service struct {
	bin          string
	timeout      time.Duration
	maxLen       int
	minBytes     int64
	floorSec     float64
	defaultRate  int
	defaultVoice string
	workers      int
	logger       core.Logger
	run          runnerFunc
}

var _ present.NarrationSynthesizer = (*Service)(nil)

func NewService(conf *core.Config, logger core.Logger) *Service {
	return &Service{
		bin:          conf.Present.TTSBin,
		timeout:      conf.Present.SynthTimeout,
		maxLen:       conf.Present.MaxNarrationLen,
		minBytes:     conf.Present.MinAudioBytes,
		floorSec:     conf.Present.FloorSec,
		defaultRate:  conf.Present.Rate,
		defaultVoice: conf.Present.Voice,
		workers:      conf.Present.SynthWorkers,
		logger:       logger,
		run:          execRun,
	}
}

func (svc *Service) Synthesize(ctx context.Context, slides []present.Slide, outDir string, opts present.SynthesisOptions) ([]present.NarrationClip, error) {
	rate := opts.Rate
	if rate <= 0 {
		rate = svc.defaultRate
	}
	voice := opts.Voice
	if voice == "" {
		voice = svc.defaultVoice
	}

	workers := svc.workers
	if workers <= 0 {
		workers = 1
	}

	// indexed writes keep clip order identical to slide order regardless of
	// which worker finishes first
	clips := make([]present.NarrationClip, len(slides))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, slide := range slides {
		i, slide := i, slide
		g.Go(func() error {
			clip, err := svc.synthesizeSlide(ctx, slide, outDir, rate, voice)
			if err != nil {
				return err
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

func (svc *Service) synthesizeSlide(ctx context.Context, slide present.Slide, outDir string, rate int, voice string) (present.NarrationClip, error) {
	text := sanitizeNarration(slide.Narration, svc.maxLen)
	audioPath := filepath.Join(outDir, fmt.Sprintf("narration_%03d.wav", slide.Index))

	for attempt, tier := range []present.SynthesisTier{present.TierClean, present.TierRetry} {
		err := svc.speak(ctx, text, audioPath, rate, voice)
		if err == nil {
			if validAudio(audioPath, svc.minBytes) {
				return present.NarrationClip{SlideIndex: slide.Index, AudioPath: audioPath, Tier: tier}, nil
			}
			err = errors.Errorf("engine produced less than %d bytes", svc.minBytes)
		}
		// a partial clip must never reach the encoder
		_ = os.Remove(audioPath)

		if ctx.Err() != nil {
			return present.NarrationClip{}, ctx.Err()
		}
		svc.logger.Warn(fmt.Sprintf("slide %d: synthesis attempt %d failed: %v", slide.Index, attempt+1, err))
	}

	if err := writeFallbackTone(audioPath, text, svc.floorSec); err != nil {
		return present.NarrationClip{}, errors.Wrapf(err, "slide %d", slide.Index)
	}
	svc.logger.Warn(fmt.Sprintf("slide %d: narration replaced with fallback tone", slide.Index))
	return present.NarrationClip{SlideIndex: slide.Index, AudioPath: audioPath, Tier: present.TierFallback}, nil
}

// speak runs a single synthesis attempt with its own deadline.
func (svc *Service) speak(ctx context.Context, text, outPath string, rate int, voice string) error {
	ctx, cancel := context.WithTimeout(ctx, svc.timeout)
	defer cancel()

	args := []string{"-s", strconv.Itoa(rate)}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	args = append(args, "-w", outPath, text)

	out, err := svc.run(ctx, svc.bin, args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Errorf("timed out after %s", svc.timeout)
	}
	if err != nil {
		return errors.Wrapf(err, "speech engine: %s", trimOutput(out))
	}
	return nil
}

func validAudio(path string, minBytes int64) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Size() >= minBytes
}

func execRun(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

func trimOutput(out []byte) string {
	const max = 200
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}

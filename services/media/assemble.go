package mediasvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

// Assembler lays narration clips onto a gap-free timeline. Each slide stays on
// screen for its clip's duration plus a breathing pad, never less than the
// floor, and segment starts are cumulative so playback has no dead air.
type Assembler struct {
	prober  Prober
	padding float64
	floor   float64
}

var _ present.TimelineAssembler = (*Assembler)(nil)

func NewAssembler(conf *core.Config, prober Prober) *Assembler {
	return &Assembler{
		prober:  prober,
		padding: conf.Present.PaddingSec,
		floor:   conf.Present.FloorSec,
	}
}

func (a *Assembler) Assemble(ctx context.Context, slides []present.Slide, clips []present.NarrationClip) (present.Timeline, error) {
	if len(slides) != len(clips) {
		return present.Timeline{}, errors.Errorf("%d slide(s) but %d clip(s)", len(slides), len(clips))
	}

	segments := make([]present.TimedSegment, len(slides))
	var cursor float64
	for i, slide := range slides {
		clip := clips[i]
		if clip.SlideIndex != slide.Index {
			return present.Timeline{}, errors.Errorf("clip %d paired with slide %d", clip.SlideIndex, slide.Index)
		}

		audioSec, err := a.prober.Duration(ctx, clip.AudioPath)
		if err != nil {
			return present.Timeline{}, err
		}
		clip.Duration = audioSec

		dur := audioSec + a.padding
		if dur < a.floor {
			dur = a.floor
		}

		segments[i] = present.TimedSegment{
			Slide:    slide,
			Clip:     clip,
			Start:    cursor,
			Duration: dur,
		}
		cursor += dur
	}
	return present.Timeline{Segments: segments}, nil
}

package present

import "context"

// SynthesisTier records which tier produced a slide's narration audio.
type SynthesisTier string

const (
	TierClean    SynthesisTier = "clean"    // first attempt succeeded
	TierRetry    SynthesisTier = "retry"    // retry attempt succeeded
	TierFallback SynthesisTier = "fallback" // both attempts failed, generated tone used
)

type (
	// Slide is one page of the deck: a rendered image plus the narration text
	// derived from it. Index is 1-based and defines presentation order.
	Slide struct {
		Index     int
		ImagePath string
		Narration string
	}

	// NarrationClip is the audio synthesized (or generated) for one slide.
	// Duration is in seconds and is authoritative once the assembler has run.
	NarrationClip struct {
		SlideIndex int
		AudioPath  string
		Tier       SynthesisTier
		Duration   float64
	}

	// TimedSegment pairs a slide's image with its narration clip and holds the
	// computed on-screen timing. Start is the offset within the full timeline.
	TimedSegment struct {
		Slide    Slide
		Clip     NarrationClip
		Start    float64
		Duration float64
	}

	// Timeline is the ordered, gap-free concatenation of all segments.
	Timeline struct {
		Segments []TimedSegment
	}

	// PipelineRun tracks one conversion's intermediate state. The working
	// directory is exclusively owned by the run and removed when it ends.
	PipelineRun struct {
		WorkDir    string
		DeckPath   string
		OutputPath string
		Slides     []Slide
		Clips      []NarrationClip
		Timeline   Timeline
	}

	// SynthesisOptions is passed explicitly into every synthesis invocation;
	// there is no process-global voice/rate state.
	SynthesisOptions struct {
		Rate  int    // words-per-minute-like scale
		Voice string // empty selects the engine's default voice
	}

	// Warning reports a slide whose narration degraded below clean synthesis.
	Warning struct {
		SlideIndex int           `json:"slide_index"`
		Tier       SynthesisTier `json:"tier"`
		Detail     string        `json:"detail,omitempty"`
	}

	// Result is what a successful conversion returns to the caller.
	Result struct {
		OutputPath string    `json:"output_path"`
		Segments   int       `json:"segments"`
		Duration   float64   `json:"duration"`
		Warnings   []Warning `json:"warnings,omitempty"`
	}
)

func (t Timeline) TotalDuration() float64 {
	var total float64
	for _, seg := range t.Segments {
		total += seg.Duration
	}
	return total
}

type (
	// DeckRenderer rasterizes a deck into per-slide images and extracts each
	// slide's narration text. It never returns a zero-length slice with a nil
	// error for a readable deck.
	DeckRenderer interface {
		Render(ctx context.Context, deckPath, outDir string) ([]Slide, error)
	}

	// NarrationSynthesizer produces exactly one clip per input slide, in input
	// order. Per-slide failures degrade to a fallback clip; the only error it
	// may return is the context's.
	NarrationSynthesizer interface {
		Synthesize(ctx context.Context, slides []Slide, outDir string, opts SynthesisOptions) ([]NarrationClip, error)
	}

	// TimelineAssembler pairs images with clips and derives segment timing.
	TimelineAssembler interface {
		Assemble(ctx context.Context, slides []Slide, clips []NarrationClip) (Timeline, error)
	}

	// VideoEncoder muxes a timeline to a single video file.
	VideoEncoder interface {
		Encode(ctx context.Context, timeline Timeline, outputPath string) error
	}
)

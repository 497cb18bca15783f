package mediasvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

// Encoder muxes a timeline into a single MP4. Each segment is encoded on its
// own (still image looped over its narration), then the segments are joined
// with a stream copy so the expensive x264 pass runs exactly once per slide.
type Encoder struct {
	bin     string
	threads int
	logger  core.Logger
	run     runFunc
}

var _ present.VideoEncoder = (*Encoder)(nil)

func NewEncoder(conf *core.Config, logger core.Logger) *Encoder {
	return &Encoder{
		bin:     conf.Present.FFmpegBin,
		threads: conf.Present.EncodeThreads,
		logger:  logger,
		run:     execRun,
	}
}

func (e *Encoder) Encode(ctx context.Context, timeline present.Timeline, outputPath string) error {
	if len(timeline.Segments) == 0 {
		return errors.New("empty timeline")
	}
	// intermediates live beside the slide images, inside the run's workdir
	workDir := filepath.Dir(timeline.Segments[0].Slide.ImagePath)

	segPaths := make([]string, len(timeline.Segments))
	for i, seg := range timeline.Segments {
		segPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", i+1))
		if err := e.encodeSegment(ctx, seg, segPath); err != nil {
			return errors.Wrapf(err, "segment %d", i+1)
		}
		segPaths[i] = segPath
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	return e.concat(ctx, segPaths, workDir, outputPath)
}

func (e *Encoder) encodeSegment(ctx context.Context, seg present.TimedSegment, segPath string) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", seg.Slide.ImagePath,
		"-i", seg.Clip.AudioPath,
		"-t", formatSeconds(seg.Duration),
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		"-ac", "2",
		"-threads", strconv.Itoa(e.threads),
		"-movflags", "+faststart",
		segPath,
	}
	out, err := e.run(ctx, e.bin, args...)
	if err != nil {
		return errors.Wrapf(err, "encoding slide %d: %s", seg.Slide.Index, tailOutput(out))
	}
	return nil
}

// concat joins the per-slide segments without re-encoding.
func (e *Encoder) concat(ctx context.Context, segPaths []string, workDir, outputPath string) error {
	var list strings.Builder
	for _, p := range segPaths {
		fmt.Fprintf(&list, "file '%s'\n", p)
	}
	listPath := filepath.Join(workDir, "segments.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return errors.Wrap(err, "writing concat list")
	}

	out, err := e.run(ctx, e.bin,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outputPath,
	)
	if err != nil {
		return errors.Wrapf(err, "joining %d segment(s): %s", len(segPaths), tailOutput(out))
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func tailOutput(out []byte) string {
	const max = 300
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}

package mediasvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
	testutil "github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/tests"
)

func testTimeline(workDir string, n int) present.Timeline {
	segments := make([]present.TimedSegment, n)
	start := 0.0
	for i := 0; i < n; i++ {
		dur := 2.5
		segments[i] = present.TimedSegment{
			Slide: present.Slide{Index: i + 1, ImagePath: filepath.Join(workDir, fmt.Sprintf("slide_%03d.png", i+1))},
			Clip:  present.NarrationClip{SlideIndex: i + 1, AudioPath: filepath.Join(workDir, fmt.Sprintf("narration_%03d.wav", i+1))},
			Start: start, Duration: dur,
		}
		start += dur
	}
	return present.Timeline{Segments: segments}
}

func TestEncodeInvocations(t *testing.T) {
	workDir := t.TempDir()
	var calls [][]string
	enc := &Encoder{
		bin: "ffmpeg", threads: 2, logger: testutil.NewLogger(),
		run: func(ctx context.Context, bin string, args ...string) ([]byte, error) {
			calls = append(calls, args)
			return nil, nil
		},
	}

	outPath := filepath.Join(workDir, "out", "video.mp4")
	err := enc.Encode(context.Background(), testTimeline(workDir, 2), outPath)
	assert.NoError(t, err)

	// one run per segment plus the final join
	assert.Len(t, calls, 3)

	seg := calls[0]
	assert.Contains(t, seg, "libx264")
	assert.Contains(t, seg, "yuv420p")
	assert.Contains(t, seg, "stillimage")
	assert.Contains(t, seg, "2.500")
	assert.Contains(t, seg, filepath.Join(workDir, "slide_001.png"))
	assert.Contains(t, seg, filepath.Join(workDir, "narration_001.wav"))
	assert.Equal(t, filepath.Join(workDir, "segment_001.mp4"), seg[len(seg)-1])

	join := calls[2]
	assert.Contains(t, join, "concat")
	assert.Contains(t, join, "copy")
	assert.Equal(t, outPath, join[len(join)-1])

	// the concat list names every segment in order
	list, err := os.ReadFile(filepath.Join(workDir, "segments.txt"))
	assert.NoError(t, err)
	want := fmt.Sprintf("file '%s'\nfile '%s'\n",
		filepath.Join(workDir, "segment_001.mp4"),
		filepath.Join(workDir, "segment_002.mp4"))
	assert.Equal(t, want, string(list))

	// the output directory was created for the join
	assert.DirExists(t, filepath.Dir(outPath))
}

func TestEncodeSegmentFailureStopsRun(t *testing.T) {
	workDir := t.TempDir()
	var calls int
	enc := &Encoder{
		bin: "ffmpeg", threads: 1, logger: testutil.NewLogger(),
		run: func(ctx context.Context, bin string, args ...string) ([]byte, error) {
			calls++
			return []byte("Unknown encoder 'libx264'"), assert.AnError
		},
	}

	err := enc.Encode(context.Background(), testTimeline(workDir, 3), filepath.Join(workDir, "video.mp4"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "segment 1")
	assert.Contains(t, err.Error(), "libx264")
	assert.Equal(t, 1, calls)
}

func TestEncodeEmptyTimeline(t *testing.T) {
	enc := &Encoder{bin: "ffmpeg", logger: testutil.NewLogger(), run: execRun}
	err := enc.Encode(context.Background(), present.Timeline{}, "out.mp4")
	assert.Error(t, err)
}

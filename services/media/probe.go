package mediasvc

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
)

// Prober reports the playable duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type ffprobeProber struct {
	bin string
	run runFunc
}

var _ Prober = (*ffprobeProber)(nil)

func NewProber(conf *core.Config) Prober {
	return &ffprobeProber{bin: conf.Present.FFprobeBin, run: execRun}
}

func (p *ffprobeProber) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "probing %s: %s", path, strings.TrimSpace(string(out)))
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing duration of %s", path)
	}
	if d <= 0 {
		return 0, errors.Errorf("%s has no playable duration", path)
	}
	return d, nil
}

type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

func execRun(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

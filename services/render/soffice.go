package rendersvc

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pkg/errors"

	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core"
	"github.com/mmatatow512-cloud/studyWebsiteForDesignSchool-sub000/core/present"
)

type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

// Service renders a deck via the host office converter: deck -> PDF -> one PNG
// per page. Narration text is read straight from the OOXML package.
type Service struct {
	sofficeBin  string
	pdftoppmBin string
	width       int
	height      int
	logger      core.Logger
	run         runFunc
}

var _ present.DeckRenderer = (*Service)(nil)

func NewService(conf *core.Config, logger core.Logger) *Service {
	return &Service{
		sofficeBin:  conf.Present.SofficeBin,
		pdftoppmBin: conf.Present.PdftoppmBin,
		width:       conf.Present.SlideWidth,
		height:      conf.Present.SlideHeight,
		logger:      logger,
		run:         execRun,
	}
}

func (svc *Service) Render(ctx context.Context, deckPath, outDir string) ([]present.Slide, error) {
	ext := strings.ToLower(filepath.Ext(deckPath))
	if ext != ".ppt" && ext != ".pptx" {
		return nil, errors.Errorf("unsupported deck format %q", ext)
	}
	if _, err := os.Stat(deckPath); err != nil {
		return nil, errors.Wrap(err, "opening deck")
	}

	// legacy binary decks are upgraded to OOXML first so notes can be read
	pptxPath := deckPath
	if ext == ".ppt" {
		out, err := svc.run(ctx, svc.sofficeBin, "--headless", "--convert-to", "pptx", "--outdir", outDir, deckPath)
		if err != nil {
			return nil, errors.Wrapf(err, "converting legacy deck: %s", tail(out))
		}
		pptxPath = filepath.Join(outDir, baseName(deckPath)+".pptx")
		if _, err = os.Stat(pptxPath); err != nil {
			return nil, errors.Wrap(err, "converted deck missing")
		}
	}

	out, err := svc.run(ctx, svc.sofficeBin, "--headless", "--convert-to", "pdf", "--outdir", outDir, pptxPath)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering deck to pdf: %s", tail(out))
	}
	pdfPath := filepath.Join(outDir, baseName(pptxPath)+".pdf")
	if _, err = os.Stat(pdfPath); err != nil {
		return nil, errors.Wrap(err, "rendered pdf missing")
	}

	pageCount, err := api.PageCountFile(pdfPath)
	if err != nil {
		return nil, errors.Wrap(err, "reading rendered pdf")
	}
	if pageCount == 0 {
		return nil, present.ErrNoSlides
	}

	imagePaths, err := svc.rasterize(ctx, pdfPath, outDir, pageCount)
	if err != nil {
		return nil, err
	}

	narrations, err := deckNarrations(pptxPath, pageCount)
	if err != nil {
		return nil, errors.Wrap(err, "extracting narration text")
	}

	slides := make([]present.Slide, pageCount)
	for i := 0; i < pageCount; i++ {
		slides[i] = present.Slide{
			Index:     i + 1,
			ImagePath: imagePaths[i],
			Narration: narrations[i],
		}
	}
	svc.logger.Info(fmt.Sprintf("rendered %d slide(s) from %s", pageCount, filepath.Base(deckPath)))
	return slides, nil
}

// rasterize exports one PNG per PDF page and renames them to zero-padded
// ordinals so lexical sort equals presentation order.
func (svc *Service) rasterize(ctx context.Context, pdfPath, outDir string, pageCount int) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	out, err := svc.run(ctx, svc.pdftoppmBin,
		"-png",
		"-scale-to-x", strconv.Itoa(svc.width),
		"-scale-to-y", strconv.Itoa(svc.height),
		pdfPath, prefix,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "rasterizing pdf: %s", tail(out))
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, errors.Wrap(err, "listing rendered pages")
	}
	sort.Strings(pages)
	if len(pages) != pageCount {
		return nil, errors.Errorf("rendered %d page image(s), want %d", len(pages), pageCount)
	}

	imagePaths := make([]string, pageCount)
	for i, page := range pages {
		imagePath := filepath.Join(outDir, fmt.Sprintf("slide_%03d.png", i+1))
		if err = os.Rename(page, imagePath); err != nil {
			return nil, errors.Wrap(err, "naming slide image")
		}
		imagePaths[i] = imagePath
	}
	return imagePaths, nil
}

func execRun(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// tail keeps errors readable when a converter dumps pages of output.
func tail(out []byte) string {
	const max = 300
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}

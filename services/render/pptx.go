package rendersvc

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// blankNarration is spoken for slides carrying neither notes nor visible text,
// so a slide never drops out of the timeline.
const blankNarration = "blank slide"

var (
	slideRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
)

// deckNarrations returns one narration string per slide, preferring speaker
// notes over visible slide text. Both parts share the slide's ordinal in the
// OOXML package, so they can be matched up without reading relationships.
func deckNarrations(pptxPath string, count int) ([]string, error) {
	zr, err := zip.OpenReader(pptxPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening deck package")
	}
	defer zr.Close()

	slideTexts := make(map[int]string)
	noteTexts := make(map[int]string)

	for _, f := range zr.File {
		var dst map[int]string
		var m []string
		if m = notesRe.FindStringSubmatch(f.Name); m != nil {
			dst = noteTexts
		} else if m = slideRe.FindStringSubmatch(f.Name); m != nil {
			dst = slideTexts
		} else {
			continue
		}

		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", f.Name)
		}
		text, err := drawingText(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", f.Name)
		}
		dst[n] = text
	}

	narrations := make([]string, count)
	for i := 1; i <= count; i++ {
		text := strings.TrimSpace(noteTexts[i])
		if text == "" {
			text = strings.TrimSpace(slideTexts[i])
		}
		if text == "" {
			text = blankNarration
		}
		narrations[i-1] = text
	}
	return narrations, nil
}

// drawingText joins the character runs (<a:t> elements) of a DrawingML part.
func drawingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var parts []string
	var inRun bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inRun = false
			}
		case xml.CharData:
			if inRun {
				if s := string(el); s != "" {
					parts = append(parts, s)
				}
			}
		}
	}
	return strings.Join(parts, " "), nil
}

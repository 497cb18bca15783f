package rendersvc

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeDeckPackage(t *testing.T, files map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating deck package: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("adding %s: %v", name, err)
		}
		if _, err = w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("closing deck package: %v", err)
	}
	return path
}

func TestDeckNarrations(t *testing.T) {
	slideXML := func(text string) string {
		return `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` +
			`<a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:sld>`
	}

	tests := []struct {
		name  string
		files map[string]string
		count int
		want  []string
	}{
		{
			name: "notes preferred over slide text",
			files: map[string]string{
				"ppt/slides/slide1.xml":           slideXML("Visible title"),
				"ppt/notesSlides/notesSlide1.xml": slideXML("Spoken notes"),
			},
			count: 1,
			want:  []string{"Spoken notes"},
		},
		{
			name: "slide text when notes are missing",
			files: map[string]string{
				"ppt/slides/slide1.xml": slideXML("Visible title"),
			},
			count: 1,
			want:  []string{"Visible title"},
		},
		{
			name: "blank slide gets the sentinel",
			files: map[string]string{
				"ppt/slides/slide1.xml": slideXML("First"),
				"ppt/slides/slide2.xml": slideXML(""),
			},
			count: 2,
			want:  []string{"First", blankNarration},
		},
		{
			name: "more pages than deck parts",
			files: map[string]string{
				"ppt/slides/slide1.xml": slideXML("Only one"),
			},
			count: 3,
			want:  []string{"Only one", blankNarration, blankNarration},
		},
		{
			name: "multiple runs are joined",
			files: map[string]string{
				"ppt/notesSlides/notesSlide1.xml": `<p:sld xmlns:a="x">` +
					`<a:p><a:r><a:t>Hello</a:t></a:r><a:r><a:t>world</a:t></a:r></a:p></p:sld>`,
			},
			count: 1,
			want:  []string{"Hello world"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDeckPackage(t, tt.files)
			got, err := deckNarrations(path, tt.count)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeckNarrationsBadPackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := deckNarrations(path, 1)
	assert.Error(t, err)
}

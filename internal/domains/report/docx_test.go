package report

import (
	"archive/zip"
	"io"
	"path/filepath"
	"regexp"
	"testing"
)

var (
	pStyleAttr = regexp.MustCompile(`<w:pStyle w:val="([^"]+)"`)
	boldTag    = regexp.MustCompile(`<w:b[ />]`)
	fontsTag   = regexp.MustCompile(`<w:rFonts[^>]*w:ascii="Calibri Light"[^>]*w:hAnsi="Calibri Light"|<w:rFonts[^>]*w:hAnsi="Calibri Light"[^>]*w:ascii="Calibri Light"`)
)

func readZipPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}
	t.Fatalf("%s has no %s", path, name)
	return ""
}

func TestDocxRendererStylesAndRuns(t *testing.T) {
	doc := Layout("# Titolo\n**Partecipanti:**\nMario Rossi\n## Punti\n* punto **chiave**\nTesto finale")
	path := filepath.Join(t.TempDir(), "nested", "Titolo.docx")
	if err := NewDocxRenderer("Calibri Light").Render(doc, path); err != nil {
		t.Fatal(err)
	}

	body := readZipPart(t, path, "word/document.xml")
	styles := readZipPart(t, path, "word/styles.xml")

	used := map[string]int{}
	for _, m := range pStyleAttr.FindAllStringSubmatch(body, -1) {
		used[m[1]]++
	}
	tests := []struct {
		id   string
		want int
	}{
		{"Heading1", 1},
		{"Heading2", 1},
		{bulletStyle, 2},
	}
	for _, tt := range tests {
		if used[tt.id] != tt.want {
			t.Errorf("pStyle %q used %d times, want %d (all: %v)", tt.id, used[tt.id], tt.want, used)
		}
	}
	for id := range used {
		if !regexp.MustCompile(`w:styleId="` + regexp.QuoteMeta(id) + `"`).MatchString(styles) {
			t.Errorf("pStyle %q is not defined in styles.xml", id)
		}
	}

	if n := len(boldTag.FindAllString(body, -1)); n < 2 {
		t.Errorf("%d bold runs, want at least 2", n)
	}
	if !fontsTag.MatchString(body) {
		t.Error("runs carry no Calibri Light rFonts")
	}
}

func TestDocxRendererWithoutFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.docx")
	if err := NewDocxRenderer("").Render(Layout("# Titolo\nTesto"), path); err != nil {
		t.Fatal(err)
	}
	if body := readZipPart(t, path, "word/document.xml"); regexp.MustCompile(`w:ascii="`).MatchString(body) {
		t.Error("font set although none configured")
	}
}

package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
)

// Renderer writes a laid-out document to path, replacing any existing file.
type Renderer interface {
	Render(doc Document, path string) error
}

// bulletStyle is the style ID of the template's "List Bullet" style.
const bulletStyle = "ListBullet"

// DocxRenderer renders reports as Word documents.
type DocxRenderer struct {
	Font string
}

func NewDocxRenderer(font string) *DocxRenderer {
	return &DocxRenderer{Font: font}
}

func (r *DocxRenderer) Render(doc Document, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: create dir: %w", err)
	}
	out, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("report: new document: %w", err)
	}

	for _, b := range doc.Blocks {
		if b.Kind == KindHeading {
			h, err := out.AddHeading(b.Text(), uint(b.Level))
			if err != nil {
				return fmt.Errorf("report: heading %q: %w", b.Text(), err)
			}
			r.setFont(h)
			continue
		}
		p := out.AddParagraph("")
		if b.Kind == KindBullet {
			p.Style(bulletStyle)
		}
		for _, run := range b.Runs {
			if t := p.AddText(run.Text); run.Bold {
				t.Bold(true)
			}
		}
		r.setFont(p)
	}

	if err := out.SaveTo(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// setFont applies the renderer font to every run of p.
func (r *DocxRenderer) setFont(p *docx.Paragraph) {
	if r.Font == "" {
		return
	}
	for _, child := range p.GetCT().Children {
		run := child.Run
		if run == nil {
			continue
		}
		if run.Property == nil {
			run.Property = &ctypes.RunProperty{}
		}
		run.Property.Fonts = &ctypes.RunFonts{Ascii: r.Font, HAnsi: r.Font}
	}
}

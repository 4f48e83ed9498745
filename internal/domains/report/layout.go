package report

import (
	"regexp"
	"strings"
)

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindBullet
)

func (k BlockKind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	default:
		return "paragraph"
	}
}

// Run is a span of text inside a block.
type Run struct {
	Text string
	Bold bool
}

// Block is one paragraph of the rendered report. Level is only set on
// headings (1 or 2).
type Block struct {
	Kind  BlockKind
	Level int
	Runs  []Run
}

func (b Block) Text() string {
	var s strings.Builder
	for _, r := range b.Runs {
		s.WriteString(r.Text)
	}
	return s.String()
}

type Document struct {
	Title  string
	Blocks []Block
}

var (
	boldSpan     = regexp.MustCompile(`\*\*[^*]+\*\*`)
	boldOnlyLine = regexp.MustCompile(`^\*\*[^*]+\*\*:?$`)
)

const participantsMarker = "Partecipanti:"

// Layout turns the model's markdown-ish answer into blocks. It never fails;
// lines it does not recognise become plain paragraphs.
func Layout(text string) Document {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var doc Document
	titleAt := -1
	for i, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			doc.Title = strings.TrimSpace(strings.TrimLeft(t, "#"))
			titleAt = i
			break
		}
	}
	if titleAt < 0 {
		return doc
	}
	doc.Blocks = append(doc.Blocks, Block{Kind: KindHeading, Level: 1, Runs: []Run{{Text: doc.Title}}})

	inParticipants := false
	for _, l := range lines[titleAt+1:] {
		line := strings.TrimSpace(l)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#"):
			inParticipants = false
			level := 2
			if !strings.HasPrefix(line, "##") {
				level = 1
			}
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  KindHeading,
				Level: level,
				Runs:  []Run{{Text: strings.TrimSpace(strings.TrimLeft(line, "#"))}},
			})

		case strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "- "):
			inParticipants = false
			content := strings.TrimSpace(line[2:])
			kind := KindBullet
			if boldOnlyLine.MatchString(content) {
				kind = KindParagraph
			}
			doc.Blocks = append(doc.Blocks, Block{Kind: kind, Runs: boldRuns(content)})

		case strings.Contains(line, "**"):
			if strings.Contains(line, participantsMarker) {
				inParticipants = true
			}
			doc.Blocks = append(doc.Blocks, Block{Kind: KindParagraph, Runs: boldRuns(line)})

		case inParticipants:
			doc.Blocks = append(doc.Blocks, Block{Kind: KindBullet, Runs: []Run{{Text: line}}})

		default:
			doc.Blocks = append(doc.Blocks, Block{Kind: KindParagraph, Runs: []Run{{Text: line}}})
		}
	}
	return doc
}

// boldRuns splits s on **bold** spans. Unbalanced markers stay literal.
func boldRuns(s string) []Run {
	var runs []Run
	last := 0
	for _, m := range boldSpan.FindAllStringIndex(s, -1) {
		if m[0] > last {
			runs = append(runs, Run{Text: s[last:m[0]]})
		}
		runs = append(runs, Run{Text: s[m[0]+2 : m[1]-2], Bold: true})
		last = m[1]
	}
	if last < len(s) {
		runs = append(runs, Run{Text: s[last:]})
	}
	return runs
}

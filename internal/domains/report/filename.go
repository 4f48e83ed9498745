package report

import (
	"strings"
	"time"
	"unicode"
)

const untitled = "report_senza_titolo"

// FileName derives the .docx name from the report title and the day it was
// produced.
func FileName(title string, now time.Time) string {
	base := cleanTitle(title)
	if base == "" {
		base = untitled
	}
	return base + "_" + now.Format("02_01_2006") + ".docx"
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(title), "#"))
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, title)
	return strings.ReplaceAll(strings.TrimSpace(kept), " ", "_")
}

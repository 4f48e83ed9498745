// Package detect reports whether a video-call tab is open in the browser.
package detect

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/xpanvictor/verbale/pkg/Logger"
)

// ScriptRunner executes an AppleScript and returns its stdout.
type ScriptRunner func(ctx context.Context, script string) (string, error)

func osascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("osascript: %w", err)
	}
	return string(out), nil
}

type TabDetector struct {
	browser string
	domains []string
	run     ScriptRunner
	logger  *Logger.Logger
}

func NewTabDetector(browser string, domains []string, logger *Logger.Logger) *TabDetector {
	return NewTabDetectorWithRunner(browser, domains, osascript, logger)
}

func NewTabDetectorWithRunner(browser string, domains []string, run ScriptRunner, logger *Logger.Logger) *TabDetector {
	return &TabDetector{browser: browser, domains: domains, run: run, logger: logger}
}

// HasMeetingTab never fails: scripting errors count as no meeting.
func (d *TabDetector) HasMeetingTab(ctx context.Context) bool {
	if len(d.domains) == 0 {
		return false
	}
	out, err := d.run(ctx, d.Script())
	if err != nil {
		d.logger.Errorf("meeting tab check failed: %v", err)
		return false
	}
	output := strings.ToLower(strings.TrimSpace(out))
	found := strings.Contains(output, "true")
	d.logger.Debugf("meeting tab check: %q -> %t", output, found)
	return found
}

// Script builds the AppleScript walking every tab of every window.
func (d *TabDetector) Script() string {
	conds := make([]string, len(d.domains))
	for i, dom := range d.domains {
		conds[i] = fmt.Sprintf("theURL contains %s", quote(dom))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "tell application %s\n", quote(d.browser))
	b.WriteString("\trepeat with w in windows\n")
	b.WriteString("\t\trepeat with t in tabs of w\n")
	b.WriteString("\t\t\tset theURL to URL of t\n")
	fmt.Fprintf(&b, "\t\t\tif %s then\n", strings.Join(conds, " or "))
	b.WriteString("\t\t\t\treturn true\n")
	b.WriteString("\t\t\tend if\n")
	b.WriteString("\t\tend repeat\n")
	b.WriteString("\tend repeat\n")
	b.WriteString("\treturn false\n")
	b.WriteString("end tell\n")
	return b.String()
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

package device

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("device: input device not found")

// Info describes an audio input as reported by the host API.
type Info struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
}

// Match returns the first input device whose name contains want,
// ignoring case. Output-only devices are skipped.
func Match(devices []Info, want string) (Info, error) {
	needle := strings.ToLower(strings.TrimSpace(want))
	for _, d := range devices {
		if d.MaxInputChannels <= 0 {
			continue
		}
		if strings.Contains(strings.ToLower(d.Name), needle) {
			return d, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q (available: %s)", ErrNotFound, want, names(devices))
}

func names(devices []Info) string {
	var out []string
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			out = append(out, d.Name)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

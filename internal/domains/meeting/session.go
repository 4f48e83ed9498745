// Package meeting records detected video calls and turns them into
// transcripts and reports.
package meeting

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MonitorPhase string

const (
	IDLE       MonitorPhase = "idle"
	RECORDING  MonitorPhase = "recording"
	PROCESSING MonitorPhase = "processing" // stop requested, pipeline running
)

type MonitorEvent string

const (
	MEETING_DETECTED MonitorEvent = "meeting_detected"
	MEETING_CLOSED   MonitorEvent = "meeting_closed"
	PROCESSED        MonitorEvent = "processed"
)

// Session is one recorded meeting.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time
}

// RecordingName is the mp3 file name, stamped with the start minute.
func (s Session) RecordingName() string {
	return "registrazione_" + s.StartedAt.Format("02_01_2006_15_04") + ".mp3"
}

// TranscriptName shares the recording's base name.
func (s Session) TranscriptName() string {
	return strings.TrimSuffix(s.RecordingName(), ".mp3") + ".txt"
}

func cliTranscriptName(now time.Time) string {
	return "trascrizione_" + now.Format("02_01_2006_15_04") + ".txt"
}

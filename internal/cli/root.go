package cli

import (
	"context"

	"github.com/xpanvictor/verbale/internal/app"
	"github.com/xpanvictor/verbale/internal/domains/meeting"
)

type OfflinePipeline interface {
	TranscribeAndReport(ctx context.Context, audioPath string) (*meeting.Result, error)
}

type Dependencies struct {
	App *app.App
	// Offline replaces the pipeline built from App when set.
	Offline OfflinePipeline
}

func (d *Dependencies) offline() (OfflinePipeline, error) {
	if d.Offline != nil {
		return d.Offline, nil
	}
	return d.App.Pipeline()
}

package app

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/verbale/internal/config"
	"github.com/xpanvictor/verbale/internal/domains/meeting"
	"github.com/xpanvictor/verbale/internal/domains/report"
	"github.com/xpanvictor/verbale/internal/domains/skill"
	"github.com/xpanvictor/verbale/internal/server"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/io/audio/dsp"
	"github.com/xpanvictor/verbale/pkg/io/audio/encode"
	"github.com/xpanvictor/verbale/pkg/io/capture"
	"github.com/xpanvictor/verbale/pkg/io/detect"
	"github.com/xpanvictor/verbale/pkg/io/device/portaudio"
)

// App represents the application with its shared dependencies. Components
// are built on demand so each binary only opens what it uses.
type App struct {
	Config *config.Settings
	Logger *Logger.Logger

	closers []func() error
}

func NewApp(cfg *config.Settings, logger *Logger.Logger) *App {
	if cfg.AssistantKeys.GeminiApiKey == "" {
		logger.Error("GOOGLE_API_KEY is not set; Gemini calls will fail")
	}
	return &App{Config: cfg, Logger: logger}
}

// Close releases whatever the builders opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Pipeline wires transcription and reporting. The audio stages are wired
// too; the offline flow simply does not reach them.
func (a *App) Pipeline() (*meeting.Pipeline, error) {
	cfg := a.Config

	transcriber, err := NewTranscriber(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	source, err := NewReportSource(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	if c, ok := source.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	reports := report.NewService(
		source,
		report.NewDocxRenderer(cfg.Report.Font),
		report.Options{UploadTranscript: cfg.Report.UploadTranscript},
		a.Logger.Named("report"),
	)

	processor := dsp.New(dsp.Options{
		SystemGain:  cfg.Audio.SystemGain,
		MicGain:     cfg.Audio.MicGain,
		CutoffHz:    cfg.Audio.CutoffHz,
		FilterOrder: cfg.Audio.FilterOrder,
		TargetPeak:  cfg.Audio.TargetPeak,
		Denoise:     cfg.Audio.Denoise,
	}, a.Logger.Named("dsp"))

	encoder := encode.New(encode.Options{
		FFmpegPath: cfg.Audio.FFmpegPath,
		Bitrate:    cfg.Audio.Bitrate,
	}, a.Logger.Named("encode"))

	return meeting.NewPipeline(processor, encoder, transcriber, reports, meeting.Dirs{
		Recordings:  cfg.Paths.Recordings,
		Transcripts: cfg.Paths.Transcripts,
		Reports:     cfg.Paths.ReportsDir(),
	}, a.Logger.Named("pipeline")), nil
}

// Monitor opens the capture device and wires the full meeting loop. A
// missing device surfaces as device.ErrNotFound.
func (a *App) Monitor() (*meeting.Monitor, error) {
	cfg := a.Config

	pipeline, err := a.Pipeline()
	if err != nil {
		return nil, err
	}

	src, err := portaudio.Open(portaudio.Config{
		Device:          cfg.Audio.Device,
		SampleRate:      cfg.Audio.SampleRate,
		Channels:        cfg.Audio.Channels,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
	}, a.Logger.Named("portaudio"))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, src.Terminate)

	recorder := capture.NewRecorder(src, cfg.Audio.QueueFrames, a.Logger.Named("recorder"))
	detector := detect.NewTabDetector(cfg.Monitor.Browser, cfg.Monitor.MeetingDomains, a.Logger.Named("detector"))

	return meeting.NewMonitor(detector, recorder, pipeline, cfg.Monitor.Interval, a.Logger.Named("monitor")), nil
}

// SkillRouter builds the HTTP engine for the voice skill.
func (a *App) SkillRouter() *gin.Engine {
	answerer := NewSkillAnswerer(a.Config, a.Logger)
	a.closers = append(a.closers, answerer.Close)

	return server.NewRouter(a.Config, server.Dependencies{
		Skill:  skill.NewService(answerer, a.Logger.Named("skill")),
		Logger: a.Logger.Named("http"),
	})
}

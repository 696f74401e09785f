package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/AhmedIzaan/ai-interview-coach/internal/client"
	"github.com/AhmedIzaan/ai-interview-coach/internal/config"
	"github.com/AhmedIzaan/ai-interview-coach/internal/events"
	"github.com/AhmedIzaan/ai-interview-coach/internal/hub"
	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/interview"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/bridge"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/google"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/mock"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech/wavsource"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/voice"
	"github.com/AhmedIzaan/ai-interview-coach/internal/storage"
)

// ErrUnknownProvider is returned for an STT or TTS provider name that is not recognised.
var ErrUnknownProvider = errors.New("unknown provider")

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration

	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Orchestrator *interview.Orchestrator
	Reports      *storage.ReportStore
	Hub          *hub.Hub

	publisher *events.Publisher
	cancelHub context.CancelFunc
	ready     atomic.Bool
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Configuration) (*Application, error) {
	logging.Init(logging.Config{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})

	a := &Application{
		Cfg:      cfg,
		Logger:   logging.WithComponent("application"),
		Metrics:  metrics.DefaultMetrics,
		Gatherer: prometheus.DefaultGatherer,
		Hub:      hub.New(),
	}

	reports, err := storage.NewReportStore(afero.NewOsFs(), cfg.Reports.Dir, cfg.Reports.Format)
	if err != nil {
		return nil, err
	}
	a.Reports = reports

	tone, err := models.ParseTone(cfg.Interview.DefaultTone)
	if err != nil {
		return nil, err
	}

	svc, err := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, client.WithMetrics(a.Metrics))
	if err != nil {
		return nil, err
	}

	engine, err := a.newEngine()
	if err != nil {
		return nil, err
	}
	synth, err := a.newSynthesizer()
	if err != nil {
		if engine != nil {
			_ = engine.Close()
		}
		return nil, err
	}

	a.publisher = events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicSessions: cfg.Kafka.TopicSessions,
		TopicAnswers:  cfg.Kafka.TopicAnswers,
		Principal:     cfg.Kafka.Principal,
		Metrics:       a.Metrics,
	})

	announcer := voice.NewAnnouncer(synth, voice.Config{
		Lang:  cfg.TTS.LanguageCode,
		Rate:  cfg.TTS.Rate,
		Pitch: cfg.TTS.Pitch,
	}, a.Metrics)

	a.Orchestrator = interview.New(svc, speech.NewCapture(engine, a.Metrics), announcer, interview.Config{
		DefaultRole:        cfg.Interview.DefaultRole,
		DefaultTone:        tone,
		MinTranscriptChars: cfg.Interview.MinTranscriptChars,
		AnnounceDelay:      cfg.Interview.AnnounceDelay,
	},
		interview.WithEventSink(a.publisher),
		interview.WithArchive(a.Reports),
		interview.WithMetrics(a.Metrics),
	)
	a.Orchestrator.Subscribe(func(v interview.View) { a.Hub.PublishView(v) })
	a.Hub.OnConnect(func() any { return a.Orchestrator.Snapshot() })

	sttName := "none"
	if engine != nil {
		sttName = engine.Name()
	}
	a.Logger.Info().
		Str("sttProvider", sttName).
		Bool("speechOutput", announcer.Available()).
		Str("reportsDir", a.Reports.Dir()).
		Msg("AI interview coach application created")
	return a, nil
}

// newEngine builds the speech engine named by STT_PROVIDER. "none" yields nil,
// which leaves the interview without recognition support.
func (a *Application) newEngine() (speech.Engine, error) {
	cfg := a.Cfg.STT
	switch cfg.Provider {
	case "mock":
		return mock.New(mock.DefaultConfig()), nil

	case "google":
		if cfg.AudioFile == "" {
			return nil, errors.New("google speech engine requires STT_AUDIO_FILE")
		}
		source := wavsource.New(afero.NewOsFs(), cfg.AudioFile)
		rate, err := source.SampleRate()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", cfg.AudioFile, err)
		}
		if rate != cfg.SampleRateHz {
			a.Logger.Info().Int("configured", cfg.SampleRateHz).Int("file", rate).Msg("Using the audio file's sample rate")
		}
		return google.New(context.Background(), google.Config{
			LanguageCode:     cfg.LanguageCode,
			SampleRateHz:     rate,
			InterimResults:   cfg.InterimResults,
			SpeechEndTimeout: cfg.SpeechEndTimeout,
		}, source)

	case "bridge":
		engine := bridge.New(a.Hub, cfg.LanguageCode)
		a.Hub.OnMessage(func(msg models.BridgeMessage) {
			if !engine.Deliver(msg) {
				a.Logger.Debug().Str("type", msg.Type).Uint64("session", msg.Session).Msg("Bridge message ignored")
			}
		})
		return engine, nil

	case "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: STT_PROVIDER=%q", ErrUnknownProvider, cfg.Provider)
	}
}

func (a *Application) newSynthesizer() (voice.Synthesizer, error) {
	switch a.Cfg.TTS.Provider {
	case "log":
		return voice.NewLogSynthesizer(), nil
	case "bridge":
		return voice.NewBridgeSynthesizer(a.Hub), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: TTS_PROVIDER=%q", ErrUnknownProvider, a.Cfg.TTS.Provider)
	}
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start(ctx context.Context) error {
	a.StartupTime = time.Now().UTC()

	hubCtx, cancel := context.WithCancel(ctx)
	a.cancelHub = cancel
	go a.Hub.Run(hubCtx)
	a.ready.Store(true)

	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Msg("AI interview coach starting")
	return nil
}

// Ready reports whether Start has completed.
func (a *Application) Ready() bool {
	return a.ready.Load()
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("AI interview coach shutting down")
	a.ready.Store(false)

	if err := a.Orchestrator.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close interview")
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event publisher")
		}
	}
	if a.cancelHub != nil {
		a.cancelHub()
	}
}

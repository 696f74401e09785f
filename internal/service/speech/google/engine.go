// Package google provides a Google Cloud Speech-to-Text streaming engine.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	cloudspeech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
)

// Config controls the recognition request.
type Config struct {
	LanguageCode     string
	SampleRateHz     int
	InterimResults   bool
	SpeechEndTimeout time.Duration // Silence that ends a listening session; 0 leaves the server default
}

// DefaultConfig returns the default recognition settings.
func DefaultConfig() Config {
	return Config{
		LanguageCode:     "en-US",
		SampleRateHz:     16000,
		InterimResults:   true,
		SpeechEndTimeout: 3 * time.Second,
	}
}

// AudioSource supplies LINEAR16 mono PCM for one listening session.
type AudioSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type streamOpener func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error)

// Engine implements speech.Engine using Google Cloud Speech-to-Text.
type Engine struct {
	cfg     Config
	source  AudioSource
	open    streamOpener
	closeFn func() error
	logger  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a Google engine.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config, source AudioSource) (*Engine, error) {
	c, err := cloudspeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	open := func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error) {
		return c.StreamingRecognize(ctx)
	}
	return newEngine(cfg, source, open, c.Close), nil
}

func newEngine(cfg Config, source AudioSource, open streamOpener, closeFn func() error) *Engine {
	return &Engine{
		cfg:     cfg,
		source:  source,
		open:    open,
		closeFn: closeFn,
		logger:  logging.WithEngine("stt-google", "google"),
	}
}

// Name implements speech.Engine.
func (e *Engine) Name() string { return "google" }

// Start opens a streaming recognition session, sends the config, then streams
// audio from the source while results are delivered to cb.
func (e *Engine) Start(ctx context.Context, cb speech.Callback) error {
	_ = e.Stop()

	sctx, cancel := context.WithCancel(ctx)

	stream, err := e.open(sctx)
	if err != nil {
		cancel()
		return classify(err)
	}
	if err := stream.Send(streamingConfig(e.cfg)); err != nil {
		cancel()
		return classify(err)
	}

	audio, err := e.source.Open(sctx)
	if err != nil {
		cancel()
		return &speech.CaptureError{Kind: speech.KindUnknown, Err: fmt.Errorf("open audio source: %w", err)}
	}

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	go e.pump(sctx, stream, audio)
	go e.listen(sctx, stream, cb)
	return nil
}

// Stop aborts the running session. Nothing further is delivered for it.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Close stops listening and releases the client.
func (e *Engine) Close() error {
	_ = e.Stop()
	if e.closeFn != nil {
		return e.closeFn()
	}
	return nil
}

// pump sends audio until the source is drained, then half-closes the stream.
func (e *Engine) pump(ctx context.Context, stream speechpb.Speech_StreamingRecognizeClient, audio io.ReadCloser) {
	defer audio.Close()

	buf := make([]byte, 32*1024)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			sendErr := stream.Send(&speechpb.StreamingRecognizeRequest{
				StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
					AudioContent: chunk,
				},
			})
			if sendErr != nil {
				// The server closed the stream; listen reports why.
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				_ = stream.CloseSend()
			} else if ctx.Err() == nil {
				e.logger.Warn().Err(err).Msg("Audio source read failed")
				_ = stream.CloseSend()
			}
			return
		}
	}
}

// listen receives responses and invokes callbacks until the stream ends.
func (e *Engine) listen(ctx context.Context, stream speechpb.Speech_StreamingRecognizeClient, cb speech.Callback) {
	for {
		resp, err := stream.Recv()
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, io.EOF) {
			cb.OnEnd()
			return
		}
		if err != nil {
			cb.OnError(classify(err))
			return
		}
		if resp.Error != nil {
			cb.OnError(classify(status.ErrorProto(resp.Error)))
			return
		}

		switch resp.SpeechEventType {
		case speechpb.StreamingRecognizeResponse_SPEECH_ACTIVITY_TIMEOUT,
			speechpb.StreamingRecognizeResponse_END_OF_SINGLE_UTTERANCE:
			e.logger.Debug().Str("event", resp.SpeechEventType.String()).Msg("Speech activity ended")
		}

		if results := toResults(resp); len(results) > 0 {
			cb.OnResults(results)
		}
	}
}

func toResults(resp *speechpb.StreamingRecognizeResponse) []speech.Result {
	out := make([]speech.Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		out = append(out, speech.Result{
			Text:       alt.Transcript,
			Final:      r.IsFinal,
			Confidence: float64(alt.Confidence),
		})
	}
	return out
}

func streamingConfig(cfg Config) *speechpb.StreamingRecognizeRequest {
	sc := &speechpb.StreamingRecognitionConfig{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(cfg.SampleRateHz),
			LanguageCode:               cfg.LanguageCode,
			EnableAutomaticPunctuation: true,
		},
		InterimResults: cfg.InterimResults,
	}
	if cfg.SpeechEndTimeout > 0 {
		sc.EnableVoiceActivityEvents = true
		sc.VoiceActivityTimeout = &speechpb.StreamingRecognitionConfig_VoiceActivityTimeout{
			SpeechEndTimeout: durationpb.New(cfg.SpeechEndTimeout),
		}
	}
	return &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: sc,
		},
	}
}

// classify maps gRPC failures onto capture error kinds.
func classify(err error) *speech.CaptureError {
	var kind speech.ErrorKind
	switch status.Code(err) {
	case codes.PermissionDenied, codes.Unauthenticated:
		kind = speech.KindPermissionDenied
	case codes.OutOfRange:
		// audio timeout: the stream went too long without speech
		kind = speech.KindNoSpeech
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		kind = speech.KindNetwork
	case codes.Canceled, codes.Aborted:
		kind = speech.KindAborted
	default:
		kind = speech.KindUnknown
	}
	return &speech.CaptureError{Kind: kind, Err: err}
}

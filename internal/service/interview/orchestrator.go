// Package interview sequences a spoken mock interview: it starts a session with
// the interview service, captures each answer through speech recognition,
// submits it exactly once, and collects the final feedback.
package interview

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/AhmedIzaan/ai-interview-coach/internal/client"
	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/logging"
	"github.com/AhmedIzaan/ai-interview-coach/internal/observability/metrics"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/generation"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/speech"
	"github.com/AhmedIzaan/ai-interview-coach/internal/service/turn"
	"github.com/AhmedIzaan/ai-interview-coach/internal/storage"
)

// SessionService is the remote interview service.
type SessionService interface {
	StartInterview(ctx context.Context, role string, tone models.Tone) (*client.StartResult, error)
	SubmitAnswer(ctx context.Context, req client.SubmitRequest) (*client.SubmitResult, error)
	GetFinalFeedback(ctx context.Context, sessionID string) (*client.FeedbackResult, error)
}

// Announcer reads text aloud. Calls are fire-and-forget.
type Announcer interface {
	Speak(ctx context.Context, text string)
	Cancel()
}

// EventSink receives lifecycle events.
type EventSink interface {
	PublishSessionStarted(ctx context.Context, ev models.SessionStarted) error
	PublishAnswerSubmitted(ctx context.Context, ev models.AnswerSubmitted) error
	PublishSessionCompleted(ctx context.Context, ev models.SessionCompleted) error
}

// ReportArchive stores completed interviews.
type ReportArchive interface {
	Save(r storage.Report) (string, error)
}

// Scheduler runs fn after d and returns a function that cancels it.
type Scheduler func(d time.Duration, fn func()) (cancel func() bool)

// Config holds orchestrator settings.
type Config struct {
	DefaultRole string
	DefaultTone models.Tone
	// MinTranscriptChars is the usability threshold: a transcript must be longer than this.
	MinTranscriptChars int
	// AnnounceDelay lets the presentation render a question before it is read aloud.
	AnnounceDelay time.Duration
	// DrainTimeout bounds how long Close waits for queued event publishes and
	// report archives before cancelling them.
	DrainTimeout time.Duration
}

const defaultDrainTimeout = 5 * time.Second

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		DefaultRole:        models.DefaultRole,
		DefaultTone:        models.DefaultTone,
		MinTranscriptChars: 5,
		AnnounceDelay:      500 * time.Millisecond,
		DrainTimeout:       defaultDrainTimeout,
	}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDispatcher replaces the default goroutine-per-call dispatch of service calls and sinks.
func WithDispatcher(dispatch func(fn func())) Option {
	return func(o *Orchestrator) { o.dispatch = dispatch }
}

// WithScheduler replaces time.AfterFunc for delayed announcements.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) { o.schedule = s }
}

func WithEventSink(sink EventSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

func WithArchive(a ReportArchive) Option {
	return func(o *Orchestrator) { o.archive = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the timestamp source for events and reports.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator owns the interview session, its current turn and the speech capture.
//
// All state lives behind mu. Service calls run outside the lock and carry the
// session generation they were issued under; a response whose generation is
// no longer current (restart, close) is discarded. Capture Start/Stop are never
// called with mu held because engines may call back synchronously.
type Orchestrator struct {
	service   SessionService
	capture   *speech.Capture
	announcer Announcer
	sink      EventSink
	archive   ReportArchive
	metrics   *metrics.Metrics
	cfg       Config
	dispatch  func(fn func())
	schedule  Scheduler
	now       func() time.Time
	sessions  *generation.Counter

	ctx    context.Context
	cancel context.CancelFunc

	// effects counts queued publishes and archives; Add happens under mu while open.
	effects sync.WaitGroup

	notifyMu sync.Mutex

	mu           sync.Mutex
	logger       zerolog.Logger
	gen          uint64
	phase        Phase
	role         string
	tone         models.Tone
	session      *models.Session
	question     string
	turn         *turn.Lifecycle
	turns        []models.Turn
	transcript   string
	captureFloor uint64
	feedback     *models.FeedbackRecord
	lastErr      error
	failed       Action
	stopAnnounce func() bool
	subscribers  map[int]func(View)
	nextSub      int
	closed       bool
}

// New creates an orchestrator. capture owns the speech engine for the
// orchestrator's lifetime and is released by Close.
func New(service SessionService, capture *speech.Capture, announcer Announcer, cfg Config, opts ...Option) *Orchestrator {
	if cfg.DefaultRole == "" {
		cfg.DefaultRole = models.DefaultRole
	}
	if cfg.DefaultTone == "" {
		cfg.DefaultTone = models.DefaultTone
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		service:     service,
		capture:     capture,
		announcer:   announcer,
		cfg:         cfg,
		dispatch:    func(fn func()) { go fn() },
		schedule:    afterFunc,
		now:         time.Now,
		sessions:    generation.New(),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logging.WithComponent("interview"),
		subscribers: make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(o)
	}

	capture.SetObserver(o.onCapture)
	return o
}

func afterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Subscribe registers fn to receive a View after every transition.
// fn must not block; it is called without the orchestrator lock held.
func (o *Orchestrator) Subscribe(fn func(View)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

// Snapshot returns the current view.
func (o *Orchestrator) Snapshot() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Session returns the active session, if any.
func (o *Orchestrator) Session() (models.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return models.Session{}, false
	}
	return *o.session, true
}

// Turns returns the answered turns of the active session in order.
func (o *Orchestrator) Turns() []models.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.Turn(nil), o.turns...)
}

// Start begins a new interview, abandoning any session in progress.
// A blank role uses the default role and an empty tone the default tone.
func (o *Orchestrator) Start(role, tone string) error {
	t := o.cfg.DefaultTone
	if strings.TrimSpace(tone) != "" {
		parsed, err := models.ParseTone(tone)
		if err != nil {
			return err
		}
		t = parsed
	}
	if strings.TrimSpace(role) == "" {
		role = o.cfg.DefaultRole
	}
	return o.begin(models.NormalizeRole(role), t, false)
}

// Restart discards the current session and starts a fresh one with the same role and tone.
func (o *Orchestrator) Restart() error {
	o.mu.Lock()
	role, tone := o.role, o.tone
	o.mu.Unlock()

	if role == "" {
		return ErrNotReady
	}
	return o.begin(role, tone, true)
}

func (o *Orchestrator) begin(role string, tone models.Tone, restart bool) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	wasCapturing := o.phase == PhaseCapturing
	gen := o.resetLocked()
	o.role, o.tone = role, tone
	o.phase = PhaseInitializing
	o.logger = logging.WithComponent("interview").With().Str("role", role).Str("tone", string(tone)).Logger()
	logger := o.logger
	o.mu.Unlock()

	if wasCapturing {
		_ = o.capture.Stop()
	}
	o.announcer.Cancel()

	if restart {
		o.metrics.RecordRestart()
		logger.Info().Msg("Restarting interview")
	}

	o.notify()
	o.dispatch(func() { o.startCall(gen, role, tone) })
	return nil
}

// resetLocked drops all session state and issues a new session generation.
func (o *Orchestrator) resetLocked() uint64 {
	if o.stopAnnounce != nil {
		o.stopAnnounce()
		o.stopAnnounce = nil
	}
	if o.turn != nil {
		o.turn.Abandon()
	}
	o.gen = o.sessions.Next()
	o.session = nil
	o.question = ""
	o.turn = nil
	o.turns = nil
	o.transcript = ""
	o.feedback = nil
	o.lastErr = nil
	o.failed = ActionNone
	return o.gen
}

func (o *Orchestrator) startCall(gen uint64, role string, tone models.Tone) {
	res, err := o.service.StartInterview(o.ctx, role, tone)

	o.mu.Lock()
	if !o.currentLocked(gen, PhaseInitializing) {
		o.mu.Unlock()
		o.metrics.RecordStaleDiscarded("start")
		return
	}

	if err != nil {
		o.phase = PhaseStartFailed
		o.lastErr = err
		o.failed = ActionStart
		logger := o.logger
		o.mu.Unlock()

		o.metrics.RecordSessionFailed()
		logger.Error().Err(err).Msg("Unable to start interview")
		o.notify()
		return
	}

	step := res.CurrentQuestion
	if step < 0 {
		step = 0
	}
	o.session = &models.Session{
		ID:             res.SessionID,
		Role:           role,
		Tone:           tone,
		TotalQuestions: res.TotalQuestions,
		CurrentStep:    step,
	}
	o.question = res.FirstQuestion
	o.turn = turn.NewLifecycle(step, res.FirstQuestion)
	o.phase = PhaseAwaitingCapture
	o.logger = logging.WithSession("interview", res.SessionID, role, string(tone))
	logger := o.logger
	o.mu.Unlock()

	o.metrics.RecordSessionStarted()
	logger.Info().Int("totalQuestions", res.TotalQuestions).Msg("Interview started")

	o.notify()
	o.announce(gen, res.FirstQuestion)
	o.publish(logger, func(ctx context.Context) error {
		return o.sink.PublishSessionStarted(ctx, models.SessionStarted{
			EventType:      models.EventSessionStarted,
			SessionID:      res.SessionID,
			Role:           role,
			Tone:           tone,
			TotalQuestions: res.TotalQuestions,
			Timestamp:      o.now().UnixMilli(),
		})
	})
}

// ToggleCapture starts listening when idle on a question, or stops listening
// and submits the transcript when capturing. A transcript at or below the
// usability threshold is not submitted and ErrTranscriptTooShort is returned.
func (o *Orchestrator) ToggleCapture() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	switch o.phase {
	case PhaseAwaitingCapture:
		return o.startCaptureLocked()
	case PhaseCapturing:
		return o.stopAndSubmitLocked()
	default:
		err := o.unavailableLocked()
		o.mu.Unlock()
		return err
	}
}

// startCaptureLocked is entered with mu held and returns with it released.
func (o *Orchestrator) startCaptureLocked() error {
	if !o.capture.HasSupport() {
		o.mu.Unlock()
		return speech.ErrCaptureUnsupported
	}

	gen := o.gen
	o.phase = PhaseCapturing
	o.transcript = ""
	o.lastErr = nil
	o.failed = ActionNone
	o.captureFloor = o.capture.Generation() + 1
	logger := o.logger
	o.mu.Unlock()

	o.notify()

	if err := o.capture.Start(o.ctx); err != nil {
		o.mu.Lock()
		if o.currentLocked(gen, PhaseCapturing) {
			o.phase = PhaseAwaitingCapture
			o.lastErr = err
		}
		o.mu.Unlock()

		logger.Warn().Err(err).Msg("Unable to start speech capture")
		o.notify()
		return err
	}

	o.mu.Lock()
	superseded := !o.currentLocked(gen, PhaseCapturing)
	o.mu.Unlock()
	if superseded {
		// restarted or stopped while the engine was starting
		_ = o.capture.Stop()
		return nil
	}

	logger.Debug().Msg("Capture started")
	return nil
}

// stopAndSubmitLocked is entered with mu held and returns with it released.
func (o *Orchestrator) stopAndSubmitLocked() error {
	gen := o.gen
	// Claim the stop so a concurrent toggle sees a busy orchestrator.
	o.phase = PhaseSubmitting
	o.mu.Unlock()

	_ = o.capture.Stop()
	text := strings.TrimSpace(o.capture.Text())

	o.mu.Lock()
	if !o.currentLocked(gen, PhaseSubmitting) {
		o.mu.Unlock()
		return nil
	}
	o.transcript = text

	if !o.usable(text) {
		o.phase = PhaseAwaitingCapture
		logger := o.logger
		o.mu.Unlock()

		o.metrics.RecordTranscriptRejected()
		logger.Debug().Int("chars", utf8.RuneCountInString(text)).Msg("Transcript too short, not submitting")
		o.notify()
		return ErrTranscriptTooShort
	}

	return o.beginSubmitLocked(gen, text)
}

// Submit sends the retained transcript of the current question. While
// capturing it behaves like the stop toggle.
func (o *Orchestrator) Submit() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	switch o.phase {
	case PhaseCapturing:
		return o.stopAndSubmitLocked()
	case PhaseAwaitingCapture:
		if !o.usable(o.transcript) {
			o.mu.Unlock()
			o.metrics.RecordTranscriptRejected()
			return ErrTranscriptTooShort
		}
		return o.beginSubmitLocked(o.gen, o.transcript)
	default:
		err := o.unavailableLocked()
		o.mu.Unlock()
		return err
	}
}

// beginSubmitLocked is entered with mu held and returns with it released.
func (o *Orchestrator) beginSubmitLocked(gen uint64, answer string) error {
	if err := o.turn.BeginSubmit(answer); err != nil {
		// The turn already has a submission outstanding or accepted.
		if o.phase == PhaseSubmitting && o.turn.State() != turn.StateSubmitting {
			o.phase = PhaseAwaitingCapture
		}
		o.mu.Unlock()
		return ErrBusy
	}

	o.phase = PhaseSubmitting
	o.lastErr = nil
	o.failed = ActionNone
	req := client.SubmitRequest{
		SessionID:        o.session.ID,
		Step:             o.turn.Step(),
		Role:             o.session.Role,
		Tone:             o.session.Tone,
		PreviousQuestion: o.question,
		Answer:           answer,
	}
	logger := o.logger
	o.mu.Unlock()

	logger.Info().Int("step", req.Step).Int("chars", utf8.RuneCountInString(answer)).Msg("Submitting answer")
	o.notify()
	o.dispatch(func() { o.submitCall(gen, req) })
	return nil
}

func (o *Orchestrator) submitCall(gen uint64, req client.SubmitRequest) {
	res, err := o.service.SubmitAnswer(o.ctx, req)

	o.mu.Lock()
	if !o.currentLocked(gen, PhaseSubmitting) || o.turn == nil || o.turn.Step() != req.Step {
		o.mu.Unlock()
		o.metrics.RecordStaleDiscarded("submit")
		return
	}
	logger := o.logger

	if err != nil {
		// Back to the question with the transcript kept for a retry.
		_ = o.turn.Reopen()
		o.phase = PhaseAwaitingCapture
		o.lastErr = err
		o.failed = ActionSubmit
		o.mu.Unlock()

		logger.Error().Err(err).Int("step", req.Step).Msg("Answer submission failed")
		o.notify()
		return
	}

	_ = o.turn.Finalize()
	answered := o.turn.Turn()
	o.turns = append(o.turns, answered)
	sessionID := o.session.ID

	var nextQuestion string
	if res.IsComplete {
		o.phase = PhaseFetchingFeedback
	} else {
		next := req.Step + 1
		if res.NextStep != nil && *res.NextStep != next {
			logger.Warn().Int("expected", next).Int("reported", *res.NextStep).Msg("Service reported an unexpected step; keeping local step")
		}
		nextQuestion = res.NextQuestion
		o.session.CurrentStep = next
		o.question = nextQuestion
		o.turn = turn.NewLifecycle(next, nextQuestion)
		o.transcript = ""
		o.phase = PhaseAwaitingCapture
	}
	o.mu.Unlock()

	o.metrics.RecordAnswerSubmitted()
	logger.Info().Int("step", req.Step).Bool("complete", res.IsComplete).Msg("Answer accepted")

	o.publish(logger, func(ctx context.Context) error {
		return o.sink.PublishAnswerSubmitted(ctx, models.AnswerSubmitted{
			EventType:      models.EventAnswerSubmitted,
			SessionID:      sessionID,
			Step:           req.Step,
			QuestionNumber: answered.Number,
			Question:       answered.Question,
			Answer:         answered.Answer,
			Timestamp:      o.now().UnixMilli(),
		})
	})
	o.notify()

	if res.IsComplete {
		o.dispatch(func() { o.feedbackCall(gen, sessionID) })
		return
	}
	o.announce(gen, nextQuestion)
}

func (o *Orchestrator) feedbackCall(gen uint64, sessionID string) {
	res, err := o.service.GetFinalFeedback(o.ctx, sessionID)

	o.mu.Lock()
	if !o.currentLocked(gen, PhaseFetchingFeedback) {
		o.mu.Unlock()
		o.metrics.RecordStaleDiscarded("feedback")
		return
	}
	logger := o.logger

	if err != nil {
		o.phase = PhaseFeedbackFailed
		o.lastErr = err
		o.failed = ActionFeedback
		o.mu.Unlock()

		logger.Error().Err(err).Msg("Fetching final feedback failed")
		o.notify()
		return
	}

	record := res.Record
	if len(record.Answers) == 0 {
		record.Answers = append([]models.Turn(nil), o.turns...)
	}
	o.feedback = &record
	o.phase = PhaseComplete
	session := *o.session
	o.mu.Unlock()

	o.metrics.RecordSessionCompleted()
	logger.Info().Float64("score", record.ClampedScore()).Str("sentiment", string(record.Sentiment)).Msg("Interview complete")

	o.notify()
	o.announce(gen, record.FinalVerdict)

	completedAt := o.now()
	o.publish(logger, func(ctx context.Context) error {
		return o.sink.PublishSessionCompleted(ctx, models.SessionCompleted{
			EventType:    models.EventSessionCompleted,
			SessionID:    session.ID,
			Role:         session.Role,
			OverallScore: record.ClampedScore(),
			Sentiment:    record.Sentiment,
			Answers:      len(record.Answers),
			Timestamp:    completedAt.UnixMilli(),
		})
	})
	if o.archive != nil {
		o.background(logger, func() {
			path, err := o.archive.Save(storage.Report{
				SessionID:   session.ID,
				Role:        session.Role,
				Tone:        session.Tone,
				CompletedAt: completedAt.UTC(),
				Feedback:    record,
			})
			if err != nil {
				logger.Error().Err(err).Msg("Failed to archive interview report")
				return
			}
			logger.Info().Str("path", path).Msg("Interview report archived")
		})
	}
}

// Retry re-runs the action that failed: starting the session, submitting the
// retained transcript, or fetching feedback.
func (o *Orchestrator) Retry() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}

	switch {
	case o.failed == ActionStart && o.phase == PhaseStartFailed:
		role, tone := o.role, o.tone
		o.mu.Unlock()
		return o.begin(role, tone, false)

	case o.failed == ActionSubmit && o.phase == PhaseAwaitingCapture:
		return o.beginSubmitLocked(o.gen, o.transcript)

	case o.failed == ActionFeedback && o.phase == PhaseFeedbackFailed:
		gen := o.gen
		sessionID := o.session.ID
		o.phase = PhaseFetchingFeedback
		o.lastErr = nil
		o.failed = ActionNone
		o.mu.Unlock()

		o.notify()
		o.dispatch(func() { o.feedbackCall(gen, sessionID) })
		return nil

	default:
		err := o.unavailableLocked()
		o.mu.Unlock()
		return err
	}
}

// DismissError clears the visible error without changing the phase.
func (o *Orchestrator) DismissError() {
	o.mu.Lock()
	changed := o.lastErr != nil
	o.lastErr = nil
	o.mu.Unlock()

	if changed {
		o.notify()
	}
}

// Close stops capture, waits for queued event publishes and report archives,
// cancels pending service calls and releases the speech engine.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	if o.stopAnnounce != nil {
		o.stopAnnounce()
		o.stopAnnounce = nil
	}
	// invalidate everything in flight
	o.gen = o.sessions.Next()
	o.mu.Unlock()

	o.announcer.Cancel()
	o.drain()
	o.cancel()
	return o.capture.Close()
}

// drain waits for background effects queued before Close, up to DrainTimeout.
func (o *Orchestrator) drain() {
	drained := make(chan struct{})
	go func() {
		o.effects.Wait()
		close(drained)
	}()

	timer := time.NewTimer(o.cfg.DrainTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		o.logger.Warn().Dur("timeout", o.cfg.DrainTimeout).Msg("Cancelling unfinished interview events")
	}
}

// onCapture handles capture events. It only acts while capturing, and only on
// events from the capture session started for this question.
func (o *Orchestrator) onCapture(ev speech.Event) {
	o.mu.Lock()
	if o.phase != PhaseCapturing || ev.Generation < o.captureFloor {
		o.mu.Unlock()
		return
	}
	logger := o.logger

	switch ev.Kind {
	case speech.EventTranscript:
		o.transcript = ev.Text
	case speech.EventEnded:
		o.transcript = strings.TrimSpace(ev.Text)
		o.phase = PhaseAwaitingCapture
		logger.Debug().Bool("usable", o.usable(o.transcript)).Msg("Speech engine ended capture")
	case speech.EventFailed:
		o.transcript = strings.TrimSpace(ev.Text)
		o.phase = PhaseAwaitingCapture
		o.lastErr = ev.Err
		logger.Warn().Err(ev.Err).Msg("Speech capture failed")
	}
	o.mu.Unlock()

	o.notify()
}

// announce reads text aloud after the configured delay unless the session has moved on.
func (o *Orchestrator) announce(gen uint64, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	stop := o.schedule(o.cfg.AnnounceDelay, func() {
		o.mu.Lock()
		live := !o.closed && o.gen == gen
		o.mu.Unlock()
		if !live {
			return
		}
		o.announcer.Speak(o.ctx, text)
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen != gen || o.closed {
		stop()
		return
	}
	if o.stopAnnounce != nil {
		o.stopAnnounce()
	}
	o.stopAnnounce = stop
}

func (o *Orchestrator) publish(logger zerolog.Logger, fn func(ctx context.Context) error) {
	if o.sink == nil {
		return
	}
	o.background(logger, func() {
		if err := fn(o.ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish interview event")
		}
	})
}

// background dispatches fn as work Close must wait for. Work offered after
// Close has started is dropped.
func (o *Orchestrator) background(logger zerolog.Logger, fn func()) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		logger.Warn().Msg("Interview closed; dropping background work")
		return
	}
	o.effects.Add(1)
	o.mu.Unlock()

	o.dispatch(func() {
		defer o.effects.Done()
		fn()
	})
}

// notify delivers the latest view to subscribers. Views are taken under
// notifyMu so subscribers observe transitions in order.
func (o *Orchestrator) notify() {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	o.mu.Lock()
	v := o.viewLocked()
	subs := make([]func(View), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

func (o *Orchestrator) viewLocked() View {
	v := View{
		State:                 o.phase.ViewState(),
		Phase:                 o.phase.String(),
		Role:                  o.role,
		Tone:                  o.tone,
		Question:              o.question,
		Transcript:            o.transcript,
		IsListening:           o.phase == PhaseCapturing && o.capture.IsListening(),
		HasRecognitionSupport: o.capture.HasSupport(),
		Busy:                  o.phase.InFlight(),
		CanRetry:              o.canRetryLocked(),
	}
	if o.session != nil {
		v.SessionID = o.session.ID
		v.QuestionNumber = o.session.DisplayStep()
		v.TotalQuestions = o.session.TotalQuestions
	}
	if o.lastErr != nil {
		v.Error = o.lastErr.Error()
	}
	if o.phase == PhaseComplete && o.feedback != nil {
		fb := *o.feedback
		v.Feedback = &fb
	}
	return v
}

func (o *Orchestrator) canRetryLocked() bool {
	switch o.failed {
	case ActionStart:
		return o.phase == PhaseStartFailed
	case ActionSubmit:
		return o.phase == PhaseAwaitingCapture
	case ActionFeedback:
		return o.phase == PhaseFeedbackFailed
	default:
		return false
	}
}

func (o *Orchestrator) currentLocked(gen uint64, phase Phase) bool {
	return !o.closed && o.gen == gen && o.phase == phase
}

func (o *Orchestrator) unavailableLocked() error {
	if o.phase.InFlight() {
		return ErrBusy
	}
	return ErrNotReady
}

func (o *Orchestrator) usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > o.cfg.MinTranscriptChars
}

// Package assistant implements the turn orchestrator: it coordinates one
// conversational turn from finalized transcript through model call and spoken
// reply, and owns the Idle → Capturing → Thinking → Speaking state machine.
//
// Ordering guarantees within a turn: the user message is persisted before the
// remote call is issued, and the assistant message is persisted before
// playback starts. Across turns, the state guard enforces at most one active
// turn; a new capture session is never armed while Thinking or Speaking.
package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/language"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/llm"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/store"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/logger"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/metrics"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/capture"
	"github.com/anwaleed303-sys/AI-Voice-Assistant/pkg/provider/playback"
)

// ErrBusy is returned when a turn is requested while another is active.
var ErrBusy = errors.New("a turn is already in progress")

// ErrEmptyTranscript is returned for blank transcripts. No state transition
// happens and no message is created.
var ErrEmptyTranscript = errors.New("empty transcript")

const defaultSettleDelay = 500 * time.Millisecond

// Notice is a user-visible notification surfaced by the orchestrator.
type Notice struct {
	// Persistent notices (permission problems) stay on screen; transient
	// ones (a failed model call) may be dismissed automatically.
	Persistent bool
	Message    string
}

// Notifier receives user-visible notices. Implementations must not block.
type Notifier func(Notice)

// Config tunes the orchestrator.
type Config struct {
	// Model is the model name submitted to the proxy client.
	Model string

	// AutoListen re-arms capture after playback completes.
	AutoListen bool

	// SettleDelay is the pause between playback completion and re-arming
	// capture. Defaults to 500ms.
	SettleDelay time.Duration

	// Capture configures each capture session.
	Capture capture.Config
}

// Orchestrator coordinates capture, store, model client, and playback for a
// single assistant session. All exported methods are safe for concurrent use.
type Orchestrator struct {
	store    *store.Store
	client   llm.Client
	capture  capture.Provider
	playback playback.Provider
	log      *logger.Logger
	cfg      Config
	notify   Notifier

	state stateVar

	mu         sync.Mutex
	session    capture.Session
	turnCancel context.CancelFunc
	autoListen bool
	permission bool
	voices     []playback.Voice
}

// Option configures an Orchestrator during construction.
type Option func(*Orchestrator)

// WithNotifier routes user-visible notices to fn. The default logs them.
func WithNotifier(fn Notifier) Option {
	return func(o *Orchestrator) { o.notify = fn }
}

// New constructs an Orchestrator. Voices are fetched lazily on the first
// spoken reply so construction never touches the playback backend.
func New(st *store.Store, client llm.Client, cap capture.Provider, pb playback.Provider, log *logger.Logger, cfg Config, opts ...Option) *Orchestrator {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	o := &Orchestrator{
		store:      st,
		client:     client,
		capture:    cap,
		playback:   pb,
		log:        log,
		cfg:        cfg,
		autoListen: cfg.AutoListen,
	}
	o.notify = func(n Notice) {
		log.Warn("assistant notice", zap.String("message", n.Message), zap.Bool("persistent", n.Persistent))
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current turn-taking state.
func (o *Orchestrator) State() State {
	return o.state.get()
}

// SetAutoListen toggles re-arming capture after playback.
func (o *Orchestrator) SetAutoListen(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.autoListen = enabled
}

// Run arms capture and processes transcripts until ctx is cancelled. Capture
// errors end the session but not the loop; permission errors additionally
// disable auto-listen.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.StartListening(ctx); err != nil {
		return err
	}
	for {
		o.mu.Lock()
		sess := o.session
		o.mu.Unlock()
		if sess == nil {
			// Capture ended and was not re-armed (manual mode, or permission
			// lost). Poll for a session armed through the API.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		select {
		case <-ctx.Done():
			o.StopListening()
			return ctx.Err()
		case t, ok := <-sess.Transcripts():
			if !ok {
				o.captureEnded(sess)
				continue
			}
			if err := o.Turn(ctx, t.Text); err != nil && !errors.Is(err, ErrEmptyTranscript) {
				o.log.Warn("turn failed", zap.Error(err))
			}
		case capErr, ok := <-sess.Errors():
			if !ok {
				o.captureEnded(sess)
				continue
			}
			o.handleCaptureError(capErr)
		}
	}
}

// StartListening arms a capture session. Only valid from Idle; any other
// state returns ErrBusy (the state-machine guard, not a lock).
func (o *Orchestrator) StartListening(ctx context.Context) error {
	if !o.state.compareAndSwap(StateIdle, StateCapturing) {
		return ErrBusy
	}

	// Stop any leftover session before arming a new one so at most one
	// capture session is ever live.
	o.mu.Lock()
	old := o.session
	o.session = nil
	o.mu.Unlock()
	if old != nil {
		old.Stop()
	}

	sess, err := o.capture.Start(ctx, o.cfg.Capture)
	if err != nil {
		o.state.set(StateIdle)
		return err
	}

	// Starting capture re-grants permission and restores the configured
	// auto-listen mode, mirroring a fresh microphone grant.
	o.mu.Lock()
	o.session = sess
	o.permission = true
	o.autoListen = o.cfg.AutoListen
	o.mu.Unlock()
	return nil
}

// StopListening stops the active capture session, if any, and returns to
// Idle when no turn is in flight.
func (o *Orchestrator) StopListening() {
	o.mu.Lock()
	sess := o.session
	o.session = nil
	o.mu.Unlock()

	if sess != nil {
		sess.Stop()
	}
	o.state.compareAndSwap(StateCapturing, StateIdle)
}

// Turn runs one conversational turn for a finalized transcript.
func (o *Orchestrator) Turn(ctx context.Context, transcript string) error {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return ErrEmptyTranscript
	}

	// Claim the turn from either Capturing (normal flow) or Idle (typed or
	// injected input). Thinking/Speaking reject: at most one active turn.
	if !o.state.compareAndSwap(StateCapturing, StateThinking) &&
		!o.state.compareAndSwap(StateIdle, StateThinking) {
		return ErrBusy
	}

	start := time.Now()
	turnCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.turnCancel = cancel
	o.mu.Unlock()
	defer func() {
		cancel()
		o.mu.Lock()
		o.turnCancel = nil
		o.mu.Unlock()
	}()

	lang := language.Detect(transcript)

	// Persist the user message before the remote call so the transcript
	// survives a model failure.
	userMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      model.RoleUser,
		Content:   transcript,
		Timestamp: time.Now(),
		Language:  lang,
	}
	conv, err := o.store.AppendMessage(userMsg)
	if err != nil {
		o.state.set(StateIdle)
		metrics.TurnsTotal.WithLabelValues("storage_error").Inc()
		return err
	}

	history := make([]model.ChatMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		history = append(history, model.ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := o.client.Complete(turnCtx, &llm.CompletionRequest{
		Model:    o.cfg.Model,
		Messages: llm.WithSystemPrompt(history),
	})
	if err != nil {
		o.state.set(StateIdle)
		metrics.TurnsTotal.WithLabelValues("upstream_error").Inc()
		o.notify(Notice{Message: upstreamNoticeText(err)})
		return err
	}
	metrics.RecordLLMRequest(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	// The assistant message carries the language of the triggering user
	// utterance, not a re-detection of the reply, so voice selection stays
	// consistent with the user's language.
	assistantMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      model.RoleAssistant,
		Content:   resp.Content,
		Timestamp: time.Now(),
		Language:  lang,
	}
	if _, err := o.store.AppendMessage(assistantMsg); err != nil {
		o.state.set(StateIdle)
		metrics.TurnsTotal.WithLabelValues("storage_error").Inc()
		return err
	}

	o.state.set(StateSpeaking)
	if err := o.speak(turnCtx, resp.Content, lang); err != nil && !errors.Is(err, context.Canceled) {
		o.log.Warn("playback failed", zap.Error(err))
	}

	metrics.TurnsTotal.WithLabelValues("success").Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())

	o.rearmOrIdle(ctx, turnCtx)
	return nil
}

// NewConversation aborts any in-flight capture, model call, and playback,
// then starts a fresh empty conversation. Accepted in any state. Auto-listen
// and microphone permission are revoked until capture is started again, so
// an interrupted turn cannot re-arm the microphone behind the user's back.
func (o *Orchestrator) NewConversation(ctx context.Context) (model.Conversation, error) {
	o.mu.Lock()
	cancel := o.turnCancel
	sess := o.session
	o.session = nil
	o.autoListen = false
	o.permission = false
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.playback.Cancel()
	if sess != nil {
		sess.Stop()
	}
	o.state.set(StateIdle)

	return o.store.NewConversation()
}

// speak renders the reply with the best-matching voice for the user's
// language.
func (o *Orchestrator) speak(ctx context.Context, text, lang string) error {
	voice, _ := playback.BestVoice(o.voiceList(ctx), language.BCP47(lang))
	started := time.Now()
	err := o.playback.Speak(ctx, text, voice)
	metrics.PlaybackDuration.Observe(time.Since(started).Seconds())
	return err
}

func (o *Orchestrator) voiceList(ctx context.Context) []playback.Voice {
	o.mu.Lock()
	cached := o.voices
	o.mu.Unlock()
	if cached != nil {
		return cached
	}
	voices, err := o.playback.Voices(ctx)
	if err != nil {
		o.log.Warn("failed to list voices", zap.Error(err))
		return nil
	}
	o.mu.Lock()
	o.voices = voices
	o.mu.Unlock()
	return voices
}

// rearmOrIdle finishes a turn: re-arm capture only when auto-listen is
// enabled, permission is still granted at this moment, and the turn was not
// aborted, after the settle delay; otherwise return to Idle.
func (o *Orchestrator) rearmOrIdle(ctx, turnCtx context.Context) {
	o.mu.Lock()
	rearm := o.autoListen && o.permission
	o.mu.Unlock()

	o.state.set(StateIdle)
	if !rearm || turnCtx.Err() != nil {
		return
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(o.cfg.SettleDelay):
	}
	if err := o.StartListening(ctx); err != nil && !errors.Is(err, ErrBusy) {
		o.log.Warn("failed to re-arm capture", zap.Error(err))
	}
}

// captureEnded clears a session whose channels closed.
func (o *Orchestrator) captureEnded(sess capture.Session) {
	o.mu.Lock()
	if o.session == sess {
		o.session = nil
	}
	o.mu.Unlock()
	o.state.compareAndSwap(StateCapturing, StateIdle)
}

func (o *Orchestrator) handleCaptureError(capErr capture.Error) {
	if capErr.IsPermission() {
		o.mu.Lock()
		o.permission = false
		o.autoListen = false
		o.mu.Unlock()
		o.notify(Notice{Persistent: true, Message: "Enable microphone access in Settings"})
	} else {
		o.log.Warn("capture error", zap.String("code", string(capErr.Code)), zap.String("message", capErr.Message))
	}
	o.StopListening()
}

func upstreamNoticeText(err error) string {
	if ue := llm.AsUpstream(err); ue != nil {
		switch ue.StatusCode {
		case 429:
			return "Rate limit exceeded. Please wait a moment and try again."
		case 401:
			return "Authentication failed. Please check API key."
		}
	}
	return "Failed to process your request"
}

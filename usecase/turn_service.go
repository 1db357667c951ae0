package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/entities"
	"github.com/gabonpeche/iasted-server/domain/repositories"
)

// ErrNoUserInput is returned when a turn carries neither a transcript override
// nor audio; the turn fails fast without any external call.
var ErrNoUserInput = errors.New("no user input provided")

// base64ChunkSize is how much decoded audio is read per iteration, so large
// payloads never require one single-shot allocation.
const base64ChunkSize = 32 * 1024

// recentHistoryLimit bounds the dialogue history handed to the generator.
const recentHistoryLimit = 10

// Stage names the observable state transitions of one turn.
type Stage string

const (
	StageReceived     Stage = "received"
	StageTranscribed  Stage = "transcribed"
	StageClassified   Stage = "classified"
	StageAnswered     Stage = "answered"
	StageShortCircuit Stage = "short_circuit"
	StageLogged       Stage = "logged"
)

// TurnRequest is one user input to process.
type TurnRequest struct {
	SessionID          string
	UserID             string
	AudioBase64        string
	TranscriptOverride string
	LangHint           string
	VoiceID            string
	GenerateAudio      bool
	// Progress, when non-nil, is invoked at each state transition. Used by
	// the live-voice transport for listening/thinking/speaking indicators.
	Progress func(Stage)
}

// Latencies is the per-stage breakdown of one turn, in milliseconds.
type Latencies struct {
	STT    int64 `json:"stt"`
	Router int64 `json:"router"`
	LLM    int64 `json:"llm,omitempty"`
	TTS    int64 `json:"tts,omitempty"`
	Total  int64 `json:"total"`
}

// TurnOutcome is the tagged union of turn exits. Every turn resolves to
// exactly one of Answered, ShortCircuited or Failed, so each exit path is
// independently testable.
type TurnOutcome interface {
	isTurnOutcome()
}

// Answered is a completed query/small-talk turn.
type Answered struct {
	Intent      entities.Intent
	UserText    string
	Answer      string
	AudioBase64 *string
	Latencies   Latencies
}

// ShortCircuited is a turn terminated at classification: the raw intent is
// returned and no spoken answer is generated.
type ShortCircuited struct {
	Intent    entities.Intent
	UserText  string
	Latencies Latencies
}

// Failed is the terminal error state. An error analytics event has already
// been best-effort recorded by the time the caller sees it.
type Failed struct {
	Err error
}

func (Answered) isTurnOutcome()       {}
func (ShortCircuited) isTurnOutcome() {}
func (Failed) isTurnOutcome()         {}

// TurnService orchestrates one conversational turn as a linear sequence of
// awaited external calls. It holds no per-turn state; concurrency is whatever
// the HTTP runtime provides.
type TurnService struct {
	stt        repositories.SpeechToText
	tts        repositories.TextToSpeech
	llm        repositories.ChatCompleter
	sessions   repositories.SessionRepository
	analytics  repositories.AnalyticsRepository
	router     *IntentRouter
	responder  *ResponseGenerator
	summarizer *MemorySummarizer
	cache      *SnapshotCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewTurnService wires the pipeline. now may be nil (time.Now).
func NewTurnService(
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	llm repositories.ChatCompleter,
	sessions repositories.SessionRepository,
	analytics repositories.AnalyticsRepository,
	cache *SnapshotCache,
	logger *zap.Logger,
	now func() time.Time,
) *TurnService {
	if now == nil {
		now = time.Now
	}
	return &TurnService{
		stt:        stt,
		tts:        tts,
		llm:        llm,
		sessions:   sessions,
		analytics:  analytics,
		router:     NewIntentRouter(llm, logger),
		responder:  NewResponseGenerator(llm, logger),
		summarizer: NewMemorySummarizer(llm, sessions, logger),
		cache:      cache,
		logger:     logger,
		now:        now,
	}
}

// ProcessTurn runs one turn through the state machine:
// RECEIVED → TRANSCRIBED → CLASSIFIED → {SHORT_CIRCUIT | ANSWERED} → LOGGED.
// Any failure transitions to the terminal error state: an error analytics
// event is best-effort recorded and Failed is returned.
func (s *TurnService) ProcessTurn(ctx context.Context, req TurnRequest) TurnOutcome {
	start := s.now()
	var lat Latencies
	notify(req, StageReceived)

	if req.SessionID == "" {
		return s.fail(ctx, req, errors.New("sessionId is required"))
	}

	userText, err := s.resolveUserText(ctx, req, &lat)
	if err != nil {
		return s.fail(ctx, req, err)
	}
	notify(req, StageTranscribed)

	// This edge always succeeds: the router defaults to query on any failure.
	routerStart := s.now()
	intent := s.router.Classify(ctx, userText)
	lat.Router = s.now().Sub(routerStart).Milliseconds()
	notify(req, StageClassified)

	if intent.ShortCircuits() {
		outcome, err := s.shortCircuit(ctx, req, intent, userText, &lat, start)
		if err != nil {
			return s.fail(ctx, req, err)
		}
		notify(req, StageShortCircuit)
		notify(req, StageLogged)
		return outcome
	}

	outcome, err := s.answer(ctx, req, intent, userText, &lat, start)
	if err != nil {
		return s.fail(ctx, req, err)
	}
	notify(req, StageAnswered)
	notify(req, StageLogged)
	return outcome
}

// resolveUserText applies transcript precedence: a non-empty override wins
// and the STT service is not called at all.
func (s *TurnService) resolveUserText(ctx context.Context, req TurnRequest, lat *Latencies) (string, error) {
	if override := strings.TrimSpace(req.TranscriptOverride); override != "" {
		return override, nil
	}
	if req.AudioBase64 == "" {
		return "", ErrNoUserInput
	}

	audio, err := decodeAudioBase64(req.AudioBase64)
	if err != nil {
		return "", err
	}

	sttStart := s.now()
	text, err := s.stt.Transcribe(ctx, audio, req.LangHint)
	lat.STT = s.now().Sub(sttStart).Milliseconds()
	if err != nil {
		return "", err
	}
	return text, nil
}

// shortCircuit persists the user message, the router message and the matching
// analytics event, then returns the raw intent. Neither the generator nor the
// synthesizer is invoked.
func (s *TurnService) shortCircuit(
	ctx context.Context,
	req TurnRequest,
	intent entities.Intent,
	userText string,
	lat *Latencies,
	start time.Time,
) (TurnOutcome, error) {
	if err := s.appendUserMessage(ctx, req, userText); err != nil {
		return nil, err
	}

	contentJSON := map[string]any{"category": string(intent.Category)}
	if intent.Command != "" {
		contentJSON["command"] = intent.Command
	}
	if intent.Args != nil {
		contentJSON["args"] = intent.Args
	}

	if err := s.sessions.AppendMessage(ctx, &entities.Message{
		SessionID:   req.SessionID,
		Role:        entities.MessageRoleRouter,
		ContentJSON: contentJSON,
	}); err != nil {
		return nil, err
	}

	lat.Total = s.now().Sub(start).Milliseconds()
	s.recordEvent(ctx, req, intent.EventType(), map[string]any{
		"command":   intent.Command,
		"args":      intent.Args,
		"latencies": *lat,
	})

	return ShortCircuited{Intent: intent, UserText: userText, Latencies: *lat}, nil
}

// answer runs the full answered path: knowledge fetch, memory fetch,
// user-message persistence, optional summarization, generation, optional
// synthesis, persistence, analytics. Knowledge fetch and summarization are
// independent but run sequentially; a parallel fan-out is a possible future
// optimization, not implemented.
func (s *TurnService) answer(
	ctx context.Context,
	req TurnRequest,
	intent entities.Intent,
	userText string,
	lat *Latencies,
	start time.Time,
) (TurnOutcome, error) {
	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.sessions.MemorySummary(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// History is read before the current user message is persisted, so the
	// prompt carries prior turns only; the current utterance is appended to
	// the prompt exactly once, as the final user message.
	history, err := s.sessions.RecentMessages(ctx, req.SessionID, recentHistoryLimit)
	if err != nil {
		return nil, err
	}

	if err := s.appendUserMessage(ctx, req, userText); err != nil {
		return nil, err
	}

	if ShouldSummarize(len(history), summary) {
		// Summarization failure keeps the old summary; it never aborts the
		// turn.
		if fresh, err := s.summarizer.Summarize(ctx, req.SessionID); err != nil {
			s.logger.Warn("Memory summarization failed", zap.Error(err))
		} else if fresh != "" {
			summary = fresh
		}
	}

	llmStart := s.now()
	answer, err := s.responder.Generate(ctx, summary, history, userText, snapshot)
	lat.LLM = s.now().Sub(llmStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	var audioContent *string
	if req.GenerateAudio {
		ttsStart := s.now()
		audio, err := s.synthesize(ctx, answer, req.VoiceID)
		lat.TTS = s.now().Sub(ttsStart).Milliseconds()
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(audio)
		audioContent = &encoded
	}

	// The assistant message is always persisted after the user message.
	if err := s.sessions.AppendMessage(ctx, &entities.Message{
		SessionID: req.SessionID,
		Role:      entities.MessageRoleAssistant,
		Content:   answer,
		LatencyMs: int(lat.LLM),
	}); err != nil {
		return nil, err
	}

	lat.Total = s.now().Sub(start).Milliseconds()
	s.recordEvent(ctx, req, entities.EventTurnComplete, map[string]any{
		"category":  string(intent.Category),
		"latencies": *lat,
	})

	return Answered{
		Intent:      intent,
		UserText:    userText,
		Answer:      answer,
		AudioBase64: audioContent,
		Latencies:   *lat,
	}, nil
}

func (s *TurnService) appendUserMessage(ctx context.Context, req TurnRequest, userText string) error {
	return s.sessions.AppendMessage(ctx, &entities.Message{
		SessionID: req.SessionID,
		Role:      entities.MessageRoleUser,
		Content:   userText,
		Lang:      req.LangHint,
	})
}

func (s *TurnService) synthesize(ctx context.Context, text, pinnedVoice string) ([]byte, error) {
	voiceID, err := s.tts.ResolveVoice(ctx, pinnedVoice)
	if err != nil {
		return nil, err
	}
	return s.tts.Synthesize(ctx, text, voiceID)
}

// fail is the terminal error transition: the error analytics event is
// best-effort, its own failure swallowed so it never masks the turn error.
func (s *TurnService) fail(ctx context.Context, req TurnRequest, err error) TurnOutcome {
	s.logger.Error("Turn failed",
		zap.String("sessionID", req.SessionID),
		zap.Error(err))
	s.recordEvent(ctx, req, entities.EventError, map[string]any{
		"error": err.Error(),
	})
	return Failed{Err: err}
}

// recordEvent is always best-effort: analytics must never crash a turn.
func (s *TurnService) recordEvent(ctx context.Context, req TurnRequest, eventType entities.AnalyticsEventType, data map[string]any) {
	event := &entities.AnalyticsEvent{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		EventType: eventType,
		Data:      data,
	}
	if err := s.analytics.Record(ctx, event); err != nil {
		s.logger.Error("Failed to record analytics event",
			zap.String("eventType", string(eventType)),
			zap.Error(err))
	}
}

func notify(req TurnRequest, stage Stage) {
	if req.Progress != nil {
		req.Progress(stage)
	}
}

// decodeAudioBase64 decodes the payload through a streaming decoder in fixed
// size reads, concatenated into one buffer.
func decodeAudioBase64(payload string) ([]byte, error) {
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))
	var buf bytes.Buffer
	chunk := make([]byte, base64ChunkSize)
	for {
		n, err := decoder.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid audio payload: %w", err)
		}
	}
	return buf.Bytes(), nil
}

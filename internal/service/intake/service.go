// Package intake drives one conversation turn end to end: extract facts
// from the inbound message, fold them into the profile, generate the next
// consultant utterance, detect wrap-up, and persist the session.
package intake

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/studyloop/intake/internal/model/session"
	"github.com/studyloop/intake/internal/profile"
)

// Fixed utterances. The greeting opens every conversation; the fallback is
// what the caller sees whenever a turn degrades.
const (
	Greeting      = "Hey, what's up? Tell me a bit about yourself to get started."
	FallbackReply = "Sorry, something went wrong. Can you say that again?"
)

// Context windows for the two model calls: extraction only needs the
// immediate exchange, generation sees a longer tail.
const (
	extractionWindow = 4
	generationWindow = 10
)

// Store is the durable session store the orchestrator round-trips state
// through. Load creates-and-persists an empty session for unknown ids.
type Store interface {
	Load(ctx context.Context, sessionID string) (session.Session, error)
	Save(ctx context.Context, sessionID string, prof *profile.Map, transcript []session.Turn, complete bool) error
	List(ctx context.Context) ([]session.Summary, error)
	Delete(ctx context.Context, sessionID string) error
}

// Dialogue is the injected language-model capability. Both methods are
// best-effort: the orchestrator degrades on any error instead of failing
// the turn.
type Dialogue interface {
	ExtractFacts(ctx context.Context, window []session.Turn, message string, prof *profile.Map) (map[string]string, error)
	GenerateReply(ctx context.Context, window []session.Turn, prof *profile.Map, message string) (string, error)
}

// TurnRequest is one inbound user turn.
type TurnRequest struct {
	SessionID    string
	Message      string
	FirstMessage bool
}

// TurnResult is what every turn returns to the transport, well-formed even
// when the pipeline degraded internally.
type TurnResult struct {
	Question string
	Complete bool
	Progress int
}

// Service is the turn orchestrator.
type Service struct {
	store    Store
	dialogue Dialogue
	logger   *zap.Logger
	locks    sessionLocks
}

// NewService wires the orchestrator to its store and dialogue capability.
func NewService(store Store, dialogue Dialogue, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		dialogue: dialogue,
		logger:   logger,
	}
}

// HandleTurn runs the per-turn pipeline. The whole load-merge-save span
// holds the session's lock, so turns for one session serialize while
// different sessions run concurrently.
//
// Only storage faults surface as errors; every other failure inside the
// pipeline collapses into the fallback reply.
func (s *Service) HandleTurn(ctx context.Context, req TurnRequest) (result TurnResult, err error) {
	unlock := s.locks.acquire(req.SessionID)
	defer unlock()

	sess, err := s.store.Load(ctx, req.SessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load session: %w", err)
	}

	if req.FirstMessage {
		sess.Transcript = append(sess.Transcript, session.Turn{Role: session.RoleAssistant, Content: Greeting})
		if err := s.store.Save(ctx, req.SessionID, sess.Profile, sess.Transcript, sess.Complete); err != nil {
			return TurnResult{}, fmt.Errorf("save session: %w", err)
		}
		s.logger.Info("greeting sent", zap.String("session_id", req.SessionID))
		return TurnResult{Question: Greeting, Complete: false, Progress: 0}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("turn pipeline panic",
				zap.String("session_id", req.SessionID),
				zap.Any("panic", r))
			result = TurnResult{Question: FallbackReply, Complete: false, Progress: 0}
			err = nil
		}
	}()

	message := strings.TrimSpace(req.Message)
	if message != "" {
		sess.Transcript = append(sess.Transcript, session.Turn{Role: session.RoleUser, Content: req.Message})
		sess.Profile = profile.Merge(sess.Profile, s.extract(ctx, sess, req.Message))
	}

	progress := profile.Progress(sess.Profile.Len())

	reply := s.generate(ctx, sess, req.Message)
	if profile.SignalsCompletion(reply) && !sess.Complete {
		sess.Complete = true
		s.logger.Info("session marked complete",
			zap.String("session_id", req.SessionID),
			zap.Int("facts", sess.Profile.Len()))
	}
	sess.Transcript = append(sess.Transcript, session.Turn{Role: session.RoleAssistant, Content: reply})

	if err := s.store.Save(ctx, req.SessionID, sess.Profile, sess.Transcript, sess.Complete); err != nil {
		return TurnResult{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("turn completed",
		zap.String("session_id", req.SessionID),
		zap.Int("progress", progress),
		zap.Bool("complete", sess.Complete))

	return TurnResult{Question: reply, Complete: sess.Complete, Progress: progress}, nil
}

// extract calls the extraction capability and degrades to no new facts on
// any fault.
func (s *Service) extract(ctx context.Context, sess session.Session, message string) map[string]string {
	window := session.Window(sess.Transcript, extractionWindow)
	facts, err := s.dialogue.ExtractFacts(ctx, window, message, sess.Profile)
	if err != nil {
		s.logger.Warn("fact extraction degraded",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return nil
	}
	return facts
}

// generate calls the generation capability and degrades to the fallback
// apology on any fault.
func (s *Service) generate(ctx context.Context, sess session.Session, message string) string {
	window := session.Window(sess.Transcript, generationWindow)
	reply, err := s.dialogue.GenerateReply(ctx, window, sess.Profile, message)
	if err != nil {
		s.logger.Error("reply generation degraded",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return FallbackReply
	}
	return strings.TrimSpace(reply)
}

// GetSession returns a session's full state, creating it when unknown.
func (s *Service) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()
	return s.store.Load(ctx, sessionID)
}

// ListSessions returns summaries of all sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]session.Summary, error) {
	return s.store.List(ctx)
}

// DeleteSession removes a session; unknown ids are a no-op.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.acquire(sessionID)
	defer unlock()
	return s.store.Delete(ctx, sessionID)
}

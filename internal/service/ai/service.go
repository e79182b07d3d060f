// Package ai implements the two external language-model call sites of the
// intake engine: fact extraction from the latest user message and the next
// consultant utterance. Both are best-effort; callers treat failures as
// degradable.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/studyloop/intake/internal/config"
	"github.com/studyloop/intake/internal/model/session"
	"github.com/studyloop/intake/internal/profile"
)

// Sampling budgets for the two call sites. Extraction runs cold and roomy
// so the JSON comes back intact; generation runs warm and short so replies
// stay conversational.
const (
	extractTemperature = 0.2
	extractMaxTokens   = 512

	generateTemperature = 0.7
	generateMaxTokens   = 120
)

const maxAttempts = 3

// Service wraps the extraction and generation chat models.
type Service struct {
	extractor model.ChatModel
	generator model.ChatModel
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService builds both chat models from the shared provider config.
func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	extractor, err := cfg.NewChatModel(ctx, extractTemperature, extractMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("create extraction model: %w", err)
	}

	generator, err := cfg.NewChatModel(ctx, generateTemperature, generateMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("create generation model: %w", err)
	}

	return &Service{
		extractor: extractor,
		generator: generator,
		timeout:   cfg.Timeout,
		logger:    logger,
	}, nil
}

// ExtractFacts asks the model for new profile facts in the latest message,
// given a short context window and the facts already known. The response is
// parsed leniently; anything unusable comes back as an error for the caller
// to degrade on.
func (s *Service) ExtractFacts(ctx context.Context, window []session.Turn, message string, prof *profile.Map) (map[string]string, error) {
	raw, err := s.invoke(ctx, s.extractor, extractionPrompt(window, message, prof))
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	facts, err := decodeFacts(raw)
	if err != nil {
		s.logger.Warn("extraction response is not valid JSON",
			zap.String("raw", raw),
			zap.Error(err))
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	s.logger.Info("extracted facts", zap.Int("count", len(facts)))
	return facts, nil
}

// GenerateReply asks the model for the next consultant utterance given the
// recent transcript and the full profile so far.
func (s *Service) GenerateReply(ctx context.Context, window []session.Turn, prof *profile.Map, message string) (string, error) {
	reply, err := s.invoke(ctx, s.generator, generationPrompt(window, prof, message))
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}
	return reply, nil
}

// invoke runs one prompt against a model under the configured timeout, with
// bounded exponential retry on transport faults.
func (s *Service) invoke(ctx context.Context, m model.ChatModel, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond

	var out *schema.Message
	err := backoff.Retry(func() error {
		resp, err := m.Generate(callCtx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			return err
		}
		out = resp
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxAttempts-1), callCtx))
	if err != nil {
		return "", err
	}

	return out.Content, nil
}

package assistant

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/services/llm"
)

var ErrUnavailable = errors.New("assistant is temporarily unavailable")

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.4
)

// Service answers student questions about PC building using a language model.
type Service struct {
	provider llmsvc.Provider
	logger   core.Logger
}

func NewService(provider llmsvc.Provider, logger core.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// ComponentAnswer is the reply to a free-form component question.
type ComponentAnswer struct {
	Answer string `json:"answer"`
}

// ConfigAnalysis is the result of analyzing a PC configuration.
type ConfigAnalysis struct {
	IsPcRelated bool   `json:"isPcRelated"`
	Analysis    string `json:"analysis"`
}

// QuizExplanation explains why the correct answer of a quiz question is correct.
type QuizExplanation struct {
	Explanation string `json:"explanation"`
}

// ComponentQuery answers a student question about PC components, compatibility
// or troubleshooting.
func (s *Service) ComponentQuery(ctx context.Context, query string) (*ComponentAnswer, error) {
	resp, err := s.provider.Generate(ctx, llmsvc.Request{
		System:      componentQuerySystem,
		Messages:    []llmsvc.Message{{Role: llmsvc.RoleUser, Content: query}},
		Schema:      componentQuerySchema,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, s.wrap(err, "component query")
	}

	var out ComponentAnswer
	if err = json.Unmarshal(resp.Content, &out); err != nil {
		return nil, s.wrap(err, "component query: decode response")
	}
	return &out, nil
}

// AnalyzeConfig analyzes a free-text PC configuration for compatibility issues,
// bottlenecks and improvements. Inputs unrelated to PC hardware are flagged
// rather than analyzed.
func (s *Service) AnalyzeConfig(ctx context.Context, config string) (*ConfigAnalysis, error) {
	resp, err := s.provider.Generate(ctx, llmsvc.Request{
		System:      configAnalyzerSystem,
		Messages:    []llmsvc.Message{{Role: llmsvc.RoleUser, Content: configAnalyzerUser(config)}},
		Schema:      configAnalysisSchema,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, s.wrap(err, "config analysis")
	}

	var out ConfigAnalysis
	if err = json.Unmarshal(resp.Content, &out); err != nil {
		return nil, s.wrap(err, "config analysis: decode response")
	}
	return &out, nil
}

// ExplainQuizAnswer generates an explanation of why the correct option of a
// quiz question is correct.
func (s *Service) ExplainQuizAnswer(ctx context.Context, questionText string, options []QuizOption, correctOptionID string) (*QuizExplanation, error) {
	resp, err := s.provider.Generate(ctx, llmsvc.Request{
		System:      quizExplanationSystem,
		Messages:    []llmsvc.Message{{Role: llmsvc.RoleUser, Content: quizExplanationUser(questionText, options, correctOptionID)}},
		Schema:      quizExplanationSchema,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return nil, s.wrap(err, "quiz explanation")
	}

	var out QuizExplanation
	if err = json.Unmarshal(resp.Content, &out); err != nil {
		return nil, s.wrap(err, "quiz explanation: decode response")
	}
	return &out, nil
}

// QuizOption is a candidate answer passed to ExplainQuizAnswer.
type QuizOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (s *Service) wrap(err error, op string) error {
	s.logger.Error("assistant: "+op+" failed", err)
	return errors.Wrap(ErrUnavailable, op)
}

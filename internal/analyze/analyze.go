// Package analyze talks to the OpenAI API: Whisper for transcription and
// chat completions for the semantic analysis and follow-up Q&A.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/icmoura/jarvis/internal/config"
)

var ErrEmptyTranscript = errors.New("transcription produced no text")

// Analyzer is what the HTTP layer depends on; tests substitute a fake.
type Analyzer interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Analyze(ctx context.Context, transcript string) (string, error)
	Answer(ctx context.Context, transcript, analysis, question string) (string, error)
}

// openAIAPI is the slice of *openai.Client the service uses.
type openAIAPI interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Service struct {
	api openAIAPI
	cfg config.OpenAIConfig
}

func NewService(cfg config.OpenAIConfig) *Service {
	return &Service{api: openai.NewClient(cfg.APIKey), cfg: cfg}
}

// Transcribe runs Whisper over the audio file and returns the full text.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := s.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.TranscriptionModel,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// Analyze asks the chat model for the semantic analysis of a transcript:
// narrative, plot, key dialogue, themes and participants.
func (s *Service) Analyze(ctx context.Context, transcript string) (string, error) {
	return s.chat(ctx,
		analysisSystemPrompt,
		fmt.Sprintf(analysisPrompt, transcript),
		*s.cfg.AnalysisTemp,
		s.cfg.AnalysisMaxTokens,
	)
}

// Answer responds to a follow-up question using the transcript and the
// analysis already produced for it.
func (s *Service) Answer(ctx context.Context, transcript, analysis, question string) (string, error) {
	return s.chat(ctx,
		answerSystemPrompt,
		fmt.Sprintf(answerPrompt, transcript, analysis, question),
		*s.cfg.AnswerTemp,
		s.cfg.AnswerMaxTokens,
	)
}

func (s *Service) chat(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.ChatModel,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	tutorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "biotutor",
		Subsystem: "ai",
		Name:      "tutor_duration_seconds",
		Help:      "Duration of AI tutor requests",
	}, []string{"model"})

	tutorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "biotutor",
		Subsystem: "ai",
		Name:      "tutor_failures_total",
		Help:      "Number of AI tutor failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI tutor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAITutor implements Tutor against the OpenAI chat completion API.
type OpenAITutor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAITutor builds a new tutor using the provided configuration.
func NewOpenAITutor(cfg OpenAIConfig) (*OpenAITutor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	tracer := otel.Tracer("github.com/KIIZA-TREVOUR/mybiotutor/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAITutor{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Reply sends the tutoring request to OpenAI and returns the answer text.
func (t *OpenAITutor) Reply(parent context.Context, input TutorInput) (TutorReply, error) {
	ctx, span := t.tracer.Start(parent, "openai.tutor.reply", trace.WithAttributes(
		attribute.String("model", t.cfg.Model),
		attribute.Int("sources", len(input.Sources)),
	))
	defer span.End()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: tutorSystemPrompt(input),
		},
	}
	for _, turn := range input.History {
		role := openai.ChatMessageRoleUser
		if strings.EqualFold(turn.Role, "assistant") {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input.Question,
	})

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       t.cfg.Model,
		MaxTokens:   t.cfg.MaxTokens,
		Temperature: t.cfg.Temperature,
		Messages:    messages,
	})
	tutorDuration.WithLabelValues(t.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		tutorFailures.WithLabelValues(t.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TutorReply{}, fmt.Errorf("openai tutor reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		tutorFailures.WithLabelValues(t.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return TutorReply{}, err
	}

	return TutorReply{Content: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

func tutorSystemPrompt(input TutorInput) string {
	builder := strings.Builder{}
	builder.WriteString("You are BioTutor, a patient biology tutor for Ugandan O- and A-level students.")
	if input.ClassLevel != "" {
		builder.WriteString(" The student is in class ")
		builder.WriteString(input.ClassLevel)
		builder.WriteString(".")
	}
	builder.WriteString(" Answer using the study notes below when they are relevant, and say so when they are not. Keep answers concise and exam-focused.")

	if len(input.Sources) > 0 {
		builder.WriteString("\n\nStudy notes:")
		for i, src := range input.Sources {
			builder.WriteString(fmt.Sprintf("\n\n[%d] %s (%s)\n%s", i+1, src.Title, src.Topic, src.Excerpt))
		}
	}

	return builder.String()
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	CallSiteInsights          = "industry_insights"
	CallSiteQuiz              = "quiz"
	CallSiteImprovementTip    = "improvement_tip"
	CallSiteResumeImprovement = "resume_improvement"
)

type GenerationOutcome string

const (
	OutcomeOK       GenerationOutcome = "ok"
	OutcomeFallback GenerationOutcome = "fallback"
	OutcomeError    GenerationOutcome = "error"
)

var ErrEmptyResponse = errors.New("empty response from model")

// GenerationResult always carries a usable Value. Outcome tells whether it
// came from the model or is the supplied default; Err holds the reason for a
// fallback.
type GenerationResult[T any] struct {
	Value   T
	Outcome GenerationOutcome
	Err     error
}

func (r GenerationResult[T]) IsFallback() bool {
	return r.Outcome == OutcomeFallback
}

// StructuredGenerationClient sits between the remote model and storage:
// untrusted text is sanitized, parsed and validated here, and nothing
// partially parsed gets out.
type StructuredGenerationClient struct {
	generator TextGenerator
	metrics   *Metrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewStructuredGenerationClient(generator TextGenerator, metrics *Metrics, logger *zap.Logger) *StructuredGenerationClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredGenerationClient{
		generator: generator,
		metrics:   metrics,
		logger:    logger.Named("generation"),
		now:       time.Now,
	}
}

// GenerateStructured sends prompt to the model and decodes the reply into T.
// Transport errors, malformed JSON, a failed validate and even a panicking
// validate all collapse into the fallback value. It never returns an error.
func GenerateStructured[T any](
	ctx context.Context,
	c *StructuredGenerationClient,
	callSite string,
	prompt string,
	fallback T,
	validate func(T) error,
) (result GenerationResult[T]) {
	start := c.now()

	defer func() {
		if r := recover(); r != nil {
			result = fallbackResult(c, callSite, fallback, fmt.Errorf("panic during generation: %v", r))
		}
		c.metrics.observeGeneration(callSite, result.Outcome, c.now().Sub(start))
	}()

	raw, err := c.generator.GenerateText(ctx, prompt)
	if err != nil {
		return fallbackResult(c, callSite, fallback, fmt.Errorf("remote generation failed: %w", err))
	}

	var value T
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &value); err != nil {
		return fallbackResult(c, callSite, fallback, fmt.Errorf("failed to parse model output: %w", err))
	}

	if validate != nil {
		if err := validate(value); err != nil {
			return fallbackResult(c, callSite, fallback, fmt.Errorf("model output failed validation: %w", err))
		}
	}

	return GenerationResult[T]{Value: value, Outcome: OutcomeOK}
}

func fallbackResult[T any](c *StructuredGenerationClient, callSite string, fallback T, err error) GenerationResult[T] {
	c.logger.Error("structured generation failed, using default",
		zap.String("call_site", callSite),
		zap.Error(err),
		zap.Stack("stack"),
	)
	return GenerationResult[T]{Value: fallback, Outcome: OutcomeFallback, Err: err}
}

// GenerateText is the plain-text mode: the trimmed reply is the result.
// There is no default value, so failures are returned to the caller.
func (c *StructuredGenerationClient) GenerateText(ctx context.Context, callSite, prompt string) (string, error) {
	start := c.now()

	raw, err := c.generator.GenerateText(ctx, prompt)
	if err == nil {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			err = ErrEmptyResponse
		}
	}

	if err != nil {
		c.metrics.observeGeneration(callSite, OutcomeError, c.now().Sub(start))
		c.logger.Error("text generation failed",
			zap.String("call_site", callSite),
			zap.Error(err),
			zap.Stack("stack"),
		)
		return "", err
	}

	c.metrics.observeGeneration(callSite, OutcomeOK, c.now().Sub(start))
	return raw, nil
}

var (
	fenceLine    = regexp.MustCompile("(?m)^[ \\t]*```[\\w+.-]*[ \\t]*\\r?$")
	leadingFence = regexp.MustCompile("^```[a-zA-Z][\\w+.-]*|^```")
)

// StripCodeFences removes markdown code fences (with or without a language
// tag) and surrounding whitespace from model output.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceLine.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// Fences glued to the payload, e.g. ```json{"a":1}```
	text = leadingFence.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

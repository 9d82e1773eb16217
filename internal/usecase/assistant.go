package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"cv-builder/internal/apperr"
	"cv-builder/internal/metrics"

	"go.uber.org/zap"
)

const (
	MinCVLength             = 100
	MinJobDescriptionLength = 50
)

// Assistant fronts the two model-backed writing helpers. Inputs are checked
// before any call is made; replies are not cached and calls are not retried.
type Assistant struct {
	draft   Formatter
	ats     Formatter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAssistant(draft, ats Formatter, logger *zap.Logger, m *metrics.Metrics) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{draft: draft, ats: ats, logger: logger, metrics: m}
}

// GenerateDraft returns a professional summary drafted from a free-text
// prompt.
func (a *Assistant) GenerateDraft(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.InvalidInput("prompt must not be empty")
	}
	return a.call(ctx, "draft", a.draft, map[string]interface{}{"prompt": prompt}, "cvDraft")
}

// OptimizeForApplicantTracking rewrites cv text so it matches the keywords
// of a job description.
func (a *Assistant) OptimizeForApplicantTracking(ctx context.Context, cvText, jobDescription string) (string, error) {
	if utf8.RuneCountInString(cvText) < MinCVLength {
		return "", apperr.InvalidInput("CV content must be at least %d characters", MinCVLength)
	}
	if utf8.RuneCountInString(jobDescription) < MinJobDescriptionLength {
		return "", apperr.InvalidInput("job description must be at least %d characters", MinJobDescriptionLength)
	}
	payload := map[string]interface{}{"cvContent": cvText, "jobDescription": jobDescription}
	return a.call(ctx, "ats", a.ats, payload, "optimizedCvContent")
}

func (a *Assistant) call(ctx context.Context, op string, f Formatter, payload map[string]interface{}, key string) (string, error) {
	out, err := f.Format(ctx, payload)
	if err == nil {
		if s, ok := out[key].(string); ok {
			a.metrics.AICall(op, nil)
			return s, nil
		}
		err = errMissingKey(key)
	}
	var ext *apperr.ExternalServiceError
	if !errors.As(err, &ext) {
		err = apperr.External("ai", err)
	}
	a.logger.Warn("ai call failed", zap.String("operation", op), zap.Error(err))
	a.metrics.AICall(op, err)
	return "", err
}

type errMissingKey string

func (k errMissingKey) Error() string { return "reply has no string field " + string(k) }

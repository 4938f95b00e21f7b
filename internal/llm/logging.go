package llm

import (
	"context"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels requests made with ctx, e.g. "tutor" or "lecture_notes".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

type loggingProvider struct {
	inner Provider
}

// WithLogging logs every request and records it in the AI request metrics.
func WithLogging(p Provider) Provider {
	return &loggingProvider{inner: p}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("model", l.inner.ModelID()),
		zap.String("purpose", purpose),
		zap.Duration("latency", time.Since(start)),
	}
	if resp != nil {
		fields = append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}

	if err != nil {
		monitoring.RecordAIRequest(purpose, "error")
		logger.Log.Warn("LLM request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	monitoring.RecordAIRequest(purpose, "success")
	logger.Log.Debug("LLM request", fields...)
	return resp, nil
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}

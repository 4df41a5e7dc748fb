package service

import (
	"context"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/metrics"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/moderation"
	"go.uber.org/zap"
)

type ModerationResult struct {
	Pass           bool
	Skipped        bool
	ForbiddenWords []string
}

// ModerationService wraps the external classifier with the fail-open policy:
// a classifier outage must never block checkout. Skipped results are
// distinguishable in logs and metrics but behave like a pass.
type ModerationService interface {
	Check(ctx context.Context, text string) ModerationResult
}

type moderationService struct {
	classifier moderation.Classifier
	enabled    bool
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewModerationService(classifier moderation.Classifier, enabled bool, logger *zap.Logger,
	m *metrics.Metrics) ModerationService {
	return &moderationService{classifier: classifier, enabled: enabled, logger: logger, metrics: m}
}

func (m *moderationService) Check(ctx context.Context, text string) ModerationResult {
	if !m.enabled || text == "" {
		return ModerationResult{Pass: true}
	}

	result, err := m.classifier.Classify(ctx, text)
	if err != nil {
		m.logger.Warn("Moderation check skipped, classifier unavailable",
			zap.Error(err))
		m.metrics.RecordModerationResult("skipped")
		return ModerationResult{Pass: true, Skipped: true}
	}

	if result.Forbidden() {
		m.metrics.RecordModerationResult("rejected")
		return ModerationResult{Pass: false, ForbiddenWords: result.ForbiddenWords}
	}

	m.metrics.RecordModerationResult("passed")
	return ModerationResult{Pass: true}
}

package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
)

// Assessor runs one assessment through the classifier.
type Assessor interface {
	Assess(ctx context.Context, a domain.Assessment) (domain.Prediction, error)
}

// ScoringTransformer implements Transformer by parsing, validating and
// classifying each assessment message.
type ScoringTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates a ScoringTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *ScoringTransformer {
	return &ScoringTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

func (t *ScoringTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	a, err := domain.ParseAssessment(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	if err := a.Validate(); err != nil {
		return domain.OutputEvent{}, err
	}

	prediction, err := t.assessor.Assess(ctx, a)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	id := string(raw.Key)
	if id == "" {
		id = domain.VectorID(domain.Encode(a))
	}
	t.logger.Debug("assessment scored", "id", id, "risk", prediction.Risk)

	return domain.SerializeScored(domain.ScoredAssessment{
		ID:         id,
		Assessment: a,
		Prediction: prediction,
	})
}

// Package inference owns the process-lifetime classifier handle and turns
// feature vectors into risk predictions.
package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/couchcryptid/swasthya-alert/internal/observability"
)

// Loader produces the classifier. It is called at most once per Service.
type Loader interface {
	Load(ctx context.Context) (model.Classifier, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (model.Classifier, error)

func (f LoaderFunc) Load(ctx context.Context) (model.Classifier, error) { return f(ctx) }

// Service lazily loads a classifier on first use and keeps it for its whole
// lifetime. There is no unload or reload; a failed load stays failed.
type Service struct {
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics

	once       sync.Once
	classifier model.Classifier
	loadErr    error
	loaded     atomic.Bool
	failed     atomic.Pointer[error]
}

// New creates a Service in the unloaded state.
func New(loader Loader, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
	}
}

// Load performs the one-time classifier load. Concurrent and repeated calls
// all observe the same single load and its outcome.
func (s *Service) Load(ctx context.Context) error {
	s.once.Do(func() {
		start := time.Now()
		// The handle outlives the request that triggered the load.
		c, err := s.loader.Load(context.WithoutCancel(ctx))
		switch {
		case err != nil && !errors.Is(err, domain.ErrModelUnavailable) && !errors.Is(err, domain.ErrSchemaMismatch):
			err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		case err == nil && c == nil:
			err = fmt.Errorf("%w: loader returned no classifier", domain.ErrModelUnavailable)
		}

		if err != nil {
			s.loadErr = err
			s.failed.Store(&err)
			s.metrics.ModelLoads.WithLabelValues("error").Inc()
			s.metrics.ModelLoaded.Set(0)
			s.logger.Error("classifier load failed", "error", err)
			return
		}

		s.classifier = c
		s.loaded.Store(true)
		s.metrics.ModelLoads.WithLabelValues("success").Inc()
		s.metrics.ModelLoaded.Set(1)
		s.logger.Info("classifier loaded",
			"features", c.NumFeatures(),
			"schema_version", domain.SchemaVersion,
			"duration", time.Since(start),
		)
	})
	return s.loadErr
}

// Predict classifies one feature vector. It fails with ErrModelUnavailable
// when the classifier could not be loaded and ErrSchemaMismatch when the
// classifier disagrees with the vector's width or returns a non-binary label.
func (s *Service) Predict(ctx context.Context, features domain.FeatureVector) (domain.Prediction, error) {
	if err := s.Load(ctx); err != nil {
		s.countError(err)
		return domain.Prediction{}, err
	}

	if want := s.classifier.NumFeatures(); want != len(features) {
		err := fmt.Errorf("%w: encoder produced %d features, classifier expects %d",
			domain.ErrSchemaMismatch, len(features), want)
		s.countError(err)
		return domain.Prediction{}, err
	}

	start := time.Now()
	raw, err := s.classifier.Predict(ctx, features.Slice())
	s.metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.countError(err)
		return domain.Prediction{}, fmt.Errorf("classifier predict: %w", err)
	}

	label, err := domain.ParseLabel(raw)
	if err != nil {
		s.countError(err)
		return domain.Prediction{}, err
	}

	s.metrics.Predictions.WithLabelValues(label.Risk()).Inc()
	return domain.NewPrediction(label), nil
}

// Assess encodes a and predicts on the result. Callers validate a first.
func (s *Service) Assess(ctx context.Context, a domain.Assessment) (domain.Prediction, error) {
	return s.Predict(ctx, domain.Encode(a))
}

// CheckReadiness returns nil once the classifier is loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.loaded.Load() {
		return nil
	}
	if errp := s.failed.Load(); errp != nil {
		return *errp
	}
	return errors.New("classifier not loaded yet")
}

// Close releases classifier resources such as an ONNX session. The Service
// must not be used afterwards.
func (s *Service) Close() error {
	if !s.loaded.Load() {
		return nil
	}
	if closer, ok := s.classifier.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Service) countError(err error) {
	s.metrics.PredictionErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind classifies err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, domain.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, domain.ErrOutOfRange):
		return "invalid_input"
	default:
		return "internal"
	}
}

package inference

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/swasthya-alert/internal/model"
)

// ArtifactLoader opens a model artifact from disk, optionally wrapping it in
// a prediction cache.
type ArtifactLoader struct {
	Options   model.Options
	CacheSize int
	Observer  model.CacheObserver
	Logger    *slog.Logger
}

// Load implements Loader.
func (l ArtifactLoader) Load(_ context.Context) (model.Classifier, error) {
	c, err := model.Open(l.Options)
	if err != nil {
		return nil, err
	}
	if l.CacheSize <= 0 {
		return c, nil
	}

	cached, err := model.NewCached(c, l.CacheSize, l.Observer)
	if err != nil {
		return nil, err
	}
	if l.Logger != nil {
		l.Logger.Info("prediction cache enabled", "size", l.CacheSize)
	}
	return cached, nil
}

// Package model loads the pre-trained outbreak classifier and exposes it
// behind a single Predict capability. The artifact format is owned by the
// exporter that produced it; this package only needs a label per vector.
package model

import "context"

// Classifier predicts a class label for one feature row.
type Classifier interface {
	// Predict returns the raw class label for features.
	Predict(ctx context.Context, features []float64) (int, error)

	// NumFeatures is the input width the classifier was trained on.
	NumFeatures() int
}

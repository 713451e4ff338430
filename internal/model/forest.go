package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
)

// Forest is a random forest exported to JSON. Each tree is a flat node table
// rooted at index 0, mirroring scikit-learn's tree_ arrays.
type Forest struct {
	Format        string   `json:"format"`
	SchemaVersion string   `json:"schema_version,omitempty"`
	FeatureNames  []string `json:"feature_names"`
	Classes       []int    `json:"classes"`
	Trees         []Tree   `json:"trees"`
}

// Tree is one estimator of the forest.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split or a leaf. Leaves have Left == -1 and carry per-class
// sample counts (or weights) in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool { return n.Left < 0 }

// DecodeForest reads a forest artifact and checks its structure against the
// encoder's schema. Structural problems are reported as ErrModelUnavailable,
// column-layout disagreements as ErrSchemaMismatch.
func DecodeForest(r io.Reader) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode forest: %w", domain.ErrModelUnavailable, err)
	}
	if f.Format != "" && f.Format != FormatForest {
		return nil, fmt.Errorf("%w: artifact format %q is not %q", domain.ErrModelUnavailable, f.Format, FormatForest)
	}
	if err := f.checkSchema(); err != nil {
		return nil, err
	}
	if err := f.checkStructure(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return &f, nil
}

func (f *Forest) checkSchema() error {
	if f.SchemaVersion != "" && f.SchemaVersion != domain.SchemaVersion {
		return fmt.Errorf("%w: artifact schema %q, encoder schema %q",
			domain.ErrSchemaMismatch, f.SchemaVersion, domain.SchemaVersion)
	}
	want := domain.FeatureNames()
	if len(f.FeatureNames) != len(want) {
		return fmt.Errorf("%w: artifact has %d features, encoder produces %d",
			domain.ErrSchemaMismatch, len(f.FeatureNames), len(want))
	}
	for i := range want {
		if f.FeatureNames[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q in the artifact but %q in the encoder",
				domain.ErrSchemaMismatch, i, f.FeatureNames[i], want[i])
		}
	}
	return nil
}

func (f *Forest) checkStructure() error {
	if len(f.Classes) == 0 {
		return errors.New("forest declares no classes")
	}
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	width := len(f.FeatureNames)
	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.isLeaf() {
				if len(n.Value) != len(f.Classes) {
					return fmt.Errorf("tree %d node %d: leaf has %d class weights, want %d", ti, ni, len(n.Value), len(f.Classes))
				}
				continue
			}
			if n.Feature < 0 || n.Feature >= width {
				return fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, n.Feature)
			}
			// Children always follow their parent, which also rules out cycles.
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// NumFeatures returns the number of declared input columns.
func (f *Forest) NumFeatures() int {
	return len(f.FeatureNames)
}

// Predict averages the per-tree class probabilities and returns the class
// with the highest mean. Ties go to the earlier class.
func (f *Forest) Predict(_ context.Context, features []float64) (int, error) {
	if len(features) != f.NumFeatures() {
		return 0, fmt.Errorf("%w: got %d features, forest expects %d",
			domain.ErrSchemaMismatch, len(features), f.NumFeatures())
	}

	proba := make([]float64, len(f.Classes))
	for i := range f.Trees {
		leaf := f.Trees[i].leaf(features)
		total := 0.0
		for _, w := range leaf.Value {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range leaf.Value {
			proba[c] += w / total
		}
	}

	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}

func (t *Tree) leaf(features []float64) Node {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.isLeaf() {
			return n
		}
		if features[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

// Labels returns a copy of the declared class labels.
func (f *Forest) Labels() []int {
	return slices.Clone(f.Classes)
}

package model

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/forest.json"

func loadFixture(t *testing.T) *Forest {
	t.Helper()
	f, err := os.Open(fixturePath)
	require.NoError(t, err)
	defer f.Close()

	forest, err := DecodeForest(f)
	require.NoError(t, err)
	return forest
}

// fixtureJSON returns the fixture as a generic map so tests can corrupt it.
func fixtureJSON(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func decodeMap(t *testing.T, m map[string]any) (*Forest, error) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return DecodeForest(strings.NewReader(string(data)))
}

func predict(t *testing.T, c Classifier, a domain.Assessment) int {
	t.Helper()
	label, err := c.Predict(context.Background(), domain.Encode(a).Slice())
	require.NoError(t, err)
	return label
}

func TestForest_Fixture(t *testing.T) {
	forest := loadFixture(t)
	assert.Equal(t, domain.FeatureCount, forest.NumFeatures())
	assert.Equal(t, []int{0, 1}, forest.Labels())
	assert.Len(t, forest.Trees, 3)
}

func TestForest_PredictDefaultsLowRisk(t *testing.T) {
	forest := loadFixture(t)
	assert.Equal(t, 0, predict(t, forest, domain.DefaultAssessment()))
}

func TestForest_PredictHighRisk(t *testing.T) {
	forest := loadFixture(t)

	a := domain.DefaultAssessment()
	a.BacteriaCount = 2000
	a.DiarrhealCases = 600
	assert.Equal(t, 1, predict(t, forest, a))
}

func TestForest_AveragesAcrossTrees(t *testing.T) {
	forest := loadFixture(t)

	// One tree votes high, two vote low.
	a := domain.DefaultAssessment()
	a.BacteriaCount = 2000
	assert.Equal(t, 0, predict(t, forest, a))

	// The treatment indicator flips the second tree.
	a.CleanWaterAccess = 20
	a.Treatment = domain.TreatmentUnknown
	assert.Equal(t, 1, predict(t, forest, a))

	a.Treatment = domain.TreatmentBoiling
	assert.Equal(t, 0, predict(t, forest, a))
}

func TestForest_TieGoesToFirstClass(t *testing.T) {
	forest := &Forest{
		FeatureNames: domain.FeatureNames(),
		Classes:      []int{0, 1},
		Trees: []Tree{
			{Nodes: []Node{{Left: -1, Right: -1, Value: []float64{5, 5}}}},
		},
	}
	label, err := forest.Predict(context.Background(), make([]float64, domain.FeatureCount))
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestForest_PredictWrongWidth(t *testing.T) {
	forest := loadFixture(t)
	_, err := forest.Predict(context.Background(), make([]float64, 21))
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestDecodeForest_SwappedColumns(t *testing.T) {
	m := fixtureJSON(t)
	names := m["feature_names"].([]any)
	names[19], names[20] = names[20], names[19]

	_, err := decodeMap(t, m)
	require.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "column 19")
}

func TestDecodeForest_WrongWidth(t *testing.T) {
	m := fixtureJSON(t)
	names := m["feature_names"].([]any)
	m["feature_names"] = names[:21]

	_, err := decodeMap(t, m)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestDecodeForest_SchemaVersion(t *testing.T) {
	m := fixtureJSON(t)
	m["schema_version"] = "typhoid-rf/v0"

	_, err := decodeMap(t, m)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestDecodeForest_Corrupt(t *testing.T) {
	_, err := DecodeForest(strings.NewReader(`{"trees": [`))
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestDecodeForest_BadStructure(t *testing.T) {
	cases := map[string]func(m map[string]any){
		"no trees":   func(m map[string]any) { m["trees"] = []any{} },
		"no classes": func(m map[string]any) { m["classes"] = []any{} },
		"wrong format": func(m map[string]any) {
			m["format"] = "xgboost"
		},
		"child out of range": func(m map[string]any) {
			tree := m["trees"].([]any)[0].(map[string]any)
			root := tree["nodes"].([]any)[0].(map[string]any)
			root["right"] = 99
		},
		"self loop": func(m map[string]any) {
			tree := m["trees"].([]any)[0].(map[string]any)
			root := tree["nodes"].([]any)[0].(map[string]any)
			root["left"] = 0
		},
		"feature out of range": func(m map[string]any) {
			tree := m["trees"].([]any)[0].(map[string]any)
			root := tree["nodes"].([]any)[0].(map[string]any)
			root["feature"] = 22
		},
		"leaf weights": func(m map[string]any) {
			tree := m["trees"].([]any)[0].(map[string]any)
			leaf := tree["nodes"].([]any)[1].(map[string]any)
			leaf["value"] = []any{1}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := fixtureJSON(t)
			mutate(m)
			_, err := decodeMap(t, m)
			assert.ErrorIs(t, err, domain.ErrModelUnavailable)
		})
	}
}

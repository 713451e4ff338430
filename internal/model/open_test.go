package model

import (
	"path/filepath"
	"testing"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFormat(t *testing.T) {
	cases := []struct {
		format, path, want string
		wantErr            bool
	}{
		{"", "model.json", FormatForest, false},
		{"", "MODEL.ONNX", FormatONNX, false},
		{"forest", "model.bin", FormatForest, false},
		{"", "typhoid_rf_model.pkl", "", true},
		{"pickle", "model.json", "", true},
	}
	for _, tc := range cases {
		got, err := ResolveFormat(tc.format, tc.path)
		if tc.wantErr {
			assert.Error(t, err, tc.path)
			continue
		}
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got)
	}
}

func TestOpen_Forest(t *testing.T) {
	c, err := Open(Options{Path: fixturePath})
	require.NoError(t, err)
	assert.Equal(t, domain.FeatureCount, c.NumFeatures())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(Options{Path: filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestOpen_MissingONNX(t *testing.T) {
	_, err := Open(Options{Path: filepath.Join(t.TempDir(), "missing.onnx")})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestOpen_UnknownFormat(t *testing.T) {
	_, err := Open(Options{Path: "typhoid_rf_model.pkl"})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

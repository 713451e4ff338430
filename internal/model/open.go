package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
)

// Supported artifact formats.
const (
	FormatForest = "forest"
	FormatONNX   = "onnx"
)

// Options locates and describes a model artifact.
type Options struct {
	Path string
	// Format is FormatForest or FormatONNX. Empty infers it from the extension.
	Format string
	// RuntimeLib is the onnxruntime shared library path, ONNX only.
	RuntimeLib string
}

// ResolveFormat returns the explicit format or the one implied by path.
func ResolveFormat(format, path string) (string, error) {
	if format != "" {
		switch format {
		case FormatForest, FormatONNX:
			return format, nil
		default:
			return "", fmt.Errorf("unsupported model format %q", format)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatForest, nil
	case ".onnx":
		return FormatONNX, nil
	default:
		return "", fmt.Errorf("cannot infer model format from %q", path)
	}
}

// Open loads the artifact described by opts. Any failure to locate or
// deserialize it is reported as domain.ErrModelUnavailable; an artifact
// built for a different column layout as domain.ErrSchemaMismatch.
func Open(opts Options) (Classifier, error) {
	format, err := ResolveFormat(opts.Format, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	switch format {
	case FormatONNX:
		if _, err := os.Stat(opts.Path); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		return OpenONNX(opts.Path, opts.RuntimeLib)
	default:
		f, err := os.Open(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		defer f.Close()
		return DecodeForest(f)
	}
}

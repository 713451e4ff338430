package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/swasthya-alert/internal/domain"
	ort "github.com/yalue/onnxruntime_go"
)

// onnxLabelOutput is the label output emitted by skl2onnx classifier exports.
const onnxLabelOutput = "label"

var ortInit sync.Mutex

// ONNX runs a classifier exported to ONNX through the onnxruntime shared library.
type ONNX struct {
	session   *ort.DynamicAdvancedSession
	inputName string
	width     int
}

// OpenONNX initializes the onnxruntime environment (once per process) and
// creates a session for the model at path.
func OpenONNX(path, runtimeLib string) (*ONNX, error) {
	if err := initRuntime(runtimeLib); err != nil {
		return nil, fmt.Errorf("%w: init onnxruntime: %w", domain.ErrModelUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect onnx model: %w", domain.ErrModelUnavailable, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("%w: onnx model has %d inputs, want 1", domain.ErrSchemaMismatch, len(inputs))
	}
	if !hasOutput(outputs, onnxLabelOutput) {
		return nil, fmt.Errorf("%w: onnx model has no %q output", domain.ErrModelUnavailable, onnxLabelOutput)
	}

	width := domain.FeatureCount
	if dims := inputs[0].Dimensions; len(dims) == 2 && dims[1] > 0 {
		width = int(dims[1])
	}
	if width != domain.FeatureCount {
		return nil, fmt.Errorf("%w: onnx model expects %d features, encoder produces %d",
			domain.ErrSchemaMismatch, width, domain.FeatureCount)
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{onnxLabelOutput}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create onnx session: %w", domain.ErrModelUnavailable, err)
	}

	return &ONNX{session: session, inputName: inputs[0].Name, width: width}, nil
}

func initRuntime(lib string) error {
	ortInit.Lock()
	defer ortInit.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if lib != "" {
		ort.SetSharedLibraryPath(lib)
	}
	return ort.InitializeEnvironment()
}

func hasOutput(outputs []ort.InputOutputInfo, name string) bool {
	for _, o := range outputs {
		if o.Name == name {
			return true
		}
	}
	return false
}

// NumFeatures returns the model's input width.
func (m *ONNX) NumFeatures() int {
	return m.width
}

// Predict runs one row through the session and returns its label.
func (m *ONNX) Predict(_ context.Context, features []float64) (int, error) {
	if len(features) != m.width {
		return 0, fmt.Errorf("%w: got %d features, onnx model expects %d",
			domain.ErrSchemaMismatch, len(features), m.width)
	}

	row := make([]float32, len(features))
	for i, v := range features {
		row[i] = float32(v)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(m.width)), row)
	if err != nil {
		return 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy() //nolint:errcheck // tensor memory is released regardless

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy() //nolint:errcheck // tensor memory is released regardless

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return 0, fmt.Errorf("run onnx session: %w", err)
	}
	return int(output.GetData()[0]), nil
}

// Close releases the session.
func (m *ONNX) Close() error {
	return m.session.Destroy()
}

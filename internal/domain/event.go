package domain

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// RawEvent represents an unprocessed message from the assessment topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ScoredAssessment is a classified assessment destined for the prediction topic.
type ScoredAssessment struct {
	ID         string     `json:"id"`
	Assessment Assessment `json:"assessment"`
	Prediction
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseAssessment decodes an assessment payload. Omitted fields take their
// declared defaults; unknown fields and trailing data are rejected.
func ParseAssessment(data []byte) (Assessment, error) {
	a := DefaultAssessment()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return Assessment{}, fmt.Errorf("parse assessment: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Assessment{}, errors.New("parse assessment: unexpected data after JSON object")
	}
	return a, nil
}

// VectorID derives a deterministic ID from the encoded vector so replays of
// the same assessment produce the same key.
func VectorID(v FeatureVector) string {
	h := sha256.New()
	var buf [8]byte
	for _, x := range v {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return "asm-" + hex.EncodeToString(h.Sum(nil)[:8])
}

// SerializeScored marshals a scored assessment into an OutputEvent.
func SerializeScored(s ScoredAssessment) (OutputEvent, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize scored assessment: %w", err)
	}
	return OutputEvent{
		Key:   []byte(s.ID),
		Value: data,
		Headers: map[string]string{
			"risk":           s.Risk,
			"schema_version": s.SchemaVersion,
			"predicted_at":   s.PredictedAt.Format(time.RFC3339),
		},
	}, nil
}

//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/swasthya-alert/internal/adapter/kafka"
	"github.com/couchcryptid/swasthya-alert/internal/config"
	"github.com/couchcryptid/swasthya-alert/internal/domain"
	"github.com/couchcryptid/swasthya-alert/internal/inference"
	"github.com/couchcryptid/swasthya-alert/internal/model"
	"github.com/couchcryptid/swasthya-alert/internal/observability"
	"github.com/couchcryptid/swasthya-alert/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-assessments"
	testSinkTopic   = "test-predictions"
)

// scoredMessage holds a deserialized message read from the prediction topic.
type scoredMessage struct {
	Scored  domain.ScoredAssessment
	Key     string
	Headers map[string]string
}

// readScored reads a single message from the sink consumer and deserializes it.
func readScored(ctx context.Context, t *testing.T, consumer *kafkago.Reader) scoredMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from prediction topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var scored domain.ScoredAssessment
	require.NoError(t, json.Unmarshal(msg.Value, &scored), "unmarshal prediction")

	return scoredMessage{Scored: scored, Key: string(msg.Key), Headers: headers}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,
	}
}

func newService(t *testing.T) *inference.Service {
	t.Helper()
	svc := inference.New(inference.ArtifactLoader{
		Options: model.Options{Path: forestArtifact},
		Logger:  discardLogger(),
	}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func highRiskAssessment() domain.Assessment {
	a := domain.DefaultAssessment()
	a.BacteriaCount = 4200
	a.CleanWaterAccess = 20
	a.DiarrhealCases = 800
	a.Treatment = domain.TreatmentUnknown
	return a
}

// TestKafkaReaderWriter verifies kafka.Reader and kafka.Writer round-trip an
// assessment through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload, err := json.Marshal(highRiskAssessment())
	require.NoError(t, err)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("district-7"), Value: payload}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for len(batch) == 0 {
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from assessment topic")
		}
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("district-7"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(newService(t), discardLogger())
	out, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	sm := readScored(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, "district-7", sm.Key)
	assert.Equal(t, "high", sm.Headers["risk"])
	assert.Equal(t, domain.SchemaVersion, sm.Headers["schema_version"])
	_, err = time.Parse(time.RFC3339, sm.Headers["predicted_at"])
	require.NoError(t, err, "predicted_at should be valid RFC3339")
	assert.Equal(t, domain.LabelHighRisk, sm.Scored.Label)
}

// TestPipelineEndToEnd runs Reader, ScoringTransformer and Writer against a
// real broker and checks every assessment is scored.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	const perClass = 10
	msgs := make([]kafkago.Message, 0, 2*perClass)
	for i := range perClass {
		high, err := json.Marshal(highRiskAssessment())
		require.NoError(t, err)
		low, err := json.Marshal(domain.DefaultAssessment())
		require.NoError(t, err)
		msgs = append(msgs,
			kafkago.Message{Key: []byte(fmt.Sprintf("high-%d", i)), Value: high},
			kafkago.Message{Key: []byte(fmt.Sprintf("low-%d", i)), Value: low},
		)
	}

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(newService(t), discardLogger()), writer, discardLogger(), metrics, 8)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	counts := map[string]int{}
	for range msgs {
		sm := readScored(ctx, t, consumer)
		counts[sm.Scored.Risk]++
		assert.Equal(t, sm.Scored.Risk, sm.Headers["risk"])
		assert.Equal(t, sm.Key, sm.Scored.ID)
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, perClass, counts["high"], "high risk count")
	assert.Equal(t, perClass, counts["low"], "low risk count")
	assert.True(t, p.Ready())
}

// TestPipelineSkipsInvalidAssessments verifies that malformed and
// out-of-range messages are skipped while valid ones are still scored.
func TestPipelineSkipsInvalidAssessments(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	valid, err := json.Marshal(domain.DefaultAssessment())
	require.NoError(t, err)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad-json"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("bad-range"), Value: []byte(`{"ph_level":15}`)},
		kafkago.Message{Key: []byte("good"), Value: valid},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(newService(t), discardLogger()), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	sm := readScored(ctx, t, consumer)
	assert.Equal(t, "good", sm.Key)
	assert.Equal(t, "low", sm.Scored.Risk)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	require.Error(t, err, "expected no second message on prediction topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/verzoeken/pkg/kafka"
)

type recordingWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestNotifier_PublishesToKafka(t *testing.T) {
	writer := &recordingWriter{}
	producer := kafka.NewProducerWithWriter(writer, "notificaties", testLogger())
	notifier := NewNotifier("verzoeken", NewKafkaPublisher(producer), testLogger())
	notifier.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	verzoek := "https://verzoeken.example.com/api/v1/verzoeken/1"
	notifier.Notify(context.Background(), ActionCreate, "verzoekinformatieobject",
		"https://verzoeken.example.com/api/v1/verzoekinformatieobjecten/2", verzoek, "517439943")

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, verzoek, string(msg.Key))

	var got Notification
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "verzoeken", got.Kanaal)
	assert.Equal(t, verzoek, got.HoofdObject)
	assert.Equal(t, "verzoekinformatieobject", got.Resource)
	assert.Equal(t, ActionCreate, got.Actie)
	assert.Equal(t, "517439943", got.Kenmerken["bronorganisatie"])
	assert.True(t, got.Aanmaakdatum.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "verzoeken", headers["kanaal"])
	assert.Equal(t, ActionCreate, headers["actie"])
}

func TestNotifier_SwallowsPublishErrors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker unavailable")}
	producer := kafka.NewProducerWithWriter(writer, "notificaties", testLogger())
	notifier := NewNotifier("verzoeken", NewKafkaPublisher(producer), testLogger())

	assert.NotPanics(t, func() {
		notifier.Notify(context.Background(), ActionDestroy, "verzoek", "u", "u", "517439943")
	})
	assert.Empty(t, writer.messages)
}

package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublish_LlaveYCuerpo(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewPublisherWithWriter(w)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), inventory.Event{
		Event:           inventory.EventTransactionApproved,
		TransactionID:   "t1",
		ReferenceNumber: "TRF-20240102030405-001",
		Type:            entity.TransactionTypeTransfer,
		Status:          entity.StatusApproved,
		Items:           []inventory.EventItem{{ProductID: "p1", Quantity: 3}},
		OccurredAt:      at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "t1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "transaction.approved", string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "APPROVED", body["status"])
	assert.Equal(t, "TRF-20240102030405-001", body["reference_number"])
}

func TestPublish_ErrorDelWriter(t *testing.T) {
	p := kafka.NewPublisherWithWriter(&fakeWriter{err: errors.New("sin brokers")})
	err := p.Publish(context.Background(), inventory.Event{TransactionID: "t1"})
	assert.ErrorContains(t, err, "sin brokers")
}

package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/logger"
	"fintrack/internal/storage"
)

func init() {
	logger.Init("test")
}

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchangeName: "fintrack", queueName: "fintrack.orphaned-blobs"}

	blob := storage.OrphanedBlob{
		Key:           "1700000000000-bill.pdf",
		URL:           "https://storage.googleapis.com/receipts/1700000000000-bill.pdf",
		TransactionID: "tx-1",
		Reason:        "permission denied",
		OccurredAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), blob))

	require.Len(t, ch.sent, 1)
	sent := ch.sent[0]
	assert.Equal(t, "fintrack", sent.exchange)
	assert.Equal(t, "fintrack.orphaned-blobs", sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, sent.msg.DeliveryMode)

	var decoded storage.OrphanedBlob
	require.NoError(t, json.Unmarshal(sent.msg.Body, &decoded))
	assert.Equal(t, blob, decoded)
}

func TestPublisher_ReportOrphanSwallowsErrors(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{channel: ch, exchangeName: "fintrack", queueName: "q"}

	p.ReportOrphan(context.Background(), storage.OrphanedBlob{Key: "k"})
	assert.Empty(t, ch.sent)
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch}

	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

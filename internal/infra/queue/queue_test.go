package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error

	deliveries chan amqp.Delivery
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deliveries, nil
}

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyConversion(ctx context.Context, event usecase.LeadConvertedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotifier) NotifyFollowUps(ctx context.Context, crmType string, leads []*entity.Lead) error {
	return m.Called(ctx, crmType, leads).Error(0)
}

var sampleEvent = usecase.LeadConvertedEvent{
	LeadID:      "lead-1",
	ClientID:    "client-1",
	CRMType:     "gold",
	Name:        "Ana Souza",
	Email:       "ana@example.com",
	Value:       1200,
	ConvertedBy: "Priya",
	ConvertedAt: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
}

func TestProducer_PublishLeadConverted(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitMQProducer{Ch: ch}

	require.NoError(t, p.PublishLeadConverted(context.Background(), sampleEvent))
	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKey, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "lead-1", ch.msg.MessageId)

	var got usecase.LeadConvertedEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, sampleEvent, got)
}

func TestProducer_BrokerError(t *testing.T) {
	p := &RabbitMQProducer{Ch: &fakeChannel{err: errors.New("channel closed")}}
	assert.Error(t, p.PublishLeadConverted(context.Background(), sampleEvent))
}

func delivery(t *testing.T, body []byte, redelivered bool) (amqp.Delivery, *ackRecorder) {
	t.Helper()
	ack := &ackRecorder{}
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}, ack
}

func TestWorker_Handle(t *testing.T) {
	body, err := json.Marshal(sampleEvent)
	require.NoError(t, err)

	t.Run("ack on success", func(t *testing.T) {
		n := new(MockNotifier)
		n.On("NotifyConversion", mock.Anything, sampleEvent).Return(nil)
		w := &Worker{Notifier: n, Logger: logger.Nop()}

		d, ack := delivery(t, body, false)
		w.handle(context.Background(), d)
		assert.True(t, ack.acked)
		n.AssertExpectations(t)
	})

	t.Run("malformed goes to dlq", func(t *testing.T) {
		w := &Worker{Notifier: new(MockNotifier), Logger: logger.Nop()}
		d, ack := delivery(t, []byte("{"), false)
		w.handle(context.Background(), d)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("notifier failure retries once", func(t *testing.T) {
		n := new(MockNotifier)
		n.On("NotifyConversion", mock.Anything, sampleEvent).Return(errors.New("smtp down"))
		w := &Worker{Notifier: n, Logger: logger.Nop()}

		d, ack := delivery(t, body, false)
		w.handle(context.Background(), d)
		assert.True(t, ack.requeue)

		d, ack = delivery(t, body, true)
		w.handle(context.Background(), d)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	body, _ := json.Marshal(sampleEvent)
	called := make(chan struct{})
	n := new(MockNotifier)
	n.On("NotifyConversion", mock.Anything, sampleEvent).Return(nil).Run(func(mock.Arguments) { close(called) })

	ch := &fakeChannel{deliveries: make(chan amqp.Delivery, 1)}
	d, ack := delivery(t, body, false)
	ch.deliveries <- d

	w := &Worker{Channel: ch, Notifier: n, Logger: logger.Nop()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.True(t, ack.acked)
}

type recordingDeclarer struct {
	exchanges []string
	queues    map[string]amqp.Table
	binds     []string
}

func (r *recordingDeclarer) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	r.exchanges = append(r.exchanges, name)
	return nil
}

func (r *recordingDeclarer) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	if r.queues == nil {
		r.queues = map[string]amqp.Table{}
	}
	r.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingDeclarer) QueueBind(name, key, exchange string, _ bool, _ amqp.Table) error {
	r.binds = append(r.binds, exchange+"->"+name+":"+key)
	return nil
}

func TestSetupTopology(t *testing.T) {
	r := &recordingDeclarer{}
	require.NoError(t, setupTopology(r))

	assert.ElementsMatch(t, []string{DLXName, ExchangeName}, r.exchanges)
	assert.Equal(t, DLXName, r.queues[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, r.queues[DLQName])
	assert.ElementsMatch(t, []string{
		"ex.crm.dlx->q.lead-events.dlq:k.lead.converted",
		"ex.crm->q.lead-events:k.lead.converted",
	}, r.binds)
}

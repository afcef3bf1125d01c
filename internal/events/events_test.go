package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{err: errors.New("broker down")}
	m := Multi{a, nil, b}

	err := m.Publish(context.Background(), Event{Type: NewPost, Data: "x"})
	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1, "a failing publisher does not stop the others")

	assert.NoError(t, Multi{a}.Publish(context.Background(), Event{Type: Like}))
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	closed        bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublish(t *testing.T) {
	ch := &fakeChannel{}
	a := newAMQP(ch, DefaultExchange, nil)

	require.NoError(t, a.Publish(context.Background(), Event{Type: Reaction, Data: map[string]string{"id": "post_1"}}))
	assert.Equal(t, DefaultExchange, ch.exchange)
	assert.Equal(t, Reaction, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var decoded struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "post_1", decoded.Data["id"])

	require.NoError(t, a.Close())
	assert.True(t, ch.closed)
}

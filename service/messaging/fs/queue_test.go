package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
)

type payload struct {
	Name string
}

func TestQueue(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/fsqueue/basic"
	queue, err := NewQueue[payload](ctx, fs, Config{BaseURL: baseURL, MaxRetries: 1})
	if !assert.NoError(t, err) {
		return
	}

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message)

	assert.NoError(t, queue.Publish(ctx, &payload{Name: "first"}))
	assert.NoError(t, queue.Publish(ctx, &payload{Name: "second"}))
	count, err := queue.Count(ctx, MessageStatePending)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	message, err = queue.Consume(ctx)
	if !assert.NoError(t, err) || !assert.NotNil(t, message) {
		return
	}
	assert.Equal(t, "first", message.T().Name)
	count, _ = queue.Count(ctx, MessageStateProcessing)
	assert.Equal(t, 1, count)
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
	count, _ = queue.Count(ctx, MessageStateCompleted)
	assert.Equal(t, 1, count)
	count, _ = queue.Count(ctx, MessageStateProcessing)
	assert.Equal(t, 0, count)
}

func TestQueue_Nack(t *testing.T) {
	ctx := context.Background()
	queue, err := NewQueue[payload](ctx, afs.New(), Config{BaseURL: "mem://localhost/fsqueue/nack", MaxRetries: 1})
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, queue.Publish(ctx, &payload{Name: "flaky"}))

	for i := 0; i < 2; i++ {
		message, err := queue.Consume(ctx)
		if !assert.NoError(t, err) || !assert.NotNil(t, message) {
			return
		}
		assert.Equal(t, i, message.(*Message[payload]).Retries)
		assert.NoError(t, message.Nack(errors.New("boom")))
	}
	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Nil(t, message)
	count, _ := queue.Count(ctx, MessageStateDead)
	assert.Equal(t, 1, count)
}

// Package fs provides an afs backed messaging.Queue keeping one JSON file
// per message in state folders under a base URL.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/notestore/internal/clock"
	"github.com/viant/notestore/internal/idgen"
	"github.com/viant/notestore/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateDead       MessageState = "dlq"
)

// Message implements messaging.Message for the filesystem queue
type Message[T any] struct {
	Id        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	name      string
	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// ID returns message ID
func (m *Message[T]) ID() string {
	return m.Id
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed folder
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrAlreadyProcessed
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = clock.Now()
	return m.queue.transition(context.Background(), m, MessageStateProcessing)
}

// Nack returns the message to the pending folder until MaxRetries is
// exceeded, then moves it to the dead letter folder
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrAlreadyProcessed
	}
	m.processed = true
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = clock.Now()
	m.State = MessageStatePending
	if m.Retries > m.queue.config.MaxRetries {
		m.State = MessageStateDead
	}
	return m.queue.transition(context.Background(), m, MessageStateProcessing)
}

// Config holds configuration for filesystem queue
type Config struct {
	BaseURL    string
	MaxRetries int
}

// DefaultConfig returns a default queue configuration rooted at baseURL
func DefaultConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, MaxRetries: 3}
}

// Queue implements a filesystem-based messaging.Queue
type Queue[T any] struct {
	fs     afs.Service
	config Config
	seq    atomic.Int64
	mu     sync.Mutex
}

// NewQueue creates a filesystem queue, creating state folders when missing
func NewQueue[T any](ctx context.Context, fs afs.Service, config Config) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	config.BaseURL = strings.TrimRight(url.Normalize(config.BaseURL, file.Scheme), "/")
	q := &Queue[T]{fs: fs, config: config}
	for _, state := range []MessageState{MessageStatePending, MessageStateProcessing, MessageStateCompleted, MessageStateDead} {
		dir := q.dir(state)
		if exists, _ := fs.Exists(ctx, dir); exists {
			continue
		}
		if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return q, nil
}

// Publish writes a new pending message
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	now := clock.Now()
	message := &Message[T]{
		Id:        idgen.New(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// names sort by creation time so Consume picks the oldest first
	message.name = fmt.Sprintf("%020d-%06d-%s.json", now.UnixNano(), q.seq.Add(1), message.Id)
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.write(ctx, message)
}

// Consume moves the oldest pending message to processing. It returns nil
// message and nil error when no message is pending.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	objects, err := q.fs.List(ctx, q.dir(MessageStatePending))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	var pending []storage.Object
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			pending = append(pending, object)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Name() < pending[j].Name() })
	object := pending[0]

	data, err := q.fs.Download(ctx, object)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", object.URL(), err)
	}
	message := &Message[T]{}
	if err = json.Unmarshal(data, message); err != nil {
		_ = q.fs.Move(ctx, object.URL(), url.Join(q.dir(MessageStateDead), "invalid-"+object.Name()))
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", object.URL(), err)
	}
	message.name = object.Name()
	message.State = MessageStateProcessing
	message.UpdatedAt = clock.Now()
	if err = q.write(ctx, message); err != nil {
		return nil, err
	}
	if err = q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete pending message %s: %w", object.URL(), err)
	}
	message.queue = q
	return message, nil
}

// Count returns number of messages in the state folder
func (q *Queue[T]) Count(ctx context.Context, state MessageState) (int, error) {
	objects, err := q.fs.List(ctx, q.dir(state))
	if err != nil {
		return 0, err
	}
	count := 0
	for _, object := range objects {
		if !object.IsDir() && strings.HasSuffix(object.Name(), ".json") {
			count++
		}
	}
	return count, nil
}

func (q *Queue[T]) transition(ctx context.Context, m *Message[T], from MessageState) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.write(ctx, m); err != nil {
		return err
	}
	source := url.Join(q.dir(from), m.name)
	if exists, _ := q.fs.Exists(ctx, source); exists {
		if err := q.fs.Delete(ctx, source); err != nil {
			return fmt.Errorf("failed to delete %s: %w", source, err)
		}
	}
	return nil
}

func (q *Queue[T]) write(ctx context.Context, m *Message[T]) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %s: %w", m.Id, err)
	}
	URL := url.Join(q.dir(m.State), m.name)
	if err = q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", URL, err)
	}
	return nil
}

func (q *Queue[T]) dir(state MessageState) string {
	return url.Join(q.config.BaseURL, string(state))
}

var _ messaging.Queue[any] = (*Queue[any])(nil)

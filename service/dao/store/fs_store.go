package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	aurl "github.com/viant/afs/url"
	"github.com/viant/notestore/service/dao"
	"go.uber.org/zap"
)

// FsStore is a generic afs backed implementation of dao.Service keeping one
// JSON file per record under base URL.
type FsStore[T any] struct {
	baseURL     string
	fs          afs.Service
	keySelector func(*T) string
	filter      func(*T, []*dao.Parameter) bool
	logger      *zap.Logger
	mu          sync.RWMutex
}

var _ dao.Service[string, struct{}] = (*FsStore[struct{}])(nil)

// Save persists a record to the filesystem
func (s *FsStore[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	URL := s.recordURL(key)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", URL, err)
	}
	return nil
}

// Load retrieves a record from the filesystem
func (s *FsStore[T]) Load(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check if %s exists: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", key, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	var ret T
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", URL, err)
	}
	return &ret, nil
}

// Delete removes a record from the filesystem
func (s *FsStore[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check if %s exists: %w", URL, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", key, dao.ErrNotFound)
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete %s: %w", URL, err)
	}
	return nil
}

// List returns all records matching parameters; unreadable files are logged
// and skipped.
func (s *FsStore[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.baseURL, err)
	}
	var ret []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read record", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("failed to unmarshal record", zap.String("url", object.URL()), zap.Error(err))
			continue
		}
		if s.filter != nil && !s.filter(&record, parameters) {
			continue
		}
		ret = append(ret, &record)
	}
	return ret, nil
}

// BaseURL returns store location
func (s *FsStore[T]) BaseURL() string {
	return s.baseURL
}

func (s *FsStore[T]) recordURL(key string) string {
	return aurl.Join(s.baseURL, url.PathEscape(key)+".json")
}

// NewFsStore creates a filesystem store under baseURL, creating the folder
// when missing.
func NewFsStore[T any](ctx context.Context, fs afs.Service, baseURL string, keySelector func(*T) string, options ...FsOption[T]) (*FsStore[T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	baseURL = aurl.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", baseURL, err)
		}
	}
	ret := &FsStore[T]{
		baseURL:     strings.TrimRight(baseURL, "/"),
		fs:          fs,
		keySelector: keySelector,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// FsOption represents filesystem store option
type FsOption[T any] func(s *FsStore[T])

// WithFsFilter sets the List parameter filter
func WithFsFilter[T any](filter func(*T, []*dao.Parameter) bool) FsOption[T] {
	return func(s *FsStore[T]) {
		s.filter = filter
	}
}

// WithFsLogger sets the logger
func WithFsLogger[T any](logger *zap.Logger) FsOption[T] {
	return func(s *FsStore[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

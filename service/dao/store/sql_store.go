package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/viant/notestore/service/dao"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLDriver is the database/sql driver registered by modernc.org/sqlite
const SQLDriver = "sqlite"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore is a generic SQLite backed implementation of dao.Service keeping
// one JSON encoded row per record.
type SQLStore[T any] struct {
	db          *sql.DB
	table       string
	keySelector func(*T) string
	filter      func(*T, []*dao.Parameter) bool
	logger      *zap.Logger
}

var _ dao.Service[string, struct{}] = (*SQLStore[struct{}])(nil)

// OpenSQL opens SQLite database at path, creating the parent folder when
// missing
func OpenSQL(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open(SQLDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	return db, nil
}

// Save inserts or replaces a record
func (s *SQLStore[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (id, data) VALUES (?, ?)", s.table)
	if _, err = s.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Load returns a record by key
func (s *SQLStore[T]) Load(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}
	var data string
	query := fmt.Sprintf("SELECT data FROM %s WHERE id = ?", s.table)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", key, dao.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	var ret T
	if err = json.Unmarshal([]byte(data), &ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return &ret, nil
}

// Delete removes a record
func (s *SQLStore[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table)
	result, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%s: %w", key, dao.ErrNotFound)
	}
	return nil
}

// List returns all records matching parameters ordered by key; undecodable
// rows are logged and skipped.
func (s *SQLStore[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	query := fmt.Sprintf("SELECT id, data FROM %s ORDER BY id", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.table, err)
	}
	defer rows.Close()
	var ret []*T
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}
		var record T
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			s.logger.Warn("failed to unmarshal record", zap.String("table", s.table), zap.String("id", id), zap.Error(err))
			continue
		}
		if s.filter != nil && !s.filter(&record, parameters) {
			continue
		}
		ret = append(ret, &record)
	}
	return ret, rows.Err()
}

// NewSQLStore creates a store over table, creating the table when missing
func NewSQLStore[T any](ctx context.Context, db *sql.DB, table string, keySelector func(*T) string, options ...SQLOption[T]) (*SQLStore[T], error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	ret := &SQLStore[T]{
		db:          db,
		table:       table,
		keySelector: keySelector,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// SQLOption represents SQL store option
type SQLOption[T any] func(s *SQLStore[T])

// WithSQLFilter sets the List parameter filter
func WithSQLFilter[T any](filter func(*T, []*dao.Parameter) bool) SQLOption[T] {
	return func(s *SQLStore[T]) {
		s.filter = filter
	}
}

// WithSQLLogger sets the logger
func WithSQLLogger[T any](logger *zap.Logger) SQLOption[T] {
	return func(s *SQLStore[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

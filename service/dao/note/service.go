// Package note provides note DAO constructors for the memory, filesystem
// and SQLite backends.
package note

import (
	"context"
	"database/sql"

	"github.com/viant/afs"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/service/dao"
	"github.com/viant/notestore/service/dao/criteria"
	"github.com/viant/notestore/service/dao/store"
	"go.uber.org/zap"
)

func key(n *model.Note) string { return n.ID }

// NewMemory creates an in-memory note DAO
func NewMemory() dao.Service[string, model.Note] {
	return store.NewMemoryStore[string, model.Note](key,
		store.WithCloner[string, model.Note]((*model.Note).Clone),
		store.WithFilter[string, model.Note](criteria.MatchNote))
}

// NewFs creates a note DAO persisting notes as JSON under baseURL
func NewFs(ctx context.Context, fs afs.Service, baseURL string, logger *zap.Logger) (dao.Service[string, model.Note], error) {
	ret, err := store.NewFsStore[model.Note](ctx, fs, baseURL, key,
		store.WithFsFilter[model.Note](criteria.MatchNote),
		store.WithFsLogger[model.Note](logger))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// NewSQL creates a note DAO persisting notes in the notes table of db
func NewSQL(ctx context.Context, db *sql.DB, logger *zap.Logger) (dao.Service[string, model.Note], error) {
	ret, err := store.NewSQLStore[model.Note](ctx, db, "notes", key,
		store.WithSQLFilter[model.Note](criteria.MatchNote),
		store.WithSQLLogger[model.Note](logger))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

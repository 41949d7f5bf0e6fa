// Package document provides document DAO constructors for the memory,
// filesystem and SQLite backends.
package document

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

func key(d *model.Document) string { return d.URL }

// NewMemory creates an in-memory document DAO
func NewMemory() dao.Service[string, model.Document] {
	return store.NewMemoryStore[string, model.Document](key,
		store.WithCloner[string, model.Document](clone),
		store.WithFilter[string, model.Document](criteria.MatchDocument))
}

// NewFs creates a document DAO persisting documents as JSON under baseURL
func NewFs(ctx context.Context, fs afs.Service, baseURL string, logger *zap.Logger) (dao.Service[string, model.Document], error) {
	ret, err := store.NewFsStore[model.Document](ctx, fs, baseURL, key,
		store.WithFsFilter[model.Document](criteria.MatchDocument),
		store.WithFsLogger[model.Document](logger))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// NewSQL creates a document DAO persisting documents in the documents table of db
func NewSQL(ctx context.Context, db *sql.DB, logger *zap.Logger) (dao.Service[string, model.Document], error) {
	ret, err := store.NewSQLStore[model.Document](ctx, db, "documents", key,
		store.WithSQLFilter[model.Document](criteria.MatchDocument),
		store.WithSQLLogger[model.Document](logger))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func clone(d *model.Document) *model.Document {
	ret := *d
	ret.NoteIDs = append([]string(nil), d.NoteIDs...)
	return &ret
}

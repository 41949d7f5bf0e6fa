package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/notestore/service/dao"
)

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store", "notes.db")
	db, err := OpenSQL(path)
	if !assert.NoError(t, err) {
		return
	}
	defer db.Close()

	s, err := NewSQLStore[record](ctx, db, "records", recordKey, WithSQLFilter[record](byTag))
	if !assert.NoError(t, err) {
		return
	}
	assert.ErrorIs(t, s.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, s.Save(ctx, &record{}), dao.ErrInvalidID)

	assert.NoError(t, s.Save(ctx, &record{ID: "values-2", Tags: []string{"values"}}))
	assert.NoError(t, s.Save(ctx, &record{ID: "built-in-types-1", Tags: []string{"natives"}}))
	assert.NoError(t, s.Save(ctx, &record{ID: "built-in-types-1", Tags: []string{"types"}}))

	loaded, err := s.Load(ctx, "built-in-types-1")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"types"}, loaded.Tags)
	}
	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	_, err = s.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)

	all, err := s.List(ctx)
	if assert.NoError(t, err) && assert.Len(t, all, 2) {
		assert.Equal(t, "built-in-types-1", all[0].ID)
		assert.Equal(t, "values-2", all[1].ID)
	}
	filtered, err := s.List(ctx, dao.NewParameter("Tag", "values"))
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)

	// a second store over the same table sees persisted rows
	reopened, err := NewSQLStore[record](ctx, db, "records", recordKey)
	assert.NoError(t, err)
	again, err := reopened.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, again, 2)

	assert.NoError(t, s.Delete(ctx, "values-2"))
	assert.ErrorIs(t, s.Delete(ctx, "values-2"), dao.ErrNotFound)
}

func TestNewSQLStore_Invalid(t *testing.T) {
	ctx := context.Background()
	_, err := NewSQLStore[record](ctx, nil, "records", recordKey)
	assert.Error(t, err)

	db, err := OpenSQL(filepath.Join(t.TempDir(), "invalid.db"))
	if !assert.NoError(t, err) {
		return
	}
	defer db.Close()
	_, err = NewSQLStore[record](ctx, db, "records; DROP", recordKey)
	assert.Error(t, err)
}

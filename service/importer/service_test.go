package importer

import (
	"bytes"
	"context"
	_ "embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/progress"
	"github.com/viant/notestore/service/dao"
	"github.com/viant/notestore/service/dao/document"
	"github.com/viant/notestore/service/dao/note"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/index"
	"github.com/viant/notestore/service/messaging/memory"
	"github.com/viant/notestore/service/parser"
)

//go:embed testdata/types.js
var typesJS []byte

type fixture struct {
	fs        afs.Service
	notes     dao.Service[string, model.Note]
	documents dao.Service[string, model.Document]
	index     *index.Index
	service   *Service
}

func newFixture(t *testing.T, options ...Option) *fixture {
	p, err := parser.New()
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	ret := &fixture{fs: afs.New(), notes: note.NewMemory(), documents: document.NewMemory(), index: index.New()}
	options = append([]Option{WithFs(ret.fs)}, options...)
	ret.service = New(p, ret.notes, ret.documents, ret.index, options...)
	return ret
}

func (f *fixture) upload(t *testing.T, URL string, content []byte) {
	err := f.fs.Upload(context.Background(), URL, file.DefaultFileOsMode, bytes.NewReader(content))
	assert.NoError(t, err)
}

func TestService_ImportFolder(t *testing.T) {
	ctx, tracker := progress.WithNewTracker(context.Background(), nil)
	f := newFixture(t, WithWorkers(1))
	baseURL := "mem://localhost/importer/folder"
	f.upload(t, baseURL+"/types.js", typesJS)
	f.upload(t, baseURL+"/nested/copy.txt", typesJS)
	f.upload(t, baseURL+"/ignored.json", []byte(`{"a":1}`))

	summary, err := f.service.Import(ctx, baseURL)
	if !assert.NoError(t, err) {
		return
	}
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, []string{baseURL + "/nested/copy.txt", baseURL + "/types.js"}, summary.Documents)
	assert.Equal(t, 3, summary.Notes)
	assert.Equal(t, 3, summary.Duplicates)
	assert.Equal(t, 0, summary.Unterminated)
	assert.False(t, summary.CompletedAt.Before(summary.StartedAt))
	snapshot := tracker.Snapshot()
	assert.Equal(t, summary.RunID, snapshot.RunID)
	assert.Equal(t, 2, snapshot.Files)
	assert.Equal(t, 2, snapshot.Parsed)
	assert.Equal(t, 6, snapshot.Notes)

	notes, err := f.notes.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, notes, 3)
	for _, n := range notes {
		assert.Len(t, n.Sources, 2)
		assert.False(t, n.ImportedAt.IsZero())
	}
	documents, err := f.documents.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, documents, 2)
	assert.Len(t, f.index.Lookup("Built-in Types"), 1)
	assert.Equal(t, 3, f.index.Len())
}

func TestService_ImportErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := "mem://localhost/importer/errors/types.js"
	f.upload(t, existing, typesJS)

	testCases := []struct {
		description string
		URLs        []string
	}{
		{description: "missing source", URLs: []string{existing, "mem://localhost/importer/errors/missing.js"}},
		{description: "no sources"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			summary, err := f.service.Import(ctx, tc.URLs...)
			assert.Error(t, err)
			assert.Nil(t, summary)
			notes, _ := f.notes.List(ctx)
			assert.Empty(t, notes)
			assert.Equal(t, 0, f.index.Len())
		})
	}
	_, err := f.service.Import(ctx, "mem://localhost/importer/errors/missing.js")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestService_ImportUnterminated(t *testing.T) {
	f := newFixture(t)
	URL := "mem://localhost/importer/unterminated/open.js"
	f.upload(t, URL, []byte("/* Heading\n\nbody"))
	summary, err := f.service.Import(context.Background(), URL)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 1, summary.Unterminated)
	assert.Equal(t, 1, summary.Notes)
	ids := f.index.Lookup("heading")
	if assert.Len(t, ids, 1) {
		n, err := f.notes.Load(context.Background(), ids[0])
		assert.NoError(t, err)
		assert.Equal(t, "body", n.Body)
	}
}

func TestService_Reimport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	URL := "mem://localhost/importer/reimport/a.js"
	other := "mem://localhost/importer/reimport/b.js"
	f.upload(t, URL, []byte("/*\nFirst\n\nalpha\n*/\n/*\nShared\n\ncommon\n*/"))
	f.upload(t, other, []byte("/*\nShared\n\ncommon\n*/"))
	_, err := f.service.Import(ctx, URL, other)
	if !assert.NoError(t, err) {
		return
	}
	assert.Len(t, f.index.Lookup("first"), 1)

	f.upload(t, URL, []byte("/*\nSecond\n\nbeta\n*/"))
	summary, err := f.service.Import(ctx, URL)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 2, summary.Stale)
	assert.Empty(t, f.index.Lookup("first"))
	assert.Len(t, f.index.Lookup("second"), 1)

	shared := f.index.Lookup("shared")
	if assert.Len(t, shared, 1) {
		n, err := f.notes.Load(ctx, shared[0])
		assert.NoError(t, err)
		assert.Equal(t, []string{other}, n.Sources)
	}
	notes, _ := f.notes.List(ctx)
	assert.Len(t, notes, 2)
}

func TestService_ImportEvents(t *testing.T) {
	ctx := context.Background()
	publisher := event.NewPublisher[Summary](memory.NewQueue[event.Event[Summary]](memory.DefaultConfig()))
	f := newFixture(t, WithPublisher(publisher), WithExtensions(".js"))
	URL := "mem://localhost/importer/events/types.js"
	f.upload(t, URL, typesJS)

	_, err := f.service.Import(ctx, URL)
	assert.NoError(t, err)
	_, err = f.service.Import(ctx, "mem://localhost/importer/events/missing.js")
	assert.Error(t, err)

	imported, err := publisher.Consume(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, event.TypeImported, imported.Context.Type)
		assert.Equal(t, 3, imported.Data.Notes)
		assert.Equal(t, imported.Data.RunID, imported.Context.RunID)
	}
	failed, err := publisher.Consume(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, event.TypeFailed, failed.Context.Type)
	}
}

package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/service/dao"
	"github.com/viant/notestore/service/dao/document"
	"github.com/viant/notestore/service/dao/note"
	"github.com/viant/notestore/service/dao/store"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/importer"
	"github.com/viant/notestore/service/index"
	"github.com/viant/notestore/service/messaging"
	fsqueue "github.com/viant/notestore/service/messaging/fs"
	"github.com/viant/notestore/service/parser"
	"github.com/viant/notestore/service/revision"
	"github.com/viant/notestore/tracing"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no note or document matches
	ErrNotFound = dao.ErrNotFound
	// ErrInvalidQuery is returned for blank headings and search queries
	ErrInvalidQuery = errors.New("invalid query")
)

// Store sub folders used by the fs backend
const (
	notesFolder     = "notes"
	documentsFolder = "documents"
	eventsFolder    = "events"
	databaseFile    = "notestore.db"
)

// SearchResult represents a ranked note
type SearchResult struct {
	Note  *model.Note `json:"note"`
	Score int         `json:"score"`
}

// Service represents note store
type Service struct {
	config    *Config
	fs        afs.Service
	fsOptions []storage.Option
	logger    *zap.Logger
	parser    *parser.Parser
	notes     dao.Service[string, model.Note]
	documents dao.Service[string, model.Document]
	index     *index.Index
	queue     messaging.Queue[event.Event[importer.Summary]]
	importer  *importer.Service
	db        *sql.DB
	setupErr  error
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Events returns a publisher over the import event queue, or nil when no
// queue is configured
func (s *Service) Events() *event.Publisher[importer.Summary] {
	if s.queue == nil {
		return nil
	}
	return event.NewPublisher(s.queue)
}

// Import imports note files or folders
func (s *Service) Import(ctx context.Context, URLs ...string) (*importer.Summary, error) {
	return s.importer.Import(ctx, URLs...)
}

// Lookup returns notes with the supplied heading, most complete first
func (s *Service) Lookup(ctx context.Context, heading string) (ret []*model.Note, err error) {
	ctx, span := tracing.StartSpan(ctx, "notestore.Lookup", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()
	if strings.TrimSpace(heading) == "" {
		return nil, fmt.Errorf("%w: empty heading", ErrInvalidQuery)
	}
	notes, err := s.load(ctx, s.index.Lookup(heading))
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("heading %q: %w", heading, ErrNotFound)
	}
	notes.SortByCompleteness()
	return notes, nil
}

// Resolve returns the most complete note with the supplied heading
func (s *Service) Resolve(ctx context.Context, heading string) (*model.Note, error) {
	notes, err := s.Lookup(ctx, heading)
	if err != nil {
		return nil, err
	}
	return notes[0], nil
}

// Prefix returns headings starting with prefix
func (s *Service) Prefix(_ context.Context, prefix string) ([]string, error) {
	return s.index.Prefix(prefix), nil
}

// Search returns notes containing every query term, best first. A limit of
// zero or less returns all matches.
func (s *Service) Search(ctx context.Context, query string, limit int) (ret []*SearchResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "notestore.Search", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()
	if len(index.Terms(query)) == 0 {
		return nil, fmt.Errorf("%w: no search terms in %q", ErrInvalidQuery, query)
	}
	hits := s.index.Search(query)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for _, hit := range hits {
		n, err := s.notes.Load(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ret = append(ret, &SearchResult{Note: n, Score: hit.Score})
	}
	span.WithCount("hits", len(ret))
	return ret, nil
}

// List returns notes matching parameters ordered by chapter and source line
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Note, error) {
	notes, err := s.notes.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	ret := model.Notes(notes)
	ret.SortByPosition()
	return ret, nil
}

// Note returns note by ID
func (s *Service) Note(ctx context.Context, id string) (*model.Note, error) {
	ret, err := s.notes.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("note %s: %w", id, err)
	}
	return ret, nil
}

// Documents returns imported documents ordered by URL
func (s *Service) Documents(ctx context.Context) ([]*model.Document, error) {
	ret, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].URL < ret[j].URL })
	return ret, nil
}

// Lineage checks that the supplied documents, or all documents when none are
// given, form a chain where each one extends the previous one
func (s *Service) Lineage(ctx context.Context, URLs ...string) (*revision.Chain, error) {
	var documents []*model.Document
	if len(URLs) == 0 {
		all, err := s.Documents(ctx)
		if err != nil {
			return nil, err
		}
		documents = all
	}
	for _, URL := range URLs {
		doc, err := s.document(ctx, URL)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return revision.Lineage(documents)
}

// Compare compares two imported documents
func (s *Service) Compare(ctx context.Context, prevURL, nextURL string) (*revision.Comparison, error) {
	prev, err := s.document(ctx, prevURL)
	if err != nil {
		return nil, err
	}
	next, err := s.document(ctx, nextURL)
	if err != nil {
		return nil, err
	}
	return revision.Compare(prev, next)
}

// Reindex rebuilds the in-memory index from the note DAO
func (s *Service) Reindex(ctx context.Context) error {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}
	s.index.Reset()
	for _, n := range notes {
		s.index.Add(n)
	}
	s.logger.Debug("reindexed notes", zap.Int("notes", len(notes)))
	return nil
}

// Close releases the SQLite database when the sqlite store is used
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Service) document(ctx context.Context, URL string) (*model.Document, error) {
	URL = url.Normalize(URL, file.Scheme)
	ret, err := s.documents.Load(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", URL, err)
	}
	return ret, nil
}

func (s *Service) load(ctx context.Context, ids []string) (model.Notes, error) {
	var ret model.Notes
	for _, id := range ids {
		n, err := s.notes.Load(ctx, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ret = append(ret, n)
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	if s.setupErr != nil {
		return s.setupErr
	}
	cfg := s.config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Tracing.Enabled {
		if err := tracing.Init(cfg.Tracing.ServiceName, "", cfg.Tracing.Output); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	var err error
	if s.parser, err = parser.New(
		parser.WithChapterPattern(cfg.Parser.ChapterPattern),
		parser.WithMaxHeadingLength(cfg.Parser.MaxHeadingLength)); err != nil {
		return err
	}
	if err = s.ensureStore(ctx); err != nil {
		return err
	}
	var publisher *event.Publisher[importer.Summary]
	if s.queue != nil {
		publisher = event.NewPublisher(s.queue)
	}
	s.importer = importer.New(s.parser, s.notes, s.documents, s.index,
		importer.WithFs(s.fs),
		importer.WithFsOptions(s.fsOptions...),
		importer.WithLogger(s.logger.Named("importer")),
		importer.WithWorkers(cfg.Import.Workers),
		importer.WithExtensions(cfg.Import.Extensions...),
		importer.WithPublisher(publisher))
	return s.Reindex(ctx)
}

func (s *Service) ensureStore(ctx context.Context) error {
	var err error
	switch s.config.Store.Kind {
	case StoreKindFs:
		baseURL := s.config.Store.BaseURL
		logger := s.logger.Named("store")
		if s.notes == nil {
			if s.notes, err = note.NewFs(ctx, s.fs, url.Join(baseURL, notesFolder), logger); err != nil {
				return err
			}
		}
		if s.documents == nil {
			if s.documents, err = document.NewFs(ctx, s.fs, url.Join(baseURL, documentsFolder), logger); err != nil {
				return err
			}
		}
		if s.queue == nil {
			if s.queue, err = fsqueue.NewQueue[event.Event[importer.Summary]](ctx, s.fs, fsqueue.DefaultConfig(url.Join(baseURL, eventsFolder))); err != nil {
				return err
			}
		}
	case StoreKindSQLite:
		baseURL := url.Normalize(s.config.Store.BaseURL, file.Scheme)
		logger := s.logger.Named("store")
		if s.notes == nil || s.documents == nil {
			location := filepath.Join(url.Path(baseURL), databaseFile)
			if s.db, err = store.OpenSQL(location); err != nil {
				return err
			}
		}
		if s.notes == nil {
			if s.notes, err = note.NewSQL(ctx, s.db, logger); err != nil {
				return err
			}
		}
		if s.documents == nil {
			if s.documents, err = document.NewSQL(ctx, s.db, logger); err != nil {
				return err
			}
		}
		if s.queue == nil {
			if s.queue, err = fsqueue.NewQueue[event.Event[importer.Summary]](ctx, s.fs, fsqueue.DefaultConfig(url.Join(baseURL, eventsFolder))); err != nil {
				return err
			}
		}
	default:
		if s.notes == nil {
			s.notes = note.NewMemory()
		}
		if s.documents == nil {
			s.documents = document.NewMemory()
		}
	}
	return nil
}

// New creates a service with DefaultConfig
func New(options ...Option) (*Service, error) {
	return NewFromConfig(DefaultConfig(), options...)
}

// NewFromConfig creates a service from config; options take precedence over
// config values. The index is rebuilt from the store before returning.
func NewFromConfig(cfg *Config, options ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clone := *cfg
	clone.Import.Extensions = append([]string(nil), cfg.Import.Extensions...)
	ret := &Service{
		config: &clone,
		fs:     afs.New(),
		logger: zap.NewNop(),
		index:  index.New(),
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(context.Background()); err != nil {
		_ = ret.Close()
		return nil, err
	}
	return ret, nil
}

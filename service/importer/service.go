// Package importer reads note sources through afs, parses them concurrently
// and persists the merged documents and notes.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/notestore/internal/clock"
	"github.com/viant/notestore/internal/idgen"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/progress"
	"github.com/viant/notestore/service/dao"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/index"
	"github.com/viant/notestore/service/parser"
	"github.com/viant/notestore/tracing"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWorkers bounds concurrent source parsing
	DefaultWorkers = 4
	serviceName    = "importer"
)

// DefaultExtensions lists file extensions imported from folders
var DefaultExtensions = []string{".js", ".txt", ".md"}

// ErrSourceNotFound is returned when an import URL does not exist
var ErrSourceNotFound = errors.New("source not found")

// Service imports note sources
type Service struct {
	fs         afs.Service
	fsOptions  []storage.Option
	parser     *parser.Parser
	notes      dao.Service[string, model.Note]
	documents  dao.Service[string, model.Document]
	index      *index.Index
	publisher  *event.Publisher[Summary]
	logger     *zap.Logger
	workers    int
	extensions []string
}

type parsed struct {
	document *model.Document
	notes    []*model.Note
}

// Import imports files or folders. Either every source is parsed and saved,
// or an error is returned and nothing is saved.
func (s *Service) Import(ctx context.Context, URLs ...string) (summary *Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "importer.Import", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	summary = &Summary{RunID: idgen.New(), URLs: URLs, StartedAt: clock.Now()}
	logger := s.logger.With(zap.String("runID", summary.RunID))
	if len(URLs) == 0 {
		return nil, fmt.Errorf("no source URLs")
	}
	files, err := s.resolve(ctx, URLs)
	if err != nil {
		s.notify(ctx, summary, event.TypeFailed, logger)
		return nil, err
	}
	if tracker, ok := progress.FromContext(ctx); ok {
		tracker.SetRunID(summary.RunID)
		tracker.Update(progress.Delta{Files: len(files)})
	}
	results, err := s.parseAll(ctx, files)
	if err != nil {
		s.notify(ctx, summary, event.TypeFailed, logger)
		return nil, err
	}
	if err = s.persist(ctx, results, summary, logger); err != nil {
		s.notify(ctx, summary, event.TypeFailed, logger)
		return nil, err
	}
	summary.CompletedAt = clock.Now()
	span.WithAttributes(map[string]string{"runID": summary.RunID}).
		WithCount("documents", len(summary.Documents)).
		WithCount("notes", summary.Notes)
	logger.Info("imported notes",
		zap.Int("documents", len(summary.Documents)),
		zap.Int("notes", summary.Notes),
		zap.Int("duplicates", summary.Duplicates),
		zap.Duration("elapsed", summary.Elapsed()))
	s.notify(ctx, summary, event.TypeImported, logger)
	return summary, nil
}

// resolve expands folders into sorted, unique file URLs
func (s *Service) resolve(ctx context.Context, URLs []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	for _, URL := range URLs {
		URL = url.Normalize(URL, file.Scheme)
		exists, err := s.fs.Exists(ctx, URL, s.fsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", URL, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, URL)
		}
		object, err := s.fs.Object(ctx, URL, s.fsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", URL, err)
		}
		if !object.IsDir() {
			if !seen[URL] {
				seen[URL] = true
				files = append(files, URL)
			}
			continue
		}
		found, err := s.walk(ctx, URL, map[string]bool{})
		if err != nil {
			return nil, err
		}
		for _, candidate := range found {
			if !seen[candidate] {
				seen[candidate] = true
				files = append(files, candidate)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Service) walk(ctx context.Context, URL string, visited map[string]bool) ([]string, error) {
	visited[strings.TrimRight(URL, "/")] = true
	objects, err := s.fs.List(ctx, URL, s.fsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", URL, err)
	}
	var ret []string
	for _, object := range objects {
		objectURL := url.Normalize(object.URL(), file.Scheme)
		if object.IsDir() {
			// listings include the folder itself
			if visited[strings.TrimRight(objectURL, "/")] {
				continue
			}
			nested, err := s.walk(ctx, objectURL, visited)
			if err != nil {
				return nil, err
			}
			ret = append(ret, nested...)
			continue
		}
		if s.matchesExtension(object.Name()) {
			ret = append(ret, objectURL)
		}
	}
	return ret, nil
}

func (s *Service) matchesExtension(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, candidate := range s.extensions {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

// parseAll downloads and parses files with bounded concurrency, keeping input
// order in the result
func (s *Service) parseAll(ctx context.Context, files []string) ([]*parsed, error) {
	results := make([]*parsed, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)
	for i, URL := range files {
		i, URL := i, URL
		group.Go(func() error {
			ret, err := s.parse(groupCtx, URL)
			if err != nil {
				progress.UpdateCtx(ctx, progress.Delta{Failed: 1})
				return err
			}
			progress.UpdateCtx(ctx, progress.Delta{Parsed: 1, Notes: len(ret.notes)})
			results[i] = ret
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) parse(ctx context.Context, URL string) (ret *parsed, err error) {
	ctx, span := tracing.StartSpan(ctx, "importer.parse", tracing.KindInternal)
	span.WithAttributes(map[string]string{"url": URL})
	defer func() { tracing.EndSpan(span, err) }()

	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", URL, err)
	}
	document, notes, err := s.parser.Parse(URL, data)
	if err != nil {
		return nil, err
	}
	span.WithCount("notes", len(notes))
	return &parsed{document: document, notes: notes}, nil
}

// persist merges parsed notes by ID, retires notes no longer present in a
// re-imported document, then saves documents followed by notes.
func (s *Service) persist(ctx context.Context, results []*parsed, summary *Summary, logger *zap.Logger) error {
	now := clock.Now()
	merged := map[string]*model.Note{}
	var order []string
	for _, result := range results {
		document := result.document
		document.ImportedAt = now
		summary.Documents = append(summary.Documents, document.URL)
		if document.Unterminated > 0 {
			summary.Unterminated += document.Unterminated
			logger.Warn("unterminated block comment", zap.String("url", document.URL), zap.Int("blocks", document.Unterminated))
		}
		for _, note := range result.notes {
			if existing, ok := merged[note.ID]; ok {
				if existing.AddSource(document.URL) {
					summary.Duplicates++
				}
				continue
			}
			note.ImportedAt = now
			merged[note.ID] = note
			order = append(order, note.ID)
		}
	}

	for _, id := range order {
		note := merged[id]
		previous, err := s.notes.Load(ctx, id)
		if err != nil {
			if !errors.Is(err, dao.ErrNotFound) {
				return fmt.Errorf("failed to load note %s: %w", id, err)
			}
			continue
		}
		for _, source := range previous.Sources {
			note.AddSource(source)
		}
	}

	stale, err := s.retire(ctx, results, merged)
	if err != nil {
		return err
	}
	summary.Stale = len(stale)

	for _, result := range results {
		if err := s.documents.Save(ctx, result.document); err != nil {
			return fmt.Errorf("failed to save document %s: %w", result.document.URL, err)
		}
	}
	for _, note := range stale {
		if len(note.Sources) > 0 {
			if err := s.notes.Save(ctx, note); err != nil {
				return fmt.Errorf("failed to save note %s: %w", note.ID, err)
			}
			s.index.Add(note)
			continue
		}
		if err := s.notes.Delete(ctx, note.ID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			return fmt.Errorf("failed to delete note %s: %w", note.ID, err)
		}
		s.index.Remove(note.ID)
	}
	for _, id := range order {
		note := merged[id]
		if err := s.notes.Save(ctx, note); err != nil {
			return fmt.Errorf("failed to save note %s: %w", note.ID, err)
		}
		s.index.Add(note)
	}
	summary.Notes = len(order)
	return nil
}

// retire detaches re-imported documents from notes they no longer contain
func (s *Service) retire(ctx context.Context, results []*parsed, merged map[string]*model.Note) ([]*model.Note, error) {
	var ret []*model.Note
	retired := map[string]*model.Note{}
	for _, result := range results {
		URL := result.document.URL
		previous, err := s.documents.Load(ctx, URL)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load document %s: %w", URL, err)
		}
		for _, id := range previous.NoteIDs {
			if note, ok := merged[id]; ok {
				if !containsID(result.document.NoteIDs, id) {
					note.RemoveSource(URL)
				}
				continue
			}
			note, ok := retired[id]
			if !ok {
				if note, err = s.notes.Load(ctx, id); err != nil {
					if errors.Is(err, dao.ErrNotFound) {
						continue
					}
					return nil, fmt.Errorf("failed to load note %s: %w", id, err)
				}
				retired[id] = note
				ret = append(ret, note)
			}
			note.RemoveSource(URL)
		}
	}
	return ret, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (s *Service) notify(ctx context.Context, summary *Summary, eventType string, logger *zap.Logger) {
	if s.publisher == nil {
		return
	}
	if summary.CompletedAt.IsZero() {
		summary.CompletedAt = clock.Now()
	}
	evt := event.NewEvent(&event.Context{
		RunID:       summary.RunID,
		Type:        eventType,
		Service:     serviceName,
		TimeTakenMs: int(summary.Elapsed() / time.Millisecond),
	}, *summary)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.Warn("failed to publish import event", zap.String("type", eventType), zap.Error(err))
	}
}

// New creates an importer
func New(p *parser.Parser, notes dao.Service[string, model.Note], documents dao.Service[string, model.Document], idx *index.Index, options ...Option) *Service {
	ret := &Service{
		fs:         afs.New(),
		parser:     p,
		notes:      notes,
		documents:  documents,
		index:      idx,
		logger:     zap.NewNop(),
		workers:    DefaultWorkers,
		extensions: DefaultExtensions,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

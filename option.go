package notestore

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/notestore/model"
	"github.com/viant/notestore/service/dao"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/importer"
	"github.com/viant/notestore/service/messaging"
	"github.com/viant/notestore/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Option represents service option
type Option func(s *Service)

// WithLogger sets the logger shared by all services
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNoteDAO sets the note DAO
func WithNoteDAO(notes dao.Service[string, model.Note]) Option {
	return func(s *Service) {
		s.notes = notes
	}
}

// WithDocumentDAO sets the document DAO
func WithDocumentDAO(documents dao.Service[string, model.Document]) Option {
	return func(s *Service) {
		s.documents = documents
	}
}

// WithQueue sets the queue receiving import events
func WithQueue(queue messaging.Queue[event.Event[importer.Summary]]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithFs sets the file system used to read sources and fs stores
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithFsOptions sets storage options used when reading sources, for example
// an embed.FS backing embed:// URLs
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// WithWorkers overrides import.workers
func WithWorkers(workers int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.config.Import.Workers = workers
		}
	}
}

// WithExtensions overrides import.extensions
func WithExtensions(extensions ...string) Option {
	return func(s *Service) {
		if len(extensions) > 0 {
			s.config.Import.Extensions = extensions
		}
	}
}

// WithTracing configures OpenTelemetry tracing with the stdout exporter. If
// outputFile is empty spans are written to os.Stdout.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.setupErr = err
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing with a custom exporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.setupErr = err
		}
	}
}

package importer

import (
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/notestore/service/event"
	"go.uber.org/zap"
)

// Option represents importer option
type Option func(s *Service)

// WithFs sets the file system used to read sources
func WithFs(fs afs.Service) Option {
	return func(s *Service) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithFsOptions sets storage options passed to every file system call,
// for example an embed.FS backing embed:// URLs
func WithFsOptions(options ...storage.Option) Option {
	return func(s *Service) {
		s.fsOptions = options
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkers sets the number of sources parsed concurrently
func WithWorkers(workers int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithExtensions sets file extensions imported from folders
func WithExtensions(extensions ...string) Option {
	return func(s *Service) {
		if len(extensions) > 0 {
			s.extensions = extensions
		}
	}
}

// WithPublisher sets the publisher notified after each run
func WithPublisher(publisher *event.Publisher[Summary]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

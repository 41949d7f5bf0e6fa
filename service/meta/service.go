// Package meta loads YAML or JSON resources through afs, expanding
// ${env.KEY} expressions before decoding.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service represents meta resource loader
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// Load loads URL into target. Relative URLs are resolved against base URL.
// Files with .json extension are decoded as JSON, anything else as YAML.
func (s *Service) Load(ctx context.Context, URL string, target any) error {
	URL = s.URL(URL)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", URL, err)
	}
	expanded := []byte(expandEnvExpr(string(data)))
	switch strings.ToLower(path.Ext(url.Path(URL))) {
	case ".json":
		err = json.Unmarshal(expanded, target)
	default:
		err = yaml.Unmarshal(expanded, target)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// Exists returns true if resource exists
func (s *Service) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(URL), s.fsOptions...)
}

// URL returns resource URL
func (s *Service) URL(URL string) string {
	if url.IsRelative(URL) && s.baseURL != "" {
		return url.Join(s.baseURL, URL)
	}
	return url.Normalize(URL, file.Scheme)
}

// New creates a meta service, options are passed to every file system call
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

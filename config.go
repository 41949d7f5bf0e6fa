package notestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/notestore/service/importer"
	"github.com/viant/notestore/service/meta"
	"github.com/viant/notestore/service/parser"
	"go.uber.org/zap/zapcore"
)

// Store kinds
const (
	StoreKindMemory = "memory"
	StoreKindFs     = "fs"
	StoreKindSQLite = "sqlite"
)

// Config is a serialisable representation of the service configuration. It
// can be loaded from YAML or JSON with LoadConfig.
type Config struct {
	Store   StoreConfig   `json:"store" yaml:"store"`
	Parser  ParserConfig  `json:"parser" yaml:"parser"`
	Import  ImportConfig  `json:"import" yaml:"import"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// StoreConfig selects the note and document storage backend
type StoreConfig struct {
	Kind    string `json:"kind" yaml:"kind"`
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// ParserConfig controls heading detection
type ParserConfig struct {
	ChapterPattern   string `json:"chapterPattern,omitempty" yaml:"chapterPattern,omitempty"`
	MaxHeadingLength int    `json:"maxHeadingLength" yaml:"maxHeadingLength"`
}

// ImportConfig controls source import
type ImportConfig struct {
	Workers    int      `json:"workers" yaml:"workers"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// TracingConfig configures the stdout OpenTelemetry exporter
type TracingConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultConfig returns a Config populated with package defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{Kind: StoreKindMemory},
		Parser: ParserConfig{
			ChapterPattern:   parser.DefaultChapterPattern,
			MaxHeadingLength: parser.DefaultMaxHeadingLength,
		},
		Import: ImportConfig{
			Workers:    importer.DefaultWorkers,
			Extensions: append([]string(nil), importer.DefaultExtensions...),
		},
		Tracing: TracingConfig{ServiceName: "notestore"},
		Log:     LogConfig{Level: "info"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	switch c.Store.Kind {
	case StoreKindMemory:
	case StoreKindFs, StoreKindSQLite:
		if c.Store.BaseURL == "" {
			errs = append(errs, fmt.Errorf("store.baseURL is required for %q store", c.Store.Kind))
		} else if c.Store.Kind == StoreKindSQLite && strings.Contains(c.Store.BaseURL, "://") && !strings.HasPrefix(c.Store.BaseURL, file.Scheme+"://") {
			errs = append(errs, fmt.Errorf("store.baseURL must be a local path for %q store", StoreKindSQLite))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.kind: %q", c.Store.Kind))
	}
	if c.Parser.ChapterPattern != "" {
		if _, err := regexp.Compile(c.Parser.ChapterPattern); err != nil {
			errs = append(errs, fmt.Errorf("invalid parser.chapterPattern: %w", err))
		}
	}
	if c.Parser.MaxHeadingLength <= 0 {
		errs = append(errs, fmt.Errorf("parser.maxHeadingLength must be > 0"))
	}
	if c.Import.Workers <= 0 {
		errs = append(errs, fmt.Errorf("import.workers must be > 0"))
	}
	for _, ext := range c.Import.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("import.extensions: %q must start with '.'", ext))
		}
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("invalid log.level: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig loads a YAML or JSON configuration over DefaultConfig and
// validates it. ${env.KEY} expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(afs.New(), "", options...).Load(ctx, URL, ret); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}

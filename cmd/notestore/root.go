package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/notestore"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/importer"
	"github.com/viant/notestore/service/messaging"
	"github.com/viant/notestore/service/messaging/memory"
	"github.com/viant/notestore/tracing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cli holds global flags and the service shared by sub commands
type cli struct {
	configURL string
	storeURL  string
	storeKind string
	verbose   bool
	asJSON    bool
	imports   []string
	watching  bool

	logger  *zap.Logger
	queue   messaging.Queue[event.Event[importer.Summary]]
	service *notestore.Service
}

func newRootCmd() *cobra.Command {
	return newCommand(&cli{})
}

func newCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "notestore",
		Short: "Study-note store",
		Long: `notestore splits comment blocks of note files into heading-scoped notes
and looks them up by heading, heading prefix, terms or criteria.

Without --store notes are kept in memory; use --import to load sources for
the query command in the same invocation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.service != nil {
				_ = c.service.Close()
			}
			_ = tracing.Shutdown(context.Background())
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&c.configURL, "config", "c", "", "Configuration URL (yaml or json)")
	flags.StringVarP(&c.storeURL, "store", "s", "", "Store base URL (default: in memory)")
	flags.StringVar(&c.storeKind, "store-kind", notestore.StoreKindFs, "Store kind used with --store: fs or sqlite")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&c.asJSON, "json", false, "Print JSON output")
	flags.StringArrayVarP(&c.imports, "import", "i", nil, "Source URL imported before the command runs (repeatable)")

	root.AddCommand(
		c.importCmd(),
		c.lookupCmd(),
		c.prefixCmd(),
		c.searchCmd(),
		c.listCmd(),
		c.showCmd(),
		c.documentsCmd(),
		c.lineageCmd(),
		c.diffCmd(),
		c.eventsCmd(),
		c.watchCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := notestore.DefaultConfig()
	if c.configURL != "" {
		var err error
		if cfg, err = notestore.LoadConfig(ctx, c.configURL); err != nil {
			return err
		}
	}
	if c.storeURL != "" {
		cfg.Store = notestore.StoreConfig{Kind: c.storeKind, BaseURL: c.storeURL}
	}

	zapConfig := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil && cfg.Log.Level != "" {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	if c.verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if c.logger == nil {
		logger, err := zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		c.logger = logger
	}

	if c.watching && c.queue == nil && cfg.Store.Kind == notestore.StoreKindMemory {
		c.queue = memory.NewQueue[event.Event[importer.Summary]](memory.DefaultConfig())
	}
	options := []notestore.Option{notestore.WithLogger(c.logger)}
	if c.queue != nil {
		options = append(options, notestore.WithQueue(c.queue))
	}
	service, err := notestore.NewFromConfig(cfg, options...)
	if err != nil {
		return err
	}
	c.service = service
	if len(c.imports) > 0 {
		summary, err := service.Import(ctx, c.imports...)
		if err != nil {
			return err
		}
		c.logger.Debug("imported sources", zap.String("summary", summary.String()))
	}
	return nil
}

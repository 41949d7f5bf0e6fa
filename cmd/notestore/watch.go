package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/notestore/service/event"
	"github.com/viant/notestore/service/importer"
	"github.com/viant/notestore/service/watcher"
	"go.uber.org/zap"
)

func (c *cli) watchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Import local note files or folders, then re-import them on save",
		Args:  cobra.MinimumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.watching = true
			return c.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			p := c.printer(cmd)
			if publisher := c.service.Events(); publisher != nil {
				listener := event.NewListener(publisher, func(evt *event.Event[importer.Summary]) {
					p.line(fmt.Sprintf("%s %s", evt.Context.Type, evt.Data.String()))
				}, c.logger.Named("events"))
				listener.Start(ctx)
				defer listener.Stop()
			}
			if _, err := c.service.Import(ctx, args...); err != nil {
				return err
			}
			w, err := watcher.New(func(ctx context.Context, paths []string) error {
				_, err := c.service.Import(ctx, paths...)
				return err
			},
				watcher.WithDebounce(debounce),
				watcher.WithExtensions(c.service.Config().Import.Extensions...),
				watcher.WithLogger(c.logger.Named("watcher")))
			if err != nil {
				return err
			}
			if err = w.Add(args...); err != nil {
				_ = w.Close()
				return err
			}
			c.logger.Info("watching sources", zap.Strings("paths", args))
			return w.Run(ctx)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "Quiet period before re-importing saved files")
	return cmd
}

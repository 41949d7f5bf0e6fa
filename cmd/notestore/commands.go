package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/notestore/progress"
	"github.com/viant/notestore/service/dao"
	"go.uber.org/zap"
)

var errInconsistent = errors.New("lineage is inconsistent")

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <url>...",
		Short: "Import note files or folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _ := progress.WithNewTracker(cmd.Context(), func(s progress.Snapshot) {
				c.logger.Debug("import progress",
					zap.String("runID", s.RunID),
					zap.Int("files", s.Files),
					zap.Int("parsed", s.Parsed),
					zap.Int("notes", s.Notes))
			})
			summary, err := c.service.Import(ctx, args...)
			if err != nil {
				return err
			}
			return c.print(cmd, summary, func(p *printer) {
				p.line(summary.String())
				for _, URL := range summary.Documents {
					p.line("  " + URL)
				}
			})
		},
	}
}

func (c *cli) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <heading>",
		Short: "Print notes with the heading, most complete first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := c.service.Lookup(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return c.print(cmd, notes, func(p *printer) {
				for _, n := range notes {
					p.note(n, true)
				}
			})
		},
	}
}

func (c *cli) prefixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefix <prefix>",
		Short: "Print headings starting with the prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			headings, err := c.service.Prefix(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return c.print(cmd, headings, func(p *printer) {
				for _, heading := range headings {
					p.line(heading)
				}
			})
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Print notes containing every term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := c.service.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return c.print(cmd, results, func(p *printer) {
				for _, result := range results {
					p.line(fmt.Sprintf("%4d  %s  %s", result.Score, result.Note.ID, label(result.Note.Heading)))
				}
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results (0: all)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var sources []string
	var chapter, level int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print notes matching criteria ordered by position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parameters []*dao.Parameter
			if len(sources) > 0 {
				parameters = append(parameters, dao.NewParameter(dao.ParamSource, sources...))
			}
			if cmd.Flags().Changed("chapter") {
				parameters = append(parameters, dao.NewIntParameter(dao.ParamChapter, chapter))
			}
			if cmd.Flags().Changed("level") {
				parameters = append(parameters, dao.NewIntParameter(dao.ParamLevel, level))
			}
			notes, err := c.service.List(cmd.Context(), parameters...)
			if err != nil {
				return err
			}
			return c.print(cmd, notes, func(p *printer) {
				for _, n := range notes {
					p.note(n, false)
				}
			})
		},
	}
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Source URL")
	cmd.Flags().IntVar(&chapter, "chapter", 0, "Chapter number")
	cmd.Flags().IntVar(&level, "level", 0, "Heading level (0 preamble, 1 chapter, 2 section)")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.service.Note(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(cmd, n, func(p *printer) { p.note(n, true) })
		},
	}
}

func (c *cli) documentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "Print imported documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := c.service.Documents(cmd.Context())
			if err != nil {
				return err
			}
			if c.asJSON {
				for _, doc := range documents {
					doc.Text = ""
				}
			}
			return c.print(cmd, documents, func(p *printer) {
				for _, doc := range documents {
					p.line(fmt.Sprintf("%s  blocks=%d notes=%d size=%d", doc.URL, doc.Blocks, len(doc.NoteIDs), doc.Size))
				}
			})
		},
	}
}

func (c *cli) lineageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage [url...]",
		Short: "Check that each document extends the previous one",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := c.service.Lineage(cmd.Context(), args...)
			if err != nil {
				return err
			}
			err = c.print(cmd, chain, func(p *printer) {
				for _, link := range chain.Links {
					verdict := "extends"
					if !link.PrefixSuperset {
						verdict = "BREAKS"
					}
					p.line(fmt.Sprintf("%s %s %s (+%d ~%d -%d)", link.To, verdict, link.From, link.Stats.Added, link.Stats.Changed, link.Stats.Deleted))
				}
				p.line("head: " + chain.Head)
			})
			if err != nil {
				return err
			}
			if !chain.Consistent {
				return errInconsistent
			}
			return nil
		},
	}
}

func (c *cli) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <prev> <next>",
		Short: "Print unified diff of two documents and the prefix verdict",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comparison, err := c.service.Compare(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return c.print(cmd, comparison, func(p *printer) {
				if comparison.Diff != "" {
					p.raw(comparison.Diff)
				}
				p.line(fmt.Sprintf("prefix-superset: %v, identical: %v, common lines: %d", comparison.PrefixSuperset, comparison.Identical, comparison.CommonPrefixLines))
			})
		},
	}
}

func (c *cli) eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Drain pending import events of the filesystem store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher := c.service.Events()
			if publisher == nil {
				return fmt.Errorf("no event queue configured, use --store")
			}
			p := c.printer(cmd)
			for {
				evt, err := publisher.Consume(cmd.Context())
				if err != nil {
					return err
				}
				if evt == nil {
					return nil
				}
				if c.asJSON {
					if err = p.writeJSON(evt); err != nil {
						return err
					}
					continue
				}
				p.line(fmt.Sprintf("%s %s %s", evt.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), evt.Context.Type, evt.Data.String()))
			}
		},
	}
}

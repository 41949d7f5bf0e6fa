package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/notestore/model"
)

type printer struct {
	w io.Writer
}

func (c *cli) printer(cmd *cobra.Command) *printer {
	return &printer{w: cmd.OutOrStdout()}
}

// print writes v as JSON with --json, otherwise calls text
func (c *cli) print(cmd *cobra.Command, v any, text func(p *printer)) error {
	p := c.printer(cmd)
	if c.asJSON {
		return p.writeJSON(v)
	}
	text(p)
	return nil
}

func (p *printer) writeJSON(v any) error {
	encoder := json.NewEncoder(p.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (p *printer) line(text string) {
	fmt.Fprintln(p.w, text)
}

func (p *printer) raw(text string) {
	fmt.Fprint(p.w, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(p.w)
	}
}

func (p *printer) note(n *model.Note, body bool) {
	p.line(fmt.Sprintf("%s  %s  [%s]", n.ID, label(n.Heading), strings.Join(n.Path, " > ")))
	if !body {
		return
	}
	for _, source := range n.Sources {
		p.line(fmt.Sprintf("  %s:%d-%d", source, n.StartLine, n.EndLine))
	}
	if n.Body != "" {
		p.line("")
		p.raw(n.Body)
	}
	p.line("")
}

func label(heading string) string {
	if heading == "" {
		return "(preamble)"
	}
	return heading
}

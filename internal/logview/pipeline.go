// Package logview renders a bounded ancestor walk as a flat list or as a graph.
package logview

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/ctxlog"
	"github.com/masmgr/loggraph/internal/graph"
	"github.com/masmgr/loggraph/internal/history"
	"github.com/masmgr/loggraph/internal/output"
	"github.com/masmgr/loggraph/internal/templater"
)

// Drawer places graph nodes one at a time, in walk order.
type Drawer interface {
	Reserve(id history.ID, edges []graph.Edge) graph.Slot
	AddNode(slot graph.Slot, symbol, content string) error
}

// Warner receives non-fatal advisories for the user.
type Warner interface {
	Warnf(format string, args ...any)
}

// Args are the per-invocation options of a log run.
type Args struct {
	Limit           *int
	DeprecatedLimit *int
	NoGraph         bool
}

// Pipeline renders entries with a fixed set of templates and layout settings.
type Pipeline struct {
	Templates Bindings
	Format    output.ContentFormat
	Style     graph.Style
	Warn      Warner

	// NewDrawer creates the drawer for a graph run. Nil uses graph.New with Style.
	NewDrawer func(out io.Writer) (Drawer, error)
}

// Run walks the ancestors of heads and writes one block per entry to out.
// The first error stops the run; blocks already written stay written.
func (p *Pipeline) Run(ctx context.Context, out io.Writer, store history.Store, heads []history.ID, args Args) error {
	logger := ctxlog.FromContext(ctx)

	limit, warn := ResolveLimit(args.Limit, args.DeprecatedLimit)
	if limit < 0 && limit != Unbounded {
		return cmderr.Usage("limit must not be negative: %d", limit)
	}
	if warn && p.Warn != nil {
		p.Warn.Warnf("%s", DeprecatedLimitWarning)
	}

	stream := history.Take(history.WalkAncestors(store, heads), limit)
	defer stream.Close()

	var (
		count int
		err   error
	)
	if args.NoGraph {
		count, err = p.renderFlat(out, stream)
	} else {
		count, err = p.renderGraph(ctx, out, stream)
	}
	logger.Debug("log rendered", "entries", count, "graph", !args.NoGraph, "limit", limit, "heads", len(heads))
	return err
}

func (p *Pipeline) renderFlat(out io.Writer, stream history.Stream) (int, error) {
	count := 0
	for {
		e, err := next(stream)
		if err != nil || e == nil {
			return count, err
		}
		block, err := p.renderContent(e, p.Format)
		if err != nil {
			return count, err
		}
		if _, err := out.Write(block); err != nil {
			return count, cmderr.Wrap(cmderr.KindIO, err, "write output")
		}
		count++
	}
}

func (p *Pipeline) renderGraph(ctx context.Context, out io.Writer, stream history.Stream) (int, error) {
	logger := ctxlog.FromContext(ctx)
	drawer, err := p.drawer(out)
	if err != nil {
		return 0, cmderr.Wrap(cmderr.KindConfig, err, "")
	}

	count := 0
	for {
		e, err := next(stream)
		if err != nil || e == nil {
			return count, err
		}
		edges := graph.DirectEdges(e.Parents)
		slot := drawer.Reserve(e.ID, edges)
		logger.Debug("drawing entry", "id", e.ID.Short(12), "parents", len(e.Parents), "graph_width", slot.Width)

		block, err := p.renderContent(e, p.Format.SubWidth(slot.Width))
		if err != nil {
			return count, err
		}
		symbol, err := p.Templates.Node.RenderString(e)
		if err != nil {
			return count, classifyRender(err)
		}
		if err := drawer.AddNode(slot, symbol, string(block)); err != nil {
			var drawErr *graph.Error
			if errors.As(err, &drawErr) {
				return count, cmderr.Wrap(cmderr.KindDrawer, err, "")
			}
			return count, cmderr.Wrap(cmderr.KindIO, err, "write output")
		}
		count++
	}
}

func (p *Pipeline) drawer(out io.Writer) (Drawer, error) {
	if p.NewDrawer != nil {
		return p.NewDrawer(out)
	}
	return graph.New(p.Style, out)
}

// renderContent renders the content template for e within format and
// normalizes the result to end with exactly one newline.
func (p *Pipeline) renderContent(e *history.Entry, format output.ContentFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Write(&buf, func(w io.Writer) error {
		return p.Templates.Content.Render(e, w)
	}); err != nil {
		return nil, classifyRender(err)
	}
	return NormalizeBlock(buf.Bytes()), nil
}

// NormalizeBlock makes b end with exactly one newline.
func NormalizeBlock(b []byte) []byte {
	b = bytes.TrimRight(b, "\n")
	return append(b, '\n')
}

// next pulls one entry. It returns nil, nil at the end of the stream.
func next(stream history.Stream) (*history.Entry, error) {
	e, err := stream.Next()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, cmderr.Wrap(cmderr.KindStore, err, "")
	}
	return e, nil
}

func classifyRender(err error) error {
	var renderErr *templater.RenderError
	if errors.As(err, &renderErr) {
		return cmderr.Wrap(cmderr.KindTemplateRender, err, "")
	}
	return cmderr.Wrap(cmderr.KindIO, err, "")
}

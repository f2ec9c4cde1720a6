// Package graph draws a history graph one node at a time.
//
// Each node occupies a column; edges to parents that have not been drawn yet
// keep their column open until the parent's node is added. Callers reserve a
// slot for the next node, which tells them how many cells the graph needs on
// that node's rows, and then add the node with its content.
package graph

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/loggraph/internal/history"
)

// EdgeKind classifies the relationship between a node and one of its parents.
type EdgeKind int

const (
	// Direct connects a node to an immediate parent.
	Direct EdgeKind = iota
	// Indirect connects a node to an ancestor with hidden entries in between.
	Indirect
)

func (k EdgeKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Indirect:
		return "indirect"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge points from a node to one of its parents.
type Edge struct {
	Target history.ID
	Kind   EdgeKind
}

// DirectEdges returns one Direct edge per parent, in parent order.
func DirectEdges(parents []history.ID) []Edge {
	edges := make([]Edge, len(parents))
	for i, p := range parents {
		edges[i] = Edge{Target: p, Kind: Direct}
	}
	return edges
}

var (
	// ErrOutOfOrder is returned when a slot is not the drawer's next one.
	ErrOutOfOrder = errors.New("node added out of order")
	// ErrUnknownEdgeKind is returned for edges with an unsupported kind.
	ErrUnknownEdgeKind = errors.New("unknown edge kind")
)

// Error reports a misuse of the drawing protocol.
type Error struct {
	ID  history.ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("graph node %s: %v", e.ID.Short(12), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Slot is the drawer's reservation for the next node.
type Slot struct {
	Seq   int
	ID    history.ID
	Edges []Edge
	// Width is the number of cells the graph occupies on this node's rows,
	// including the separator before the content.
	Width int

	drawer *Drawer
}

// column holds the parent an open edge is waiting for. A zero column is free.
type column struct {
	target history.ID
	kind   EdgeKind
}

func (c column) free() bool {
	return c.target == ""
}

// Drawer renders nodes to w in the order they are added.
// A Drawer is not safe for concurrent use.
type Drawer struct {
	w       io.Writer
	glyphs  glyphs
	columns []column
	seq     int
}

// New returns a drawer writing rows in the given style to w.
func New(style Style, w io.Writer) (*Drawer, error) {
	g, ok := glyphTables[style]
	if !ok {
		return nil, fmt.Errorf("unknown graph style %q", style)
	}
	return &Drawer{w: w, glyphs: g}, nil
}

// Reserve returns the slot for the next node. It does not change the drawer;
// calling it again before AddNode returns an equivalent slot.
func (d *Drawer) Reserve(id history.ID, edges []Edge) Slot {
	l := d.layout(id, edges)
	return Slot{
		Seq:    d.seq,
		ID:     id,
		Edges:  append([]Edge(nil), edges...),
		Width:  l.width(),
		drawer: d,
	}
}

// AddNode draws the node reserved by slot. The first content line goes next
// to the node symbol; the remaining lines follow underneath, aligned with it.
// Content is expected to end with a single newline.
func (d *Drawer) AddNode(slot Slot, symbol, content string) error {
	if slot.drawer != d || slot.Seq != d.seq {
		return &Error{ID: slot.ID, Err: fmt.Errorf("%w: slot %d, expected %d", ErrOutOfOrder, slot.Seq, d.seq)}
	}
	for _, e := range slot.Edges {
		if e.Kind != Direct && e.Kind != Indirect {
			return &Error{ID: slot.ID, Err: fmt.Errorf("%w: %v", ErrUnknownEdgeKind, e.Kind)}
		}
	}

	l := d.layout(slot.ID, slot.Edges)
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	var b strings.Builder
	width := l.width()
	next := 0
	line := func() string {
		if next >= len(lines) {
			return ""
		}
		next++
		return lines[next-1]
	}

	writeRow(&b, d.nodeRow(l, symbol), width, line())
	if len(l.links) > 0 {
		writeRow(&b, d.linkRow(l), width, line())
	}
	for next < len(lines) {
		writeRow(&b, d.padRow(l.after), width, line())
	}

	if _, err := io.WriteString(d.w, b.String()); err != nil {
		return err
	}
	d.columns = l.after
	d.seq++
	return nil
}

func writeRow(b *strings.Builder, cells []string, width int, text string) {
	var row strings.Builder
	for _, c := range cells {
		row.WriteString(c)
	}
	for i := len(cells); i < width; i++ {
		row.WriteByte(' ')
	}
	row.WriteString(text)
	b.WriteString(strings.TrimRight(row.String(), " "))
	b.WriteByte('\n')
}

// layout is the column assignment for one node.
type layout struct {
	before []column // open columns, with a slot for the node when it needs one
	node   int
	after  []column
	links  []int // columns the node connects to other than its own
}

func (l layout) width() int {
	return 2*max(len(l.before), len(l.after)) + 1
}

func (d *Drawer) layout(id history.ID, edges []Edge) layout {
	before := append([]column(nil), d.columns...)
	node := -1
	for i, c := range before {
		if c.target == id {
			node = i
			break
		}
	}
	if node < 0 {
		node = firstFree(before, 0)
		if node == len(before) {
			before = append(before, column{})
		}
	}

	after := append([]column(nil), before...)
	after[node] = column{}

	var links []int
	for i, e := range edges {
		if j := indexOf(after, e.Target); j >= 0 {
			if j != node {
				links = appendUnique(links, j)
			}
			continue
		}
		if i == 0 {
			after[node] = column{target: e.Target, kind: e.Kind}
			continue
		}
		j := firstFree(after, node+1)
		if j == len(after) {
			after = append(after, column{})
		}
		after[j] = column{target: e.Target, kind: e.Kind}
		links = appendUnique(links, j)
	}

	for len(after) > 0 && after[len(after)-1].free() {
		after = after[:len(after)-1]
	}
	return layout{before: before, node: node, after: after, links: links}
}

func firstFree(cols []column, from int) int {
	for i := from; i < len(cols); i++ {
		if cols[i].free() {
			return i
		}
	}
	return len(cols)
}

func indexOf(cols []column, id history.ID) int {
	for i, c := range cols {
		if c.target == id {
			return i
		}
	}
	return -1
}

func appendUnique(xs []int, x int) []int {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}

func (d *Drawer) vertical(c column) string {
	if c.kind == Indirect {
		return d.glyphs.indirect
	}
	return d.glyphs.vertical
}

func (d *Drawer) nodeRow(l layout, symbol string) []string {
	cells := make([]string, 0, 2*len(l.before))
	for i, c := range l.before {
		switch {
		case i == l.node:
			cells = append(cells, symbol)
		case c.free():
			cells = append(cells, " ")
		default:
			cells = append(cells, d.vertical(c))
		}
		cells = append(cells, " ")
	}
	return cells
}

func (d *Drawer) linkRow(l layout) []string {
	n := max(len(l.before), len(l.after))
	grid := make([]cell, 2*n)
	for i := 0; i < n; i++ {
		var above, below column
		if i < len(l.before) {
			above = l.before[i]
		}
		if i < len(l.after) {
			below = l.after[i]
		}
		c := &grid[2*i]
		if i == l.node {
			c.up = true
		} else {
			c.up = !above.free()
		}
		c.down = !below.free()
		c.indirect = below.kind == Indirect
	}
	for _, target := range l.links {
		lo, hi := 2*l.node, 2*target
		if lo > hi {
			lo, hi = hi, lo
		}
		grid[lo].right = true
		grid[hi].left = true
		for p := lo + 1; p < hi; p++ {
			grid[p].left = true
			grid[p].right = true
		}
	}

	cells := make([]string, len(grid))
	for i, c := range grid {
		cells[i] = d.glyphs.draw(c)
	}
	return cells
}

func (d *Drawer) padRow(cols []column) []string {
	cells := make([]string, 0, 2*len(cols))
	for _, c := range cols {
		if c.free() {
			cells = append(cells, " ", " ")
			continue
		}
		cells = append(cells, d.vertical(c), " ")
	}
	return cells
}

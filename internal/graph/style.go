package graph

import (
	"fmt"
	"strings"
)

// Style selects the characters used to draw edges.
type Style string

const (
	StyleASCII  Style = "ascii"
	StyleCurved Style = "curved"
	StyleSquare Style = "square"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = StyleCurved

// ParseStyle validates a ui.graph.style value. An empty value selects DefaultStyle.
func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.ToLower(strings.TrimSpace(s))); st {
	case StyleASCII, StyleCurved, StyleSquare:
		return st, nil
	case "":
		return DefaultStyle, nil
	default:
		return "", fmt.Errorf("unknown graph style %q (want ascii, curved or square)", s)
	}
}

// IsASCII reports whether the style only uses ASCII characters.
func (s Style) IsASCII() bool {
	return s == StyleASCII
}

// glyphs maps connection shapes to characters. Names describe which
// neighbours a cell connects to.
type glyphs struct {
	vertical   string
	indirect   string
	horizontal string
	downLeft   string
	downRight  string
	upLeft     string
	upRight    string
	teeLeft    string // up, down, left
	teeRight   string // up, down, right
	teeDown    string // down, left, right
	teeUp      string // up, left, right
	cross      string
}

var glyphTables = map[Style]glyphs{
	StyleASCII: {
		vertical: "|", indirect: ":", horizontal: "-",
		downLeft: ".", downRight: ".", upLeft: "'", upRight: "'",
		teeLeft: "+", teeRight: "+", teeDown: "+", teeUp: "+", cross: "+",
	},
	StyleCurved: {
		vertical: "│", indirect: "┆", horizontal: "─",
		downLeft: "╮", downRight: "╭", upLeft: "╯", upRight: "╰",
		teeLeft: "┤", teeRight: "├", teeDown: "┬", teeUp: "┴", cross: "┼",
	},
	StyleSquare: {
		vertical: "│", indirect: "┆", horizontal: "─",
		downLeft: "┐", downRight: "┌", upLeft: "┘", upRight: "└",
		teeLeft: "┤", teeRight: "├", teeDown: "┬", teeUp: "┴", cross: "┼",
	},
}

// cell describes the connections of one character cell in a link row.
type cell struct {
	up, down, left, right bool
	indirect              bool
}

func (g glyphs) draw(c cell) string {
	vertical := g.vertical
	if c.indirect {
		vertical = g.indirect
	}
	switch {
	case c.up && c.down && c.left && c.right:
		return g.cross
	case c.up && c.down && c.left:
		return g.teeLeft
	case c.up && c.down && c.right:
		return g.teeRight
	case c.down && c.left && c.right:
		return g.teeDown
	case c.up && c.left && c.right:
		return g.teeUp
	case c.down && c.left:
		return g.downLeft
	case c.down && c.right:
		return g.downRight
	case c.up && c.left:
		return g.upLeft
	case c.up && c.right:
		return g.upRight
	case c.up || c.down:
		return vertical
	case c.left || c.right:
		return g.horizontal
	default:
		return " "
	}
}

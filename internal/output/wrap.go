package output

import (
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/rivo/uniseg"
)

// segment is one grapheme cluster or one ANSI escape sequence.
type segment struct {
	text  string
	width int
	space bool
}

// token is a run of segments that are all spaces or all non-spaces.
type token struct {
	segs  []segment
	width int
	space bool
}

func (t token) String() string {
	var b strings.Builder
	for _, s := range t.segs {
		b.WriteString(s.text)
	}
	return b.String()
}

// escapes returns only the escape sequences held by t.
func (t token) escapes() string {
	var b strings.Builder
	for _, s := range t.segs {
		if isEscape(s) {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

func isEscape(s segment) bool {
	return s.width == 0 && strings.HasPrefix(s.text, string(ansi.Marker))
}

// Wrap breaks s into lines no wider than width terminal cells.
//
// Lines are broken at spaces; words longer than width are split between
// grapheme clusters. Wide characters count as two cells, combining marks as
// zero, and ANSI escape sequences as zero. A tab advances to the next
// multiple of TabWidth; lines that need breaking get their tabs expanded to
// spaces. Existing newlines are kept. A width below one leaves s unchanged.
func Wrap(s string, width int) string {
	if width < 1 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

// TabWidth is the distance between tab stops.
const TabWidth = 8

// StringWidth returns the display width of s, ignoring ANSI escape sequences.
// Tabs are measured up to the next tab stop.
func StringWidth(s string) int {
	w := 0
	for _, seg := range segments(s) {
		if seg.text == "\t" {
			w += TabWidth - w%TabWidth
			continue
		}
		w += seg.width
	}
	return w
}

// expandTabs replaces each tab with spaces up to the next tab stop.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, seg := range segments(line) {
		if seg.text == "\t" {
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(seg.text)
		col += seg.width
	}
	return b.String()
}

func wrapLine(line string, width int) []string {
	if StringWidth(line) <= width {
		return []string{line}
	}
	line = expandTabs(line)

	var lines []string
	var cur strings.Builder
	curWidth := 0
	var pending token

	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curWidth = 0
	}

	for i, tok := range tokenize(segments(line)) {
		if tok.space {
			if i == 0 && tok.width < width {
				// Leading indentation is kept as part of the first line.
				cur.WriteString(tok.String())
				curWidth += tok.width
				continue
			}
			pending = tok
			continue
		}
		if tok.width == 0 {
			cur.WriteString(tok.String())
			continue
		}
		switch {
		case curWidth > 0 && curWidth+pending.width+tok.width > width:
			carry := pending.escapes()
			flush()
			cur.WriteString(carry)
		case curWidth > 0:
			cur.WriteString(pending.String())
			curWidth += pending.width
		default:
			cur.WriteString(pending.escapes())
		}
		pending = token{}
		if curWidth+tok.width <= width {
			cur.WriteString(tok.String())
			curWidth += tok.width
			continue
		}
		for _, seg := range tok.segs {
			if curWidth > 0 && curWidth+seg.width > width {
				flush()
			}
			cur.WriteString(seg.text)
			curWidth += seg.width
		}
	}
	// Spaces dropped at a break still carry their escape sequences.
	cur.WriteString(pending.escapes())
	if cur.Len() > 0 || len(lines) == 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func tokenize(segs []segment) []token {
	var tokens []token
	for _, seg := range segs {
		if n := len(tokens); n > 0 && (isEscape(seg) || tokens[n-1].space == seg.space) {
			tokens[n-1].segs = append(tokens[n-1].segs, seg)
			tokens[n-1].width += seg.width
			continue
		}
		tokens = append(tokens, token{segs: []segment{seg}, width: seg.width, space: seg.space})
	}
	return tokens
}

func segments(s string) []segment {
	var segs []segment
	state := -1
	for len(s) > 0 {
		if r, _ := utf8.DecodeRuneInString(s); r == ansi.Marker {
			n := escapeLen(s)
			segs = append(segs, segment{text: s[:n]})
			s = s[n:]
			state = -1
			continue
		}
		cluster, rest, w, newState := uniseg.FirstGraphemeClusterInString(s, state)
		segs = append(segs, segment{text: cluster, width: w, space: cluster == " " || cluster == "\t"})
		s, state = rest, newState
	}
	return segs
}

// escapeLen returns the byte length of the escape sequence at the start of s.
func escapeLen(s string) int {
	for i, r := range s {
		if i == 0 {
			continue
		}
		if ansi.IsTerminator(r) {
			return i + utf8.RuneLen(r)
		}
	}
	return len(s)
}

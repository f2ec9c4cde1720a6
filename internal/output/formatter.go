package output

import (
	"bytes"
	"io"
)

// ContentFormat describes how entry content is laid out: the number of
// terminal cells available and whether long lines are wrapped to fit.
type ContentFormat struct {
	Width    int
	WordWrap bool
}

// NewContentFormat returns a format for the given total width.
func NewContentFormat(width int, wordWrap bool) ContentFormat {
	if width < 0 {
		width = 0
	}
	return ContentFormat{Width: width, WordWrap: wordWrap}
}

// SubWidth returns a copy of f with n cells taken away, never going below zero.
func (f ContentFormat) SubWidth(n int) ContentFormat {
	f.Width = max(0, f.Width-n)
	return f
}

// Write runs render and writes its output to w, wrapped to f.Width when word
// wrap is enabled. Nothing is written when render fails.
func (f ContentFormat) Write(w io.Writer, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if !f.WordWrap {
		_, err := buf.WriteTo(w)
		return err
	}
	_, err := io.WriteString(w, Wrap(buf.String(), f.Width))
	return err
}

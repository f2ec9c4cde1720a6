package templater

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/masmgr/loggraph/internal/history"
)

const (
	fixtureID     = history.ID("0123456789abcdef0123456789abcdef01234567")
	fixtureParent = history.ID("89abcdef0123456789abcdef0123456789abcdef")
)

func fixtureEntry() *history.Entry {
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &history.Entry{
		ID:        fixtureID,
		Parents:   []history.ID{fixtureParent},
		Timestamp: when,
		Meta: &history.Metadata{
			Description: "Fix bug\n\nLonger body.\n",
			Author:      history.Signature{Name: "Alice", Email: "alice@example.com", When: when},
			Committer:   history.Signature{Name: "Bob", Email: "bob@example.com", When: when},
		},
	}
}

func newTestLanguage(t *testing.T, opts Options) *Language {
	t.Helper()
	if opts.Refs == nil {
		opts.Refs = map[history.ID][]string{fixtureID: {"main", "v1"}}
	}
	lang, err := NewLanguage(opts)
	if err != nil {
		t.Fatalf("NewLanguage: %v", err)
	}
	return lang
}

func render(t *testing.T, lang *Language, source string, e *history.Entry) string {
	t.Helper()
	tmpl, err := lang.Compile(source)
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Render(e, &buf); err != nil {
		t.Fatalf("Render(%q): %v", source, err)
	}
	return buf.String()
}

func TestRender_Variables(t *testing.T) {
	lang := newTestLanguage(t, Options{Current: fixtureID})

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "Short id", source: "${short_id}", want: "0123456789ab"},
		{name: "Function", source: "${upper(author.name)}", want: "ALICE"},
		{name: "Summary", source: "${summary}", want: "Fix bug"},
		{name: "First line", source: "${first_line(description)}", want: "Fix bug"},
		{name: "Conditional", source: "%{ if root }root%{ else }child%{ endif }", want: "child"},
		{name: "Refs", source: `${join(",", refs)}`, want: "main,v1"},
		{name: "Parents", source: "${length(parents)}", want: "1"},
		{name: "Current", source: "${current}", want: "true"},
		{name: "Truncate", source: `${truncate(5, "abcdefgh")}`, want: "abcd…"},
		{name: "Fill", source: `${fill(5, "hello world")}`, want: "hello\nworld"},
		{name: "Timestamp", source: "${committer.timestamp}", want: "2025-06-01 12:00:00.000 +00:00"},
		{name: "Literal text", source: "plain text\n", want: "plain text\n"},
		{name: "Empty", source: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, lang, tt.source, fixtureEntry()); got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRender_CurrentOnlyForCurrentEntry(t *testing.T) {
	lang := newTestLanguage(t, Options{Current: fixtureParent})
	if got := render(t, lang, "${current}", fixtureEntry()); got != "false" {
		t.Fatalf("current = %q, want false", got)
	}
}

func TestCompile_Errors(t *testing.T) {
	lang := newTestLanguage(t, Options{
		Aliases: map[string]string{"loop_a": "loop_b", "loop_b": "loop_a"},
	})

	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{name: "Unknown variable", source: "${nope}"},
		{name: "Unknown attribute", source: "${author.phone}"},
		{name: "Unknown function", source: "${frobnicate(id)}"},
		{name: "Unterminated", source: "${id"},
		{name: "Not text", source: "${author}", wantMsg: "not text"},
		{name: "Alias cycle", source: "loop_a", wantMsg: "alias cycle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lang.Compile(tt.source)
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("Compile(%q) error = %v, want *CompileError", tt.source, err)
			}
			if compileErr.Source != tt.source {
				t.Errorf("Source = %q, want %q", compileErr.Source, tt.source)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCompile_Aliases(t *testing.T) {
	lang := newTestLanguage(t, Options{
		Aliases: map[string]string{
			"mine":  "${short_id}",
			"outer": "mine",
		},
	})
	if got := render(t, lang, "outer", fixtureEntry()); got != "0123456789ab" {
		t.Fatalf("outer = %q", got)
	}
	if got := render(t, lang, "  mine\n", fixtureEntry()); got != "0123456789ab" {
		t.Fatalf("padded alias = %q", got)
	}
	if got := render(t, lang, "not_an_alias", fixtureEntry()); got != "not_an_alias" {
		t.Fatalf("unknown identifier = %q, want literal text", got)
	}
}

func TestBuiltinAliases(t *testing.T) {
	lang := newTestLanguage(t, Options{Current: fixtureID})
	e := fixtureEntry()

	t.Run("Compact", func(t *testing.T) {
		want := "0123456789ab alice@example.com 2025-06-01 12:00:00.000 +00:00 main v1\nFix bug\n"
		if got := render(t, lang, BuiltinLogCompact, e); got != want {
			t.Errorf("compact = %q, want %q", got, want)
		}
	})

	t.Run("Compact without description", func(t *testing.T) {
		bare := fixtureEntry()
		bare.Meta.Description = ""
		got := render(t, lang, BuiltinLogCompact, bare)
		if !strings.HasSuffix(got, "\n(no description set)\n") {
			t.Errorf("compact = %q", got)
		}
	})

	t.Run("Oneline", func(t *testing.T) {
		if got, want := render(t, lang, BuiltinLogOneline, e), "0123456789ab Fix bug main v1\n"; got != want {
			t.Errorf("oneline = %q, want %q", got, want)
		}
	})

	t.Run("Detailed", func(t *testing.T) {
		got := render(t, lang, BuiltinLogDetailed, e)
		for _, want := range []string{
			"Commit ID: " + string(fixtureID) + "\n",
			"Parent: " + string(fixtureParent) + "\n",
			"Author: Alice <alice@example.com>",
			"Refs: main, v1\n",
			"    Fix bug\n    \n    Longer body.\n",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("detailed output %q is missing %q", got, want)
			}
		}
	})

	t.Run("Node symbols", func(t *testing.T) {
		root := fixtureEntry()
		root.ID = fixtureParent
		root.Parents = nil
		other := fixtureEntry()
		other.ID = "ffffffffffffffffffffffffffffffffffffffff"

		tests := []struct {
			source string
			entry  *history.Entry
			want   string
		}{
			{source: BuiltinLogNode, entry: e, want: "@"},
			{source: BuiltinLogNode, entry: root, want: "◆"},
			{source: BuiltinLogNode, entry: other, want: "○"},
			{source: BuiltinLogNodeASCII, entry: e, want: "@"},
			{source: BuiltinLogNodeASCII, entry: root, want: "#"},
			{source: BuiltinLogNodeASCII, entry: other, want: "o"},
		}
		for _, tt := range tests {
			if got := render(t, lang, tt.source, tt.entry); got != tt.want {
				t.Errorf("%s for %s = %q, want %q", tt.source, tt.entry.ID.Short(4), got, tt.want)
			}
		}
	})
}

func TestRender_Errors(t *testing.T) {
	lang := newTestLanguage(t, Options{})

	t.Run("Missing metadata", func(t *testing.T) {
		tmpl, err := lang.Compile("${id}")
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		e := fixtureEntry()
		e.Meta = nil
		err = tmpl.Render(e, &bytes.Buffer{})
		var renderErr *RenderError
		if !errors.As(err, &renderErr) || !errors.Is(err, ErrMissingMetadata) {
			t.Fatalf("err = %v, want RenderError wrapping ErrMissingMetadata", err)
		}
		if renderErr.ID != fixtureID {
			t.Errorf("ID = %s", renderErr.ID)
		}
	})

	t.Run("Function failure", func(t *testing.T) {
		tmpl, err := lang.Compile("${fill(-1, id)}")
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		var buf bytes.Buffer
		err = tmpl.Render(fixtureEntry(), &buf)
		var renderErr *RenderError
		if !errors.As(err, &renderErr) {
			t.Fatalf("err = %v, want *RenderError", err)
		}
		if buf.Len() != 0 {
			t.Errorf("wrote %q on failure", buf.String())
		}
	})
}

func TestLabels(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	lang := newTestLanguage(t, Options{Colors: map[string]string{
		"id":   "blue",
		"node": "bright red bold",
	}})

	if got, want := render(t, lang, `${label("id", "x")}`, fixtureEntry()), color.New(color.FgBlue).Sprint("x"); got != want {
		t.Errorf("label(id) = %q, want %q", got, want)
	}
	if got := render(t, lang, `${label("author", "x")}`, fixtureEntry()); got != "x" {
		t.Errorf("label without color = %q, want plain text", got)
	}

	tmpl, err := lang.Compile("*")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := tmpl.Labeled("node").RenderString(fixtureEntry())
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	if want := color.New(color.FgHiRed, color.Bold).Sprint("*"); got != want {
		t.Errorf("labeled = %q, want %q", got, want)
	}
	if plain, _ := tmpl.RenderString(fixtureEntry()); plain != "*" {
		t.Errorf("Labeled modified the original template: %q", plain)
	}
	block, err := lang.Compile("a\n\nb\n")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err = block.Labeled("id").RenderString(fixtureEntry())
	if err != nil {
		t.Fatalf("RenderString: %v", err)
	}
	blue := color.New(color.FgBlue)
	if want := blue.Sprint("a") + "\n\n" + blue.Sprint("b") + "\n"; got != want {
		t.Errorf("labeled block = %q, want %q", got, want)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		value    string
		wantNil bool
		wantErr bool
	}{
		{value: "red"},
		{value: "bright red"},
		{value: "green underline"},
		{value: "bold"},
		{value: "", wantNil: true},
		{value: "default", wantNil: true},
		{value: "purple", wantErr: true},
		{value: "bright", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, err := parseColor(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseColor(%q) error = %v", tt.value, err)
			}
			if !tt.wantErr && (c == nil) != tt.wantNil {
				t.Errorf("parseColor(%q) = %v, wantNil %v", tt.value, c, tt.wantNil)
			}
		})
	}
}

func TestNewLanguage_RejectsBadOptions(t *testing.T) {
	if _, err := NewLanguage(Options{Aliases: map[string]string{"has space": "x"}}); err == nil {
		t.Error("expected error for invalid alias name")
	}
	if _, err := NewLanguage(Options{Colors: map[string]string{"id": "ultraviolet"}}); err == nil {
		t.Error("expected error for unknown color")
	}
}

package templater

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/masmgr/loggraph/internal/history"
)

var (
	// ErrMissingMetadata is returned when an entry's metadata could not be loaded.
	ErrMissingMetadata = errors.New("missing metadata")

	errNotInteger = errors.New("must be a whole number")
	errNegative   = errors.New("must not be negative")
)

// CompileError reports a template that failed to parse or type-check.
type CompileError struct {
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile template %q: %v", e.Source, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// RenderError reports a template that failed while rendering one entry.
type RenderError struct {
	ID  history.ID
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template for %s: %v", e.ID.Short(shortIDLength), e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Template is a compiled template bound to a Language.
type Template struct {
	lang   *Language
	source string
	expr   hclsyntax.Expression
	label  string
}

// Compile parses source and checks it against the language's variables and
// functions. A source that is exactly an alias name is replaced by the alias.
func (l *Language) Compile(source string) (*Template, error) {
	resolved, err := l.expandAlias(source)
	if err != nil {
		return nil, &CompileError{Source: source, Err: err}
	}

	expr, diags := hclsyntax.ParseTemplate([]byte(resolved), "template", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, &CompileError{Source: source, Err: diags}
	}

	v, diags := expr.Value(&hcl.EvalContext{
		Variables: unknownVariables(),
		Functions: l.functions(),
	})
	if diags.HasErrors() {
		return nil, &CompileError{Source: source, Err: diags}
	}
	if _, err := convert.Convert(v, cty.String); err != nil {
		return nil, &CompileError{Source: source, Err: fmt.Errorf("result is %s, not text", v.Type().FriendlyName())}
	}

	return &Template{lang: l, source: source, expr: expr}, nil
}

// expandAlias follows alias names until it reaches a template body.
func (l *Language) expandAlias(source string) (string, error) {
	seen := map[string]bool{}
	var chain []string
	for {
		name := strings.TrimSpace(source)
		if !isIdentifier(name) {
			return source, nil
		}
		body, ok := l.aliases[name]
		if !ok {
			return source, nil
		}
		chain = append(chain, name)
		if seen[name] {
			return "", fmt.Errorf("alias cycle: %s", strings.Join(chain, " -> "))
		}
		seen[name] = true
		source = body
	}
}

// Source returns the text the template was compiled from.
func (t *Template) Source() string {
	return t.source
}

// Labeled returns a copy of t whose whole output is colored for label name.
func (t *Template) Labeled(name string) *Template {
	c := *t
	c.label = name
	return &c
}

// Render evaluates the template for e and writes the result to w.
// Evaluation failures are returned as *RenderError; write failures as is.
func (t *Template) Render(e *history.Entry, w io.Writer) error {
	s, err := t.RenderString(e)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

// RenderString evaluates the template for e.
func (t *Template) RenderString(e *history.Entry) (string, error) {
	if e.Meta == nil {
		return "", &RenderError{ID: e.ID, Err: ErrMissingMetadata}
	}
	v, diags := t.expr.Value(&hcl.EvalContext{
		Variables: t.lang.variables(e),
		Functions: t.lang.functions(),
	})
	if diags.HasErrors() {
		return "", &RenderError{ID: e.ID, Err: diags}
	}
	if v.IsNull() {
		return "", &RenderError{ID: e.ID, Err: errors.New("template produced null")}
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", &RenderError{ID: e.ID, Err: err}
	}
	out := s.AsString()
	if t.label != "" {
		out = t.lang.colorize(t.label, out)
	}
	return out, nil
}

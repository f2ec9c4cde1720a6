// Package templater compiles and renders the templates that produce a history
// entry's text and its graph node symbol.
//
// Templates use HCL template syntax (${...} interpolation and %{...}
// directives) evaluated against a typed environment describing one entry.
package templater

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/zclconf/go-cty/cty"

	"github.com/masmgr/loggraph/internal/history"
)

// TimestampLayout is how author and committer times are rendered.
const TimestampLayout = "2006-01-02 15:04:05.000 -07:00"

const shortIDLength = 12

var signatureType = cty.Object(map[string]cty.Type{
	"name":      cty.String,
	"email":     cty.String,
	"timestamp": cty.String,
})

// envTypes lists the variables available to templates.
var envTypes = map[string]cty.Type{
	"id":          cty.String,
	"short_id":    cty.String,
	"parents":     cty.List(cty.String),
	"current":     cty.Bool,
	"root":        cty.Bool,
	"description": cty.String,
	"summary":     cty.String,
	"author":      signatureType,
	"committer":   signatureType,
	"refs":        cty.List(cty.String),
}

// Options configures a Language.
type Options struct {
	// Current is the entry rendered with current = true.
	Current history.ID
	// Refs maps entries to the names of refs pointing at them.
	Refs map[history.ID][]string
	// Aliases maps alias names to template sources. Built-in aliases are
	// always present unless overridden here.
	Aliases map[string]string
	// Colors maps label names to color specs such as "bright blue bold".
	Colors map[string]string
}

// Language is the environment templates are compiled against.
type Language struct {
	current history.ID
	refs    map[history.ID][]string
	aliases map[string]string
	colors  map[string]*color.Color
}

// NewLanguage validates opts and returns the language they describe.
func NewLanguage(opts Options) (*Language, error) {
	aliases := make(map[string]string, len(builtinAliases)+len(opts.Aliases))
	for name, src := range builtinAliases {
		aliases[name] = src
	}
	for name, src := range opts.Aliases {
		if !isIdentifier(name) {
			return nil, fmt.Errorf("invalid template alias name %q", name)
		}
		aliases[name] = src
	}

	colors := make(map[string]*color.Color, len(opts.Colors))
	for label, value := range opts.Colors {
		c, err := parseColor(value)
		if err != nil {
			return nil, fmt.Errorf("color for label %q: %w", label, err)
		}
		if c != nil {
			colors[label] = c
		}
	}

	return &Language{
		current: opts.Current,
		refs:    opts.Refs,
		aliases: aliases,
		colors:  colors,
	}, nil
}

// Alias returns the source registered under name.
func (l *Language) Alias(name string) (string, bool) {
	src, ok := l.aliases[name]
	return src, ok
}

// colorize colors each line of text separately so that newlines, and
// whatever is drawn between lines, stay outside the color.
func (l *Language) colorize(label, text string) string {
	c, ok := l.colors[label]
	if !ok || text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = c.Sprint(line)
		}
	}
	return strings.Join(lines, "\n")
}

// unknownVariables describes the environment's types for compile-time checks.
func unknownVariables() map[string]cty.Value {
	vars := make(map[string]cty.Value, len(envTypes))
	for name, ty := range envTypes {
		vars[name] = cty.UnknownVal(ty)
	}
	return vars
}

func (l *Language) variables(e *history.Entry) map[string]cty.Value {
	return map[string]cty.Value{
		"id":          cty.StringVal(string(e.ID)),
		"short_id":    cty.StringVal(e.ID.Short(shortIDLength)),
		"parents":     stringList(idStrings(e.Parents)),
		"current":     cty.BoolVal(l.current != "" && e.ID == l.current),
		"root":        cty.BoolVal(e.IsRoot()),
		"description": cty.StringVal(e.Meta.Description),
		"summary":     cty.StringVal(e.Meta.Summary()),
		"author":      signatureVal(e.Meta.Author),
		"committer":   signatureVal(e.Meta.Committer),
		"refs":        stringList(l.refs[e.ID]),
	}
}

func signatureVal(s history.Signature) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"name":      cty.StringVal(s.Name),
		"email":     cty.StringVal(s.Email),
		"timestamp": cty.StringVal(formatTime(s.When)),
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func idStrings(ids []history.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

var colorNames = map[string]color.Attribute{
	"black":   color.FgBlack,
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

var styleNames = map[string]color.Attribute{
	"bold":      color.Bold,
	"dim":       color.Faint,
	"italic":    color.Italic,
	"underline": color.Underline,
	"reverse":   color.ReverseVideo,
}

// parseColor turns a value like "bright green bold" into a color. An empty
// value or "default" means no color and returns nil.
func parseColor(value string) (*color.Color, error) {
	var attrs []color.Attribute
	bright := false
	for _, word := range strings.Fields(strings.ToLower(value)) {
		if word == "default" {
			continue
		}
		if word == "bright" {
			bright = true
			continue
		}
		if a, ok := styleNames[word]; ok {
			attrs = append(attrs, a)
			continue
		}
		a, ok := colorNames[word]
		if !ok {
			return nil, fmt.Errorf("unknown color %q", word)
		}
		if bright {
			a += color.FgHiBlack - color.FgBlack
			bright = false
		}
		attrs = append(attrs, a)
	}
	if bright {
		return nil, fmt.Errorf("%q: bright needs a color name", value)
	}
	if len(attrs) == 0 {
		return nil, nil
	}
	return color.New(attrs...), nil
}

package logview

import (
	"fmt"

	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/graph"
	"github.com/masmgr/loggraph/internal/templater"
)

// TemplateKind identifies one of the two templates the log view renders.
type TemplateKind int

const (
	// ContentTemplate renders the text shown for each entry.
	ContentTemplate TemplateKind = iota
	// NodeTemplate renders the graph node symbol.
	NodeTemplate
)

// TemplateKinds lists every kind in resolution order.
var TemplateKinds = []TemplateKind{ContentTemplate, NodeTemplate}

func (k TemplateKind) String() string {
	switch k {
	case ContentTemplate:
		return "content"
	case NodeTemplate:
		return "node"
	default:
		return fmt.Sprintf("TemplateKind(%d)", int(k))
	}
}

// ConfigKey is the setting a template kind is read from.
func (k TemplateKind) ConfigKey() string {
	switch k {
	case ContentTemplate:
		return "templates.log"
	case NodeTemplate:
		return "templates.log_node"
	default:
		return ""
	}
}

// StringGetter looks up string settings. Missing keys return ok == false.
type StringGetter interface {
	GetString(key string) (value string, ok bool, err error)
}

// Sources holds the template source for each kind.
type Sources map[TemplateKind]string

// DefaultNodeTemplate returns the built-in node template for a graph style.
func DefaultNodeTemplate(style graph.Style) string {
	if style.IsASCII() {
		return templater.BuiltinLogNodeASCII
	}
	return templater.BuiltinLogNode
}

// ResolveSources finds the source of every template kind. The content
// template comes from override when set, else from configuration, and must
// exist. The node template falls back to DefaultNodeTemplate.
func ResolveSources(cfg StringGetter, override *string, style graph.Style) (Sources, error) {
	sources := make(Sources, len(TemplateKinds))
	for _, kind := range TemplateKinds {
		if kind == ContentTemplate && override != nil {
			sources[kind] = *override
			continue
		}
		src, ok, err := cfg.GetString(kind.ConfigKey())
		if err != nil {
			return nil, cmderr.Wrap(cmderr.KindConfig, err, "")
		}
		switch {
		case ok:
			sources[kind] = src
		case kind == NodeTemplate:
			sources[kind] = DefaultNodeTemplate(style)
		default:
			return nil, cmderr.Config("config key %q is not set and no template was given", kind.ConfigKey())
		}
	}
	return sources, nil
}

// Bindings are the compiled templates used while rendering.
type Bindings struct {
	Content *templater.Template
	Node    *templater.Template
}

// CompileBindings compiles every source against lang. The content template's
// output is colored with the "log" label and the node template's with "node".
func CompileBindings(lang *templater.Language, sources Sources) (Bindings, error) {
	var b Bindings
	for _, kind := range TemplateKinds {
		src, ok := sources[kind]
		if !ok {
			return Bindings{}, cmderr.Config("no %s template source", kind)
		}
		tmpl, err := lang.Compile(src)
		if err != nil {
			return Bindings{}, cmderr.Wrap(cmderr.KindTemplateCompile, err, "")
		}
		switch kind {
		case ContentTemplate:
			b.Content = tmpl.Labeled("log")
		case NodeTemplate:
			b.Node = tmpl.Labeled("node")
		}
	}
	return b, nil
}

package templater

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/masmgr/loggraph/internal/output"
)

const ellipsis = "…"

func (l *Language) functions() map[string]function.Function {
	return map[string]function.Function{
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"title":      stdlib.TitleFunc,
		"substr":     stdlib.SubstrFunc,
		"strlen":     stdlib.StrlenFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"split":      stdlib.SplitFunc,
		"length":     stdlib.LengthFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"replace":    stdlib.ReplaceFunc,
		"chomp":      stdlib.ChompFunc,
		"indent":     stdlib.IndentFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"contains":   stdlib.ContainsFunc,
		"label":      l.labelFunc(),
		"fill":       fillFunc,
		"truncate":   truncateFunc,
		"first_line": firstLineFunc,
	}
}

// labelFunc colors text with the color configured for a label.
func (l *Language) labelFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
			{Name: "text", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.StringVal(l.colorize(args[0].AsString(), args[1].AsString())), nil
		},
	})
}

// fillFunc wraps text to the given width.
var fillFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "width", Type: cty.Number},
		{Name: "text", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		width, err := intArg(args[0])
		if err != nil {
			return cty.UnknownVal(cty.String), function.NewArgError(0, err)
		}
		return cty.StringVal(output.Wrap(args[1].AsString(), width)), nil
	},
})

// truncateFunc cuts text to the given display width, ending with an ellipsis.
var truncateFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "width", Type: cty.Number},
		{Name: "text", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		width, err := intArg(args[0])
		if err != nil {
			return cty.UnknownVal(cty.String), function.NewArgError(0, err)
		}
		return cty.StringVal(runewidth.Truncate(args[1].AsString(), width, ellipsis)), nil
	},
})

var firstLineFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "text", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		line, _, _ := strings.Cut(args[0].AsString(), "\n")
		return cty.StringVal(line), nil
	},
})

func intArg(v cty.Value) (int, error) {
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return 0, errNotInteger
	}
	n, _ := bf.Int64()
	if n < 0 {
		return 0, errNegative
	}
	return int(n), nil
}

// Package config loads loggraph settings from layered TOML files.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/masmgr/loggraph/internal/cmderr"
	"github.com/masmgr/loggraph/internal/graph"
)

//go:embed defaults.toml
var defaultsTOML string

// EnvConfigPath names the environment variable that overrides the user config path.
const EnvConfigPath = "LOGGRAPH_CONFIG"

// RepoConfigName is the per-repository config file, read from the repository root.
const RepoConfigName = ".loggraph.toml"

// Config is the merged view of every configuration layer.
type Config struct {
	values  map[string]any
	sources []string
}

// LoadOptions selects the layers loaded on top of the built-in defaults.
type LoadOptions struct {
	// RepoRoot is searched for RepoConfigName when set.
	RepoRoot string
	// Path is an explicit config file; it must exist.
	Path string
	// Overrides are inline TOML snippets applied last, in order.
	Overrides []string
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{values: map[string]any{}}
	if err := c.MergeTOML("defaults", defaultsTOML); err != nil {
		panic(fmt.Sprintf("config: invalid built-in defaults: %v", err))
	}
	return c
}

// Load reads the defaults, the user file, the repository file, the explicit
// file and the inline overrides, each layer overriding the ones before.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	userPath, explicit := userConfigPath()
	if userPath != "" {
		if err := cfg.mergeFile(userPath, explicit); err != nil {
			return nil, err
		}
	}
	if opts.RepoRoot != "" {
		if err := cfg.mergeFile(filepath.Join(opts.RepoRoot, RepoConfigName), false); err != nil {
			return nil, err
		}
	}
	if opts.Path != "" {
		if err := cfg.mergeFile(opts.Path, true); err != nil {
			return nil, err
		}
	}
	for i, snippet := range opts.Overrides {
		if err := cfg.MergeTOML(fmt.Sprintf("--config-toml #%d", i+1), snippet); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// userConfigPath returns the user config file and whether it was named
// explicitly through the environment.
func userConfigPath() (string, bool) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, true
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loggraph", "config.toml"), false
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "loggraph", "config.toml"), false
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		return filepath.Join(envHome, ".config", "loggraph", "config.toml"), false
	}
	return "", false
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return cmderr.Wrap(cmderr.KindConfig, err, "read config")
	}
	return c.MergeTOML(path, string(data))
}

// MergeTOML parses data and merges it over the current values.
// Tables merge key by key; any other value replaces what was there.
func (c *Config) MergeTOML(name, data string) error {
	var tree map[string]any
	if _, err := toml.Decode(data, &tree); err != nil {
		return cmderr.Wrap(cmderr.KindConfig, err, "parse config %s", name)
	}
	mergeTree(c.values, tree)
	c.sources = append(c.sources, name)
	return nil
}

func mergeTree(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeTree(existing, sub)
				continue
			}
			copied := map[string]any{}
			mergeTree(copied, sub)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}

// Sources lists the layers that were merged, lowest first.
func (c *Config) Sources() []string {
	return append([]string(nil), c.sources...)
}

// Get returns the raw value at a dotted key such as "ui.graph.style".
func (c *Config) Get(key string) (any, bool) {
	var cur any = c.values
	for _, part := range strings.Split(key, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = table[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at key. A missing key is not an error.
func (c *Config) GetString(key string) (string, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, typeError(key, "a string", v)
	}
	return s, true, nil
}

// GetBool returns the boolean at key.
func (c *Config) GetBool(key string) (bool, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, typeError(key, "a boolean", v)
	}
	return b, true, nil
}

// GetInt returns the integer at key.
func (c *Config) GetInt(key string) (int, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false, nil
	}
	n, ok := v.(int64)
	if !ok {
		return 0, false, typeError(key, "an integer", v)
	}
	return int(n), true, nil
}

// Table returns the string-valued table at key. A missing table is empty.
func (c *Config) Table(key string) (map[string]string, error) {
	v, ok := c.Get(key)
	if !ok {
		return map[string]string{}, nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		return nil, typeError(key, "a table", v)
	}
	out := make(map[string]string, len(table))
	for name, item := range table {
		s, ok := item.(string)
		if !ok {
			return nil, typeError(key+"."+name, "a string", item)
		}
		out[name] = s
	}
	return out, nil
}

// Keys returns every leaf key in dotted form, sorted.
func (c *Config) Keys() []string {
	var keys []string
	var walk func(prefix string, table map[string]any)
	walk = func(prefix string, table map[string]any) {
		for k, v := range table {
			full := k
			if prefix != "" {
				full = prefix + "." + k
			}
			if sub, ok := v.(map[string]any); ok {
				walk(full, sub)
				continue
			}
			keys = append(keys, full)
		}
	}
	walk("", c.values)
	sort.Strings(keys)
	return keys
}

// FormatValue renders a config value in TOML syntax.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + FormatValue(x[k])
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return fmt.Sprint(x)
	}
}

func typeError(key, want string, got any) error {
	return cmderr.Config("config key %q: expected %s, found %s", key, want, typeName(got))
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case int64:
		return "an integer"
	case float64:
		return "a float"
	case []any, []map[string]any:
		return "an array"
	case map[string]any:
		return "a table"
	case time.Time:
		return "a datetime"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// GraphStyle returns the validated ui.graph.style.
func (c *Config) GraphStyle() (graph.Style, error) {
	s, _, err := c.GetString("ui.graph.style")
	if err != nil {
		return "", err
	}
	style, err := graph.ParseStyle(s)
	if err != nil {
		return "", cmderr.Wrap(cmderr.KindConfig, err, "ui.graph.style")
	}
	return style, nil
}

// TemplateAliases returns the [template-aliases] table.
func (c *Config) TemplateAliases() (map[string]string, error) {
	return c.Table("template-aliases")
}

// Colors returns the [colors] table of label colors.
func (c *Config) Colors() (map[string]string, error) {
	return c.Table("colors")
}

// WordWrap reports whether ui.log-word-wrap is enabled. It defaults to true.
func (c *Config) WordWrap() (bool, error) {
	b, ok, err := c.GetBool("ui.log-word-wrap")
	if err != nil || !ok {
		return true, err
	}
	return b, nil
}

// Width returns ui.width when it is set to a positive value.
func (c *Config) Width() (int, bool, error) {
	n, ok, err := c.GetInt("ui.width")
	if err != nil || !ok {
		return 0, false, err
	}
	if n <= 0 {
		return 0, false, cmderr.Config("ui.width must be positive, found %d", n)
	}
	return n, true, nil
}

// Paginate returns ui.paginate: "auto" or "never".
func (c *Config) Paginate() (string, error) {
	s, ok, err := c.GetString("ui.paginate")
	if err != nil {
		return "", err
	}
	if !ok {
		return "auto", nil
	}
	switch s {
	case "auto", "never":
		return s, nil
	default:
		return "", cmderr.Config("ui.paginate must be \"auto\" or \"never\", found %q", s)
	}
}

// Pager returns the ui.pager command line.
func (c *Config) Pager() (string, error) {
	s, ok, err := c.GetString("ui.pager")
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(s) == "" {
		return "less -FRX", nil
	}
	return s, nil
}

// ColorMode returns ui.color, defaulting to "auto".
func (c *Config) ColorMode() (string, error) {
	s, ok, err := c.GetString("ui.color")
	if err != nil || !ok {
		return "auto", err
	}
	return s, nil
}

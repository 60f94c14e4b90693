package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/codalotl/visualdiff/internal/diff"
	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/simplelogger"
	"github.com/codalotl/visualdiff/internal/visualdiff"
)

// ProjectConfigName is the per-directory config file. The nearest one walking up from the working directory is used.
const ProjectConfigName = ".visualdiff.toml"

// Config is visualdiff's configuration loaded from a cascade of sources: defaults, the user config file, the nearest project config file, an explicit --config
// file, and flags (highest precedence).
type Config struct {
	AddedClass    string   `toml:"added_class"`
	RemovedClass  string   `toml:"removed_class"`
	ModifiedClass string   `toml:"modified_class"`
	IgnoreCase    bool     `toml:"ignore_case"`
	SkipModified  bool     `toml:"skip_modified"`
	Granularity   string   `toml:"granularity"` // "chars" or "words".
	SkipChildren  []string `toml:"skip_children"`
	SkipSelf      []string `toml:"skip_self"`
	Structural    []string `toml:"structural"` // Tags that are never skipped themselves (overrides SkipSelf and the built-in formatting tags).
	MaxTableDepth int      `toml:"max_table_depth"`
	Format        string   `toml:"format"` // "html" or "term".

	// Width wraps terminal output. 0 uses the terminal's width, or no wrapping when not writing to a terminal.
	Width int `toml:"width"`
}

// fileConfig is one config file. Nil fields are absent from the file and leave lower-precedence values in place.
type fileConfig struct {
	AddedClass    *string   `toml:"added_class"`
	RemovedClass  *string   `toml:"removed_class"`
	ModifiedClass *string   `toml:"modified_class"`
	IgnoreCase    *bool     `toml:"ignore_case"`
	SkipModified  *bool     `toml:"skip_modified"`
	Granularity   *string   `toml:"granularity"`
	SkipChildren  *[]string `toml:"skip_children"`
	SkipSelf      *[]string `toml:"skip_self"`
	Structural    *[]string `toml:"structural"`
	MaxTableDepth *int      `toml:"max_table_depth"`
	Format        *string   `toml:"format"`
	Width         *int      `toml:"width"`
}

func defaultConfig() Config {
	return Config{
		AddedClass:    visualdiff.DefaultAddedClass,
		RemovedClass:  visualdiff.DefaultRemovedClass,
		ModifiedClass: visualdiff.DefaultModifiedClass,
		Granularity:   "chars",
		MaxTableDepth: visualdiff.DefaultMaxTableDepth,
		Format:        "html",
	}
}

// configSources locates config files. Empty fields are skipped.
type configSources struct {
	UserDir  string // Ex: os.UserConfigDir(). The user file is UserDir/visualdiff/config.toml.
	WorkDir  string // Start of the search for ProjectConfigName.
	Explicit string // --config. Unlike the other files, it must exist.
}

func defaultConfigSources(explicit string) configSources {
	src := configSources{Explicit: explicit}
	if dir, err := os.UserConfigDir(); err == nil {
		src.UserDir = dir
	}
	if wd, err := os.Getwd(); err == nil {
		src.WorkDir = wd
	}
	return src
}

func loadConfig(src configSources) (Config, error) {
	cfg := defaultConfig()

	var files []string
	if src.UserDir != "" {
		files = append(files, filepath.Join(src.UserDir, "visualdiff", "config.toml"))
	}
	if src.WorkDir != "" {
		if p := findNearest(src.WorkDir, ProjectConfigName); p != "" {
			files = append(files, p)
		}
	}
	for _, p := range files {
		if err := applyConfigFile(&cfg, p, false); err != nil {
			return Config{}, fmt.Errorf("load configuration: %w", err)
		}
	}
	if src.Explicit != "" {
		if err := applyConfigFile(&cfg, src.Explicit, true); err != nil {
			return Config{}, fmt.Errorf("load configuration: %w", err)
		}
	}
	return cfg, nil
}

// findNearest returns the path of name in dir or its closest ancestor containing it, or "" if there is none.
func findNearest(dir, name string) string {
	for {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func applyConfigFile(cfg *Config, path string, mustExist bool) error {
	f, err := os.Open(path)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	fc, err := decodeConfig(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	simplelogger.Log("cli: loaded config %s", path)
	fc.applyTo(cfg)
	return nil
}

// decodeConfig decodes a TOML config file. Unknown keys are errors.
func decodeConfig(r io.Reader) (fileConfig, error) {
	var fc fileConfig
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fileConfig{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return fileConfig{}, err
	}
	return fc, nil
}

func (fc fileConfig) applyTo(cfg *Config) {
	setIf(&cfg.AddedClass, fc.AddedClass)
	setIf(&cfg.RemovedClass, fc.RemovedClass)
	setIf(&cfg.ModifiedClass, fc.ModifiedClass)
	setIf(&cfg.IgnoreCase, fc.IgnoreCase)
	setIf(&cfg.SkipModified, fc.SkipModified)
	setIf(&cfg.Granularity, fc.Granularity)
	setIf(&cfg.SkipChildren, fc.SkipChildren)
	setIf(&cfg.SkipSelf, fc.SkipSelf)
	setIf(&cfg.Structural, fc.Structural)
	setIf(&cfg.MaxTableDepth, fc.MaxTableDepth)
	setIf(&cfg.Format, fc.Format)
	setIf(&cfg.Width, fc.Width)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func validateConfig(cfg Config) error {
	switch cfg.Granularity {
	case "chars", "words":
	default:
		return fmt.Errorf("invalid configuration: granularity must be chars or words (got %q)", cfg.Granularity)
	}
	switch cfg.Format {
	case "html", "term":
	default:
		return fmt.Errorf("invalid configuration: format must be html or term (got %q)", cfg.Format)
	}
	if cfg.Width < 0 {
		return fmt.Errorf("invalid configuration: width must be >= 0 (got %d)", cfg.Width)
	}
	if cfg.MaxTableDepth <= 0 {
		return fmt.Errorf("invalid configuration: max_table_depth must be > 0 (got %d)", cfg.MaxTableDepth)
	}
	for name, v := range map[string]string{"added_class": cfg.AddedClass, "removed_class": cfg.RemovedClass, "modified_class": cfg.ModifiedClass} {
		if v == "" {
			return fmt.Errorf("invalid configuration: %s must not be empty", name)
		}
	}
	return nil
}

// diffOptions translates cfg into options for visualdiff.Diff.
func (cfg Config) diffOptions() *visualdiff.Options {
	opts := &visualdiff.Options{
		AddedClass:    cfg.AddedClass,
		RemovedClass:  cfg.RemovedClass,
		ModifiedClass: cfg.ModifiedClass,
		IgnoreCase:    cfg.IgnoreCase,
		SkipModified:  cfg.SkipModified,
		MaxTableDepth: cfg.MaxTableDepth,
	}
	if len(cfg.SkipChildren) > 0 {
		tags := tagSet(cfg.SkipChildren)
		opts.SkipChildren = func(n *dom.Node) (bool, bool) {
			if n.Type == dom.ElementNode && tags[n.Data] {
				return true, true
			}
			return false, false
		}
	}
	if len(cfg.SkipSelf) > 0 || len(cfg.Structural) > 0 {
		skip := tagSet(cfg.SkipSelf)
		structural := tagSet(cfg.Structural)
		opts.SkipSelf = func(n *dom.Node) (bool, bool) {
			if n.Type != dom.ElementNode {
				return false, false
			}
			switch {
			case structural[n.Data]:
				return false, true
			case skip[n.Data]:
				return true, true
			}
			return false, false
		}
	}
	if cfg.Granularity == "words" {
		ignoreCase := cfg.IgnoreCase
		opts.DiffText = func(oldText, newText string) []diff.DiffOp {
			return diff.DiffWords(oldText, newText, &diff.Options{IgnoreCase: ignoreCase}).Ops
		}
	}
	return opts
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[dom.NewElement(t).Data] = true
	}
	return m
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/codalotl/visualdiff/internal/docload"
	"github.com/codalotl/visualdiff/internal/dom"
	"github.com/codalotl/visualdiff/internal/render"
	"github.com/codalotl/visualdiff/internal/visualdiff"
)

// Version is the visualdiff version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.1.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// configSources overrides where config files are searched for. If nil, the user config dir and the working directory are used.
	configSources *configSources
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code (0, 1, or 2) and an error, if any:
//   - 0 -> err == nil
//   - 1 -> err != nil, but the structure of args is sound (flags are correct, etc).
//   - 2 -> err != nil, args parse error or misuse of flags, etc.
//
// Note that in cases of errors, Run has already displayed an error message to opts.Err || Stderr. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	env := &runEnv{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	if opts != nil {
		if opts.In != nil {
			env.in = opts.In
		}
		if opts.Out != nil {
			env.out = opts.Out
		}
		if opts.Err != nil {
			env.err = opts.Err
		}
		env.sources = opts.configSources
	}

	root := newRootCommand(env)
	root.SetArgs(argv)
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.err)

	err := root.Execute()
	if err == nil {
		return 0, nil
	}
	fmt.Fprintf(env.err, "Error: %v\n", err)

	var ee exitError
	if errors.As(err, &ee) {
		return ee.code, err
	}
	// Everything cobra reports itself (unknown flags, wrong arg counts) is misuse.
	return 2, err
}

// exitError carries the exit code for an error. Errors without one are usage errors.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

func runtimeError(err error) error { return exitError{code: 1, err: err} }
func usageError(err error) error   { return exitError{code: 2, err: err} }

type runEnv struct {
	in      io.Reader
	out     io.Writer
	err     io.Writer
	sources *configSources
}

// commonFlags are shared by the root command and dir.
type commonFlags struct {
	configFile string
	color      string
	values     Config // Flag values; only flags set on the command line are applied.
}

func (f *commonFlags) install(flags *pflag.FlagSet) {
	def := defaultConfig()
	flags.StringVar(&f.configFile, "config", "", "Config file (TOML), applied after the user and project config files")
	flags.StringVar(&f.color, "color", "auto", "Color terminal output: auto, always, or never")
	flags.StringVar(&f.values.AddedClass, "added-class", def.AddedClass, "Class marking added content")
	flags.StringVar(&f.values.RemovedClass, "removed-class", def.RemovedClass, "Class marking removed content")
	flags.StringVar(&f.values.ModifiedClass, "modified-class", def.ModifiedClass, "Class marking content whose formatting or attributes changed")
	flags.BoolVar(&f.values.IgnoreCase, "ignore-case", false, "Ignore letter case when comparing text")
	flags.BoolVar(&f.values.SkipModified, "skip-modified", false, "Do not mark modified content")
	flags.StringVar(&f.values.Granularity, "granularity", def.Granularity, "Text diff granularity: chars or words")
	flags.StringSliceVar(&f.values.SkipChildren, "skip-children", nil, "Tags whose content is not diffed (compared as a whole)")
	flags.StringSliceVar(&f.values.SkipSelf, "skip-self", nil, "Tags treated as formatting")
	flags.StringSliceVar(&f.values.Structural, "structural", nil, "Tags never treated as formatting")
	flags.IntVar(&f.values.MaxTableDepth, "max-table-depth", def.MaxTableDepth, "Nested table depth up to which tables are realigned cell by cell")
	flags.StringVar(&f.values.Format, "format", def.Format, "Output format: html or term")
	flags.IntVar(&f.values.Width, "width", 0, "Wrap terminal output to this width (0: terminal width)")
}

// config loads the config cascade and applies the flags set on the command line.
func (f *commonFlags) config(cmd *cobra.Command, env *runEnv) (Config, error) {
	src := defaultConfigSources(f.configFile)
	if env.sources != nil {
		src = *env.sources
		src.Explicit = f.configFile
	}
	cfg, err := loadConfig(src)
	if err != nil {
		return Config{}, runtimeError(err)
	}
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "added-class":
			cfg.AddedClass = f.values.AddedClass
		case "removed-class":
			cfg.RemovedClass = f.values.RemovedClass
		case "modified-class":
			cfg.ModifiedClass = f.values.ModifiedClass
		case "ignore-case":
			cfg.IgnoreCase = f.values.IgnoreCase
		case "skip-modified":
			cfg.SkipModified = f.values.SkipModified
		case "granularity":
			cfg.Granularity = f.values.Granularity
		case "skip-children":
			cfg.SkipChildren = f.values.SkipChildren
		case "skip-self":
			cfg.SkipSelf = f.values.SkipSelf
		case "structural":
			cfg.Structural = f.values.Structural
		case "max-table-depth":
			cfg.MaxTableDepth = f.values.MaxTableDepth
		case "format":
			cfg.Format = f.values.Format
		case "width":
			cfg.Width = f.values.Width
		}
	})
	if err := validateConfig(cfg); err != nil {
		return Config{}, usageError(err)
	}
	switch f.color {
	case "auto", "always", "never":
	default:
		return Config{}, usageError(fmt.Errorf("--color must be auto, always, or never (got %q)", f.color))
	}
	return cfg, nil
}

func newRootCommand(env *runEnv) *cobra.Command {
	flags := &commonFlags{}
	var output string

	root := &cobra.Command{
		Use:   "visualdiff [flags] OLD NEW",
		Short: "visualdiff shows the differences between two HTML or Markdown documents as a single marked-up document.",
		Long: "visualdiff shows the differences between two HTML or Markdown documents as a single marked-up document.\n\n" +
			"OLD and NEW are file paths; \"-\" reads standard input (as HTML). Files ending in .md or .markdown are read as Markdown.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(cmd, env)
			if err != nil {
				return err
			}
			if args[0] == docload.Stdin && args[1] == docload.Stdin {
				return usageError(errors.New("OLD and NEW cannot both be standard input"))
			}
			oldRoot, err := docload.LoadFrom(args[0], env.in)
			if err != nil {
				return runtimeError(err)
			}
			newRoot, err := docload.LoadFrom(args[1], env.in)
			if err != nil {
				return runtimeError(err)
			}
			out := visualdiff.Diff(oldRoot, newRoot, cfg.diffOptions())

			if output == "" {
				if err := writeResult(env.out, out, cfg, flags.color); err != nil {
					return runtimeError(err)
				}
				return nil
			}
			f, err := os.Create(output)
			if err != nil {
				return runtimeError(fmt.Errorf("create output: %w", err))
			}
			if err := errors.Join(writeResult(f, out, cfg, flags.color), f.Close()); err != nil {
				return runtimeError(err)
			}
			return nil
		},
	}
	flags.install(root.PersistentFlags())
	root.Flags().StringVarP(&output, "output", "o", "", "Write the result to this file instead of standard output")

	root.AddCommand(newDirCommand(env, flags))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "visualdiff %s\n", Version)
			return err
		},
	})
	return root
}

// writeResult writes a diff result in cfg.Format.
func writeResult(w io.Writer, frag *dom.Node, cfg Config, colorMode string) error {
	if cfg.Format == "html" {
		return render.HTML(w, frag)
	}

	opts := render.TermOptions{
		Width:         cfg.Width,
		AddedClass:    cfg.AddedClass,
		RemovedClass:  cfg.RemovedClass,
		ModifiedClass: cfg.ModifiedClass,
	}
	f, _ := w.(*os.File)
	termWidth, isTerm := render.TerminalWidth(f)
	if opts.Width == 0 && isTerm {
		opts.Width = termWidth
	}
	switch colorMode {
	case "always":
		opts.Color = true
	case "auto":
		opts.Color = isTerm && strings.TrimSpace(os.Getenv("NO_COLOR")) == ""
	}
	return render.Terminal(w, frag, opts)
}

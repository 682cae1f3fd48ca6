package cli

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pkgtree/pkg/errors"
	"github.com/matzehuels/pkgtree/pkg/installed"
	"github.com/matzehuels/pkgtree/pkg/markers"
	"github.com/matzehuels/pkgtree/pkg/observability"
	"github.com/matzehuels/pkgtree/pkg/tree"
)

// treeOpts holds the tree command's flags.
type treeOpts struct {
	depth         int
	prune         []string
	noDedupe      bool
	invert        bool
	noExtras      bool
	showOrphans   bool
	strict        bool
	interactive   bool
	color         string
	pythonVersion string
	platform      string
	configPath    string
}

// treeCommand creates the tree command for printing the dependency tree.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{depth: tree.DefaultMaxDepth, color: "auto"}

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Display installed packages as a dependency tree",
		Long: `Display installed packages as a dependency tree.

path may be a virtualenv, a site-packages directory, a poetry.lock file or a
JSON inventory. Without it the active virtualenv ($VIRTUAL_ENV) is used.

Packages required by nothing else are the roots. A package whose tree was
already shown is marked (*); a package that requires one of its own
ancestors is marked (cycle).`,
		Example: `  # Tree of the active virtualenv
  pkgtree tree

  # What depends on urllib3, two levels deep
  pkgtree tree --invert --depth 2 .venv

  # Leave pip and setuptools out, evaluating markers for Windows
  pkgtree tree --prune pip --prune setuptools --platform win32 .venv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultEnvironmentPath()
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no environment given and $VIRTUAL_ENV is not set")
			}
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.applyConfig(cmd, cfg.Tree)
			return c.runTree(cmd.Context(), path, opts, cfg.Environment)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.depth, "depth", "d", opts.depth, "maximum display depth of the tree (0 shows roots only)")
	f.StringArrayVar(&opts.prune, "prune", nil, "package to leave out of the tree, with its subtree (repeatable)")
	f.BoolVar(&opts.noDedupe, "no-dedupe", false, "expand a package every time it appears instead of marking repeats")
	f.BoolVar(&opts.invert, "invert", false, "show what depends on each package instead of what it depends on")
	f.BoolVar(&opts.noExtras, "no-extras", false, "ignore dependencies that only apply with an extra")
	f.BoolVar(&opts.showOrphans, "show-orphans", false, "also show packages that only require each other")
	f.BoolVar(&opts.strict, "strict", false, "fail when the environment has duplicate or unreadable packages")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "browse the tree in a pager")
	f.StringVar(&opts.color, "color", opts.color, "colorize output: auto, always or never")
	f.StringVar(&opts.pythonVersion, "python-version", "", "Python version to evaluate markers for (e.g. 3.11)")
	f.StringVar(&opts.platform, "platform", "", "platform to evaluate markers for (e.g. linux, darwin, win32)")
	f.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pkgtree/config.toml)")

	_ = cmd.RegisterFlagCompletionFunc("color",
		cobra.FixedCompletions([]string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("platform",
		cobra.FixedCompletions([]string{"linux", "darwin", "win32"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// applyConfig fills flags not given on the command line from the config file.
func (o *treeOpts) applyConfig(cmd *cobra.Command, cfg TreeConfig) {
	changed := cmd.Flags().Changed
	if !changed("depth") && cfg.Depth != nil {
		o.depth = *cfg.Depth
	}
	if !changed("prune") && len(cfg.Prune) > 0 {
		o.prune = cfg.Prune
	}
	setBool := func(name string, dst *bool, v bool) {
		if !changed(name) && v {
			*dst = true
		}
	}
	setBool("no-dedupe", &o.noDedupe, cfg.NoDedupe)
	setBool("invert", &o.invert, cfg.Invert)
	setBool("no-extras", &o.noExtras, cfg.NoExtras)
	setBool("show-orphans", &o.showOrphans, cfg.ShowOrphans)
	setBool("strict", &o.strict, cfg.Strict)
}

// environment returns the marker environment: host defaults, then the
// config file's [environment] table, then the flags.
func (o treeOpts) environment(cfg markers.Environment) markers.Environment {
	env := markers.Default().Merge(cfg)
	if o.platform != "" {
		env = env.WithPlatform(o.platform)
	}
	if o.pythonVersion != "" {
		env = env.WithPythonVersion(o.pythonVersion)
	}
	return env
}

func (c *CLI) runTree(ctx context.Context, path string, opts treeOpts, envCfg markers.Environment) error {
	logger := loggerFromContext(ctx)
	if opts.depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative, got %d", opts.depth)
	}
	color, err := useColor(opts.color, c.Out)
	if err != nil {
		return err
	}

	hooks := observability.Tree()
	start := time.Now()
	hooks.OnLoadStart(ctx, path)
	spinner := newSpinnerWithContext(ctx, os.Stderr, "Reading "+path)
	if isTerminal(os.Stderr) && !opts.interactive {
		spinner.Start()
	}
	dists, err := installed.Load(path, debugf(logger))
	spinner.Stop()
	hooks.OnLoadComplete(ctx, path, len(dists), time.Since(start), err)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	eval := markers.NewEvaluator(opts.environment(envCfg), debugf(logger))
	env := eval.Environment()
	logger.Debug("evaluating markers", "python_version", env.PythonVersion, "sys_platform", env.SysPlatform)

	start = time.Now()
	g, err := tree.Build(dists, eval, tree.BuildOptions{
		Invert:   opts.invert,
		NoExtras: opts.noExtras,
		Logger:   debugf(logger),
	})
	if err != nil {
		return err
	}
	diags := slices.Concat(g.Diagnostics(), eval.Errors())
	hooks.OnBuildComplete(ctx, g.Len(), g.Edges(), len(diags), time.Since(start))
	reportDiagnostics(logger, diags)

	start = time.Now()
	res := tree.Render(g, tree.RenderOptions{
		MaxDepth:         opts.depth,
		LimitDepth:       true,
		Prune:            opts.prune,
		NoDedupe:         opts.noDedupe,
		ShowOrphanCycles: opts.showOrphans,
	})
	hooks.OnRenderComplete(ctx, len(res.Lines), time.Since(start))

	if opts.interactive {
		if err := runPager(path, res.Lines, res.Legend()); err != nil {
			return err
		}
	} else if _, err := io.WriteString(c.Out, formatTree(res.Lines, res.Legend(), color)); err != nil {
		return err
	}

	if opts.strict && len(diags) > 0 {
		return errors.New(errors.ErrCodeInvalidPackage, "environment is inconsistent: %d problem(s) found", len(diags))
	}
	return nil
}

// useColor resolves the --color flag against the output writer.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isTerminal(w), nil
	}
	return false, errors.New(errors.ErrCodeInvalidInput, "invalid --color %q (want auto, always or never)", mode)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

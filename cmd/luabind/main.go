// Command luabind generates sol2 Lua bindings from extracted declaration
// records.
//
// Usage:
//
//	luabind generate [--config f] [-o dir] [--force] [--verbose] records...
//	luabind check [--config f] records...
//	luabind list [--config f]
//	luabind clean [--config f]
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/funvibe/luabind/internal/binding"
	"github.com/funvibe/luabind/internal/cache"
	"github.com/funvibe/luabind/internal/config"
	"github.com/funvibe/luabind/internal/pipeline"
)

const usage = `Usage: luabind <command> [options] [records...]

Commands:
  generate   generate <module>_bindings.cpp for each record file
  check      validate record files and report diagnostics without writing
  list       show the generation cache index
  clean      remove the generation cache

Options:
  --config <file>   use this luabind.yaml / luabind.toml
  -o <dir>          output directory (overrides output_dir)
  --force           regenerate even if the cache is up to date
  --verbose         log progress (--debug for more)
`

// options are the parsed command-line flags.
type options struct {
	command    string
	configPath string
	outputDir  string
	force      bool
	verbosity  int
	inputs     []string
}

func parseArgs(args []string) (*options, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command")
	}
	opts := &options{command: args[0], verbosity: -2}
	for i := 1; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--config", "-o":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s requires a value", arg)
			}
			i++
			if arg == "-o" {
				opts.outputDir = args[i]
			} else {
				opts.configPath = args[i]
			}
		case "--force":
			opts.force = true
		case "--verbose", "-v":
			opts.verbosity = 1
		case "--debug":
			opts.verbosity = 2
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option %s", arg)
			}
			opts.inputs = append(opts.inputs, arg)
		}
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		fmt.Fprint(stdout, usage)
		return 0
	}
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
		return 2
	}
	commonlog.Configure(opts.verbosity, nil)

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out := newPrinter(stdout, stderr)
	switch opts.command {
	case "generate":
		return handleGenerate(cfg, opts, out, false)
	case "check":
		return handleGenerate(cfg, opts, out, true)
	case "list":
		return handleList(cfg, out)
	case "clean":
		return handleClean(cfg, out)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", opts.command)
		fmt.Fprintln(stderr, "Available: generate, check, list, clean")
		return 2
	}
}

// loadConfig uses --config, else the nearest luabind.yaml, else defaults
// rooted at the working directory.
func loadConfig(opts *options) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}

	path := opts.configPath
	if path == "" {
		if path, err = config.FindConfig(cwd); err != nil {
			return nil, err
		}
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
		cfg.Dir = cwd
	} else if cfg, err = config.LoadConfig(path); err != nil {
		return nil, err
	}

	if opts.outputDir != "" {
		abs, err := filepath.Abs(opts.outputDir)
		if err != nil {
			return nil, fmt.Errorf("resolving output directory: %w", err)
		}
		cfg.OutputDir = abs
	}
	return cfg, nil
}

func handleGenerate(cfg *config.Config, opts *options, out *printer, checkOnly bool) int {
	if len(opts.inputs) == 0 {
		out.errorf("no record files given")
		return 2
	}

	var c *cache.Cache
	if !checkOnly {
		var err error
		if c, err = cache.Open(cfg.CachePath()); err != nil {
			out.warnf("cache disabled: %v", err)
			c = nil
		} else {
			defer c.Close()
		}
	}

	gen := binding.NewGenerator(binding.FromConfig(cfg))
	p := pipeline.Standard(gen, c)

	status := 0
	for _, input := range opts.inputs {
		ctx := pipeline.NewPipelineContext(input, cfg)
		ctx.Force = opts.force
		ctx.CheckOnly = checkOnly
		ctx = p.Run(ctx)

		for _, err := range ctx.Errors {
			out.errorf("%v", err)
		}
		if ctx.Result != nil {
			for _, w := range ctx.Result.Warnings {
				out.warnf("%s: %s", ctx.Module(), w)
			}
			for _, e := range ctx.Result.Errors {
				out.errorf("%s: %s", ctx.Module(), e)
			}
		}

		switch {
		case ctx.Failed():
			status = 1
		case ctx.Cached != nil:
			out.linef("%s %s is up to date (%s)", out.dim("="), ctx.Module(), ctx.OutputPath)
		case checkOnly:
			s := ctx.Result.Stats
			out.linef("%s %s: %d bindings (%d classes, %d functions, %d constants, %d enums, %d containers)",
				out.ok("✓"), ctx.Module(), ctx.Result.BindingCount, s.Classes, s.Functions, s.Constants, s.Enums, s.Containers)
			if len(ctx.Result.Errors) > 0 {
				status = 1
			}
		default:
			out.linef("%s %s → %s (%d bindings)", out.ok("✓"), ctx.Module(), ctx.OutputPath, ctx.Result.BindingCount)
		}
	}
	return status
}

func handleList(cfg *config.Config, out *printer) int {
	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	defer c.Close()

	entries, err := c.Entries()
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	if len(entries) == 0 {
		out.linef("No generated modules in %s", c.Dir())
		return 0
	}
	for _, e := range entries {
		out.linef("%-20s %5d bindings  %s  %s  %s",
			e.Module, e.Bindings, e.Fingerprint, e.GeneratedAt.Format("2006-01-02 15:04:05"), e.OutputPath)
	}
	return 0
}

func handleClean(cfg *config.Config, out *printer) int {
	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	if err := c.Clean(); err != nil {
		out.errorf("%v", err)
		return 1
	}
	out.linef("Removed %s", c.Dir())
	return 0
}

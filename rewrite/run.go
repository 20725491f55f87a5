// Package rewrite implements the rewrite command: it finds stylesheets,
// rewrites selectors of every rule and prints or saves results.
package rewrite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"spelunk/config"
	"spelunk/css"
	"spelunk/selector"
	"spelunk/state"
)

// Flags returns command line flags of the rewrite command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Required: true, Usage: "`type:value` to look for, type can be one of " + strings.Join(selector.KindNames(), ", ")},
		&cli.StringFlag{Name: "to", Usage: "`type:value` to put in place of found selectors, required unless removing"},
		&cli.BoolFlag{Name: "remove", Aliases: []string{"R"}, Usage: "remove found selectors rather than replace"},
		&cli.BoolFlag{Name: "scss", Aliases: []string{"s"}, Usage: "parse stylesheets as SCSS"},
		&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "write changes back instead of printing"},
	}
}

// Run is the action of rewrite command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("rewrite")

	opts, err := optionsFromCommand(cmd)
	if err != nil {
		return err
	}
	env.Options, env.Write = opts, cmd.Bool("write")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}

	// turn on VT processing where necessary
	config.EnableColorOutput(os.Stdout)

	log.Info("Processing starting", zap.Stringer("from", opts.From), zap.Stringer("mode", opts.Mode), zap.Bool("write", env.Write))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, cmd.Args().Slice(), os.Stdout, log)
}

func optionsFromCommand(cmd *cli.Command) (selector.Options, error) {
	opts := selector.Options{Mode: selector.ModeReplace, SCSS: cmd.Bool("scss")}
	if cmd.Bool("remove") {
		opts.Mode = selector.ModeRemove
	}

	from, err := parseTarget("from", cmd.String("from"))
	if err != nil {
		return opts, err
	}
	opts.From = from

	if cmd.IsSet("to") {
		to, err := parseTarget("to", cmd.String("to"))
		if err != nil {
			return opts, err
		}
		opts.To = &to
	}
	return opts, opts.Validate()
}

func parseTarget(option, value string) (selector.Target, error) {
	t, err := selector.ParseTarget(value)
	var cerr *selector.ConfigurationError
	if errors.As(err, &cerr) {
		cerr.Option = option
	}
	return t, err
}

type job struct {
	path string
	scss bool
	dump bool // keep selector trees for debug report
}

type result struct {
	source  []byte // file content as read
	output  []byte // content to be written back, same encoding as source
	text    []byte // rewritten stylesheet in UTF-8
	tree    []byte // rewritten selectors dump, only when requested
	codec   string
	rules   int
	changed int
}

// process handles the core rewriting logic independently of CLI framework.
// Stylesheets are rewritten in parallel, results are reported in the order
// sources were given. Failure of a single file does not stop others.
func process(ctx context.Context, sources []string, out io.Writer, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	rw, err := selector.NewRewriter(env.Options)
	if err != nil {
		return err
	}

	jobs, err := collectJobs(ctx, sources, env, log)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		log.Warn("Nothing to process", zap.Strings("sources", sources))
		return nil
	}

	workers := runtime.NumCPU()
	if env.Cfg != nil && env.Cfg.Rewrite.Workers > 0 {
		workers = env.Cfg.Rewrite.Workers
	}

	results := make([]*result, len(jobs))
	failures := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], failures[i] = rewriteFile(j, rw, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var (
		pr               = newPrinter(out)
		rules, changed   int
		written, skipped int
	)
	for i, j := range jobs {
		if failures[i] != nil {
			log.Error("Unable to rewrite stylesheet", zap.String("file", j.path), zap.Error(failures[i]))
			err = multierr.Append(err, fmt.Errorf("%s: %w", j.path, failures[i]))
			continue
		}
		res := results[i]
		rules += res.rules
		changed += res.changed

		env.Rpt.StoreData(config.EntryName("original", j.path), res.source)
		env.Rpt.StoreData(config.EntryName("result", j.path), res.output)
		if res.tree != nil {
			env.Rpt.StoreData(config.EntryName("selectors", j.path)+".txt", res.tree)
		}

		if !env.Write {
			if perr := pr.result(j.path, res.text); perr != nil {
				return multierr.Append(err, perr)
			}
			continue
		}
		if res.changed == 0 {
			log.Debug("Nothing to rewrite, leaving file as is", zap.String("file", j.path))
			skipped++
			continue
		}
		if werr := writeFile(j.path, res.output); werr != nil {
			log.Error("Unable to write stylesheet", zap.String("file", j.path), zap.Error(werr))
			err = multierr.Append(err, fmt.Errorf("%s: %w", j.path, werr))
			continue
		}
		written++
		if perr := pr.written(j.path); perr != nil {
			return multierr.Append(err, perr)
		}
	}

	log.Info("Stylesheets processed",
		zap.Int("files", len(jobs)),
		zap.Int("failed", len(multierr.Errors(err))),
		zap.Int("written", written),
		zap.Int("unchanged", skipped),
		zap.Int("rules", rules),
		zap.Int("changed", changed))
	return err
}

// collectJobs expands sources into the list of files to process. Directories
// are walked recursively, files given explicitly are always processed.
func collectJobs(ctx context.Context, sources []string, env *state.LocalEnv, log *zap.Logger) ([]job, error) {
	var (
		jobs []job
		seen = make(map[string]bool)
	)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		jobs = append(jobs, job{path: path, scss: env.SCSS(path), dump: env.Rpt != nil})
	}

	extensions := []string{".css", ".scss"}
	if env.Cfg != nil {
		extensions = env.Cfg.Rewrite.Extensions
	}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := filepath.Abs(src)
		if err != nil {
			return nil, err
		}
		fi, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file at %s does not exist", path)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case fi.Mode().IsRegular():
			add(path)
		case fi.IsDir():
			files, err := walkDir(ctx, path, extensions, log)
			if err != nil {
				return nil, fmt.Errorf("unable to process directory: %w", err)
			}
			if len(files) == 0 {
				log.Debug("Nothing to process", zap.String("dir", path))
			}
			for _, f := range files {
				add(f)
			}
		default:
			return nil, fmt.Errorf("unexpected path mode for %s", path)
		}
	}
	return jobs, nil
}

// walkDir returns stylesheets found under dir in natural order.
func walkDir(ctx context.Context, dir string, extensions []string, log *zap.Logger) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ok, err := isStylesheetFile(path, extensions)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !ok {
			log.Debug("Skipping file, not recognized as stylesheet", zap.String("file", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, naturalCompare)
	return files, nil
}

func naturalCompare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// rewriteFile runs single stylesheet through decode, parse, rewrite, encode.
func rewriteFile(j job, rw *selector.Rewriter, log *zap.Logger) (*result, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, err
	}
	c, err := detectCodec(data)
	if err != nil {
		return nil, err
	}
	text, err := c.decode(data)
	if err != nil {
		return nil, err
	}

	sheet, err := css.NewParser(log, j.scss).Parse(text, j.path)
	if err != nil {
		return nil, err
	}

	var popts []selector.ParseOption
	if j.scss {
		popts = append(popts, selector.WithSCSS())
	}

	var tree bytes.Buffer
	res := &result{source: data, codec: c.name, rules: len(sheet.Rules())}
	err = sheet.RewriteSelectors(func(rule *css.Rule) error {
		list, err := selector.Parse(rule.Selector, popts...)
		if err != nil {
			return err
		}
		n := rw.Rewrite(list)
		rule.Selector = list.String()
		res.changed += n
		if !j.dump {
			return nil
		}
		fmt.Fprintf(&tree, "rule at line %d, %d changed\n", rule.SourceLine, n)
		return selector.Dump(&tree, 1, list)
	})
	if err != nil {
		return nil, err
	}
	if j.dump {
		res.tree = tree.Bytes()
	}

	if res.changed == 0 {
		res.text, res.output = text, data
	} else {
		res.text = []byte(sheet.String())
		if res.output, err = c.encode(res.text); err != nil {
			return nil, err
		}
	}

	log.Debug("Stylesheet rewritten",
		zap.String("file", j.path),
		zap.String("encoding", res.codec),
		zap.Bool("scss", j.scss),
		zap.Int("rules", res.rules),
		zap.Int("changed", res.changed),
		zap.Strings("warnings", sheet.Warnings))
	return res, nil
}

// writeFile replaces file content keeping its permissions. New content goes
// to a temporary file next to the target first so target is never left half
// written.
func writeFile(path string, data []byte) (err error) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+id.String())
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = os.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err = os.Chmod(tmp, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

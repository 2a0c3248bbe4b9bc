// Package extract runs a whole analysis: it parses the discovered units in
// parallel, builds the binding oracle over them, then runs the definition
// pass and the reference pass over every unit in path order.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/def"
	"github.com/phobologic/cppfacts/internal/dict"
	"github.com/phobologic/cppfacts/internal/discover"
	"github.com/phobologic/cppfacts/internal/lang"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/oracle"
	"github.com/phobologic/cppfacts/internal/parse"
	"github.com/phobologic/cppfacts/internal/ref"
	"github.com/phobologic/cppfacts/internal/resolve"
	"github.com/phobologic/cppfacts/internal/stack"
)

// ErrNoUnits is returned when no unit could be parsed.
var ErrNoUnits = errors.New("no translation units could be parsed")

// Options tunes a run. The zero value is usable.
type Options struct {
	// Workers bounds parallel parsing; zero means GOMAXPROCS.
	Workers int
	// MaxFileSize skips larger files; zero means no limit.
	MaxFileSize int64
	// CacheSize is the oracle lookup cache size; zero means the default.
	CacheSize int
	// Policy holds the container creation heuristics. Nil means the default.
	Policy *resolve.Policy
	// Logger receives progress and skip events; nil means slog.Default.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) policy() resolve.Policy {
	if o.Policy != nil {
		return *o.Policy
	}
	return resolve.DefaultPolicy()
}

// Result is the outcome of a run.
type Result struct {
	Model *model.Model
	// Files lists the analysed units in path order.
	Files []string
	// Skipped lists the units that could not be read or parsed.
	Skipped []string
}

// Run analyses files, given relative to root.
func Run(ctx context.Context, root string, files []discover.FileEntry, opts Options) (*Result, error) {
	units, skipped, err := parseAll(ctx, root, files, opts)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, ErrNoUnits
	}

	m, err := Analyze(units, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{Model: m, Skipped: skipped}
	for _, u := range units {
		res.Files = append(res.Files, u.Pos.File)
	}
	return res, nil
}

// Analyze runs both passes over already parsed units, which must be in path
// order, and returns the resulting model.
func Analyze(units []*ast.Node, opts Options) (*model.Model, error) {
	log := opts.logger()

	ix, err := oracle.Build(units, opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("building oracle: %w", err)
	}
	log.Debug("oracle.built", "names", ix.Len())

	d := dict.New()
	r := resolve.New(d, stack.New(d.Model()), ix, opts.policy())
	definer := def.New(r)
	builder := ref.NewBuilder(definer)

	for _, u := range units {
		definer.Pass(u.Pos.File, u)
	}
	log.Debug("pass.def", "units", len(units), "entities", d.Model().EntityCount())

	for _, u := range units {
		builder.Pass(u.Pos.File, u)
	}
	log.Debug("pass.ref", "units", len(units), "associations", len(d.Model().Associations()))

	return d.Model(), nil
}

// parseAll reads and parses files concurrently and returns the units that
// succeeded in the order of files, plus the paths that were skipped.
func parseAll(ctx context.Context, root string, files []discover.FileEntry, opts Options) ([]*ast.Node, []string, error) {
	log := opts.logger()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	units := make([]*ast.Node, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := parseFile(ctx, root, f, opts.MaxFileSize)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("unit.skip", "path", f.Path, "err", err)
				return nil
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parsing units: %w", err)
	}

	var (
		kept    []*ast.Node
		skipped []string
	)
	for i, u := range units {
		if u == nil {
			skipped = append(skipped, files[i].Path)
			continue
		}
		kept = append(kept, u)
	}
	return kept, skipped, nil
}

// errTooLarge marks a file over the size limit.
var errTooLarge = errors.New("file exceeds size limit")

func parseFile(ctx context.Context, root string, f discover.FileEntry, maxSize int64) (*ast.Node, error) {
	l := lang.Languages[f.Language]
	if l == nil {
		return nil, fmt.Errorf("unsupported language %q", f.Language)
	}

	path := filepath.Join(root, filepath.FromSlash(f.Path))
	if maxSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		if info.Size() > maxSize {
			return nil, fmt.Errorf("%s: %w (%d > %d bytes)", f.Path, errTooLarge, info.Size(), maxSize)
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}

	// Parsers are not safe for concurrent use; each unit gets its own.
	parser := l.NewParser()
	defer parser.Close()
	return parse.Unit(ctx, parser, source, f.Path)
}

// cppfacts extracts a fact model of a C++ code base (entities and the
// accesses, invocations, references and inheritance between them) and prints
// it in TOON format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phobologic/cppfacts/internal/config"
	"github.com/phobologic/cppfacts/internal/discover"
	"github.com/phobologic/cppfacts/internal/extract"
	"github.com/phobologic/cppfacts/internal/graph"
	"github.com/phobologic/cppfacts/internal/ranking"
	"github.com/phobologic/cppfacts/internal/toon"
)

var version = "dev"

const header = "# C++ Fact Map\n"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

type outputFlags struct {
	cachePath string
	symbol    string
	file      string
	raw       bool
	facts     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:           "cppfacts [flags] [root]",
		Short:         "Extract a C++ fact model and print it in TOON format",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return analyze(cmd, root, out, stdout)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("cppfacts {{.Version}}\n")

	d := config.Default()
	f := cmd.Flags()
	f.IntP("max-files", "n", d.MaxFiles, "maximum number of files to include")
	f.Int64("max-file-size", d.MaxFileSize, "skip files larger than this many bytes")
	f.Int("workers", d.Workers, "parallel parsers (0 means one per CPU)")
	f.Int("oracle-cache", d.CacheSize, "memoized binding lookups")
	f.Bool("no-headers", d.NoHeaders, "skip header files")
	f.Bool("no-tests", d.NoTests, "skip test sources")
	f.StringSlice("exclude", d.Exclude, "gitignore-style patterns to skip")
	f.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&out.cachePath, "cache", "", "cache file path")
	f.StringVarP(&out.symbol, "symbol", "s", "", "only symbols whose name contains this")
	f.StringVarP(&out.file, "file", "f", "", "only files whose path contains this")
	f.BoolVar(&out.raw, "raw", false, "omit the leading header")
	f.BoolVar(&out.facts, "facts", false, "print every entity and association instead of the summary")
	cmd.Flags().BoolP("version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr), newVersionCmd(stdout))
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print cppfacts version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(stdout, "cppfacts %s\n", version)
			return err
		},
	}
}

func analyze(cmd *cobra.Command, root string, out outputFlags, stdout io.Writer) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	cfg, err := config.Load(v, root)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	files, err := discover.Files(root, discover.Options{
		NoHeaders: cfg.NoHeaders,
		NoTests:   cfg.NoTests,
		Exclude:   cfg.Exclude,
	})
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return errors.New("no C++ files found")
	}
	log.Debug("discover.done", "root", root, "files", len(files))

	filtered := out.symbol != "" || out.file != ""
	useCache := out.cachePath != "" && !filtered && !out.facts
	if useCache && cacheIsFresh(out.cachePath, root, files) {
		if data, err := os.ReadFile(out.cachePath); err == nil {
			return emit(stdout, string(data), out.raw)
		}
	}

	policy := cfg.Policy()
	res, err := extract.Run(cmd.Context(), root, files, extract.Options{
		Workers:     cfg.Workers,
		MaxFileSize: cfg.MaxFileSize,
		CacheSize:   cfg.CacheSize,
		Policy:      &policy,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	for _, p := range res.Skipped {
		log.Info("unit.skipped", "path", p)
	}

	var body string
	if out.facts {
		body = toon.EncodeModel(res.Model)
	} else {
		name := filepath.Base(root)
		s := graph.Summarize(res.Model, name, name, res.Files)
		if out.symbol != "" {
			s = ranking.FilterBySymbol(s, out.symbol)
		}
		if out.file != "" {
			s = ranking.FilterByFile(s, out.file)
		}
		if !filtered {
			// Call sites are only listed for focused queries.
			s.CallSites = nil
		}
		s = ranking.SelectFiles(s, cfg.MaxFiles)
		body = toon.Encode(s)
	}

	if useCache {
		if err := os.WriteFile(out.cachePath, []byte(body), 0o644); err != nil {
			log.Warn("cache.write", "path", out.cachePath, "err", err)
		}
	}
	return emit(stdout, body, out.raw)
}

func emit(stdout io.Writer, body string, raw bool) error {
	if !raw {
		if _, err := fmt.Fprint(stdout, header+"\n"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(stdout, body)
	return err
}

func cacheIsFresh(cachePath, root string, files []discover.FileEntry) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(f.Path)))
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

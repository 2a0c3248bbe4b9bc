package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/cppfacts/internal/config"
)

const (
	sentinelStart = "# cppfacts:start"
	sentinelEnd   = "# cppfacts:end"

	// defaultCachePath is the conventional --cache file.
	defaultCachePath = ".cppfacts-cache"
)

// newInitCmd implements `cppfacts init`, which writes a default
// .cppfacts.yaml into a source tree and keeps the cache file out of git.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default " + config.FileName + " and ignore the cache file",
		Long: `Write a default ` + config.FileName + ` to dir (default: the current
directory) and add a cppfacts section to dir/.gitignore. The section is wrapped
in sentinel comments so it is updated in place on later runs. An existing
config file is left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, dryRun, force, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying any file")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func runInit(dir string, dryRun, force bool, stdout, stderr io.Writer) error {
	cfgPath := filepath.Join(dir, config.FileName)
	ignorePath := filepath.Join(dir, ".gitignore")

	existing, err := os.ReadFile(ignorePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", ignorePath, err)
	}
	ignore := applySection(string(existing), generateSection())

	if dryRun {
		cfg, err := config.Marshal(config.Default())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "--- %s\n%s--- %s\n%s", cfgPath, cfg, ignorePath, ignore)
		return nil
	}

	_, statErr := os.Stat(cfgPath)
	switch {
	case statErr == nil && !force:
		_, _ = fmt.Fprintf(stderr, "%s exists, leaving it (use --force to overwrite)\n", cfgPath)
	default:
		if err := config.WriteDefault(cfgPath, true); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stderr, "wrote %s\n", cfgPath)
	}

	if err := os.WriteFile(ignorePath, []byte(ignore), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ignorePath, err)
	}
	_, _ = fmt.Fprintf(stderr, "wrote cppfacts section to %s\n", ignorePath)
	return nil
}

// generateSection returns the sentinel-wrapped .gitignore block.
func generateSection() string {
	return sentinelStart + "\n" + defaultCachePath + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if len(content) > 0 {
		content += "\n"
	}
	return content + section + "\n"
}

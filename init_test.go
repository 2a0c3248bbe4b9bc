package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/cppfacts/internal/config"
)

// TestApplySectionCreate verifies that applySection on empty content wraps the
// section in sentinels with a trailing newline.
func TestApplySectionCreate(t *testing.T) {
	t.Parallel()
	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	if got != section+"\n" {
		t.Errorf("got %q", got)
	}
}

// TestApplySectionAppend verifies that existing content without a sentinel block
// is preserved and the section is appended.
func TestApplySectionAppend(t *testing.T) {
	t.Parallel()
	existing := "*.o\nbuild/"
	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(existing, section)

	if !strings.HasPrefix(got, existing+"\n\n") {
		t.Errorf("existing content should be preserved and separated:\n%s", got)
	}
	if !strings.Contains(got, "new content") {
		t.Error("new content missing")
	}
}

// TestApplySectionUpdate verifies that an existing sentinel block is replaced
// precisely, leaving surrounding content intact.
func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()
	before := "*.o\n\n"
	after := "\n\nbuild/\n"
	old := before + sentinelStart + "\nold content\n" + sentinelEnd + after

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	got := applySection(old, section)

	if !strings.HasPrefix(got, before) {
		t.Errorf("content before sentinel should be preserved:\n%s", got)
	}
	if !strings.HasSuffix(got, after) {
		t.Errorf("content after sentinel should be preserved:\n%s", got)
	}
	if strings.Contains(got, "old content") {
		t.Error("old content should be replaced")
	}
}

// TestInitCreatesFiles verifies that init writes a config that loads back as
// the defaults and a .gitignore listing the cache file.
func TestInitCreatesFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	want, err := config.Marshal(config.Default())
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("config not created: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("config = %q, want %q", got, want)
	}

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		t.Fatalf(".gitignore not created: %v", err)
	}
	if !strings.Contains(string(ignore), defaultCachePath) {
		t.Errorf(".gitignore missing %s:\n%s", defaultCachePath, ignore)
	}
	if !strings.Contains(stderr.String(), "wrote") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// TestInitDryRun verifies that --dry-run prints both files to stdout and
// writes nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := "*.o\n"
	ignorePath := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(ignorePath, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "--dry-run", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		t.Error("--dry-run should not create the config")
	}
	data, _ := os.ReadFile(ignorePath)
	if string(data) != existing {
		t.Error("--dry-run must not modify .gitignore")
	}

	out := stdout.String()
	for _, want := range []string{"max-file-size:", "*.o", sentinelStart, defaultCachePath} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
}

// TestInitKeepsExistingConfig verifies that an edited config survives init
// unless --force is given.
func TestInitKeepsExistingConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte("max-files: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "max-files: 3\n" {
		t.Errorf("config overwritten without --force: %q", data)
	}
	if !strings.Contains(stderr.String(), "--force") {
		t.Errorf("stderr should mention --force: %q", stderr.String())
	}

	if err := run([]string{"init", "--force", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("init --force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "max-file-size:") {
		t.Errorf("--force should rewrite the config: %q", data)
	}
}

// TestInitIdempotent verifies that running init twice leaves one section in
// .gitignore.
func TestInitIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")

	var buf bytes.Buffer
	if err := run([]string{"init", dir}, &buf, &buf); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := run([]string{"init", dir}, &buf, &buf); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("init is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if n := strings.Count(string(second), sentinelStart); n != 1 {
		t.Errorf("want one section, got %d", n)
	}
}

// TestInitTooManyArgs verifies init takes at most one directory.
func TestInitTooManyArgs(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "a", "b"}, &stdout, &stderr); err == nil {
		t.Error("expected error for two directories")
	}
}

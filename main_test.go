package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "shape.h", `#ifndef SHAPE_H
#define SHAPE_H
class Shape {
public:
  virtual int area();
};
#endif
`)
	writeTestFile(t, dir, "square.cpp", `#include "shape.h"
class Square : public Shape {
public:
  int s;
  int area() { return s * s; }
};

int helper(int x) { return x; }

int greet() {
  Square q;
  helper(1);
  return q.area();
}
`)
	return dir
}

func createCallRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "utils.cpp", "void helper() {}\n")
	writeTestFile(t, dir, "main.cpp", "void greet() {\n  helper();\n  helper();\n}\n")
	return dir
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "# C++ Fact Map\n\nrepo:") {
		t.Errorf("header should be followed by one blank line:\n%s", out)
	}
	if !strings.Contains(out, "repo:") {
		t.Error("missing repo: header")
	}
	if !strings.Contains(out, "files[2]") {
		t.Errorf("expected 2 files, got:\n%s", out)
	}
	if !strings.Contains(out, "shape.h") || !strings.Contains(out, "square.cpp") {
		t.Errorf("missing files:\n%s", out)
	}
}

func TestRunRaw(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--raw", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if strings.Contains(out, "# C++ Fact Map") {
		t.Error("--raw should suppress header")
	}
	if !strings.HasPrefix(out, "repo:") {
		t.Errorf("--raw output should start with repo:, got:\n%s", out)
	}
}

func TestRunMaxFiles(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	// Flags after the positional argument are accepted.
	err := run([]string{dir, "-n", "1"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(stdout.String(), "files[1]") {
		t.Errorf("expected 1 file, got:\n%s", stdout.String())
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"-V"}, {"--version"}, {"version"}} {
		var stdout, stderr bytes.Buffer
		if err := run(args, &stdout, &stderr); err != nil {
			t.Fatalf("run %v: %v", args, err)
		}
		if !strings.Contains(stdout.String(), "cppfacts dev") {
			t.Errorf("run %v: version output %q", args, stdout.String())
		}
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.txt", "nothing here")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for no C++ files")
	}
	if !strings.Contains(err.Error(), "no C++ files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunTooManyArgs(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{t.TempDir(), t.TempDir()}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for two roots")
	}
}

func TestRunCache(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	cachePath := filepath.Join(t.TempDir(), "test.cache")

	var stdout1, stderr1 bytes.Buffer
	err := run([]string{"--cache", cachePath, dir}, &stdout1, &stderr1)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	cacheData, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatalf("cache not created: %v", err)
	}
	if strings.Contains(string(cacheData), "# C++ Fact Map") {
		t.Error("cache file should not contain the header")
	}

	// Second run should use cache and include header
	var stdout2, stderr2 bytes.Buffer
	err = run([]string{"--cache", cachePath, dir}, &stdout2, &stderr2)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if stdout1.String() != stdout2.String() {
		t.Errorf("cache mismatch:\nfirst:\n%s\nsecond:\n%s", stdout1.String(), stdout2.String())
	}

	// --raw over the cache drops the header
	var stdout3 bytes.Buffer
	if err := run([]string{"--raw", "--cache", cachePath, dir}, &stdout3, &bytes.Buffer{}); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if !strings.HasPrefix(stdout3.String(), "repo:") {
		t.Errorf("--raw cached output should start with repo:, got:\n%s", stdout3.String())
	}
}

func TestRunSymbols(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"square.cpp,Square,class",
		"shape.h,Shape,class",
		`square.cpp,"Square::area()",method`,
		"square.cpp,helper(_),function",
		"square.cpp,greet(),function",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing symbol row %q:\n%s", want, out)
		}
	}
}

func TestRunDependencies(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Square inherits Shape, defined in shape.h
	if !strings.Contains(stdout.String(), "square.cpp,shape.h,Shape") {
		t.Errorf("missing dependency square.cpp → shape.h:\n%s", stdout.String())
	}
}

func TestRunCalls(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "greet(),helper(_)") {
		t.Errorf("missing greet→helper call edge:\n%s", out)
	}
	if !strings.Contains(out, `greet(),"Square::area()"`) {
		t.Errorf("missing greet→Square::area call edge:\n%s", out)
	}
	if strings.Contains(out, "callsites[") {
		t.Errorf("full output should not include callsites:\n%s", out)
	}
}

func TestRunFacts(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--raw", "--facts", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "entities[") {
		t.Errorf("facts output should start with entities:\n%s", out)
	}
	for _, want := range []string{"associations[", ",inheritance,", ",invocation,", ",access,"} {
		if !strings.Contains(out, want) {
			t.Errorf("facts output missing %q:\n%s", want, out)
		}
	}
}

func TestRunNotADirectory(t *testing.T) {
	t.Parallel()
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err := run([]string{f}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for non-directory")
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "small.cpp", "int x = 1;\n")
	writeTestFile(t, dir, "big.cpp", strings.Repeat("int y = 1;\n", 200))

	var stdout, stderr bytes.Buffer
	err := run([]string{"--max-file-size", "100", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "small.cpp") {
		t.Error("missing small.cpp")
	}
	if strings.Contains(out, "big.cpp") {
		t.Error("big.cpp should be filtered out")
	}
	if !strings.Contains(stderr.String(), "unit.skip") {
		t.Errorf("expected warning about skipped file, got %q", stderr.String())
	}
}

func TestRunNoHeaders(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--no-headers", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "files[1]") {
		t.Errorf("expected only square.cpp:\n%s", stdout.String())
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	writeTestFile(t, dir, ".cppfacts.yaml", "max-files: 1\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "files[1]") {
		t.Errorf("config max-files not applied:\n%s", stdout.String())
	}

	// Flags win over the file.
	stdout.Reset()
	if err := run([]string{"-n", "2", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "files[2]") {
		t.Errorf("flag should override config:\n%s", stdout.String())
	}
}

func TestRunBadLogLevel(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--log-level", "loud", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Fatalf("expected log level error, got %v", err)
	}
}

func TestRunSymbolFilter(t *testing.T) {
	t.Parallel()
	dir := createCallRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--symbol", "helper", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "utils.cpp") {
		t.Errorf("utils.cpp (defines helper) should be in output:\n%s", out)
	}
	// greet calls helper, so main.cpp is included via call expansion.
	if !strings.Contains(out, "main.cpp") {
		t.Errorf("main.cpp (defines greet which calls helper) should be in output:\n%s", out)
	}
	if !strings.Contains(out, "helper(),function") {
		t.Errorf("helper definition should appear in symbols:\n%s", out)
	}
	if !strings.Contains(out, "callsites[2]") {
		t.Errorf("--symbol output should list both call sites:\n%s", out)
	}
}

func TestRunSymbolFilterNoMatch(t *testing.T) {
	t.Parallel()
	dir := createCallRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--symbol", "NoSuchSymbol", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !strings.Contains(stdout.String(), "files[0]") {
		t.Errorf("expected empty files table:\n%s", stdout.String())
	}
}

func TestRunFileFilter(t *testing.T) {
	t.Parallel()
	dir := createCallRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--file", "utils", dir}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "files[1]") || !strings.Contains(out, "utils.cpp") {
		t.Errorf("only utils.cpp should be listed:\n%s", out)
	}
	if !strings.Contains(out, "helper(),function") {
		t.Errorf("helper definition should appear:\n%s", out)
	}
}

func TestRunSymbolFilterCacheSkipped(t *testing.T) {
	t.Parallel()
	dir := createCallRepo(t)
	cachePath := filepath.Join(t.TempDir(), "cache.toon")

	// First run: no filter, write cache.
	if err := run([]string{"--cache", cachePath, dir}, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache not written: %v", err)
	}

	// Second run: with --symbol filter. Cache is bypassed.
	var stdout2 bytes.Buffer
	if err := run([]string{"--symbol", "greet", "--cache", cachePath, dir}, &stdout2, &bytes.Buffer{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(stdout2.String(), "callsites[") {
		t.Errorf("filter should work even when cache exists:\n%s", stdout2.String())
	}
}

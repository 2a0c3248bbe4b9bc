package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/cppfacts/internal/discover"
	"github.com/phobologic/cppfacts/internal/model"
)

const shapeHeader = `#ifndef SHAPE_H
#define SHAPE_H
class Shape {
public:
  virtual int area();
};
#endif
`

const squareSource = `#include "shape.h"
class Square : public Shape {
  int s;
public:
  int area() { return s * s; }
};

int total(Square* q) {
  return q->area();
}
`

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func findEntity(t *testing.T, m *model.Model, kind model.Kind, name string) *model.Entity {
	t.Helper()
	for _, e := range m.Entities() {
		if e.Kind == kind && e.Name == name {
			return e
		}
	}
	t.Fatalf("missing %s %s", kind, name)
	return nil
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"src/shape.h":    shapeHeader,
		"src/square.cpp": squareSource,
	})
	files, err := discover.Files(root, discover.Options{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	res, err := Run(context.Background(), root, files, Options{Workers: 2, Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/shape.h", "src/square.cpp"}, res.Files)
	assert.Empty(t, res.Skipped)

	m := res.Model
	shape := findEntity(t, m, model.Class, "Shape")
	square := findEntity(t, m, model.Class, "Square")
	total := findEntity(t, m, model.Function, "total")
	pkg := findEntity(t, m, model.Package, "src")

	assert.False(t, square.Stub)
	assert.Equal(t, pkg.ID, square.Package)
	require.NotNil(t, square.Anchor)
	assert.Equal(t, "src/square.cpp", square.Anchor.File)

	inh := m.AssociationsFrom(square.ID, model.Inheritance)
	require.Len(t, inh, 1)
	assert.Equal(t, shape.ID, inh[0].To)

	calls := m.AssociationsFrom(total.ID, model.Invocation)
	require.Len(t, calls, 1)
	callee := m.Entity(calls[0].To)
	assert.Equal(t, "area", callee.Name)
	assert.Equal(t, square.ID, callee.Owner)

	s := findEntity(t, m, model.Attribute, "s")
	assert.Equal(t, square.ID, s.Owner)
	assert.Len(t, m.AssociationsFrom(callee.ID, model.Access), 2)
}

func TestRunFunctionPointerLocal(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"fp.cpp": "void g() {\n  void (*fp)();\n  fp();\n}\n",
	})
	files := []discover.FileEntry{{Path: "fp.cpp", Language: "cpp"}}

	res, err := Run(context.Background(), root, files, Options{Logger: quiet()})
	require.NoError(t, err)

	m := res.Model
	g := findEntity(t, m, model.Function, "g")
	fp := findEntity(t, m, model.LocalVariable, "fp")
	assert.Equal(t, g.ID, fp.Owner)

	deref := m.AssociationsFrom(g.ID, model.DereferencedInvocation)
	require.Len(t, deref, 1)
	assert.Equal(t, fp.ID, deref[0].To)
	assert.Empty(t, m.AssociationsFrom(g.ID, model.Invocation))
}

func TestRunSkipsUnreadableUnits(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.cpp": "int a;\n"})
	files := []discover.FileEntry{
		{Path: "a.cpp", Language: "cpp"},
		{Path: "missing.cpp", Language: "cpp"},
	}

	res, err := Run(context.Background(), root, files, Options{Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cpp"}, res.Files)
	assert.Equal(t, []string{"missing.cpp"}, res.Skipped)
}

func TestRunSizeLimit(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"small.cpp": "int a;\n",
		"big.cpp":   "int a; int b; int c; int d; int e; int f;\n",
	})
	files := []discover.FileEntry{
		{Path: "big.cpp", Language: "cpp"},
		{Path: "small.cpp", Language: "cpp"},
	}

	res, err := Run(context.Background(), root, files, Options{MaxFileSize: 16, Logger: quiet()})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.cpp"}, res.Files)
	assert.Equal(t, []string{"big.cpp"}, res.Skipped)
}

func TestRunNoUnits(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := []discover.FileEntry{{Path: "gone.cpp", Language: "cpp"}}

	_, err := Run(context.Background(), root, files, Options{Logger: quiet()})
	assert.True(t, errors.Is(err, ErrNoUnits))
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.cpp": "int a;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, root, []discover.FileEntry{{Path: "a.cpp", Language: "cpp"}}, Options{Logger: quiet()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

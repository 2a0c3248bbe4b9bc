// Package ranking narrows a summary to the files and symbols worth printing.
package ranking

import (
	"strings"

	"github.com/phobologic/cppfacts/internal/graph"
	"github.com/phobologic/cppfacts/internal/qname"
)

// SelectFiles returns a new summary with only the top-ranked files.
// If maxFiles is <= 0 or >= len(files), s is returned.
func SelectFiles(s *graph.Summary, maxFiles int) *graph.Summary {
	if maxFiles <= 0 || maxFiles >= len(s.Files) {
		return s
	}

	selected := s.Files[:maxFiles]
	paths := make(map[string]struct{}, maxFiles)
	for i := range selected {
		paths[selected[i].Path] = struct{}{}
	}
	return restrict(s, selected, paths, func(d *graph.Dependency) bool {
		_, srcOK := paths[d.Source]
		_, tgtOK := paths[d.Target]
		return srcOK && tgtOK
	})
}

// FilterByFile returns a new summary holding the files whose path contains
// substr (case-insensitive) and every dependency touching them.
func FilterByFile(s *graph.Summary, substr string) *graph.Summary {
	lower := strings.ToLower(substr)

	paths := make(map[string]struct{})
	var files []graph.FileInfo
	for i := range s.Files {
		if strings.Contains(strings.ToLower(s.Files[i].Path), lower) {
			paths[s.Files[i].Path] = struct{}{}
			files = append(files, s.Files[i])
		}
	}
	return restrict(s, files, paths, func(d *graph.Dependency) bool {
		_, srcOK := paths[d.Source]
		_, tgtOK := paths[d.Target]
		return srcOK || tgtOK
	})
}

// restrict keeps files, the symbols and call edges defined in paths, and the
// dependencies accepted by keepDep.
func restrict(s *graph.Summary, files []graph.FileInfo, paths map[string]struct{}, keepDep func(*graph.Dependency) bool) *graph.Summary {
	out := &graph.Summary{RepoName: s.RepoName, Root: s.Root, Files: files}

	defs := make(map[string]struct{})
	for i := range s.Symbols {
		if _, ok := paths[s.Symbols[i].File]; ok {
			out.Symbols = append(out.Symbols, s.Symbols[i])
			defs[s.Symbols[i].Name] = struct{}{}
		}
	}
	for i := range s.Dependencies {
		if keepDep(&s.Dependencies[i]) {
			out.Dependencies = append(out.Dependencies, s.Dependencies[i])
		}
	}
	for i := range s.CallEdges {
		if _, ok := defs[s.CallEdges[i].Caller]; ok {
			out.CallEdges = append(out.CallEdges, s.CallEdges[i])
		}
	}
	for i := range s.CallSites {
		if _, ok := paths[s.CallSites[i].File]; ok {
			out.CallSites = append(out.CallSites, s.CallSites[i])
		}
	}
	return out
}

// FilterBySymbol returns a new summary holding the symbols whose qualified
// name contains substr (case-insensitive), their direct callers and callees,
// the files defining any of them, and the edges connecting them. Matching
// ignores parameter lists, so "area" matches "Square::area()".
func FilterBySymbol(s *graph.Summary, substr string) *graph.Summary {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for i := range s.Symbols {
		name := qname.StripParams(s.Symbols[i].Name)
		if strings.Contains(strings.ToLower(name), lower) {
			matched[s.Symbols[i].Name] = struct{}{}
		}
	}

	related := make(map[string]struct{})
	for i := range s.CallEdges {
		ce := &s.CallEdges[i]
		if _, ok := matched[ce.Caller]; ok {
			related[ce.Callee] = struct{}{}
		}
		if _, ok := matched[ce.Callee]; ok {
			related[ce.Caller] = struct{}{}
		}
	}
	inScope := func(name string) bool {
		_, m := matched[name]
		_, r := related[name]
		return m || r
	}

	out := &graph.Summary{RepoName: s.RepoName, Root: s.Root}
	paths := make(map[string]struct{})
	for i := range s.Symbols {
		if inScope(s.Symbols[i].Name) {
			out.Symbols = append(out.Symbols, s.Symbols[i])
			paths[s.Symbols[i].File] = struct{}{}
		}
	}
	for i := range s.Files {
		if _, ok := paths[s.Files[i].Path]; ok {
			out.Files = append(out.Files, s.Files[i])
		}
	}
	for i := range s.Dependencies {
		d := &s.Dependencies[i]
		_, srcOK := paths[d.Source]
		_, tgtOK := paths[d.Target]
		if srcOK || tgtOK {
			out.Dependencies = append(out.Dependencies, *d)
		}
	}
	for i := range s.CallEdges {
		ce := &s.CallEdges[i]
		_, callerOK := matched[ce.Caller]
		_, calleeOK := matched[ce.Callee]
		if callerOK || calleeOK {
			out.CallEdges = append(out.CallEdges, *ce)
		}
	}
	for i := range s.CallSites {
		cs := &s.CallSites[i]
		_, callerOK := matched[cs.Caller]
		_, calleeOK := matched[cs.Callee]
		if callerOK || calleeOK {
			out.CallSites = append(out.CallSites, *cs)
		}
	}
	return out
}

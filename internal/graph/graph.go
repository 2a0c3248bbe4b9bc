// Package graph summarizes a fact model per file: entity counts, file
// dependencies derived from associations, call edges and PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/model"
)

// FileInfo is the per-file view of a model.
type FileInfo struct {
	Path         string
	Types        int
	Behaviourals int
	Variables    int
	Rank         float64
}

// Symbol is a defined entity listed in the output.
type Symbol struct {
	ID        string // xxh3 fingerprint of the entity key
	File      string
	Name      string // canonical qualified name
	Kind      model.Kind
	Line      int
	Signature string
	// Complexity and Statements are set for behaviourals.
	Complexity int
	Statements int
}

// Dependency is a file using entities defined in another file.
type Dependency struct {
	Source  string
	Target  string
	Symbols []string
}

// CallEdge is a deduplicated invocation between two defined behaviourals.
type CallEdge struct {
	Caller string
	Callee string
}

// CallSite is one invocation occurrence.
type CallSite struct {
	Caller string
	Callee string
	File   string
	Line   int
}

// Summary is everything the encoder prints.
type Summary struct {
	RepoName     string
	Root         string
	Files        []FileInfo
	Symbols      []Symbol
	Dependencies []Dependency
	CallEdges    []CallEdge
	CallSites    []CallSite
}

// listed reports whether e belongs in the symbol table: a defined type,
// behavioural, attribute or global.
func listed(e *model.Entity) bool {
	if e == nil || e.Stub || e.Anchor == nil {
		return false
	}
	switch {
	case e.Kind.IsType(), e.Kind.IsBehavioural():
		return e.Kind != model.PrimitiveType
	case e.Kind == model.Attribute, e.Kind == model.GlobalVariable:
		return true
	}
	return false
}

// Summarize builds the summary of m. files lists the analysed units in path
// order; files without any entity still get a row. Files are ranked and
// sorted by rank.
func Summarize(m *model.Model, repoName, root string, files []string) *Summary {
	s := &Summary{RepoName: repoName, Root: root}

	index := make(map[string]int, len(files))
	for _, f := range files {
		index[f] = len(s.Files)
		s.Files = append(s.Files, FileInfo{Path: f})
	}

	for _, e := range m.Entities() {
		if !listed(e) {
			continue
		}
		i, ok := index[e.Anchor.File]
		if !ok {
			continue
		}
		fi := &s.Files[i]
		switch {
		case e.Kind.IsType():
			fi.Types++
		case e.Kind.IsBehavioural():
			fi.Behaviourals++
		default:
			fi.Variables++
		}
		name := m.FullName(e.ID)
		s.Symbols = append(s.Symbols, Symbol{
			ID:         binding.FingerprintHex(binding.NewKey(e.Kind, name)),
			File:       e.Anchor.File,
			Name:       name,
			Kind:       e.Kind,
			Line:       e.Anchor.Line,
			Signature:  e.Signature,
			Complexity: e.Complexity,
			Statements: e.Statements,
		})
	}
	sort.SliceStable(s.Symbols, func(i, j int) bool {
		if s.Symbols[i].File != s.Symbols[j].File {
			return s.Symbols[i].File < s.Symbols[j].File
		}
		return s.Symbols[i].Line < s.Symbols[j].Line
	})

	s.Dependencies = BuildGraph(m)
	s.CallEdges = BuildCallGraph(m)
	s.CallSites = BuildCallSites(m)
	Rank(s.Files, s.Dependencies)
	return s
}

// useFile returns the file an association occurs in.
func useFile(m *model.Model, a *model.Association) string {
	if a.Anchor != nil {
		return a.Anchor.File
	}
	if e := m.Entity(a.From); e != nil && e.Anchor != nil {
		return e.Anchor.File
	}
	return ""
}

// BuildGraph creates dependency edges from cross-file associations: the file
// where a use occurs depends on the file defining the used entity.
func BuildGraph(m *model.Model) []Dependency {
	type edgeKey struct{ src, tgt string }
	edgeSymbols := make(map[edgeKey][]string)

	for _, a := range m.Associations() {
		to := m.Entity(a.To)
		if to == nil || to.Stub || to.Anchor == nil {
			continue
		}
		src := useFile(m, a)
		if src == "" || src == to.Anchor.File {
			continue // no self-edges
		}
		key := edgeKey{src, to.Anchor.File}
		name := m.FullName(a.To)
		// Only add symbol if not already present
		if !contains(edgeSymbols[key], name) {
			edgeSymbols[key] = append(edgeSymbols[key], name)
		}
	}

	var deps []Dependency
	for key, syms := range edgeSymbols {
		deps = append(deps, Dependency{
			Source:  key.src,
			Target:  key.tgt,
			Symbols: syms,
		})
	}

	// Sort for deterministic output
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// invocations yields the invocations whose callee is a defined behavioural.
func invocations(m *model.Model, fn func(a *model.Association)) {
	for _, a := range m.Associations() {
		if a.Kind != model.Invocation {
			continue
		}
		callee := m.Entity(a.To)
		if callee == nil || callee.Stub {
			continue
		}
		fn(a)
	}
}

// BuildCallGraph builds behavioural-level call edges. An edge is only
// included when the callee is defined in the analysed code. Edges are
// deduplicated and sorted.
func BuildCallGraph(m *model.Model) []CallEdge {
	type edgeKey struct{ caller, callee string }
	seen := make(map[edgeKey]struct{})

	var edges []CallEdge
	invocations(m, func(a *model.Association) {
		key := edgeKey{m.FullName(a.From), m.FullName(a.To)}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		edges = append(edges, CallEdge{Caller: key.caller, Callee: key.callee})
	})

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Caller != edges[j].Caller {
			return edges[i].Caller < edges[j].Caller
		}
		return edges[i].Callee < edges[j].Callee
	})

	return edges
}

// BuildCallSites returns every invocation occurrence with its location.
// Unlike BuildCallGraph it does not deduplicate.
func BuildCallSites(m *model.Model) []CallSite {
	var sites []CallSite
	invocations(m, func(a *model.Association) {
		cs := CallSite{Caller: m.FullName(a.From), Callee: m.FullName(a.To)}
		if a.Anchor != nil {
			cs.File = a.Anchor.File
			cs.Line = a.Anchor.Line
		}
		sites = append(sites, cs)
	})

	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Caller != sites[j].Caller {
			return sites[i].Caller < sites[j].Caller
		}
		if sites[i].Callee != sites[j].Callee {
			return sites[i].Callee < sites[j].Callee
		}
		if sites[i].File != sites[j].File {
			return sites[i].File < sites[j].File
		}
		return sites[i].Line < sites[j].Line
	})

	return sites
}

// Rank applies PageRank to files and sorts them by rank descending. Ties
// keep their original order.
func Rank(files []FileInfo, deps []Dependency) {
	if len(files) == 0 {
		return
	}

	if len(deps) == 0 {
		uniform := 1.0 / float64(len(files))
		for i := range files {
			files[i].Rank = uniform
		}
		return
	}

	// Edge from source to target means source uses target.
	// Each used symbol counts as one edge.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	nodes := make(map[string]struct{})

	for i := range files {
		nodes[files[i].Path] = struct{}{}
	}

	for _, d := range deps {
		if _, ok := nodes[d.Source]; !ok {
			continue
		}
		if _, ok := nodes[d.Target]; !ok {
			continue
		}
		for range d.Symbols {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)

	for i := range files {
		files[i].Rank = ranks[files[i].Path]
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Rank > files[j].Rank
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling nodes spread their rank evenly
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

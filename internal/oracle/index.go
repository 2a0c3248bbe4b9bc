// Package oracle provides a best-effort binding oracle built from the
// declarations of every parsed unit. It plays the part of a compiler front
// end's name binder: it knows what was declared where, but it does no
// overload resolution, so ambiguous names get no answer.
package oracle

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
)

// DefaultCacheSize is the number of memoized lookups kept by an Index.
const DefaultCacheSize = 4096

// Index maps lexical canonical names to declaration bindings.
type Index struct {
	byName map[string][]*binding.Binding
	cache  *lru.Cache[string, *binding.Binding]
}

// NewIndex returns an empty index memoizing up to cacheSize lookups.
func NewIndex(cacheSize int) (*Index, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *binding.Binding](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating lookup cache: %w", err)
	}
	return &Index{
		byName: make(map[string][]*binding.Binding),
		cache:  cache,
	}, nil
}

// Add registers b under the plain qualified name name. Behaviourals are
// registered without their parameter list, so overloads share a name and make
// it ambiguous. A key already present under name is not added twice.
func (ix *Index) Add(name string, b *binding.Binding) {
	for _, have := range ix.byName[name] {
		if have.Key == b.Key {
			return
		}
	}
	ix.byName[name] = append(ix.byName[name], b)
	if ix.cache.Len() > 0 {
		ix.cache.Purge()
	}
}

// Len returns the number of distinct names.
func (ix *Index) Len() int {
	return len(ix.byName)
}

// Lookup resolves name against its scope path from the innermost scope
// outward. The first scope declaring the name decides: one declaration is the
// answer, several are ambiguous and yield nil.
func (ix *Index) Lookup(name *ast.Name) *binding.Binding {
	if name == nil || strings.TrimSpace(name.Text) == "" {
		return nil
	}
	key := name.ScopeString() + "\x00" + name.Text
	if b, ok := ix.cache.Get(key); ok {
		return b
	}
	b := ix.lookup(name)
	ix.cache.Add(key, b)
	return b
}

func (ix *Index) lookup(name *ast.Name) *binding.Binding {
	n := qname.Parse(name.Text)
	text := strings.TrimPrefix(n.String(), qname.Separator)
	start := len(name.Scope)
	if n.IsAbsolute() {
		start = 0
	}
	for i := start; i >= 0; i-- {
		full := qname.Join(strings.Join(name.Scope[:i], qname.Separator), text)
		switch cands := ix.byName[full]; len(cands) {
		case 0:
			continue
		case 1:
			return cands[0]
		default:
			return nil
		}
	}
	return nil
}

// findKind climbs path looking for qual declared with kind, the way Lookup
// does, and returns its canonical name.
func (ix *Index) findKind(path []string, qual string, kind model.Kind) (*binding.Binding, string) {
	for i := len(path); i >= 0; i-- {
		full := qname.Join(strings.Join(path[:i], qname.Separator), qual)
		for _, b := range ix.byName[full] {
			if b.Key.Kind == kind {
				return b, full
			}
		}
	}
	return nil, ""
}

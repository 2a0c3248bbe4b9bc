package oracle

import (
	"strings"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
)

// Build indexes the declarations of units. Types and namespaces are indexed
// first so out-of-line member definitions can find their class in any unit.
func Build(units []*ast.Node, cacheSize int) (*Index, error) {
	ix, err := NewIndex(cacheSize)
	if err != nil {
		return nil, err
	}
	for _, phase := range []phase{typesPhase, membersPhase} {
		w := &walker{ix: ix, phase: phase}
		for _, u := range units {
			if u == nil {
				continue
			}
			w.nodes(u.Children, nil)
		}
	}
	return ix, nil
}

type phase int

const (
	typesPhase phase = iota
	membersPhase
)

type frame struct {
	name string
	kind model.Kind
}

type walker struct {
	ix    *Index
	phase phase
}

func path(scope []frame) []string {
	out := make([]string, len(scope))
	for i, f := range scope {
		out[i] = f.name
	}
	return out
}

func join(scope []frame, name string) string {
	return qname.Join(strings.Join(path(scope), qname.Separator), name)
}

func inner(scope []frame) model.Kind {
	if len(scope) == 0 {
		return model.KindUnknown
	}
	return scope[len(scope)-1].kind
}

func (w *walker) add(name string, kind model.Kind, role binding.Role, owner *binding.Binding) *binding.Binding {
	b := binding.Real(kind, name, role)
	b.Owner = owner
	w.ix.Add(name, b)
	return b
}

func (w *walker) nodes(ns []*ast.Node, scope []frame) {
	for _, n := range ns {
		w.node(n, scope)
	}
}

func (w *walker) node(n *ast.Node, scope []frame) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.NamespaceDef:
		scope = append([]frame(nil), scope...)
		for _, seg := range qname.Parse(n.Name.String()).Segments() {
			if seg == "" {
				continue
			}
			if w.phase == typesPhase {
				w.add(join(scope, seg), model.Namespace, binding.RoleNamespace, nil)
			}
			scope = append(scope, frame{seg, model.Namespace})
		}
		w.nodes(n.Children, scope)

	case ast.CompositeType:
		if n.Name == nil || n.Name.Text == "" {
			return
		}
		full := join(scope, n.Name.Text)
		if w.phase == typesPhase {
			w.add(full, model.Class, binding.RoleClass, nil)
		}
		inside := append(append([]frame(nil), scope...), frame{n.Name.Text, model.Class})
		w.nodes(n.Children, inside)

	case ast.AliasDeclaration:
		if w.phase == typesPhase && n.Name != nil {
			w.add(join(scope, n.Name.Text), model.TypeAlias, binding.RoleTypeAlias, nil)
		}

	case ast.SimpleDeclaration:
		w.declaration(n, scope)

	case ast.FunctionDefinition:
		if w.phase == membersPhase {
			w.function(n.Declarator, scope, n.Body)
		}

	case ast.Block:
		w.nodes(n.Children, scope)
	}
}

func (w *walker) declaration(n *ast.Node, scope []frame) {
	for _, d := range n.Declarators {
		if d == nil || d.Name == nil || d.Name.Text == "" {
			continue
		}
		if n.Has(ast.Typedef) {
			if w.phase == typesPhase {
				w.add(join(scope, d.Name.Text), model.TypeAlias, binding.RoleTypeAlias, nil)
			}
			continue
		}
		if w.phase != membersPhase {
			continue
		}
		switch {
		case d.Kind == ast.FunctionDeclarator:
			w.function(d, scope, nil)
		case inner(scope) == model.Class:
			owner, _ := w.ix.findKind(nil, strings.Join(path(scope), qname.Separator), model.Class)
			w.add(join(scope, d.Name.Text), model.Attribute, binding.RoleField, owner)
		case inner(scope).IsBehavioural():
			w.add(join(scope, d.Name.Text), model.LocalVariable, binding.RoleVariable, nil)
		default:
			w.add(join(scope, d.Name.Text), model.GlobalVariable, binding.RoleVariable, nil)
		}
	}
}

// function indexes a function declarator, its parameters and, given a body,
// its local variables.
func (w *walker) function(decl *ast.Node, scope []frame, body *ast.Node) {
	if decl == nil || decl.Name == nil || decl.Name.Text == "" {
		return
	}
	n := qname.Parse(decl.Name.Text)
	simple := n.Unqualified()
	sig := qname.Signature(simple, len(decl.Params))

	parent := strings.Join(path(scope), qname.Separator)
	var class *binding.Binding
	switch {
	case n.IsFullyQualified():
		qual := strings.TrimPrefix(n.Qualifiers().String(), qname.Separator)
		if b, full := w.ix.findKind(path(scope), qual, model.Class); b != nil {
			class, parent = b, full
		} else {
			parent = qname.Join(parent, qual)
		}
	case inner(scope) == model.Class:
		class, _ = w.ix.findKind(nil, parent, model.Class)
	}

	kind, role := model.Function, binding.RoleFunction
	if class != nil || inner(scope) == model.Class {
		kind, role = model.Method, binding.RoleMethod
		className := qname.Parse(parent).Unqualified()
		switch {
		case simple == className:
			role = binding.RoleConstructor
		case strings.HasPrefix(simple, "~"):
			role = binding.RoleDestructor
		}
	}
	b := binding.Real(kind, qname.Join(parent, sig), role)
	b.Owner = class
	w.ix.Add(qname.Join(parent, simple), b)

	bodyScope := append(qname.Parse(parent).Segments(), sig)
	frames := make([]frame, 0, len(bodyScope))
	for _, s := range bodyScope[:len(bodyScope)-1] {
		frames = append(frames, frame{s, model.Namespace})
	}
	frames = append(frames, frame{sig, kind})

	for _, p := range decl.Params {
		if p == nil || p.Name == nil || p.Name.Text == "" {
			continue
		}
		w.add(join(frames, p.Name.Text), model.Parameter, binding.RoleParameter, nil)
	}
	if body == nil {
		return
	}
	ast.Walk(body, func(c *ast.Node) bool {
		switch c.Kind {
		case ast.CompositeType, ast.FunctionDefinition:
			return false
		case ast.SimpleDeclaration:
			if c.Has(ast.Typedef) {
				return false
			}
			for _, d := range c.Declarators {
				if d != nil && d.Kind == ast.Declarator && d.Name != nil && d.Name.Text != "" {
					w.add(join(frames, d.Name.Text), model.LocalVariable, binding.RoleVariable, nil)
				}
			}
		}
		return true
	})
}

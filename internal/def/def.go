// Package def runs the definition pass: it walks each translation unit and
// seeds the dictionary with the entities the unit defines, without any
// cross-reference edges. The Definer's ensure helpers are shared with the
// reference pass, which re-derives the same entities from the same nodes.
package def

import (
	"path/filepath"
	"strings"

	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
	"github.com/phobologic/cppfacts/internal/resolve"
)

// Definer creates definition entities for the unit being walked.
type Definer struct {
	r    *resolve.Resolver
	file string
	pkg  model.EntityID
}

// New returns a definer over r.
func New(r *resolve.Resolver) *Definer {
	return &Definer{r: r, pkg: model.NoEntity}
}

// Resolver returns the resolver the definer works with.
func (d *Definer) Resolver() *resolve.Resolver {
	return d.r
}

// File returns the unit being walked.
func (d *Definer) File() string {
	return d.file
}

// SetUnit switches to the unit at the slash-separated relative path file and
// returns the package of its directory, creating the package chain if needed.
func (d *Definer) SetUnit(file string) model.EntityID {
	d.file = file
	d.pkg = model.NoEntity
	dir := filepath.ToSlash(filepath.Dir(file))
	if dir == "." || dir == "/" || dir == "" {
		return d.pkg
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" || seg == "." {
			continue
		}
		p := d.r.Dict.EnsurePackage(nil, seg, d.pkg)
		d.r.Dict.MarkDefined(p.ID)
		d.pkg = p.ID
	}
	return d.pkg
}

// Anchor converts a node position of the current unit.
func (d *Definer) Anchor(pos ast.Pos) *model.Anchor {
	return &model.Anchor{File: d.file, Start: pos.Start, End: pos.End, Line: pos.Line}
}

// defined marks id as defined at pos in the current unit.
func (d *Definer) defined(id model.EntityID, pos ast.Pos) model.EntityID {
	dict := d.r.Dict
	dict.SetAnchor(id, d.Anchor(pos))
	dict.MarkDefined(id)
	if e := dict.Entity(id); e != nil && e.Package == model.NoEntity && !e.Kind.IsScoping() {
		e.Package = d.pkg
	}
	return id
}

// bindingFor asks the oracle about name and keeps the answer only when it
// agrees with the entity a definition of kind under owner would have.
func (d *Definer) bindingFor(name *ast.Name, simple string, kind model.Kind, owner model.EntityID) *binding.Binding {
	b := d.r.Lookup(name)
	if b == nil {
		return nil
	}
	if b.Key != binding.NewKey(kind, d.r.Dict.CanonicalName(owner, simple)) {
		return nil
	}
	return b
}

// parentOf returns the container a possibly qualified declared name lives in,
// and its simple name. Qualified names take their qualifiers as parent.
func (d *Definer) parentOf(name string, mustBeClass bool) (model.EntityID, string) {
	n := qname.Parse(name)
	if n.IsFullyQualified() {
		return d.r.ResolveOrCreate(n.Qualifiers().String(), false, mustBeClass), n.Unqualified()
	}
	return d.r.Stack.Top(), n.Unqualified()
}

// Namespace returns the namespaces opened by a namespace definition, outermost
// first. "namespace a::b" opens two. An anonymous namespace opens none.
func (d *Definer) Namespace(n *ast.Node) []model.EntityID {
	if n.Name == nil {
		return nil
	}
	var ids []model.EntityID
	owner := d.r.Stack.Top()
	scope := append([]string(nil), n.Name.Scope...)
	for _, seg := range qname.Parse(n.Name.Text).Segments() {
		if seg == "" {
			continue
		}
		b := d.bindingFor(ast.NewName(seg, scope...), seg, model.Namespace, owner)
		ns := d.r.Dict.EnsureNamespace(b, seg, owner)
		d.defined(ns.ID, n.Pos)
		ids = append(ids, ns.ID)
		owner = ns.ID
		scope = append(scope, seg)
	}
	return ids
}

// Class returns the class defined by a composite type node, or NoEntity for
// an anonymous one.
func (d *Definer) Class(n *ast.Node) model.EntityID {
	if n.Name == nil || n.Name.Text == "" {
		return model.NoEntity
	}
	parent, simple := d.parentOf(n.Name.Text, false)
	b := d.bindingFor(n.Name, simple, model.Class, parent)
	var e *model.Entity
	if n.Has(ast.Template) {
		e = d.r.Dict.EnsureParameterizableClass(b, simple, parent)
	} else {
		e = d.r.Dict.EnsureClass(b, simple, parent)
	}
	return d.defined(e.ID, n.Pos)
}

// Behavioural returns the function or method declared by a function
// declarator.
func (d *Definer) Behavioural(decl *ast.Node, pos ast.Pos) model.EntityID {
	id := d.r.EnsureBehavioural(decl)
	if id == model.NoEntity {
		return id
	}
	if e := d.r.Dict.Entity(id); e.Complexity == 0 {
		e.Complexity = 1
	}
	return d.defined(id, pos)
}

// Parameters returns the parameters of behavioural, in order. Unnamed
// parameters are skipped.
func (d *Definer) Parameters(behavioural model.EntityID, decl *ast.Node) []model.EntityID {
	var ids []model.EntityID
	for _, p := range decl.Params {
		if id := d.Parameter(behavioural, p); id != model.NoEntity {
			ids = append(ids, id)
		}
	}
	return ids
}

// Parameter returns the parameter p of behavioural, or NoEntity when p is
// unnamed.
func (d *Definer) Parameter(behavioural model.EntityID, p *ast.Node) model.EntityID {
	if p == nil || p.Name == nil || p.Name.Text == "" || behavioural == model.NoEntity {
		return model.NoEntity
	}
	b := d.bindingFor(p.Name, p.Name.Text, model.Parameter, behavioural)
	e := d.r.Dict.EnsureParameter(b, p.Name.Text, behavioural)
	return d.defined(e.ID, p.Pos)
}

// Variable returns the variable declared by a declarator: a local inside a
// behavioural, an attribute inside a class or when qualified by one, a global
// variable otherwise.
func (d *Definer) Variable(decl *ast.Node) model.EntityID {
	if decl.Name == nil || decl.Name.Text == "" {
		return model.NoEntity
	}
	parent, simple := d.parentOf(decl.Name.Text, true)
	dict := d.r.Dict
	var e *model.Entity
	switch k := dict.Model().KindOf(parent); {
	case k.IsBehavioural():
		e = dict.EnsureLocalVariable(d.bindingFor(decl.Name, simple, model.LocalVariable, parent), simple, parent)
	case k.IsType():
		e = dict.EnsureAttribute(d.bindingFor(decl.Name, simple, model.Attribute, parent), simple, parent)
	default:
		e = dict.EnsureGlobalVariable(d.bindingFor(decl.Name, simple, model.GlobalVariable, parent), simple, parent)
	}
	return d.defined(e.ID, decl.Pos)
}

// TypeAlias returns the alias introduced by a typedef declarator or a using
// declaration.
func (d *Definer) TypeAlias(name *ast.Name, pos ast.Pos) model.EntityID {
	if name == nil || name.Text == "" {
		return model.NoEntity
	}
	parent, simple := d.parentOf(name.Text, false)
	b := d.bindingFor(name, simple, model.TypeAlias, parent)
	e := d.r.Dict.EnsureTypeAlias(b, simple, parent)
	return d.defined(e.ID, pos)
}

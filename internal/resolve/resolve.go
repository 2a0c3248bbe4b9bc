// Package resolve maps name occurrences to the entities they denote. It asks
// the oracle first, searches the dictionary by scope next, and synthesizes a
// stub entity when neither yields an answer.
package resolve

import (
	"github.com/phobologic/cppfacts/internal/ast"
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/dict"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
	"github.com/phobologic/cppfacts/internal/stack"
)

// Oracle answers best-effort binding lookups for name occurrences. A nil
// result means the oracle does not know.
type Oracle interface {
	Lookup(name *ast.Name) *binding.Binding
}

// Policy holds the creation heuristics of ResolveOrCreate.
type Policy struct {
	// TopLevelOnRecursiveMiss creates containers missed by a recursive search
	// at top level rather than under the innermost scope.
	TopLevelOnRecursiveMiss bool
	// ClassUnderNonNamespace creates a class, whatever was asked for, when the
	// parent of the new container is not a namespace.
	ClassUnderNonNamespace bool
}

// DefaultPolicy returns the policy with both heuristics on.
func DefaultPolicy() Policy {
	return Policy{TopLevelOnRecursiveMiss: true, ClassUnderNonNamespace: true}
}

// Resolver resolves names against one dictionary and context stack.
type Resolver struct {
	Dict   *dict.Dictionary
	Stack  *stack.Stack
	Oracle Oracle
	Policy Policy
}

// New returns a resolver. oracle may be nil.
func New(d *dict.Dictionary, s *stack.Stack, oracle Oracle, p Policy) *Resolver {
	return &Resolver{Dict: d, Stack: s, Oracle: oracle, Policy: p}
}

func (r *Resolver) model() *model.Model {
	return r.Dict.Model()
}

// Lookup asks the oracle about name.
func (r *Resolver) Lookup(name *ast.Name) *binding.Binding {
	if r.Oracle == nil || name == nil || name.Text == "" {
		return nil
	}
	return r.Oracle.Lookup(name)
}

// FindInLocals searches the direct children of container for name: nested
// types, then behaviourals (by signature when name carries a parameter list),
// then attributes and global variables, then parameters and locals of a
// behavioural, then child scopes of a namespace.
func (r *Resolver) FindInLocals(name string, container model.EntityID) model.EntityID {
	m := r.model()
	c := m.Entity(container)
	if c == nil || name == "" {
		return model.NoEntity
	}

	byName := func(ids []model.EntityID) model.EntityID {
		for _, id := range ids {
			if m.Entity(id).Name == name {
				return id
			}
		}
		return model.NoEntity
	}

	if id := byName(c.Types()); id != model.NoEntity {
		return id
	}
	if qname.HasParams(name) {
		for _, id := range c.Behaviourals() {
			if m.Entity(id).Signature == name {
				return id
			}
		}
	} else if id := byName(c.Behaviourals()); id != model.NoEntity {
		return id
	}
	if id := byName(c.Attributes()); id != model.NoEntity {
		return id
	}
	if id := byName(c.Globals()); id != model.NoEntity {
		return id
	}
	if c.Kind.IsBehavioural() {
		if id := byName(c.Parameters()); id != model.NoEntity {
			return id
		}
		if id := byName(c.Locals()); id != model.NoEntity {
			return id
		}
	}
	if c.Kind.IsScoping() {
		if id := byName(c.Scopes()); id != model.NoEntity {
			return id
		}
	}
	return model.NoEntity
}

// FindAtTopLevel searches the entities without an owner, in creation order,
// for the first type named name, else the first namespace, else the first
// function, else the first global variable.
func (r *Resolver) FindAtTopLevel(name string) model.EntityID {
	if name == "" {
		return model.NoEntity
	}
	m := r.model()
	top := r.Dict.TopLevel()
	withParams := qname.HasParams(name)

	match := func(want func(*model.Entity) bool) model.EntityID {
		for _, id := range top {
			if e := m.Entity(id); want(e) {
				return id
			}
		}
		return model.NoEntity
	}

	if withParams {
		return match(func(e *model.Entity) bool {
			return e.Kind.IsBehavioural() && e.Signature == name
		})
	}
	priorities := []func(*model.Entity) bool{
		func(e *model.Entity) bool { return e.Kind.IsType() && e.Name == name },
		func(e *model.Entity) bool { return e.Kind.IsScoping() && e.Name == name },
		func(e *model.Entity) bool { return e.Kind.IsBehavioural() && e.Name == name },
		func(e *model.Entity) bool { return e.Kind == model.GlobalVariable && e.Name == name },
	}
	for _, want := range priorities {
		if id := match(want); id != model.NoEntity {
			return id
		}
	}
	return model.NoEntity
}

// FindInParent searches container for name, climbing to its owners and
// finally the top level when recursive is set. A NoEntity container searches
// the top level.
func (r *Resolver) FindInParent(name string, container model.EntityID, recursive bool) model.EntityID {
	if container == model.NoEntity {
		return r.FindAtTopLevel(name)
	}
	m := r.model()
	for c := container; c != model.NoEntity; c = m.Entity(c).Owner {
		if id := r.FindInLocals(name, c); id != model.NoEntity {
			return id
		}
		if !recursive {
			return model.NoEntity
		}
	}
	return r.FindAtTopLevel(name)
}

// ResolveOrCreate resolves a possibly qualified container name. A qualified
// name resolves its qualifiers first and then looks for its last segment
// directly in the result. A root-anchored simple name is searched at top
// level. Any other simple name is searched from the top of the stack outward.
//
// On a miss it returns NoEntity when mayBeNil is set, and otherwise creates a
// stub container: a class when mustBeClass is set or (per Policy) when the
// parent is not a namespace, a namespace otherwise.
func (r *Resolver) ResolveOrCreate(name string, mayBeNil, mustBeClass bool) model.EntityID {
	n := qname.Parse(name)
	if n.IsEmpty() {
		return model.NoEntity
	}
	simple := n.Unqualified()

	var parent model.EntityID
	recursive := false
	switch {
	case n.IsFullyQualified():
		parent = r.ResolveOrCreate(n.Qualifiers().String(), false, false)
	case n.IsAbsolute():
		parent = model.NoEntity
	default:
		parent = r.Stack.Top()
		recursive = true
	}

	if found := r.FindInParent(simple, parent, recursive); found != model.NoEntity || mayBeNil {
		return found
	}

	if recursive && r.Policy.TopLevelOnRecursiveMiss {
		parent = model.NoEntity
	}
	asClass := mustBeClass
	if parent != model.NoEntity && !r.model().KindOf(parent).IsScoping() && r.Policy.ClassUnderNonNamespace {
		asClass = true
	}
	if asClass {
		b := binding.Stub(model.Class, r.Dict.CanonicalName(parent, simple))
		return r.Dict.EnsureClass(b, simple, parent).ID
	}
	b := binding.Stub(model.Namespace, r.Dict.CanonicalName(parent, simple))
	return r.Dict.EnsureNamespace(b, simple, parent).ID
}

// StubBinding computes the stub binding for name of kind. A qualified name
// takes its parent from its qualifiers, creating it if needed (as a class for
// members); a simple name lives in parent. The parent used is returned too.
func (r *Resolver) StubBinding(name string, parent model.EntityID, kind model.Kind) (*binding.Binding, model.EntityID) {
	n := qname.Parse(name)
	if n.IsFullyQualified() {
		mustBeClass := kind == model.Attribute || kind == model.Method
		parent = r.ResolveOrCreate(n.Qualifiers().String(), false, mustBeClass)
	}
	return binding.Stub(kind, r.Dict.CanonicalName(parent, n.Unqualified())), parent
}

// StubSignature returns the normalized signature of a behavioural named name
// taking n arguments: "f(_,_)".
func StubSignature(name string, n int) string {
	return qname.Signature(name, n)
}

// FunctionBinding returns the binding of a function declarator: the oracle's
// answer, or a stub keyed as a method when its parent is a class and as a
// function otherwise. For stubs the parent is returned as well.
func (r *Resolver) FunctionBinding(decl *ast.Node) (*binding.Binding, model.EntityID) {
	if b := r.Lookup(decl.Name); b != nil {
		return b, model.NoEntity
	}
	n := qname.Parse(decl.Name.String())
	parent := r.Stack.Top()
	if n.IsFullyQualified() {
		parent = r.ResolveOrCreate(n.Qualifiers().String(), false, true)
	}
	kind := model.Function
	if r.model().KindOf(parent).IsClass() {
		kind = model.Method
	}
	sig := StubSignature(n.Unqualified(), len(decl.Params))
	return binding.Stub(kind, r.Dict.CanonicalName(parent, sig)), parent
}

// EnsureBehavioural returns the behavioural declared by a function
// declarator, creating it if needed.
func (r *Resolver) EnsureBehavioural(decl *ast.Node) model.EntityID {
	if decl == nil || decl.Name == nil {
		return model.NoEntity
	}
	b, _ := r.FunctionBinding(decl)
	return r.EnsureBehaviouralFromName(b, qname.Parse(decl.Name.Text).Unqualified(), len(decl.Params))
}

// EnsureBehaviouralFromName returns the behavioural for b, creating it if
// needed. name and nArgs supply the signature when the binding's own name
// does not carry one.
//
// A stub finds its owner through its canonical name. A real binding reads
// the owning class from the oracle, falling back to its qualified name and
// then to the enclosing type when that class is unknown to the dictionary.
func (r *Resolver) EnsureBehaviouralFromName(b *binding.Binding, name string, nArgs int) model.EntityID {
	if b == nil {
		return model.NoEntity
	}
	if id := r.Dict.LookupBinding(b); id != model.NoEntity {
		return id
	}

	sig := qname.SignatureFromFullname(b.Key.Name)
	if !qname.HasParams(sig) {
		sig = StubSignature(name, nArgs)
	}
	parentName := qname.ParentOfFullname(b.Key.Name)

	parent := model.NoEntity
	switch {
	case b.IsStub():
		if parentName != "" {
			parent = r.containerByName(parentName, b.Key.Kind == model.Method)
		}
	default:
		if b.Owner != nil {
			parent = r.Dict.LookupBinding(b.Owner)
		}
		if parent == model.NoEntity && parentName != "" {
			parent = r.containerByName(parentName, b.IsMethod())
		}
		if parent == model.NoEntity && b.IsMethod() {
			parent = r.Stack.TopType()
		}
	}

	if found := r.FindInParent(sig, parent, false); found != model.NoEntity && r.model().KindOf(found).IsBehavioural() {
		return found
	}

	simple := qname.StripParams(sig)
	if b.IsMethod() || b.IsConstructor() || b.IsDestructor() {
		mk := model.Ordinary
		switch {
		case b.IsConstructor():
			mk = model.Constructor
		case b.IsDestructor():
			mk = model.Destructor
		}
		return r.Dict.EnsureMethod(b, simple, sig, parent, mk).ID
	}
	return r.Dict.EnsureFunction(b, simple, sig, parent).ID
}

// containerByName returns the container whose canonical name is full, trying
// the dictionary keys before resolving full from the root.
func (r *Resolver) containerByName(full string, mustBeClass bool) model.EntityID {
	for _, k := range []model.Kind{model.Class, model.Namespace, model.Type, model.Method, model.Function} {
		if id := r.Dict.Lookup(binding.NewKey(k, full)); id != model.NoEntity {
			return id
		}
	}
	return r.ResolveOrCreate(qname.Separator+full, false, mustBeClass)
}

// MakeStubBehavioural returns a stub behavioural for a call to name with
// nArgs arguments that nothing resolved. With a receiver class the stub is a
// method of that class. Otherwise a qualified name lives under its
// qualifiers and a simple name in the nearest enclosing namespace.
func (r *Resolver) MakeStubBehavioural(name string, nArgs int, receiver model.EntityID) model.EntityID {
	n := qname.Parse(name)
	if n.IsEmpty() {
		return model.NoEntity
	}
	sig := StubSignature(n.Unqualified(), nArgs)

	var parent model.EntityID
	switch {
	case receiver != model.NoEntity:
		parent = receiver
	case n.IsFullyQualified():
		ctor := binding.IsConstructorName(n.String())
		parent = r.ResolveOrCreate(n.Qualifiers().String(), false, ctor)
	default:
		parent = r.Stack.TopNamespace()
	}

	if found := r.FindInParent(sig, parent, false); found != model.NoEntity && r.model().KindOf(found).IsBehavioural() {
		return found
	}

	kind := model.Function
	if k := r.model().KindOf(parent); k.IsClass() || k == model.Type {
		kind = model.Method
	}
	b := binding.Stub(kind, r.Dict.CanonicalName(parent, sig))
	return r.EnsureBehaviouralFromName(b, n.Unqualified(), nArgs)
}

// MakeConstructorStub returns the constructor of class taking nArgs
// arguments, creating a stub when the class declares none with that arity.
func (r *Resolver) MakeConstructorStub(class model.EntityID, nArgs int) model.EntityID {
	c := r.model().Entity(class)
	if c == nil {
		return model.NoEntity
	}
	sig := StubSignature(c.Name, nArgs)
	if found := r.FindInLocals(sig, class); found != model.NoEntity {
		return found
	}
	b := binding.Stub(model.Method, r.Dict.CanonicalName(class, sig))
	return r.EnsureBehaviouralFromName(b, c.Name, nArgs)
}

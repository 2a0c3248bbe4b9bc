// Package dict is the canonical store of the fact model. Every entity is
// registered under a binding key and the ensure operations return the
// registered entity instead of creating a second one.
//
// Creation is two-phase: Reserve allocates the entity for a key once, then the
// ensure operations populate it (owner, signature, markers). Both phases are
// idempotent, so a placeholder reserved by an early use and the definition met
// later end up as one entity.
package dict

import (
	"github.com/phobologic/cppfacts/internal/binding"
	"github.com/phobologic/cppfacts/internal/model"
	"github.com/phobologic/cppfacts/internal/qname"
)

// EmptyArgument names the unknown variable standing in for call arguments
// that could not be resolved.
const EmptyArgument = "__Empty_Argument__"

// SelfName names the implicit variable a type's "this" resolves to.
const SelfName = "self"

// Dictionary owns the model of one analysis run.
type Dictionary struct {
	m     *model.Model
	byKey map[binding.Key]model.EntityID
	inh   map[[2]model.EntityID]model.AssocID
	sups  map[model.EntityID][]model.EntityID
	top   []model.EntityID // created without an owner
}

// New returns an empty dictionary over a fresh model.
func New() *Dictionary {
	return &Dictionary{
		m:     model.New(),
		byKey: make(map[binding.Key]model.EntityID),
		inh:   make(map[[2]model.EntityID]model.AssocID),
		sups:  make(map[model.EntityID][]model.EntityID),
	}
}

// Model returns the model the dictionary fills.
func (d *Dictionary) Model() *model.Model {
	return d.m
}

// Entity is shorthand for Model().Entity.
func (d *Dictionary) Entity(id model.EntityID) *model.Entity {
	return d.m.Entity(id)
}

// Lookup returns the entity registered under key, or NoEntity.
func (d *Dictionary) Lookup(key binding.Key) model.EntityID {
	if id, ok := d.byKey[key]; ok {
		return id
	}
	return model.NoEntity
}

// LookupBinding returns the entity registered for b, or NoEntity.
func (d *Dictionary) LookupBinding(b *binding.Binding) model.EntityID {
	if b == nil {
		return model.NoEntity
	}
	return d.Lookup(b.Key)
}

// Reserve returns the entity registered under key, allocating it with kind
// and name on the first call. created reports whether this call allocated.
func (d *Dictionary) Reserve(key binding.Key, kind model.Kind, name string) (e *model.Entity, created bool) {
	if id, ok := d.byKey[key]; ok {
		return d.m.Entity(id), false
	}
	e = d.m.NewEntity(kind, name)
	d.byKey[key] = e.ID
	return e, true
}

// CanonicalName returns the canonical qualified name name would have under
// parent.
func (d *Dictionary) CanonicalName(parent model.EntityID, name string) string {
	return qname.Join(d.m.FullName(parent), name)
}

// StubKey returns the stub key for name of kind under parent.
func (d *Dictionary) StubKey(kind model.Kind, name string, parent model.EntityID) binding.Key {
	return binding.NewKey(kind, d.CanonicalName(parent, name))
}

// ensure reserves the entity for b (a stub keyed under owner when b is nil)
// and populates its owner.
func (d *Dictionary) ensure(b *binding.Binding, kind model.Kind, name, keyName string, owner model.EntityID) *model.Entity {
	if b == nil {
		b = binding.Stub(kind, d.CanonicalName(owner, keyName))
	}
	e, created := d.Reserve(b.Key, kind, name)
	if created {
		e.Stub = b.IsStub()
	} else if !b.IsStub() {
		e.Stub = false
	}
	if kind == model.ParameterizableClass && e.Kind == model.Class {
		e.Kind = model.ParameterizableClass
	}
	if owner != model.NoEntity {
		d.m.SetOwner(e.ID, owner)
	} else if created {
		d.top = append(d.top, e.ID)
	}
	return e
}

// MarkDefined clears the placeholder flag of id.
func (d *Dictionary) MarkDefined(id model.EntityID) {
	if e := d.m.Entity(id); e != nil {
		e.Stub = false
	}
}

// EnsurePackage returns the package for b, creating it under parent.
func (d *Dictionary) EnsurePackage(b *binding.Binding, name string, parent model.EntityID) *model.Entity {
	return d.ensure(b, model.Package, name, name, parent)
}

// EnsureNamespace returns the namespace for b, creating it under parent.
func (d *Dictionary) EnsureNamespace(b *binding.Binding, name string, parent model.EntityID) *model.Entity {
	return d.ensure(b, model.Namespace, name, name, parent)
}

// EnsureClass returns the class for b, creating it under owner.
func (d *Dictionary) EnsureClass(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.Class, name, name, owner)
}

// EnsureParameterizableClass returns the class template for b. A plain class
// registered earlier under the same key is upgraded.
func (d *Dictionary) EnsureParameterizableClass(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.ParameterizableClass, name, name, owner)
}

// EnsureType returns a type of unknown nature for b.
func (d *Dictionary) EnsureType(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.Type, name, name, owner)
}

// EnsureTypeAlias returns the type alias for b.
func (d *Dictionary) EnsureTypeAlias(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.TypeAlias, name, name, owner)
}

// EnsurePrimitiveType returns the builtin type name. Primitive types live at
// top level.
func (d *Dictionary) EnsurePrimitiveType(name string) *model.Entity {
	e := d.ensure(nil, model.PrimitiveType, name, name, model.NoEntity)
	e.Stub = false
	return e
}

// EnsureFunction returns the function for b, keyed by signature when b is nil.
func (d *Dictionary) EnsureFunction(b *binding.Binding, name, sig string, owner model.EntityID) *model.Entity {
	e := d.ensure(b, model.Function, name, sig, owner)
	if e.Signature == "" {
		e.Signature = sig
	}
	return e
}

// EnsureMethod returns the method for b and records its marker.
func (d *Dictionary) EnsureMethod(b *binding.Binding, name, sig string, owner model.EntityID, kind model.MethodKind) *model.Entity {
	e := d.ensure(b, model.Method, name, sig, owner)
	if e.Signature == "" {
		e.Signature = sig
	}
	if kind != model.Ordinary {
		e.MethodKind = kind
	}
	return e
}

// EnsureAttribute returns the attribute for b.
func (d *Dictionary) EnsureAttribute(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.Attribute, name, name, owner)
}

// EnsureParameter returns the parameter for b.
func (d *Dictionary) EnsureParameter(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.Parameter, name, name, owner)
}

// EnsureLocalVariable returns the local variable for b.
func (d *Dictionary) EnsureLocalVariable(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.LocalVariable, name, name, owner)
}

// EnsureGlobalVariable returns the global variable for b.
func (d *Dictionary) EnsureGlobalVariable(b *binding.Binding, name string, owner model.EntityID) *model.Entity {
	return d.ensure(b, model.GlobalVariable, name, name, owner)
}

// EnsureImplicitVariable returns the implicit variable name of owner, such as
// the self variable of a class.
func (d *Dictionary) EnsureImplicitVariable(name string, owner model.EntityID) *model.Entity {
	e := d.ensure(nil, model.ImplicitVariable, name, name, owner)
	e.Stub = false
	return e
}

// EnsureUnknownVariable returns the catch-all unknown variable for name. One
// exists per name, owned by nobody.
func (d *Dictionary) EnsureUnknownVariable(name string) *model.Entity {
	e, _ := d.Reserve(binding.NewKey(model.UnknownVariable, name), model.UnknownVariable, name)
	e.Stub = true
	return e
}

// SetDeclaredType records the type of a structural or the return type of a
// behavioural. The first non-empty answer sticks.
func (d *Dictionary) SetDeclaredType(id, typ model.EntityID) {
	if e := d.m.Entity(id); e != nil && typ != model.NoEntity && e.DeclaredType == model.NoEntity {
		e.DeclaredType = typ
	}
}

// SetAliasedType records the type an alias stands for.
func (d *Dictionary) SetAliasedType(id, typ model.EntityID) {
	if e := d.m.Entity(id); e != nil && typ != model.NoEntity && e.AliasedType == model.NoEntity {
		e.AliasedType = typ
	}
}

// SetAnchor records where id is defined. A placeholder's anchor is replaced.
func (d *Dictionary) SetAnchor(id model.EntityID, a *model.Anchor) {
	e := d.m.Entity(id)
	if e == nil || a == nil {
		return
	}
	if e.Anchor == nil || e.Stub {
		e.Anchor = a
	}
}

// TopLevel returns the entities without an owner in creation order.
func (d *Dictionary) TopLevel() []model.EntityID {
	out := make([]model.EntityID, 0, len(d.top))
	for _, id := range d.top {
		if d.m.Entity(id).Owner == model.NoEntity {
			out = append(out, id)
		}
	}
	return out
}

// AddAccess records an access by accessor to variable, chained after prev.
func (d *Dictionary) AddAccess(accessor, variable model.EntityID, isWrite bool, prev model.AssocID) *model.Association {
	a := d.m.NewAssociation(model.Access, accessor, variable)
	a.IsWrite = isWrite
	a.Previous = prev
	return a
}

// AddInvocation records a call from sender to callee, chained after prev.
func (d *Dictionary) AddInvocation(sender, callee model.EntityID, sig string, args []model.AssocID, prev model.AssocID) *model.Association {
	a := d.m.NewAssociation(model.Invocation, sender, callee)
	a.Signature = sig
	a.Arguments = args
	a.Previous = prev
	return a
}

// AddDereferencedInvocation records a call through variable, chained after
// prev.
func (d *Dictionary) AddDereferencedInvocation(sender, variable model.EntityID, sig string, args []model.AssocID, prev model.AssocID) *model.Association {
	a := d.m.NewAssociation(model.DereferencedInvocation, sender, variable)
	a.Signature = sig
	a.Arguments = args
	a.Previous = prev
	return a
}

// AddBehaviouralReference records that referer takes the address of referee.
func (d *Dictionary) AddBehaviouralReference(referer, referee model.EntityID) *model.Association {
	return d.m.NewAssociation(model.BehaviouralReference, referer, referee)
}

// AddInheritance records that sub derives from sup. A pair is recorded once.
func (d *Dictionary) AddInheritance(sub, sup model.EntityID) *model.Association {
	pair := [2]model.EntityID{sub, sup}
	if id, ok := d.inh[pair]; ok {
		return d.m.Association(id)
	}
	a := d.m.NewAssociation(model.Inheritance, sub, sup)
	d.inh[pair] = a.ID
	d.sups[sub] = append(d.sups[sub], sup)
	return a
}

// Superclasses returns the direct supertypes of sub in declaration order.
func (d *Dictionary) Superclasses(sub model.EntityID) []model.EntityID {
	return d.sups[sub]
}

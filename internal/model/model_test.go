package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOwnerFilesChildByKind(t *testing.T) {
	t.Parallel()

	m := New()
	ns := m.NewEntity(Namespace, "ns")
	cls := m.NewEntity(Class, "A")
	meth := m.NewEntity(Method, "f")
	attr := m.NewEntity(Attribute, "x")
	param := m.NewEntity(Parameter, "p")
	inner := m.NewEntity(Namespace, "inner")

	require.True(t, m.SetOwner(cls.ID, ns.ID))
	require.True(t, m.SetOwner(inner.ID, ns.ID))
	require.True(t, m.SetOwner(meth.ID, cls.ID))
	require.True(t, m.SetOwner(attr.ID, cls.ID))
	require.True(t, m.SetOwner(param.ID, meth.ID))

	assert.Equal(t, []EntityID{cls.ID}, ns.Types())
	assert.Equal(t, []EntityID{inner.ID}, ns.Scopes())
	assert.Equal(t, []EntityID{meth.ID}, cls.Behaviourals())
	assert.Equal(t, []EntityID{attr.ID}, cls.Attributes())
	assert.Equal(t, []EntityID{param.ID}, meth.Parameters())
	assert.Equal(t, []EntityID{cls.ID, inner.ID}, ns.Children())
}

func TestSetOwnerKeepsFirstOwner(t *testing.T) {
	t.Parallel()

	m := New()
	a := m.NewEntity(Namespace, "a")
	b := m.NewEntity(Namespace, "b")
	c := m.NewEntity(Class, "C")

	require.True(t, m.SetOwner(c.ID, a.ID))
	assert.True(t, m.SetOwner(c.ID, a.ID), "same owner is idempotent")
	assert.False(t, m.SetOwner(c.ID, b.ID))
	assert.Equal(t, a.ID, c.Owner)
	assert.Len(t, a.Types(), 1)
	assert.Empty(t, b.Types())
}

func TestSetOwnerRejectsNonContainer(t *testing.T) {
	t.Parallel()

	m := New()
	v := m.NewEntity(GlobalVariable, "v")
	x := m.NewEntity(GlobalVariable, "x")
	typ := m.NewEntity(Type, "T")
	f := m.NewEntity(Method, "f")

	assert.False(t, m.SetOwner(x.ID, v.ID))
	assert.Equal(t, NoEntity, x.Owner)
	assert.Empty(t, v.Children())
	assert.True(t, m.SetOwner(f.ID, typ.ID), "stub types hold members")
}

func TestSetOwnerRejectsCycle(t *testing.T) {
	t.Parallel()

	m := New()
	a := m.NewEntity(Namespace, "a")
	b := m.NewEntity(Namespace, "b")
	require.True(t, m.SetOwner(b.ID, a.ID))

	assert.False(t, m.SetOwner(a.ID, b.ID))
	assert.False(t, m.SetOwner(a.ID, a.ID))
	assert.Equal(t, NoEntity, a.Owner)
}

func TestFullNameUsesSignatures(t *testing.T) {
	t.Parallel()

	m := New()
	ns := m.NewEntity(Namespace, "ns")
	cls := m.NewEntity(Class, "A")
	meth := m.NewEntity(Method, "f")
	meth.Signature = "f(_)"
	x := m.NewEntity(LocalVariable, "x")
	m.SetOwner(cls.ID, ns.ID)
	m.SetOwner(meth.ID, cls.ID)
	m.SetOwner(x.ID, meth.ID)

	assert.Equal(t, "ns::A", m.FullName(cls.ID))
	assert.Equal(t, "ns::A::f(_)::x", m.FullName(x.ID))
	assert.Equal(t, "", m.FullName(NoEntity))
}

func TestChainReturnsSourceOrder(t *testing.T) {
	t.Parallel()

	m := New()
	f := m.NewEntity(Function, "f")
	v := m.NewEntity(GlobalVariable, "v")

	prev := NoAssoc
	var ids []AssocID
	for i := 0; i < 3; i++ {
		a := m.NewAssociation(Access, f.ID, v.ID)
		a.Previous = prev
		prev = a.ID
		ids = append(ids, a.ID)
	}

	assert.Equal(t, ids, m.Chain(prev))
	assert.Empty(t, m.Chain(NoAssoc))
	assert.Len(t, m.AssociationsFrom(f.ID, Access), 3)
	assert.Len(t, m.AssociationsTo(v.ID, Access), 3)
	assert.Empty(t, m.AssociationsTo(v.ID, Invocation))
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, Class.IsType())
	assert.True(t, ParameterizableClass.IsClass())
	assert.True(t, TypeAlias.IsContainer())
	assert.True(t, Method.IsBehavioural())
	assert.True(t, UnknownVariable.IsStructural())
	assert.True(t, Package.IsScoping())
	assert.False(t, Attribute.IsContainer())
	assert.Equal(t, "parameterizable-class", ParameterizableClass.String())
	assert.Equal(t, "constructor", Constructor.String())
	assert.True(t, DereferencedInvocation.IsInvocation())
	assert.Equal(t, KindUnknown, New().KindOf(NoEntity))
}

package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/cppfacts/internal/model"
)

func TestTopQueries(t *testing.T) {
	t.Parallel()

	m := model.New()
	ns := m.NewEntity(model.Namespace, "ns")
	cls := m.NewEntity(model.Class, "A")
	meth := m.NewEntity(model.Method, "f")

	s := New(m)
	assert.Equal(t, model.NoEntity, s.Top())
	assert.Equal(t, model.NoEntity, s.Pop())

	s.Push(ns.ID)
	s.Push(cls.ID)
	s.Push(meth.ID)

	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, meth.ID, s.Top())
	assert.Equal(t, meth.ID, s.TopBehavioural())
	assert.Equal(t, cls.ID, s.TopType())
	assert.Equal(t, ns.ID, s.TopNamespace())

	assert.Equal(t, meth.ID, s.Pop())
	assert.Equal(t, model.NoEntity, s.TopBehavioural())
	assert.Equal(t, cls.ID, s.Top())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	m := model.New()
	s := New(m)
	for i := 0; i < 4; i++ {
		s.Push(m.NewEntity(model.Namespace, "n").ID)
	}
	s.Truncate(1)
	assert.Equal(t, 1, s.Depth())
	s.Truncate(5)
	assert.Equal(t, 1, s.Depth())
}

func TestChainTailsArePerOwner(t *testing.T) {
	t.Parallel()

	m := model.New()
	s := New(m)
	f := m.NewEntity(model.Function, "f").ID
	g := m.NewEntity(model.Function, "g").ID

	assert.Equal(t, model.NoAssoc, s.LastAccess(f))
	s.SetLastAccess(f, 3)
	s.SetLastInvocation(g, 7)

	assert.Equal(t, model.AssocID(3), s.LastAccess(f))
	assert.Equal(t, model.NoAssoc, s.LastAccess(g))
	assert.Equal(t, model.AssocID(7), s.LastInvocation(g))
	assert.Equal(t, model.NoAssoc, s.LastInvocation(f))
}

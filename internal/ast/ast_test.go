package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkSourceOrder(t *testing.T) {
	t.Parallel()

	a := Ident(NewName("a"))
	b := Ident(NewName("b"))
	f := Ident(NewName("f"))
	call := Call(f, a, b)

	var got []string
	Walk(call, func(n *Node) bool {
		if n.Kind == IdExpression {
			got = append(got, n.Name.Text)
		}
		return true
	})
	assert.Equal(t, []string{"f", "a", "b"}, got)
}

func TestWalkSkipsPrunedChildren(t *testing.T) {
	t.Parallel()

	inner := Call(Ident(NewName("g")))
	outer := Stmt(inner)

	count := 0
	Walk(outer, func(n *Node) bool {
		count++
		return n.Kind != CallExpression
	})
	assert.Equal(t, 2, count)
}

func TestIsAssignment(t *testing.T) {
	t.Parallel()

	x := Ident(NewName("x"))
	for _, op := range []string{"=", "+=", ">>="} {
		assert.True(t, Binary(op, x, Lit()).IsAssignment(), op)
	}
	assert.False(t, Binary("==", x, Lit()).IsAssignment())
	assert.False(t, Unary("=", x).IsAssignment())
}

func TestNameScope(t *testing.T) {
	t.Parallel()

	n := NewName("x", "N1", "N2", "M()")
	assert.Equal(t, "N1::N2::M()", n.ScopeString())
	assert.Equal(t, "x", n.String())

	var none *Name
	assert.Equal(t, "", none.String())
	assert.Equal(t, "namespace", NamespaceDef.String())
}

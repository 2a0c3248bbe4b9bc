// Package ast is the syntax tree handed from the front end to the fact
// extraction passes. It is a closed set of node kinds covering the C++
// constructs the passes care about; everything else is folded into Block
// nodes so nested expressions are still visited in source order.
package ast

import "strings"

// Kind identifies the syntactic category of a Node.
type Kind uint8

const (
	TranslationUnit Kind = iota
	NamespaceDef
	CompositeType
	SimpleDeclaration
	AliasDeclaration
	FunctionDefinition
	FunctionDeclarator
	Declarator
	ParameterDeclaration
	ConstructorChainInitializer
	Block
	IdExpression
	FieldReference
	CallExpression
	ThisExpression
	Literal
	UnaryExpression
	BinaryExpression
	NewExpression
)

var kindNames = [...]string{
	TranslationUnit:             "translation-unit",
	NamespaceDef:                "namespace",
	CompositeType:               "composite-type",
	SimpleDeclaration:           "simple-declaration",
	AliasDeclaration:            "alias-declaration",
	FunctionDefinition:          "function-definition",
	FunctionDeclarator:          "function-declarator",
	Declarator:                  "declarator",
	ParameterDeclaration:        "parameter-declaration",
	ConstructorChainInitializer: "constructor-chain-initializer",
	Block:                       "block",
	IdExpression:                "id-expression",
	FieldReference:              "field-reference",
	CallExpression:              "call-expression",
	ThisExpression:              "this",
	Literal:                     "literal",
	UnaryExpression:             "unary-expression",
	BinaryExpression:            "binary-expression",
	NewExpression:               "new-expression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// Flags carries boolean facts about a node.
type Flags uint16

const (
	// Typedef marks a SimpleDeclaration introducing type aliases.
	Typedef Flags = 1 << iota
	// Template marks a CompositeType or FunctionDefinition under a template
	// declaration.
	Template
	// Arrow marks a FieldReference written with "->".
	Arrow
	// Statement marks a node that is a statement of a function body.
	Statement
	// Branch marks a decision point (if, loop, case, catch, ?:, && and ||).
	Branch
	// Static marks a static declaration.
	Static
)

// Pos locates a node in its source file.
type Pos struct {
	File  string
	Start int
	End   int
	Line  int
}

// Name is a name occurrence. Text may be qualified ("a::b::c"). Scope is the
// lexical scope path of the occurrence, outermost first, with function bodies
// contributing their signature; the oracle resolves against it.
type Name struct {
	Text  string
	Scope []string
}

// NewName returns a name occurring in the given scope.
func NewName(text string, scope ...string) *Name {
	return &Name{Text: text, Scope: scope}
}

// String returns the name text.
func (n *Name) String() string {
	if n == nil {
		return ""
	}
	return n.Text
}

// ScopeString joins the scope path with "::".
func (n *Name) ScopeString() string {
	if n == nil {
		return ""
	}
	return strings.Join(n.Scope, "::")
}

// TypeRef is the type named by a declaration specifier.
type TypeRef struct {
	Name      *Name
	Primitive bool
}

// Node is one syntax tree node. The fields in use depend on Kind:
//
//	NamespaceDef                 Name, Children
//	CompositeType                Name, Bases, Children, Flags(Template)
//	SimpleDeclaration            Type, Declarators, Flags(Typedef, Static)
//	AliasDeclaration             Name, Type
//	FunctionDefinition           Type, Declarator, Inits, Body
//	FunctionDeclarator           Name, Params
//	Declarator                   Name, Init
//	ParameterDeclaration         Name (may be nil), Type
//	ConstructorChainInitializer  Name, Args
//	Block                        Children
//	IdExpression                 Name
//	FieldReference               Owner, Name, Flags(Arrow)
//	CallExpression               Callee, Args
//	UnaryExpression              Op, Operands
//	BinaryExpression             Op, Operands (assignments included)
//	NewExpression                Type, Args
type Node struct {
	Kind  Kind
	Pos   Pos
	Flags Flags

	Name *Name
	Type *TypeRef
	Op   string

	Bases       []*Name
	Declarator  *Node
	Declarators []*Node
	Params      []*Node
	Inits       []*Node
	Body        *Node
	Init        *Node
	Callee      *Node
	Owner       *Node
	Args        []*Node
	Operands    []*Node
	Children    []*Node
}

// Has reports whether every flag in f is set on n.
func (n *Node) Has(f Flags) bool {
	return n != nil && n.Flags&f == f
}

// IsAssignment reports whether n is an assignment, compound ones included.
func (n *Node) IsAssignment() bool {
	if n == nil || n.Kind != BinaryExpression {
		return false
	}
	switch n.Op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return true
	}
	return false
}

// Walk calls fn for n and its descendants in source order until fn returns
// false for a node, in which case that node's children are skipped.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.kids() {
		Walk(c, fn)
	}
}

func (n *Node) kids() []*Node {
	var out []*Node
	add := func(ns ...*Node) {
		for _, c := range ns {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	add(n.Callee, n.Owner, n.Declarator)
	add(n.Declarators...)
	add(n.Params...)
	add(n.Inits...)
	add(n.Init)
	add(n.Args...)
	add(n.Operands...)
	add(n.Children...)
	add(n.Body)
	return out
}

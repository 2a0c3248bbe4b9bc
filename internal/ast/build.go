package ast

// Constructors for hand-built trees. The front end fills Pos; these leave it
// zero.

// Unit returns a translation unit holding decls.
func Unit(file string, decls ...*Node) *Node {
	return &Node{Kind: TranslationUnit, Pos: Pos{File: file}, Children: decls}
}

// Namespace returns a namespace definition.
func Namespace(name *Name, decls ...*Node) *Node {
	return &Node{Kind: NamespaceDef, Name: name, Children: decls}
}

// Class returns a composite type with the given bases and members.
func Class(name *Name, bases []*Name, members ...*Node) *Node {
	return &Node{Kind: CompositeType, Name: name, Bases: bases, Children: members}
}

// Func returns a function definition.
func Func(ret *TypeRef, decl *Node, body ...*Node) *Node {
	return &Node{
		Kind:       FunctionDefinition,
		Type:       ret,
		Declarator: decl,
		Body:       &Node{Kind: Block, Children: body},
	}
}

// FuncDecl returns a function declarator.
func FuncDecl(name *Name, params ...*Node) *Node {
	return &Node{Kind: FunctionDeclarator, Name: name, Params: params}
}

// Param returns a parameter declaration.
func Param(typ *TypeRef, name *Name) *Node {
	return &Node{Kind: ParameterDeclaration, Type: typ, Name: name}
}

// Decl returns a simple declaration of one or more declarators.
func Decl(typ *TypeRef, declarators ...*Node) *Node {
	return &Node{Kind: SimpleDeclaration, Type: typ, Declarators: declarators}
}

// Var returns a variable or field declarator with an optional initializer.
func Var(name *Name, init *Node) *Node {
	return &Node{Kind: Declarator, Name: name, Init: init}
}

// Named returns a type reference to a named type.
func Named(name *Name) *TypeRef {
	return &TypeRef{Name: name}
}

// Primitive returns a type reference to a builtin type.
func Primitive(name string) *TypeRef {
	return &TypeRef{Name: &Name{Text: name}, Primitive: true}
}

// Ident returns an id-expression.
func Ident(name *Name) *Node {
	return &Node{Kind: IdExpression, Name: name}
}

// Field returns a field reference owner.name.
func Field(owner *Node, name *Name) *Node {
	return &Node{Kind: FieldReference, Owner: owner, Name: name}
}

// Call returns a call expression.
func Call(callee *Node, args ...*Node) *Node {
	return &Node{Kind: CallExpression, Callee: callee, Args: args}
}

// Binary returns a binary expression.
func Binary(op string, lhs, rhs *Node) *Node {
	return &Node{Kind: BinaryExpression, Op: op, Operands: []*Node{lhs, rhs}}
}

// Unary returns a unary expression.
func Unary(op string, operand *Node) *Node {
	return &Node{Kind: UnaryExpression, Op: op, Operands: []*Node{operand}}
}

// Stmt wraps an expression as a body statement.
func Stmt(expr *Node) *Node {
	return &Node{Kind: Block, Flags: Statement, Children: []*Node{expr}}
}

// Lit returns a literal.
func Lit() *Node {
	return &Node{Kind: Literal}
}

// This returns the this expression.
func This() *Node {
	return &Node{Kind: ThisExpression}
}

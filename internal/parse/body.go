package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/cppfacts/internal/ast"
)

var statements = map[string]bool{
	"expression_statement": true,
	"if_statement":         true,
	"while_statement":      true,
	"do_statement":         true,
	"for_statement":        true,
	"for_range_loop":       true,
	"switch_statement":     true,
	"return_statement":     true,
	"break_statement":      true,
	"continue_statement":   true,
	"goto_statement":       true,
	"throw_statement":      true,
	"try_statement":        true,
	"labeled_statement":    true,
	"co_return_statement":  true,
	"co_yield_statement":   true,
}

var branches = map[string]bool{
	"if_statement":           true,
	"while_statement":        true,
	"do_statement":           true,
	"for_statement":          true,
	"for_range_loop":         true,
	"catch_clause":           true,
	"conditional_expression": true,
}

var literals = map[string]bool{
	"number_literal":       true,
	"string_literal":       true,
	"raw_string_literal":   true,
	"char_literal":         true,
	"concatenated_string":  true,
	"user_defined_literal": true,
	"true":                 true,
	"false":                true,
	"null":                 true,
	"nullptr":              true,
	"sizeof_expression":    true,
	"alignof_expression":   true,
}

// skipped holds nodes that carry no name occurrences worth visiting.
var skipped = map[string]bool{
	"comment":                   true,
	"primitive_type":            true,
	"type_identifier":           true,
	"sized_type_specifier":      true,
	"type_descriptor":           true,
	"template_argument_list":    true,
	"statement_identifier":      true,
	"break_statement":           true,
	"continue_statement":        true,
	"goto_statement":            true,
	"static_assert_declaration": true,
	"using_declaration":         true,
	"alias_declaration":         true,
	"type_definition":           true,
}

var casts = map[string]bool{
	"static_cast":      true,
	"dynamic_cast":     true,
	"const_cast":       true,
	"reinterpret_cast": true,
}

// block converts a compound statement.
func (c *converter) block(n *sitter.Node, scope []string) *ast.Node {
	b := &ast.Node{Kind: ast.Block, Pos: c.pos(n)}
	for _, ch := range named(n) {
		if s := c.stmt(ch, scope); s != nil {
			b.Children = append(b.Children, s)
		}
	}
	return b
}

// stmt converts any node met in a function body. Declarations become
// declarations, expressions expressions, and every other construct a block
// of its converted children in source order, flagged when it is a statement
// or a decision point.
func (c *converter) stmt(n *sitter.Node, scope []string) *ast.Node {
	typ := n.Type()
	if typ == "expression_statement" {
		if d := c.functionPointerLocal(n, scope); d != nil {
			return d
		}
	}
	switch {
	case skipped[typ] && !statements[typ]:
		return nil
	case typ == "declaration":
		decls := c.declaration(n, scope, false)
		if len(decls) == 0 {
			return nil
		}
		for _, d := range decls {
			if d.Kind == ast.SimpleDeclaration {
				d.Flags |= ast.Statement
			}
		}
		if len(decls) == 1 {
			return decls[0]
		}
		return &ast.Node{Kind: ast.Block, Pos: c.pos(n), Flags: ast.Statement, Children: decls}
	case typ == "class_specifier" || typ == "struct_specifier" || typ == "union_specifier":
		return c.class(n, scope, false)
	case typ == "compound_statement":
		return c.block(n, scope)
	case typ == "for_range_loop":
		loop := &ast.Node{Kind: ast.Block, Pos: c.pos(n), Flags: ast.Statement | ast.Branch}
		if d := c.declarator(n.ChildByFieldName("declarator"), scope); d != nil {
			loop.Children = append(loop.Children, &ast.Node{
				Kind:        ast.SimpleDeclaration,
				Pos:         c.pos(n),
				Type:        c.typeRef(n.ChildByFieldName("type"), scope),
				Declarators: []*ast.Node{d},
			})
		}
		if r := c.expr(n.ChildByFieldName("right"), scope); r != nil {
			loop.Children = append(loop.Children, r)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			if s := c.stmt(body, scope); s != nil {
				loop.Children = append(loop.Children, s)
			}
		}
		return loop
	case typ == "catch_clause":
		clause := &ast.Node{Kind: ast.Block, Pos: c.pos(n), Flags: ast.Branch}
		for _, p := range c.paramNodes(n.ChildByFieldName("parameters")) {
			param := c.parameter(p, scope)
			if param.Name == nil {
				continue
			}
			clause.Children = append(clause.Children, &ast.Node{
				Kind:        ast.SimpleDeclaration,
				Pos:         param.Pos,
				Type:        param.Type,
				Declarators: []*ast.Node{{Kind: ast.Declarator, Pos: param.Pos, Name: param.Name}},
			})
		}
		if body := n.ChildByFieldName("body"); body != nil {
			clause.Children = append(clause.Children, c.block(body, scope))
		}
		return clause
	case statements[typ] || branches[typ] || typ == "case_statement":
		b := &ast.Node{Kind: ast.Block, Pos: c.pos(n)}
		if statements[typ] {
			b.Flags |= ast.Statement
		}
		if branches[typ] || (typ == "case_statement" && n.ChildByFieldName("value") != nil) {
			b.Flags |= ast.Branch
		}
		for _, ch := range named(n) {
			if s := c.stmt(ch, scope); s != nil {
				b.Children = append(b.Children, s)
			}
		}
		return b
	}
	if e := c.expr(n, scope); e != nil {
		return e
	}
	return nil
}

// functionPointerLocal recovers "void (*fp)();", which the grammar reads as
// the call "void(*fp)()": an outer call with no arguments whose callee calls a
// type name on a single dereferenced identifier. It gives nil for anything
// else.
func (c *converter) functionPointerLocal(n *sitter.Node, scope []string) *ast.Node {
	ch := named(n)
	if len(ch) != 1 || ch[0].Type() != "call_expression" {
		return nil
	}
	outer := ch[0]
	if len(named(outer.ChildByFieldName("arguments"))) != 0 {
		return nil
	}
	inner := outer.ChildByFieldName("function")
	if inner == nil || inner.Type() != "call_expression" {
		return nil
	}
	callee := inner.ChildByFieldName("function")
	if callee == nil || (callee.Type() != "primitive_type" && callee.Type() != "type_identifier") {
		return nil
	}
	args := named(inner.ChildByFieldName("arguments"))
	if len(args) != 1 {
		return nil
	}
	ptr := args[0]
	for ptr.Type() == "parenthesized_expression" && len(named(ptr)) == 1 {
		ptr = named(ptr)[0]
	}
	if ptr.Type() != "pointer_expression" || !hasChildType(ptr, "*", "*", c.src) {
		return nil
	}
	id := ptr.ChildByFieldName("argument")
	if id == nil || id.Type() != "identifier" {
		return nil
	}
	name := c.name(id, scope)
	if name == nil {
		return nil
	}
	return &ast.Node{
		Kind:        ast.SimpleDeclaration,
		Pos:         c.pos(n),
		Flags:       ast.Statement,
		Type:        c.typeRef(callee, scope),
		Declarators: []*ast.Node{{Kind: ast.Declarator, Pos: c.pos(id), Name: name}},
	}
}

// exprs converts the expressions of an argument or initializer list.
func (c *converter) exprs(list *sitter.Node, scope []string) []*ast.Node {
	var out []*ast.Node
	for _, ch := range named(list) {
		out = append(out, c.expr(ch, scope))
	}
	return out
}

// initializer converts the value of an init declarator. "T v(args)" becomes
// a call without callee.
func (c *converter) initializer(n *sitter.Node, scope []string) *ast.Node {
	if n.Type() == "argument_list" {
		return &ast.Node{Kind: ast.CallExpression, Pos: c.pos(n), Args: c.exprs(n, scope)}
	}
	return c.expr(n, scope)
}

// expr converts an expression. Unknown constructs become a block of their
// converted children so nested names are still visited.
func (c *converter) expr(n *sitter.Node, scope []string) *ast.Node {
	if n == nil {
		return nil
	}
	typ := n.Type()
	pos := c.pos(n)
	switch {
	case literals[typ]:
		return &ast.Node{Kind: ast.Literal, Pos: pos}
	case skipped[typ]:
		return nil
	}

	switch typ {
	case "identifier", "qualified_identifier", "template_function", "destructor_name", "operator_name":
		name := c.name(n, scope)
		if name == nil {
			return nil
		}
		return &ast.Node{Kind: ast.IdExpression, Pos: pos, Name: name}

	case "this":
		return &ast.Node{Kind: ast.ThisExpression, Pos: pos}

	case "field_expression":
		fr := &ast.Node{
			Kind:  ast.FieldReference,
			Pos:   pos,
			Owner: c.expr(n.ChildByFieldName("argument"), scope),
			Name:  c.name(n.ChildByFieldName("field"), scope),
		}
		if op := n.ChildByFieldName("operator"); op != nil && c.text(op) == "->" {
			fr.Flags |= ast.Arrow
		}
		return fr

	case "call_expression":
		fn := n.ChildByFieldName("function")
		args := c.exprs(n.ChildByFieldName("arguments"), scope)
		if fn != nil && fn.Type() == "template_function" {
			if name := fn.ChildByFieldName("name"); name != nil && casts[c.text(name)] && len(args) == 1 {
				return args[0]
			}
		}
		return &ast.Node{Kind: ast.CallExpression, Pos: pos, Callee: c.expr(fn, scope), Args: args}

	case "new_expression":
		ne := &ast.Node{Kind: ast.NewExpression, Pos: pos, Type: c.typeRef(n.ChildByFieldName("type"), scope)}
		if args := n.ChildByFieldName("arguments"); args != nil {
			ne.Args = c.exprs(args, scope)
		}
		return ne

	case "unary_expression", "pointer_expression", "update_expression", "delete_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = c.text(o)
		}
		arg := n.ChildByFieldName("argument")
		if arg == nil {
			if ch := named(n); len(ch) > 0 {
				arg = ch[len(ch)-1]
			}
		}
		return &ast.Node{Kind: ast.UnaryExpression, Pos: pos, Op: op, Operands: []*ast.Node{c.expr(arg, scope)}}

	case "binary_expression", "assignment_expression":
		op := ""
		if o := n.ChildByFieldName("operator"); o != nil {
			op = c.text(o)
		}
		b := &ast.Node{
			Kind:     ast.BinaryExpression,
			Pos:      pos,
			Op:       op,
			Operands: []*ast.Node{c.expr(n.ChildByFieldName("left"), scope), c.expr(n.ChildByFieldName("right"), scope)},
		}
		switch op {
		case "&&", "||", "and", "or":
			b.Flags |= ast.Branch
		}
		return b

	case "comma_expression":
		return &ast.Node{
			Kind:     ast.BinaryExpression,
			Pos:      pos,
			Op:       ",",
			Operands: []*ast.Node{c.expr(n.ChildByFieldName("left"), scope), c.expr(n.ChildByFieldName("right"), scope)},
		}

	case "subscript_expression":
		arg := n.ChildByFieldName("argument")
		operands := []*ast.Node{c.expr(arg, scope)}
		for _, ch := range named(n) {
			if arg == nil || ch.StartByte() != arg.StartByte() || ch.Type() != arg.Type() {
				operands = append(operands, c.expr(ch, scope))
			}
		}
		return &ast.Node{Kind: ast.BinaryExpression, Pos: pos, Op: "[]", Operands: operands}

	case "parenthesized_expression":
		if ch := named(n); len(ch) == 1 {
			return c.expr(ch[0], scope)
		}

	case "cast_expression":
		return c.expr(n.ChildByFieldName("value"), scope)

	case "lambda_expression":
		if body := n.ChildByFieldName("body"); body != nil {
			return c.block(body, scope)
		}
		return nil
	}

	b := &ast.Node{Kind: ast.Block, Pos: pos}
	if branches[typ] {
		b.Flags |= ast.Branch
	}
	for _, ch := range named(n) {
		if s := c.stmt(ch, scope); s != nil {
			b.Children = append(b.Children, s)
		}
	}
	return b
}

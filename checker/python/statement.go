package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/attrcheck/checker/graph"
)

// statements converts the statements of a module or block
func (i *Inspector) statements(node *sitter.Node) []graph.Statement {
	var result []graph.Statement
	for _, child := range namedChildren(node) {
		if stmt := i.statement(child, nil); stmt != nil {
			result = append(result, stmt)
		}
	}
	return result
}

func (i *Inspector) statement(node *sitter.Node, decorators []graph.Expression) graph.Statement {
	switch node.Type() {
	case "expression_statement":
		return i.expressionStatement(node)
	case "class_definition":
		return i.classDefinition(node)
	case "function_definition":
		return i.functionDefinition(node, decorators)
	case "decorated_definition":
		for _, child := range namedChildren(node) {
			if child.Type() == "decorator" {
				if children := namedChildren(child); len(children) > 0 {
					decorators = append(decorators, i.expression(children[0]))
				}
			}
		}
		if definition := node.ChildByFieldName("definition"); definition != nil {
			return i.statement(definition, decorators)
		}
	case "import_from_statement":
		return i.importFrom(node)
	case "import_statement":
		return i.importStatement(node)
	case "pass_statement":
		return &graph.PassStmt{Position: position(node)}
	case "return_statement":
		ret := &graph.ReturnStmt{Position: position(node)}
		if children := namedChildren(node); len(children) > 0 {
			ret.Expr = i.expression(children[0])
		}
		return ret
	}
	return &graph.OpaqueStmt{Position: position(node), Text: node.Type()}
}

func (i *Inspector) expressionStatement(node *sitter.Node) graph.Statement {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	if len(children) > 1 {
		tuple := &graph.TupleExpr{Position: position(node)}
		for _, child := range children {
			tuple.Items = append(tuple.Items, i.expression(child))
		}
		return &graph.ExpressionStmt{Position: position(node), Expr: tuple}
	}
	child := children[0]
	switch child.Type() {
	case "assignment":
		return i.assignment(child)
	case "augmented_assignment":
		return &graph.OpaqueStmt{Position: position(child), Text: i.content(child)}
	}
	return &graph.ExpressionStmt{Position: position(node), Expr: i.expression(child)}
}

// assignment flattens chained assignments (a = b = value) into one statement with
// several targets
func (i *Inspector) assignment(node *sitter.Node) graph.Statement {
	stmt := &graph.AssignmentStmt{Position: position(node)}
	if annotation := node.ChildByFieldName("type"); annotation != nil {
		stmt.Annotation = i.typeExpression(annotation)
	}
	current := node
	for {
		if left := current.ChildByFieldName("left"); left != nil {
			stmt.Lvalues = append(stmt.Lvalues, i.target(left))
		}
		right := current.ChildByFieldName("right")
		if right == nil {
			return stmt
		}
		if right.Type() != "assignment" {
			stmt.Rvalue = i.expression(right)
			return stmt
		}
		current = right
	}
}

func (i *Inspector) target(node *sitter.Node) graph.Expression {
	switch node.Type() {
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		tuple := &graph.TupleExpr{Position: position(node)}
		for _, child := range namedChildren(node) {
			tuple.Items = append(tuple.Items, i.target(child))
		}
		return tuple
	}
	return i.expression(node)
}

func (i *Inspector) classDefinition(node *sitter.Node) graph.Statement {
	classDef := &graph.ClassDef{Position: position(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		classDef.Name = i.content(name)
	}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for _, child := range namedChildren(superclasses) {
			if child.Type() == "keyword_argument" {
				continue
			}
			classDef.BaseExprs = append(classDef.BaseExprs, i.expression(child))
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		classDef.Defs = i.statements(body)
	}
	return classDef
}

func (i *Inspector) functionDefinition(node *sitter.Node, decorators []graph.Expression) graph.Statement {
	funcDef := &graph.FuncDef{Position: position(node), Decorators: decorators}
	if name := node.ChildByFieldName("name"); name != nil {
		funcDef.Name = i.content(name)
	}
	if parameters := node.ChildByFieldName("parameters"); parameters != nil {
		funcDef.Arguments = i.parameters(parameters)
	}
	if returnType := node.ChildByFieldName("return_type"); returnType != nil {
		funcDef.ReturnType = i.typeExpression(returnType)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		funcDef.Body = i.statements(body)
	}
	return funcDef
}

func (i *Inspector) parameters(node *sitter.Node) []*graph.Argument {
	var result []*graph.Argument
	keywordOnly := false
	kind := func(optional bool) graph.ArgKind {
		switch {
		case keywordOnly && optional:
			return graph.ArgNamedOpt
		case keywordOnly:
			return graph.ArgNamed
		case optional:
			return graph.ArgOpt
		}
		return graph.ArgPos
	}
	for _, child := range namedChildren(node) {
		arg := &graph.Argument{Position: position(child)}
		switch child.Type() {
		case "identifier":
			arg.Name = i.content(child)
			arg.Kind = kind(false)
		case "typed_parameter":
			arg.Annotation = i.typeExpression(child.ChildByFieldName("type"))
			if children := namedChildren(child); len(children) > 0 {
				inner := children[0]
				switch inner.Type() {
				case "list_splat_pattern":
					keywordOnly = true
					arg.Kind = graph.ArgStar
					arg.Name = i.splatName(inner)
				case "dictionary_splat_pattern":
					arg.Kind = graph.ArgStar2
					arg.Name = i.splatName(inner)
				default:
					arg.Kind = kind(false)
					arg.Name = i.content(inner)
				}
			}
		case "default_parameter", "typed_default_parameter":
			if name := child.ChildByFieldName("name"); name != nil {
				arg.Name = i.content(name)
			}
			if annotation := child.ChildByFieldName("type"); annotation != nil {
				arg.Annotation = i.typeExpression(annotation)
			}
			if value := child.ChildByFieldName("value"); value != nil {
				arg.Default = i.expression(value)
			}
			arg.Kind = kind(true)
		case "list_splat_pattern":
			keywordOnly = true
			arg.Kind = graph.ArgStar
			arg.Name = i.splatName(child)
		case "dictionary_splat_pattern":
			arg.Kind = graph.ArgStar2
			arg.Name = i.splatName(child)
		case "keyword_separator":
			keywordOnly = true
			continue
		default:
			continue
		}
		result = append(result, arg)
	}
	return result
}

func (i *Inspector) splatName(node *sitter.Node) string {
	if children := namedChildren(node); len(children) > 0 {
		return i.content(children[0])
	}
	return ""
}

func (i *Inspector) importFrom(node *sitter.Node) graph.Statement {
	stmt := &graph.ImportFrom{Position: position(node)}
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		stmt.Module = i.content(moduleNode)
	}
	for _, child := range namedChildren(node) {
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "wildcard_import":
			stmt.Wildcard = true
		case "dotted_name", "aliased_import":
			stmt.Names = append(stmt.Names, i.importedName(child))
		}
	}
	return stmt
}

func (i *Inspector) importStatement(node *sitter.Node) graph.Statement {
	stmt := &graph.Import{Position: position(node)}
	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "dotted_name", "aliased_import":
			stmt.Names = append(stmt.Names, i.importedName(child))
		}
	}
	return stmt
}

func (i *Inspector) importedName(node *sitter.Node) graph.ImportedName {
	if node.Type() != "aliased_import" {
		return graph.ImportedName{Name: i.content(node)}
	}
	imported := graph.ImportedName{}
	if name := node.ChildByFieldName("name"); name != nil {
		imported.Name = i.content(name)
	}
	if alias := node.ChildByFieldName("alias"); alias != nil {
		imported.Alias = i.content(alias)
	}
	return imported
}

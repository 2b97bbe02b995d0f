package python

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/attrcheck/checker/graph"
)

// operators are evaluated as Any but their operands are still visited
var operators = map[string]bool{
	"binary_operator":        true,
	"boolean_operator":       true,
	"comparison_operator":    true,
	"not_operator":           true,
	"conditional_expression": true,
	"dictionary":             true,
	"pair":                   true,
	"set":                    true,
	"await":                  true,
}

func (i *Inspector) expression(node *sitter.Node) graph.Expression {
	if node == nil {
		return nil
	}
	pos := position(node)
	switch node.Type() {
	case "identifier":
		return &graph.NameExpr{Position: pos, Name: i.content(node)}
	case "true":
		return &graph.NameExpr{Position: pos, Name: "True"}
	case "false":
		return &graph.NameExpr{Position: pos, Name: "False"}
	case "none":
		return &graph.NameExpr{Position: pos, Name: "None"}
	case "integer":
		text := strings.ReplaceAll(i.content(node), "_", "")
		value, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return &graph.OpaqueExpr{Position: pos, Text: text}
		}
		return &graph.IntExpr{Position: pos, Value: value}
	case "float":
		text := strings.ReplaceAll(i.content(node), "_", "")
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return &graph.OpaqueExpr{Position: pos, Text: text}
		}
		return &graph.FloatExpr{Position: pos, Value: value}
	case "string":
		return i.stringLiteral(node)
	case "concatenated_string":
		var value strings.Builder
		for _, child := range namedChildren(node) {
			if literal, ok := i.stringLiteral(child).(*graph.StrExpr); ok {
				value.WriteString(literal.Value)
			}
		}
		return &graph.StrExpr{Position: pos, Value: value.String()}
	case "ellipsis":
		return &graph.EllipsisExpr{Position: pos}
	case "attribute":
		return &graph.MemberExpr{
			Position: pos,
			Expr:     i.expression(node.ChildByFieldName("object")),
			Name:     i.content(node.ChildByFieldName("attribute")),
		}
	case "call":
		return i.call(node)
	case "subscript":
		index := &graph.IndexExpr{Position: pos, Base: i.expression(node.ChildByFieldName("value"))}
		for _, child := range namedChildren(node)[1:] {
			index.Index = append(index.Index, i.expression(child))
		}
		return index
	case "parenthesized_expression":
		if children := namedChildren(node); len(children) == 1 {
			return i.expression(children[0])
		}
	case "tuple", "expression_list":
		tuple := &graph.TupleExpr{Position: pos}
		for _, child := range namedChildren(node) {
			tuple.Items = append(tuple.Items, i.expression(child))
		}
		return tuple
	case "list":
		list := &graph.ListExpr{Position: pos}
		for _, child := range namedChildren(node) {
			list.Items = append(list.Items, i.expression(child))
		}
		return list
	case "unary_operator":
		return i.unary(node)
	case "type":
		return i.typeExpression(node)
	case "generic_type":
		return i.genericType(node)
	case "member_type":
		children := namedChildren(node)
		if len(children) != 2 {
			break
		}
		return &graph.MemberExpr{Position: pos, Expr: i.typeExpression(children[0]), Name: i.content(children[1])}
	}
	opaque := &graph.OpaqueExpr{Position: pos, Text: i.content(node)}
	if operators[node.Type()] {
		for _, child := range namedChildren(node) {
			opaque.Children = append(opaque.Children, i.expression(child))
		}
	}
	return opaque
}

// typeExpression unwraps the type node used for annotations
func (i *Inspector) typeExpression(node *sitter.Node) graph.Expression {
	if node == nil {
		return nil
	}
	if node.Type() == "type" {
		if children := namedChildren(node); len(children) == 1 {
			return i.expression(children[0])
		}
		return &graph.OpaqueExpr{Position: position(node), Text: i.content(node)}
	}
	return i.expression(node)
}

// genericType converts an annotation subscript such as Optional[int]: the grammar parses
// it as generic_type(identifier, type_parameter(type, ...)) rather than a subscript
func (i *Inspector) genericType(node *sitter.Node) graph.Expression {
	index := &graph.IndexExpr{Position: position(node)}
	for _, child := range namedChildren(node) {
		if child.Type() != "type_parameter" {
			index.Base = i.typeExpression(child)
			continue
		}
		for _, parameter := range namedChildren(child) {
			index.Index = append(index.Index, i.typeExpression(parameter))
		}
	}
	if index.Base == nil {
		return &graph.OpaqueExpr{Position: position(node), Text: i.content(node)}
	}
	return index
}

func (i *Inspector) call(node *sitter.Node) graph.Expression {
	call := &graph.CallExpr{Position: position(node), Callee: i.expression(node.ChildByFieldName("function"))}
	arguments := node.ChildByFieldName("arguments")
	if arguments == nil {
		return call
	}
	if arguments.Type() == "generator_expression" {
		call.Args = append(call.Args, &graph.OpaqueExpr{Position: position(arguments), Text: i.content(arguments)})
		call.ArgKinds = append(call.ArgKinds, graph.ArgPos)
		call.ArgNames = append(call.ArgNames, "")
		return call
	}
	for _, child := range namedChildren(arguments) {
		var (
			arg  graph.Expression
			kind = graph.ArgPos
			name string
		)
		switch child.Type() {
		case "keyword_argument":
			kind = graph.ArgNamed
			name = i.content(child.ChildByFieldName("name"))
			arg = i.expression(child.ChildByFieldName("value"))
		case "list_splat":
			kind = graph.ArgStar
			arg = i.splatValue(child)
		case "dictionary_splat":
			kind = graph.ArgStar2
			arg = i.splatValue(child)
		default:
			arg = i.expression(child)
		}
		call.Args = append(call.Args, arg)
		call.ArgKinds = append(call.ArgKinds, kind)
		call.ArgNames = append(call.ArgNames, name)
	}
	return call
}

func (i *Inspector) splatValue(node *sitter.Node) graph.Expression {
	if children := namedChildren(node); len(children) > 0 {
		return i.expression(children[0])
	}
	return &graph.OpaqueExpr{Position: position(node), Text: i.content(node)}
}

// unary folds signs into numeric literals
func (i *Inspector) unary(node *sitter.Node) graph.Expression {
	operator := node.ChildByFieldName("operator")
	argument := i.expression(node.ChildByFieldName("argument"))
	sign := ""
	if operator != nil {
		sign = i.content(operator)
	}
	switch literal := argument.(type) {
	case *graph.IntExpr:
		switch sign {
		case "-":
			return &graph.IntExpr{Position: position(node), Value: -literal.Value}
		case "+":
			return &graph.IntExpr{Position: position(node), Value: literal.Value}
		}
	case *graph.FloatExpr:
		switch sign {
		case "-":
			return &graph.FloatExpr{Position: position(node), Value: -literal.Value}
		case "+":
			return &graph.FloatExpr{Position: position(node), Value: literal.Value}
		}
	}
	return &graph.OpaqueExpr{Position: position(node), Text: i.content(node), Children: []graph.Expression{argument}}
}

// stringLiteral decodes a single string literal; f-strings are opaque, b-prefixed literals are bytes
func (i *Inspector) stringLiteral(node *sitter.Node) graph.Expression {
	text := i.content(node)
	pos := position(node)
	prefixEnd := strings.IndexAny(text, `'"`)
	if prefixEnd == -1 {
		return &graph.OpaqueExpr{Position: pos, Text: text}
	}
	prefix := strings.ToLower(text[:prefixEnd])
	body := text[prefixEnd:]
	quote := body[:1]
	if strings.HasPrefix(body, strings.Repeat(quote, 3)) && len(body) >= 6 {
		body = body[3 : len(body)-3]
	} else if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	if strings.Contains(prefix, "f") {
		return &graph.OpaqueExpr{Position: pos, Text: text}
	}
	if !strings.Contains(prefix, "r") {
		if unquoted, err := strconv.Unquote(`"` + strings.ReplaceAll(body, `"`, `\"`) + `"`); err == nil {
			body = unquoted
		}
	}
	if strings.Contains(prefix, "b") {
		return &graph.BytesExpr{Position: pos, Value: body}
	}
	return &graph.StrExpr{Position: pos, Value: body}
}

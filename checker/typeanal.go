package checker

import (
	"strings"

	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
)

// builtin classes behind the typing aliases
var typingAliases = map[string]string{
	"Dict":  "dict",
	"List":  "list",
	"Set":   "set",
	"Tuple": "tuple",
}

// analyzeType converts an annotation expression into a type
func (a *semanticAnalyzer) analyzeType(expr graph.Expression) graph.Type {
	switch actual := expr.(type) {
	case nil:
		return &graph.AnyType{}
	case *graph.NameExpr:
		if actual.Name == "None" {
			return &graph.NoneType{}
		}
		return a.analyzeSymbol(a.lookupExpr(actual), nil, expr)
	case *graph.MemberExpr:
		return a.analyzeSymbol(a.lookupExpr(actual), nil, expr)
	case *graph.IndexExpr:
		return a.analyzeSymbol(a.lookupExpr(actual.Base), actual.Index, expr)
	case *graph.StrExpr:
		return a.analyzeType(forwardReference(actual))
	case *graph.EllipsisExpr:
		return &graph.AnyType{}
	}
	a.fail(invalidType(exprText(expr)), expr, report.CodeValidType)
	return &graph.AnyType{}
}

// forwardReference converts a quoted annotation ("Model" or "models.Model") into an expression
func forwardReference(literal *graph.StrExpr) graph.Expression {
	parts := strings.Split(strings.TrimSpace(literal.Value), ".")
	var expr graph.Expression = &graph.NameExpr{Position: literal.Position, Name: parts[0]}
	for _, part := range parts[1:] {
		expr = &graph.MemberExpr{Position: literal.Position, Expr: expr, Name: part}
	}
	return expr
}

func (a *semanticAnalyzer) analyzeSymbol(sym *graph.Symbol, args []graph.Expression, expr graph.Expression) graph.Type {
	if sym == nil {
		a.fail(nameNotDefined(exprText(expr)), expr, report.CodeNameDefined)
		return &graph.AnyType{}
	}
	switch sym.Kind {
	case graph.SymbolClass:
		return a.instance(sym.Info, a.analyzeTypes(args))
	case graph.SymbolTypeVar:
		return &graph.TypeVarType{Name: sym.Name}
	case graph.SymbolSpecialForm:
		return a.analyzeSpecialForm(sym, args, expr)
	}
	a.fail(invalidType(exprText(expr)), expr, report.CodeValidType)
	return &graph.AnyType{}
}

func (a *semanticAnalyzer) analyzeTypes(exprs []graph.Expression) []graph.Type {
	var result []graph.Type
	for _, expr := range exprs {
		result = append(result, a.analyzeType(expr))
	}
	return result
}

// instance creates an instance; missing type arguments become Any
func (a *semanticAnalyzer) instance(info *graph.TypeInfo, args []graph.Type) *graph.Instance {
	for len(args) < len(info.TypeVars) {
		args = append(args, &graph.AnyType{})
	}
	if len(info.TypeVars) > 0 && len(args) > len(info.TypeVars) {
		args = args[:len(info.TypeVars)]
	}
	return graph.NewInstance(info, args...)
}

func (a *semanticAnalyzer) analyzeSpecialForm(sym *graph.Symbol, args []graph.Expression, expr graph.Expression) graph.Type {
	name := strings.TrimPrefix(sym.Fullname, stubs.Typing+".")
	switch name {
	case "Any":
		return &graph.AnyType{}
	case "Optional":
		if len(args) != 1 {
			break
		}
		return graph.MakeOptional(a.analyzeType(args[0]))
	case "Union":
		if len(args) == 0 {
			break
		}
		return graph.MakeUnion(a.analyzeTypes(args)...)
	case "Type":
		if len(args) != 1 {
			return a.builtinInstance("type", nil)
		}
		if item, ok := a.analyzeType(args[0]).(*graph.Instance); ok {
			return &graph.TypeType{Item: item}
		}
		return &graph.AnyType{}
	case "ClassVar":
		if len(args) == 1 {
			return a.analyzeType(args[0])
		}
		return &graph.AnyType{}
	case "Callable":
		return a.analyzeCallable(args)
	default:
		if builtin, ok := typingAliases[name]; ok {
			return a.builtinInstance(builtin, a.analyzeTypes(args))
		}
	}
	a.fail(invalidType(exprText(expr)), expr, report.CodeValidType)
	return &graph.AnyType{}
}

func (a *semanticAnalyzer) analyzeCallable(args []graph.Expression) graph.Type {
	callable := &graph.CallableType{RetType: &graph.AnyType{}}
	if len(args) != 2 {
		callable.ArgTypes = []graph.Type{&graph.AnyType{}, &graph.AnyType{}}
		callable.ArgKinds = []graph.ArgKind{graph.ArgStar, graph.ArgStar2}
		callable.ArgNames = []string{"", ""}
		return callable
	}
	if list, ok := args[0].(*graph.ListExpr); ok {
		for _, item := range list.Items {
			callable.ArgTypes = append(callable.ArgTypes, a.analyzeType(item))
			callable.ArgKinds = append(callable.ArgKinds, graph.ArgPos)
			callable.ArgNames = append(callable.ArgNames, "")
		}
	}
	callable.RetType = a.analyzeType(args[1])
	return callable
}

func (a *semanticAnalyzer) builtinInstance(name string, args []graph.Type) graph.Type {
	info := a.modules.LookupTypeInfo(stubs.Builtins + "." + name)
	if info == nil {
		return &graph.AnyType{}
	}
	return a.instance(info, args)
}

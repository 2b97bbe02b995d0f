package hook

import (
	"fmt"

	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

const (
	flagNull     = "null"
	flagHashKey  = "hash_key"
	flagRangeKey = "range_key"

	trueName  = "builtins.True"
	falseName = "builtins.False"
)

// flags are the literal boolean arguments of an attribute construction
type flags struct {
	null     bool
	hashKey  bool
	rangeKey bool
}

func resolveFlags(ctx *checker.FunctionContext) flags {
	return flags{
		null:     literalBool(ctx, flagNull, false),
		hashKey:  literalBool(ctx, flagHashKey, false),
		rangeKey: literalBool(ctx, flagRangeKey, false),
	}
}

// valueType widens the descriptor read type when the field is nullable
func (f flags) valueType(accessType graph.Type) graph.Type {
	if f.null {
		return graph.MakeOptional(accessType)
	}
	return accessType
}

// literalBool returns the value of a flag that must be the literal True or False.
// Anything else is reported and the default is used.
func literalBool(ctx *checker.FunctionContext, name string, defaultValue bool) bool {
	expr := flagArgument(ctx, name)
	if expr == nil {
		return defaultValue
	}
	nameExpr, ok := expr.(*graph.NameExpr)
	if !ok || (nameExpr.Fullname != trueName && nameExpr.Fullname != falseName) {
		message := fmt.Sprintf("'%s' argument is not constant False or True", name)
		if name == flagNull {
			message += ", cannot deduce optionality"
		}
		ctx.API.Fail(message, ctx.Context, CodeFlag)
		return defaultValue
	}
	return nameExpr.Fullname == trueName
}

// flagArgument finds the actual argument bound to the formal parameter name; when the
// callee has no such parameter the actual keyword arguments are scanned
func flagArgument(ctx *checker.FunctionContext, name string) graph.Expression {
	for i, formal := range ctx.CalleeArgNames {
		if formal != name || i >= len(ctx.Args) {
			continue
		}
		for j, arg := range ctx.Args[i] {
			if !ctx.ArgKinds[i][j].IsStar() {
				return arg
			}
		}
		return nil
	}
	for i, names := range ctx.ArgNames {
		for j, argName := range names {
			if argName == name {
				return ctx.Args[i][j]
			}
		}
	}
	return nil
}

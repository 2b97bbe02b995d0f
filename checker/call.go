package checker

import (
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
)

const revealTypeName = stubs.Builtins + ".reveal_type"

type (
	// argumentProblem is an argument matching error
	argumentProblem struct {
		message string
		code    string
	}

	// argumentMap maps each formal parameter to the indexes of its actual arguments
	argumentMap struct {
		formals  [][]int
		problems []argumentProblem
	}
)

func (c *TypeChecker) inferCall(call *graph.CallExpr) graph.Type {
	calleeType := c.infer(call.Callee)
	if name, ok := call.Callee.(*graph.NameExpr); ok && name.Fullname == revealTypeName && len(call.Args) == 1 {
		revealed := c.infer(call.Args[0])
		c.Note(revealedType(revealed), call)
		return revealed
	}
	argTypes := make([]graph.Type, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = c.infer(arg)
	}
	switch actual := calleeType.(type) {
	case *graph.TypeType:
		return c.construct(actual.Item, call, argTypes)
	case *graph.CallableType:
		return c.checkCall(actual, actual.Definition, call, argTypes)
	case *graph.Instance:
		if method := c.boundMethod(actual, "__call__"); method != nil {
			return c.checkCall(method, method.Definition, call, argTypes)
		}
		c.Fail(notCallable(actual), call, report.CodeOperator)
	case *graph.NoneType, *graph.UnionType:
		c.Fail(notCallable(actual), call, report.CodeOperator)
	}
	return &graph.AnyType{}
}

// construct checks a class instantiation against the class __init__
func (c *TypeChecker) construct(item *graph.Instance, call *graph.CallExpr, argTypes []graph.Type) graph.Type {
	info := item.Type
	if info == nil {
		return &graph.AnyType{}
	}
	args := item.Args
	if len(args) == 0 {
		for range info.TypeVars {
			args = append(args, &graph.AnyType{})
		}
	}
	instance := graph.NewInstance(info, args...)
	signature := c.boundMethod(instance, "__init__")
	if signature == nil {
		signature = &graph.CallableType{}
	}
	signature = signature.Copy()
	signature.RetType = instance
	signature.Name = info.Name
	return c.checkCall(signature, info.Fullname, call, argTypes)
}

// checkCall applies the signature hook, matches and checks arguments, then applies the
// function hook. The function hook is skipped when the arguments do not match.
func (c *TypeChecker) checkCall(signature *graph.CallableType, fullname string, call *graph.CallExpr, argTypes []graph.Type) graph.Type {
	if c.plugin != nil && fullname != "" {
		if hook := c.plugin.FunctionSignatureHook(fullname); hook != nil {
			mapping := mapArguments(call, signature)
			signature = hook(&FunctionSigContext{
				Args:             groupExpressions(call, mapping),
				DefaultSignature: signature,
				Context:          call,
				API:              c,
			})
		}
	}
	mapping := mapArguments(call, signature)
	for _, problem := range mapping.problems {
		c.Fail(problem.message, call, problem.code)
	}
	valid := len(mapping.problems) == 0 && c.checkArgumentTypes(signature, call, argTypes, mapping)

	result := signature.RetType
	if result == nil {
		result = &graph.AnyType{}
	}
	if !valid || c.plugin == nil || fullname == "" {
		return result
	}
	hook := c.plugin.FunctionHook(fullname)
	if hook == nil {
		return result
	}
	ctx := &FunctionContext{
		Args:              groupExpressions(call, mapping),
		CalleeArgNames:    append([]string{}, signature.ArgNames...),
		DefaultReturnType: result,
		Context:           call,
		API:               c,
	}
	for _, actuals := range mapping.formals {
		var types []graph.Type
		var names []string
		var kinds []graph.ArgKind
		for _, index := range actuals {
			types = append(types, argTypes[index])
			names = append(names, call.ArgNames[index])
			kinds = append(kinds, call.ArgKinds[index])
		}
		ctx.ArgTypes = append(ctx.ArgTypes, types)
		ctx.ArgNames = append(ctx.ArgNames, names)
		ctx.ArgKinds = append(ctx.ArgKinds, kinds)
	}
	return hook(ctx)
}

func groupExpressions(call *graph.CallExpr, mapping *argumentMap) [][]graph.Expression {
	result := make([][]graph.Expression, len(mapping.formals))
	for i, actuals := range mapping.formals {
		for _, index := range actuals {
			result[i] = append(result[i], call.Args[index])
		}
	}
	return result
}

// mapArguments matches actual arguments to formal parameters
func mapArguments(call *graph.CallExpr, signature *graph.CallableType) *argumentMap {
	mapping := &argumentMap{formals: make([][]int, len(signature.ArgTypes))}
	fail := func(message, code string) {
		mapping.problems = append(mapping.problems, argumentProblem{message: message, code: code})
	}
	next := 0
	hasStar, hasStar2 := false, false
	for i, kind := range call.ArgKinds {
		switch kind {
		case graph.ArgPos:
			if next < len(signature.ArgKinds) && signature.ArgKinds[next].IsPositional() {
				mapping.formals[next] = append(mapping.formals[next], i)
				next++
			} else if star := signature.KindIndex(graph.ArgStar); star >= 0 {
				mapping.formals[star] = append(mapping.formals[star], i)
			} else {
				fail(tooManyPositional(signature.Name), report.CodeCallArg)
			}
		case graph.ArgNamed:
			name := call.ArgNames[i]
			index := signature.ArgIndex(name)
			if index >= 0 && !signature.ArgKinds[index].IsStar() {
				if len(mapping.formals[index]) > 0 {
					fail(multipleValues(name, signature.Name), report.CodeMisc)
					continue
				}
				mapping.formals[index] = append(mapping.formals[index], i)
			} else if star2 := signature.KindIndex(graph.ArgStar2); star2 >= 0 {
				mapping.formals[star2] = append(mapping.formals[star2], i)
			} else {
				fail(unexpectedKeyword(name, signature.Name), report.CodeCallArg)
			}
		case graph.ArgStar:
			hasStar = true
			for j := next; j < len(signature.ArgKinds); j++ {
				if signature.ArgKinds[j].IsPositional() || signature.ArgKinds[j] == graph.ArgStar {
					mapping.formals[j] = append(mapping.formals[j], i)
				}
			}
		case graph.ArgStar2:
			hasStar2 = true
			for j, formalKind := range signature.ArgKinds {
				if len(mapping.formals[j]) == 0 && (formalKind.IsNamed() || formalKind == graph.ArgStar2) {
					mapping.formals[j] = append(mapping.formals[j], i)
				}
			}
		}
	}

	var missing []string
	for j, kind := range signature.ArgKinds {
		if !kind.IsRequired() || len(mapping.formals[j]) > 0 {
			continue
		}
		switch {
		case kind == graph.ArgPos && !hasStar && !hasStar2:
			missing = append(missing, signature.ArgNames[j])
		case kind == graph.ArgNamed && !hasStar2:
			fail(missingNamed(signature.ArgNames[j], signature.Name), report.CodeCallArg)
		}
	}
	if len(missing) > 0 {
		fail(missingPositional(missing, signature.Name), report.CodeCallArg)
	}
	return mapping
}

func (c *TypeChecker) checkArgumentTypes(signature *graph.CallableType, call *graph.CallExpr, argTypes []graph.Type, mapping *argumentMap) bool {
	valid := true
	for j, actuals := range mapping.formals {
		expected := signature.ArgTypes[j]
		for _, index := range actuals {
			if call.ArgKinds[index].IsStar() {
				continue
			}
			if graph.IsSubtype(argTypes[index], expected) {
				continue
			}
			valid = false
			c.Fail(incompatibleArgument(index+1, call.ArgNames[index], signature.Name, argTypes[index], expected), call, report.CodeArgType)
		}
	}
	return valid
}

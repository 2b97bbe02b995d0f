package checker

import (
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/report"
	"github.com/viant/attrcheck/checker/stubs"
)

// infer returns the type of an expression; every expression is inferred once
func (c *TypeChecker) infer(expr graph.Expression) graph.Type {
	switch actual := expr.(type) {
	case nil:
		return &graph.AnyType{}
	case *graph.NameExpr:
		return c.inferName(actual)
	case *graph.MemberExpr:
		if sym := c.moduleMember(actual); sym != nil {
			return c.symbolType(sym)
		}
		return c.analyzeMember(c.infer(actual.Expr), actual, false)
	case *graph.CallExpr:
		return c.inferCall(actual)
	case *graph.IntExpr:
		return c.builtinInstance("int")
	case *graph.FloatExpr:
		return c.builtinInstance("float")
	case *graph.StrExpr:
		return c.builtinInstance("str")
	case *graph.BytesExpr:
		return c.builtinInstance("bytes")
	case *graph.TupleExpr:
		for _, item := range actual.Items {
			c.infer(item)
		}
		return c.builtinInstance("tuple", &graph.AnyType{})
	case *graph.ListExpr:
		var items []graph.Type
		for _, item := range actual.Items {
			items = append(items, c.infer(item))
		}
		if len(items) == 0 {
			return c.builtinInstance("list", &graph.AnyType{})
		}
		return c.builtinInstance("list", graph.MakeUnion(items...))
	case *graph.IndexExpr:
		c.infer(actual.Base)
		for _, index := range actual.Index {
			c.infer(index)
		}
	case *graph.OpaqueExpr:
		for _, child := range actual.Children {
			c.infer(child)
		}
	}
	return &graph.AnyType{}
}

func (c *TypeChecker) inferName(expr *graph.NameExpr) graph.Type {
	switch expr.Name {
	case "None":
		expr.Fullname = stubs.Builtins + ".None"
		return &graph.NoneType{}
	case "True", "False":
		expr.Fullname = stubs.Builtins + "." + expr.Name
		return c.builtinInstance("bool")
	}
	sym := c.lookupName(expr.Name)
	if sym == nil {
		c.Fail(nameNotDefined(expr.Name), expr, report.CodeNameDefined)
		return &graph.AnyType{}
	}
	expr.Fullname = sym.Fullname
	return c.symbolType(sym)
}

func (c *TypeChecker) symbolType(sym *graph.Symbol) graph.Type {
	switch sym.Kind {
	case graph.SymbolClass:
		return &graph.TypeType{Item: graph.NewInstance(sym.Info)}
	case graph.SymbolVariable, graph.SymbolFunction:
		if sym.Type != nil {
			return sym.Type
		}
	}
	return &graph.AnyType{}
}

// moduleMember resolves module.name references
func (c *TypeChecker) moduleMember(expr *graph.MemberExpr) *graph.Symbol {
	var base *graph.Symbol
	switch actual := expr.Expr.(type) {
	case *graph.NameExpr:
		base = c.lookupName(actual.Name)
	case *graph.MemberExpr:
		base = c.moduleMember(actual)
	}
	if base == nil || base.Kind != graph.SymbolModule {
		return nil
	}
	sym := memberSymbol(c.modules, base, expr.Name)
	if sym == nil {
		c.Fail(moduleHasNoAttribute(base.Module.Name, expr.Name), expr, report.CodeAttrDefined)
		return &graph.Symbol{Kind: graph.SymbolVariable, Name: expr.Name, Type: &graph.AnyType{}}
	}
	return sym
}

// analyzeMember returns the type of base.name; for lvalues the type a value must have
// to be assigned. A nil result means an error was reported.
func (c *TypeChecker) analyzeMember(base graph.Type, expr *graph.MemberExpr, isLvalue bool) graph.Type {
	switch actual := base.(type) {
	case *graph.AnyType:
		return actual
	case *graph.Instance:
		return c.instanceMember(actual, expr, isLvalue)
	case *graph.TypeType:
		return c.classMember(actual, expr, isLvalue)
	case *graph.UnionType:
		var items []graph.Type
		for _, item := range actual.Items {
			if _, ok := item.(*graph.NoneType); ok {
				c.Fail(itemHasNoAttribute(item, actual, expr.Name), expr, report.CodeUnionAttr)
				continue
			}
			if result := c.analyzeMember(item, expr, isLvalue); result != nil {
				items = append(items, result)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return graph.MakeUnion(items...)
	case *graph.NoneType:
		c.Fail(hasNoAttribute(actual, expr.Name), expr, report.CodeAttrDefined)
		return nil
	}
	return &graph.AnyType{}
}

func (c *TypeChecker) instanceMember(instance *graph.Instance, expr *graph.MemberExpr, isLvalue bool) graph.Type {
	if instance.Type == nil {
		return &graph.AnyType{}
	}
	sym := instance.Type.Get(expr.Name)
	if sym == nil {
		c.Fail(hasNoAttribute(instance, expr.Name), expr, report.CodeAttrDefined)
		return nil
	}
	switch sym.Kind {
	case graph.SymbolFunction:
		if isLvalue {
			c.Fail(cannotAssignToMethod, expr, report.CodeAssignment)
			return nil
		}
		if method := c.boundMethod(instance, expr.Name); method != nil {
			return method
		}
		return &graph.AnyType{}
	case graph.SymbolClass:
		return &graph.TypeType{Item: graph.NewInstance(sym.Info)}
	case graph.SymbolVariable:
	default:
		return &graph.AnyType{}
	}

	var memberType graph.Type = &graph.AnyType{}
	if sym.Type != nil {
		memberType = graph.ExpandTypeVars(sym.Type, graph.MapInstanceToSupertype(instance, sym.Owner))
	}
	if descriptor, ok := memberType.(*graph.Instance); ok {
		if isLvalue {
			if setter := c.boundMethod(descriptor, "__set__"); setter != nil && len(setter.ArgTypes) >= 2 {
				memberType = setter.ArgTypes[1]
			}
		} else if accessType := c.DescriptorAccessType(descriptor, expr); accessType != nil {
			memberType = accessType
		}
	}
	return c.attributeHook(sym, instance, memberType, expr, isLvalue)
}

// classMember handles Class.name; descriptors are returned as is
func (c *TypeChecker) classMember(classType *graph.TypeType, expr *graph.MemberExpr, isLvalue bool) graph.Type {
	info := classType.Item.Type
	if info == nil {
		return &graph.AnyType{}
	}
	sym := info.Get(expr.Name)
	if sym == nil {
		c.Fail(hasNoAttribute(classType, expr.Name), expr, report.CodeAttrDefined)
		return nil
	}
	self := selfInstance(info)
	switch sym.Kind {
	case graph.SymbolFunction:
		callable, ok := sym.Type.(*graph.CallableType)
		if !ok {
			return &graph.AnyType{}
		}
		expanded := graph.ExpandTypeVars(callable, graph.MapInstanceToSupertype(self, sym.Owner)).(*graph.CallableType)
		if hasDecorator(sym, decoratorClassMethod) {
			return expanded.DropFirst()
		}
		return expanded
	case graph.SymbolClass:
		return &graph.TypeType{Item: graph.NewInstance(sym.Info)}
	case graph.SymbolVariable:
		var memberType graph.Type = &graph.AnyType{}
		if sym.Type != nil {
			memberType = graph.ExpandTypeVars(sym.Type, graph.MapInstanceToSupertype(self, sym.Owner))
		}
		return c.attributeHook(sym, classType, memberType, expr, isLvalue)
	}
	return &graph.AnyType{}
}

// attributeHook lets the plugin adjust a member type; the hook is keyed on the class
// defining the member
func (c *TypeChecker) attributeHook(sym *graph.Symbol, base graph.Type, defaultType graph.Type, expr *graph.MemberExpr, isLvalue bool) graph.Type {
	if c.plugin == nil || sym.Owner == nil {
		return defaultType
	}
	hook := c.plugin.AttributeHook(sym.Owner.Fullname + "." + expr.Name)
	if hook == nil {
		return defaultType
	}
	return hook(&AttributeContext{
		Type:            base,
		DefaultAttrType: defaultType,
		IsLvalue:        isLvalue,
		Context:         expr,
		API:             c,
	})
}

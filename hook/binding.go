package hook

import (
	"fmt"

	"github.com/viant/attrcheck/checker"
	"github.com/viant/attrcheck/checker/graph"
)

const (
	errNotAssigned   = "PynamoDB attribute not assigned to a class variable"
	errNonName       = "PynamoDB attribute assigned to non-name"
	errManyNamesFmt  = "PynamoDB attribute assigned to %d names in a model"
	errNotDescriptor = "PynamoDB attribute does not act as a data descriptor (does it have __get__?)"
)

// bindings indexes class bodies by assignment value, built once per class body
type bindings struct {
	index map[*graph.ClassDef]map[graph.Expression]*graph.AssignmentStmt
}

func newBindings() *bindings {
	return &bindings{index: map[*graph.ClassDef]map[graph.Expression]*graph.AssignmentStmt{}}
}

func (b *bindings) reset() {
	b.index = map[*graph.ClassDef]map[graph.Expression]*graph.AssignmentStmt{}
}

// assignment returns the statement of the class body whose value is expr itself
func (b *bindings) assignment(classDef *graph.ClassDef, expr graph.Expression) *graph.AssignmentStmt {
	byValue, ok := b.index[classDef]
	if !ok {
		byValue = map[graph.Expression]*graph.AssignmentStmt{}
		for _, stmt := range classDef.Defs {
			if assignment, ok := stmt.(*graph.AssignmentStmt); ok && assignment.Rvalue != nil {
				byValue[assignment.Rvalue] = assignment
			}
		}
		b.index[classDef] = byValue
	}
	return byValue[expr]
}

// bind returns the class variable name the construction is assigned to; failures are
// reported and leave ok false
func (b *bindings) bind(ctx *checker.FunctionContext, class *graph.TypeInfo) (name string, ok bool) {
	if class == nil || class.Defn == nil {
		ctx.API.Fail(errNotAssigned, ctx.Context, CodeBinding)
		return "", false
	}
	stmt := b.assignment(class.Defn, ctx.Context)
	if stmt == nil {
		ctx.API.Fail(errNotAssigned, ctx.Context, CodeBinding)
		return "", false
	}
	if len(stmt.Lvalues) != 1 {
		ctx.API.Fail(fmt.Sprintf(errManyNamesFmt, len(stmt.Lvalues)), stmt, CodeBinding)
		return "", false
	}
	lvalue, isName := stmt.Lvalues[0].(*graph.NameExpr)
	if !isName {
		ctx.API.Fail(errNonName, stmt, CodeBinding)
		return "", false
	}
	return lvalue.Name, true
}

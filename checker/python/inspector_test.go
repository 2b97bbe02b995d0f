package python_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/attrcheck/checker/graph"
	"github.com/viant/attrcheck/checker/python"
)

func TestInspector_InspectSource(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantDefs  int
		wantErr   bool
		checkFunc func(t *testing.T, module *graph.Module)
	}{
		{
			name: "model with attributes",
			source: `from pynamodb.attributes import NumberAttribute, UnicodeAttribute
from pynamodb.models import Model

class MyModel(Model):
    # key
    my_attr = NumberAttribute(hash_key=True)
    my_opt = UnicodeAttribute(null=True)
`,
			wantDefs: 3,
			checkFunc: func(t *testing.T, module *graph.Module) {
				imported := module.Defs[0].(*graph.ImportFrom)
				assert.Equal(t, "pynamodb.attributes", imported.Module)
				assert.Equal(t, []graph.ImportedName{{Name: "NumberAttribute"}, {Name: "UnicodeAttribute"}}, imported.Names)

				classDef := module.Defs[2].(*graph.ClassDef)
				assert.Equal(t, "MyModel", classDef.Name)
				require.Len(t, classDef.BaseExprs, 1)
				assert.Equal(t, "Model", classDef.BaseExprs[0].(*graph.NameExpr).Name)
				require.Len(t, classDef.Defs, 2)

				assign := classDef.Defs[0].(*graph.AssignmentStmt)
				assert.Equal(t, 6, assign.Line)
				require.Len(t, assign.Lvalues, 1)
				assert.Equal(t, "my_attr", assign.Lvalues[0].(*graph.NameExpr).Name)
				call := assign.Rvalue.(*graph.CallExpr)
				assert.Equal(t, "NumberAttribute", call.Callee.(*graph.NameExpr).Name)
				assert.Equal(t, []string{"hash_key"}, call.ArgNames)
				assert.Equal(t, []graph.ArgKind{graph.ArgNamed}, call.ArgKinds)
				assert.Equal(t, "True", call.Args[0].(*graph.NameExpr).Name)
			},
		},
		{
			name:     "chained and tuple assignment",
			source:   "a = b = X()\nc, d = X(), X()\n",
			wantDefs: 2,
			checkFunc: func(t *testing.T, module *graph.Module) {
				chained := module.Defs[0].(*graph.AssignmentStmt)
				require.Len(t, chained.Lvalues, 2)
				assert.Equal(t, "a", chained.Lvalues[0].(*graph.NameExpr).Name)
				assert.Equal(t, "b", chained.Lvalues[1].(*graph.NameExpr).Name)
				assert.IsType(t, &graph.CallExpr{}, chained.Rvalue)

				tuple := module.Defs[1].(*graph.AssignmentStmt)
				require.Len(t, tuple.Lvalues, 1)
				target := tuple.Lvalues[0].(*graph.TupleExpr)
				assert.Len(t, target.Items, 2)
			},
		},
		{
			name: "function definition",
			source: `def __init__(self, hash_key: Any = None, *, null: bool = ..., **attributes: Any) -> None:
    pass
`,
			wantDefs: 1,
			checkFunc: func(t *testing.T, module *graph.Module) {
				funcDef := module.Defs[0].(*graph.FuncDef)
				assert.Equal(t, "__init__", funcDef.Name)
				require.Len(t, funcDef.Arguments, 4)
				assert.Equal(t, graph.ArgPos, funcDef.Arguments[0].Kind)
				assert.Equal(t, graph.ArgOpt, funcDef.Arguments[1].Kind)
				assert.Equal(t, "Any", funcDef.Arguments[1].Annotation.(*graph.NameExpr).Name)
				assert.Equal(t, graph.ArgNamedOpt, funcDef.Arguments[2].Kind)
				assert.IsType(t, &graph.EllipsisExpr{}, funcDef.Arguments[2].Default)
				assert.Equal(t, graph.ArgStar2, funcDef.Arguments[3].Kind)
				assert.Equal(t, "attributes", funcDef.Arguments[3].Name)
				assert.Equal(t, "None", funcDef.ReturnType.(*graph.NameExpr).Name)
			},
		},
		{
			name:     "literals",
			source:   "x = -5\ny = 'a\\tb'\nz = b'raw'\nw = 1.5\nv = x.lower()\n",
			wantDefs: 5,
			checkFunc: func(t *testing.T, module *graph.Module) {
				assert.Equal(t, int64(-5), module.Defs[0].(*graph.AssignmentStmt).Rvalue.(*graph.IntExpr).Value)
				assert.Equal(t, "a\tb", module.Defs[1].(*graph.AssignmentStmt).Rvalue.(*graph.StrExpr).Value)
				assert.Equal(t, "raw", module.Defs[2].(*graph.AssignmentStmt).Rvalue.(*graph.BytesExpr).Value)
				assert.Equal(t, 1.5, module.Defs[3].(*graph.AssignmentStmt).Rvalue.(*graph.FloatExpr).Value)
				call := module.Defs[4].(*graph.AssignmentStmt).Rvalue.(*graph.CallExpr)
				member := call.Callee.(*graph.MemberExpr)
				assert.Equal(t, "lower", member.Name)
			},
		},
		{
			name:     "generic subscript",
			source:   "class Attribute(Generic[_T]):\n    ...\n",
			wantDefs: 1,
			checkFunc: func(t *testing.T, module *graph.Module) {
				classDef := module.Defs[0].(*graph.ClassDef)
				index := classDef.BaseExprs[0].(*graph.IndexExpr)
				assert.Equal(t, "Generic", index.Base.(*graph.NameExpr).Name)
				assert.Equal(t, "_T", index.Index[0].(*graph.NameExpr).Name)
			},
		},
		{
			name: "subscripted annotations",
			source: `def get(self, a: Optional[int], b: Dict[str, Any] = ...) -> Optional[List[int]]: ...
name: Optional[str] = None
stamp: datetime.datetime
`,
			wantDefs: 3,
			checkFunc: func(t *testing.T, module *graph.Module) {
				funcDef := module.Defs[0].(*graph.FuncDef)
				require.Len(t, funcDef.Arguments, 3)
				optional := funcDef.Arguments[1].Annotation.(*graph.IndexExpr)
				assert.Equal(t, "Optional", optional.Base.(*graph.NameExpr).Name)
				require.Len(t, optional.Index, 1)
				assert.Equal(t, "int", optional.Index[0].(*graph.NameExpr).Name)

				mapping := funcDef.Arguments[2].Annotation.(*graph.IndexExpr)
				assert.Equal(t, "Dict", mapping.Base.(*graph.NameExpr).Name)
				require.Len(t, mapping.Index, 2)
				assert.Equal(t, "str", mapping.Index[0].(*graph.NameExpr).Name)
				assert.Equal(t, "Any", mapping.Index[1].(*graph.NameExpr).Name)

				returned := funcDef.ReturnType.(*graph.IndexExpr)
				assert.Equal(t, "Optional", returned.Base.(*graph.NameExpr).Name)
				nested := returned.Index[0].(*graph.IndexExpr)
				assert.Equal(t, "List", nested.Base.(*graph.NameExpr).Name)
				assert.Equal(t, "int", nested.Index[0].(*graph.NameExpr).Name)

				annotated := module.Defs[1].(*graph.AssignmentStmt)
				variable := annotated.Annotation.(*graph.IndexExpr)
				assert.Equal(t, "Optional", variable.Base.(*graph.NameExpr).Name)
				assert.Equal(t, "str", variable.Index[0].(*graph.NameExpr).Name)

				declared := module.Defs[2].(*graph.AssignmentStmt)
				member := declared.Annotation.(*graph.MemberExpr)
				assert.Equal(t, "datetime", member.Name)
				assert.Equal(t, "datetime", member.Expr.(*graph.NameExpr).Name)
			},
		},
		{
			name:    "syntax error",
			source:  "class Broken(:\n    pass\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := python.NewInspector()
			module, err := inspector.InspectSource("main", "main.py", []byte(tt.source))
			if tt.wantErr {
				var syntaxErr *python.SyntaxError
				assert.ErrorAs(t, err, &syntaxErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "main", module.Name)
			require.Len(t, module.Defs, tt.wantDefs)
			if tt.checkFunc != nil {
				tt.checkFunc(t, module)
			}
		})
	}
}

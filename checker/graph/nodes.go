package graph

// Position is a location in source code (1-based line, 0-based column)
type Position struct {
	Line   int
	Column int
}

// Pos implements Node
func (p Position) Pos() Position {
	return p
}

// Node is any syntax tree node
type Node interface {
	Pos() Position
}

// Expression is an expression node
type Expression interface {
	Node
	expressionNode()
}

// Statement is a statement node
type Statement interface {
	Node
	statementNode()
}

// NameKind describes what a resolved name refers to
type NameKind int

const (
	NameUnresolved NameKind = iota
	NameLocal
	NameGlobal
	NameMember
)

// NameExpr is a reference to a name; True, False and None are names of builtins
type NameExpr struct {
	Position
	Name     string
	Fullname string
	Kind     NameKind
}

// MemberExpr is an attribute reference (expr.name)
type MemberExpr struct {
	Position
	Expr Expression
	Name string
}

// CallExpr is a call; ArgNames holds "" for positional actuals
type CallExpr struct {
	Position
	Callee   Expression
	Args     []Expression
	ArgKinds []ArgKind
	ArgNames []string
}

// IndexExpr is a subscript (base[index])
type IndexExpr struct {
	Position
	Base  Expression
	Index []Expression
}

// IntExpr is an integer literal
type IntExpr struct {
	Position
	Value int64
}

// FloatExpr is a float literal
type FloatExpr struct {
	Position
	Value float64
}

// StrExpr is a string literal
type StrExpr struct {
	Position
	Value string
}

// BytesExpr is a bytes literal
type BytesExpr struct {
	Position
	Value string
}

// EllipsisExpr is the ... literal
type EllipsisExpr struct {
	Position
}

// TupleExpr is a tuple display or a destructuring target
type TupleExpr struct {
	Position
	Items []Expression
}

// ListExpr is a list display
type ListExpr struct {
	Position
	Items []Expression
}

// OpaqueExpr is an expression the checker does not model; it has type Any
type OpaqueExpr struct {
	Position
	Text string
	// Children are sub-expressions that still get checked
	Children []Expression
}

func (*NameExpr) expressionNode()     {}
func (*MemberExpr) expressionNode()   {}
func (*CallExpr) expressionNode()     {}
func (*IndexExpr) expressionNode()    {}
func (*IntExpr) expressionNode()      {}
func (*FloatExpr) expressionNode()    {}
func (*StrExpr) expressionNode()      {}
func (*BytesExpr) expressionNode()    {}
func (*EllipsisExpr) expressionNode() {}
func (*TupleExpr) expressionNode()    {}
func (*ListExpr) expressionNode()     {}
func (*OpaqueExpr) expressionNode()   {}

// AssignmentStmt is an assignment; chained assignments (a = b = x) have several lvalues
type AssignmentStmt struct {
	Position
	Lvalues []Expression
	Rvalue  Expression
	// Annotation is the optional declared type (x: int = ...)
	Annotation Expression
}

// ExpressionStmt is an expression evaluated for its side effects
type ExpressionStmt struct {
	Position
	Expr Expression
}

// ClassDef is a class definition
type ClassDef struct {
	Position
	Name      string
	Fullname  string
	BaseExprs []Expression
	Defs      []Statement
	Info      *TypeInfo
}

// Argument is a formal parameter of a function definition
type Argument struct {
	Position
	Name       string
	Kind       ArgKind
	Annotation Expression
	Default    Expression
}

// FuncDef is a function or method definition
type FuncDef struct {
	Position
	Name       string
	Fullname   string
	Arguments  []*Argument
	ReturnType Expression
	Body       []Statement
	Decorators []Expression
	// Type is set by semantic analysis from the annotations
	Type *CallableType
}

// ImportFrom is `from module import name [as alias], ...`
type ImportFrom struct {
	Position
	Module string
	Names  []ImportedName
	// Wildcard is set for `from module import *`
	Wildcard bool
}

// ImportedName is an imported name with an optional alias
type ImportedName struct {
	Name  string
	Alias string
}

// Import is `import module [as alias], ...`
type Import struct {
	Position
	Names []ImportedName
}

// PassStmt is pass
type PassStmt struct {
	Position
}

// ReturnStmt is return [expr]
type ReturnStmt struct {
	Position
	Expr Expression
}

// OpaqueStmt is a statement the checker does not model
type OpaqueStmt struct {
	Position
	Text string
}

func (*AssignmentStmt) statementNode() {}
func (*ExpressionStmt) statementNode() {}
func (*ClassDef) statementNode()       {}
func (*FuncDef) statementNode()        {}
func (*ImportFrom) statementNode()     {}
func (*Import) statementNode()         {}
func (*PassStmt) statementNode()       {}
func (*ReturnStmt) statementNode()     {}
func (*OpaqueStmt) statementNode()     {}

// Module is a parsed source file
type Module struct {
	Name   string
	Path   string
	Source []byte
	Defs   []Statement
	Names  SymbolTable
	// Imports lists the modules this module depends on
	Imports []string
	// IsStub is set for library stubs
	IsStub bool
}

// NewModule creates an empty module
func NewModule(name, path string, source []byte) *Module {
	return &Module{
		Name:   name,
		Path:   path,
		Source: source,
		Names:  SymbolTable{},
	}
}

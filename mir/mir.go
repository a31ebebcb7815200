// Package mir implements C4: the mid-IR builder's output data model — a
// fully typed, globally-named tree with resolved globals, explicit casts,
// explicit address-of/deref, and GEP nodes for indexing/pointer
// arithmetic. See build.go for the construction pass (ConstructIRTree).
//
// Every node carries the target type (package ttype) of its own result,
// per spec §3. Nodes are a closed sum expressed as Go interfaces + structs,
// matched with type switches in ssa (C5) and emit (C6) — the same
// tagged-union discipline go/ssa uses for its own Value/Instruction sums.
package mir

import "github.com/programming-zone/silk/ttype"

// Expr is any mid-IR expression node.
type Expr interface {
	ResultType() ttype.Type
	exprNode()
}

// Identifier reads a memory-backed local or global by name. Global is set
// for top-level values and functions (emitted as `@"name"`); locals carry
// their full dotted mangled name (spec §4.3's name-mangling contract) and
// are emitted as `%"name"`. If Type is a Fn, C5 treats this as a direct
// function reference (Named, no load) rather than a memory read.
type Identifier struct {
	Name   string
	Global bool
	Type   ttype.Type
}

// ParamIdentifier refers to the raw incoming SSA parameter register
// (%name) before it is spilled to its prologue alloca. It appears exactly
// once per parameter, as the RHS of the prologue Decl that creates the
// local alloca copy; nothing else ever produces or consumes it.
type ParamIdentifier struct {
	Name string
	Type ttype.Type
}

// LiteralKind distinguishes the four literal shapes named in spec §3.
type LiteralKind int

const (
	IntLit LiteralKind = iota
	FloatLit
	BoolLit
	// GlobalStringLit references a previously emitted private string
	// global by name (the bitcast pointer), used for both top-level string
	// statics and inline string literals (spec §4.3's "String literals"
	// contract).
	GlobalStringLit
)

// Literal is a constant value of one of the four kinds above.
type Literal struct {
	Kind    LiteralKind
	IntVal  int64
	FltVal  float64
	BoolVal bool
	// Global is the mangled name of the backing string global, meaningful
	// only when Kind == GlobalStringLit.
	Global string
	Type   ttype.Type
}

// StructLiteral produces an inline anonymous struct value from its element
// expressions (spec §4.3's `StructLiteral`/`StructInit` contract).
type StructLiteral struct {
	Elems []Expr
	Type  ttype.Type // a ttype.Struct or ttype.StructLabeled (named init)
}

// ArrayElems builds an array value from explicit element expressions.
type ArrayElems struct {
	Elems []Expr
	Type  ttype.Type
}

// ArrayInit is a zero-initialized array of Type.
type ArrayInit struct {
	Type ttype.Type
}

// Assignment is `name = e`: a scalar store to a memory-backed local
// identified by its already-mangled name. Its result type is the stored
// value's type (so it composes as an expression when used as, e.g., the
// RHS-producing step of a chained assignment).
type Assignment struct {
	Name  string
	Value Expr
	Type  ttype.Type
}

// Write is `*ptr = e` — a store through an arbitrary pointer-typed
// expression, used for every LValue shape that isn't a bare local name
// (derefs, index stores, member stores).
type Write struct {
	Ptr   Expr
	Value Expr
	Type  ttype.Type
}

// FunctionCall calls Callee (a function-typed Identifier or function
// pointer value) with Args, whose declared parameter types are recorded in
// ArgTypes for the emitter's call-site type annotations.
type FunctionCall struct {
	Callee   Expr
	ArgTypes []ttype.Type
	Args     []Expr
	Type     ttype.Type
}

// BinOp and UnOp carry the same operator enumeration as the source AST
// (package ast) since the operator set doesn't change shape across C3/C4.
type BinOp struct {
	Op       int // an ast.BinOp value stored as int; build.go converts with int(...), ssa back with ast.BinOp(...)
	Lhs, Rhs Expr
	Type     ttype.Type
}

type UnOp struct {
	Op      int // an ast.UnOp value
	Operand Expr
	Type    ttype.Type
}

// AddressOf is `&e`. C5 elides it entirely for `&*e` and for bare
// identifiers (already pointer-valued in memory); for a StructAccess chain
// it recurses into a GEP chain rooted at the base's address (spec §4.4).
type AddressOf struct {
	Operand Expr
	Type    ttype.Type
}

// The seven explicit cast nodes (spec §3/§4.3). Each carries its operand
// and its own result type; buildCast in build.go is the dispatcher that
// picks among them.
type ItoF struct {
	Operand Expr
	Signed  bool // selects sitofp vs uitofp at emission
	Type    ttype.Type
}
type FtoI struct {
	Operand Expr
	Signed  bool // selects fptosi vs fptoui
	Type    ttype.Type
}
type BitCast struct {
	Operand Expr
	Type    ttype.Type
}
type PtoI struct {
	Operand Expr
	Type    ttype.Type
}
type ItoP struct {
	Operand Expr
	Type    ttype.Type
}
type Trunc struct {
	Operand Expr
	Type    ttype.Type
}
type Ext struct {
	Operand Expr
	Signed  bool // selects sext vs zext
	Type    ttype.Type
}

// StructAccess reads field Index (or, for a labeled struct, the field
// named Name resolved to its positional Index by the labeled struct's
// field order) out of Base, becoming an ExtractValue in C5.
type StructAccess struct {
	Base    Expr
	Index   int
	IsIndex bool // true for `s.N`, false for `s.name`
	Type    ttype.Type
}

// GetElemPtr is the GEP node for pointer arithmetic and indexing (spec
// §4.3): `ptr + n` / `ptr - n` lower to GEP(elem type, ptr, [n]); `a[i]`
// lowers to *GEP(&a, [0, i]).
type GetElemPtr struct {
	Base    Expr
	Indices []Expr
	Type    ttype.Type // type of the computed pointer
}

// StructAssign is the destructuring-assignment form `{f1,f2} = r` (spec
// §4.3): Base (r) is evaluated once to a struct value; each entry in
// Fields is then a per-local re-assignment whose Value references that
// struct value through a Temporary node (below) rather than re-evaluating
// Base.
type StructAssign struct {
	Base   Expr
	Fields []*Assignment
	Type   ttype.Type
}

// Temporary is the scratch-struct-value placeholder referenced from inside
// a StructAssign's field expressions (spec §4.4): it denotes "the current
// in-progress composite value", not an SSA temporary register (despite the
// name collision with ssa.Temporary — the mid-IR and SSA layers use the
// word for two related-but-distinct things, matching the spec's own
// terminology).
type Temporary struct {
	Type ttype.Type
}

func (e *Identifier) ResultType() ttype.Type      { return e.Type }
func (e *ParamIdentifier) ResultType() ttype.Type { return e.Type }
func (e *Literal) ResultType() ttype.Type         { return e.Type }
func (e *StructLiteral) ResultType() ttype.Type   { return e.Type }
func (e *ArrayElems) ResultType() ttype.Type      { return e.Type }
func (e *ArrayInit) ResultType() ttype.Type       { return e.Type }
func (e *Assignment) ResultType() ttype.Type      { return e.Type }
func (e *Write) ResultType() ttype.Type           { return e.Type }
func (e *FunctionCall) ResultType() ttype.Type    { return e.Type }
func (e *BinOp) ResultType() ttype.Type           { return e.Type }
func (e *UnOp) ResultType() ttype.Type            { return e.Type }
func (e *AddressOf) ResultType() ttype.Type       { return e.Type }
func (e *ItoF) ResultType() ttype.Type            { return e.Type }
func (e *FtoI) ResultType() ttype.Type            { return e.Type }
func (e *BitCast) ResultType() ttype.Type         { return e.Type }
func (e *PtoI) ResultType() ttype.Type            { return e.Type }
func (e *ItoP) ResultType() ttype.Type            { return e.Type }
func (e *Trunc) ResultType() ttype.Type           { return e.Type }
func (e *Ext) ResultType() ttype.Type             { return e.Type }
func (e *StructAccess) ResultType() ttype.Type    { return e.Type }
func (e *GetElemPtr) ResultType() ttype.Type      { return e.Type }
func (e *StructAssign) ResultType() ttype.Type    { return e.Type }
func (e *Temporary) ResultType() ttype.Type       { return e.Type }

func (*Identifier) exprNode()      {}
func (*ParamIdentifier) exprNode() {}
func (*Literal) exprNode()         {}
func (*StructLiteral) exprNode()   {}
func (*ArrayElems) exprNode()      {}
func (*ArrayInit) exprNode()       {}
func (*Assignment) exprNode()      {}
func (*Write) exprNode()           {}
func (*FunctionCall) exprNode()    {}
func (*BinOp) exprNode()           {}
func (*UnOp) exprNode()            {}
func (*AddressOf) exprNode()       {}
func (*ItoF) exprNode()            {}
func (*FtoI) exprNode()            {}
func (*BitCast) exprNode()         {}
func (*PtoI) exprNode()            {}
func (*ItoP) exprNode()            {}
func (*Trunc) exprNode()           {}
func (*Ext) exprNode()             {}
func (*StructAccess) exprNode()    {}
func (*GetElemPtr) exprNode()      {}
func (*StructAssign) exprNode()    {}
func (*Temporary) exprNode()       {}

// Stmt is any mid-IR statement node.
type Stmt interface{ stmtNode() }

type EmptyStmt struct{}

// Decl declares local Name (a mangled %"..." identifier) of type T,
// initialized from Value.
type Decl struct {
	Type  ttype.Type
	Name  string
	Value Expr
}

// ExprStmt evaluates Value for effect.
type ExprStmt struct{ Value Expr }

// Block is a labeled nested statement sequence.
type Block struct {
	Label string
	Stmts []Stmt
}

// IfElse carries both branch labels (needed up front so C5 can thread
// `br` targets) plus each branch's statement list.
type IfElse struct {
	IfLabel, ElseLabel string
	Cond               Expr
	Then, Else         []Stmt
}

type While struct {
	Label string
	Cond  Expr
	Body  []Stmt
}

type For struct {
	Label string
	Decl  *Decl
	Cond  Expr
	Inc   Expr
	Body  []Stmt
}

type Continue struct{}
type Break struct{}

// Return is `return;` (Value == nil) or `return e;`.
type Return struct{ Value Expr }

func (*EmptyStmt) stmtNode() {}
func (*Decl) stmtNode()      {}
func (*ExprStmt) stmtNode()  {}
func (*Block) stmtNode()     {}
func (*IfElse) stmtNode()    {}
func (*While) stmtNode()     {}
func (*For) stmtNode()       {}
func (*Continue) stmtNode()  {}
func (*Break) stmtNode()     {}
func (*Return) stmtNode()    {}

// Root is any top-level mid-IR declaration.
type Root interface{ rootNode() }

// StaticDecl declares a global of type T initialized from a (necessarily
// constant) Literal.
type StaticDecl struct {
	Type    ttype.Type
	Public  bool
	Name    string
	Literal *Literal
}

// FuncDecl is a defined function: its Body has already been padded with a
// trailing `Return nil` if Ret is void (spec §4.3).
type FuncDecl struct {
	Ret    ttype.Type
	Public bool
	Name   string
	Params []Param
	Body   []Stmt
}

type Param struct {
	Name string
	Type ttype.Type
}

// FuncFwdDecl is a forward declaration or extern.
type FuncFwdDecl struct {
	Ret    ttype.Type
	Name   string
	Params []Param
	Extern bool
}

// TypeDef names T as Name at the target level (emits `%"name" = type ...`).
type TypeDef struct {
	Type ttype.Type
	Name string
}

// StringGlobal is a synthetic private global backing a string literal
// (spec §4.3's "String literals" contract): `@"name" = private global
// [N x i8] c"...\00"`.
type StringGlobal struct {
	Name  string
	Value string
}

func (*StaticDecl) rootNode()   {}
func (*FuncDecl) rootNode()     {}
func (*FuncFwdDecl) rootNode()  {}
func (*TypeDef) rootNode()      {}
func (*StringGlobal) rootNode() {}

// Package ast defines the shape of the typed parse tree this backend
// consumes (spec §6). Producing this tree — lexing, parsing, and resolving
// templates — is an external collaborator's job (spec §1); this package
// only names the node set the backend's passes (symtab, check, mir) walk.
//
// Like go/ast, every node category is a closed sum expressed as a Go
// interface with a handful of concrete struct implementations; callers
// pattern-match with a type switch.
package ast

import (
	"fmt"

	"github.com/programming-zone/silk/types"
)

// Pos is a minimal source position, threaded through purely for diagnostics
// (diag.Pos is an alias of this type). The zero value means "unknown" and
// is always legal.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// BinOp enumerates the binary operators named in spec §6.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Lt
	Gt
	And // &&
	Or  // ||
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
)

// UnOp enumerates the unary operators named in spec §6.
type UnOp int

const (
	Neg    UnOp = iota // -
	Not                // !
	BitNot             // ~
	Deref              // *
	Addr               // &
)

// Mut distinguishes `val` (immutable) from `var` (reassignable) bindings.
type Mut int

const (
	Val Mut = iota
	Var
)

// Expr is any expression node.
type Expr interface {
	exprNode()
	Position() Pos
}

// Identifier references a name resolved by symtab against the scope stack.
type Identifier struct {
	Pos  Pos
	Name string
}

// IntLit is an integer literal of a fixed source width (8/16/32/64) — spec
// §6 lists the literal widths the front end may produce.
type IntLit struct {
	Pos   Pos
	Value int64
	Width int
	// Unsigned marks a literal written with an unsigned suffix/type context.
	Unsigned bool
}

// FloatLit is a floating-point literal of width 32 or 64.
type FloatLit struct {
	Pos   Pos
	Value float64
	Width int
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Pos   Pos
	Value bool
}

// StringLit is a string literal.
type StringLit struct {
	Pos   Pos
	Value string
}

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	Pos      Pos
	Op       BinOp
	Lhs, Rhs Expr
}

// UnaryExpr is `op operand`.
type UnaryExpr struct {
	Pos     Pos
	Op      UnOp
	Operand Expr
}

// CallExpr is `callee(args...)`. Per spec §4.3, if callee resolves to a
// type name this is rewritten downstream to a StructInit or a cast.
type CallExpr struct {
	Pos    Pos
	Callee Expr
	Args   []Expr
}

// CastExpr is `cast(T, e)`.
type CastExpr struct {
	Pos  Pos
	Type types.Type
	Expr Expr
}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Pos   Pos
	Base  Expr
	Index Expr
}

// MemberExpr is `base.field` (labeled struct) or `base.N` (positional).
type MemberExpr struct {
	Pos Pos
	// Exactly one of Name/Index is meaningful, selected by IsIndex.
	Base    Expr
	Name    string
	Index   int
	IsIndex bool
}

// StructLit is an anonymous `{e1, e2, ...}` struct literal.
type StructLit struct {
	Pos   Pos
	Elems []Expr
}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Pos   Pos
	Elems []Expr
}

// TemplateInstance is a `Name<T...>` expression-position template
// instantiation. Per spec Open Question 3, this must be fully resolved
// upstream; reaching the backend is an Unsupported error.
type TemplateInstance struct {
	Pos  Pos
	Name string
	Args []types.Type
}

func (*Identifier) exprNode()       {}
func (*IntLit) exprNode()           {}
func (*FloatLit) exprNode()         {}
func (*BoolLit) exprNode()          {}
func (*StringLit) exprNode()        {}
func (*BinaryExpr) exprNode()       {}
func (*UnaryExpr) exprNode()        {}
func (*CallExpr) exprNode()         {}
func (*CastExpr) exprNode()         {}
func (*IndexExpr) exprNode()        {}
func (*MemberExpr) exprNode()       {}
func (*StructLit) exprNode()        {}
func (*ArrayLit) exprNode()         {}
func (*TemplateInstance) exprNode() {}

func (e *Identifier) Position() Pos       { return e.Pos }
func (e *IntLit) Position() Pos           { return e.Pos }
func (e *FloatLit) Position() Pos         { return e.Pos }
func (e *BoolLit) Position() Pos          { return e.Pos }
func (e *StringLit) Position() Pos        { return e.Pos }
func (e *BinaryExpr) Position() Pos       { return e.Pos }
func (e *UnaryExpr) Position() Pos        { return e.Pos }
func (e *CallExpr) Position() Pos         { return e.Pos }
func (e *CastExpr) Position() Pos         { return e.Pos }
func (e *IndexExpr) Position() Pos        { return e.Pos }
func (e *MemberExpr) Position() Pos       { return e.Pos }
func (e *StructLit) Position() Pos        { return e.Pos }
func (e *ArrayLit) Position() Pos         { return e.Pos }
func (e *TemplateInstance) Position() Pos { return e.Pos }

// AssignExpr is `lhs = rhs`. It is parsed as an Expr node (per many
// C-family grammars) and is accepted in any expression position, e.g. as a
// for-loop's increment; its value is the assigned value.
type AssignExpr struct {
	Pos      Pos
	Lhs, Rhs Expr
}

func (*AssignExpr) exprNode()        {}
func (e *AssignExpr) Position() Pos { return e.Pos }

// VD is one of the four declaration-statement forms from spec §6:
// `val x = e`, `val x: T = e`, `var x = e`, `var x: T = e`.
type VD struct {
	Pos  Pos
	Mut  Mut
	Name string
	// Type is nil for the inferred forms (ValI/VarI); non-nil for the
	// explicitly typed forms.
	Type Type
	Init Expr
}

// Type is the type a parse-tree node carries. It is an alias of
// types.Type, not a distinct type, and nothing in this backend resolves
// it further: this backend's external contract (spec §6) assumes the
// upstream pass has already bound type names to types.Type values.
type Type = types.Type

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	Position() Pos
}

// EmptyStmt is the no-op statement.
type EmptyStmt struct{ Pos Pos }

// DeclStmt declares a local.
type DeclStmt struct {
	Pos Pos
	VD  VD
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	Pos  Pos
	Expr Expr
}

// BlockStmt is `{ ...stmts... }`. Each BlockStmt/IfElseStmt/WhileStmt/ForStmt
// introduces a fresh scope keyed by its ordinal position among its
// parent's block-shaped children (spec §4.1) — Ordinal is filled in by
// symtab's construct_symtab walk; check and mir recompute the same
// numbering with their own counters rather than reading it back.
type BlockStmt struct {
	Pos      Pos
	Ordinal  int
	Stmts    []Stmt
}

// IfElseStmt is `if (cond) { ... } else { ... }`. Else may be nil.
type IfElseStmt struct {
	Pos      Pos
	Ordinal  int
	Cond     Expr
	Then     []Stmt
	Else     []Stmt
	HasElse  bool
}

// WhileStmt is `while (cond) { ... }`.
type WhileStmt struct {
	Pos     Pos
	Ordinal int
	Cond    Expr
	Body    []Stmt
}

// ForStmt is `for (decl; cond; inc) { ... }`. The induction variable lives
// in its own nested scope visible to Cond, Inc, and Body (spec §4.1).
type ForStmt struct {
	Pos     Pos
	Ordinal int
	Decl    *DeclStmt
	Cond    Expr
	Inc     Expr
	Body    []Stmt
}

// ContinueStmt / BreakStmt target the innermost enclosing loop.
type ContinueStmt struct{ Pos Pos }
type BreakStmt struct{ Pos Pos }

// ReturnStmt is `return;` or `return e;`.
type ReturnStmt struct {
	Pos   Pos
	Expr  Expr
	HasExpr bool
}

func (*EmptyStmt) stmtNode()    {}
func (*DeclStmt) stmtNode()     {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}
func (*IfElseStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode() {}
func (*BreakStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()   {}

func (s *EmptyStmt) Position() Pos    { return s.Pos }
func (s *DeclStmt) Position() Pos     { return s.Pos }
func (s *ExprStmt) Position() Pos     { return s.Pos }
func (s *BlockStmt) Position() Pos    { return s.Pos }
func (s *IfElseStmt) Position() Pos   { return s.Pos }
func (s *WhileStmt) Position() Pos    { return s.Pos }
func (s *ForStmt) Position() Pos      { return s.Pos }
func (s *ContinueStmt) Position() Pos { return s.Pos }
func (s *BreakStmt) Position() Pos    { return s.Pos }
func (s *ReturnStmt) Position() Pos   { return s.Pos }

// Param is one function parameter.
type Param struct {
	Name string
	Type types.Type
}

// Root is any top-level declaration.
type Root interface {
	rootNode()
	Position() Pos
}

// TypeDef binds Name to T, closing any prior StubType forward reference.
type TypeDef struct {
	Pos  Pos
	Name string
	Type types.Type
}

// TypeFwdDef forward-declares Name as an opaque stub, to be closed later by
// a TypeDef with the same name.
type TypeFwdDef struct {
	Pos  Pos
	Name string
}

// ValDecl is a top-level `val`/`var` declaration, optionally public.
type ValDecl struct {
	Pos    Pos
	Public bool
	VD     VD
}

// FuncDecl is a function definition.
type FuncDecl struct {
	Pos    Pos
	Public bool
	Name   string
	Params []Param
	Ret    types.Type
	Body   []Stmt
}

// FuncFwdDecl forward-declares or externs a function.
type FuncFwdDecl struct {
	Pos    Pos
	Name   string
	Params []Param
	Ret    types.Type
	Extern bool
}

func (*TypeDef) rootNode()      {}
func (*TypeFwdDef) rootNode()   {}
func (*ValDecl) rootNode()      {}
func (*FuncDecl) rootNode()     {}
func (*FuncFwdDecl) rootNode()  {}

func (r *TypeDef) Position() Pos     { return r.Pos }
func (r *TypeFwdDef) Position() Pos  { return r.Pos }
func (r *ValDecl) Position() Pos     { return r.Pos }
func (r *FuncDecl) Position() Pos    { return r.Pos }
func (r *FuncFwdDecl) Position() Pos { return r.Pos }

// Program is the whole translation unit: an ordered sequence of top-level
// declarations. Order is significant and preserved end to end (spec §5:
// "Iteration over bindings uses insertion-ordered traversal of the
// parse-tree sequence, not iteration of the symbol map").
type Program struct {
	Roots []Root
}

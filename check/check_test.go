package check

import (
	"testing"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

func i32() types.Type { return types.IntType{Width: 32} }

func mustTree(t *testing.T, prog *ast.Program) *symtab.Tree {
	t.Helper()
	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	return tree
}

func TestCheckRejectsVarReassignToVal(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "x", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 1}}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{Lhs: &ast.Identifier{Name: "x"}, Rhs: &ast.IntLit{Width: 32, Value: 2}}},
			&ast.ReturnStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	err := Check(prog, tree, Checker{})
	if !diag.Is(err, diag.Typing) {
		t.Fatalf("expected typing error reassigning val, got %v", err)
	}
}

func TestCheckAllowsVarReassign(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "x", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 1}}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{Lhs: &ast.Identifier{Name: "x"}, Rhs: &ast.IntLit{Width: 32, Value: 2}}},
			&ast.ReturnStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	if err := Check(prog, tree, Checker{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckBreakOutsideLoop(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.BreakStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	err := Check(prog, tree, Checker{})
	if !diag.Is(err, diag.Control) {
		t.Fatalf("expected control error, got %v", err)
	}
}

func TestCheckBreakInsideLoopOK(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.WhileStmt{Cond: &ast.BoolLit{Value: true}, Body: []ast.Stmt{&ast.BreakStmt{}}},
			&ast.ReturnStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	if err := Check(prog, tree, Checker{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckNonBoolCondition(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.IfElseStmt{Cond: &ast.IntLit{Width: 32, Value: 1}, Then: []ast.Stmt{}},
			&ast.ReturnStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	err := Check(prog, tree, Checker{})
	if !diag.Is(err, diag.Typing) {
		t.Fatalf("expected typing error for non-bool condition, got %v", err)
	}
}

func TestCheckStrictReturnsOffByDefault(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: i32(), Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.BoolLit{Value: true}},
		}},
	}}
	tree := mustTree(t, prog)
	if err := Check(prog, tree, Checker{}); err != nil {
		t.Fatalf("expected return-type mismatch to be accepted with StrictReturns=false, got %v", err)
	}
}

func TestCheckStrictReturnsOn(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: i32(), Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.BoolLit{Value: true}},
		}},
	}}
	tree := mustTree(t, prog)
	err := Check(prog, tree, Checker{StrictReturns: true})
	if !diag.Is(err, diag.Typing) {
		t.Fatalf("expected typing error with StrictReturns=true, got %v", err)
	}
}

func TestViableCast(t *testing.T) {
	tests := []struct {
		name     string
		from, to types.Type
		want     bool
	}{
		{"int to int", types.IntType{32}, types.IntType{64}, true},
		{"int to float", types.IntType{32}, types.FloatType{32}, true},
		{"float to int", types.FloatType{64}, types.IntType{32}, true},
		{"int to pointer", types.IntType{64}, types.PointerType{types.IntType{8}}, true},
		{"pointer to pointer", types.PointerType{types.IntType{32}}, types.PointerType{types.BoolType{}}, true},
		{"bool to int unviable", types.BoolType{}, types.IntType{32}, false},
		{"struct to struct unviable", types.StructType{}, types.StructType{Fields: []types.Type{types.IntType{32}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := viableCast(tt.from, tt.to); got != tt.want {
				t.Errorf("viableCast(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCallArityMismatch(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncFwdDecl{Name: "g", Ret: types.VoidType{}, Params: []ast.Param{{Name: "a", Type: i32()}}, Extern: true},
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.CallExpr{Callee: &ast.Identifier{Name: "g"}}},
			&ast.ReturnStmt{},
		}},
	}}
	tree := mustTree(t, prog)
	err := Check(prog, tree, Checker{})
	if !diag.Is(err, diag.Typing) {
		t.Fatalf("expected typing error for arity mismatch, got %v", err)
	}
}

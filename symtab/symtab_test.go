package symtab

import (
	"testing"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/types"
)

func i32() types.Type { return types.IntType{Width: 32} }

func TestConstructSymtabSimpleFunc(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{
			Name: "f",
			Ret:  types.VoidType{},
			Params: []ast.Param{{Name: "x", Type: i32()}},
			Body: []ast.Stmt{
				&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "y", Type: i32()}},
				&ast.ReturnStmt{},
			},
		},
	}}

	tree, err := ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	b, _ := tree.Top.Lookup("f")
	if b == nil || b.Kind != ValueBinding {
		t.Fatal("expected f to be a value binding in top scope")
	}
	fn, ok := b.Type.(types.FuncType)
	if !ok || len(fn.Params) != 1 {
		t.Fatalf("expected f's type to be a 1-arg FuncType, got %v", b.Type)
	}
	if b.Inner == nil {
		t.Fatal("expected f's binding to carry its function scope")
	}
	if _, ok := b.Inner.Lookup("x"); ok == nil {
		t.Fatal("expected parameter x to resolve in function scope")
	}
	if _, ok := b.Inner.Lookup("y"); ok == nil {
		t.Fatal("expected local y to resolve in function scope")
	}
}

func TestDuplicateSymbolRejected(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{VD: ast.VD{Mut: ast.Val, Name: "x", Type: i32()}},
		&ast.ValDecl{VD: ast.VD{Mut: ast.Val, Name: "x", Type: i32()}},
	}}
	_, err := ConstructSymtab(prog)
	if !diag.Is(err, diag.Duplication) {
		t.Fatalf("expected duplication error, got %v", err)
	}
}

func TestForwardDeclThenDefinitionOK(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncFwdDecl{Name: "g", Ret: types.VoidType{}},
		&ast.FuncDecl{Name: "g", Ret: types.VoidType{}, Body: []ast.Stmt{&ast.ReturnStmt{}}},
	}}
	tree, err := ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	b, _ := tree.Top.Lookup("g")
	if b == nil || b.Inner == nil {
		t.Fatal("expected the definition to supersede the forward decl and carry a body scope")
	}
}

func TestMismatchedForwardDeclRejected(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncFwdDecl{Name: "g", Ret: types.VoidType{}},
		&ast.FuncDecl{Name: "g", Ret: i32(), Body: []ast.Stmt{&ast.ReturnStmt{HasExpr: true, Expr: &ast.IntLit{Width: 32}}}},
	}}
	_, err := ConstructSymtab(prog)
	if !diag.Is(err, diag.Duplication) {
		t.Fatalf("expected duplication error for mismatched forward decl, got %v", err)
	}
}

func TestStubClosedByTypeDef(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.TypeFwdDef{Name: "List"},
		&ast.TypeDef{Name: "List", Type: types.StructLabeledType{Fields: []types.Field{
			{Name: "head", Type: i32()},
		}}},
	}}
	tree, err := ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	b, _ := tree.Types.Lookup("List")
	if _, isStub := b.Type.(types.StubType); isStub {
		t.Fatal("expected the stub to be replaced by the closing TypeDef")
	}
}

func TestOrdinalNumberingAndForScope(t *testing.T) {
	// for (var i: i32 = 0; ...; ...) { var j: i32 = 0; }
	forStmt := &ast.ForStmt{
		Decl: &ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "i", Type: i32()}},
		Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "j", Type: i32()}},
		},
	}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.EmptyStmt{},
			forStmt,
			&ast.ReturnStmt{},
		}},
	}}
	tree, err := ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	if forStmt.Ordinal != 0 {
		t.Fatalf("expected for-loop to be ordinal 0 (EmptyStmt isn't block-shaped), got %d", forStmt.Ordinal)
	}
	b, _ := tree.Top.Lookup("f")
	forScope := b.Inner.Child("0")
	if forScope == nil {
		t.Fatal("expected function scope to have a child scope keyed \"0\" for the for-loop")
	}
	if _, ok := forScope.Lookup("i"); ok == nil {
		t.Fatal("expected induction variable i to resolve in the for-loop's own scope")
	}
	bodyScope := forScope.Child("body")
	if bodyScope == nil {
		t.Fatal("expected for-loop scope to have a nested body scope")
	}
	if _, ok := bodyScope.Lookup("j"); ok == nil {
		t.Fatal("expected j to resolve in the for-loop's body scope")
	}
	if _, ok := bodyScope.Lookup("i"); ok == nil {
		t.Fatal("expected i to be visible from the body scope via the parent chain")
	}
}

package mir

import (
	"testing"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/check"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/ttype"
	"github.com/programming-zone/silk/types"
)

func i32() types.Type { return types.IntType{Width: 32} }

// build runs the full C2/C3/C4 pipeline, mirroring how cmd/silkc chains the
// passes, and fails the test on any stage error.
func build(t *testing.T, prog *ast.Program) []Root {
	t.Helper()
	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	if err := check.Check(prog, tree, check.Checker{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	roots, err := ConstructIRTree(prog, tree)
	if err != nil {
		t.Fatalf("ConstructIRTree: %v", err)
	}
	return roots
}

func findFunc(t *testing.T, roots []Root, name string) *FuncDecl {
	t.Helper()
	for _, r := range roots {
		if fd, ok := r.(*FuncDecl); ok && fd.Name == name {
			return fd
		}
	}
	t.Fatalf("no FuncDecl %q among built roots", name)
	return nil
}

func TestInferredLocalMangledAndTyped(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "x", Init: &ast.IntLit{Width: 32, Value: 5}}},
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	if len(fd.Body) != 2 {
		t.Fatalf("expected decl + return, got %d stmts", len(fd.Body))
	}
	decl, ok := fd.Body[0].(*Decl)
	if !ok {
		t.Fatalf("expected *Decl, got %T", fd.Body[0])
	}
	if decl.Name != "f.x" {
		t.Errorf("expected mangled name f.x, got %q", decl.Name)
	}
	if !ttype.Equal(decl.Type, ttype.Int{Width: 32}) {
		t.Errorf("expected inferred type i32 backfilled from symtab, got %v", decl.Type)
	}
	if _, ok := fd.Body[1].(*Return); !ok {
		t.Errorf("expected trailing Return, got %T", fd.Body[1])
	}
}

func TestVoidFunctionPadsImplicitReturn(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "x", Init: &ast.IntLit{Width: 32, Value: 1}}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	if len(fd.Body) != 2 {
		t.Fatalf("expected decl + padded return, got %d stmts", len(fd.Body))
	}
	ret, ok := fd.Body[1].(*Return)
	if !ok || ret.Value != nil {
		t.Errorf("expected a bare padded Return, got %#v", fd.Body[1])
	}
}

func TestParamSpilledToPrologueAlloca(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Params: []ast.Param{{Name: "a", Type: i32()}}, Body: []ast.Stmt{
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	decl, ok := fd.Body[0].(*Decl)
	if !ok {
		t.Fatalf("expected prologue *Decl, got %T", fd.Body[0])
	}
	if decl.Name != "f.a" {
		t.Errorf("expected prologue alloca f.a, got %q", decl.Name)
	}
	pid, ok := decl.Value.(*ParamIdentifier)
	if !ok || pid.Name != "a" {
		t.Errorf("expected ParamIdentifier(a) initializer, got %#v", decl.Value)
	}
}

func TestNestedBlockLabelAndMangling(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "y", Init: &ast.IntLit{Width: 32, Value: 2}}},
			}},
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	blk, ok := fd.Body[0].(*Block)
	if !ok {
		t.Fatalf("expected *Block, got %T", fd.Body[0])
	}
	if blk.Label != "f.0" {
		t.Errorf("expected block label f.0, got %q", blk.Label)
	}
	decl, ok := blk.Stmts[0].(*Decl)
	if !ok || decl.Name != "f.0.y" {
		t.Errorf("expected nested decl f.0.y, got %#v", blk.Stmts[0])
	}
}

func TestIfElseBranchLabelsAndScopes(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.IfElseStmt{
				Cond:    &ast.BoolLit{Value: true},
				Then:    []ast.Stmt{&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "a", Init: &ast.IntLit{Width: 32, Value: 1}}}},
				Else:    []ast.Stmt{&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "b", Init: &ast.IntLit{Width: 32, Value: 2}}}},
				HasElse: true,
			},
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ie, ok := fd.Body[0].(*IfElse)
	if !ok {
		t.Fatalf("expected *IfElse, got %T", fd.Body[0])
	}
	if ie.IfLabel != "f.0" || ie.ElseLabel != "f.1" {
		t.Errorf("expected labels f.0/f.1, got %q/%q", ie.IfLabel, ie.ElseLabel)
	}
	thenDecl := ie.Then[0].(*Decl)
	elseDecl := ie.Else[0].(*Decl)
	if thenDecl.Name != "f.0.a" || elseDecl.Name != "f.1.b" {
		t.Errorf("expected f.0.a / f.1.b, got %q / %q", thenDecl.Name, elseDecl.Name)
	}
}

func TestForInductionAndBodyShareScopePath(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.ForStmt{
				Decl: &ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "i", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 0}}},
				Cond: &ast.BinaryExpr{Op: ast.Lt, Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.IntLit{Width: 32, Value: 10}},
				Inc: &ast.AssignExpr{
					Lhs: &ast.Identifier{Name: "i"},
					Rhs: &ast.BinaryExpr{Op: ast.Add, Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.IntLit{Width: 32, Value: 1}},
				},
				Body: []ast.Stmt{
					&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "j", Init: &ast.Identifier{Name: "i"}}},
				},
			},
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	forNode, ok := fd.Body[0].(*For)
	if !ok {
		t.Fatalf("expected *For, got %T", fd.Body[0])
	}
	if forNode.Label != "f.0" {
		t.Errorf("expected for label f.0, got %q", forNode.Label)
	}
	if forNode.Decl == nil || forNode.Decl.Name != "f.0.i" {
		t.Errorf("expected induction variable mangled f.0.i, got %#v", forNode.Decl)
	}
	bodyDecl, ok := forNode.Body[0].(*Decl)
	if !ok || bodyDecl.Name != "f.0.j" {
		t.Errorf("expected body local mangled f.0.j (sharing the for-scope's path), got %#v", forNode.Body[0])
	}
}

func TestPointerArithmeticLowersToGEP(t *testing.T) {
	ptrI32 := types.PointerType{Elem: i32()}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: ptrI32, Params: []ast.Param{{Name: "p", Type: ptrI32}}, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.BinaryExpr{
				Op: ast.Add, Lhs: &ast.Identifier{Name: "p"}, Rhs: &ast.IntLit{Width: 32, Value: 1},
			}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[len(fd.Body)-1].(*Return)
	gep, ok := ret.Value.(*GetElemPtr)
	if !ok {
		t.Fatalf("expected pointer + int to lower to *GetElemPtr, got %T", ret.Value)
	}
	if len(gep.Indices) != 1 {
		t.Errorf("expected a single-index GEP for pointer arithmetic, got %d indices", len(gep.Indices))
	}
	if !ttype.IsPointer(gep.Type) {
		t.Errorf("expected GEP result type to remain a pointer, got %v", gep.Type)
	}
}

func TestArrayIndexLowersToGEPAndDeref(t *testing.T) {
	arrT := types.ArrayType{Len: 4, Elem: i32()}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: i32(), Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "a", Type: arrT, Init: &ast.ArrayLit{Elems: []ast.Expr{
				&ast.IntLit{Width: 32, Value: 1}, &ast.IntLit{Width: 32, Value: 2},
				&ast.IntLit{Width: 32, Value: 3}, &ast.IntLit{Width: 32, Value: 4},
			}}}},
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.IndexExpr{
				Base: &ast.Identifier{Name: "a"}, Index: &ast.IntLit{Width: 32, Value: 0},
			}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[len(fd.Body)-1].(*Return)
	deref, ok := ret.Value.(*UnOp)
	if !ok || deref.Op != int(ast.Deref) {
		t.Fatalf("expected a[0] to read via UnOp(Deref, GEP(...)), got %#v", ret.Value)
	}
	gep, ok := deref.Operand.(*GetElemPtr)
	if !ok {
		t.Fatalf("expected Deref operand to be a GetElemPtr, got %T", deref.Operand)
	}
	if len(gep.Indices) != 2 {
		t.Fatalf("expected a[i] to GEP with [0, i] (2 indices) per the array-base rule, got %d", len(gep.Indices))
	}
	if _, ok := gep.Base.(*AddressOf); !ok {
		t.Errorf("expected the GEP base to be &a (AddressOf), got %T", gep.Base)
	}
}

func TestCallableTypeNameRewritesToStructInit(t *testing.T) {
	pointT := types.StructType{Fields: []types.Type{i32(), i32()}}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.TypeDef{Name: "Point", Type: pointT},
		&ast.FuncDecl{Name: "f", Ret: pointT, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.CallExpr{
				Callee: &ast.Identifier{Name: "Point"},
				Args:   []ast.Expr{&ast.IntLit{Width: 32, Value: 1}, &ast.IntLit{Width: 32, Value: 2}},
			}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[len(fd.Body)-1].(*Return)
	sl, ok := ret.Value.(*StructLiteral)
	if !ok {
		t.Fatalf("expected Point(1, 2) to rewrite to *StructLiteral, got %T", ret.Value)
	}
	if len(sl.Elems) != 2 {
		t.Errorf("expected 2 elements, got %d", len(sl.Elems))
	}
}

func TestCallableTypeNameRewritesToCast(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.TypeDef{Name: "Byte", Type: types.IntType{Width: 8}},
		&ast.FuncDecl{Name: "f", Ret: types.IntType{Width: 8}, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.CallExpr{
				Callee: &ast.Identifier{Name: "Byte"},
				Args:   []ast.Expr{&ast.IntLit{Width: 32, Value: 65}},
			}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[len(fd.Body)-1].(*Return)
	if _, ok := ret.Value.(*Trunc); !ok {
		t.Fatalf("expected Byte(65) to rewrite to a narrowing cast (Trunc), got %T", ret.Value)
	}
}

func TestCastToI1ExpandsToNotEqualZero(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.IntType{Width: 1}, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.CastExpr{
				Type: types.IntType{Width: 1},
				Expr: &ast.IntLit{Width: 32, Value: 7},
			}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[len(fd.Body)-1].(*Return)
	not, ok := ret.Value.(*UnOp)
	if !ok || not.Op != int(ast.Not) {
		t.Fatalf("expected cast-to-i1 to expand to UnOp(Not, BinOp(Eq, e, 0)), got %#v", ret.Value)
	}
	bin, ok := not.Operand.(*BinOp)
	if !ok || bin.Op != int(ast.Eq) {
		t.Fatalf("expected the negated operand to be a BinOp(Eq, e, 0), got %#v", not.Operand)
	}
	lit, ok := bin.Rhs.(*Literal)
	if !ok || lit.IntVal != 0 {
		t.Errorf("expected the comparison's RHS to be the zero literal, got %#v", bin.Rhs)
	}
}

func TestStructDestructureAssignment(t *testing.T) {
	pairT := types.StructType{Fields: []types.Type{i32(), i32()}}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "a", Type: i32(), Init: &ast.IntLit{Width: 32}}},
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "b", Type: i32(), Init: &ast.IntLit{Width: 32}}},
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "p", Type: pairT, Init: &ast.StructLit{
				Elems: []ast.Expr{&ast.IntLit{Width: 32, Value: 1}, &ast.IntLit{Width: 32, Value: 2}},
			}}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{
				Lhs: &ast.StructLit{Elems: []ast.Expr{&ast.Identifier{Name: "a"}, &ast.Identifier{Name: "b"}}},
				Rhs: &ast.Identifier{Name: "p"},
			}},
			&ast.ReturnStmt{},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	exprStmt, ok := fd.Body[3].(*ExprStmt)
	if !ok {
		t.Fatalf("expected *ExprStmt, got %T", fd.Body[3])
	}
	sa, ok := exprStmt.Value.(*StructAssign)
	if !ok {
		t.Fatalf("expected {a, b} = p to rewrite to *StructAssign, got %T", exprStmt.Value)
	}
	if len(sa.Fields) != 2 {
		t.Fatalf("expected 2 per-field re-assignments, got %d", len(sa.Fields))
	}
	if sa.Fields[0].Name != "f.a" || sa.Fields[1].Name != "f.b" {
		t.Errorf("expected re-assignments to f.a/f.b, got %q/%q", sa.Fields[0].Name, sa.Fields[1].Name)
	}
	access, ok := sa.Fields[0].Value.(*StructAccess)
	if !ok {
		t.Fatalf("expected each field's value to be a StructAccess, got %T", sa.Fields[0].Value)
	}
	if _, ok := access.Base.(*Temporary); !ok {
		t.Errorf("expected the StructAccess base to be the synthetic Temporary standing for p, got %T", access.Base)
	}
}

func TestStaticStringLiteralInternsGlobal(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{VD: ast.VD{Mut: ast.Val, Name: "greeting", Init: &ast.StringLit{Value: "hi"}}},
	}}
	roots := build(t, prog)
	var sg *StringGlobal
	var sd *StaticDecl
	for _, r := range roots {
		switch v := r.(type) {
		case *StringGlobal:
			sg = v
		case *StaticDecl:
			sd = v
		}
	}
	if sg == nil {
		t.Fatal("expected a synthesized StringGlobal for the string literal")
	}
	if sd == nil {
		t.Fatal("expected a StaticDecl for the top-level val")
	}
	if sd.Literal.Global != sg.Name {
		t.Errorf("expected the static's literal to reference the interned global %q, got %q", sg.Name, sd.Literal.Global)
	}
	if sg.Value != "hi" {
		t.Errorf("expected interned global value %q, got %q", "hi", sg.Value)
	}
}

func TestNonConstantStaticInitializerRejected(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{VD: ast.VD{Mut: ast.Val, Name: "x", Type: i32(), Init: &ast.BinaryExpr{
			Op: ast.Add, Lhs: &ast.IntLit{Width: 32, Value: 1}, Rhs: &ast.IntLit{Width: 32, Value: 2},
		}}},
	}}
	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	if err := check.Check(prog, tree, check.Checker{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	_, err = ConstructIRTree(prog, tree)
	if !diag.Is(err, diag.Unsupported) {
		t.Fatalf("expected Unsupported error for a non-literal static initializer, got %v", err)
	}
}

func TestGlobalIdentifierNotMangled(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{VD: ast.VD{Mut: ast.Val, Name: "count", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 1}}},
		&ast.FuncDecl{Name: "f", Ret: i32(), Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.Identifier{Name: "count"}},
		}},
	}}
	fd := findFunc(t, build(t, prog), "f")
	ret := fd.Body[0].(*Return)
	id, ok := ret.Value.(*Identifier)
	if !ok {
		t.Fatalf("expected *Identifier, got %T", ret.Value)
	}
	if !id.Global || id.Name != "count" {
		t.Errorf("expected unmangled global reference {Global:true, Name:count}, got %#v", id)
	}
}

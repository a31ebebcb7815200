package emit

import (
	"regexp"
	"strings"
	"testing"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/check"
	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ssa"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

func i32() types.Type { return types.IntType{Width: 32} }

// render runs the full C2/C3/C4/C5/C6 pipeline and fails the test on any
// stage error, mirroring ssa_test.go's build helper one layer up.
func render(t *testing.T, prog *ast.Program) string {
	t.Helper()
	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		t.Fatalf("ConstructSymtab: %v", err)
	}
	if err := check.Check(prog, tree, check.Checker{}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	mirRoots, err := mir.ConstructIRTree(prog, tree)
	if err != nil {
		t.Fatalf("ConstructIRTree: %v", err)
	}
	ssaRoots, err := ssa.Build(mirRoots)
	if err != nil {
		t.Fatalf("ssa.Build: %v", err)
	}
	out, err := Module(ssaRoots)
	if err != nil {
		t.Fatalf("Module: %v", err)
	}
	return out
}

func requireLines(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("expected output to contain %q, got:\n%s", w, out)
		}
	}
}

// S1: var x: i32 = 3; x = x + 4;
func TestS1ScalarDeclAndReassign(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "x", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 3}}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{
				Lhs: &ast.Identifier{Name: "x"},
				Rhs: &ast.BinaryExpr{Op: ast.Add, Lhs: &ast.Identifier{Name: "x"}, Rhs: &ast.IntLit{Width: 32, Value: 4}},
			}},
			&ast.ReturnStmt{},
		}},
	}}
	out := render(t, prog)
	requireLines(t, out,
		`%"f.x" = alloca i32`,
		`store i32 3, i32* %"f.x"`,
		`%__tmp.0 = load i32, i32* %"f.x"`,
		`%__tmp.1 = add i32 %__tmp.0, 4`,
		`store i32 %__tmp.1, i32* %"f.x"`,
	)
}

// S2: var p: *i32 = ...; p + 2 -- pointer arithmetic lowers to getelementptr.
func TestS2PointerArithmeticGEP(t *testing.T) {
	ptrI32 := types.PointerType{Elem: i32()}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: ptrI32, Params: []ast.Param{{Name: "p", Type: ptrI32}}, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.BinaryExpr{Op: ast.Add, Lhs: &ast.Identifier{Name: "p"}, Rhs: &ast.IntLit{Width: 32, Value: 2}}},
		}},
	}}
	out := render(t, prog)
	// p is alloca'd as %"f.p" and read back through a load before the GEP,
	// so the GEP base is the loaded temporary, not %"p" directly.
	gep := regexp.MustCompile(`getelementptr i32, i32\* %__tmp\.\d+, i32 2`)
	if !gep.MatchString(out) {
		t.Errorf("expected a getelementptr off the loaded temporary, got:\n%s", out)
	}
}

// S3: if (x < 0) { return -x; } else { return x; }
func TestS3IfElseLabelsAndCompare(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: i32(), Params: []ast.Param{{Name: "x", Type: i32()}}, Body: []ast.Stmt{
			&ast.IfElseStmt{
				Cond:    &ast.BinaryExpr{Op: ast.Lt, Lhs: &ast.Identifier{Name: "x"}, Rhs: &ast.IntLit{Width: 32, Value: 0}},
				HasElse: true,
				Then:    []ast.Stmt{&ast.ReturnStmt{HasExpr: true, Expr: &ast.UnaryExpr{Op: ast.Neg, Operand: &ast.Identifier{Name: "x"}}}},
				Else:    []ast.Stmt{&ast.ReturnStmt{HasExpr: true, Expr: &ast.Identifier{Name: "x"}}},
			},
		}},
	}}
	out := render(t, prog)
	requireLines(t, out, "f.0:", "f.1:", "f.0_end:", "icmp slt i32", "ret i32")
	// Count only the two branch returns; padTrailingTerminator appends a
	// third, zero-valued `ret i32 0` to the dangling f.0_end block, since
	// both branches return and nothing falls through to it.
	if strings.Count(out, "ret i32 %") != 2 {
		t.Errorf("expected exactly two `ret i32 %%...` lines (one per branch), got:\n%s", out)
	}
}

// S4: for (var i: i32 = 0; i < 10; i = i + 1) { ... }
func TestS4ForLoopLabelsAndHead(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.ForStmt{
				Decl: &ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "i", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 0}}},
				Cond: &ast.BinaryExpr{Op: ast.Lt, Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.IntLit{Width: 32, Value: 10}},
				Inc:  &ast.AssignExpr{Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.BinaryExpr{Op: ast.Add, Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.IntLit{Width: 32, Value: 1}}},
				Body: []ast.Stmt{&ast.BreakStmt{}},
			},
			&ast.ReturnStmt{},
		}},
	}}
	out := render(t, prog)
	requireLines(t, out, "f.0:", "f.0_body:", "f.0_inc:", "f.0_end:", "icmp slt i32", "br label %\"f.0_end\"")
	if strings.Contains(out, "f.0_cond") {
		t.Errorf("for-loop's head label should be the bare f.0, not f.0_cond, got:\n%s", out)
	}
}

// S5: val s = "hi"; -- a private backing array global plus a bitcast global.
func TestS5StringGlobal(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{Public: true, VD: ast.VD{Mut: ast.Val, Name: "s", Init: &ast.StringLit{Value: "hi"}}},
	}}
	out := render(t, prog)
	requireLines(t, out,
		`@"s.str.0" = private global [3 x i8] c"hi\00"`,
		`bitcast ([3 x i8]* @"s.str.0" to i8*)`,
	)
	if !strings.Contains(out, `@"s"`) {
		t.Errorf("expected a public global named @\"s\", got:\n%s", out)
	}
}

// S6: type P = (i32, i32); {a, b} = p;
func TestS6StructDestructure(t *testing.T) {
	pairT := types.StructType{Fields: []types.Type{i32(), i32()}}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "a", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 0}}},
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Var, Name: "b", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 0}}},
			&ast.DeclStmt{VD: ast.VD{Mut: ast.Val, Name: "p", Type: pairT, Init: &ast.StructLit{Elems: []ast.Expr{&ast.IntLit{Width: 32, Value: 1}, &ast.IntLit{Width: 32, Value: 2}}}}},
			&ast.ExprStmt{Expr: &ast.AssignExpr{
				Lhs: &ast.StructLit{Elems: []ast.Expr{&ast.Identifier{Name: "a"}, &ast.Identifier{Name: "b"}}},
				Rhs: &ast.Identifier{Name: "p"},
			}},
			&ast.ReturnStmt{},
		}},
	}}
	out := render(t, prog)
	requireLines(t, out, "extractvalue")
	// The exact __tmp numbering depends on how many temporaries the struct
	// literal building `p` itself consumed first, so match the store targets
	// by pattern rather than hardcoding a temp index.
	aStore := regexp.MustCompile(`store i32 %__tmp\.\d+, i32\* %"f\.a"`)
	bStore := regexp.MustCompile(`store i32 %__tmp\.\d+, i32\* %"f\.b"`)
	if !aStore.MatchString(out) {
		t.Errorf("expected a store of an extracted temp into f.a, got:\n%s", out)
	}
	if !bStore.MatchString(out) {
		t.Errorf("expected a store of an extracted temp into f.b, got:\n%s", out)
	}
	if strings.Count(out, "extractvalue") != 2 {
		t.Errorf("expected two extractvalue instructions, got:\n%s", out)
	}
}

func TestModuleSeparatesRootsWithBlankLine(t *testing.T) {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{Public: true, VD: ast.VD{Mut: ast.Val, Name: "g", Type: i32(), Init: &ast.IntLit{Width: 32, Value: 1}}},
		&ast.FuncDecl{Public: true, Name: "f", Ret: types.VoidType{}, Body: []ast.Stmt{&ast.ReturnStmt{}}},
	}}
	out := render(t, prog)
	requireLines(t, out, `@"g" = global i32 1`, `define void @"f"() {`)
	if !strings.Contains(out, "\n\n") {
		t.Errorf("expected a blank line between the global and the function, got:\n%s", out)
	}
}

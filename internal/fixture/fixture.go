// Package fixture holds the six literal end-to-end scenarios from spec §8
// (S1-S6) as Go-constructed ast.* trees — there is no front end in scope to
// parse them from source text (spec §1), so the fixtures are built
// directly as parse-tree values, the same way go/ssa/builder_test.go's
// buildPackage harness feeds the builder pre-built ast.Files rather than
// parsing strings on every test run.
//
// Each Fixture runs the full C2-C6 pipeline (symtab, check, mir, ssa,
// emit) and asserts the emitted text contains every string in Want. Run
// executes every fixture concurrently via golang.org/x/sync/errgroup,
// mirroring go/ssa/builder_test.go's own TestIssue67079 use of errgroup to
// parallelize and race-check independent package builds — an explicit,
// legitimate carve-out of spec §5's single-threaded-batch invariant, which
// binds the compiler pipeline itself, not its test harness.
package fixture

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/check"
	"github.com/programming-zone/silk/emit"
	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ssa"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

// Fixture is one end-to-end scenario: a parse tree plus the set of text
// substrings its emitted IR must contain.
type Fixture struct {
	Name string
	Prog *ast.Program
	Want []string
}

// Result is what running a Fixture through the full pipeline produced.
type Result struct {
	Name string
	Out  string
}

func i32() types.Type { return types.IntType{Width: 32} }

// All returns the six spec §8 scenarios, in the order spec §8 lists them.
func All() []Fixture {
	return []Fixture{s1ScalarDeclAndReassign(), s2PointerArithmeticGEP(), s3IfElse(), s4ForLoop(), s5StringGlobal(), s6StructDestructure()}
}

// Run compiles every fixture concurrently and returns one Result per
// fixture, in fixture order, or the first error encountered.
func Run(ctx context.Context, fixtures []Fixture) ([]Result, error) {
	results := make([]Result, len(fixtures))
	g, _ := errgroup.WithContext(ctx)
	for i, f := range fixtures {
		i, f := i, f
		g.Go(func() error {
			out, err := Compile(f.Prog)
			if err != nil {
				return fmt.Errorf("fixture %s: %w", f.Name, err)
			}
			results[i] = Result{Name: f.Name, Out: out}
			for _, want := range f.Want {
				if !strings.Contains(out, want) {
					return fmt.Errorf("fixture %s: expected output to contain %q, got:\n%s", f.Name, want, out)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Compile runs C2-C6 over a single parse tree. Exported so a caller can
// drive one program without going through the Fixture/Run concurrency
// harness (cmd/silkc has its own Compile over a JSON-encoded tree).
func Compile(prog *ast.Program) (string, error) {
	tree, err := symtab.ConstructSymtab(prog)
	if err != nil {
		return "", err
	}
	if err := check.Check(prog, tree, check.Checker{}); err != nil {
		return "", err
	}
	mirRoots, err := mir.ConstructIRTree(prog, tree)
	if err != nil {
		return "", err
	}
	ssaRoots, err := ssa.Build(mirRoots)
	if err != nil {
		return "", err
	}
	return emit.Module(ssaRoots)
}

// S1: var x: i32 = 3; x = x + 4;
func s1ScalarDeclAndReassign() Fixture {
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
	return Fixture{
		Name: "S1 scalar decl and reassign",
		Prog: prog,
		Want: []string{
			`%"f.x" = alloca i32`,
			`store i32 3, i32* %"f.x"`,
			`add i32`,
		},
	}
}

// S2: var p: *i32; p + 2 -- pointer arithmetic lowers to getelementptr.
func s2PointerArithmeticGEP() Fixture {
	ptrI32 := types.PointerType{Elem: i32()}
	prog := &ast.Program{Roots: []ast.Root{
		&ast.FuncDecl{Name: "f", Ret: ptrI32, Params: []ast.Param{{Name: "p", Type: ptrI32}}, Body: []ast.Stmt{
			&ast.ReturnStmt{HasExpr: true, Expr: &ast.BinaryExpr{Op: ast.Add, Lhs: &ast.Identifier{Name: "p"}, Rhs: &ast.IntLit{Width: 32, Value: 2}}},
		}},
	}}
	return Fixture{
		Name: "S2 pointer arithmetic GEP",
		Prog: prog,
		// p is alloca'd as %"f.p" and read back through a load before the
		// GEP, so the GEP base is the loaded temporary, not %"p" directly;
		// Want is matched by strings.Contains, so check the fixed parts of
		// the instruction around the variable temp index separately.
		Want: []string{`getelementptr i32, i32* %__tmp.`, `, i32 2`},
	}
}

// S3: if (x < 0) { return -x; } else { return x; }
func s3IfElse() Fixture {
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
	return Fixture{
		Name: "S3 if/else labels and compare",
		Prog: prog,
		Want: []string{"f.0:", "f.1:", "f.0_end:", "icmp slt i32", "ret i32"},
	}
}

// S4: for (var i: i32 = 0; i < 10; i = i + 1) { break; }
func s4ForLoop() Fixture {
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
	return Fixture{
		Name: "S4 for loop labels and head",
		Prog: prog,
		Want: []string{"f.0:", "f.0_body:", "f.0_inc:", "f.0_end:", "icmp slt i32"},
	}
}

// S5: val s = "hi";
func s5StringGlobal() Fixture {
	prog := &ast.Program{Roots: []ast.Root{
		&ast.ValDecl{Public: true, VD: ast.VD{Mut: ast.Val, Name: "s", Init: &ast.StringLit{Value: "hi"}}},
	}}
	return Fixture{
		Name: "S5 string global",
		Prog: prog,
		Want: []string{
			`private global [3 x i8] c"hi\00"`,
			`bitcast ([3 x i8]*`,
			`@"s"`,
		},
	}
}

// S6: type P = (i32, i32); {a, b} = p;
func s6StructDestructure() Fixture {
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
	return Fixture{
		Name: "S6 struct destructure",
		Prog: prog,
		Want: []string{"extractvalue", `i32* %"f.a"`, `i32* %"f.b"`},
	}
}

// Package check implements C3: the type checker.
//
// Check walks the parse tree with the scope tree symtab already attached,
// assigns a source type to every expression via evalExprType, and rejects
// ill-typed programs. It never mutates the parse tree (it does backfill
// inferred declaration types into symtab's bindings, see checkDecl); mir
// performs the typed-tree rewrite afterward, re-deriving types via the
// same rules.
//
// Grounded on go/types' Checker (a conf-configured struct that walks
// ast.Node given an Info sidecar) and HugoDaniel/miniray's validator.go
// (a single-pass structural validator over a closed AST).
package check

import (
	"strconv"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

// Checker holds the (small) set of configurable behaviors for C3.
type Checker struct {
	// StrictReturns enables checking that every `return e` matches its
	// enclosing function's declared return type. Spec §4.2 states this is
	// NOT enforced "in the current design" (Open Question 1); default false
	// preserves that literal behavior. See DESIGN.md.
	StrictReturns bool
}

// loopCtx threads break/continue legality and (optionally) the enclosing
// function's return type through the statement walk, mirroring go/ssa's
// targets stack (func.go) but for the type-checking pass rather than
// codegen.
type loopCtx struct {
	inLoop     bool
	retType    types.Type
	fnHasValue bool // false for a void-returning function
}

// Check runs C3 over the whole program.
func Check(prog *ast.Program, tree *symtab.Tree, c Checker) error {
	for _, r := range prog.Roots {
		if vd, ok := r.(*ast.ValDecl); ok {
			if err := c.checkTopLevelDecl(vd.VD, tree.Top); err != nil {
				return err
			}
		}
	}
	for _, r := range prog.Roots {
		fd, ok := r.(*ast.FuncDecl)
		if !ok {
			continue
		}
		b, _ := tree.Top.Lookup(fd.Name)
		if b == nil || b.Inner == nil {
			continue // forward decl / extern: no body to check
		}
		ctx := &loopCtx{retType: fd.Ret, fnHasValue: !isVoid(fd.Ret)}
		if err := c.checkBlock(fd.Body, b.Inner, ctx); err != nil {
			return err
		}
	}
	return nil
}

// checkTopLevelDecl type-checks (and, for inferred declarations, backfills)
// a top-level val/var binding. Any well-typed initializer is accepted
// here; rejecting a non-literal static initializer is left to mir (Open
// Question 2).
func (c Checker) checkTopLevelDecl(vd ast.VD, top *symtab.Scope) error {
	return c.checkDecl(vd, top)
}

func isVoid(t types.Type) bool {
	_, ok := t.(types.VoidType)
	return ok
}

// checkBlock type-checks a statement list against scope, descending into
// the matching child scope for every block-shaped statement exactly the
// way symtab numbered them (spec §4.1).
func (c Checker) checkBlock(stmts []ast.Stmt, scope *symtab.Scope, ctx *loopCtx) error {
	ordinal := 0
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.EmptyStmt:
			// nothing to check

		case *ast.DeclStmt:
			if err := c.checkDecl(st.VD, scope); err != nil {
				return err
			}

		case *ast.ExprStmt:
			if _, err := c.evalExprType(scope, st.Expr); err != nil {
				return err
			}

		case *ast.BlockStmt:
			child := scope.Child(strconv.Itoa(ordinal))
			ordinal++
			if err := c.checkBlock(st.Stmts, child, ctx); err != nil {
				return err
			}

		case *ast.IfElseStmt:
			condT, err := c.evalExprType(scope, st.Cond)
			if err != nil {
				return err
			}
			if !isBool(condT) {
				return diag.New(diag.Typing, st.Pos, "if condition must be bool, got %s", condT)
			}
			thenScope := scope.Child(strconv.Itoa(ordinal))
			ordinal++
			if err := c.checkBlock(st.Then, thenScope, ctx); err != nil {
				return err
			}
			if st.HasElse {
				elseScope := scope.Child(strconv.Itoa(ordinal))
				ordinal++
				if err := c.checkBlock(st.Else, elseScope, ctx); err != nil {
					return err
				}
			}

		case *ast.WhileStmt:
			condT, err := c.evalExprType(scope, st.Cond)
			if err != nil {
				return err
			}
			if !isBool(condT) {
				return diag.New(diag.Typing, st.Pos, "while condition must be bool, got %s", condT)
			}
			bodyScope := scope.Child(strconv.Itoa(ordinal))
			ordinal++
			inner := &loopCtx{inLoop: true, retType: ctx.retType, fnHasValue: ctx.fnHasValue}
			if err := c.checkBlock(st.Body, bodyScope, inner); err != nil {
				return err
			}

		case *ast.ForStmt:
			forScope := scope.Child(strconv.Itoa(ordinal))
			ordinal++
			if st.Decl != nil {
				if err := c.checkDecl(st.Decl.VD, forScope); err != nil {
					return err
				}
			}
			if st.Cond != nil {
				condT, err := c.evalExprType(forScope, st.Cond)
				if err != nil {
					return err
				}
				if !isBool(condT) {
					return diag.New(diag.Typing, st.Pos, "for condition must be bool, got %s", condT)
				}
			}
			if st.Inc != nil {
				if _, err := c.evalExprType(forScope, st.Inc); err != nil {
					return err
				}
			}
			bodyScope := forScope.Child("body")
			inner := &loopCtx{inLoop: true, retType: ctx.retType, fnHasValue: ctx.fnHasValue}
			if err := c.checkBlock(st.Body, bodyScope, inner); err != nil {
				return err
			}

		case *ast.ContinueStmt:
			if !ctx.inLoop {
				return diag.New(diag.Control, st.Pos, "continue outside a loop")
			}

		case *ast.BreakStmt:
			if !ctx.inLoop {
				return diag.New(diag.Control, st.Pos, "break outside a loop")
			}

		case *ast.ReturnStmt:
			if st.HasExpr {
				retT, err := c.evalExprType(scope, st.Expr)
				if err != nil {
					return err
				}
				if c.StrictReturns && !types.Equal(retT, ctx.retType) {
					return diag.New(diag.Typing, st.Pos, "return type %s does not match function return type %s", retT, ctx.retType)
				}
			}
			// Note: `return e;` in a void function (or with any other
			// mismatched type) is accepted unless StrictReturns is set — spec
			// Open Question 1. A bare `return;` is accepted in every
			// function, with or without StrictReturns.
		}
	}
	return nil
}

// checkDecl type-checks a val/var declaration. For the inferred forms
// (VD.Type == nil) it backfills the scope binding symtab already created
// with the initializer's type (spec §6: "Inferred declarations take the
// right-hand side's type") so later lookups — including mir's rebuild of
// the same tree — see a concrete type rather than symtab's nil placeholder.
func (c Checker) checkDecl(vd ast.VD, scope *symtab.Scope) error {
	initT, err := c.evalExprType(scope, vd.Init)
	if err != nil {
		return err
	}
	if vd.Type == nil {
		if b, _ := scope.Lookup(vd.Name); b != nil {
			b.Type = initT
		}
		return nil
	}
	if !types.Equal(vd.Type, initT) {
		return diag.New(diag.Typing, vd.Pos, "declaration of %q: expected %s, got %s", vd.Name, vd.Type, initT)
	}
	return nil
}

func isBool(t types.Type) bool {
	_, ok := t.(types.BoolType)
	return ok
}


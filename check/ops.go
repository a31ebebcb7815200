package check

import (
	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

// evalBinOp types a binary expression per the operator table in spec §4.2:
// arithmetic requires both operands structurally equal and numeric (with
// the sole exception of pointer +/- integer, handled specially — spec
// §4.3's pointer-arithmetic lowering contract), comparisons yield bool,
// shifts/bit-ops require the same integer type, && / || require bool.
func (c Checker) evalBinOp(scope *symtab.Scope, e *ast.BinaryExpr) (types.Type, error) {
	lt, err := c.evalExprType(scope, e.Lhs)
	if err != nil {
		return nil, err
	}
	rt, err := c.evalExprType(scope, e.Rhs)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.Add, ast.Sub:
		// Pointer arithmetic: `ptr + n` and `ptr - n` take an integer
		// offset on the right; `n + ptr` is also accepted, `n - ptr` is not
		// (spec §4.3).
		if types.IsPointer(lt) && types.IsInteger(rt) {
			return lt, nil
		}
		if e.Op == ast.Add && types.IsInteger(lt) && types.IsPointer(rt) {
			return rt, nil
		}
		if !types.IsNumeric(lt) || !types.Equal(lt, rt) {
			return nil, diag.New(diag.Typing, e.Pos, "operands of arithmetic must be equal numeric types, got %s and %s", lt, rt)
		}
		return lt, nil

	case ast.Mul, ast.Div, ast.Rem:
		if !types.IsNumeric(lt) || !types.Equal(lt, rt) {
			return nil, diag.New(diag.Typing, e.Pos, "operands of arithmetic must be equal numeric types, got %s and %s", lt, rt)
		}
		return lt, nil

	case ast.Eq, ast.Lt, ast.Gt:
		if !types.Equal(lt, rt) {
			return nil, diag.New(diag.Typing, e.Pos, "comparison operands must have equal types, got %s and %s", lt, rt)
		}
		return types.BoolType{}, nil

	case ast.And, ast.Or:
		if !isBool(lt) || !isBool(rt) {
			return nil, diag.New(diag.Typing, e.Pos, "logical operator requires bool operands, got %s and %s", lt, rt)
		}
		return types.BoolType{}, nil

	case ast.BitAnd, ast.BitOr, ast.BitXor, ast.Shl, ast.Shr:
		if !types.IsInteger(lt) || !types.Equal(lt, rt) {
			return nil, diag.New(diag.Typing, e.Pos, "bitwise/shift operator requires equal integer operands, got %s and %s", lt, rt)
		}
		return lt, nil
	}
	return nil, diag.New(diag.Structural, e.Pos, "unrecognized binary operator")
}

// evalUnOp types a unary expression.
func (c Checker) evalUnOp(scope *symtab.Scope, e *ast.UnaryExpr) (types.Type, error) {
	t, err := c.evalExprType(scope, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.Neg:
		if !types.IsNumeric(t) {
			return nil, diag.New(diag.Typing, e.Pos, "unary - requires a numeric operand, got %s", t)
		}
		return t, nil
	case ast.Not:
		if !isBool(t) {
			return nil, diag.New(diag.Typing, e.Pos, "unary ! requires a bool operand, got %s", t)
		}
		return types.BoolType{}, nil
	case ast.BitNot:
		if !types.IsInteger(t) {
			return nil, diag.New(diag.Typing, e.Pos, "unary ~ requires an integer operand, got %s", t)
		}
		return t, nil
	case ast.Deref:
		if !types.IsPointer(t) {
			return nil, diag.New(diag.Typing, e.Pos, "cannot dereference non-pointer type %s", t)
		}
		return types.PointeeType(t), nil
	case ast.Addr:
		if !isAddressable(e.Operand) {
			return nil, diag.New(diag.Structural, e.Pos, "cannot take address of a non-addressable expression")
		}
		return types.PointerType{Elem: t}, nil
	}
	return nil, diag.New(diag.Structural, e.Pos, "unrecognized unary operator")
}

// isAddressable mirrors the lvalue-shape check mir performs for & (spec
// §4.4's AddressOf contract): identifiers and member/index chains rooted
// at one are addressable; a bare computed value (call result, literal,
// binary expression) is not.
func isAddressable(e ast.Expr) bool {
	switch ex := e.(type) {
	case *ast.Identifier:
		return true
	case *ast.UnaryExpr:
		return ex.Op == ast.Deref
	case *ast.MemberExpr:
		return isAddressable(ex.Base)
	case *ast.IndexExpr:
		return isAddressable(ex.Base)
	}
	return false
}

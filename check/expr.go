package check

import (
	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

// evalExprType is eval_expr_type from spec §4.2: assigns a source type to
// e, or fails with a diag.Error.
func (c Checker) evalExprType(scope *symtab.Scope, e ast.Expr) (types.Type, error) {
	switch ex := e.(type) {
	case *ast.Identifier:
		b, _ := scope.Lookup(ex.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, ex.Pos, "undefined identifier %q", ex.Name)
		}
		if b.Kind != symtab.ValueBinding {
			return nil, diag.New(diag.Resolution, ex.Pos, "expected value, got type %q", ex.Name)
		}
		return b.Type, nil

	case *ast.IntLit:
		if ex.Unsigned {
			return types.UIntType{Width: ex.Width}, nil
		}
		return types.IntType{Width: ex.Width}, nil

	case *ast.FloatLit:
		return types.FloatType{Width: ex.Width}, nil

	case *ast.BoolLit:
		return types.BoolType{}, nil

	case *ast.StringLit:
		return types.PointerType{Elem: types.IntType{Width: 8}}, nil

	case *ast.BinaryExpr:
		return c.evalBinOp(scope, ex)

	case *ast.UnaryExpr:
		return c.evalUnOp(scope, ex)

	case *ast.CastExpr:
		srcT, err := c.evalExprType(scope, ex.Expr)
		if err != nil {
			return nil, err
		}
		if !viableCast(srcT, ex.Type) {
			return nil, diag.New(diag.Typing, ex.Pos, "no viable cast from %s to %s", srcT, ex.Type)
		}
		return ex.Type, nil

	case *ast.CallExpr:
		return c.evalCall(scope, ex)

	case *ast.IndexExpr:
		baseT, err := c.evalExprType(scope, ex.Base)
		if err != nil {
			return nil, err
		}
		idxT, err := c.evalExprType(scope, ex.Index)
		if err != nil {
			return nil, err
		}
		if !types.IsInteger(idxT) {
			return nil, diag.New(diag.Typing, ex.Pos, "array index must be an integer, got %s", idxT)
		}
		switch bt := types.Resolve(baseT).(type) {
		case types.ArrayType:
			return bt.Elem, nil
		case types.PointerType:
			return bt.Elem, nil
		case types.MutPointerType:
			return bt.Elem, nil
		default:
			return nil, diag.New(diag.Structural, ex.Pos, "index of non-array type %s", baseT)
		}

	case *ast.MemberExpr:
		return c.evalMember(scope, ex)

	case *ast.StructLit:
		fields := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			t, err := c.evalExprType(scope, el)
			if err != nil {
				return nil, err
			}
			fields[i] = t
		}
		return types.StructType{Fields: fields}, nil

	case *ast.ArrayLit:
		if len(ex.Elems) == 0 {
			return nil, diag.New(diag.Typing, ex.Pos, "empty array literal has no inferable element type")
		}
		elemT, err := c.evalExprType(scope, ex.Elems[0])
		if err != nil {
			return nil, err
		}
		for _, el := range ex.Elems[1:] {
			t, err := c.evalExprType(scope, el)
			if err != nil {
				return nil, err
			}
			if !types.Equal(t, elemT) {
				return nil, diag.New(diag.Typing, ex.Pos, "array literal element type mismatch: %s vs %s", elemT, t)
			}
		}
		return types.ArrayType{Len: int64(len(ex.Elems)), Elem: elemT}, nil

	case *ast.AssignExpr:
		return c.evalAssign(scope, ex)

	case *ast.TemplateInstance:
		// Open Question 3: template instantiation must be resolved upstream.
		return nil, diag.New(diag.Unsupported, ex.Pos, "template instantiation reached backend (must be monomorphised first)")
	}
	return nil, diag.New(diag.Structural, e.Position(), "unrecognized expression node %T", e)
}

func (c Checker) evalAssign(scope *symtab.Scope, ex *ast.AssignExpr) (types.Type, error) {
	rhsT, err := c.evalExprType(scope, ex.Rhs)
	if err != nil {
		return nil, err
	}
	switch lhs := ex.Lhs.(type) {
	case *ast.Identifier:
		b, _ := scope.Lookup(lhs.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, lhs.Pos, "undefined identifier %q", lhs.Name)
		}
		if b.Kind != symtab.ValueBinding {
			return nil, diag.New(diag.Resolution, lhs.Pos, "expected value, got type %q", lhs.Name)
		}
		if b.Mut != ast.Var {
			return nil, diag.New(diag.Typing, lhs.Pos, "cannot assign to immutable binding %q", lhs.Name)
		}
		if !types.Equal(b.Type, rhsT) {
			return nil, diag.New(diag.Typing, ex.Pos, "assignment to %q: expected %s, got %s", lhs.Name, b.Type, rhsT)
		}
		return b.Type, nil
	default:
		lhsT, err := c.evalExprType(scope, ex.Lhs)
		if err != nil {
			return nil, err
		}
		if !types.Equal(lhsT, rhsT) {
			return nil, diag.New(diag.Typing, ex.Pos, "assignment: expected %s, got %s", lhsT, rhsT)
		}
		return lhsT, nil
	}
}

func (c Checker) evalMember(scope *symtab.Scope, ex *ast.MemberExpr) (types.Type, error) {
	baseT, err := c.evalExprType(scope, ex.Base)
	if err != nil {
		return nil, err
	}
	resolved := types.Resolve(baseT)
	if ex.IsIndex {
		st, ok := resolved.(types.StructType)
		if !ok {
			if lst, ok2 := resolved.(types.StructLabeledType); ok2 {
				if ex.Index < 0 || ex.Index >= len(lst.Fields) {
					return nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
				}
				return lst.Fields[ex.Index].Type, nil
			}
			return nil, diag.New(diag.Structural, ex.Pos, "positional member access on non-struct type %s", baseT)
		}
		if ex.Index < 0 || ex.Index >= len(st.Fields) {
			return nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
		}
		return st.Fields[ex.Index], nil
	}
	lst, ok := resolved.(types.StructLabeledType)
	if !ok {
		return nil, diag.New(diag.Structural, ex.Pos, "member access %q on non-labeled-struct type %s", ex.Name, baseT)
	}
	for _, f := range lst.Fields {
		if f.Name == ex.Name {
			return f.Type, nil
		}
	}
	return nil, diag.New(diag.Resolution, ex.Pos, "no field %q on %s", ex.Name, baseT)
}

func (c Checker) evalCall(scope *symtab.Scope, ex *ast.CallExpr) (types.Type, error) {
	// "Callable but a-type-name": a call whose callee is a type name
	// constructs/casts (spec §4.3); type-checking treats it the same as
	// mir will rewrite it.
	if id, ok := ex.Callee.(*ast.Identifier); ok {
		if b, _ := scope.Lookup(id.Name); b != nil && b.Kind == symtab.TypeBinding {
			if len(ex.Args) != 1 {
				switch types.Resolve(b.Type).(type) {
				case types.StructType, types.StructLabeledType:
					// struct init: arity checked against field count below
				default:
					return nil, diag.New(diag.Typing, ex.Pos, "type cast %q requires exactly one argument", id.Name)
				}
			}
			switch rt := types.Resolve(b.Type).(type) {
			case types.StructType:
				if len(ex.Args) != len(rt.Fields) {
					return nil, diag.New(diag.Typing, ex.Pos, "struct init %q expects %d arguments, got %d", id.Name, len(rt.Fields), len(ex.Args))
				}
				for i, a := range ex.Args {
					at, err := c.evalExprType(scope, a)
					if err != nil {
						return nil, err
					}
					if !types.Equal(at, rt.Fields[i]) {
						return nil, diag.New(diag.Typing, ex.Pos, "struct init %q field %d: expected %s, got %s", id.Name, i, rt.Fields[i], at)
					}
				}
				return b.Type, nil
			case types.StructLabeledType:
				if len(ex.Args) != len(rt.Fields) {
					return nil, diag.New(diag.Typing, ex.Pos, "struct init %q expects %d arguments, got %d", id.Name, len(rt.Fields), len(ex.Args))
				}
				for i, a := range ex.Args {
					at, err := c.evalExprType(scope, a)
					if err != nil {
						return nil, err
					}
					if !types.Equal(at, rt.Fields[i].Type) {
						return nil, diag.New(diag.Typing, ex.Pos, "struct init %q field %q: expected %s, got %s", id.Name, rt.Fields[i].Name, rt.Fields[i].Type, at)
					}
				}
				return b.Type, nil
			default:
				argT, err := c.evalExprType(scope, ex.Args[0])
				if err != nil {
					return nil, err
				}
				if !viableCast(argT, b.Type) {
					return nil, diag.New(diag.Typing, ex.Pos, "no viable cast from %s to %s", argT, b.Type)
				}
				return b.Type, nil
			}
		}
	}

	calleeT, err := c.evalExprType(scope, ex.Callee)
	if err != nil {
		return nil, err
	}
	ft, ok := types.Resolve(calleeT).(types.FuncType)
	if !ok {
		return nil, diag.New(diag.Typing, ex.Pos, "call of non-function type %s", calleeT)
	}
	if len(ex.Args) != len(ft.Params) {
		return nil, diag.New(diag.Typing, ex.Pos, "incorrect arity: expected %d arguments, got %d", len(ft.Params), len(ex.Args))
	}
	for i, a := range ex.Args {
		at, err := c.evalExprType(scope, a)
		if err != nil {
			return nil, err
		}
		if !types.Equal(at, ft.Params[i]) {
			return nil, diag.New(diag.Typing, ex.Pos, "argument %d: expected %s, got %s", i, ft.Params[i], at)
		}
	}
	return ft.Ret, nil
}

// viableCast implements the finite set of conversions spec §4.2 accepts for
// `cast(T, e)`: int<->int of any width, int<->float, int<->pointer, and
// pointer<->pointer. Every other pair (float<->float, bool, struct, array,
// float<->pointer, ...) is rejected.
func viableCast(from, to types.Type) bool {
	fr, tr := types.Resolve(from), types.Resolve(to)
	switch {
	case types.IsInteger(fr) && types.IsInteger(tr):
		return true
	case types.IsInteger(fr) && isFloatType(tr):
		return true
	case isFloatType(fr) && types.IsInteger(tr):
		return true
	case types.IsInteger(fr) && types.IsPointer(tr):
		return true
	case types.IsPointer(fr) && types.IsInteger(tr):
		return true
	case types.IsPointer(fr) && types.IsPointer(tr):
		return true
	}
	return false
}

func isFloatType(t types.Type) bool {
	_, ok := t.(types.FloatType)
	return ok
}

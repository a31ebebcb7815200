package mir

import (
	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/types"
)

// sourceTypeOf re-derives the source type of e, by the same rules package
// check used to validate the program. mir always runs after a successful
// check.Check, so every expression it walks is already known well-typed;
// this is simply C4's own copy of type derivation, re-deriving rather than
// threading a separate typed-AST sidecar through from C3.
func sourceTypeOf(scope *symtab.Scope, e ast.Expr) (types.Type, error) {
	switch ex := e.(type) {
	case *ast.Identifier:
		b, _ := scope.Lookup(ex.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, ex.Pos, "undefined identifier %q", ex.Name)
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
		return binOpType(scope, ex)

	case *ast.UnaryExpr:
		return unOpType(scope, ex)

	case *ast.CastExpr:
		return ex.Type, nil

	case *ast.CallExpr:
		return callType(scope, ex)

	case *ast.IndexExpr:
		baseT, err := sourceTypeOf(scope, ex.Base)
		if err != nil {
			return nil, err
		}
		switch bt := types.Resolve(baseT).(type) {
		case types.ArrayType:
			return bt.Elem, nil
		case types.PointerType:
			return bt.Elem, nil
		case types.MutPointerType:
			return bt.Elem, nil
		}
		return nil, diag.New(diag.Structural, ex.Pos, "index of non-array type %s", baseT)

	case *ast.MemberExpr:
		return memberType(scope, ex)

	case *ast.StructLit:
		fields := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			t, err := sourceTypeOf(scope, el)
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
		elemT, err := sourceTypeOf(scope, ex.Elems[0])
		if err != nil {
			return nil, err
		}
		return types.ArrayType{Len: int64(len(ex.Elems)), Elem: elemT}, nil

	case *ast.AssignExpr:
		return sourceTypeOf(scope, ex.Rhs)

	case *ast.TemplateInstance:
		return nil, diag.New(diag.Unsupported, ex.Pos, "template instantiation reached backend (must be monomorphised first)")
	}
	return nil, diag.New(diag.Structural, e.Position(), "unrecognized expression node %T", e)
}

func binOpType(scope *symtab.Scope, ex *ast.BinaryExpr) (types.Type, error) {
	lt, err := sourceTypeOf(scope, ex.Lhs)
	if err != nil {
		return nil, err
	}
	rt, err := sourceTypeOf(scope, ex.Rhs)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case ast.Add, ast.Sub:
		if types.IsPointer(types.Resolve(lt)) {
			return lt, nil
		}
		if types.IsPointer(types.Resolve(rt)) {
			return rt, nil
		}
		return lt, nil
	case ast.Mul, ast.Div, ast.Rem, ast.BitAnd, ast.BitOr, ast.BitXor, ast.Shl, ast.Shr:
		return lt, nil
	case ast.Eq, ast.Lt, ast.Gt, ast.And, ast.Or:
		return types.BoolType{}, nil
	}
	return nil, diag.New(diag.Structural, ex.Pos, "unrecognized binary operator")
}

func unOpType(scope *symtab.Scope, ex *ast.UnaryExpr) (types.Type, error) {
	t, err := sourceTypeOf(scope, ex.Operand)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case ast.Neg, ast.BitNot:
		return t, nil
	case ast.Not:
		return types.BoolType{}, nil
	case ast.Deref:
		return types.PointeeType(types.Resolve(t)), nil
	case ast.Addr:
		return types.PointerType{Elem: t}, nil
	}
	return nil, diag.New(diag.Structural, ex.Pos, "unrecognized unary operator")
}

func callType(scope *symtab.Scope, ex *ast.CallExpr) (types.Type, error) {
	if id, ok := ex.Callee.(*ast.Identifier); ok {
		if b, _ := scope.Lookup(id.Name); b != nil && b.Kind == symtab.TypeBinding {
			return b.Type, nil
		}
	}
	calleeT, err := sourceTypeOf(scope, ex.Callee)
	if err != nil {
		return nil, err
	}
	ft, ok := types.Resolve(calleeT).(types.FuncType)
	if !ok {
		return nil, diag.New(diag.Typing, ex.Pos, "call of non-function type %s", calleeT)
	}
	return ft.Ret, nil
}

func memberType(scope *symtab.Scope, ex *ast.MemberExpr) (types.Type, error) {
	baseT, err := sourceTypeOf(scope, ex.Base)
	if err != nil {
		return nil, err
	}
	resolved := types.Resolve(baseT)
	if ex.IsIndex {
		if st, ok := resolved.(types.StructType); ok {
			if ex.Index < 0 || ex.Index >= len(st.Fields) {
				return nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
			}
			return st.Fields[ex.Index], nil
		}
		if lst, ok := resolved.(types.StructLabeledType); ok {
			if ex.Index < 0 || ex.Index >= len(lst.Fields) {
				return nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
			}
			return lst.Fields[ex.Index].Type, nil
		}
		return nil, diag.New(diag.Structural, ex.Pos, "positional member access on non-struct type %s", baseT)
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

// memberFieldIndex resolves a MemberExpr to its positional field index and
// field type, for both plain and labeled structs.
func memberFieldIndex(resolved types.Type, ex *ast.MemberExpr) (int, types.Type, error) {
	if ex.IsIndex {
		switch rt := resolved.(type) {
		case types.StructType:
			if ex.Index < 0 || ex.Index >= len(rt.Fields) {
				return 0, nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
			}
			return ex.Index, rt.Fields[ex.Index], nil
		case types.StructLabeledType:
			if ex.Index < 0 || ex.Index >= len(rt.Fields) {
				return 0, nil, diag.New(diag.Structural, ex.Pos, "struct field index %d out of range", ex.Index)
			}
			return ex.Index, rt.Fields[ex.Index].Type, nil
		}
		return 0, nil, diag.New(diag.Structural, ex.Pos, "positional member access on non-struct type")
	}
	lst, ok := resolved.(types.StructLabeledType)
	if !ok {
		return 0, nil, diag.New(diag.Structural, ex.Pos, "member access %q on non-labeled-struct type", ex.Name)
	}
	for i, f := range lst.Fields {
		if f.Name == ex.Name {
			return i, f.Type, nil
		}
	}
	return 0, nil, diag.New(diag.Resolution, ex.Pos, "no field %q", ex.Name)
}

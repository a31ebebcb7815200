// Package types implements the closed algebra of surface ("source") types
// that the silk front end attaches to every declaration and expression
// before the backend ever sees them: widths-of-N integers, floats, the
// pointer/array/struct family, named aliases and forward-declared stubs,
// and function types.
//
// The algebra is closed: every concrete type is one of the variants below,
// and callers pattern-match on them with a type switch (silk, like Go
// itself, has no native sum types — see the tagged-union discipline used
// throughout this module).
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every member of the source type algebra.
type Type interface {
	// String renders the type the way silk source would spell it.
	String() string

	isType()
}

// IntType is a signed integer of the given bit width (8, 16, 32, 64, ...).
type IntType struct{ Width int }

// UIntType is an unsigned integer of the given bit width.
type UIntType struct{ Width int }

// FloatType is an IEEE-754 float of width 32 or 64.
type FloatType struct{ Width int }

// BoolType is the single boolean type.
type BoolType struct{}

// VoidType is the absence of a value, legal only as a function return type.
type VoidType struct{}

// PointerType is an immutable pointer to Elem.
type PointerType struct{ Elem Type }

// MutPointerType is a mutable pointer to Elem.
//
// Per spec Open Question 4, Pointer and MutPointer are distinct surface
// spellings but collapse to the same backend pointer representation;
// mutability is tracked only on the Value binding (symtab), never consulted
// again past C2.
type MutPointerType struct{ Elem Type }

// ArrayType is a fixed-length array of N elements of type Elem.
type ArrayType struct {
	Len  int64
	Elem Type
}

// StructType is an anonymous (unlabeled) struct: field identity is
// positional.
type StructType struct {
	Packed bool
	Fields []Type
}

// Field is one named member of a StructLabeledType.
type Field struct {
	Name string
	Type Type
}

// StructLabeledType is a struct whose fields carry names, used for `.field`
// member access (as opposed to StructType's `.N` positional access).
type StructLabeledType struct {
	Packed bool
	Fields []Field
}

// AliasType names an already-resolved type. Two AliasTypes are equal (see
// Equal) iff both the name and the underlying structure match.
type AliasType struct {
	Name       string
	Underlying Type
}

// StubType is a forward declaration of a named type whose body has not yet
// been closed by a later TypeDef. It is structurally equal to any
// AliasType with the same Name (see Equal) — this is how silk supports
// recursive and mutually-recursive type definitions without in-memory
// cycles (spec §9: cycles are expressed by name, not by pointer).
type StubType struct{ Name string }

// FuncType is a function signature: zero or more parameter types and
// exactly one return type (VoidType for "no return value").
type FuncType struct {
	Params []Type
	Ret    Type
}

func (IntType) isType()           {}
func (UIntType) isType()          {}
func (FloatType) isType()         {}
func (BoolType) isType()          {}
func (VoidType) isType()          {}
func (PointerType) isType()       {}
func (MutPointerType) isType()    {}
func (ArrayType) isType()         {}
func (StructType) isType()        {}
func (StructLabeledType) isType() {}
func (AliasType) isType()         {}
func (StubType) isType()          {}
func (FuncType) isType()          {}

func (t IntType) String() string  { return fmt.Sprintf("i%d", t.Width) }
func (t UIntType) String() string { return fmt.Sprintf("u%d", t.Width) }
func (t FloatType) String() string {
	if t.Width == 32 {
		return "f32"
	}
	return "f64"
}
func (BoolType) String() string        { return "bool" }
func (VoidType) String() string        { return "void" }
func (t PointerType) String() string    { return "*" + t.Elem.String() }
func (t MutPointerType) String() string { return "*mut " + t.Elem.String() }
func (t ArrayType) String() string {
	return fmt.Sprintf("[%d]%s", t.Len, t.Elem.String())
}

func (t StructType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	prefix := ""
	if t.Packed {
		prefix = "packed "
	}
	return prefix + "(" + strings.Join(parts, ", ") + ")"
}

func (t StructLabeledType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	prefix := ""
	if t.Packed {
		prefix = "packed "
	}
	return prefix + "{" + strings.Join(parts, ", ") + "}"
}

func (t AliasType) String() string { return t.Name }
func (t StubType) String() string  { return t.Name }

func (t FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Ret.String())
}

// Equal reports whether a and b are the same source type.
//
// Equality is structural with two exceptions (spec §3):
//
//   - Alias(n, T) ≡ Alias(n, T) is compared as the (name, structural) pair:
//     two aliases with the same name but different underlying structure are
//     NOT equal (that would indicate two distinct types sharing a name,
//     which C2 rejects as a duplicate symbol before C3 ever calls Equal).
//   - Stub(n) is equal to any Alias(n, _) with the same name: a forward
//     declaration is interchangeable with its eventual definition.
func Equal(a, b Type) bool {
	if sa, ok := a.(StubType); ok {
		if ab, ok := b.(AliasType); ok {
			return sa.Name == ab.Name
		}
		if sb, ok := b.(StubType); ok {
			return sa.Name == sb.Name
		}
		return false
	}
	if sb, ok := b.(StubType); ok {
		return Equal(sb, a)
	}

	switch x := a.(type) {
	case IntType:
		y, ok := b.(IntType)
		return ok && x.Width == y.Width
	case UIntType:
		y, ok := b.(UIntType)
		return ok && x.Width == y.Width
	case FloatType:
		y, ok := b.(FloatType)
		return ok && x.Width == y.Width
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case VoidType:
		_, ok := b.(VoidType)
		return ok
	case PointerType:
		y, ok := b.(PointerType)
		return ok && Equal(x.Elem, y.Elem)
	case MutPointerType:
		y, ok := b.(MutPointerType)
		return ok && Equal(x.Elem, y.Elem)
	case ArrayType:
		y, ok := b.(ArrayType)
		return ok && x.Len == y.Len && Equal(x.Elem, y.Elem)
	case StructType:
		y, ok := b.(StructType)
		if !ok || x.Packed != y.Packed || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case StructLabeledType:
		y, ok := b.(StructLabeledType)
		if !ok || x.Packed != y.Packed || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !Equal(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}
		return true
	case AliasType:
		y, ok := b.(AliasType)
		return ok && x.Name == y.Name && Equal(x.Underlying, y.Underlying)
	case FuncType:
		y, ok := b.(FuncType)
		if !ok || len(x.Params) != len(y.Params) || !Equal(x.Ret, y.Ret) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// IsNumeric reports whether t is an integer or float type (the operand
// class required by arithmetic operators, spec §4.2).
func IsNumeric(t Type) bool {
	switch t.(type) {
	case IntType, UIntType, FloatType:
		return true
	}
	return false
}

// IsInteger reports whether t is a signed or unsigned integer type.
func IsInteger(t Type) bool {
	switch t.(type) {
	case IntType, UIntType:
		return true
	}
	return false
}

// IsPointer reports whether t is a Pointer or MutPointer.
func IsPointer(t Type) bool {
	switch t.(type) {
	case PointerType, MutPointerType:
		return true
	}
	return false
}

// PointeeType returns the pointee of a Pointer/MutPointer, panicking
// otherwise; callers must guard with IsPointer first (mirrors go/types'
// convention of unchecked accessors on already-classified types).
func PointeeType(t Type) Type {
	switch p := t.(type) {
	case PointerType:
		return p.Elem
	case MutPointerType:
		return p.Elem
	}
	panic(fmt.Sprintf("types.PointeeType: %s is not a pointer type", t))
}

// Resolve strips Alias wrappers to expose the underlying structural type,
// the source-type analogue of ttype.ResolveAlias (C4/C5) and go/types'
// Type.Underlying.
func Resolve(t Type) Type {
	for {
		a, ok := t.(AliasType)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

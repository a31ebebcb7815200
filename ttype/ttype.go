// Package ttype implements the target type algebra shared by C4 (mid-IR)
// and C5 (SSA): fixed-width machine types independent of, but structurally
// mirroring, the source type algebra in package types.
//
// Signedness is carried on the type (Int vs UInt) so the emitter (C6) can
// select the right operation (sdiv vs udiv, icmp slt vs ult, sext vs zext), but C6
// prints both as the same "i<N>" spelling — the target IR's own type
// grammar, like LLVM's, has no signed/unsigned integer types; only
// operations do (spec §4.5).
package ttype

import (
	"fmt"
	"strings"
)

// Type is implemented by every member of the target type algebra.
type Type interface {
	String() string
	isTType()
}

type Int struct{ Width int }
type UInt struct{ Width int }
type Float struct{ Width int }
type Void struct{}

// Ptr is a pointer to Elem. Source Pointer and MutPointer both lower to
// Ptr (spec Open Question 4): mutability has no representation past C2.
type Ptr struct{ Elem Type }

type Array struct {
	Len  int64
	Elem Type
}

type Struct struct {
	Packed bool
	Fields []Type
}

// StructLabeled carries field names for emitter/debug readability and for
// mir's ExtractValue index lookups; it degrades to a plain Struct in
// positions where field names are irrelevant (spec §3), via Fields().
type LabeledField struct {
	Name string
	Type Type
}

type StructLabeled struct {
	Packed bool
	Fields []LabeledField
}

// Fn is a function signature; at use sites (as a value's type, e.g. a
// function pointer parameter) it denotes pointer-to-function (spec §3).
type Fn struct {
	Params []Type
	Ret    Type
}

// Opaque is a named type referenced by name only: FromSource lowers a
// source Stub to it. It prints as %"name", so a recursive type's
// self-reference resolves to that type's single `%"name" = type ...`
// definition.
type Opaque struct{ Name string }

// Alias carries the name to be printed at the definition site
// (`%"name" = type ...`); ResolveAlias strips it to expose structure.
type Alias struct {
	Name       string
	Underlying Type
}

func (Int) isTType()           {}
func (UInt) isTType()          {}
func (Float) isTType()         {}
func (Void) isTType()          {}
func (Ptr) isTType()           {}
func (Array) isTType()         {}
func (Struct) isTType()        {}
func (StructLabeled) isTType() {}
func (Fn) isTType()            {}
func (Opaque) isTType()        {}
func (Alias) isTType()         {}

func (t Int) String() string   { return fmt.Sprintf("i%d", t.Width) }
func (t UInt) String() string  { return fmt.Sprintf("i%d", t.Width) } // spec §4.5: same spelling as Int
func (t Float) String() string {
	if t.Width == 32 {
		return "float"
	}
	return "double"
}
func (Void) String() string { return "void" }
func (t Ptr) String() string { return t.Elem.String() + "*" }
func (t Array) String() string {
	return fmt.Sprintf("[%d x %s]", t.Len, t.Elem.String())
}

func (t Struct) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}
	body := "{ " + strings.Join(parts, ", ") + " }"
	if t.Packed {
		return "<" + body + ">"
	}
	return body
}

func (t StructLabeled) String() string {
	return Struct{Packed: t.Packed, Fields: t.PlainFields()}.String()
}

// PlainFields strips the labeled struct down to its positional field-type
// list, used wherever field names are irrelevant (spec §3).
func (t StructLabeled) PlainFields() []Type {
	out := make([]Type, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Type
	}
	return out
}

func (t Fn) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s (%s)*", t.Ret.String(), strings.Join(parts, ", "))
}

func (t Opaque) String() string { return fmt.Sprintf("%%%q", t.Name) }
func (t Alias) String() string  { return fmt.Sprintf("%%%q", t.Name) }

// ResolveAlias strips Alias wrappers, the target-type analogue of
// types.Resolve.
func ResolveAlias(t Type) Type {
	for {
		a, ok := t.(Alias)
		if !ok {
			return t
		}
		t = a.Underlying
	}
}

// IsInteger, IsSigned, IsFloatType, IsPointer classify a (possibly
// aliased) target type.
func IsInteger(t Type) bool {
	switch ResolveAlias(t).(type) {
	case Int, UInt:
		return true
	}
	return false
}

func IsSigned(t Type) bool {
	_, ok := ResolveAlias(t).(Int)
	return ok
}

func IsFloatType(t Type) bool {
	_, ok := ResolveAlias(t).(Float)
	return ok
}

func IsPointer(t Type) bool {
	_, ok := ResolveAlias(t).(Ptr)
	return ok
}

// Equal is structural equality over the target algebra, mirroring
// types.Equal's Alias treatment. Unlike a source Stub, an Opaque equals
// only an Opaque of the same name, never an Alias.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case Int:
		y, ok := b.(Int)
		return ok && x.Width == y.Width
	case UInt:
		y, ok := b.(UInt)
		return ok && x.Width == y.Width
	case Float:
		y, ok := b.(Float)
		return ok && x.Width == y.Width
	case Void:
		_, ok := b.(Void)
		return ok
	case Ptr:
		y, ok := b.(Ptr)
		return ok && Equal(x.Elem, y.Elem)
	case Array:
		y, ok := b.(Array)
		return ok && x.Len == y.Len && Equal(x.Elem, y.Elem)
	case Struct:
		y, ok := b.(Struct)
		if !ok || x.Packed != y.Packed || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if !Equal(x.Fields[i], y.Fields[i]) {
				return false
			}
		}
		return true
	case StructLabeled:
		y, ok := b.(StructLabeled)
		if !ok || x.Packed != y.Packed || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name || !Equal(x.Fields[i].Type, y.Fields[i].Type) {
				return false
			}
		}
		return true
	case Fn:
		y, ok := b.(Fn)
		if !ok || len(x.Params) != len(y.Params) || !Equal(x.Ret, y.Ret) {
			return false
		}
		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	case Opaque:
		y, ok := b.(Opaque)
		return ok && x.Name == y.Name
	case Alias:
		y, ok := b.(Alias)
		return ok && x.Name == y.Name && Equal(x.Underlying, y.Underlying)
	}
	return false
}


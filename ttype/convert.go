package ttype

import "github.com/programming-zone/silk/types"

// FromSource lowers a resolved source type (package types) to its target
// representation. Named types keep their name as an Alias so the emitter
// can print a single `%"name" = type ...` definition and every use site
// refers to it by name (spec §9's cyclic-types note).
func FromSource(t types.Type) Type {
	switch x := t.(type) {
	case types.IntType:
		return Int{Width: x.Width}
	case types.UIntType:
		return UInt{Width: x.Width}
	case types.FloatType:
		return Float{Width: x.Width}
	case types.BoolType:
		return Int{Width: 1}
	case types.VoidType:
		return Void{}
	case types.PointerType:
		return Ptr{Elem: FromSource(x.Elem)}
	case types.MutPointerType:
		return Ptr{Elem: FromSource(x.Elem)}
	case types.ArrayType:
		return Array{Len: x.Len, Elem: FromSource(x.Elem)}
	case types.StructType:
		fields := make([]Type, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = FromSource(f)
		}
		return Struct{Packed: x.Packed, Fields: fields}
	case types.StructLabeledType:
		fields := make([]LabeledField, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = LabeledField{Name: f.Name, Type: FromSource(f.Type)}
		}
		return StructLabeled{Packed: x.Packed, Fields: fields}
	case types.AliasType:
		return Alias{Name: x.Name, Underlying: FromSource(x.Underlying)}
	case types.StubType:
		return Opaque{Name: x.Name}
	case types.FuncType:
		params := make([]Type, len(x.Params))
		for i, p := range x.Params {
			params[i] = FromSource(p)
		}
		return Fn{Params: params, Ret: FromSource(x.Ret)}
	}
	panic("ttype.FromSource: unhandled source type")
}

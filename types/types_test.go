package types

import "testing"

func TestEqualBasic(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same int width", IntType{32}, IntType{32}, true},
		{"different int width", IntType{32}, IntType{64}, false},
		{"int vs uint same width", IntType{32}, UIntType{32}, false},
		{"float widths", FloatType{64}, FloatType{64}, true},
		{"bool", BoolType{}, BoolType{}, true},
		{"void", VoidType{}, VoidType{}, true},
		{"pointer elem differs", PointerType{IntType{32}}, PointerType{IntType{64}}, false},
		{"pointer vs mutpointer", PointerType{IntType{32}}, MutPointerType{IntType{32}}, false},
		{"array len differs", ArrayType{3, IntType{32}}, ArrayType{4, IntType{32}}, false},
		{"array equal", ArrayType{3, IntType{32}}, ArrayType{3, IntType{32}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Equal(tt.b, tt.a); got != tt.want {
				t.Errorf("Equal is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestStubAliasEquivalence(t *testing.T) {
	stub := StubType{Name: "List"}
	alias := AliasType{Name: "List", Underlying: StructLabeledType{Fields: []Field{
		{Name: "head", Type: IntType{32}},
		{Name: "tail", Type: PointerType{StubType{Name: "List"}}},
	}}}

	if !Equal(stub, alias) {
		t.Error("Stub(List) should be equal to Alias(List, ...)")
	}
	if !Equal(alias, stub) {
		t.Error("Equal should be symmetric for stub/alias")
	}

	otherStub := StubType{Name: "Tree"}
	if Equal(stub, otherStub) {
		t.Error("stubs with different names must not be equal")
	}
}

func TestAliasRequiresMatchingUnderlying(t *testing.T) {
	a := AliasType{Name: "Id", Underlying: IntType{32}}
	b := AliasType{Name: "Id", Underlying: IntType{64}}
	if Equal(a, b) {
		t.Error("aliases sharing a name but differing underlying types must not be equal")
	}
}

func TestStructLabeledFieldOrderMatters(t *testing.T) {
	a := StructLabeledType{Fields: []Field{{Name: "x", Type: IntType{32}}, {Name: "y", Type: IntType{32}}}}
	b := StructLabeledType{Fields: []Field{{Name: "y", Type: IntType{32}}, {Name: "x", Type: IntType{32}}}}
	if Equal(a, b) {
		t.Error("field order is significant for labeled structs")
	}
}

func TestResolve(t *testing.T) {
	inner := IntType{32}
	a := AliasType{Name: "MyInt", Underlying: AliasType{Name: "Inner", Underlying: inner}}
	if got := Resolve(a); !Equal(got, inner) {
		t.Errorf("Resolve(%v) = %v, want %v", a, got, inner)
	}
}

func TestPointeeType(t *testing.T) {
	if got := PointeeType(PointerType{IntType{32}}); !Equal(got, IntType{32}) {
		t.Errorf("PointeeType = %v", got)
	}
	if got := PointeeType(MutPointerType{BoolType{}}); !Equal(got, BoolType{}) {
		t.Errorf("PointeeType = %v", got)
	}
}

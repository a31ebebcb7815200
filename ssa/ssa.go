// Package ssa implements C5: the linearizer that walks C4's mid-IR and
// produces a flat list of (result, instruction) pairs per function body
// (spec §4.4) — not a basic-block graph like go/ssa's own Function/
// BasicBlock model, but the simpler flat stream the spec itself
// prescribes ("a flat list of (result_value, inst) pairs plus labels and
// terminators"). Grounded on go/ssa/func.go's targets/lblock break-continue
// stack discipline and go/ssa/builder.go's stmt/expr split, adapted to a
// single linear instruction list instead of a CFG of *BasicBlock.
//
// Opcode textual refinement (udiv vs sdiv, lshr vs ashr, icmp vs fcmp, ...)
// is deliberately left generic here and deferred to the emitter (C6), which
// inspects operand types at print time — matching the spec's own split of
// responsibilities between C5 ("arithmetic (add/sub/mul/div/rem/fneg)") and
// C6 ("selects opcode by type").
package ssa

import (
	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ttype"
)

// ValueKind enumerates the six SSA value shapes named in spec §3's "SSA
// instructions" section.
type ValueKind int

const (
	TempValue ValueKind = iota
	NamedValue
	LiteralValue
	ZeroInitValue
	UndefValue
	NoValue
)

// Value is an operand or result: a Temporary(i), a Named(s) (a function,
// parameter register, or alloca'd local/global symbol), a Literal, a
// ZeroInit/Undef constant, or NoValue (a void instruction's non-result).
type Value struct {
	Kind ValueKind

	Temp int    // TempValue
	Name string // NamedValue
	// Global marks a NamedValue as a top-level symbol (printed "@name"
	// rather than "%name" by the emitter).
	Global bool
	Lit    *mir.Literal // LiteralValue

	Type ttype.Type
}

func temporary(id int, t ttype.Type) Value { return Value{Kind: TempValue, Temp: id, Type: t} }

// Named constructs a NamedValue: a function, parameter register, or
// alloca'd local/global symbol referenced by its already-mangled name.
func Named(name string, global bool, t ttype.Type) Value {
	return Value{Kind: NamedValue, Name: name, Global: global, Type: t}
}

func litValue(lit *mir.Literal) Value { return Value{Kind: LiteralValue, Lit: lit, Type: lit.Type} }

func zeroInit(t ttype.Type) Value { return Value{Kind: ZeroInitValue, Type: t} }
func undef(t ttype.Type) Value    { return Value{Kind: UndefValue, Type: t} }

var noValue = Value{Kind: NoValue}

// Op enumerates the SSA instruction opcodes from spec §3's "SSA
// instructions" section: alloca/load/store/gep/insertvalue/extractvalue/
// call/ret/label/br/br_cond, arithmetic, comparisons, bitwise, and the
// seven mid-IR-mirroring casts.
type Op int

const (
	OpAlloca Op = iota
	OpLoad
	OpStore
	OpGEP
	OpInsertValue
	OpExtractValue
	OpCall
	OpRet
	OpLabel
	OpBr
	OpBrCond

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpFNeg

	OpEq
	OpLt
	OpGt

	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	OpItoF
	OpFtoI
	OpBitCast
	OpPtoI
	OpItoP
	OpTrunc
	OpExt
)

// Instr is one (result, instruction) pair. Which fields are meaningful
// depends on Op:
//   - OpAlloca: Type is the allocated (pointee) type; Result is the pointer.
//   - OpStore: Args = [value, ptr]; Result is NoValue.
//   - OpLoad: Args = [ptr]; Type is the loaded type.
//   - OpGEP: Args = [base, index...]; Type is the computed pointer type.
//   - OpInsertValue: Args = [aggregate, element]; Index is the field slot.
//   - OpExtractValue: Args = [aggregate]; Index is the field slot.
//   - OpCall: Callee + Args are the call operands; ArgTypes records each
//     argument's declared parameter type for the emitter's call-site
//     annotations; Result is NoValue for a void callee.
//   - OpRet: Args = [value] or none for `ret void`.
//   - OpLabel: Label names this point; no other field is used.
//   - OpBr: Label is the unconditional target.
//   - OpBrCond: Args = [cond]; TrueLabel/FalseLabel are the two targets.
//   - arithmetic/comparison/bitwise: Args = [lhs, rhs] (unary for fneg).
//   - casts: Args = [operand]; Signed selects the signed variant where the
//     mid-IR cast node carried one (ItoF/FtoI/Ext).
type Instr struct {
	Result Value
	Op     Op
	Type   ttype.Type

	Args []Value

	Label               string // OpLabel, OpBr
	TrueLabel, FalseLabel string // OpBrCond

	Index int // OpInsertValue, OpExtractValue

	Callee   Value
	ArgTypes []ttype.Type

	Signed bool // casts: selects the signed/unsigned or sext/zext variant
}

// Root is any top-level SSA-stage declaration: either a function body that
// has been linearized, or a non-function mid-IR root carried through
// unchanged (statics, forward decls, type defs, string globals don't need
// linearization).
type Root interface{ ssaNode() }

// Passthrough wraps a mid-IR root that C5 has no work to do on; the
// emitter prints it exactly as it would print the mir.Root directly.
type Passthrough struct{ Root mir.Root }

func (Passthrough) ssaNode() {}

// Func is a function body rewritten as a flat instruction stream.
type Func struct {
	Ret    ttype.Type
	Public bool
	Name   string
	Params []mir.Param
	Instrs []Instr
}

func (*Func) ssaNode() {}

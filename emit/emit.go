// Package emit implements C6: the text emitter. It is a pure function from
// a linearized SSA module ([]ssa.Root) to a UTF-8 string conforming to the
// target IR's textual grammar (spec §6), with no IO of its own.
//
// Per-type printing is mostly already done by ttype.Type.String() (spec
// §4.5's "i<N>"/"float|double"/pointer-to-function rules live there, since
// C4/C5 need the same spellings for their own error messages); this
// package owns everything ttype doesn't: identifier quoting, per-opcode
// text (udiv/sdiv/fdiv, icmp/fcmp predicates, the cast mnemonics), and
// literal/string-constant formatting.
//
// Grounded on go/ssa/func.go's WriteTo (a Function/BasicBlock walk that
// prints one instruction per line with a fixed indent) and miniray's
// printer.go (a closed-AST pretty-printer using strings.Builder rather
// than text/template, which this backend's grammar is too row-oriented to
// benefit from).
package emit

import (
	"fmt"
	"strings"

	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ssa"
	"github.com/programming-zone/silk/ttype"
)

// Module renders a complete linearized program as the target IR's textual
// module grammar (spec §6). Roots are printed in the order given — C5
// already preserves insertion order from the parse tree (spec §5's
// determinism invariant), so Module itself does no reordering or sorting
// of its own.
func Module(roots []ssa.Root) (string, error) {
	strLens := stringGlobalLengths(roots)
	var chunks []string
	for _, r := range roots {
		p := &printer{strLens: strLens}
		if err := p.root(r); err != nil {
			return "", err
		}
		// A root like a non-extern FuncFwdDecl emits nothing; skip it
		// entirely rather than leaving a stray blank line between its
		// neighbors.
		if p.buf.Len() > 0 {
			chunks = append(chunks, p.buf.String())
		}
	}
	return strings.Join(chunks, "\n"), nil
}

// stringGlobalLengths collects each synthesized string global's full
// backing-array length (spec §4.3: `[N x i8]`, N including the trailing
// NUL) so a later GlobalStringLit operand can print its bitcast without
// re-deriving the length from the literal itself.
func stringGlobalLengths(roots []ssa.Root) map[string]int {
	out := map[string]int{}
	for _, r := range roots {
		pt, ok := r.(ssa.Passthrough)
		if !ok {
			continue
		}
		if sg, ok := pt.Root.(*mir.StringGlobal); ok {
			out[sg.Name] = len(sg.Value) + 1
		}
	}
	return out
}

type printer struct {
	buf     strings.Builder
	strLens map[string]int
}

func (p *printer) root(r ssa.Root) error {
	switch root := r.(type) {
	case *ssa.Func:
		return p.function(root)
	case ssa.Passthrough:
		return p.passthrough(root.Root)
	}
	return fmt.Errorf("emit: unrecognized root %T", r)
}

func (p *printer) passthrough(r mir.Root) error {
	switch root := r.(type) {
	case *mir.StaticDecl:
		linkage := ""
		if !root.Public {
			linkage = "private "
		}
		fmt.Fprintf(&p.buf, "@%q = %sglobal %s %s\n", root.Name, linkage, root.Type.String(), p.literal(root.Literal))
	case *mir.StringGlobal:
		n := len(root.Value) + 1
		fmt.Fprintf(&p.buf, "@%q = private global [%d x i8] c\"%s\\00\"\n", root.Name, n, escapeString(root.Value))
	case *mir.TypeDef:
		fmt.Fprintf(&p.buf, "%%%q = type %s\n", root.Name, root.Type.String())
	case *mir.FuncFwdDecl:
		// A non-extern forward declaration exists only to let earlier uses
		// resolve the symbol's type (spec §8 Invariant 5 checks its type
		// matches the eventual definition); the definition itself, emitted
		// later in the root list as a *ssa.Func, is what the module actually
		// carries. Only a true extern needs its own `declare` line here, per
		// spec §6 ("externs as declare").
		if !root.Extern {
			return nil
		}
		params := make([]string, len(root.Params))
		for i, pa := range root.Params {
			params[i] = pa.Type.String()
		}
		fmt.Fprintf(&p.buf, "declare %s @%q(%s)\n", root.Ret.String(), root.Name, strings.Join(params, ", "))
	default:
		return fmt.Errorf("emit: unrecognized mid-IR root %T", r)
	}
	return nil
}

// literal prints a constant mir.Literal's value token (no type prefix),
// the same token grammar used for an ssa.LiteralValue operand -- shared so
// a top-level static's initializer and an in-function literal operand
// never drift apart.
func (p *printer) literal(lit *mir.Literal) string {
	switch lit.Kind {
	case mir.IntLit:
		return fmt.Sprintf("%d", lit.IntVal)
	case mir.FloatLit:
		return formatFloat(lit.FltVal)
	case mir.BoolLit:
		if lit.BoolVal {
			return "true"
		}
		return "false"
	case mir.GlobalStringLit:
		n := p.strLens[lit.Global]
		arrT := ttype.Array{Len: int64(n), Elem: ttype.Int{Width: 8}}
		return fmt.Sprintf("bitcast (%s* @%q to %s)", arrT.String(), lit.Global, lit.Type.String())
	}
	return "<bad-literal>"
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// escapeString applies the C-style escaping spec §4.5 requires: bytes < 32
// (and anything outside the printable ASCII range, plus the quote/
// backslash characters the c"..." grammar can't carry literally) become
// \XX; everything else is copied through unchanged. The caller appends
// the terminating \00 itself.
func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			fmt.Fprintf(&b, "\\%02X", c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, "\\%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (p *printer) function(f *ssa.Func) error {
	linkage := ""
	if !f.Public {
		linkage = "private "
	}
	params := make([]string, len(f.Params))
	for i, par := range f.Params {
		params[i] = fmt.Sprintf("%s %%%q", par.Type.String(), par.Name)
	}
	fmt.Fprintf(&p.buf, "define %s%s @%q(%s) {\n", linkage, f.Ret.String(), f.Name, strings.Join(params, ", "))
	for _, instr := range f.Instrs {
		if err := p.instr(instr); err != nil {
			return err
		}
	}
	p.buf.WriteString("}\n")
	return nil
}

// operand prints a fully typed operand ("<type> <value>"), the form most
// instruction arguments take in the target IR's textual grammar.
func (p *printer) operand(v ssa.Value) string {
	return v.Type.String() + " " + p.bare(v)
}

// bare prints just the value token with no type prefix: a label target, a
// call result binding, an alloca's own destination, etc.
func (p *printer) bare(v ssa.Value) string {
	switch v.Kind {
	case ssa.TempValue:
		return fmt.Sprintf("%%__tmp.%d", v.Temp)
	case ssa.NamedValue:
		if v.Global {
			return fmt.Sprintf("@%q", v.Name)
		}
		return fmt.Sprintf("%%%q", v.Name)
	case ssa.LiteralValue:
		return p.literal(v.Lit)
	case ssa.ZeroInitValue:
		// zeroinitializer is an aggregate/vector constant in the target IR's
		// grammar; a scalar integer or float return needs its own zero
		// literal instead.
		switch {
		case ttype.IsInteger(v.Type):
			return "0"
		case ttype.IsFloatType(v.Type):
			return formatFloat(0)
		}
		return "zeroinitializer"
	case ssa.UndefValue:
		return "undef"
	}
	return ""
}

func (p *printer) instr(instr ssa.Instr) error {
	switch instr.Op {
	case ssa.OpLabel:
		fmt.Fprintf(&p.buf, "%s:\n", instr.Label)
		return nil
	case ssa.OpAlloca:
		fmt.Fprintf(&p.buf, "  %s = alloca %s\n", p.bare(instr.Result), instr.Type.String())
		return nil
	case ssa.OpStore:
		fmt.Fprintf(&p.buf, "  store %s, %s\n", p.operand(instr.Args[0]), p.operand(instr.Args[1]))
		return nil
	case ssa.OpLoad:
		fmt.Fprintf(&p.buf, "  %s = load %s, %s\n", p.bare(instr.Result), instr.Type.String(), p.operand(instr.Args[0]))
		return nil
	case ssa.OpGEP:
		base := instr.Args[0]
		elem, ok := base.Type.(ttype.Ptr)
		if !ok {
			return fmt.Errorf("emit: gep base %v is not a pointer", base)
		}
		parts := []string{elem.Elem.String(), p.operand(base)}
		for _, idx := range instr.Args[1:] {
			parts = append(parts, p.operand(idx))
		}
		fmt.Fprintf(&p.buf, "  %s = getelementptr %s\n", p.bare(instr.Result), strings.Join(parts, ", "))
		return nil
	case ssa.OpInsertValue:
		fmt.Fprintf(&p.buf, "  %s = insertvalue %s, %s, %d\n", p.bare(instr.Result), p.operand(instr.Args[0]), p.operand(instr.Args[1]), instr.Index)
		return nil
	case ssa.OpExtractValue:
		fmt.Fprintf(&p.buf, "  %s = extractvalue %s, %d\n", p.bare(instr.Result), p.operand(instr.Args[0]), instr.Index)
		return nil
	case ssa.OpCall:
		args := make([]string, len(instr.Args))
		for i, a := range instr.Args {
			args[i] = p.operand(a)
		}
		call := fmt.Sprintf("call %s %s(%s)", instr.Type.String(), p.bare(instr.Callee), strings.Join(args, ", "))
		if instr.Result.Kind == ssa.NoValue {
			fmt.Fprintf(&p.buf, "  %s\n", call)
		} else {
			fmt.Fprintf(&p.buf, "  %s = %s\n", p.bare(instr.Result), call)
		}
		return nil
	case ssa.OpRet:
		if len(instr.Args) == 0 {
			p.buf.WriteString("  ret void\n")
			return nil
		}
		fmt.Fprintf(&p.buf, "  ret %s\n", p.operand(instr.Args[0]))
		return nil
	case ssa.OpBr:
		fmt.Fprintf(&p.buf, "  br label %%%q\n", instr.Label)
		return nil
	case ssa.OpBrCond:
		fmt.Fprintf(&p.buf, "  br %s, label %%%q, label %%%q\n", p.operand(instr.Args[0]), instr.TrueLabel, instr.FalseLabel)
		return nil
	}
	return p.arithInstr(instr)
}

// arithInstr handles the generic arithmetic/comparison/bitwise/cast
// opcodes, all of which select their textual mnemonic by inspecting the
// operand type (spec §4.5: "selects opcode by type").
func (p *printer) arithInstr(instr ssa.Instr) error {
	mnemonic, err := opMnemonic(instr)
	if err != nil {
		return err
	}
	switch instr.Op {
	case ssa.OpAdd, ssa.OpSub, ssa.OpMul, ssa.OpDiv, ssa.OpRem,
		ssa.OpAnd, ssa.OpOr, ssa.OpXor, ssa.OpShl, ssa.OpShr:
		fmt.Fprintf(&p.buf, "  %s = %s %s, %s\n", p.bare(instr.Result), mnemonic, p.operand(instr.Args[0]), p.bare(instr.Args[1]))
		return nil
	case ssa.OpFNeg:
		fmt.Fprintf(&p.buf, "  %s = %s %s\n", p.bare(instr.Result), mnemonic, p.operand(instr.Args[0]))
		return nil
	case ssa.OpEq, ssa.OpLt, ssa.OpGt:
		fmt.Fprintf(&p.buf, "  %s = %s %s, %s\n", p.bare(instr.Result), mnemonic, p.operand(instr.Args[0]), p.bare(instr.Args[1]))
		return nil
	case ssa.OpItoF, ssa.OpFtoI, ssa.OpBitCast, ssa.OpPtoI, ssa.OpItoP, ssa.OpTrunc, ssa.OpExt:
		fmt.Fprintf(&p.buf, "  %s = %s %s to %s\n", p.bare(instr.Result), mnemonic, p.operand(instr.Args[0]), instr.Type.String())
		return nil
	}
	return fmt.Errorf("emit: unrecognized opcode %d", instr.Op)
}

// opMnemonic picks the printed opcode for type-sensitive instructions
// (spec §4.5: "udiv/sdiv/fdiv, lshr/ashr, zext/sext/fpext, fptrunc/trunc,
// fcmp oeq / icmp eq, etc").
func opMnemonic(instr ssa.Instr) (string, error) {
	t := instr.Args[0].Type
	switch instr.Op {
	case ssa.OpAdd:
		return "add", nil
	case ssa.OpSub:
		return "sub", nil
	case ssa.OpMul:
		return "mul", nil
	case ssa.OpFNeg:
		return "fneg", nil
	case ssa.OpDiv:
		switch {
		case ttype.IsFloatType(t):
			return "fdiv", nil
		case ttype.IsSigned(t):
			return "sdiv", nil
		default:
			return "udiv", nil
		}
	case ssa.OpRem:
		switch {
		case ttype.IsFloatType(t):
			return "frem", nil
		case ttype.IsSigned(t):
			return "srem", nil
		default:
			return "urem", nil
		}
	case ssa.OpAnd:
		return "and", nil
	case ssa.OpOr:
		return "or", nil
	case ssa.OpXor:
		return "xor", nil
	case ssa.OpShl:
		return "shl", nil
	case ssa.OpShr:
		if ttype.IsSigned(t) {
			return "ashr", nil
		}
		return "lshr", nil
	case ssa.OpEq:
		if ttype.IsFloatType(t) {
			return "fcmp oeq", nil
		}
		return "icmp eq", nil
	case ssa.OpLt:
		switch {
		case ttype.IsFloatType(t):
			return "fcmp olt", nil
		case ttype.IsSigned(t):
			return "icmp slt", nil
		default:
			return "icmp ult", nil
		}
	case ssa.OpGt:
		switch {
		case ttype.IsFloatType(t):
			return "fcmp ogt", nil
		case ttype.IsSigned(t):
			return "icmp sgt", nil
		default:
			return "icmp ugt", nil
		}
	case ssa.OpItoF:
		if instr.Signed {
			return "sitofp", nil
		}
		return "uitofp", nil
	case ssa.OpFtoI:
		if instr.Signed {
			return "fptosi", nil
		}
		return "fptoui", nil
	case ssa.OpBitCast:
		return "bitcast", nil
	case ssa.OpPtoI:
		return "ptrtoint", nil
	case ssa.OpItoP:
		return "inttoptr", nil
	case ssa.OpTrunc:
		if ttype.IsFloatType(t) {
			return "fptrunc", nil
		}
		return "trunc", nil
	case ssa.OpExt:
		if ttype.IsFloatType(t) {
			return "fpext", nil
		}
		if instr.Signed {
			return "sext", nil
		}
		return "zext", nil
	}
	return "", fmt.Errorf("emit: opcode %d has no type-selected mnemonic", instr.Op)
}

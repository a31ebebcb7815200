package ssa

import (
	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/mir"
	"github.com/programming-zone/silk/ttype"
)

// Build is C5's entry point: construct_ir_tree's output, linearized.
// Non-function roots pass through untouched; each FuncDecl becomes a Func
// with a flat Instrs stream (spec §4.4).
func Build(roots []mir.Root) ([]Root, error) {
	var out []Root
	for _, r := range roots {
		fd, ok := r.(*mir.FuncDecl)
		if !ok {
			out = append(out, Passthrough{Root: r})
			continue
		}
		f, err := codegenFunc(fd)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// funcBuilder threads the fold state described in spec §4.4:
// (cont_lbl?, brk_lbl?, next_tmp, scratch_struct_value?, insts_rev,
// last_result). Go's call stack does the threading for recursive descent;
// contLbl/brkLbl/scratch are saved and restored around each construct that
// rebinds them, giving the same nesting a cons-stack would.
type funcBuilder struct {
	instrs  []Instr
	nextTmp int

	hasCont bool
	contLbl string
	hasBrk  bool
	brkLbl  string

	scratch *Value

	// dead marks that the current block has already been closed by a
	// terminator (br/br_cond/ret); further statements in the same list are
	// unreachable and must be dropped rather than codegen'd, mirroring
	// go/ssa/builder.go's "currentBlock == nil after emitJump" discipline —
	// otherwise a dead `break;` followed by a dead `return;` would linearize
	// into two terminators with no intervening label.
	dead bool
}

func codegenFunc(fd *mir.FuncDecl) (*Func, error) {
	fb := &funcBuilder{}
	if err := fb.codegenStmts(fd.Body); err != nil {
		return nil, err
	}
	fb.padTrailingTerminator(fd.Ret)
	f := &Func{Ret: fd.Ret, Public: fd.Public, Name: fd.Name, Params: fd.Params, Instrs: fb.instrs}
	sanityCheck(f)
	return f, nil
}

// padTrailingTerminator covers the one case mir's own void-only padding
// (build.go's endsInReturn check) doesn't: a value-returning function whose
// last statement is an IfElse/While/For whose every reachable path already
// returns, leaving a dangling, unreachable block after the final label with
// no terminator of its own. The target IR has no `unreachable` opcode in
// spec §3's instruction set, so the safety net is a trailing `ret` — void
// for a void function, a zero-valued return of the declared type otherwise
// (never reached at runtime, but satisfies "every block ends in exactly one
// terminator", spec §8 invariant 2).
func (fb *funcBuilder) padTrailingTerminator(ret ttype.Type) {
	if n := len(fb.instrs); n > 0 {
		switch fb.instrs[n-1].Op {
		case OpBr, OpBrCond, OpRet:
			return
		}
	}
	if _, void := ret.(ttype.Void); void {
		fb.push(Instr{Result: noValue, Op: OpRet, Type: ttype.Void{}})
		return
	}
	fb.push(Instr{Result: noValue, Op: OpRet, Type: ret, Args: []Value{zeroInit(ret)}})
}

func (fb *funcBuilder) push(instr Instr) { fb.instrs = append(fb.instrs, instr) }

func (fb *funcBuilder) newTemp(t ttype.Type) Value {
	v := temporary(fb.nextTmp, t)
	fb.nextTmp++
	return v
}

func (fb *funcBuilder) label(name string) {
	fb.push(Instr{Result: noValue, Op: OpLabel, Label: name})
	fb.dead = false
}
func (fb *funcBuilder) br(target string) {
	fb.push(Instr{Result: noValue, Op: OpBr, Label: target})
	fb.dead = true
}
func (fb *funcBuilder) brCond(cond Value, t, f string) {
	fb.push(Instr{Result: noValue, Op: OpBrCond, Args: []Value{cond}, TrueLabel: t, FalseLabel: f})
	fb.dead = true
}

// jumpIfLive emits an unconditional branch to close out a block, unless
// that block already ended itself (return/break/continue) — emitting one
// anyway would be a second terminator with no intervening label.
func (fb *funcBuilder) jumpIfLive(target string) {
	if !fb.dead {
		fb.br(target)
	}
}

func (fb *funcBuilder) codegenStmts(stmts []mir.Stmt) error {
	for _, s := range stmts {
		if fb.dead {
			break
		}
		if err := fb.codegenStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fb *funcBuilder) codegenStmt(s mir.Stmt) error {
	switch st := s.(type) {
	case *mir.EmptyStmt:
		return nil

	case *mir.Decl:
		ptr := Named(st.Name, false, ttype.Ptr{Elem: st.Type})
		fb.push(Instr{Result: ptr, Op: OpAlloca, Type: st.Type})
		val, err := fb.codegenExpr(st.Value)
		if err != nil {
			return err
		}
		fb.push(Instr{Result: noValue, Op: OpStore, Type: st.Type, Args: []Value{val, ptr}})
		return nil

	case *mir.ExprStmt:
		_, err := fb.codegenExpr(st.Value)
		return err

	case *mir.Block:
		end := st.Label + "_end"
		fb.br(st.Label)
		fb.label(st.Label)
		if err := fb.codegenStmts(st.Stmts); err != nil {
			return err
		}
		fb.jumpIfLive(end)
		fb.label(end)
		return nil

	case *mir.IfElse:
		end := st.IfLabel + "_end"
		falseTarget := end
		if st.ElseLabel != "" {
			falseTarget = st.ElseLabel
		}
		cond, err := fb.codegenExpr(st.Cond)
		if err != nil {
			return err
		}
		fb.brCond(cond, st.IfLabel, falseTarget)
		fb.label(st.IfLabel)
		if err := fb.codegenStmts(st.Then); err != nil {
			return err
		}
		fb.jumpIfLive(end)
		if st.ElseLabel != "" {
			fb.label(st.ElseLabel)
			if err := fb.codegenStmts(st.Else); err != nil {
				return err
			}
			fb.jumpIfLive(end)
		}
		fb.label(end)
		return nil

	case *mir.While:
		cond := st.Label + "_cond"
		body := st.Label + "_body"
		end := st.Label + "_end"
		fb.br(cond)
		fb.label(cond)
		condVal, err := fb.codegenExpr(st.Cond)
		if err != nil {
			return err
		}
		fb.brCond(condVal, body, end)
		fb.label(body)
		savedHasCont, savedCont, savedHasBrk, savedBrk := fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl
		fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl = true, cond, true, end
		err = fb.codegenStmts(st.Body)
		fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl = savedHasCont, savedCont, savedHasBrk, savedBrk
		if err != nil {
			return err
		}
		fb.jumpIfLive(cond)
		fb.label(end)
		return nil

	case *mir.For:
		base := st.Label
		// Unlike While, the loop head here is the bare block label itself
		// (spec §8 S4 lists labels f.0/f.0_body/f.0_inc/f.0_end -- no
		// f.0_cond), matching §4.4's "loop_head" terminology for for (as
		// opposed to while's explicitly named "cond" state).
		cond := base
		body := base + "_body"
		inc := base + "_inc"
		end := base + "_end"
		if st.Decl != nil {
			if err := fb.codegenStmt(st.Decl); err != nil {
				return err
			}
		}
		fb.br(cond)
		fb.label(cond)
		condVal := litValue(&mir.Literal{Kind: mir.BoolLit, IntVal: 1, BoolVal: true, Type: ttype.Int{Width: 1}})
		if st.Cond != nil {
			v, err := fb.codegenExpr(st.Cond)
			if err != nil {
				return err
			}
			condVal = v
		}
		fb.brCond(condVal, body, end)
		fb.label(body)
		savedHasCont, savedCont, savedHasBrk, savedBrk := fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl
		fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl = true, inc, true, end
		err := fb.codegenStmts(st.Body)
		fb.hasCont, fb.contLbl, fb.hasBrk, fb.brkLbl = savedHasCont, savedCont, savedHasBrk, savedBrk
		if err != nil {
			return err
		}
		fb.jumpIfLive(inc)
		fb.label(inc)
		if st.Inc != nil {
			if _, err := fb.codegenExpr(st.Inc); err != nil {
				return err
			}
		}
		fb.br(cond)
		fb.label(end)
		return nil

	case *mir.Continue:
		if !fb.hasCont {
			return diag.New(diag.Control, ast.Pos{}, "continue outside a loop")
		}
		fb.br(fb.contLbl)
		return nil

	case *mir.Break:
		if !fb.hasBrk {
			return diag.New(diag.Control, ast.Pos{}, "break outside a loop")
		}
		fb.br(fb.brkLbl)
		return nil

	case *mir.Return:
		if st.Value == nil {
			fb.push(Instr{Result: noValue, Op: OpRet, Type: ttype.Void{}})
			fb.dead = true
			return nil
		}
		v, err := fb.codegenExpr(st.Value)
		if err != nil {
			return err
		}
		fb.push(Instr{Result: noValue, Op: OpRet, Type: v.Type, Args: []Value{v}})
		fb.dead = true
		return nil
	}
	return diag.New(diag.Structural, ast.Pos{}, "unrecognized mid-IR statement %T", s)
}

// codegenExpr is codegen_expr from spec §4.4.
func (fb *funcBuilder) codegenExpr(e mir.Expr) (Value, error) {
	switch ex := e.(type) {
	case *mir.Identifier:
		if _, isFn := ex.Type.(ttype.Fn); isFn {
			return Named(ex.Name, ex.Global, ex.Type), nil
		}
		ptr := Named(ex.Name, ex.Global, ttype.Ptr{Elem: ex.Type})
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpLoad, Type: ex.Type, Args: []Value{ptr}})
		return res, nil

	case *mir.ParamIdentifier:
		return Named(ex.Name, false, ex.Type), nil

	case *mir.Literal:
		return litValue(ex), nil

	case *mir.StructLiteral:
		return fb.codegenAggregate(ex.Elems, ex.Type)

	case *mir.ArrayElems:
		return fb.codegenAggregate(ex.Elems, ex.Type)

	case *mir.ArrayInit:
		return zeroInit(ex.Type), nil

	case *mir.Assignment:
		val, err := fb.codegenExpr(ex.Value)
		if err != nil {
			return Value{}, err
		}
		ptr := Named(ex.Name, false, ttype.Ptr{Elem: ex.Type})
		fb.push(Instr{Result: noValue, Op: OpStore, Type: ex.Type, Args: []Value{val, ptr}})
		return val, nil

	case *mir.Write:
		ptr, err := fb.codegenExpr(ex.Ptr)
		if err != nil {
			return Value{}, err
		}
		val, err := fb.codegenExpr(ex.Value)
		if err != nil {
			return Value{}, err
		}
		fb.push(Instr{Result: noValue, Op: OpStore, Type: ex.Type, Args: []Value{val, ptr}})
		return val, nil

	case *mir.FunctionCall:
		callee, err := fb.codegenExpr(ex.Callee)
		if err != nil {
			return Value{}, err
		}
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			v, err := fb.codegenExpr(a)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		res := noValue
		if _, void := ex.Type.(ttype.Void); !void {
			res = fb.newTemp(ex.Type)
		}
		fb.push(Instr{Result: res, Op: OpCall, Type: ex.Type, Callee: callee, Args: args, ArgTypes: ex.ArgTypes})
		return res, nil

	case *mir.BinOp:
		return fb.codegenBinOp(ex)

	case *mir.UnOp:
		return fb.codegenUnOp(ex)

	case *mir.AddressOf:
		return fb.codegenAddr(ex.Operand)

	case *mir.ItoF:
		return fb.codegenCast(OpItoF, ex.Operand, ex.Type, ex.Signed)
	case *mir.FtoI:
		return fb.codegenCast(OpFtoI, ex.Operand, ex.Type, ex.Signed)
	case *mir.BitCast:
		return fb.codegenCast(OpBitCast, ex.Operand, ex.Type, false)
	case *mir.PtoI:
		return fb.codegenCast(OpPtoI, ex.Operand, ex.Type, false)
	case *mir.ItoP:
		return fb.codegenCast(OpItoP, ex.Operand, ex.Type, false)
	case *mir.Trunc:
		return fb.codegenCast(OpTrunc, ex.Operand, ex.Type, false)
	case *mir.Ext:
		return fb.codegenCast(OpExt, ex.Operand, ex.Type, ex.Signed)

	case *mir.StructAccess:
		base, err := fb.codegenExpr(ex.Base)
		if err != nil {
			return Value{}, err
		}
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpExtractValue, Type: ex.Type, Args: []Value{base}, Index: ex.Index})
		return res, nil

	case *mir.GetElemPtr:
		base, err := fb.codegenExpr(ex.Base)
		if err != nil {
			return Value{}, err
		}
		args := make([]Value, 0, len(ex.Indices)+1)
		args = append(args, base)
		for _, idxE := range ex.Indices {
			idx, err := fb.codegenExpr(idxE)
			if err != nil {
				return Value{}, err
			}
			args = append(args, idx)
		}
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpGEP, Type: ex.Type, Args: args})
		return res, nil

	case *mir.StructAssign:
		return fb.codegenStructAssign(ex)

	case *mir.Temporary:
		if fb.scratch == nil {
			return Value{}, diag.New(diag.Structural, ast.Pos{}, "scratch struct value referenced outside a struct assignment")
		}
		return *fb.scratch, nil
	}
	return Value{}, diag.New(diag.Structural, ast.Pos{}, "unrecognized mid-IR expression %T", e)
}

// codegenAggregate builds a struct/array value by chained insertvalue from
// Undef, the standard SSA idiom for a constant-shaped composite literal.
func (fb *funcBuilder) codegenAggregate(elems []mir.Expr, t ttype.Type) (Value, error) {
	agg := undef(t)
	for i, el := range elems {
		v, err := fb.codegenExpr(el)
		if err != nil {
			return Value{}, err
		}
		res := fb.newTemp(t)
		fb.push(Instr{Result: res, Op: OpInsertValue, Type: t, Args: []Value{agg, v}, Index: i})
		agg = res
	}
	return agg, nil
}

func (fb *funcBuilder) codegenBinOp(ex *mir.BinOp) (Value, error) {
	lhs, err := fb.codegenExpr(ex.Lhs)
	if err != nil {
		return Value{}, err
	}
	rhs, err := fb.codegenExpr(ex.Rhs)
	if err != nil {
		return Value{}, err
	}
	op, ok := binOpcode(ast.BinOp(ex.Op))
	if !ok {
		return Value{}, diag.New(diag.Structural, ast.Pos{}, "unrecognized binary operator")
	}
	res := fb.newTemp(ex.Type)
	fb.push(Instr{Result: res, Op: op, Type: ex.Type, Args: []Value{lhs, rhs}})
	return res, nil
}

func binOpcode(op ast.BinOp) (Op, bool) {
	switch op {
	case ast.Add:
		return OpAdd, true
	case ast.Sub:
		return OpSub, true
	case ast.Mul:
		return OpMul, true
	case ast.Div:
		return OpDiv, true
	case ast.Rem:
		return OpRem, true
	case ast.Eq:
		return OpEq, true
	case ast.Lt:
		return OpLt, true
	case ast.Gt:
		return OpGt, true
	case ast.And, ast.BitAnd:
		return OpAnd, true
	case ast.Or, ast.BitOr:
		return OpOr, true
	case ast.BitXor:
		return OpXor, true
	case ast.Shl:
		return OpShl, true
	case ast.Shr:
		return OpShr, true
	}
	return 0, false
}

func (fb *funcBuilder) codegenUnOp(ex *mir.UnOp) (Value, error) {
	v, err := fb.codegenExpr(ex.Operand)
	if err != nil {
		return Value{}, err
	}
	switch ast.UnOp(ex.Op) {
	case ast.Neg:
		if ttype.IsFloatType(ex.Type) {
			res := fb.newTemp(ex.Type)
			fb.push(Instr{Result: res, Op: OpFNeg, Type: ex.Type, Args: []Value{v}})
			return res, nil
		}
		zero := litValue(&mir.Literal{Kind: mir.IntLit, Type: ex.Type})
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpSub, Type: ex.Type, Args: []Value{zero, v}})
		return res, nil

	case ast.Not:
		one := litValue(&mir.Literal{Kind: mir.BoolLit, IntVal: 1, BoolVal: true, Type: ex.Type})
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpXor, Type: ex.Type, Args: []Value{v, one}})
		return res, nil

	case ast.BitNot:
		allOnes := litValue(&mir.Literal{Kind: mir.IntLit, IntVal: -1, Type: ex.Type})
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpXor, Type: ex.Type, Args: []Value{v, allOnes}})
		return res, nil

	case ast.Deref:
		res := fb.newTemp(ex.Type)
		fb.push(Instr{Result: res, Op: OpLoad, Type: ex.Type, Args: []Value{v}})
		return res, nil
	}
	return Value{}, diag.New(diag.Structural, ast.Pos{}, "unrecognized unary operator")
}

func (fb *funcBuilder) codegenCast(op Op, operand mir.Expr, t ttype.Type, signed bool) (Value, error) {
	v, err := fb.codegenExpr(operand)
	if err != nil {
		return Value{}, err
	}
	res := fb.newTemp(t)
	fb.push(Instr{Result: res, Op: op, Type: t, Args: []Value{v}, Signed: signed})
	return res, nil
}

// codegenAddr is the address-of path (spec §4.4): elided entirely for
// `&*e` and for bare identifiers (already `ptr`-valued in memory); for a
// StructAccess chain it recurses, turning `&s.f.g` into a GEP chain rooted
// at the base's address. Anything else denotes a temporary with no memory
// address, which is an error.
func (fb *funcBuilder) codegenAddr(e mir.Expr) (Value, error) {
	switch ex := e.(type) {
	case *mir.Identifier:
		return Named(ex.Name, ex.Global, ttype.Ptr{Elem: ex.Type}), nil

	case *mir.UnOp:
		if ast.UnOp(ex.Op) == ast.Deref {
			return fb.codegenExpr(ex.Operand)
		}

	case *mir.StructAccess:
		baseAddr, err := fb.codegenAddr(ex.Base)
		if err != nil {
			return Value{}, err
		}
		zero := litValue(&mir.Literal{Kind: mir.IntLit, Type: ttype.Int{Width: 32}})
		idx := litValue(&mir.Literal{Kind: mir.IntLit, IntVal: int64(ex.Index), Type: ttype.Int{Width: 32}})
		resT := ttype.Ptr{Elem: ex.Type}
		res := fb.newTemp(resT)
		fb.push(Instr{Result: res, Op: OpGEP, Type: resT, Args: []Value{baseAddr, zero, idx}})
		return res, nil

	case *mir.GetElemPtr, *mir.AddressOf:
		return fb.codegenExpr(e)
	}
	return Value{}, diag.New(diag.Structural, ast.Pos{}, "cannot take address of a temporary value")
}

// codegenStructAssign implements `{f1,f2} = r` (spec §4.4's "Struct
// assignment" contract): evaluate the base once, thread it as the scratch
// struct value for each field's re-assignment, then yield the base's value
// as the updated composite.
func (fb *funcBuilder) codegenStructAssign(ex *mir.StructAssign) (Value, error) {
	base, err := fb.codegenExpr(ex.Base)
	if err != nil {
		return Value{}, err
	}
	saved := fb.scratch
	fb.scratch = &base
	for _, field := range ex.Fields {
		if _, err := fb.codegenExpr(field); err != nil {
			fb.scratch = saved
			return Value{}, err
		}
	}
	fb.scratch = saved
	return base, nil
}

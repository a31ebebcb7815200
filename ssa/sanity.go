package ssa

import "fmt"

// sanityCheck is an internal self-check over a just-built Func, grounded on
// go/ssa/sanity.go's mustSanityCheck discipline: a violation here means C5
// itself produced malformed SSA, not that the input program was ill-typed
// (ill-typed input is rejected earlier, by check, as a returned error) —
// so sanityCheck panics rather than returning an error. It enforces spec
// §8's structural invariants 2-4: every block ends in exactly one
// terminator, every Temporary is used only after its defining instruction,
// and no two allocas in the same function share a name.
func sanityCheck(f *Func) {
	labels := map[string]bool{}
	namedAllocas := map[string]bool{}
	defined := map[int]bool{}

	terminated := false // the entry block needs no leading label
	for i, instr := range f.Instrs {
		switch instr.Op {
		case OpLabel:
			if labels[instr.Label] {
				panic(fmt.Sprintf("ssa: function %s: duplicate label %q", f.Name, instr.Label))
			}
			labels[instr.Label] = true
			terminated = false
		case OpBr, OpBrCond, OpRet:
			if terminated {
				panic(fmt.Sprintf("ssa: function %s: instruction %d: two terminators in a row with no intervening label", f.Name, i))
			}
			terminated = true
		default:
			if terminated {
				panic(fmt.Sprintf("ssa: function %s: instruction %d (op %d) follows a terminator without an intervening label", f.Name, i, instr.Op))
			}
		}

		if instr.Op == OpAlloca && instr.Result.Kind == NamedValue {
			if namedAllocas[instr.Result.Name] {
				panic(fmt.Sprintf("ssa: function %s: duplicate local %q", f.Name, instr.Result.Name))
			}
			namedAllocas[instr.Result.Name] = true
		}

		checkUse := func(v Value) {
			if v.Kind == TempValue && !defined[v.Temp] {
				panic(fmt.Sprintf("ssa: function %s: temporary %%__tmp.%d used before its defining instruction", f.Name, v.Temp))
			}
		}
		for _, arg := range instr.Args {
			checkUse(arg)
		}
		checkUse(instr.Callee)

		if instr.Result.Kind == TempValue {
			defined[instr.Result.Temp] = true
		}
	}
	if !terminated {
		panic(fmt.Sprintf("ssa: function %s falls off its last block without a terminator", f.Name))
	}
}

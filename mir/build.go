package mir

import (
	"fmt"
	"strconv"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/symtab"
	"github.com/programming-zone/silk/ttype"
	"github.com/programming-zone/silk/types"
)

// progBuilder holds state shared across the whole translation unit: the
// pool of synthetic string globals emitted as literals are encountered
// (spec §4.3's "String literals" contract).
type progBuilder struct {
	strings   []*StringGlobal
	stringSeq int
}

func (pb *progBuilder) internString(prefix, s string) string {
	name := fmt.Sprintf("%s.str.%d", prefix, pb.stringSeq)
	pb.stringSeq++
	pb.strings = append(pb.strings, &StringGlobal{Name: name, Value: s})
	return name
}

// ConstructIRTree is C4: it builds the mid-IR forest from prog, consulting
// the scope tree symtab built and check already validated and (for
// inferred declarations) backfilled with derived types. Per the
// determinism invariant (spec §5), roots are walked in parse-tree order,
// never via any map iteration.
func ConstructIRTree(prog *ast.Program, tree *symtab.Tree) ([]Root, error) {
	pb := &progBuilder{}
	var out []Root
	for _, r := range prog.Roots {
		before := len(pb.strings)
		node, err := buildRoot(pb, tree, r)
		if err != nil {
			return nil, err
		}
		for _, sg := range pb.strings[before:] {
			out = append(out, sg)
		}
		if node != nil {
			out = append(out, node)
		}
	}
	return out, nil
}

func buildRoot(pb *progBuilder, tree *symtab.Tree, r ast.Root) (Root, error) {
	switch d := r.(type) {
	case *ast.TypeFwdDef:
		// A stub with no closing TypeDef never reaches the emitter; a
		// reference to it as ttype.Opaque is only meaningful for programs
		// that went on to close it.
		return nil, nil

	case *ast.TypeDef:
		return &TypeDef{Type: ttype.FromSource(d.Type), Name: d.Name}, nil

	case *ast.ValDecl:
		b, _ := tree.Top.Lookup(d.VD.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, d.Pos, "undefined identifier %q", d.VD.Name)
		}
		lit, err := buildConstLiteral(pb, d.VD.Name, d.VD.Init)
		if err != nil {
			return nil, err
		}
		return &StaticDecl{Type: ttype.FromSource(b.Type), Public: d.Public, Name: d.VD.Name, Literal: lit}, nil

	case *ast.FuncFwdDecl:
		return &FuncFwdDecl{Ret: ttype.FromSource(d.Ret), Name: d.Name, Params: convertParams(d.Params), Extern: d.Extern}, nil

	case *ast.FuncDecl:
		return buildFunc(pb, tree, d)
	}
	return nil, diag.New(diag.Structural, r.Position(), "unrecognized top-level declaration %T", r)
}

// buildConstLiteral evaluates a static initializer, which must be a
// literal (Open Question 2: static-initializer constant folding beyond a
// bare literal is rejected as Unsupported, see DESIGN.md).
func buildConstLiteral(pb *progBuilder, declName string, e ast.Expr) (*Literal, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		if ex.Unsigned {
			return &Literal{Kind: IntLit, IntVal: ex.Value, Type: ttype.UInt{Width: ex.Width}}, nil
		}
		return &Literal{Kind: IntLit, IntVal: ex.Value, Type: ttype.Int{Width: ex.Width}}, nil
	case *ast.FloatLit:
		return &Literal{Kind: FloatLit, FltVal: ex.Value, Type: ttype.Float{Width: ex.Width}}, nil
	case *ast.BoolLit:
		v := int64(0)
		if ex.Value {
			v = 1
		}
		return &Literal{Kind: BoolLit, IntVal: v, BoolVal: ex.Value, Type: ttype.Int{Width: 1}}, nil
	case *ast.StringLit:
		g := pb.internString(declName, ex.Value)
		return &Literal{Kind: GlobalStringLit, Global: g, Type: ttype.Ptr{Elem: ttype.Int{Width: 8}}}, nil
	}
	return nil, diag.New(diag.Unsupported, e.Position(), "non-constant static initializer for %q", declName)
}

func convertParams(ps []ast.Param) []Param {
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{Name: p.Name, Type: ttype.FromSource(p.Type)}
	}
	return out
}

// fnBuilder builds one function's mid-IR body. scopePath maps every scope
// visited so far to its dotted ordinal path, so an identifier reference
// anywhere in the body can mangle its name without re-walking the tree
// (spec §4.1/§4.3's shared ordinal-numbering contract with symtab/check).
type fnBuilder struct {
	pb        *progBuilder
	tree      *symtab.Tree
	funcName  string
	scopePath map[*symtab.Scope]string
}

func buildFunc(pb *progBuilder, tree *symtab.Tree, d *ast.FuncDecl) (Root, error) {
	b, _ := tree.Top.Lookup(d.Name)
	if b == nil || b.Inner == nil {
		return nil, diag.New(diag.Resolution, d.Pos, "function %q has no attached scope", d.Name)
	}
	fnScope := b.Inner
	fb := &fnBuilder{pb: pb, tree: tree, funcName: d.Name, scopePath: map[*symtab.Scope]string{fnScope: ""}}

	var body []Stmt
	for _, p := range d.Params {
		t := ttype.FromSource(p.Type)
		body = append(body, &Decl{
			Type:  t,
			Name:  fb.funcName + "." + p.Name,
			Value: &ParamIdentifier{Name: p.Name, Type: t},
		})
	}

	rest, err := fb.mapStmts(d.Body, fnScope)
	if err != nil {
		return nil, err
	}
	body = append(body, rest...)

	retT := ttype.FromSource(d.Ret)
	if _, void := retT.(ttype.Void); void && !endsInReturn(body) {
		body = append(body, &Return{})
	}

	return &FuncDecl{Ret: retT, Public: d.Public, Name: d.Name, Params: convertParams(d.Params), Body: body}, nil
}

func endsInReturn(body []Stmt) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*Return)
	return ok
}

func (fb *fnBuilder) localName(path, name string) string {
	if path == "" {
		return fb.funcName + "." + name
	}
	return fb.funcName + "." + path + "." + name
}

func (fb *fnBuilder) blockLabel(path string) string {
	return fb.funcName + "." + path
}

func childKey(parentKey string, ordinal int) string {
	if parentKey == "" {
		return strconv.Itoa(ordinal)
	}
	return parentKey + "." + strconv.Itoa(ordinal)
}

// resolveName mangles name per spec §4.3: a global keeps its bare source
// name (emitted as `@"name"`); a local gets the dotted `<func>.<path>`
// prefix of the scope that actually declared it (emitted as `%"name"`).
func (fb *fnBuilder) resolveName(scope *symtab.Scope, name string) (string, bool, *symtab.Binding) {
	b, owner := scope.Lookup(name)
	if b == nil {
		return "", false, nil
	}
	if owner == fb.tree.Top {
		return name, true, b
	}
	path := fb.scopePath[owner]
	return fb.localName(path, name), false, b
}

// mapStmts mirrors check.Checker.checkBlock's descent exactly: the same
// left-to-right ordinal walk, re-entering the scope tree symtab already
// built rather than constructing scopes afresh (spec §4.1).
func (fb *fnBuilder) mapStmts(stmts []ast.Stmt, scope *symtab.Scope) ([]Stmt, error) {
	path := fb.scopePath[scope]
	var out []Stmt
	ordinal := 0
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.EmptyStmt:
			out = append(out, &EmptyStmt{})

		case *ast.DeclStmt:
			d, err := fb.mapDecl(scope, path, st)
			if err != nil {
				return nil, err
			}
			out = append(out, d)

		case *ast.ExprStmt:
			e, err := fb.mapExpr(scope, st.Expr)
			if err != nil {
				return nil, err
			}
			out = append(out, &ExprStmt{Value: e})

		case *ast.BlockStmt:
			childPath := childKey(path, ordinal)
			child := scope.Child(strconv.Itoa(ordinal))
			fb.scopePath[child] = childPath
			ordinal++
			inner, err := fb.mapStmts(st.Stmts, child)
			if err != nil {
				return nil, err
			}
			out = append(out, &Block{Label: fb.blockLabel(childPath), Stmts: inner})

		case *ast.IfElseStmt:
			cond, err := fb.mapExpr(scope, st.Cond)
			if err != nil {
				return nil, err
			}
			ifPath := childKey(path, ordinal)
			thenScope := scope.Child(strconv.Itoa(ordinal))
			fb.scopePath[thenScope] = ifPath
			ordinal++
			thenStmts, err := fb.mapStmts(st.Then, thenScope)
			if err != nil {
				return nil, err
			}
			elseLabel := ""
			var elseStmts []Stmt
			if st.HasElse {
				elsePath := childKey(path, ordinal)
				elseScope := scope.Child(strconv.Itoa(ordinal))
				fb.scopePath[elseScope] = elsePath
				ordinal++
				elseStmts, err = fb.mapStmts(st.Else, elseScope)
				if err != nil {
					return nil, err
				}
				elseLabel = fb.blockLabel(elsePath)
			}
			out = append(out, &IfElse{IfLabel: fb.blockLabel(ifPath), ElseLabel: elseLabel, Cond: cond, Then: thenStmts, Else: elseStmts})

		case *ast.WhileStmt:
			cond, err := fb.mapExpr(scope, st.Cond)
			if err != nil {
				return nil, err
			}
			bodyPath := childKey(path, ordinal)
			bodyScope := scope.Child(strconv.Itoa(ordinal))
			fb.scopePath[bodyScope] = bodyPath
			ordinal++
			bodyStmts, err := fb.mapStmts(st.Body, bodyScope)
			if err != nil {
				return nil, err
			}
			out = append(out, &While{Label: fb.blockLabel(bodyPath), Cond: cond, Body: bodyStmts})

		case *ast.ForStmt:
			forPath := childKey(path, ordinal)
			forScope := scope.Child(strconv.Itoa(ordinal))
			fb.scopePath[forScope] = forPath
			ordinal++

			var declNode *Decl
			if st.Decl != nil {
				d, err := fb.mapDecl(forScope, forPath, st.Decl)
				if err != nil {
					return nil, err
				}
				declNode = d
			}
			var condExpr, incExpr Expr
			if st.Cond != nil {
				v, err := fb.mapExpr(forScope, st.Cond)
				if err != nil {
					return nil, err
				}
				condExpr = v
			}
			if st.Inc != nil {
				v, err := fb.mapExpr(forScope, st.Inc)
				if err != nil {
					return nil, err
				}
				incExpr = v
			}
			bodyScope := forScope.Child("body")
			fb.scopePath[bodyScope] = forPath
			bodyStmts, err := fb.mapStmts(st.Body, bodyScope)
			if err != nil {
				return nil, err
			}
			out = append(out, &For{Label: fb.blockLabel(forPath), Decl: declNode, Cond: condExpr, Inc: incExpr, Body: bodyStmts})

		case *ast.ContinueStmt:
			out = append(out, &Continue{})

		case *ast.BreakStmt:
			out = append(out, &Break{})

		case *ast.ReturnStmt:
			if st.HasExpr {
				v, err := fb.mapExpr(scope, st.Expr)
				if err != nil {
					return nil, err
				}
				out = append(out, &Return{Value: v})
			} else {
				out = append(out, &Return{})
			}
		}
	}
	return out, nil
}

func (fb *fnBuilder) mapDecl(scope *symtab.Scope, path string, st *ast.DeclStmt) (*Decl, error) {
	b, _ := scope.Lookup(st.VD.Name)
	if b == nil {
		return nil, diag.New(diag.Resolution, st.Pos, "undefined identifier %q", st.VD.Name)
	}
	val, err := fb.mapExpr(scope, st.VD.Init)
	if err != nil {
		return nil, err
	}
	return &Decl{Type: ttype.FromSource(b.Type), Name: fb.localName(path, st.VD.Name), Value: val}, nil
}

// mapExpr is map_expr from spec §4.3.
func (fb *fnBuilder) mapExpr(scope *symtab.Scope, e ast.Expr) (Expr, error) {
	switch ex := e.(type) {
	case *ast.Identifier:
		name, global, b := fb.resolveName(scope, ex.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, ex.Pos, "undefined identifier %q", ex.Name)
		}
		return &Identifier{Name: name, Global: global, Type: ttype.FromSource(b.Type)}, nil

	case *ast.IntLit:
		if ex.Unsigned {
			return &Literal{Kind: IntLit, IntVal: ex.Value, Type: ttype.UInt{Width: ex.Width}}, nil
		}
		return &Literal{Kind: IntLit, IntVal: ex.Value, Type: ttype.Int{Width: ex.Width}}, nil

	case *ast.FloatLit:
		return &Literal{Kind: FloatLit, FltVal: ex.Value, Type: ttype.Float{Width: ex.Width}}, nil

	case *ast.BoolLit:
		v := int64(0)
		if ex.Value {
			v = 1
		}
		return &Literal{Kind: BoolLit, IntVal: v, BoolVal: ex.Value, Type: ttype.Int{Width: 1}}, nil

	case *ast.StringLit:
		g := fb.pb.internString(fb.funcName, ex.Value)
		return &Literal{Kind: GlobalStringLit, Global: g, Type: ttype.Ptr{Elem: ttype.Int{Width: 8}}}, nil

	case *ast.BinaryExpr:
		return fb.mapBinOp(scope, ex)

	case *ast.UnaryExpr:
		return fb.mapUnOp(scope, ex)

	case *ast.CastExpr:
		srcT, err := sourceTypeOf(scope, ex.Expr)
		if err != nil {
			return nil, err
		}
		operand, err := fb.mapExpr(scope, ex.Expr)
		if err != nil {
			return nil, err
		}
		return buildCast(operand, srcT, ex.Type)

	case *ast.CallExpr:
		return fb.mapCall(scope, ex)

	case *ast.IndexExpr:
		return fb.mapIndex(scope, ex)

	case *ast.MemberExpr:
		return fb.mapMember(scope, ex)

	case *ast.StructLit:
		elems := make([]Expr, len(ex.Elems))
		fields := make([]types.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := fb.mapExpr(scope, el)
			if err != nil {
				return nil, err
			}
			t, err := sourceTypeOf(scope, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
			fields[i] = t
		}
		return &StructLiteral{Elems: elems, Type: ttype.FromSource(types.StructType{Fields: fields})}, nil

	case *ast.ArrayLit:
		elems := make([]Expr, len(ex.Elems))
		for i, el := range ex.Elems {
			v, err := fb.mapExpr(scope, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		elemT, err := sourceTypeOf(scope, ex.Elems[0])
		if err != nil {
			return nil, err
		}
		return &ArrayElems{Elems: elems, Type: ttype.Array{Len: int64(len(ex.Elems)), Elem: ttype.FromSource(elemT)}}, nil

	case *ast.AssignExpr:
		return fb.mapAssign(scope, ex)

	case *ast.TemplateInstance:
		return nil, diag.New(diag.Unsupported, ex.Pos, "template instantiation reached backend (must be monomorphised first)")
	}
	return nil, diag.New(diag.Structural, e.Position(), "unrecognized expression node %T", e)
}

func (fb *fnBuilder) mapBinOp(scope *symtab.Scope, ex *ast.BinaryExpr) (Expr, error) {
	lhs, err := fb.mapExpr(scope, ex.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := fb.mapExpr(scope, ex.Rhs)
	if err != nil {
		return nil, err
	}
	resT, err := binOpType(scope, ex)
	if err != nil {
		return nil, err
	}
	t := ttype.FromSource(resT)

	// Pointer arithmetic lowers to GEP, not integer add/sub (spec §4.3).
	if ex.Op == ast.Add || ex.Op == ast.Sub {
		lt, err := sourceTypeOf(scope, ex.Lhs)
		if err != nil {
			return nil, err
		}
		if types.IsPointer(types.Resolve(lt)) {
			idx := rhs
			if ex.Op == ast.Sub {
				idx = &UnOp{Op: int(ast.Neg), Operand: rhs, Type: rhs.ResultType()}
			}
			return &GetElemPtr{Base: lhs, Indices: []Expr{idx}, Type: t}, nil
		}
		rt, err := sourceTypeOf(scope, ex.Rhs)
		if err != nil {
			return nil, err
		}
		if types.IsPointer(types.Resolve(rt)) && ex.Op == ast.Add {
			return &GetElemPtr{Base: rhs, Indices: []Expr{lhs}, Type: t}, nil
		}
	}

	return &BinOp{Op: int(ex.Op), Lhs: lhs, Rhs: rhs, Type: t}, nil
}

func (fb *fnBuilder) mapUnOp(scope *symtab.Scope, ex *ast.UnaryExpr) (Expr, error) {
	resT, err := unOpType(scope, ex)
	if err != nil {
		return nil, err
	}
	t := ttype.FromSource(resT)

	if ex.Op == ast.Addr {
		return fb.mapAddressOf(scope, ex.Operand, t)
	}

	operand, err := fb.mapExpr(scope, ex.Operand)
	if err != nil {
		return nil, err
	}
	return &UnOp{Op: int(ex.Op), Operand: operand, Type: t}, nil
}

// mapAddressOf elides `&*e` and builds an AddressOf node otherwise; the
// StructAccess-chain -> GEP-chain rewrite for `&s.f.g` is C5's job (spec
// §4.4), so mir just wraps whatever map_expr(e) produced.
func (fb *fnBuilder) mapAddressOf(scope *symtab.Scope, operand ast.Expr, t ttype.Type) (Expr, error) {
	if u, ok := operand.(*ast.UnaryExpr); ok && u.Op == ast.Deref {
		return fb.mapExpr(scope, u.Operand)
	}
	inner, err := fb.mapExpr(scope, operand)
	if err != nil {
		return nil, err
	}
	return &AddressOf{Operand: inner, Type: t}, nil
}

// mapIndex is the read path for `a[i]`: `*GEP(&a, [0, i])` for an array
// base, `*GEP(p, [i])` for a pointer base (spec §4.3).
func (fb *fnBuilder) mapIndex(scope *symtab.Scope, ex *ast.IndexExpr) (Expr, error) {
	gep, elemT, err := fb.indexGEP(scope, ex)
	if err != nil {
		return nil, err
	}
	return &UnOp{Op: int(ast.Deref), Operand: gep, Type: elemT}, nil
}

// indexGEP builds the address-computing GEP for an IndexExpr, shared
// between the read path (mapIndex) and the LValue path (mapAssign). It
// returns the pointer expression; the caller decides whether to wrap it in
// a Deref (read) or a Write (store).
func (fb *fnBuilder) indexGEP(scope *symtab.Scope, ex *ast.IndexExpr) (Expr, ttype.Type, error) {
	baseT, err := sourceTypeOf(scope, ex.Base)
	if err != nil {
		return nil, nil, err
	}
	idx, err := fb.mapExpr(scope, ex.Index)
	if err != nil {
		return nil, nil, err
	}
	base, err := fb.mapExpr(scope, ex.Base)
	if err != nil {
		return nil, nil, err
	}
	switch bt := types.Resolve(baseT).(type) {
	case types.ArrayType:
		elemT := ttype.FromSource(bt.Elem)
		addr := &AddressOf{Operand: base, Type: ttype.Ptr{Elem: ttype.FromSource(baseT)}}
		zero := &Literal{Kind: IntLit, IntVal: 0, Type: ttype.Int{Width: 32}}
		return &GetElemPtr{Base: addr, Indices: []Expr{zero, idx}, Type: ttype.Ptr{Elem: elemT}}, elemT, nil
	case types.PointerType:
		elemT := ttype.FromSource(bt.Elem)
		return &GetElemPtr{Base: base, Indices: []Expr{idx}, Type: ttype.Ptr{Elem: elemT}}, elemT, nil
	case types.MutPointerType:
		elemT := ttype.FromSource(bt.Elem)
		return &GetElemPtr{Base: base, Indices: []Expr{idx}, Type: ttype.Ptr{Elem: elemT}}, elemT, nil
	}
	return nil, nil, diag.New(diag.Structural, ex.Pos, "index of non-array type %s", baseT)
}

func (fb *fnBuilder) mapMember(scope *symtab.Scope, ex *ast.MemberExpr) (Expr, error) {
	baseT, err := sourceTypeOf(scope, ex.Base)
	if err != nil {
		return nil, err
	}
	idx, fieldT, err := memberFieldIndex(types.Resolve(baseT), ex)
	if err != nil {
		return nil, err
	}
	base, err := fb.mapExpr(scope, ex.Base)
	if err != nil {
		return nil, err
	}
	return &StructAccess{Base: base, Index: idx, IsIndex: ex.IsIndex, Type: ttype.FromSource(fieldT)}, nil
}

func (fb *fnBuilder) mapCall(scope *symtab.Scope, ex *ast.CallExpr) (Expr, error) {
	// "Callable but a-type-name": rewritten to StructInit or TypeCast (spec
	// §4.3).
	if id, ok := ex.Callee.(*ast.Identifier); ok {
		if b, _ := scope.Lookup(id.Name); b != nil && b.Kind == symtab.TypeBinding {
			return fb.mapTypeCall(scope, b, ex)
		}
	}

	callee, err := fb.mapExpr(scope, ex.Callee)
	if err != nil {
		return nil, err
	}
	calleeT, err := sourceTypeOf(scope, ex.Callee)
	if err != nil {
		return nil, err
	}
	ft, ok := types.Resolve(calleeT).(types.FuncType)
	if !ok {
		return nil, diag.New(diag.Typing, ex.Pos, "call of non-function type %s", calleeT)
	}
	args := make([]Expr, len(ex.Args))
	argTypes := make([]ttype.Type, len(ex.Args))
	for i, a := range ex.Args {
		v, err := fb.mapExpr(scope, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
		argTypes[i] = ttype.FromSource(ft.Params[i])
	}
	return &FunctionCall{Callee: callee, ArgTypes: argTypes, Args: args, Type: ttype.FromSource(ft.Ret)}, nil
}

func (fb *fnBuilder) mapTypeCall(scope *symtab.Scope, b *symtab.Binding, ex *ast.CallExpr) (Expr, error) {
	resolved := types.Resolve(b.Type)
	switch resolved.(type) {
	case types.StructType:
		elems := make([]Expr, len(ex.Args))
		for i, a := range ex.Args {
			v, err := fb.mapExpr(scope, a)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &StructLiteral{Elems: elems, Type: ttype.FromSource(b.Type)}, nil
	case types.StructLabeledType:
		elems := make([]Expr, len(ex.Args))
		for i, a := range ex.Args {
			v, err := fb.mapExpr(scope, a)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &StructLiteral{Elems: elems, Type: ttype.FromSource(b.Type)}, nil
	default:
		srcT, err := sourceTypeOf(scope, ex.Args[0])
		if err != nil {
			return nil, err
		}
		operand, err := fb.mapExpr(scope, ex.Args[0])
		if err != nil {
			return nil, err
		}
		return buildCast(operand, srcT, b.Type)
	}
}

// buildCast dispatches to the one of the seven explicit cast nodes that
// TypeCast(T, e) picks, per spec §4.3's "implicit casts: none" contract.
func buildCast(operand Expr, from, to types.Type) (Expr, error) {
	ft, tt := ttype.FromSource(from), ttype.FromSource(to)
	fr, tr := types.Resolve(from), types.Resolve(to)

	switch {
	case types.IsInteger(fr) && isSourceFloat(tr):
		return &ItoF{Operand: operand, Signed: types.IsInteger(fr) && !isUnsigned(fr), Type: tt}, nil

	case isSourceFloat(fr) && types.IsInteger(tr):
		return &FtoI{Operand: operand, Signed: !isUnsigned(tr), Type: tt}, nil

	case isSourceFloat(fr) && isSourceFloat(tr):
		fw, tw := floatWidth(fr), floatWidth(tr)
		if tw < fw {
			return &Trunc{Operand: operand, Type: tt}, nil
		}
		if tw > fw {
			return &Ext{Operand: operand, Type: tt}, nil
		}
		return &BitCast{Operand: operand, Type: tt}, nil

	case types.IsInteger(fr) && types.IsInteger(tr):
		// cast to i1 expands to `e != 0` (spec §4.3), built as `!(e == 0)`
		// since the operator set has no not-equal.
		if w, ok := tr.(types.IntType); ok && w.Width == 1 {
			zero := &Literal{Kind: IntLit, IntVal: 0, Type: ft}
			eq := &BinOp{Op: int(ast.Eq), Lhs: operand, Rhs: zero, Type: ttype.Int{Width: 1}}
			return &UnOp{Op: int(ast.Not), Operand: eq, Type: ttype.Int{Width: 1}}, nil
		}
		if w, ok := tr.(types.UIntType); ok && w.Width == 1 {
			zero := &Literal{Kind: IntLit, IntVal: 0, Type: ft}
			eq := &BinOp{Op: int(ast.Eq), Lhs: operand, Rhs: zero, Type: ttype.Int{Width: 1}}
			return &UnOp{Op: int(ast.Not), Operand: eq, Type: ttype.Int{Width: 1}}, nil
		}
		fw, tw := intWidth(fr), intWidth(tr)
		if tw < fw {
			return &Trunc{Operand: operand, Type: tt}, nil
		}
		if tw > fw {
			return &Ext{Operand: operand, Signed: !isUnsigned(fr), Type: tt}, nil
		}
		return &BitCast{Operand: operand, Type: tt}, nil

	case types.IsInteger(fr) && types.IsPointer(tr):
		return &ItoP{Operand: operand, Type: tt}, nil

	case types.IsPointer(fr) && types.IsInteger(tr):
		return &PtoI{Operand: operand, Type: tt}, nil

	case types.IsPointer(fr) && types.IsPointer(tr):
		return &BitCast{Operand: operand, Type: tt}, nil
	}
	return nil, diag.New(diag.Typing, ast.Pos{}, "no viable cast from %s to %s", from, to)
}

func isSourceFloat(t types.Type) bool {
	_, ok := t.(types.FloatType)
	return ok
}

func isUnsigned(t types.Type) bool {
	_, ok := t.(types.UIntType)
	return ok
}

func intWidth(t types.Type) int {
	switch x := t.(type) {
	case types.IntType:
		return x.Width
	case types.UIntType:
		return x.Width
	}
	return 0
}

func floatWidth(t types.Type) int {
	if x, ok := t.(types.FloatType); ok {
		return x.Width
	}
	return 0
}

// mapAssign implements the LValue-resolution table from spec §4.3.
func (fb *fnBuilder) mapAssign(scope *symtab.Scope, ex *ast.AssignExpr) (Expr, error) {
	switch lhs := ex.Lhs.(type) {
	case *ast.Identifier:
		rhs, err := fb.mapExpr(scope, ex.Rhs)
		if err != nil {
			return nil, err
		}
		name, _, b := fb.resolveName(scope, lhs.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, lhs.Pos, "undefined identifier %q", lhs.Name)
		}
		return &Assignment{Name: name, Value: rhs, Type: ttype.FromSource(b.Type)}, nil

	case *ast.UnaryExpr:
		if lhs.Op != ast.Deref {
			return nil, diag.New(diag.Structural, lhs.Pos, "invalid lvalue")
		}
		ptr, err := fb.mapExpr(scope, lhs.Operand)
		if err != nil {
			return nil, err
		}
		rhs, err := fb.mapExpr(scope, ex.Rhs)
		if err != nil {
			return nil, err
		}
		return &Write{Ptr: ptr, Value: rhs, Type: rhs.ResultType()}, nil

	case *ast.IndexExpr:
		ptr, _, err := fb.indexGEP(scope, lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := fb.mapExpr(scope, ex.Rhs)
		if err != nil {
			return nil, err
		}
		return &Write{Ptr: ptr, Value: rhs, Type: rhs.ResultType()}, nil

	case *ast.MemberExpr:
		member, err := fb.mapMember(scope, lhs)
		if err != nil {
			return nil, err
		}
		addr := &AddressOf{Operand: member, Type: ttype.Ptr{Elem: member.ResultType()}}
		rhs, err := fb.mapExpr(scope, ex.Rhs)
		if err != nil {
			return nil, err
		}
		return &Write{Ptr: addr, Value: rhs, Type: rhs.ResultType()}, nil

	case *ast.StructLit:
		return fb.mapStructDestructure(scope, lhs, ex.Rhs)
	}
	return nil, diag.New(diag.Structural, ex.Pos, "invalid lvalue")
}

// mapStructDestructure implements `{f1,f2} = r` (spec §4.3/§8 S6):
// evaluate r once, then re-assign each destructured local from the
// corresponding field of a synthetic Temporary standing for r's value.
func (fb *fnBuilder) mapStructDestructure(scope *symtab.Scope, pat *ast.StructLit, rhs ast.Expr) (Expr, error) {
	rhsSrcT, err := sourceTypeOf(scope, rhs)
	if err != nil {
		return nil, err
	}
	rhsT := ttype.FromSource(rhsSrcT)
	base, err := fb.mapExpr(scope, rhs)
	if err != nil {
		return nil, err
	}
	fields := make([]*Assignment, len(pat.Elems))
	for i, el := range pat.Elems {
		id, ok := el.(*ast.Identifier)
		if !ok {
			return nil, diag.New(diag.Structural, el.Position(), "invalid lvalue in struct destructure")
		}
		name, _, b := fb.resolveName(scope, id.Name)
		if b == nil {
			return nil, diag.New(diag.Resolution, id.Pos, "undefined identifier %q", id.Name)
		}
		fieldT := ttype.FromSource(b.Type)
		access := &StructAccess{Base: &Temporary{Type: rhsT}, Index: i, IsIndex: true, Type: fieldT}
		fields[i] = &Assignment{Name: name, Value: access, Type: fieldT}
	}
	return &StructAssign{Base: base, Fields: fields, Type: rhsT}, nil
}

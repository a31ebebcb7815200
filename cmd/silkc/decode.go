package main

import (
	"encoding/json"
	"fmt"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/types"
)

// This file is the only place in the module that knows the wire format of
// a parse tree. ast.Expr/ast.Stmt/ast.Root/types.Type are closed Go
// interfaces with no JSON tags of their own (spec §6 only fixes the node
// set, not a serialization); decode here tags every object with a "node"
// (or, for types.Type, "kind") discriminator string and dispatches a type
// switch, mirroring the discriminated-union decode go/ssa/interp's own
// test harness uses for its object-graph fixtures.

type jsonPos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p jsonPos) toPos() ast.Pos { return ast.Pos{Line: p.Line, Col: p.Col} }

func nodeKind(raw json.RawMessage, key string) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var head map[string]json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", fmt.Errorf("decoding node header: %w", err)
	}
	var kind string
	if k, ok := head[key]; ok {
		if err := json.Unmarshal(k, &kind); err != nil {
			return "", fmt.Errorf("decoding %q field: %w", key, err)
		}
	}
	return kind, nil
}

func decodeProgram(raw []byte) (*ast.Program, error) {
	var wire struct {
		Roots []json.RawMessage `json:"roots"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	prog := &ast.Program{Roots: make([]ast.Root, 0, len(wire.Roots))}
	for i, r := range wire.Roots {
		root, err := decodeRoot(r)
		if err != nil {
			return nil, fmt.Errorf("root %d: %w", i, err)
		}
		prog.Roots = append(prog.Roots, root)
	}
	return prog, nil
}

func decodeRoot(raw json.RawMessage) (ast.Root, error) {
	kind, err := nodeKind(raw, "node")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "TypeDef":
		var v struct {
			Pos  jsonPos         `json:"pos"`
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		t, err := decodeType(v.Type)
		if err != nil {
			return nil, err
		}
		return &ast.TypeDef{Pos: v.Pos.toPos(), Name: v.Name, Type: t}, nil

	case "TypeFwdDef":
		var v struct {
			Pos  jsonPos `json:"pos"`
			Name string  `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.TypeFwdDef{Pos: v.Pos.toPos(), Name: v.Name}, nil

	case "ValDecl":
		var v struct {
			Pos    jsonPos      `json:"pos"`
			Public bool         `json:"public"`
			VD     jsonVD       `json:"vd"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		vd, err := v.VD.decode()
		if err != nil {
			return nil, err
		}
		return &ast.ValDecl{Pos: v.Pos.toPos(), Public: v.Public, VD: vd}, nil

	case "FuncDecl":
		var v struct {
			Pos    jsonPos           `json:"pos"`
			Public bool              `json:"public"`
			Name   string            `json:"name"`
			Params []jsonParam       `json:"params"`
			Ret    json.RawMessage   `json:"ret"`
			Body   []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		ret, err := decodeType(v.Ret)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(v.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.FuncDecl{Pos: v.Pos.toPos(), Public: v.Public, Name: v.Name, Params: params, Ret: ret, Body: body}, nil

	case "FuncFwdDecl":
		var v struct {
			Pos    jsonPos     `json:"pos"`
			Name   string      `json:"name"`
			Params []jsonParam `json:"params"`
			Ret    json.RawMessage `json:"ret"`
			Extern bool        `json:"extern"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		ret, err := decodeType(v.Ret)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(v.Params)
		if err != nil {
			return nil, err
		}
		return &ast.FuncFwdDecl{Pos: v.Pos.toPos(), Name: v.Name, Params: params, Ret: ret, Extern: v.Extern}, nil
	}
	return nil, fmt.Errorf("unrecognized root node %q", kind)
}

type jsonParam struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

func decodeParams(in []jsonParam) ([]ast.Param, error) {
	out := make([]ast.Param, len(in))
	for i, p := range in {
		t, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Param{Name: p.Name, Type: t}
	}
	return out, nil
}

type jsonVD struct {
	Pos  jsonPos         `json:"pos"`
	Mut  string          `json:"mut"`
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
	Init json.RawMessage `json:"init"`
}

func (v jsonVD) decode() (ast.VD, error) {
	mut, err := decodeMut(v.Mut)
	if err != nil {
		return ast.VD{}, err
	}
	var t ast.Type
	if len(v.Type) > 0 && string(v.Type) != "null" {
		t, err = decodeType(v.Type)
		if err != nil {
			return ast.VD{}, err
		}
	}
	init, err := decodeExpr(v.Init)
	if err != nil {
		return ast.VD{}, err
	}
	return ast.VD{Pos: v.Pos.toPos(), Mut: mut, Name: v.Name, Type: t, Init: init}, nil
}

func decodeMut(s string) (ast.Mut, error) {
	switch s {
	case "val":
		return ast.Val, nil
	case "var":
		return ast.Var, nil
	}
	return 0, fmt.Errorf("unrecognized mutability %q", s)
}

func decodeStmts(in []json.RawMessage) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, 0, len(in))
	for i, s := range in {
		st, err := decodeStmt(s)
		if err != nil {
			return nil, fmt.Errorf("stmt %d: %w", i, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func decodeStmt(raw json.RawMessage) (ast.Stmt, error) {
	kind, err := nodeKind(raw, "node")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "EmptyStmt":
		var v struct{ Pos jsonPos `json:"pos"` }
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.EmptyStmt{Pos: v.Pos.toPos()}, nil

	case "DeclStmt":
		var v struct {
			Pos jsonPos `json:"pos"`
			VD  jsonVD  `json:"vd"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		vd, err := v.VD.decode()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Pos: v.Pos.toPos(), VD: vd}, nil

	case "ExprStmt":
		var v struct {
			Pos  jsonPos         `json:"pos"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		e, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Pos: v.Pos.toPos(), Expr: e}, nil

	case "BlockStmt":
		var v struct {
			Pos     jsonPos           `json:"pos"`
			Ordinal int               `json:"ordinal"`
			Stmts   []json.RawMessage `json:"stmts"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(v.Stmts)
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Pos: v.Pos.toPos(), Ordinal: v.Ordinal, Stmts: stmts}, nil

	case "IfElseStmt":
		var v struct {
			Pos     jsonPos           `json:"pos"`
			Ordinal int               `json:"ordinal"`
			Cond    json.RawMessage   `json:"cond"`
			Then    []json.RawMessage `json:"then"`
			Else    []json.RawMessage `json:"else"`
			HasElse bool              `json:"has_else"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(v.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfElseStmt{Pos: v.Pos.toPos(), Ordinal: v.Ordinal, Cond: cond, Then: then, Else: els, HasElse: v.HasElse}, nil

	case "WhileStmt":
		var v struct {
			Pos     jsonPos           `json:"pos"`
			Ordinal int               `json:"ordinal"`
			Cond    json.RawMessage   `json:"cond"`
			Body    []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Pos: v.Pos.toPos(), Ordinal: v.Ordinal, Cond: cond, Body: body}, nil

	case "ForStmt":
		var v struct {
			Pos     jsonPos           `json:"pos"`
			Ordinal int               `json:"ordinal"`
			Decl    json.RawMessage   `json:"decl"`
			Cond    json.RawMessage   `json:"cond"`
			Inc     json.RawMessage   `json:"inc"`
			Body    []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		declStmt, err := decodeStmt(v.Decl)
		if err != nil {
			return nil, err
		}
		decl, ok := declStmt.(*ast.DeclStmt)
		if !ok {
			return nil, fmt.Errorf("for-loop decl must be a DeclStmt, got %T", declStmt)
		}
		cond, err := decodeExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		inc, err := decodeExpr(v.Inc)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(v.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ForStmt{Pos: v.Pos.toPos(), Ordinal: v.Ordinal, Decl: decl, Cond: cond, Inc: inc, Body: body}, nil

	case "ContinueStmt":
		var v struct{ Pos jsonPos `json:"pos"` }
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Pos: v.Pos.toPos()}, nil

	case "BreakStmt":
		var v struct{ Pos jsonPos `json:"pos"` }
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Pos: v.Pos.toPos()}, nil

	case "ReturnStmt":
		var v struct {
			Pos     jsonPos         `json:"pos"`
			Expr    json.RawMessage `json:"expr"`
			HasExpr bool            `json:"has_expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		e, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Pos: v.Pos.toPos(), Expr: e, HasExpr: v.HasExpr}, nil
	}
	return nil, fmt.Errorf("unrecognized stmt node %q", kind)
}

func decodeExprs(in []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(in))
	for i, e := range in {
		ex, err := decodeExpr(e)
		if err != nil {
			return nil, fmt.Errorf("expr %d: %w", i, err)
		}
		out = append(out, ex)
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	kind, err := nodeKind(raw, "node")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Identifier":
		var v struct {
			Pos  jsonPos `json:"pos"`
			Name string  `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.Identifier{Pos: v.Pos.toPos(), Name: v.Name}, nil

	case "IntLit":
		var v struct {
			Pos      jsonPos `json:"pos"`
			Value    int64   `json:"value"`
			Width    int     `json:"width"`
			Unsigned bool    `json:"unsigned"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.IntLit{Pos: v.Pos.toPos(), Value: v.Value, Width: v.Width, Unsigned: v.Unsigned}, nil

	case "FloatLit":
		var v struct {
			Pos   jsonPos `json:"pos"`
			Value float64 `json:"value"`
			Width int     `json:"width"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.FloatLit{Pos: v.Pos.toPos(), Value: v.Value, Width: v.Width}, nil

	case "BoolLit":
		var v struct {
			Pos   jsonPos `json:"pos"`
			Value bool    `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.BoolLit{Pos: v.Pos.toPos(), Value: v.Value}, nil

	case "StringLit":
		var v struct {
			Pos   jsonPos `json:"pos"`
			Value string  `json:"value"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &ast.StringLit{Pos: v.Pos.toPos(), Value: v.Value}, nil

	case "BinaryExpr":
		var v struct {
			Pos jsonPos         `json:"pos"`
			Op  string          `json:"op"`
			Lhs json.RawMessage `json:"lhs"`
			Rhs json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		op, err := decodeBinOp(v.Op)
		if err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(v.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Pos: v.Pos.toPos(), Op: op, Lhs: lhs, Rhs: rhs}, nil

	case "UnaryExpr":
		var v struct {
			Pos     jsonPos         `json:"pos"`
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		op, err := decodeUnOp(v.Op)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Pos: v.Pos.toPos(), Op: op, Operand: operand}, nil

	case "CallExpr":
		var v struct {
			Pos    jsonPos           `json:"pos"`
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		callee, err := decodeExpr(v.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(v.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Pos: v.Pos.toPos(), Callee: callee, Args: args}, nil

	case "CastExpr":
		var v struct {
			Pos  jsonPos         `json:"pos"`
			Type json.RawMessage `json:"type"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		t, err := decodeType(v.Type)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(v.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.CastExpr{Pos: v.Pos.toPos(), Type: t, Expr: e}, nil

	case "IndexExpr":
		var v struct {
			Pos   jsonPos         `json:"pos"`
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		base, err := decodeExpr(v.Base)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpr(v.Index)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Pos: v.Pos.toPos(), Base: base, Index: index}, nil

	case "MemberExpr":
		var v struct {
			Pos     jsonPos         `json:"pos"`
			Base    json.RawMessage `json:"base"`
			Name    string          `json:"name"`
			Index   int             `json:"index"`
			IsIndex bool            `json:"is_index"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		base, err := decodeExpr(v.Base)
		if err != nil {
			return nil, err
		}
		return &ast.MemberExpr{Pos: v.Pos.toPos(), Base: base, Name: v.Name, Index: v.Index, IsIndex: v.IsIndex}, nil

	case "StructLit":
		var v struct {
			Pos   jsonPos           `json:"pos"`
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elems, err := decodeExprs(v.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.StructLit{Pos: v.Pos.toPos(), Elems: elems}, nil

	case "ArrayLit":
		var v struct {
			Pos   jsonPos           `json:"pos"`
			Elems []json.RawMessage `json:"elems"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elems, err := decodeExprs(v.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Pos: v.Pos.toPos(), Elems: elems}, nil

	case "TemplateInstance":
		var v struct {
			Pos  jsonPos           `json:"pos"`
			Name string            `json:"name"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			t, err := decodeType(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return &ast.TemplateInstance{Pos: v.Pos.toPos(), Name: v.Name, Args: args}, nil

	case "AssignExpr":
		var v struct {
			Pos jsonPos         `json:"pos"`
			Lhs json.RawMessage `json:"lhs"`
			Rhs json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		lhs, err := decodeExpr(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeExpr(v.Rhs)
		if err != nil {
			return nil, err
		}
		return &ast.AssignExpr{Pos: v.Pos.toPos(), Lhs: lhs, Rhs: rhs}, nil
	}
	return nil, fmt.Errorf("unrecognized expr node %q", kind)
}

func decodeBinOp(s string) (ast.BinOp, error) {
	switch s {
	case "add":
		return ast.Add, nil
	case "sub":
		return ast.Sub, nil
	case "mul":
		return ast.Mul, nil
	case "div":
		return ast.Div, nil
	case "rem":
		return ast.Rem, nil
	case "eq":
		return ast.Eq, nil
	case "lt":
		return ast.Lt, nil
	case "gt":
		return ast.Gt, nil
	case "and":
		return ast.And, nil
	case "or":
		return ast.Or, nil
	case "bitand":
		return ast.BitAnd, nil
	case "bitor":
		return ast.BitOr, nil
	case "bitxor":
		return ast.BitXor, nil
	case "shl":
		return ast.Shl, nil
	case "shr":
		return ast.Shr, nil
	}
	return 0, fmt.Errorf("unrecognized binary operator %q", s)
}

func decodeUnOp(s string) (ast.UnOp, error) {
	switch s {
	case "neg":
		return ast.Neg, nil
	case "not":
		return ast.Not, nil
	case "bitnot":
		return ast.BitNot, nil
	case "deref":
		return ast.Deref, nil
	case "addr":
		return ast.Addr, nil
	}
	return 0, fmt.Errorf("unrecognized unary operator %q", s)
}

// decodeType decodes a types.Type, the surface-type algebra attached to
// every declaration and expression by the (out-of-scope) front end.
func decodeType(raw json.RawMessage) (types.Type, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	kind, err := nodeKind(raw, "kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "int":
		var v struct {
			Width int `json:"width"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return types.IntType{Width: v.Width}, nil

	case "uint":
		var v struct {
			Width int `json:"width"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return types.UIntType{Width: v.Width}, nil

	case "float":
		var v struct {
			Width int `json:"width"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return types.FloatType{Width: v.Width}, nil

	case "bool":
		return types.BoolType{}, nil

	case "void":
		return types.VoidType{}, nil

	case "pointer":
		var v struct {
			Elem json.RawMessage `json:"elem"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elem, err := decodeType(v.Elem)
		if err != nil {
			return nil, err
		}
		return types.PointerType{Elem: elem}, nil

	case "mut_pointer":
		var v struct {
			Elem json.RawMessage `json:"elem"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elem, err := decodeType(v.Elem)
		if err != nil {
			return nil, err
		}
		return types.MutPointerType{Elem: elem}, nil

	case "array":
		var v struct {
			Len  int64           `json:"len"`
			Elem json.RawMessage `json:"elem"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		elem, err := decodeType(v.Elem)
		if err != nil {
			return nil, err
		}
		return types.ArrayType{Len: v.Len, Elem: elem}, nil

	case "struct":
		var v struct {
			Packed bool              `json:"packed"`
			Fields []json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fields := make([]types.Type, len(v.Fields))
		for i, f := range v.Fields {
			t, err := decodeType(f)
			if err != nil {
				return nil, err
			}
			fields[i] = t
		}
		return types.StructType{Packed: v.Packed, Fields: fields}, nil

	case "struct_labeled":
		var v struct {
			Packed bool `json:"packed"`
			Fields []struct {
				Name string          `json:"name"`
				Type json.RawMessage `json:"type"`
			} `json:"fields"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			t, err := decodeType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = types.Field{Name: f.Name, Type: t}
		}
		return types.StructLabeledType{Packed: v.Packed, Fields: fields}, nil

	case "alias":
		var v struct {
			Name       string          `json:"name"`
			Underlying json.RawMessage `json:"underlying"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		underlying, err := decodeType(v.Underlying)
		if err != nil {
			return nil, err
		}
		return types.AliasType{Name: v.Name, Underlying: underlying}, nil

	case "stub":
		var v struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return types.StubType{Name: v.Name}, nil

	case "fn":
		var v struct {
			Params []json.RawMessage `json:"params"`
			Ret    json.RawMessage   `json:"ret"`
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			t, err := decodeType(p)
			if err != nil {
				return nil, err
			}
			params[i] = t
		}
		ret, err := decodeType(v.Ret)
		if err != nil {
			return nil, err
		}
		return types.FuncType{Params: params, Ret: ret}, nil
	}
	return nil, fmt.Errorf("unrecognized type kind %q", kind)
}

// Package symtab implements C2: the scope tree and symbol resolver.
//
// ConstructSymtab walks a silk Program's top-level declarations in order,
// declaring every name into a tree of lexical scopes, and attaches a
// nested scope tree that the type checker (check) and the mid-IR builder
// (mir) both read back. The walk order and the ordinal numbering scheme
// for block-shaped statements are a contract with mir (spec §4.1): both
// components must walk statements left-to-right and increment a counter on
// every block/if/while/for, or generated label/local names will diverge.
//
// Grounded on go/types.Scope (name -> object mapping, nested by lexical
// block) and go/ssa/create.go's memberFromObject (first pass registers
// package-level members before bodies are built).
package symtab

import (
	"strconv"

	"github.com/programming-zone/silk/ast"
	"github.com/programming-zone/silk/diag"
	"github.com/programming-zone/silk/internal/identnorm"
	"github.com/programming-zone/silk/types"
)

// BindingKind distinguishes a type binding from a value binding.
type BindingKind int

const (
	TypeBinding BindingKind = iota
	ValueBinding
)

// Binding is either Type(SourceType) or Value{mut, ty, inner} (spec §3).
type Binding struct {
	Kind BindingKind

	// Type binding / value binding's declared type.
	Type types.Type

	// Value-binding only:
	Mut ast.Mut

	// Inner is present for function bindings (scope of params+body) and for
	// every block-shaped statement (its nested scope). nil for everything
	// else, and for function forward declarations/externs with no body.
	Inner *Scope

	// Pos records where this binding was introduced, for duplicate-symbol
	// diagnostics.
	Pos ast.Pos
}

// ScopeKind records what introduced a scope, used only for error messages
// and sanity checks — it has no bearing on lookup semantics.
type ScopeKind int

const (
	TopScope ScopeKind = iota
	FuncScope
	BlockScope
	ForScope
)

// Scope is one lexical scope: a name -> Binding mapping, a parent link for
// the lookup chain, and a set of children keyed the way spec §4.1
// prescribes: by source name for functions/top-level, by the decimal
// string ordinal of the enclosing block statement for every block-shaped
// statement.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Names    map[string]*Binding
	Children map[string]*Scope
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:     kind,
		Parent:   parent,
		Names:    make(map[string]*Binding),
		Children: make(map[string]*Scope),
	}
}

// Lookup searches s and its ancestors for name, returning the nearest
// binding.
func (s *Scope) Lookup(name string) (*Binding, *Scope) {
	name = identnorm.Canonical(name)
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.Names[name]; ok {
			return b, cur
		}
	}
	return nil, nil
}

// Child returns the nested scope registered under key (an ordinal string
// or a function/type name), or nil.
func (s *Scope) Child(key string) *Scope {
	return s.Children[key]
}

func (s *Scope) declare(name string, b *Binding) error {
	name = identnorm.Canonical(name)
	if existing, ok := s.Names[name]; ok {
		if !canForwardDeclare(existing, b) {
			return diag.New(diag.Duplication, b.Pos, "symbol %q already defined", name)
		}
		// Forward decl matches: keep the one carrying a body (Inner != nil)
		// if this declaration provides it; the earlier stub is superseded.
		if b.Inner != nil {
			s.Names[name] = b
		}
		return nil
	}
	s.Names[name] = b
	return nil
}

// canForwardDeclare reports whether old (already in scope) and next (being
// declared) are compatible as forward-decl/definition pair: spec §3's
// invariant "Two bindings of the same name are legal only when the
// earlier is a forward decl with matching function type."
func canForwardDeclare(old, next *Binding) bool {
	if old.Kind != ValueBinding || next.Kind != ValueBinding {
		return false
	}
	oldFn, ok1 := old.Type.(types.FuncType)
	nextFn, ok2 := next.Type.(types.FuncType)
	if !ok1 || !ok2 || !types.Equal(oldFn, nextFn) {
		return false
	}
	// At most one of the two may carry a body.
	if old.Inner != nil && next.Inner != nil {
		return false
	}
	return true
}

// Tree is the constructed symbol table: the top-level scope plus the
// separate first-pass types scope described in spec §4.1.
type Tree struct {
	Top   *Scope
	Types *Scope
}

// ConstructSymtab builds the scope tree for prog, the operation named in
// spec §4.1.
func ConstructSymtab(prog *ast.Program) (*Tree, error) {
	types_ := newScope(TopScope, nil)
	top := newScope(TopScope, nil)

	b := &builder{types: types_, top: top}

	// First pass: register every top-level type name (TypeDef/TypeFwdDef)
	// so forward references resolve regardless of declaration order.
	for _, r := range prog.Roots {
		switch d := r.(type) {
		case *ast.TypeFwdDef:
			if err := b.declareType(d.Name, types.StubType{Name: d.Name}, d.Pos); err != nil {
				return nil, err
			}
		case *ast.TypeDef:
			if err := b.declareType(d.Name, d.Type, d.Pos); err != nil {
				return nil, err
			}
		}
	}

	// Type names are also visible from value-lookup scopes, under the same
	// identifier: a bare `TypeName(...)` call expression is parsed as an
	// ordinary CallExpr whose callee is an Identifier, and check/mir both
	// resolve "callable but a-type-name" (spec §4.3) via a plain
	// scope.Lookup starting from the call site's scope. Copying the
	// finished type bindings into top makes them reachable through the
	// normal Parent chain alongside values and functions.
	for name, b := range types_.Names {
		if err := top.declare(name, b); err != nil {
			return nil, err
		}
	}

	// Second pass: values and functions, in source order (spec §5: ordering
	// must be the parse-tree sequence, not map iteration).
	for _, r := range prog.Roots {
		switch d := r.(type) {
		case *ast.ValDecl:
			if err := b.declareValue(top, d.VD.Name, d.VD.Type, d.VD.Mut, nil, d.Pos); err != nil {
				return nil, err
			}
		case *ast.FuncFwdDecl:
			ft := funcType(paramTypes(d.Params), d.Ret)
			if err := b.declareValue(top, d.Name, ft, ast.Val, nil, d.Pos); err != nil {
				return nil, err
			}
		case *ast.FuncDecl:
			ft := funcType(paramTypes(d.Params), d.Ret)
			fnScope := newScope(FuncScope, top)
			for _, p := range d.Params {
				if err := fnScope.declare(p.Name, &Binding{Kind: ValueBinding, Type: p.Type, Mut: ast.Val, Pos: d.Pos}); err != nil {
					return nil, err
				}
			}
			if err := b.walkBlock(fnScope, d.Body, blockKeyFunc(d.Name)); err != nil {
				return nil, err
			}
			if err := b.declareValue(top, d.Name, ft, ast.Val, fnScope, d.Pos); err != nil {
				return nil, err
			}
			top.Children[d.Name] = fnScope
		}
	}

	return &Tree{Top: top, Types: types_}, nil
}

func paramTypes(ps []ast.Param) []types.Type {
	out := make([]types.Type, len(ps))
	for i, p := range ps {
		out[i] = p.Type
	}
	return out
}

func funcType(params []types.Type, ret types.Type) types.FuncType {
	return types.FuncType{Params: params, Ret: ret}
}

// blockKeyFunc names a function's root-level block scope; it is never
// looked up by ordinal since a function body isn't itself a BlockStmt —
// only statements nested inside it are.
func blockKeyFunc(name string) string { return name }

type builder struct {
	types *Scope
	top   *Scope
}

func (b *builder) declareType(name string, t types.Type, pos ast.Pos) error {
	existing, ok := b.types.Names[identnorm.Canonical(name)]
	if ok {
		_, wasStub := existing.Type.(types.StubType)
		if !wasStub {
			return diag.New(diag.Duplication, pos, "type %q already defined", name)
		}
		// Closing a stub: replace with the real definition.
		b.types.Names[identnorm.Canonical(name)] = &Binding{Kind: TypeBinding, Type: t, Pos: pos}
		return nil
	}
	return b.types.declare(name, &Binding{Kind: TypeBinding, Type: t, Pos: pos})
}

func (b *builder) declareValue(scope *Scope, name string, t types.Type, mut ast.Mut, inner *Scope, pos ast.Pos) error {
	return scope.declare(name, &Binding{Kind: ValueBinding, Type: t, Mut: mut, Inner: inner, Pos: pos})
}

// walkBlock recursively builds nested scopes for a statement list,
// incrementing an ordinal counter on every block-shaped statement, per the
// contract with mir in spec §4.1. parentKey is the dotted scope path of
// the enclosing scope; it is only passed down the recursion, since
// Children are keyed by the bare ordinal and lookup itself just walks the
// Scope.Parent chain.
func (b *builder) walkBlock(parent *Scope, stmts []ast.Stmt, parentKey string) error {
	ordinal := 0
	for _, s := range stmts {
		switch st := s.(type) {
		case *ast.DeclStmt:
			if err := b.declareValue(parent, st.VD.Name, st.VD.Type, st.VD.Mut, nil, st.Pos); err != nil {
				return err
			}
		case *ast.BlockStmt:
			st.Ordinal = ordinal
			child := newScope(BlockScope, parent)
			if err := b.walkBlock(child, st.Stmts, childKey(parentKey, ordinal)); err != nil {
				return err
			}
			parent.Children[ordinalKey(ordinal)] = child
			ordinal++
		case *ast.IfElseStmt:
			st.Ordinal = ordinal
			thenScope := newScope(BlockScope, parent)
			if err := b.walkBlock(thenScope, st.Then, childKey(parentKey, ordinal)); err != nil {
				return err
			}
			parent.Children[ordinalKey(ordinal)] = thenScope
			ordinal++
			if st.HasElse {
				elseScope := newScope(BlockScope, parent)
				if err := b.walkBlock(elseScope, st.Else, childKey(parentKey, ordinal)); err != nil {
					return err
				}
				parent.Children[ordinalKey(ordinal)] = elseScope
				ordinal++
			}
		case *ast.WhileStmt:
			st.Ordinal = ordinal
			bodyScope := newScope(BlockScope, parent)
			if err := b.walkBlock(bodyScope, st.Body, childKey(parentKey, ordinal)); err != nil {
				return err
			}
			parent.Children[ordinalKey(ordinal)] = bodyScope
			ordinal++
		case *ast.ForStmt:
			st.Ordinal = ordinal
			// The induction variable gets its own nested scope, visible in
			// condition, increment, and body (spec §4.1).
			forScope := newScope(ForScope, parent)
			if st.Decl != nil {
				if err := b.declareValue(forScope, st.Decl.VD.Name, st.Decl.VD.Type, st.Decl.VD.Mut, nil, st.Decl.Pos); err != nil {
					return err
				}
			}
			bodyScope := newScope(BlockScope, forScope)
			if err := b.walkBlock(bodyScope, st.Body, childKey(parentKey, ordinal)); err != nil {
				return err
			}
			forScope.Children["body"] = bodyScope
			parent.Children[ordinalKey(ordinal)] = forScope
			ordinal++
		}
	}
	return nil
}

func ordinalKey(ordinal int) string {
	return strconv.Itoa(ordinal)
}

func childKey(parentKey string, ordinal int) string {
	if parentKey == "" {
		return strconv.Itoa(ordinal)
	}
	return parentKey + "." + strconv.Itoa(ordinal)
}

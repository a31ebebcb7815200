// Package identnorm normalizes source identifiers to a single canonical
// Unicode form before they become scope-tree keys or mangled IR symbol
// names.
//
// The determinism invariant in spec §5 ("the sequence of emitted
// instructions, temporary indices, label names, and global ordering must
// be byte-identical across runs") is only as strong as the byte
// representation of every name that flows into it. Since the lexer/parser
// is out of scope (spec §1), this backend cannot assume the front end
// normalized source text: two spellings of the same identifier that are
// Unicode-canonically-equivalent but byte-distinct (e.g. combining-mark
// vs. precomposed accented letter) would otherwise mangle to two different
// globals for what the programmer intended as one name. Canonical closes
// that gap the way golang.org/x/text/unicode/norm is built to.
package identnorm

import "golang.org/x/text/unicode/norm"

// Canonical returns the NFC-normalized form of name, the single
// canonical-composed representation symtab uses as a scope-map key when it
// declares and looks up a name.
func Canonical(name string) string {
	return norm.NFC.String(name)
}

// Package rustgen holds the Rust source conventions shared by the Diesel and
// Sea-ORM emitters.
package rustgen

import (
	"strings"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/codegen/writer"
)

// Header is the first line of every generated Rust file.
const Header = "// @generated automatically by gqlorm. Do not edit."

var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true, "continue": true,
	"crate": true, "dyn": true, "else": true, "enum": true, "extern": true, "false": true,
	"fn": true, "for": true, "if": true, "impl": true, "in": true, "let": true, "loop": true,
	"match": true, "mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "static": true, "struct": true, "super": true, "trait": true,
	"true": true, "type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true, "macro": true,
	"override": true, "priv": true, "typeof": true, "unsized": true, "virtual": true, "yield": true,
	"try": true,
}

// Ident makes s usable as a Rust identifier by suffixing keywords with "_".
func Ident(s string) string {
	if keywords[s] {
		return s + "_"
	}
	return s
}

// NewFile returns a Rust writer with the generated header written.
func NewFile() *writer.Writer {
	w := writer.Rust()
	w.WriteLine(Header)
	w.BlankLine()
	return w
}

// Option wraps t in Option<> when nullable.
func Option(t string, nullable bool) string {
	if nullable {
		return "Option<" + t + ">"
	}
	return t
}

// FieldType is the struct field type of a column. enumPath qualifies
// generated enum types ("crate::enums::" or "super::<module>::").
func FieldType(col *model.Column, enumPath func(*model.Enum) string) string {
	t := col.Type.Target
	if col.Enum != nil && t == col.Enum.TypeName {
		t = enumPath(col.Enum)
	}
	return Option(t, col.Nullable)
}

// IsInteger reports whether t is a Rust integer type.
func IsInteger(t string) bool {
	switch t {
	case "i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128", "isize", "usize":
		return true
	}
	return false
}

// Variants renders "Enum::Variant => \"VALUE\"" match arms.
func Variants(e *model.Enum) []string {
	arms := make([]string, len(e.Values))
	for i, v := range e.Values {
		arms[i] = e.TypeName + "::" + v.Variant + " => " + Quote(v.Name) + ","
	}
	return arms
}

// Quote renders s as a Rust string literal.
func Quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

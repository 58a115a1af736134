package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_BasicWriting(t *testing.T) {
	// Test: Basic write operations
	w := NewWriter("\t")

	w.Write("hello")
	w.Write(" world")

	assert.Equal(t, "hello world", w.String())
}

func TestWriter_Indentation(t *testing.T) {
	// Test: Rust writer indents with four spaces
	w := Rust()

	w.WriteLine("pub struct User {")
	w.Indent()
	w.WriteLine("pub id: i32,")
	w.WriteLine("pub name: String,")
	w.Dedent()
	w.WriteLine("}")

	expected := "pub struct User {\n    pub id: i32,\n    pub name: String,\n}\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_BlankLine(t *testing.T) {
	// Test: BlankLine never produces two consecutive blank lines
	w := NewWriter("\t")

	w.WriteLine("line1")
	w.BlankLine()
	w.WriteLine("line2")
	w.BlankLine()
	w.BlankLine()
	w.WriteLine("line3")

	lines := strings.Split(w.String(), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"line1", "", "line2", "", "line3", ""}, lines)
}

func TestWriter_BlankLineOnEmptyOutput(t *testing.T) {
	w := NewWriter("\t")
	w.BlankLine()
	assert.Equal(t, "", w.String())
}

func TestWriter_WriteBlock(t *testing.T) {
	w := Rust()

	w.WriteBlock("table! {", "}", func() {
		w.WriteLine("users (id) {")
	})

	assert.Equal(t, "table! {\n    users (id) {\n}\n", w.String())
}

func TestWriter_WriteList(t *testing.T) {
	// Test: separators go on every item but the last
	w := SQL()

	w.WriteLine("CREATE TABLE users (")
	w.Indent()
	w.WriteList([]string{"id INTEGER PRIMARY KEY", "name TEXT NOT NULL"}, ",", "")
	w.Dedent()
	w.WriteLine(");")

	expected := "CREATE TABLE users (\n    id INTEGER PRIMARY KEY,\n    name TEXT NOT NULL\n);\n"
	assert.Equal(t, expected, w.String())
}

func TestWriter_CommentStyles(t *testing.T) {
	tests := []struct {
		name string
		w    *Writer
		want string
	}{
		{name: "go", w: NewWriter("\t"), want: "// note\n"},
		{name: "rust", w: Rust(), want: "// note\n"},
		{name: "sql", w: SQL(), want: "-- note\n"},
		{name: "graphql", w: GraphQL(), want: "# note\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.w.WriteComment("note")
			assert.Equal(t, tt.want, tt.w.String())
		})
	}
}

func TestWriter_DocComment(t *testing.T) {
	// Test: Rust doc comments use triple slashes and keep paragraph breaks
	w := Rust()

	w.WriteDocComment("A registered account.\n\nOwns posts.")

	assert.Equal(t, "/// A registered account.\n///\n/// Owns posts.\n", w.String())
}

func TestWriter_DocCommentEmpty(t *testing.T) {
	// Test: Empty doc comment produces no output
	w := NewWriter("\t")

	w.WriteDocComment("")
	w.WriteLine("type Foo struct{}")

	assert.Equal(t, "type Foo struct{}\n", w.String())
}

func TestWriter_WriteFormatted(t *testing.T) {
	w := NewWriter("\t")

	w.WriteLinef("var %s = %d", "count", 42)
	w.Indent()
	w.Writef("// %s: %v", "value", true)
	w.Newline()

	assert.Equal(t, "var count = 42\n\t// value: true\n", w.String())
}

func TestWriter_Reset(t *testing.T) {
	// Test: Reset clears writer state
	w := NewWriter("\t")

	w.WriteLine("some content")
	w.Indent()
	w.Indent()
	assert.Equal(t, 2, w.IndentLevel())

	w.Reset()

	assert.Equal(t, "", w.String())
	assert.Equal(t, 0, w.IndentLevel())

	w.WriteLine("new content")
	assert.Equal(t, "new content\n", w.String())
}

func TestWriter_IndentDedentBounds(t *testing.T) {
	// Test: Dedent doesn't go below zero
	w := NewWriter("\t")

	w.Dedent()
	assert.Equal(t, 0, w.IndentLevel())

	w.Indent()
	assert.Equal(t, 1, w.IndentLevel())
	w.Dedent()
	assert.Equal(t, 0, w.IndentLevel())
}

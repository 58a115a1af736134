package writer

import (
	"fmt"
	"strings"
)

// Writer accumulates generated source text with indentation tracking. The
// comment syntax is configurable so one writer serves Rust, Go, SQL and
// GraphQL output.
type Writer struct {
	sb            strings.Builder
	indentLevel   int
	indentString  string
	linePrefix    string
	needsIndent   bool
	commentPrefix string
	docPrefix     string
}

// Option configures a Writer.
type Option func(*Writer)

// WithCommentPrefix sets the line comment marker ("//" by default).
func WithCommentPrefix(prefix string) Option {
	return func(w *Writer) { w.commentPrefix = prefix }
}

// WithDocPrefix sets the documentation comment marker. It defaults to the
// comment prefix.
func WithDocPrefix(prefix string) Option {
	return func(w *Writer) { w.docPrefix = prefix }
}

// NewWriter creates a writer indenting with indentString.
func NewWriter(indentString string, opts ...Option) *Writer {
	w := &Writer{
		indentString:  indentString,
		needsIndent:   true,
		commentPrefix: "//",
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.docPrefix == "" {
		w.docPrefix = w.commentPrefix
	}
	return w
}

// Rust returns a writer for Rust source: four-space indent, `///` docs.
func Rust() *Writer {
	return NewWriter("    ", WithDocPrefix("///"))
}

// SQL returns a writer for SQL scripts: four-space indent, `--` comments.
func SQL() *Writer {
	return NewWriter("    ", WithCommentPrefix("--"))
}

// GraphQL returns a writer for SDL: two-space indent, `#` comments.
func GraphQL() *Writer {
	return NewWriter("  ", WithCommentPrefix("#"))
}

// Indent increases the indentation level
func (w *Writer) Indent() {
	w.indentLevel++
	w.updatePrefix()
}

// Dedent decreases the indentation level
func (w *Writer) Dedent() {
	if w.indentLevel > 0 {
		w.indentLevel--
		w.updatePrefix()
	}
}

// Write writes a string without adding a newline
func (w *Writer) Write(s string) {
	if w.needsIndent && s != "" {
		w.sb.WriteString(w.linePrefix)
		w.needsIndent = false
	}
	w.sb.WriteString(s)
}

// Writef writes a formatted string without adding a newline
func (w *Writer) Writef(format string, args ...interface{}) {
	w.Write(fmt.Sprintf(format, args...))
}

// WriteLine writes a string and adds a newline
func (w *Writer) WriteLine(s string) {
	w.Write(s)
	w.Newline()
}

// WriteLinef writes a formatted string and adds a newline
func (w *Writer) WriteLinef(format string, args ...interface{}) {
	w.Writef(format, args...)
	w.Newline()
}

// WriteList writes items one per line, separated by sep. The last item gets
// last instead, which lets callers close SQL column lists and Rust attribute
// argument lists without a trailing separator.
func (w *Writer) WriteList(items []string, sep, last string) {
	for i, item := range items {
		if i == len(items)-1 {
			w.WriteLine(item + last)
			continue
		}
		w.WriteLine(item + sep)
	}
}

// Newline adds a newline character
func (w *Writer) Newline() {
	w.sb.WriteString("\n")
	w.needsIndent = true
}

// BlankLine adds an empty line unless the output already ends with one.
func (w *Writer) BlankLine() {
	if w.sb.Len() > 0 && !strings.HasSuffix(w.sb.String(), "\n\n") {
		if !w.needsIndent {
			w.Newline()
		}
		w.Newline()
	}
}

// IndentLevel returns the current indentation level
func (w *Writer) IndentLevel() int {
	return w.indentLevel
}

// String returns the generated text.
func (w *Writer) String() string {
	return w.sb.String()
}

// Bytes returns the generated text as a byte slice
func (w *Writer) Bytes() []byte {
	return []byte(w.sb.String())
}

// Reset clears the writer's content and resets indentation
func (w *Writer) Reset() {
	w.sb.Reset()
	w.indentLevel = 0
	w.linePrefix = ""
	w.needsIndent = true
}

func (w *Writer) updatePrefix() {
	w.linePrefix = strings.Repeat(w.indentString, w.indentLevel)
}

// WriteBlock writes content inside a block with proper indentation
// Example: WriteBlock("pub struct User {", "}", func() { w.WriteLine("pub id: i32,") })
func (w *Writer) WriteBlock(opener, closer string, content func()) {
	w.WriteLine(opener)
	w.Indent()
	content()
	w.Dedent()
	w.WriteLine(closer)
}

// WriteComment writes a single-line comment
func (w *Writer) WriteComment(comment string) {
	if comment == "" {
		w.WriteLine(w.commentPrefix)
		return
	}
	w.WriteLinef("%s %s", w.commentPrefix, comment)
}

// WriteMultilineComment writes a multi-line comment
func (w *Writer) WriteMultilineComment(lines []string) {
	for _, line := range lines {
		w.WriteComment(line)
	}
}

// WriteDocComment writes a documentation comment block
func (w *Writer) WriteDocComment(doc string) {
	if doc == "" {
		return
	}
	lines := strings.Split(strings.TrimSpace(doc), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			w.WriteLine(w.docPrefix)
			continue
		}
		w.WriteLinef("%s %s", w.docPrefix, line)
	}
}

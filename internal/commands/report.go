package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/gqlorm/gqlorm/internal/codegen/model"
	"github.com/gqlorm/gqlorm/internal/output"
)

// Output is where commands print user-facing results.
type Output interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

type writerOutput struct {
	w io.Writer
}

func (o writerOutput) Printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}

func (o writerOutput) Println(args ...any) {
	fmt.Fprintln(o.w, args...)
}

// Reporter prints results with a colored status mark. Only the mark is
// colored so the message text stays greppable.
type Reporter struct {
	out     Output
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	info    *color.Color
	bold    *color.Color
}

// NewReporter returns a Reporter writing to w, or to stdout when w is nil.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return newReporter(writerOutput{w: w})
}

func newReporter(out Output) *Reporter {
	return &Reporter{
		out:     out,
		success: color.New(color.FgHiGreen),
		warn:    color.New(color.FgHiYellow),
		fail:    color.New(color.FgHiRed),
		info:    color.New(color.FgCyan),
		bold:    color.New(color.Bold),
	}
}

func (r *Reporter) Success(format string, args ...any) {
	r.out.Printf("%s %s\n", r.success.Sprint("✓"), fmt.Sprintf(format, args...))
}

func (r *Reporter) Warn(format string, args ...any) {
	r.out.Printf("%s %s\n", r.warn.Sprint("!"), fmt.Sprintf(format, args...))
}

func (r *Reporter) Error(err error) {
	r.out.Printf("%s %s\n", r.fail.Sprint("✗"), err)
}

func (r *Reporter) Info(format string, args ...any) {
	r.out.Printf("%s %s\n", r.info.Sprint("•"), fmt.Sprintf(format, args...))
}

// Summary prints the outcome of one generation run. stats is nil for a dry
// run.
func (r *Reporter) Summary(s model.Summary, stats *output.Stats, dir string) {
	for _, w := range s.Warnings {
		r.Warn("%s", w)
	}

	switch {
	case stats == nil:
		r.Success("Dry run: %d file(s) would be written to %s", s.Files, dir)
	case stats.Written == 0:
		r.Success("Generated code is up to date in %s", dir)
	default:
		r.Success("Wrote %d file(s) to %s (%d unchanged)", stats.Written, dir, stats.Unchanged)
	}

	r.out.Printf("  %s %d  %s %d  %s %d  %s %d\n",
		r.bold.Sprint("entities"), s.Entities,
		r.bold.Sprint("enums"), s.Enums,
		r.bold.Sprint("migrations"), s.Migrations,
		r.bold.Sprint("relationships"), s.Relationships,
	)
	if n := len(s.Warnings); n > 0 {
		r.out.Printf("  %s\n", r.warn.Sprintf("%d warning(s)", n))
	}
}

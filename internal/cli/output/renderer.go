// Package output renders command results as styled text, markdown, JSON or
// YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // TTY=text, non-TTY=markdown
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Renderer writes command output in the effective mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	isTTY   bool
	noColor bool
	styles  *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	r := &Renderer{out: out, errOut: errOut, mode: mode, isTTY: isTTY}
	r.styles = NewStyles(r.lipglossRenderer())
	return r
}

// WithNoColor disables ANSI styling.
func (r *Renderer) WithNoColor(noColor bool) *Renderer {
	r.noColor = noColor
	r.styles = NewStyles(r.lipglossRenderer())
	return r
}

func (r *Renderer) lipglossRenderer() *lipgloss.Renderer {
	lr := lipgloss.NewRenderer(r.out)
	if r.noColor || !r.isTTY {
		lr.SetColorProfile(termenv.Ascii)
	} else {
		lr.SetColorProfile(termenv.ANSI256)
	}
	return lr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// IsStructured reports whether the effective mode is JSON or YAML.
func (r *Renderer) IsStructured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// Styles returns the styles for text mode.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Warning writes a warning line to error output.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning: "+msg))
}

// Data writes v as YAML in YAML mode and as indented JSON otherwise.
func (r *Renderer) Data(v any) error {
	if r.EffectiveMode() == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Header writes a styled header in text mode and a markdown header
// otherwise.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() != ModeText {
		r.Println(FormatHeader(level, text))
		r.Println()
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
	r.Println()
}

// Field writes one labeled value: a bullet in markdown and an aligned,
// bold label in text mode.
func (r *Renderer) Field(label, value string) {
	if r.EffectiveMode() != ModeText {
		r.Println(FormatKeyValue(label, value))
		return
	}
	r.Printf("  %s %s\n", r.styles.Bold.Render(fmt.Sprintf("%-10s", label+":")), value)
}

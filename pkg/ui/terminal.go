package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logo is printed at the top of interactive commands
const Logo = `
  _                     _
 | |___      _____  ___| |_ ___ _____   __
 | __\ \ /\ / / _ \/ _ \ __/ __/ __\ \ / /
 | |_ \ V  V /  __/  __/ || (__\__ \\ V /
  \__| \_/\_/ \___|\___|\__\___|___/ \_/
`

// Printer writes styled lines to a writer
type Printer struct {
	mu sync.Mutex
	w  io.Writer
	st styles
}

// NewPrinter creates a printer for w. Colors are only emitted when w is a
// terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}

// Logo prints the ASCII logo
func (p *Printer) Logo() {
	p.println(p.st.logo.Render(Logo))
}

// Println prints an unstyled line
func (p *Printer) Println(msg string) {
	p.println(msg)
}

// Error prints an error message, followed by the first detail if any
func (p *Printer) Error(msg string, details ...interface{}) {
	if len(details) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, details[0])
	}
	p.println(p.st.err.Render(msg))
}

// Success prints a success message
func (p *Printer) Success(msg string) {
	p.println(p.st.success.Render(msg))
}

// Info prints a label/value pair
func (p *Printer) Info(label, value string) {
	p.println(p.st.label.Render(label+":") + " " + p.st.value.Render(value))
}

// Warning prints a warning message, followed by the first detail if any
func (p *Printer) Warning(msg string, details ...interface{}) {
	if len(details) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, details[0])
	}
	p.println(p.st.warning.Render(msg))
}

// Highlight prints a highlighted message
func (p *Printer) Highlight(msg string) {
	p.println(p.st.highlight.Render(msg))
}

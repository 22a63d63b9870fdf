package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type ansi string

const (
	reset  ansi = "\033[0m"
	bold   ansi = "\033[1m"
	red    ansi = "\033[31m"
	cyan   ansi = "\033[36m"
	blue   ansi = "\033[34m"
	dim    ansi = "\033[90m"
	accent ansi = "\033[1;31m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func paint(c ansi, text string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return string(c) + text + string(reset)
}

// Format renders the error for a terminal: a header, the location with a
// numbered source excerpt and a column caret, then detail, hint and docs.
func (e *GaugeError) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	e.writeHeader(&b)
	if e.Location != nil {
		fmt.Fprintf(&b, "  %s %s\n", paint(dim, "at"), paint(cyan, e.Location.String()))
		e.writeExcerpt(&b)
		b.WriteString("\n")
	}
	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 72) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", paint(cyan, "Hint:"), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint(dim, "Learn more:"), paint(blue, e.DocURL))
	}
	return b.String()
}

func (e *GaugeError) writeHeader(b *strings.Builder) {
	label := "ERROR"
	if e.Code != "" {
		label += " " + e.Code
	}
	fmt.Fprintf(b, "%s %s\n\n", paint(accent, label+":"), paint(bold, e.Message))
}

// writeExcerpt prints the excerpt lines with a gutter. The error line gets
// an arrow and, when the column is known, a caret underneath.
func (e *GaugeError) writeExcerpt(b *strings.Builder) {
	x := e.Excerpt
	if x == nil || len(x.Lines) == 0 {
		return
	}
	last := x.First + len(x.Lines) - 1
	width := len(fmt.Sprint(last))
	b.WriteString("\n")
	for i, text := range x.Lines {
		n := x.First + i
		marker := "  "
		if n == e.Location.Line {
			marker = paint(red, "> ")
		}
		fmt.Fprintf(b, "  %s%s %s %s\n", marker, paint(dim, fmt.Sprintf("%*d", width, n)), paint(dim, "|"), text)
		if n == e.Location.Line && e.Location.Column > 0 {
			pad := strings.Repeat(" ", width)
			fmt.Fprintf(b, "    %s %s %s%s\n", pad, paint(dim, "|"), strings.Repeat(" ", e.Location.Column-1), paint(red, "^"))
		}
	}
}

// FormatCompact returns a compact single-line error format.
func (e *GaugeError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

// Summary returns a single line with the code, message and any detail set
// beyond the registered one. Other errors return err.Error().
func Summary(err error) string {
	ve, ok := err.(*GaugeError)
	if !ok {
		return err.Error()
	}
	s := ve.FormatCompact()
	if t, known := registry[ve.Code]; ve.Detail != "" && (!known || t.Detail != ve.Detail) {
		s += ": " + ve.Detail
	}
	return s
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Excerpt    []string      `json:"excerpt,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	DocURL     string        `json:"docUrl,omitempty"`
}

// FormatJSON returns the error as a JSON object, as served by the dev server.
func (e *GaugeError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if l := e.Location; l != nil {
		out.Location = &jsonLocation{File: l.File, Line: l.Line, Column: l.Column}
	}
	if e.Excerpt != nil {
		out.Excerpt = e.Excerpt.Lines
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText breaks text into lines no wider than width, on word boundaries.
func wrapText(text string, width int) []string {
	var lines []string
	var cur []string
	n := 0
	for _, word := range strings.Fields(text) {
		if n > 0 && n+1+len(word) > width {
			lines = append(lines, strings.Join(cur, " "))
			cur, n = nil, 0
		}
		if n > 0 {
			n++
		}
		cur = append(cur, word)
		n += len(word)
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

// PrintError writes err to w, formatted when it is a GaugeError.
func PrintError(w io.Writer, err error) {
	if ve, ok := err.(*GaugeError); ok {
		fmt.Fprint(w, ve.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(accent, "ERROR:"), err.Error())
}

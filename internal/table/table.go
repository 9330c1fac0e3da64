// Package table renders session, archive and marker listings with lipgloss.
package table

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Builder collects headers and rows and renders them as one table.
type Builder struct {
	headers []string
	rows    [][]string
	style   Style
	output  io.Writer
}

// Style defines the visual styling options for tables
type Style struct {
	Border lipgloss.Border
	// HeaderStyle applies styling to header row
	HeaderStyle lipgloss.Style
	// MarginLeft sets left margin
	MarginLeft int
	// PaddingLeft and PaddingRight set padding inside cells
	PaddingLeft  int
	PaddingRight int
}

// MinimalStyle returns a rounded border style for interactive terminals.
func MinimalStyle() Style {
	return Style{
		Border:       lipgloss.RoundedBorder(),
		HeaderStyle:  lipgloss.NewStyle().Bold(true),
		MarginLeft:   1,
		PaddingLeft:  1,
		PaddingRight: 1,
	}
}

// PlainStyle returns a borderless style suited to pipes and uncoloured output.
func PlainStyle() Style {
	return Style{
		Border:       lipgloss.HiddenBorder(),
		HeaderStyle:  lipgloss.NewStyle(),
		PaddingRight: 2,
	}
}

// NewWithStyle creates a new table builder with custom styling
func NewWithStyle(style Style) *Builder {
	return &Builder{
		style:  style,
		output: os.Stdout,
	}
}

// SetOutput sets the output writer for the table
func (b *Builder) SetOutput(w io.Writer) *Builder {
	b.output = w
	return b
}

// Headers sets the table headers
func (b *Builder) Headers(headers ...string) *Builder {
	b.headers = append([]string(nil), headers...)
	return b
}

// Row adds a data row to the table
func (b *Builder) Row(columns ...string) *Builder {
	b.rows = append(b.rows, append([]string(nil), columns...))
	return b
}

// RowCount returns the number of data rows in the table
func (b *Builder) RowCount() int {
	return len(b.rows)
}

// Build creates and returns the formatted table as a string
func (b *Builder) Build() string {
	cell := lipgloss.NewStyle().
		PaddingLeft(b.style.PaddingLeft).
		PaddingRight(b.style.PaddingRight)
	header := b.style.HeaderStyle.Inherit(cell)

	t := table.New().
		Border(b.style.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	if len(b.headers) > 0 {
		t.Headers(b.headers...)
	}
	for _, row := range b.rows {
		t.Row(row...)
	}

	return lipgloss.NewStyle().
		MarginLeft(b.style.MarginLeft).
		Render(t.Render())
}

// Println writes the table followed by a newline to the configured output writer
func (b *Builder) Println() error {
	_, err := fmt.Fprintln(b.output, b.Build())
	return err
}

// Package view renders a summary table of the submissions in an export archive.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/thought-machine/toltool/src/metadata"
)

const columnGap = "  "

// A Sizer reports the uncompressed size of an archive entry.
type Sizer interface {
	Size(name string) uint64
}

// A Table accumulates submissions and prints them as aligned columns.
type Table struct {
	sizer  Sizer
	header []string
	rows   [][]string
}

// NewTable returns a new table. If sizer is non-nil a Size column is included.
func NewTable(sizer Sizer) *Table {
	t := &Table{
		sizer:  sizer,
		header: []string{"Name", "QID", "Files"},
	}
	if sizer != nil {
		t.header = append(t.header, "Size")
	}
	return t
}

// Add adds a submission to the table.
func (t *Table) Add(sub *metadata.Submission) error {
	row := []string{sub.Name, sub.QID, strings.Join(sub.OriginalNames(), ", ")}
	if t.sizer != nil {
		var total uint64
		for _, f := range sub.Files {
			total += t.sizer.Size(f.ArchiveName)
		}
		row = append(row, humanize.Bytes(total))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Len returns the number of submissions in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Write writes the table to the given writer.
func (t *Table) Write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}
	if err := t.writeRow(w, t.header, widths); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	if err := t.writeRow(w, rule, widths); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) writeRow(w io.Writer, row []string, widths []int) error {
	cells := make([]string, len(row))
	for i, cell := range row {
		if i == len(row)-1 {
			cells[i] = cell // no trailing padding
		} else {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(cells, columnGap))
	return err
}

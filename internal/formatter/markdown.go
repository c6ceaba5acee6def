// Package formatter renders run reports as markdown with aligned tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// FormatTable renders header and rows as a markdown table whose columns are
// padded to their display width, so wide characters line up.
func FormatTable(header []string, rows [][]string) string {
	table := make([][]string, 0, len(rows)+2)
	table = append(table, escapeCells(header))
	table = append(table, nil)

	for _, row := range rows {
		table = append(table, escapeCells(row))
	}

	return strings.Join(alignTable(table, 1), "\n") + "\n"
}

// FormatMarkdown aligns every table in a markdown document and leaves the
// other lines untouched.
func FormatMarkdown(content string) string {
	lines := strings.Split(content, "\n")

	var (
		formattedLines []string
		tableBuffer    []string
	)

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		// A row starts and ends with a pipe.
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)
			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	return strings.Join(formattedLines, "\n")
}

func escapeCells(row []string) []string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = cellEscaper.Replace(strings.TrimSpace(c))
	}

	return cells
}

func processTable(rows []string) []string {
	// Needs at least a header and a separator.
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))

	for _, row := range rows {
		parts := strings.Split(row, "|")

		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		cells := make([]string, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	separatorRowIdx := -1
	if isSeparator(table[1]) {
		separatorRowIdx = 1
	}

	return alignTable(table, separatorRowIdx)
}

func isSeparator(row []string) bool {
	for _, cell := range row {
		if strings.Trim(cell, "-: ") != "" {
			return false
		}
	}

	return true
}

// alignTable pads every cell to its column's display width. The row at
// separatorRowIdx is rewritten as dashes.
func alignTable(table [][]string, separatorRowIdx int) []string {
	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	for i := range colWidths {
		colWidths[i] = max(colWidths[i], minColumnWidth)
	}

	result := make([]string, 0, len(table))

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		for j := range colCount {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(content)

				if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
					sb.WriteString(strings.Repeat(" ", padding))
				}
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}

package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"baas-admin-go/internal/models"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100

	// Cells longer than this are truncated in tables
	MaxCellWidth = 32
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a closing separator followed by a summary line
func PrintFooter(summary string, width int) {
	fmt.Println()
	PrintSeparator("=", width)
	fmt.Println(summary)
	PrintSeparator("=", width)
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// FormatCell renders a row value for terminal output.
func FormatCell(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = "—"
	case string:
		s = t
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	default:
		s = fmt.Sprint(t)
	}
	return truncate(s, MaxCellWidth)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}

// WriteTable writes headers and rows as aligned columns.
func WriteTable(w io.Writer, headers []string, rows []models.Row) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for i, h := range headers {
			c := FormatCell(row.Value(h))
			cells[r][i] = c
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeLine := func(values []string) {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = v + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v))
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " │ "), " "))
	}

	writeLine(headers)
	rule := make([]string, len(headers))
	for i := range headers {
		rule[i] = strings.Repeat("─", widths[i])
	}
	fmt.Fprintln(w, strings.Join(rule, "─┼─"))
	for _, c := range cells {
		writeLine(c)
	}
}

package table

import (
	"fmt"
	"strings"
	"unicode"
)

// Mode is the layout inferred for a table.
type Mode int

const (
	// Fixed: no header, whitespace-separated, columns taken positionally.
	Fixed Mode = iota
	// Delimited: header line present, columns resolved through aliases.
	Delimited
)

func (m Mode) String() string {
	if m == Delimited {
		return "delimited"
	}
	return "fixed"
}

// Whitespace is reported as the delimiter when fields are split on runs of
// blanks rather than on a single character.
const Whitespace rune = ' '

// EmptyError means a member produced no usable table.
type EmptyError struct {
	Reason string
}

func (e *EmptyError) Error() string {
	return "empty table: " + e.Reason
}

// MissingColumnError means a header was found but a required column could
// not be matched to any of its cells.
type MissingColumnError struct {
	Column Column
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing %s column in header [%s]", e.Column, strings.Join(e.Header, ", "))
}

// Table is the parser's output for one member.
type Table struct {
	Mode      Mode
	Delimiter rune
	Header    []string
	Indices   [NumColumns]int
	Rows      []RawRow
	// Skipped counts data lines left out for a missing radius or observed
	// velocity.
	Skipped int
}

type Parser struct {
	aliases Aliases
}

func NewParser(aliases Aliases) *Parser {
	return &Parser{aliases: aliases}
}

// InferDelimiter picks tab when it strictly outnumbers both comma and
// semicolon, else semicolon when it outnumbers comma, else comma.
func InferDelimiter(line string) rune {
	commas := strings.Count(line, ",")
	semis := strings.Count(line, ";")
	tabs := strings.Count(line, "\t")
	switch {
	case tabs > commas && tabs > semis:
		return '\t'
	case semis > commas:
		return ';'
	default:
		return ','
	}
}

// HasHeader reports whether line contains at least one letter.
func HasHeader(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

var positional = [NumColumns]int{0, 1, 2, 3, 4, 5}

// usableLines trims lines and drops blanks and '#' comments, keeping the
// 1-based line number of each survivor.
func usableLines(text string) (lines []string, numbers []int) {
	for i, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
		numbers = append(numbers, i+1)
	}
	return lines, numbers
}

func split(line string, delim rune) []string {
	if delim == Whitespace {
		return strings.Fields(line)
	}
	parts := strings.Split(line, string(delim))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func hasExplicitDelimiter(line string) bool {
	return strings.ContainsAny(line, ",;\t")
}

// Parse converts one member's text into raw rows. Lines whose radius or
// observed velocity do not parse are skipped, not reported.
func (p *Parser) Parse(text string) (*Table, error) {
	lines, numbers := usableLines(text)
	if len(lines) < 2 {
		return nil, &EmptyError{Reason: fmt.Sprintf("%d usable line(s), need at least 2", len(lines))}
	}

	t := &Table{Mode: Fixed, Delimiter: Whitespace, Indices: positional}
	start := 0
	if HasHeader(lines[0]) {
		t.Mode = Delimited
		t.Delimiter = InferDelimiter(lines[0])
		if !hasExplicitDelimiter(lines[0]) && len(strings.Fields(lines[0])) > 1 {
			t.Delimiter = Whitespace
		}
		t.Header = split(lines[0], t.Delimiter)
		t.Indices = p.aliases.Resolve(t.Header)
		for _, c := range []Column{Radius, Vobs} {
			if t.Indices[c] < 0 {
				return nil, &MissingColumnError{Column: c, Header: t.Header}
			}
		}
		start = 1
	}

	for i := start; i < len(lines); i++ {
		fields := split(lines[i], t.Delimiter)
		row := RawRow{Line: numbers[i]}
		for c := Column(0); c < NumColumns; c++ {
			j := t.Indices[c]
			if j >= 0 && j < len(fields) {
				row.Values[c] = ParseValue(fields[j])
			}
		}
		if !row.Values[Radius].Valid || !row.Values[Vobs].Valid {
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return nil, &EmptyError{Reason: "no rows with finite radius and observed velocity"}
	}
	return t, nil
}

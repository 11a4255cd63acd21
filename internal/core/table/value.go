package table

import (
	"math"
	"strconv"
	"strings"
)

// Column identifies a canonical rotation-curve field.
type Column int

const (
	Radius Column = iota
	Vobs
	EVobs
	Vgas
	Vdisk
	Vbul

	NumColumns
)

var columnNames = [NumColumns]string{"radius", "vobs", "evobs", "vgas", "vdisk", "vbul"}

func (c Column) String() string {
	if c < 0 || c >= NumColumns {
		return "column(" + strconv.Itoa(int(c)) + ")"
	}
	return columnNames[c]
}

// ColumnByName maps a config key such as "vdisk" to its Column.
func ColumnByName(name string) (Column, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range columnNames {
		if n == name {
			return Column(i), true
		}
	}
	return 0, false
}

// Value is a parsed numeric cell. Valid is false when the cell was
// missing, empty, unparsable or not finite; Float is then meaningless.
type Value struct {
	Float float64
	Valid bool
}

func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

var Absent = Value{}

// ParseValue reads one cell. A lone decimal comma is accepted ("1,5").
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Absent
	}
	return Num(f)
}

// RawRow is one data line before normalization. Line is 1-based in the
// original text.
type RawRow struct {
	Line   int
	Values [NumColumns]Value
}

func (r RawRow) Get(c Column) Value {
	return r.Values[c]
}

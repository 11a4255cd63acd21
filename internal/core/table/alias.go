package table

import "strings"

// AliasSet lists accepted header spellings for one column. Exact entries
// must equal the whole header cell; Contains entries match substrings.
// Both are compared lower-cased.
type AliasSet struct {
	Exact    []string
	Contains []string
}

type Aliases [NumColumns]AliasSet

// resolveOrder puts the generic velocity aliases last so that "vel" or
// "km/s" never claims a gas, disk or bulge column.
var resolveOrder = [NumColumns]Column{Radius, EVobs, Vgas, Vdisk, Vbul, Vobs}

func DefaultAliases() Aliases {
	var a Aliases
	a[Radius] = AliasSet{
		Exact:    []string{"r", "r_kpc", "rkpc", "rad", "radius", "rad(kpc)", "r(kpc)"},
		Contains: []string{"kpc", "radius", "rad"},
	}
	a[Vobs] = AliasSet{
		Exact:    []string{"v", "vobs", "v_obs", "vrot", "v_rot"},
		Contains: []string{"vobs", "v_obs", "vel", "km/s"},
	}
	a[EVobs] = AliasSet{
		Exact:    []string{"evobs", "e_vobs", "errv", "verr", "e_v", "ev", "sigma"},
		Contains: []string{"evobs", "e_vobs", "err", "unc"},
	}
	a[Vgas] = AliasSet{
		Exact:    []string{"vgas", "v_gas"},
		Contains: []string{"gas"},
	}
	a[Vdisk] = AliasSet{
		Exact:    []string{"vdisk", "v_disk"},
		Contains: []string{"disk"},
	}
	a[Vbul] = AliasSet{
		Exact:    []string{"vbul", "v_bul", "vbulge", "v_bulge"},
		Contains: []string{"bulge", "bul"},
	}
	return a
}

// With returns a copy of a where the given column's aliases are replaced.
// Empty lists keep the existing ones.
func (a Aliases) With(c Column, set AliasSet) Aliases {
	if len(set.Exact) > 0 {
		a[c].Exact = append([]string(nil), set.Exact...)
	}
	if len(set.Contains) > 0 {
		a[c].Contains = append([]string(nil), set.Contains...)
	}
	return a
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.Trim(h, `"'`)
	return strings.ToLower(strings.TrimSpace(h))
}

// Resolve maps each column to a header index, or -1 when unresolved. All
// exact matches are assigned before any substring match, and an index is
// claimed by at most one column.
func (a Aliases) Resolve(header []string) [NumColumns]int {
	var idx [NumColumns]int
	for i := range idx {
		idx[i] = -1
	}
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}
	claimed := make([]bool, len(header))

	find := func(match func(h, alias string) bool, aliases []string) int {
		for _, alias := range aliases {
			alias = strings.ToLower(alias)
			for i, h := range norm {
				if !claimed[i] && match(h, alias) {
					return i
				}
			}
		}
		return -1
	}
	exact := func(h, alias string) bool { return h == alias }
	contains := func(h, alias string) bool { return alias != "" && strings.Contains(h, alias) }

	for _, c := range resolveOrder {
		if i := find(exact, a[c].Exact); i >= 0 {
			idx[c] = i
			claimed[i] = true
		}
	}
	for _, c := range resolveOrder {
		if idx[c] >= 0 {
			continue
		}
		if i := find(contains, a[c].Contains); i >= 0 {
			idx[c] = i
			claimed[i] = true
		}
	}
	return idx
}

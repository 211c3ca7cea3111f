package repository

import "strings"

// Sort orders List results.  Field is an API-level name ("name", "title",
// "dateOut"); each store maps it to a column through its own safelist and
// falls back to its default order for anything it does not know.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort turns "name" or "-name" into a Sort.  An empty string yields the
// zero Sort, meaning "store default".
func ParseSort(s string) Sort {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return Sort{Field: strings.TrimPrefix(s, "-"), Desc: true}
	}
	return Sort{Field: s}
}

// orderBy renders an ORDER BY clause from the safelist, using def when the
// field is empty or unknown.  Column names only ever come from the map.
func (s Sort) orderBy(columns map[string]string, def string) string {
	col, ok := columns[s.Field]
	if !ok {
		return " ORDER BY " + def
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", id ASC"
}

package profiling

import "salesaudit/domain/dataset"

// TypeEntry is one line of the type report
type TypeEntry struct {
	Column  string               `json:"column"`
	Type    dataset.SemanticType `json:"type"`
	Derived bool                 `json:"derived"`
}

// ReportTypes lists each column's semantic type in table order
func ReportTypes(t *dataset.Table) []TypeEntry {
	cols := t.Columns()
	out := make([]TypeEntry, len(cols))
	for i, col := range cols {
		out[i] = TypeEntry{Column: col.Name, Type: col.Type, Derived: col.Derived}
	}
	return out
}

package profiling

import (
	"strings"

	"salesaudit/domain/dataset"
	"salesaudit/internal/errors"
)

// DuplicateReport summarizes key and full-row duplication.
//
// DuplicateRows counts every row that belongs to a key group of size > 1,
// so two rows sharing a key count as 2. ExcessRows counts only the repeats
// beyond the first row of each group (the same two rows count as 1).
type DuplicateReport struct {
	KeyColumn     string `json:"key_column"`
	Rows          int    `json:"rows"`
	DuplicateRows int    `json:"duplicate_rows"`
	ExcessRows    int    `json:"excess_rows"`
	DuplicateKeys int    `json:"duplicate_keys"`
	NullKeys      int    `json:"null_keys"`
	// FullRowDuplicates counts rows identical in every column to an earlier row
	FullRowDuplicates int `json:"full_row_duplicates"`
}

// CheckDuplicates groups rows by the key column. Rows with a null key are
// left out of the groups and reported as NullKeys. A missing key column is a
// configuration error.
func CheckDuplicates(t *dataset.Table, keyColumn string) (DuplicateReport, error) {
	key, ok := t.Column(keyColumn)
	if !ok {
		return DuplicateReport{}, errors.MissingColumn(keyColumn)
	}

	report := DuplicateReport{KeyColumn: keyColumn, Rows: t.RowCount()}

	groups := make(map[string]int)
	for i := 0; i < key.Len(); i++ {
		label, present := key.Label(i)
		if !present {
			report.NullKeys++
			continue
		}
		groups[label]++
	}
	for _, size := range groups {
		if size > 1 {
			report.DuplicateKeys++
			report.DuplicateRows += size
			report.ExcessRows += size - 1
		}
	}

	report.FullRowDuplicates = countFullRowDuplicates(t)
	return report, nil
}

func countFullRowDuplicates(t *dataset.Table) int {
	cols := t.Columns()
	seen := make(map[string]struct{}, t.RowCount())
	dupes := 0

	var b strings.Builder
	for i := 0; i < t.RowCount(); i++ {
		b.Reset()
		for _, col := range cols {
			if label, ok := col.Label(i); ok {
				b.WriteString(label)
			} else {
				// distinguishes null from an empty label
				b.WriteByte(0)
			}
			b.WriteByte(0x1f)
		}
		rowKey := b.String()
		if _, dup := seen[rowKey]; dup {
			dupes++
			continue
		}
		seen[rowKey] = struct{}{}
	}
	return dupes
}

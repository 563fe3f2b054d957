package hypothesis

import (
	"math"
	"sort"

	"salesaudit/domain/dataset"

	"gonum.org/v1/gonum/stat/distuv"
)

// ContingencyTable holds observed counts of two categorical variables.
// Labels are sorted so the same data always yields the same table.
type ContingencyTable struct {
	RowLabels []string
	ColLabels []string
	Counts    [][]float64
}

// Crosstab counts co-occurrences of x and y labels over rows where both are
// present. When keep is non-nil only x labels in keep are counted.
func Crosstab(x, y *dataset.Column, keep map[string]bool) ContingencyTable {
	cells := make(map[[2]string]float64)
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)
	for i := 0; i < x.Len(); i++ {
		a, okA := x.Label(i)
		b, okB := y.Label(i)
		if !okA || !okB {
			continue
		}
		if keep != nil && !keep[a] {
			continue
		}
		cells[[2]string{a, b}]++
		rowSet[a] = true
		colSet[b] = true
	}

	ct := ContingencyTable{RowLabels: sortedKeys(rowSet), ColLabels: sortedKeys(colSet)}
	ct.Counts = make([][]float64, len(ct.RowLabels))
	for i, r := range ct.RowLabels {
		ct.Counts[i] = make([]float64, len(ct.ColLabels))
		for j, c := range ct.ColLabels {
			ct.Counts[i][j] = cells[[2]string{r, c}]
		}
	}
	return ct
}

// TopLabels returns the n most frequent labels of col, ties broken by label
func TopLabels(col *dataset.Column, n int) map[string]bool {
	freq := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if l, ok := col.Label(i); ok {
			freq[l]++
		}
	}
	labels := make([]string, 0, len(freq))
	for l := range freq {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if freq[labels[i]] != freq[labels[j]] {
			return freq[labels[i]] > freq[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if n < len(labels) {
		labels = labels[:n]
	}
	keep := make(map[string]bool, len(labels))
	for _, l := range labels {
		keep[l] = true
	}
	return keep
}

// Dims returns the number of rows and columns
func (c ContingencyTable) Dims() (int, int) {
	return len(c.RowLabels), len(c.ColLabels)
}

// Total returns the grand total
func (c ContingencyTable) Total() float64 {
	total := 0.0
	for _, row := range c.Counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// Margins returns the row and column totals
func (c ContingencyTable) Margins() (rows, cols []float64) {
	rows = make([]float64, len(c.RowLabels))
	cols = make([]float64, len(c.ColLabels))
	for i, row := range c.Counts {
		for j, v := range row {
			rows[i] += v
			cols[j] += v
		}
	}
	return rows, cols
}

// Prune drops rows and columns whose marginal total is below minCount, but
// only when some cell is below minCount. Categories emptied by the drop are
// removed too. It returns the pruned table and the number of categories
// removed.
func (c ContingencyTable) Prune(minCount float64) (ContingencyTable, int) {
	sparse := false
	for _, row := range c.Counts {
		for _, v := range row {
			if v < minCount {
				sparse = true
			}
		}
	}
	if !sparse {
		return c, 0
	}

	rowTotals, colTotals := c.Margins()
	out := c.subset(
		func(i int) bool { return rowTotals[i] >= minCount },
		func(j int) bool { return colTotals[j] >= minCount })

	rowTotals, colTotals = out.Margins()
	out = out.subset(func(i int) bool { return rowTotals[i] > 0 }, func(j int) bool { return colTotals[j] > 0 })

	r0, c0 := c.Dims()
	r1, c1 := out.Dims()
	return out, (r0 - r1) + (c0 - c1)
}

func (c ContingencyTable) subset(keepRow, keepCol func(int) bool) ContingencyTable {
	var out ContingencyTable
	var cols []int
	for j, l := range c.ColLabels {
		if keepCol(j) {
			cols = append(cols, j)
			out.ColLabels = append(out.ColLabels, l)
		}
	}
	for i, l := range c.RowLabels {
		if !keepRow(i) {
			continue
		}
		out.RowLabels = append(out.RowLabels, l)
		row := make([]float64, len(cols))
		for k, j := range cols {
			row[k] = c.Counts[i][j]
		}
		out.Counts = append(out.Counts, row)
	}
	return out
}

// ChiSquareOutcome is the test of independence on one table
type ChiSquareOutcome struct {
	Statistic   float64
	DOF         int
	PValue      float64
	MinExpected float64
	Yates       bool
	CramersV    float64
}

// ChiSquare runs Pearson's test of independence. 2x2 tables get Yates'
// continuity correction. The table must be at least 2x2 with no empty
// row or column.
func ChiSquare(c ContingencyTable) ChiSquareOutcome {
	rows, cols := c.Dims()
	rowTotals, colTotals := c.Margins()
	total := c.Total()
	dof := (rows - 1) * (cols - 1)
	yates := dof == 1

	chiSq := 0.0
	minExpected := math.Inf(1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			expected := rowTotals[i] * colTotals[j] / total
			if expected < minExpected {
				minExpected = expected
			}
			diff := math.Abs(c.Counts[i][j] - expected)
			if yates {
				diff -= math.Min(0.5, diff)
			}
			chiSq += diff * diff / expected
		}
	}

	minDim := math.Min(float64(rows-1), float64(cols-1))
	return ChiSquareOutcome{
		Statistic:   chiSq,
		DOF:         dof,
		PValue:      distuv.ChiSquared{K: float64(dof)}.Survival(chiSq),
		MinExpected: minExpected,
		Yates:       yates,
		CramersV:    math.Sqrt(chiSq / (total * minDim)),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

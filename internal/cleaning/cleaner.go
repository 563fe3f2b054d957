package cleaning

import (
	"log/slog"
	"math"

	"salesaudit/domain/dataset"
	"salesaudit/internal/profiling"
)

// Options configures the cleaner
type Options struct {
	RevenueColumn   string
	DateColumn      string
	DeliveryColumn  string
	IQRMultiplier   float64
	CohortMonths    int
	FastMaxDays     int
	StandardMaxDays int
}

// Summary records what the cleaner did, for the data quality report
type Summary struct {
	RevenueColumn      string                  `json:"revenue_column"`
	RevenueDerivedFrom []string                `json:"revenue_derived_from,omitempty"`
	RevenueBound       *profiling.OutlierBound `json:"revenue_bound,omitempty"`
	Capped             int                     `json:"capped"`
	Floored            int                     `json:"floored"`
	AgeGroupDerived    bool                    `json:"age_group_derived"`
	DerivedColumns     []string                `json:"derived_columns"`
	Warnings           []string                `json:"warnings,omitempty"`
}

// Cleaner appends cleaned and derived columns to a table. Original columns
// are never replaced.
type Cleaner struct {
	opts   Options
	logger *slog.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(opts Options, logger *slog.Logger) *Cleaner {
	return &Cleaner{opts: opts, logger: logger}
}

// Clean returns a new table with the derived columns appended. Transforms
// whose inputs are absent are skipped with a warning.
func (c *Cleaner) Clean(t *dataset.Table) (*dataset.Table, Summary, error) {
	summary := Summary{RevenueColumn: c.opts.RevenueColumn}
	var derived []*dataset.Column

	revenue, fromCols := c.revenueValues(t)
	switch {
	case revenue == nil:
		c.warn(&summary, "revenue column unavailable; capping and log transform skipped",
			slog.String("column", c.opts.RevenueColumn))
	default:
		if len(fromCols) > 0 {
			summary.RevenueDerivedFrom = fromCols
			derived = append(derived, dataset.NewNumericColumn(c.opts.RevenueColumn, revenue).AsDerived())
		}
		derived = append(derived, c.capAndLog(revenue, &summary)...)
	}

	if col := c.ageGroup(t); col != nil {
		summary.AgeGroupDerived = true
		derived = append(derived, col)
	}
	derived = append(derived, c.timeFeatures(t, &summary)...)
	if col := c.deliverySpeed(t, &summary); col != nil {
		derived = append(derived, col)
	}

	out, err := t.WithColumns(derived...)
	if err != nil {
		return nil, summary, err
	}
	for _, col := range derived {
		summary.DerivedColumns = append(summary.DerivedColumns, col.Name)
	}
	c.logger.Info("cleaning complete",
		slog.Int("derived_columns", len(derived)),
		slog.Int("capped", summary.Capped),
		slog.Int("floored", summary.Floored))
	return out, summary, nil
}

// revenueValues returns the revenue vector and, when it had to be derived,
// the columns it was derived from: FinalPrice x Quantity, falling back to
// Price x Quantity.
func (c *Cleaner) revenueValues(t *dataset.Table) ([]float64, []string) {
	if col, ok := t.Column(c.opts.RevenueColumn); ok {
		if col.Type != dataset.TypeNumeric {
			return nil, nil
		}
		return col.Floats(), nil
	}
	qty, ok := numericColumn(t, dataset.ColQuantity)
	if !ok {
		return nil, nil
	}
	for _, priceName := range []string{dataset.ColFinalPrice, dataset.ColPrice} {
		price, ok := numericColumn(t, priceName)
		if !ok {
			continue
		}
		out := make([]float64, t.RowCount())
		for i := range out {
			p, okP := price.Float(i)
			q, okQ := qty.Float(i)
			if okP && okQ {
				out[i] = p * q
			} else {
				out[i] = math.NaN()
			}
		}
		return out, []string{priceName, dataset.ColQuantity}
	}
	return nil, nil
}

func (c *Cleaner) capAndLog(revenue []float64, summary *Summary) []*dataset.Column {
	present := make([]float64, 0, len(revenue))
	for _, v := range revenue {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	bound, err := profiling.IQRBounds(c.opts.RevenueColumn, present, c.opts.IQRMultiplier)
	if err != nil {
		c.warn(summary, "revenue has no present values; capping skipped", slog.String("reason", err.Error()))
		return nil
	}
	summary.RevenueBound = &bound

	capped, changed := CapValues(revenue, bound)
	summary.Capped = changed

	logged, floored := Log1pFloor(capped)
	summary.Floored = floored
	if floored > 0 {
		c.warn(summary, "negative capped revenue floored at 0 before log transform", slog.Int("values", floored))
	}

	return []*dataset.Column{
		dataset.NewNumericColumn(dataset.ColRevenueCapped, capped).AsDerived(),
		dataset.NewNumericColumn(dataset.ColRevenueLog, logged).AsDerived(),
	}
}

func (c *Cleaner) ageGroup(t *dataset.Table) *dataset.Column {
	if t.HasColumn(dataset.ColAgeGroup) {
		return nil
	}
	age, ok := numericColumn(t, dataset.ColAge)
	if !ok {
		return nil
	}
	groups := make([]string, t.RowCount())
	for i := range groups {
		if v, ok := age.Float(i); ok {
			groups[i] = AgeGroup(v)
		}
	}
	return dataset.NewCategoricalColumn(dataset.ColAgeGroup, groups).AsDerived()
}

func (c *Cleaner) timeFeatures(t *dataset.Table, summary *Summary) []*dataset.Column {
	date, ok := t.Column(c.opts.DateColumn)
	if !ok || date.Type != dataset.TypeTimestamp {
		c.warn(summary, "order date unavailable; time features skipped", slog.String("column", c.opts.DateColumn))
		return nil
	}

	n := t.RowCount()
	weekday := make([]string, n)
	month := make([]string, n)
	cohort := make([]string, n)
	for i := 0; i < n; i++ {
		ts, ok := date.Time(i)
		if !ok {
			continue
		}
		weekday[i] = Weekday(ts)
		month[i] = MonthPeriod(ts)
		cohort[i] = CohortPeriod(ts, c.opts.CohortMonths)
	}
	return []*dataset.Column{
		dataset.NewCategoricalColumn(dataset.ColOrderWeekday, weekday).AsDerived(),
		dataset.NewCategoricalColumn(dataset.ColOrderMonth, month).AsDerived(),
		dataset.NewCategoricalColumn(dataset.ColOrderCohort, cohort).AsDerived(),
	}
}

func (c *Cleaner) deliverySpeed(t *dataset.Table, summary *Summary) *dataset.Column {
	days, ok := numericColumn(t, c.opts.DeliveryColumn)
	if !ok {
		c.warn(summary, "delivery days unavailable; speed buckets skipped", slog.String("column", c.opts.DeliveryColumn))
		return nil
	}
	speed := make([]string, t.RowCount())
	for i := range speed {
		if v, ok := days.Float(i); ok {
			speed[i] = DeliverySpeed(v, c.opts.FastMaxDays, c.opts.StandardMaxDays)
		}
	}
	return dataset.NewCategoricalColumn(dataset.ColDeliverySpeed, speed).AsDerived()
}

func (c *Cleaner) warn(summary *Summary, msg string, attrs ...any) {
	summary.Warnings = append(summary.Warnings, msg)
	c.logger.Warn(msg, attrs...)
}

func numericColumn(t *dataset.Table, name string) (*dataset.Column, bool) {
	col, ok := t.Column(name)
	if !ok || col.Type != dataset.TypeNumeric {
		return nil, false
	}
	return col, true
}

package app

import (
	"context"
	"log/slog"
	"time"

	"salesaudit/adapters/excel"
	"salesaudit/domain/dataset"
	"salesaudit/internal/cleaning"
	"salesaudit/internal/config"
	"salesaudit/internal/hypothesis"
	"salesaudit/internal/insights"
	"salesaudit/internal/profiling"
	"salesaudit/internal/report"
)

// Report files written under the reports directory
const (
	DataQualityReport = "data_quality_report.md"
	HypothesisReport  = "hypothesis_testing.md"
	InsightReport     = "insight_summary.md"
	WorkbookFile      = "data_quality.xlsx"
)

// AuditResult carries everything one run computed
type AuditResult struct {
	Input      *dataset.Table
	Cleaned    *dataset.Table
	Quality    report.DataQuality
	Hypotheses []hypothesis.Result
	Insights   insights.Summary
	Manifest   *report.Manifest
}

// AuditService runs the load, profile, clean, test and report pipeline
type AuditService struct {
	cfg    *config.Config
	logger *slog.Logger
	runner *StageRunner
	now    func() time.Time
}

// NewAuditService creates an audit service for a validated configuration
func NewAuditService(cfg *config.Config, logger *slog.Logger) *AuditService {
	return &AuditService{
		cfg:    cfg,
		logger: logger,
		runner: NewStageRunner(logger),
		now:    time.Now,
	}
}

// Run executes the pipeline once. Load, configuration and write failures
// abort the run; statistical edge cases are absorbed by the stages.
func (s *AuditService) Run(ctx context.Context) (*AuditResult, error) {
	cfg := s.cfg
	res := &AuditResult{Manifest: report.NewManifest(cfg.Input.CSVPath, cfg, s.now())}
	writer := report.NewWriter(cfg.Output, s.logger)

	s.logger.Info("audit started",
		slog.String("run_id", res.Manifest.RunID),
		slog.String("input", cfg.Input.CSVPath),
		slog.String("base_dir", cfg.Output.BaseDir))

	stages := []Stage{
		{Name: "load", Run: func(ctx context.Context) error {
			table, err := excel.NewDataReader(cfg.Input.CSVPath, dataset.SalesSchema, s.logger).
				ReadTable(cfg.Input.RequiredColumns)
			if err != nil {
				return err
			}
			res.Input = table
			return nil
		}},
		{Name: "profile", Run: func(ctx context.Context) error {
			return s.profile(res)
		}},
		{Name: "clean", Run: func(ctx context.Context) error {
			cleaner := cleaning.NewCleaner(cleaning.Options{
				RevenueColumn:   cfg.Cleaning.RevenueColumn,
				DateColumn:      cfg.Input.DateColumn,
				DeliveryColumn:  cfg.Cleaning.DeliveryColumn,
				IQRMultiplier:   cfg.Audit.IQRMultiplier,
				CohortMonths:    cfg.Cleaning.CohortMonths,
				FastMaxDays:     cfg.Cleaning.FastMaxDays,
				StandardMaxDays: cfg.Cleaning.StandardMaxDays,
			}, s.logger)
			cleaned, summary, err := cleaner.Clean(res.Input)
			if err != nil {
				return err
			}
			res.Cleaned = cleaned
			res.Quality.Cleaning = summary
			res.Quality.Types = profiling.ReportTypes(cleaned)
			return nil
		}},
		{Name: "hypothesis", Run: func(ctx context.Context) error {
			tester := hypothesis.NewTester(cfg.Hypothesis.Alpha, cfg.Hypothesis.MinExpectedCount, s.logger)
			results, err := tester.Run(ctx, res.Cleaned, hypothesis.DefaultBattery(cfg.Hypothesis.TopBrands))
			if err != nil {
				return err
			}
			res.Hypotheses = results
			return nil
		}},
		{Name: "insights", Run: func(ctx context.Context) error {
			res.Insights = insights.Aggregate(res.Cleaned, cfg.Cleaning.RevenueColumn)
			return nil
		}},
		{Name: "report", Run: func(ctx context.Context) error {
			return s.writeReports(writer, res)
		}},
	}

	if err := s.runner.Execute(ctx, stages); err != nil {
		return res, err
	}

	s.logger.Info("audit complete",
		slog.String("run_id", res.Manifest.RunID),
		slog.Int("rows", res.Quality.Rows),
		slog.Int("artifacts", len(res.Manifest.Artifacts)))
	return res, nil
}

func (s *AuditService) profile(res *AuditResult) error {
	t := res.Input
	q := report.DataQuality{
		Dataset:     t.Name,
		Rows:        t.RowCount(),
		Columns:     t.ColumnCount(),
		DateColumn:  s.cfg.Input.DateColumn,
		Missingness: profiling.AuditMissingness(t, s.cfg.Audit.MissingThreshold),
		Outliers:    profiling.NewOutlierDetector(s.cfg.Audit.IQRMultiplier, s.logger).Detect(t),
		Describe:    profiling.NewDistributionAnalyzer(s.logger).Describe(t),
	}

	dups, err := profiling.CheckDuplicates(t, s.cfg.Input.KeyColumn)
	if err != nil {
		return err
	}
	q.Duplicates = dups

	if date, ok := t.Column(s.cfg.Input.DateColumn); ok {
		if start, end, ok := date.TimeRange(); ok {
			q.Start, q.End = start, end
		}
	}

	flagged := q.Missingness.Flagged()
	s.logger.Info("profile complete",
		slog.Int("rows", q.Rows),
		slog.Int("flagged_columns", len(flagged)),
		slog.Int("duplicate_rows", dups.DuplicateRows),
		slog.Int("numeric_columns", len(q.Outliers)))
	res.Quality = q
	return nil
}

func (s *AuditService) writeReports(w *report.Writer, res *AuditResult) error {
	if err := w.EnsureDirs(); err != nil {
		return err
	}

	var logRevenue []float64
	if col, ok := res.Cleaned.Column(dataset.ColRevenueLog); ok {
		logRevenue = col.Floats()
	}
	charts, err := report.KPICharts(res.Insights, logRevenue)
	if err != nil {
		s.logger.Warn("charts skipped", slog.String("reason", err.Error()))
		charts = nil
	}
	if err := w.WriteCharts(charts); err != nil {
		return err
	}
	plots := make([]string, len(charts))
	for i, c := range charts {
		plots[i] = w.PlotPath(c.File)
	}

	alpha := s.cfg.Hypothesis.Alpha
	if err := w.WriteMarkdown(DataQualityReport, "Data Quality Report", report.RenderDataQuality(res.Quality)); err != nil {
		return err
	}
	if err := w.WriteMarkdown(HypothesisReport, "Hypothesis Testing", report.RenderHypotheses(res.Hypotheses, alpha)); err != nil {
		return err
	}
	if err := w.WriteMarkdown(InsightReport, "Insight Summary", report.RenderInsights(res.Insights, res.Hypotheses, plots)); err != nil {
		return err
	}

	if s.cfg.Output.Workbook {
		buf, err := report.BuildWorkbook(res.Quality, res.Hypotheses)
		if err != nil {
			return err
		}
		if err := w.WriteReport(WorkbookFile, buf.Bytes()); err != nil {
			return err
		}
	}

	m := res.Manifest
	m.Summarize(res.Quality, res.Hypotheses)
	m.FinishedAt = s.now().UTC()
	m.Artifacts = append(w.Artifacts(), w.ReportPath(report.ManifestFile))
	return w.WriteJSON(report.ManifestFile, m)
}

package app

import (
	"context"
	"log/slog"
	"time"

	"salesaudit/internal/errors"
)

// Stage is one step of the audit pipeline
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// StageRunner executes pipeline stages in order, one at a time
type StageRunner struct {
	logger *slog.Logger
}

// NewStageRunner creates a new stage runner
func NewStageRunner(logger *slog.Logger) *StageRunner {
	return &StageRunner{logger: logger}
}

// Execute runs the stages sequentially and stops at the first failure. The
// context is checked before each stage; a stage is never interrupted midway.
func (r *StageRunner) Execute(ctx context.Context, stages []Stage) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("pipeline cancelled", slog.String("stage", st.Name))
			return err
		}

		start := time.Now()
		r.logger.Debug("stage started", slog.String("stage", st.Name))
		if err := st.Run(ctx); err != nil {
			r.logger.Error("stage failed",
				slog.String("stage", st.Name),
				slog.String("code", errors.GetCode(err)),
				slog.String("error", err.Error()))
			return errors.Wrapf(err, "%s stage failed", st.Name)
		}
		r.logger.Info("stage complete",
			slog.String("stage", st.Name),
			slog.Duration("elapsed", time.Since(start)))
	}
	return nil
}

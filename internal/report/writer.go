package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salesaudit/internal/config"
	"salesaudit/internal/errors"
)

// Writer persists rendered artifacts under a base directory. Every path it
// returns is relative to the base directory.
type Writer struct {
	baseDir    string
	reportsDir string
	plotsDir   string
	overwrite  bool
	html       bool
	logger     *slog.Logger

	written []string
}

// NewWriter creates a writer from the output configuration
func NewWriter(cfg config.OutputConfig, logger *slog.Logger) *Writer {
	return &Writer{
		baseDir:    cfg.BaseDir,
		reportsDir: cfg.ReportsDir,
		plotsDir:   cfg.PlotsDir,
		overwrite:  cfg.Overwrite,
		html:       cfg.HTML,
		logger:     logger,
	}
}

// EnsureDirs creates the reports and plots directories
func (w *Writer) EnsureDirs() error {
	for _, dir := range []string{w.reportsDir, w.plotsDir} {
		full := filepath.Join(w.baseDir, dir)
		if err := os.MkdirAll(full, 0755); err != nil {
			return errors.WriteError(full, err)
		}
	}
	return nil
}

// Artifacts lists the files written so far, in write order
func (w *Writer) Artifacts() []string {
	out := make([]string, len(w.written))
	copy(out, w.written)
	return out
}

// ReportPath returns the relative path of a report file
func (w *Writer) ReportPath(name string) string {
	return filepath.Join(w.reportsDir, name)
}

// PlotPath returns the relative path of a plot file
func (w *Writer) PlotPath(name string) string {
	return filepath.Join(w.plotsDir, name)
}

// WriteMarkdown writes a markdown report and, when enabled, its HTML
// rendering next to it.
func (w *Writer) WriteMarkdown(name, title, markdown string) error {
	if err := w.write(w.ReportPath(name), []byte(markdown)); err != nil {
		return err
	}
	if !w.html {
		return nil
	}
	htmlName := strings.TrimSuffix(name, filepath.Ext(name)) + ".html"
	return w.write(w.ReportPath(htmlName), ToHTML(markdown, title))
}

// WriteReport writes arbitrary bytes into the reports directory
func (w *Writer) WriteReport(name string, data []byte) error {
	return w.write(w.ReportPath(name), data)
}

// WritePlot writes an encoded image into the plots directory
func (w *Writer) WritePlot(name string, data []byte) error {
	return w.write(w.PlotPath(name), data)
}

// WriteJSON writes v as indented JSON into the reports directory
func (w *Writer) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.WriteError(w.ReportPath(name), fmt.Errorf("failed to marshal: %w", err))
	}
	return w.write(w.ReportPath(name), data)
}

func (w *Writer) write(rel string, data []byte) error {
	full := filepath.Join(w.baseDir, rel)
	if !w.overwrite {
		if _, err := os.Stat(full); err == nil {
			return errors.WriteError(full, fmt.Errorf("file exists and overwrite is disabled"))
		}
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errors.WriteError(full, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return errors.WriteError(full, err)
	}
	w.written = append(w.written, rel)
	w.logger.Debug("artifact written", slog.String("path", rel), slog.Int("bytes", len(data)))
	return nil
}

package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salesaudit/adapters/datareadiness/coercer"
	"salesaudit/domain/dataset"
	"salesaudit/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader loads a CSV file or the first sheet of an XLSX workbook into a
// typed dataset.Table.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	schema   dataset.Schema
	coercer  *coercer.TypeCoercer
	logger   *slog.Logger
}

// NewDataReader creates a reader; the file type follows the extension, with
// anything other than .xlsx treated as CSV.
func NewDataReader(filePath string, schema dataset.Schema, logger *slog.Logger) *DataReader {
	fileType := "csv"
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		schema:   schema,
		coercer:  coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()),
		logger:   logger,
	}
}

// ReadTable reads the file, checks that every required column is present
// and coerces each column to its schema type, or to the inferred type for
// columns the schema does not know.
func (r *DataReader) ReadTable(required []string) (*dataset.Table, error) {
	if _, err := os.Stat(r.filePath); err != nil {
		return nil, errors.LoadError(fmt.Sprintf("%s file not accessible: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Info("input read",
		slog.String("file", r.filePath),
		slog.String("type", r.fileType),
		slog.Int("records", len(rows)),
		slog.Duration("elapsed", time.Since(start)))

	return r.buildTable(rows, required)
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.LoadError("failed to open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.LoadError("malformed CSV file", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.LoadError("failed to open Excel file", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.LoadError("Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.LoadError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	return rows, nil
}

func (r *DataReader) buildTable(rows [][]string, required []string) (*dataset.Table, error) {
	if len(rows) == 0 {
		return nil, errors.LoadError("input has no header row", nil)
	}

	headers := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(headers))
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			return nil, errors.LoadError(fmt.Sprintf("empty header in column %d", i+1), nil)
		}
		if seen[h] {
			return nil, errors.LoadError(fmt.Sprintf("duplicate header %q", h), nil)
		}
		seen[h] = true
		headers[i] = h
	}

	var missing []string
	for _, name := range required {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.CodeMissingColumn,
			fmt.Sprintf("required columns not found: %s", strings.Join(missing, ", ")))
	}

	data := rows[1:]
	table := dataset.NewTable(strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath)), len(data))

	for j, name := range headers {
		raw := make([]string, len(data))
		for i, row := range data {
			// xlsx rows drop trailing empty cells
			if j < len(row) {
				raw[i] = row[j]
			}
		}

		typ := r.columnType(name, raw)
		col, failures := r.coercer.CoerceColumn(name, typ, raw)
		if failures > 0 {
			r.logger.Warn("cells did not parse as column type and were treated as missing",
				slog.String("column", name),
				slog.String("type", string(typ)),
				slog.Int("cells", failures))
		}
		if err := table.AddColumn(col); err != nil {
			return nil, errors.LoadError("failed to assemble table", err)
		}
	}

	r.logger.Info("table loaded",
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))
	return table, nil
}

func (r *DataReader) columnType(name string, raw []string) dataset.SemanticType {
	if spec, ok := r.schema.Lookup(name); ok {
		return spec.Type
	}
	analysis := r.coercer.AnalyzeTypeDistribution(raw)
	r.logger.Debug("inferred column type",
		slog.String("column", name),
		slog.String("type", string(analysis.RecommendedType)),
		slog.Float64("numeric_ratio", analysis.NumericRatio))
	return analysis.RecommendedType
}

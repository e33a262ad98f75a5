// internal/resultfile/table.go
// Package: resultfile
package resultfile

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mwiater/arstats/internal/record"
)

const (
	colFile    = "file"
	colResults = "results"
	colB0      = "b0"
	colB1      = "b1"
)

// resultJSON is one per-(train_size, lag) entry of a "results" cell.
type resultJSON struct {
	TrainSize     *int          `json:"train_size"`
	Lag           *int          `json:"lag"`
	ARMAE         record.Series `json:"ar_mae"`
	ARRMSE        record.Series `json:"ar_rmse"`
	ARFitTime     record.Series `json:"ar_fit_time"`
	ARPredictTime record.Series `json:"ar_predict_time"`
	ARError       record.Series `json:"ar_error"`
	TotalCount    *int          `json:"total_count"`
}

// baselineJSON is the content of a "b0" or "b1" cell.
type baselineJSON struct {
	MAE  record.Series `json:"mae"`
	RMSE record.Series `json:"rmse"`
}

type columns struct {
	file, results, b0, b1 int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{file: -1, results: -1, b0: -1, b1: -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case colFile:
			cols.file = i
		case colResults:
			cols.results = i
		case colB0:
			cols.b0 = i
		case colB1:
			cols.b1 = i
		}
	}
	if cols.file < 0 || cols.results < 0 {
		return cols, fmt.Errorf("header must contain %q and %q columns, got %v", colFile, colResults, header)
	}
	return cols, nil
}

// DecodeFileTable reads a per-file benchmark table. Each data row holds
// the sample file name, a JSON list of results and optional b0/b1
// baseline objects. Rows written without CSV quoting (the runner dumps JSON
// straight into the line) are recovered by scanning the JSON values. A
// line that cannot be split or lacks a usable results list is rejected as
// a whole; otherwise each results element and baseline cell is checked
// against the schema on its own.
func DecodeFileTable(r io.Reader, source string) (record.Batch, error) {
	batch := record.Batch{Source: source}
	br := bufio.NewReader(r)

	first, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && first != "") {
		return batch, fmt.Errorf("failed to read header: %w", err)
	}
	header, err := splitCSVLine(first)
	if err != nil {
		return batch, fmt.Errorf("failed to parse header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return batch, err
	}

	algo := AlgorithmFromPath(source)
	for line := 2; ; line++ {
		text, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return batch, rerr
		}
		if strings.TrimSpace(text) == "" {
			if rerr != nil {
				break
			}
			continue
		}

		row, err := splitCSVLine(text)
		if err != nil || len(row) != len(header) {
			row, err = splitDumpLine(strings.TrimRight(text, "\r\n"), len(header))
		}
		if err != nil {
			batch.Rejected = append(batch.Rejected, fmt.Errorf("line %d: %w", line, err))
		} else {
			recs, rejected := decodeRow(row, cols, source, algo)
			for _, err := range rejected {
				batch.Rejected = append(batch.Rejected, fmt.Errorf("line %d: %w", line, err))
			}
			batch.Records = append(batch.Records, recs...)
		}
		if rerr != nil {
			break
		}
	}
	return batch, nil
}

// splitCSVLine parses one physical line as an RFC 4180 record.
func splitCSVLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", record.ErrMalformedRecord, err)
	}
	return row, nil
}

// decodeRow decodes the records of one row. An unusable file cell or a
// results cell that is not a JSON list rejects the row.
func decodeRow(row []string, cols columns, source, algo string) ([]record.RawRecord, []error) {
	file := strings.TrimSpace(row[cols.file])
	if file == "" {
		return nil, []error{fmt.Errorf("%w: empty %q cell", record.ErrMalformedRecord, colFile)}
	}
	category := CategoryFromPath(file)

	var results []json.RawMessage
	if err := strictUnmarshal(row[cols.results], &results); err != nil {
		return nil, []error{fmt.Errorf("%s cell: %w", colResults, err)}
	}

	var rejected []error
	recs := make([]record.RawRecord, 0, len(results)+2)
	for i, raw := range results {
		var res resultJSON
		if err := strictUnmarshal(string(raw), &res); err != nil {
			rejected = append(rejected, fmt.Errorf("results[%d]: %w", i, err))
			continue
		}
		if res.TrainSize == nil || res.Lag == nil {
			rejected = append(rejected, fmt.Errorf("%w: results[%d] lacks train_size or lag", record.ErrMalformedRecord, i))
			continue
		}
		fields := make(map[record.Measurement]record.Series, 5)
		addSeries(fields, record.MAE, res.ARMAE)
		addSeries(fields, record.RMSE, res.ARRMSE)
		addSeries(fields, record.FitTime, res.ARFitTime)
		addSeries(fields, record.PredictTime, res.ARPredictTime)
		addSeries(fields, record.FitError, res.ARError)
		recs = append(recs, record.RawRecord{
			Source:    source,
			Algorithm: algo,
			Category:  category,
			TrainSize: *res.TrainSize,
			Lag:       *res.Lag,
			Fields:    fields,
		})
	}

	for _, b := range []struct {
		col int
		id  record.Baseline
	}{{cols.b0, record.SilenceSubstitution}, {cols.b1, record.PatternReplication}} {
		if b.col < 0 || strings.TrimSpace(row[b.col]) == "" {
			continue
		}
		var base baselineJSON
		if err := strictUnmarshal(row[b.col], &base); err != nil {
			rejected = append(rejected, fmt.Errorf("%s cell: %w", b.id, err))
			continue
		}
		fields := make(map[record.Measurement]record.Series, 2)
		addSeries(fields, record.MAE, base.MAE)
		addSeries(fields, record.RMSE, base.RMSE)
		recs = append(recs, record.RawRecord{
			Source:    source,
			Algorithm: algo,
			Category:  category,
			Baseline:  b.id,
			Fields:    fields,
		})
	}
	return recs, rejected
}

func addSeries(fields map[record.Measurement]record.Series, m record.Measurement, s record.Series) {
	if s != nil {
		fields[m] = s
	}
}

// strictUnmarshal decodes one JSON value with unknown fields rejected and
// no trailing data allowed.
func strictUnmarshal(cell string, v any) error {
	dec := json.NewDecoder(strings.NewReader(cell))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", record.ErrMalformedRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON value", record.ErrMalformedRecord)
	}
	return nil
}

// ReadFileTable opens and decodes a CSV benchmark table.
func ReadFileTable(path string) (record.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return record.Batch{Source: path}, err
	}
	defer f.Close()
	return DecodeFileTable(f, path)
}

// internal/resultfile/trials.go
// Package: resultfile
package resultfile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mwiater/arstats/internal/record"
)

// trialJSON is one element of a per-trial JSON file. Keys not listed
// here (such as "max") are ignored.
type trialJSON struct {
	TrainSize  *int          `json:"train_size"`
	Lag        *int          `json:"lag"`
	AbsErrors  record.Series `json:"ar_ae"`
	Prediction record.Series `json:"prediction"`
}

// DecodeTrials reads a JSON array of trial objects. The file must be an
// array; each element that does not match the schema is rejected on its
// own without affecting its neighbours.
func DecodeTrials(r io.Reader, source string) (record.Batch, error) {
	batch := record.Batch{Source: source}

	var elems []json.RawMessage
	if err := json.NewDecoder(r).Decode(&elems); err != nil {
		return batch, fmt.Errorf("failed to decode trial array: %w", err)
	}

	algo := AlgorithmFromPath(source)
	for i, raw := range elems {
		rec, err := decodeTrial(raw, source, algo)
		if err != nil {
			batch.Rejected = append(batch.Rejected, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func decodeTrial(raw json.RawMessage, source, algo string) (record.RawRecord, error) {
	var t trialJSON
	if err := json.Unmarshal(raw, &t); err != nil {
		return record.RawRecord{}, fmt.Errorf("%w: %w", record.ErrMalformedRecord, err)
	}
	if t.TrainSize == nil || t.Lag == nil {
		return record.RawRecord{}, fmt.Errorf("%w: train_size and lag are required", record.ErrMalformedRecord)
	}
	if t.AbsErrors == nil && t.Prediction == nil {
		return record.RawRecord{}, fmt.Errorf("%w: one of ar_ae or prediction is required", record.ErrMalformedRecord)
	}
	fields := make(map[record.Measurement]record.Series, 2)
	if t.AbsErrors != nil {
		fields[record.AbsError] = t.AbsErrors
	}
	if t.Prediction != nil {
		fields[record.Prediction] = t.Prediction
	}
	return record.RawRecord{
		Source:    source,
		Algorithm: algo,
		Category:  algo,
		TrainSize: *t.TrainSize,
		Lag:       *t.Lag,
		Fields:    fields,
	}, nil
}

// ReadTrialsFile opens and decodes a JSON trial file.
func ReadTrialsFile(path string) (record.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return record.Batch{Source: path}, err
	}
	defer f.Close()
	return DecodeTrials(f, path)
}

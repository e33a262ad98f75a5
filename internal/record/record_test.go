package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestSeriesPresentDropsMissing(t *testing.T) {
	s := Series{f64(0.1), nil, f64(0.3), nil, nil, f64(0.0)}
	assert.Equal(t, []float64{0.1, 0.3, 0.0}, s.Present())
	assert.Equal(t, 3, s.Missing())
	assert.Len(t, s.Present(), len(s)-s.Missing())
}

func TestValuesHasNoMissing(t *testing.T) {
	s := Values(1, 2, 3)
	assert.Equal(t, 0, s.Missing())
	assert.Equal(t, []float64{1, 2, 3}, s.Present())
}

func TestValidate(t *testing.T) {
	fields := map[Measurement]Series{MAE: Values(0.1)}

	tests := []struct {
		name    string
		rec     RawRecord
		wantErr bool
	}{
		{"ok", RawRecord{TrainSize: 512, Lag: 4, Fields: fields}, false},
		{"zero train size", RawRecord{TrainSize: 0, Lag: 4, Fields: fields}, true},
		{"negative lag", RawRecord{TrainSize: 512, Lag: -1, Fields: fields}, true},
		{"baseline without dimensions", RawRecord{Baseline: SilenceSubstitution, Fields: fields}, false},
		{"unknown baseline", RawRecord{Baseline: "b7", Fields: fields}, true},
		{"no fields", RawRecord{TrainSize: 512, Lag: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedRecord)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMeasurementIsTiming(t *testing.T) {
	assert.True(t, FitTime.IsTiming())
	assert.True(t, PredictTime.IsTiming())
	assert.False(t, MAE.IsTiming())
	assert.False(t, AbsError.IsTiming())
}

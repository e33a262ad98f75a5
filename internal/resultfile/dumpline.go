// internal/resultfile/dumpline.go
// Package: resultfile
package resultfile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/arstats/internal/record"
)

// splitDumpLine splits an unquoted runner line into n cells. Cells that
// start with '[' or '{' are consumed as one JSON value, so commas inside
// them do not split; every other cell ends at the next comma.
func splitDumpLine(line string, n int) ([]string, error) {
	cells := make([]string, 0, n)
	rest := line
	for i := 0; i < n; i++ {
		last := i == n-1
		trimmed := strings.TrimLeft(rest, " ")
		var cell string

		switch {
		case strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{"):
			dec := json.NewDecoder(strings.NewReader(trimmed))
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("%w: cell %d: %w", record.ErrMalformedRecord, i, err)
			}
			end := int(dec.InputOffset())
			cell, rest = trimmed[:end], trimmed[end:]
		case last:
			cell, rest = rest, ""
		default:
			j := strings.IndexByte(rest, ',')
			if j < 0 {
				return nil, fmt.Errorf("%w: expected %d cells, got %d", record.ErrMalformedRecord, n, i+1)
			}
			cell, rest = rest[:j], rest[j:]
		}
		cells = append(cells, cell)

		rest = strings.TrimLeft(rest, " ")
		if last {
			break
		}
		if !strings.HasPrefix(rest, ",") {
			return nil, fmt.Errorf("%w: expected ',' after cell %d", record.ErrMalformedRecord, i)
		}
		rest = rest[1:]
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("%w: unexpected data after %d cells", record.ErrMalformedRecord, n)
	}
	return cells, nil
}

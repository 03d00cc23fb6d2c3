package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/danieljhkim/lanesim/internal/lattice"
)

// ContentType is the media type of an encoded table.
const ContentType = "text/csv"

// FileName returns the table name for one lane of a sweep run.
func FileName(caseID string, lane lattice.Lane, param string, value float64) string {
	return fmt.Sprintf("case_%s__lane%s__param_%s_%.2f.csv", caseID, lane, param, value)
}

// EncodeCSV renders a density profile as an "i,rho" table. Values use the
// shortest representation that round-trips.
func EncodeCSV(rho []float64) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"i", "rho"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, v := range rho {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(v, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a table written by EncodeCSV. Rows must be numbered
// 1..n in order.
func DecodeCSV(data []byte) ([]float64, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	if len(records) == 0 || len(records[0]) != 2 || records[0][0] != "i" || records[0][1] != "rho" {
		return nil, fmt.Errorf("failed to parse table: missing i,rho header")
	}

	rho := make([]float64, 0, len(records)-1)
	for n, rec := range records[1:] {
		if len(rec) != 2 {
			return nil, fmt.Errorf("failed to parse row %d: expected 2 fields, got %d", n+1, len(rec))
		}
		i, err := strconv.Atoi(rec[0])
		if err != nil || i != n+1 {
			return nil, fmt.Errorf("failed to parse row %d: bad site number %q", n+1, rec[0])
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", n+1, err)
		}
		rho = append(rho, v)
	}
	return rho, nil
}

package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

// StateLabels names the components of the 9-dimensional vehicle state.
var StateLabels = []string{"x", "y", "z", "vx", "vy", "vz", "wx", "wy", "wz"}

// Header returns the CSV header for states of dimension n.
func Header(n int) []string {
	header := []string{"time"}
	if n == len(StateLabels) {
		return append(header, StateLabels...)
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	return header
}

// WriteCSV writes one row per sample. Values are formatted to round-trip
// exactly.
func WriteCSV(w io.Writer, result *dynamo.Result) error {
	cw := csv.NewWriter(w)

	if len(result.States) == 0 {
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write(Header(len(result.States[0]))); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, val := range result.States[i] {
			row = append(row, formatFloat(val))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) ([]dynamo.State, []float64, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: time: %w", i+1, err)
		}
		times = append(times, t)

		state := make(dynamo.State, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d, column %d: %w", i+1, j, err)
			}
			state[j-1] = val
		}
		states = append(states, state)
	}

	return states, times, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

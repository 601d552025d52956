package verify

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// Record is one row of the verification artifact: the fixed- and
// float-domain view of a single sample.
type Record struct {
	Index    int
	Time     float64
	FixedIn  int32
	FloatIn  float64
	FixedOut int32
	FloatOut float64
}

// Recording is the per-sample trace of one verification run, suitable for
// archival and offline inspection.
type Recording struct {
	SampleRate float64
	Records    []Record
}

var csvHeader = []string{"n", "t", "input_fixed", "input_float", "output_fixed", "output_float"}

// WriteCSV renders the recording as CSV, one row per sample.
func (r Recording) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range r.Records {
		row := []string{
			strconv.Itoa(rec.Index),
			strconv.FormatFloat(rec.Time, 'g', -1, 64),
			strconv.FormatInt(int64(rec.FixedIn), 10),
			strconv.FormatFloat(rec.FloatIn, 'g', -1, 64),
			strconv.FormatInt(int64(rec.FixedOut), 10),
			strconv.FormatFloat(rec.FloatOut, 'g', -1, 64),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSVFile writes the recording to a file.
func (r Recording) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

package harness

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ResultRecord holds the results of one benchmark read back from a CSV result
// file or a session log.
type ResultRecord struct {
	Name   string
	Values map[string]string
	Units  map[string]string // Only known for session logs
	Error  bool              // Results were discarded
}

// Value returns the named result, or missing when there is none.
func (r ResultRecord) Value(name, missing string) string {
	return lo.ValueOr(r.Values, name, missing)
}

// Float returns the named result as a number.
func (r ResultRecord) Float(name string) (float64, bool) {
	v, err := strconv.ParseFloat(r.Values[name], 64)
	return v, err == nil
}

// Verification returns PASS, FAIL, N/A or ERROR.
func (r ResultRecord) Verification() string {
	if r.Error {
		return "ERROR"
	}
	return r.Value("Verification", "N/A")
}

// SummaryRow returns the row of r in a summary table. unit names the
// throughput when the record carries no units.
func (r ResultRecord) SummaryRow(unit string) SummaryRow {
	row := SummaryRow{
		Name:         r.Name,
		MeanRunTime:  FormatSeconds(r.Value(RunTime+"-mean", "-")),
		MinRunTime:   FormatSeconds(r.Value(RunTime+"-min", "-")),
		Throughput:   "-",
		Verification: r.Verification(),
	}
	if tp := r.Value(RunTime+"-throughput", "N/A"); tp != "N/A" {
		row.Throughput = FormatThroughput(tp, lo.ValueOr(r.Units, RunTime+"-throughput", unit))
	}
	return row
}

// ReadResults loads a results file: a session log when the name ends in
// ".json", CSV otherwise.
func ReadResults(path string) ([]ResultRecord, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		session, err := ReadSession(path)
		if err != nil {
			return nil, err
		}
		return lo.Map(session.Benchmarks, func(b SessionResult, _ int) ResultRecord {
			return ResultRecord{Name: b.Name, Values: b.Results, Units: b.Units, Error: b.Status == "error"}
		}), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	records, err := ParseCSVResults(f)
	return records, errors.WithMessage(err, path)
}

// ParseCSVResults reads the rows written by CSVConsumer. Every header line
// starts a new set of columns, so files appended by runs with different result
// sets still parse.
func ParseCSVResults(r io.Reader) ([]ResultRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var (
		records []ResultRecord
		header  []string
	)
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "parsing CSV results")
		}
		if strings.HasPrefix(row[0], "#") {
			header = row
			continue
		}
		if header == nil {
			return nil, errors.Errorf("line %d: result row before the header", line)
		}
		rec := ResultRecord{Name: row[0], Values: make(map[string]string, len(header)-1)}
		for i := 1; i < len(row) && i < len(header); i++ {
			rec.Values[header[i]] = row[i]
		}
		records = append(records, rec)
	}
}

package harness

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ResultConsumer receives the results of benchmarks. Results belong to the
// benchmark named by the last ProceedToBenchmark call; Flush guarantees they
// were written out, Discard drops them.
type ResultConsumer interface {
	ProceedToBenchmark(name string)
	ConsumeResult(name, value, comment string)
	Discard()
	Flush() error
}

// StdioConsumer prints results as they arrive.
type StdioConsumer struct {
	w io.Writer
}

// NewStdioConsumer prints to w, or to stdout when w is nil.
func NewStdioConsumer(w io.Writer) *StdioConsumer {
	if w == nil {
		w = os.Stdout
	}
	return &StdioConsumer{w: w}
}

func (c *StdioConsumer) ProceedToBenchmark(name string) {
	fmt.Fprintf(c.w, "********** Results for %s**********\n", name)
}

func (c *StdioConsumer) ConsumeResult(name, value, comment string) {
	if comment != "" {
		fmt.Fprintf(c.w, "%s: %s Note: %s\n", name, value, comment)
		return
	}
	fmt.Fprintf(c.w, "%s: %s\n", name, value)
}

// Discard is a no-op: results were already printed.
func (c *StdioConsumer) Discard() {}

func (c *StdioConsumer) Flush() error { return nil }

type result struct {
	name, value, comment string
}

// CSVConsumer appends one row per benchmark to a CSV file. The header holds
// the result names and is written only when the file is empty.
type CSVConsumer struct {
	path    string
	bench   string
	results []result
}

// NewCSVConsumer appends to the file at path, creating it if needed.
func NewCSVConsumer(path string) *CSVConsumer {
	return &CSVConsumer{path: path}
}

func (c *CSVConsumer) ProceedToBenchmark(name string) {
	c.bench = name
	c.results = c.results[:0]
}

func (c *CSVConsumer) ConsumeResult(name, value, comment string) {
	c.results = append(c.results, result{name: name, value: value, comment: comment})
}

func (c *CSVConsumer) Discard() {
	c.results = c.results[:0]
}

func (c *CSVConsumer) Flush() error {
	if len(c.results) == 0 {
		return nil
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening result file %s", c.path)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "inspecting result file %s", c.path)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		header := []string{"# Benchmark name"}
		for _, r := range c.results {
			header = append(header, r.name)
		}
		if err := w.Write(header); err != nil {
			return errors.Wrap(err, "writing CSV header")
		}
	}
	row := []string{c.bench}
	for _, r := range c.results {
		row = append(row, unquote(r.value))
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "writing CSV row")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "writing result file %s", c.path)
	}
	c.results = c.results[:0]
	return nil
}

// unquote strips the quotes of values that are pre-quoted for stdio, the CSV
// writer quotes fields itself.
func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v[1 : len(v)-1]
	}
	return v
}

// Tee forwards every call to all of its consumers.
type Tee []ResultConsumer

func (t Tee) ProceedToBenchmark(name string) {
	for _, c := range t {
		c.ProceedToBenchmark(name)
	}
}

func (t Tee) ConsumeResult(name, value, comment string) {
	for _, c := range t {
		c.ConsumeResult(name, value, comment)
	}
}

func (t Tee) Discard() {
	for _, c := range t {
		c.Discard()
	}
}

// Flush flushes every consumer and returns the first error.
func (t Tee) Flush() error {
	var first error
	for _, c := range t {
		if err := c.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package harness

import (
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// SummaryRow is the digest of one benchmark in a summary table.
type SummaryRow struct {
	Name         string
	MeanRunTime  string
	MinRunTime   string
	Throughput   string
	Verification string
}

// SummaryConsumer collects one row per benchmark to render a table at the end
// of a session.
type SummaryConsumer struct {
	rows    []SummaryRow
	current *SummaryRow
}

// NewSummaryConsumer returns an empty summary.
func NewSummaryConsumer() *SummaryConsumer {
	return &SummaryConsumer{}
}

func (c *SummaryConsumer) ProceedToBenchmark(name string) {
	c.current = &SummaryRow{Name: name, MeanRunTime: "-", MinRunTime: "-", Throughput: "-", Verification: "N/A"}
}

func (c *SummaryConsumer) ConsumeResult(name, value, comment string) {
	if c.current == nil {
		return
	}
	switch name {
	case RunTime + "-mean":
		c.current.MeanRunTime = FormatSeconds(value)
	case RunTime + "-min":
		c.current.MinRunTime = FormatSeconds(value)
	case RunTime + "-throughput":
		if value != "N/A" {
			c.current.Throughput = FormatThroughput(value, comment)
		}
	case "Verification":
		c.current.Verification = value
	}
}

func (c *SummaryConsumer) Discard() {
	if c.current != nil {
		c.current.Verification = "ERROR"
		c.rows = append(c.rows, *c.current)
	}
	c.current = nil
}

func (c *SummaryConsumer) Flush() error {
	if c.current != nil {
		c.rows = append(c.rows, *c.current)
		c.current = nil
	}
	return nil
}

// Rows returns the rows collected so far.
func (c *SummaryConsumer) Rows() []SummaryRow {
	return c.rows
}

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Reverse(true)
	passStyle   = cellStyle.Foreground(lipgloss.Color("2"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("1")).Bold(true)
)

// Render returns the rows as a table.
func (c *SummaryConsumer) Render() string {
	return RenderSummary(c.rows)
}

// RenderSummary formats rows as a table with one line per benchmark.
func RenderSummary(rows []SummaryRow) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Benchmark", "Mean run time", "Min run time", "Throughput", "Verification").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(rows) {
				switch rows[row].Verification {
				case "PASS":
					return passStyle
				case "FAIL", "ERROR":
					return failStyle
				}
			}
			return cellStyle
		})
	for _, r := range rows {
		table.Row(r.Name, r.MeanRunTime, r.MinRunTime, r.Throughput, r.Verification)
	}
	return table.String()
}

// FormatSeconds renders a value in seconds as a duration, or returns it
// unchanged if it is not a number.
func FormatSeconds(value string) string {
	s, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return time.Duration(math.Round(s * float64(time.Second))).String()
}

// FormatThroughput renders a throughput with an SI prefix, "1.5 GB/s".
func FormatThroughput(value, unit string) string {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return humanize.SIWithDigits(v, 2, unit)
}

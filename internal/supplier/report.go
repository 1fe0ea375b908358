package supplier

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// csvReportIterator streams a semicolon-separated delivery report of the form
//
//	sku;qty;price
//
// one line at a time. Rows are parsed on demand so large reports are never
// fully buffered.
type csvReportIterator struct {
	f      *os.File
	r      *csv.Reader
	line   int
	header bool
}

// OpenCSVReport opens a delivery report file for streaming.
func OpenCSVReport(path string) (ReportIterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = 3
	r.TrimLeadingSpace = true
	return &csvReportIterator{f: f, r: r}, nil
}

func (it *csvReportIterator) Next() (ReportItem, error) {
	for {
		record, err := it.r.Read()
		if err == io.EOF {
			return ReportItem{}, io.EOF
		}
		if err != nil {
			return ReportItem{}, fmt.Errorf("read report line %d: %w", it.line+1, err)
		}
		it.line++

		// Skip a header row if the first line is not numeric.
		if it.line == 1 && !it.header {
			if _, convErr := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64); convErr != nil {
				it.header = true
				continue
			}
		}

		item, err := parseReportRecord(record)
		if err != nil {
			return ReportItem{}, fmt.Errorf("report line %d: %w", it.line, err)
		}
		return item, nil
	}
}

func (it *csvReportIterator) Close() error {
	return it.f.Close()
}

func parseReportRecord(record []string) (ReportItem, error) {
	sku := strings.TrimSpace(record[0])
	if sku == "" {
		return ReportItem{}, fmt.Errorf("empty sku")
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(record[1]), 10, 64)
	if err != nil {
		return ReportItem{}, fmt.Errorf("invalid qty %q", record[1])
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return ReportItem{}, fmt.Errorf("invalid price %q", record[2])
	}
	return ReportItem{SKU: sku, Qty: qty, Price: price}, nil
}

// Package importer parses uploaded spreadsheets into reconciliation batches.
// Expected layout for both file kinds: product name in the first column, a
// quantity in the second, with an optional header row that is detected and
// skipped.
package importer

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SalesRow: parsed line of a sales report (quantity sold per product name).
type SalesRow struct {
	ProductName  string
	QuantitySold float64
}

// CountRow: parsed line of a stock-count sheet (absolute counted level).
type CountRow struct {
	ProductName string
	NewStock    float64
}

var headerWords = []string{"PRODUIT", "PRODUCT", "ARTICLE", "NOM", "NAME"}

// isHeaderRow: the first row is a header when its first cell names the
// product column rather than a product.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimSpace(row[0]))
	for _, word := range headerWords {
		if strings.Contains(first, word) {
			return true
		}
	}
	return false
}

var thousandsSep = regexp.MustCompile(`\.(\d{3})`)

// parseQuantity accepts both "1234.5" and French-formatted "1.234,5".
func parseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	if strings.Contains(s, ",") {
		s = thousandsSep.ReplaceAllString(s, "$1")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return strconv.ParseFloat(s, 64)
}

// readRows opens the workbook and returns the data rows of its first sheet,
// header row excluded.
func readRows(r io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}
	if isHeaderRow(rows[0]) {
		rows = rows[1:]
	}
	return rows, nil
}

// ParseSalesWorkbook parses a sales export into per-product sold quantities.
// Rows with an empty name or an unparseable quantity are skipped; their
// count is returned so the caller can report them.
func ParseSalesWorkbook(r io.Reader) ([]SalesRow, int, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, 0, err
	}

	var out []SalesRow
	skipped := 0
	for _, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		qty, err := parseQuantity(row[1])
		if err != nil {
			skipped++
			continue
		}
		out = append(out, SalesRow{
			ProductName:  strings.TrimSpace(row[0]),
			QuantitySold: qty,
		})
	}
	return out, skipped, nil
}

// ParseCountWorkbook parses a physical inventory count into absolute stock
// levels per product name.
func ParseCountWorkbook(r io.Reader) ([]CountRow, int, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, 0, err
	}

	var out []CountRow
	skipped := 0
	for _, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		qty, err := parseQuantity(row[1])
		if err != nil {
			skipped++
			continue
		}
		out = append(out, CountRow{
			ProductName: strings.TrimSpace(row[0]),
			NewStock:    qty,
		})
	}
	return out, skipped, nil
}

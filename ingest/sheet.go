package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	errNoSheets  = errors.New("Excel file contains no sheets")
	errEmptyFile = errors.New("File is empty")
)

// Sheet is the first worksheet of an uploaded file. Header is the raw row 0
// with each cell trimmed, so column positions line up with Rows.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of name in the header row, or -1.
func (s *Sheet) ColumnIndex(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// EffectiveHeaders drops blank header cells and keeps the remaining order.
func (s *Sheet) EffectiveHeaders() []string {
	out := make([]string, 0, len(s.Header))
	for _, h := range s.Header {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// SpreadsheetExtensions are the upload extensions accepted as spreadsheets.
var SpreadsheetExtensions = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xltx": "application/vnd.openxmlformats-officedocument.spreadsheetml.template",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
}

// IsSpreadsheet reports whether name carries an accepted spreadsheet extension.
func IsSpreadsheet(name string) bool {
	_, ok := SpreadsheetExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ContentType infers a MIME type from the file extension.
func ContentType(name string) string {
	if ct, ok := SpreadsheetExtensions[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// readSheet loads the first sheet of data. errNoSheets and errEmptyFile are
// structural findings; any other error is a parse failure.
func readSheet(name string, data []byte, limits Limits) (*Sheet, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		rows, err = readCSV(data)
	} else {
		rows, err = readWorkbook(data, limits)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errEmptyFile
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}
	return &Sheet{Header: header, Rows: rows[1:]}, nil
}

func readWorkbook(data []byte, limits Limits) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{
		UnzipSizeLimit:    limits.UnzipSize,
		UnzipXMLSizeLimit: limits.UnzipXMLSize,
	})
	if err != nil {
		return nil, &ParseFailure{Err: fmt.Errorf("failed to open spreadsheet: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoSheets
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseFailure{Err: fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)}
	}
	return rows, nil
}

// utf8BOM prefixes Excel's "CSV UTF-8" exports.
var utf8BOM = []byte("\xef\xbb\xbf")

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseFailure{Err: fmt.Errorf("failed to parse csv: %w", err)}
		}
		rows = append(rows, record)
	}
	// A trailing newline-only tail reads as a single empty field.
	for len(rows) > 0 && isBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

// isBlankRow reports whether every cell is empty after trimming. Cells are
// compared as text, so a row of zeros counts as data and is not blank.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Package importer turns spreadsheet rows into category trees and merges
// them into a taxonomy store.
package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/xuri/excelize/v2"
)

// Table is the first sheet of an uploaded file. Rows excludes the header;
// Rows[i] is spreadsheet line i+2.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// Line returns the 1-based spreadsheet line of data row i.
func (t *Table) Line(i int) int { return i + 2 }

// SupportedExtensions lists the file types ParseFile accepts.
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}

// IsSupported reports whether the filename has an importable extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ParseFile reads the first sheet of an .xlsx/.xlsm workbook or a .csv file.
func ParseFile(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ParseWorkbook(r)
	case ".csv":
		return ParseCSV(r)
	default:
		return nil, apperr.Validation("unsupported file type %q: expected one of %s",
			filepath.Ext(filename), strings.Join(SupportedExtensions, ", "))
	}
}

// ParseWorkbook reads the first sheet of a workbook.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "failed to read spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.New(apperr.KindParse, "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "failed to read sheet %q", sheets[0])
	}
	return newTable(sheets[0], rows)
}

// ParseCSV reads a comma separated file with a header line.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindParse, err, "failed to read CSV")
		}
		rows = append(rows, record)
	}
	return newTable("csv", rows)
}

func newTable(sheet string, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, apperr.New(apperr.KindParse, "sheet %q has no header row", sheet)
	}
	return &Table{Sheet: sheet, Header: rows[0], Rows: rows[1:]}, nil
}

package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Parse decodes data in the given format into a Table. The header must
// contain FirstName and Phone; Notes is optional.
//
// It returns a *ParseError when the bytes cannot be decoded, the workbook
// has no sheets or required columns are missing, and ErrEmptyInput when
// there are no data rows.
func Parse(data []byte, format Format) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	default:
		return nil, ErrUnsupportedFileType
	}
	if err != nil {
		return nil, newParseError(format, err)
	}

	return buildTable(format, rows)
}

// parseCSV reads the header and records. Source line numbers come from the
// reader so quoted multi-line cells still report the right row.
func parseCSV(data []byte) (*Table, error) {
	if !utf8.Valid(data) {
		return nil, newParseError(FormatCSV, errors.New("content is not valid UTF-8 text"))
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, newParseError(FormatCSV, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := newTable(header)
	if missing := table.missingColumns(); len(missing) > 0 {
		return nil, &ParseError{Format: FormatCSV, Missing: missing}
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newParseError(FormatCSV, err)
		}
		if isBlank(record) {
			continue
		}
		line, _ := r.FieldPos(0)
		table.addRow(line, record)
	}

	if len(table.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	return table, nil
}

// buildTable turns positional rows from a workbook into a Table. The first
// row of the sheet is the header; row numbers are 1-based sheet positions.
func buildTable(format Format, rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	table := newTable(rows[0])
	if missing := table.missingColumns(); len(missing) > 0 {
		return nil, &ParseError{Format: format, Missing: missing}
	}

	for i := 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		table.addRow(i+1, rows[i])
	}

	if len(table.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	return table, nil
}

// readXLSX returns the cell text of the first sheet. excelize flattens
// rich-text runs to plain strings.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no worksheet found in the Excel file")
	}

	return f.GetRows(sheets[0])
}

// readXLS returns the cell text of the first sheet of a BIFF workbook,
// indexed by sheet row. Rows with no cells are nil. The decoder panics on
// some malformed files, so panics become errors here.
func readXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("corrupt workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New("no worksheet found in the Excel file")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found in the Excel file")
	}

	// ReadAllCells walks sheets in order; capping it at the first sheet's
	// row count stops it before the second sheet.
	return wb.ReadAllCells(int(sheet.MaxRow) + 1), nil
}

package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"

	"github.com/frahmantamala/personal-ledger/internal"
)

// maxSheetRows bounds how many rows are read from one worksheet.
const maxSheetRows = 100000

// recordColumns is the title, type, value, category layout.
const recordColumns = 4

// RecordReader yields raw rows. Read returns io.EOF after the last row.
type RecordReader interface {
	Read() ([]string, error)
}

type csvRecordReader struct {
	r *csv.Reader
}

func NewCSVReader(r io.Reader) RecordReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &csvRecordReader{r: cr}
}

func (c *csvRecordReader) Read() ([]string, error) {
	return c.r.Read()
}

// sheet is the part of a worksheet the reader needs. row returns nil for a
// row the sheet does not store.
type sheet interface {
	lastRow() int
	row(i int) []string
}

type xlsSheet struct {
	ws *xls.WorkSheet
}

func (s xlsSheet) lastRow() int {
	return int(s.ws.MaxRow)
}

func (s xlsSheet) row(i int) (fields []string) {
	// WorkSheet.Row panics on rows that were never stored.
	defer func() {
		if recover() != nil {
			fields = nil
		}
	}()
	r := s.ws.Row(i)
	fields = make([]string, max(r.LastCol(), recordColumns))
	for c := range fields {
		fields[c] = r.Col(c)
	}
	return fields
}

type sheetRecordReader struct {
	rows [][]string
	next int
}

// NewXLSReader reads the first worksheet of a legacy Excel workbook. Other
// worksheets are ignored.
func NewXLSReader(r io.ReadSeeker) (RecordReader, error) {
	workbook, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}
	if workbook.NumSheets() == 0 {
		return &sheetRecordReader{}, nil
	}
	return newSheetRecordReader(xlsSheet{ws: workbook.GetSheet(0)}), nil
}

func newSheetRecordReader(s sheet) *sheetRecordReader {
	last := min(s.lastRow(), maxSheetRows-1)
	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		rows = append(rows, s.row(i))
	}
	return &sheetRecordReader{rows: rows}
}

func (s *sheetRecordReader) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

// NewRecordReader picks a reader from the artifact name's extension.
func NewRecordReader(name string, r io.Reader) (RecordReader, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return NewCSVReader(r), nil
	case ".xls":
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("failed to buffer workbook: %w", err)
			}
			rs = bytes.NewReader(data)
		}
		return NewXLSReader(rs)
	}
	return nil, internal.ErrUnsupportedImportFormat
}

// SupportedExtension reports whether name can be imported.
func SupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".xls":
		return true
	}
	return false
}

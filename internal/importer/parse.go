package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/personal-ledger/internal/transaction"
)

// Record is one accepted input row.
type Record struct {
	Row      int
	Title    string
	Type     transaction.Type
	Value    decimal.Decimal
	Category string
}

type parsedFile struct {
	records []Record
	skipped int
}

// parseRecords reads every row before anything is persisted. The first row
// is a header. Rows that cannot become a transaction are counted and skipped.
func parseRecords(reader RecordReader, logger *slog.Logger) (parsedFile, error) {
	var parsed parsedFile
	row := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return parsedFile{}, fmt.Errorf("failed to read row %d: %w", row, err)
			}
			if row > 1 {
				parsed.skipped++
				logger.Debug("skipping malformed row", "row", row, "error", err)
			}
			continue
		}
		if row == 1 {
			continue
		}

		record, reason := toRecord(row, fields)
		if reason != "" {
			parsed.skipped++
			logger.Debug("skipping row", "row", row, "reason", reason)
			continue
		}
		parsed.records = append(parsed.records, record)
	}
	return parsed, nil
}

// toRecord maps title, type, value, category columns. A non-empty reason
// means the row is rejected.
func toRecord(row int, fields []string) (Record, string) {
	if len(fields) < recordColumns {
		return Record{}, "missing columns"
	}

	title := strings.TrimSpace(fields[0])
	rawType := strings.TrimSpace(fields[1])
	rawValue := strings.TrimSpace(fields[2])
	categoryTitle := strings.TrimSpace(fields[3])

	if title == "" || rawType == "" || rawValue == "" || categoryTitle == "" {
		return Record{}, "empty field"
	}

	txType, ok := transaction.ParseType(rawType)
	if !ok {
		return Record{}, "unknown type"
	}

	value, err := decimal.NewFromString(rawValue)
	if err != nil {
		return Record{}, "unparseable value"
	}
	if value.IsNegative() {
		return Record{}, "negative value"
	}
	if !transaction.HasValidScale(value) {
		return Record{}, "too many decimal places"
	}

	return Record{
		Row:      row,
		Title:    title,
		Type:     txType,
		Value:    value,
		Category: categoryTitle,
	}, ""
}

// distinctCategories lists category titles in first-occurrence order.
func distinctCategories(records []Record) []string {
	seen := make(map[string]struct{}, len(records))
	titles := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		titles = append(titles, r.Category)
	}
	return titles
}

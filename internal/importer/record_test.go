package importer

import (
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeSheet struct {
	last int
	rows map[int][]string
}

func (f fakeSheet) lastRow() int {
	return f.last
}

func (f fakeSheet) row(i int) []string {
	return f.rows[i]
}

var _ = Describe("Sheet record reader", func() {
	readAll := func(r RecordReader) [][]string {
		var rows [][]string
		for {
			fields, err := r.Read()
			if err == io.EOF {
				return rows
			}
			Expect(err).NotTo(HaveOccurred())
			rows = append(rows, fields)
		}
	}

	It("should yield every row of the sheet in order, gaps included", func() {
		reader := newSheetRecordReader(fakeSheet{last: 3, rows: map[int][]string{
			0: {"title", "type", "value", "category"},
			1: {"Salary", "income", "10.50", "Work"},
			3: {"Lunch", "outcome", "2", "Food"},
		}})

		rows := readAll(reader)
		Expect(rows).To(HaveLen(4))
		Expect(rows[1]).To(Equal([]string{"Salary", "income", "10.50", "Work"}))
		Expect(rows[2]).To(BeNil())
		Expect(rows[3][0]).To(Equal("Lunch"))
	})

	It("should parse one header and skip absent rows", func() {
		reader := newSheetRecordReader(fakeSheet{last: 3, rows: map[int][]string{
			0: {"title", "type", "value", "category"},
			1: {"Salary", "income", "10.50", "Work"},
			3: {"Lunch", "outcome", "2", "Food"},
		}})

		parsed, err := parseRecords(reader, slog.New(slog.NewTextHandler(io.Discard, nil)))
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.records).To(HaveLen(2))
		Expect(parsed.skipped).To(Equal(1))
		Expect(parsed.records[0].Value.String()).To(Equal("10.5"))
	})

	It("should stop at the row limit", func() {
		reader := newSheetRecordReader(fakeSheet{last: maxSheetRows + 10, rows: map[int][]string{}})
		Expect(reader.rows).To(HaveLen(maxSheetRows))
	})
})

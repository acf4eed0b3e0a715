// Package ingest reads answer keys from uploaded spreadsheets.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"exam-grading-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	columnQuestion = "question_number"
	columnOption   = "correct_option"
)

// ParseFile picks the reader from the file extension (.csv or .xlsx).
func ParseFile(filename string, r io.Reader) ([]domain.AnswerKeyEntry, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, domain.Invalid("file", "unsupported file type %q, want .csv or .xlsx", filepath.Ext(filename))
	}
}

// ParseCSV reads an answer key from comma separated values with a header row.
func ParseCSV(r io.Reader) ([]domain.AnswerKeyEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// The csv reader skips empty lines, so keep each record's source line.
	var records []record
	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, domain.Invalid(fmt.Sprintf("row %d", parseErr.Line), "malformed csv: %v", parseErr.Err)
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}
	return fromRecords(records)
}

// ParseXLSX reads an answer key from the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]domain.AnswerKeyEntry, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Invalid("file", "unreadable xlsx workbook: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Invalid("file", "workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	records := make([]record, len(rows))
	for i, cells := range rows {
		records[i] = record{line: i + 1, cells: cells}
	}
	return fromRecords(records)
}

type record struct {
	line  int
	cells []string
}

// fromRecords turns raw rows into entries. Row numbers in errors are the
// one-based line of the source file. Blank rows are skipped; any bad data row
// rejects the whole upload.
func fromRecords(records []record) ([]domain.AnswerKeyEntry, error) {
	headerAt := -1
	for i, rec := range records {
		if !blank(rec.cells) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, domain.Invalid("file", "no header row")
	}

	qCol, oCol := -1, -1
	for i, name := range records[headerAt].cells {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case columnQuestion:
			qCol = i
		case columnOption:
			oCol = i
		}
	}
	if qCol < 0 {
		return nil, domain.Invalid("file", "missing %q column", columnQuestion)
	}
	if oCol < 0 {
		return nil, domain.Invalid("file", "missing %q column", columnOption)
	}

	var entries []domain.AnswerKeyEntry
	seen := make(map[int]int)
	for i := headerAt + 1; i < len(records); i++ {
		rec, row := records[i].cells, records[i].line
		if blank(rec) {
			continue
		}

		q, err := parseInt(cell(rec, qCol))
		if err != nil || q <= 0 || q > math.MaxInt32 {
			return nil, domain.Invalid(fmt.Sprintf("row %d.%s", row, columnQuestion), "want a positive integer, got %q", cell(rec, qCol))
		}
		if first, dup := seen[q]; dup {
			return nil, domain.Invalid(fmt.Sprintf("row %d.%s", row, columnQuestion), "question %d already given at row %d", q, first)
		}
		seen[q] = row
		opt, err := domain.ParseOption(normalizeNumber(cell(rec, oCol)))
		if err != nil {
			return nil, domain.Invalid(fmt.Sprintf("row %d.%s", row, columnOption), "want a letter A-%c or index 1-%d, got %q",
				'A'+domain.MaxOptions-1, domain.MaxOptions, cell(rec, oCol))
		}
		entries = append(entries, domain.AnswerKeyEntry{QuestionNumber: q, CorrectOption: opt})
	}
	if len(entries) == 0 {
		return nil, domain.Invalid("file", "no answer rows")
	}
	return entries, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseInt accepts "7" and spreadsheet renderings such as "7.0".
func parseInt(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return int(f), nil
}

func normalizeNumber(raw string) string {
	if _, err := strconv.Atoi(raw); err == nil {
		return raw
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
		return strconv.Itoa(int(f))
	}
	return raw
}

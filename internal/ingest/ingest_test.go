package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"exam-grading-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := "Correct_Option , Question_Number\r\nA,1\n\n2.0, 2\nh,3\n"

	entries, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []domain.AnswerKeyEntry{
		{QuestionNumber: 1, CorrectOption: 1},
		{QuestionNumber: 2, CorrectOption: 2},
		{QuestionNumber: 3, CorrectOption: 8},
	}, entries)
}

func TestParseCSVSkipsLeadingBlankRows(t *testing.T) {
	data := ",\nquestion_number,correct_option,notes\n4,C,easy\n"

	entries, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []domain.AnswerKeyEntry{{QuestionNumber: 4, CorrectOption: 3}}, entries)
}

func TestParseCSVReportsRow(t *testing.T) {
	cases := []struct {
		name  string
		data  string
		field string
	}{
		{"bad question", "question_number,correct_option\n1,A\nx,B\n", "row 3.question_number"},
		{"zero question", "question_number,correct_option\n0,A\n", "row 2.question_number"},
		{"oversized question", "question_number,correct_option\n2147483648,A\n", "row 2.question_number"},
		{"duplicate question", "question_number,correct_option\n1,A\n2,B\n\n1,C\n", "row 5.question_number"},
		{"fractional question", "question_number,correct_option\n1.5,A\n", "row 2.question_number"},
		{"bad option", "question_number,correct_option\n1,A\n\n2,Z\n", "row 4.correct_option"},
		{"option out of range", "question_number,correct_option\n1,9\n", "row 2.correct_option"},
		{"missing option cell", "question_number,correct_option\n1\n", "row 2.correct_option"},
		{"missing column", "question_number,answer\n1,A\n", "file"},
		{"header only", "question_number,correct_option\n", "file"},
		{"empty", "", "file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tc.data))
			assertField(t, err, tc.field)
		})
	}
}

func TestParseCSVMalformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("question_number,correct_option\n1,\"A\n"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseXLSX(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	rows := [][]any{
		{"question_number", "correct_option"},
		{1, "B"},
		{2, 4},
		{},
		{3, "e"},
	}
	for i, row := range rows {
		for j, v := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, book.SetCellValue(sheet, cellName, v))
		}
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	entries, err := ParseFile("key.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []domain.AnswerKeyEntry{
		{QuestionNumber: 1, CorrectOption: 2},
		{QuestionNumber: 2, CorrectOption: 4},
		{QuestionNumber: 3, CorrectOption: 5},
	}, entries)
}

func TestParseXLSXReportsSheetRow(t *testing.T) {
	book := excelize.NewFile()
	defer book.Close()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"question_number", "correct_option"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{1, "A"}))
	require.NoError(t, book.SetSheetRow(sheet, "A5", &[]any{-2, "A"}))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseXLSX(bytes.NewReader(buf.Bytes()))
	assertField(t, err, "row 5.question_number")

	require.NoError(t, book.SetSheetRow(sheet, "A5", &[]any{1, "C"}))
	buf, err = book.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseXLSX(bytes.NewReader(buf.Bytes()))
	assertField(t, err, "row 5.question_number")
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a zip"))
	assertField(t, err, "file")
}

func TestParseFileRejectsUnknownExtension(t *testing.T) {
	_, err := ParseFile("key.txt", strings.NewReader("question_number,correct_option\n1,A\n"))
	assertField(t, err, "file")
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
}

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"exam-prep/internal/quiz"
)

const (
	SubjectsSheet = "Subjects"
	HistorySheet  = "History"
)

// StatsWorkbook renders aggregated stats and the raw answer log as an xlsx
// workbook with one sheet each.
func StatsWorkbook(stats quiz.Stats, log []quiz.HistoryEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SubjectsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(HistorySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	subjectRows := make([][]any, 0, len(stats.SubjectStats)+1)
	for _, item := range stats.SubjectStats {
		subjectRows = append(subjectRows, []any{item.Subject, item.Correct, item.Total, roundAccuracy(item.Accuracy)})
	}
	subjectRows = append(subjectRows, []any{"Total", stats.CorrectAnswers, stats.TotalQuestions, roundAccuracy(stats.Accuracy())})
	writeTable(f, SubjectsSheet, []string{"subject", "correct", "total", "accuracy"}, subjectRows)
	_ = f.SetColWidth(SubjectsSheet, "A", "A", 32)
	_ = f.SetColWidth(SubjectsSheet, "B", "D", 12)

	historyRows := make([][]any, 0, len(log))
	for _, entry := range log {
		historyRows = append(historyRows, []any{
			entry.Date.Format("2006-01-02 15:04:05"),
			entry.QuestionID,
			entry.Subject,
			entry.Correct,
		})
	}
	writeTable(f, HistorySheet, []string{"date", "question_id", "subject", "correct"}, historyRows)
	_ = f.SetColWidth(HistorySheet, "A", "D", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func WriteFile(path string, stats quiz.Stats, log []quiz.HistoryEntry) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("export file must end in .xlsx: %s", path)
	}

	data, err := StatsWorkbook(stats, log)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, values := range rows {
		row := i + 2
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}

func roundAccuracy(value float64) float64 {
	return float64(int(value*10+0.5)) / 10
}

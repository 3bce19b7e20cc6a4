package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/kelaskita/timetable-engine/internal/models"
)

var timetableHeaders = []string{"Teacher", "Class", "Subject", "Room", "Day", "Period", "Occurrence", "Duration"}

// rows flattens assignments into export records, one per assignment.
func rows(assignments []models.Assignment) [][]string {
	out := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, []string{
			a.TeacherID,
			a.ClassID,
			a.Subject,
			a.RoomID,
			a.Day,
			a.Period,
			strconv.Itoa(a.Occurrence),
			strconv.Itoa(a.Duration),
		})
	}
	return out
}

// RenderCSV produces the timetable as CSV bytes.
func RenderCSV(assignments []models.Assignment) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(timetableHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, record := range rows(assignments) {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF produces the timetable as a basic tabular PDF document.
func RenderPDF(assignments []models.Assignment, title string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 277.0 / float64(len(timetableHeaders))
	for _, header := range timetableHeaders {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, record := range rows(assignments) {
		for _, value := range record {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

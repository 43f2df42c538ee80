package result

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

var exportHeader = []string{
	"student_name", "student_email", "code",
	"subject", "class", "term", "session",
	"score", "total_possible_score", "time_taken", "submitted_at",
}

// WriteCSV streams the result rows in the standard export layout.
func WriteCSV(w io.Writer, rows []ResultWithStudent) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.StudentName,
			row.StudentEmail,
			row.Code,
			row.Subject,
			row.Class,
			row.Term,
			row.Session,
			strconv.Itoa(row.Score),
			strconv.Itoa(row.TotalPossibleScore),
			strconv.Itoa(row.TimeTaken),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePDF renders the result rows as a landscape table.
func WritePDF(w io.Writer, rows []ResultWithStudent) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Test Results")
	pdf.Ln(12)

	widths := []float64{50, 60, 22, 30, 20, 25, 25, 18, 18}
	headers := []string{"Student", "Email", "Code", "Subject", "Class", "Term", "Session", "Score", "Total"}

	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		cells := []string{
			row.StudentName,
			row.StudentEmail,
			row.Code,
			row.Subject,
			row.Class,
			row.Term,
			row.Session,
			strconv.Itoa(row.Score),
			strconv.Itoa(row.TotalPossibleScore),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if pdf.Err() {
		return fmt.Errorf("pdf generation failed: %v", pdf.Error())
	}
	return pdf.Output(w)
}

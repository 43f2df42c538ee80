package question

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cbt-portal/internal/models"
)

// csvHeader is the column order for bulk import and export. The same layout
// doubles as the downloadable template.
var csvHeader = []string{
	"question_type", "text",
	"option_a", "option_b", "option_c", "option_d",
	"correct_option", "correct_text", "image_url",
	"subject", "class", "term",
}

// ImportCSV parses a bulk upload, validates and authorizes every row, and
// inserts the set all-or-nothing. Returns the number of questions created.
func (s *Service) ImportCSV(userID uint, role string, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: missing header row", ErrInvalidFields)
	}
	if len(header) < len(csvHeader) || !strings.EqualFold(header[0], csvHeader[0]) {
		return 0, fmt.Errorf("%w: unexpected header; download the template first", ErrInvalidFields)
	}

	var questions []models.Question
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", row, err)
		}

		q, err := questionFromRecord(record)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", row, err)
		}
		if err := Validate(q); err != nil {
			return 0, fmt.Errorf("row %d: %w", row, err)
		}
		if err := s.authorize(userID, role, q.Subject, q.Class); err != nil {
			return 0, fmt.Errorf("row %d: %w", row, err)
		}
		q.TeacherID = userID
		questions = append(questions, *q)
	}

	if err := s.repo.CreateBatch(questions); err != nil {
		return 0, err
	}
	return len(questions), nil
}

func questionFromRecord(record []string) (*models.Question, error) {
	if len(record) < len(csvHeader) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidFields, len(csvHeader), len(record))
	}

	q := &models.Question{
		QuestionType: strings.TrimSpace(record[0]),
		Text:         strings.TrimSpace(record[1]),
		OptionA:      strings.TrimSpace(record[2]),
		OptionB:      strings.TrimSpace(record[3]),
		OptionC:      strings.TrimSpace(record[4]),
		OptionD:      strings.TrimSpace(record[5]),
		CorrectText:  strings.TrimSpace(record[7]),
		ImageURL:     strings.TrimSpace(record[8]),
		Subject:      strings.TrimSpace(record[9]),
		Class:        strings.TrimSpace(record[10]),
		Term:         strings.TrimSpace(record[11]),
	}

	if raw := strings.TrimSpace(record[6]); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: correct_option must be a number", ErrInvalidFields)
		}
		q.CorrectOption = &idx
	}
	return q, nil
}

// ExportCSV writes the caller's question set (or everything, for admins) in
// the import layout so exports can round-trip.
func (s *Service) ExportCSV(userID uint, role string, w io.Writer) error {
	questions, err := s.List(userID, role, ListFilter{})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, q := range questions {
		correct := ""
		if q.CorrectOption != nil {
			correct = strconv.Itoa(*q.CorrectOption)
		}
		record := []string{
			q.QuestionType, q.Text,
			q.OptionA, q.OptionB, q.OptionC, q.OptionD,
			correct, q.CorrectText, q.ImageURL,
			q.Subject, q.Class, q.Term,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTemplate emits just the header row.
func WriteTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

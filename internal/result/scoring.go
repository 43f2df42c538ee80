package result

import (
	"strings"

	"cbt-portal/internal/models"
	"cbt-portal/internal/question"
)

// Grade scores a submission against the question rows that made up the test
// instance. Selections arrive as shuffled indices plus the optionMapping
// served with each question; they are translated back to original indices
// before comparison. Essay questions are stored for teacher review and
// excluded from the possible score.
//
// Score is the sum of scorePerQuestion over correct answers;
// totalPossible sums scorePerQuestion over every auto-gradable question
// actually included, so it shrinks when the pool was smaller than requested.
func Grade(questions []models.Question, answers []models.SubmittedAnswer, scorePerQuestion int) (score, totalPossible int, graded []models.GradedAnswer) {
	if scorePerQuestion <= 0 {
		scorePerQuestion = 1
	}

	byID := make(map[uint]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
		if q.AutoGradable() {
			totalPossible += scorePerQuestion
		}
	}

	graded = make([]models.GradedAnswer, 0, len(answers))
	seen := make(map[uint]bool, len(answers))
	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		// Only the first answer per question counts; repeats would let a
		// client bank the same points twice and push score past the total.
		if seen[ans.QuestionID] {
			continue
		}
		seen[ans.QuestionID] = true

		entry := models.GradedAnswer{
			QuestionID:   q.ID,
			QuestionType: q.QuestionType,
			TextAnswer:   ans.TextAnswer,
		}

		switch q.QuestionType {
		case models.QuestionMultipleChoice, models.QuestionTrueFalse, models.QuestionImageBased:
			if ans.SelectedIndex != nil && q.CorrectOption != nil {
				orig := *ans.SelectedIndex
				if len(ans.OptionMapping) > 0 {
					mapped, ok := question.MapToOriginal(ans.OptionMapping, *ans.SelectedIndex)
					if !ok {
						graded = append(graded, entry)
						continue
					}
					orig = mapped
				}
				entry.OriginalIndex = &orig
				entry.Correct = orig == *q.CorrectOption
			}
		case models.QuestionFillBlank:
			given := strings.TrimSpace(ans.TextAnswer)
			want := strings.TrimSpace(q.CorrectText)
			entry.Correct = given != "" && strings.EqualFold(given, want)
		case models.QuestionEssay:
			// Stored ungraded.
		}

		if entry.Correct {
			entry.PointsAwarded = scorePerQuestion
			score += scorePerQuestion
		}
		graded = append(graded, entry)
	}

	return score, totalPossible, graded
}

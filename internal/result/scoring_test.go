package result

import (
	"fmt"
	"testing"

	"cbt-portal/internal/models"
)

func intPtr(i int) *int { return &i }

// identity mapping for a 4-option question
var identityMapping = []int{0, 1, 2, 3}

func mcq(id uint, correct int) models.Question {
	return models.Question{
		ID:            id,
		QuestionType:  models.QuestionMultipleChoice,
		Text:          fmt.Sprintf("Question %d", id),
		OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: intPtr(correct),
	}
}

func TestGradeScoresWeightedQuestions(t *testing.T) {
	// Ten questions worth 2 points each, seven answered correctly.
	questions := make([]models.Question, 10)
	answers := make([]models.SubmittedAnswer, 10)
	for i := range questions {
		questions[i] = mcq(uint(i+1), 0)
		selected := 0
		if i >= 7 {
			selected = 1 // wrong
		}
		answers[i] = models.SubmittedAnswer{
			QuestionID:    uint(i + 1),
			SelectedIndex: intPtr(selected),
			OptionMapping: identityMapping,
		}
	}

	score, total, graded := Grade(questions, answers, 2)
	if score != 14 {
		t.Fatalf("score = %d, want 14", score)
	}
	if total != 20 {
		t.Fatalf("totalPossibleScore = %d, want 20", total)
	}
	if len(graded) != 10 {
		t.Fatalf("graded %d answers, want 10", len(graded))
	}
}

func TestGradeTranslatesShuffledSelections(t *testing.T) {
	// Correct answer is original index 2. The student saw options shuffled
	// by mapping {3,2,0,1} and picked shuffled position 1.
	q := mcq(1, 2)
	mapping := []int{3, 2, 0, 1}

	tests := []struct {
		name        string
		selected    int
		wantCorrect bool
		wantOrig    int
	}{
		{name: "picked correct shuffled slot", selected: 1, wantCorrect: true, wantOrig: 2},
		{name: "picked wrong shuffled slot", selected: 0, wantCorrect: false, wantOrig: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, total, graded := Grade(
				[]models.Question{q},
				[]models.SubmittedAnswer{{QuestionID: 1, SelectedIndex: intPtr(tc.selected), OptionMapping: mapping}},
				1,
			)
			if total != 1 {
				t.Fatalf("total = %d, want 1", total)
			}
			if graded[0].Correct != tc.wantCorrect {
				t.Fatalf("correct = %v, want %v", graded[0].Correct, tc.wantCorrect)
			}
			if graded[0].OriginalIndex == nil || *graded[0].OriginalIndex != tc.wantOrig {
				t.Fatalf("original index = %v, want %d", graded[0].OriginalIndex, tc.wantOrig)
			}
			wantScore := 0
			if tc.wantCorrect {
				wantScore = 1
			}
			if score != wantScore {
				t.Fatalf("score = %d, want %d", score, wantScore)
			}
		})
	}
}

func TestGradeFillBlank(t *testing.T) {
	q := models.Question{
		ID:           1,
		QuestionType: models.QuestionFillBlank,
		Text:         "Capital of France?",
		CorrectText:  "Paris",
	}

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{name: "exact", answer: "Paris", correct: true},
		{name: "case insensitive", answer: "pARIs", correct: true},
		{name: "surrounding whitespace", answer: "  paris  ", correct: true},
		{name: "wrong", answer: "Lyon", correct: false},
		{name: "empty never correct", answer: "", correct: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, total, graded := Grade(
				[]models.Question{q},
				[]models.SubmittedAnswer{{QuestionID: 1, TextAnswer: tc.answer}},
				3,
			)
			if total != 3 {
				t.Fatalf("total = %d, want 3", total)
			}
			if graded[0].Correct != tc.correct {
				t.Fatalf("correct = %v, want %v", graded[0].Correct, tc.correct)
			}
			if tc.correct && score != 3 {
				t.Fatalf("score = %d, want 3", score)
			}
		})
	}
}

func TestGradeEssayExcludedFromTotal(t *testing.T) {
	questions := []models.Question{
		mcq(1, 0),
		{ID: 2, QuestionType: models.QuestionEssay, Text: "Discuss photosynthesis."},
	}
	answers := []models.SubmittedAnswer{
		{QuestionID: 1, SelectedIndex: intPtr(0), OptionMapping: identityMapping},
		{QuestionID: 2, TextAnswer: "Plants convert light into energy."},
	}

	score, total, graded := Grade(questions, answers, 2)
	if total != 2 {
		t.Fatalf("essay must not count toward total; total = %d, want 2", total)
	}
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
	if len(graded) != 2 {
		t.Fatalf("essay answer must still be stored; got %d entries", len(graded))
	}
	if graded[1].TextAnswer == "" || graded[1].PointsAwarded != 0 {
		t.Fatalf("essay entry mis-stored: %+v", graded[1])
	}
}

func TestGradeCountsEachQuestionOnce(t *testing.T) {
	q := mcq(1, 0)
	correct := models.SubmittedAnswer{QuestionID: 1, SelectedIndex: intPtr(0), OptionMapping: identityMapping}
	// Repeating a correct answer must not bank its points again.
	answers := []models.SubmittedAnswer{correct, correct, correct}

	score, total, graded := Grade([]models.Question{q}, answers, 2)
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
	if score > total {
		t.Fatalf("score %d exceeds totalPossibleScore %d", score, total)
	}
	if len(graded) != 1 {
		t.Fatalf("repeated answers must grade once, got %d entries", len(graded))
	}
}

func TestGradeIgnoresForeignQuestions(t *testing.T) {
	questions := []models.Question{mcq(1, 0)}
	answers := []models.SubmittedAnswer{
		{QuestionID: 1, SelectedIndex: intPtr(0), OptionMapping: identityMapping},
		{QuestionID: 99, SelectedIndex: intPtr(0), OptionMapping: identityMapping},
	}

	score, total, graded := Grade(questions, answers, 1)
	if score != 1 || total != 1 {
		t.Fatalf("score/total = %d/%d, want 1/1", score, total)
	}
	if len(graded) != 1 {
		t.Fatalf("answer for unknown question must be dropped, got %d entries", len(graded))
	}
}

func TestGradeUnansweredAndMalformed(t *testing.T) {
	questions := []models.Question{mcq(1, 0), mcq(2, 1)}
	answers := []models.SubmittedAnswer{
		{QuestionID: 1}, // unanswered
		{QuestionID: 2, SelectedIndex: intPtr(7), OptionMapping: identityMapping}, // out of range
	}

	score, total, graded := Grade(questions, answers, 1)
	if score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	for _, g := range graded {
		if g.Correct {
			t.Fatalf("no answer should grade correct: %+v", g)
		}
	}
}

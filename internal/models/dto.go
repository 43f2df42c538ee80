package models

// CodeMetadata is the batch configuration returned to a student during code
// validation and preview. It never exposes batch internals beyond what the
// test screen needs.
type CodeMetadata struct {
	Code             string `json:"code"`
	Subject          string `json:"subject"`
	Class            string `json:"class"`
	Term             string `json:"term"`
	Section          string `json:"section,omitempty"`
	Session          string `json:"session"`
	TestType         string `json:"test_type,omitempty"`
	NumQuestions     int    `json:"num_questions"`
	TimeLimit        int    `json:"time_limit"`
	ScorePerQuestion int    `json:"score_per_question"`
	IsActive         bool   `json:"is_active"`
}

// Metadata converts a code row to its student-facing view.
func (c TestCode) Metadata() CodeMetadata {
	return CodeMetadata{
		Code:             c.Code,
		Subject:          c.Subject,
		Class:            c.Class,
		Term:             c.Term,
		Section:          c.Section,
		Session:          c.Session,
		TestType:         c.TestType,
		NumQuestions:     c.NumQuestions,
		TimeLimit:        c.TimeLimit,
		ScorePerQuestion: c.ScorePerQuestion,
		IsActive:         c.IsActive,
	}
}

// TestQuestion is a question as served to a test taker: options already
// shuffled, correct answer withheld. OptionMapping[i] is the original index
// of the option now at shuffled position i, so a selected shuffled index can
// be translated back at submission time.
type TestQuestion struct {
	ID            uint     `json:"id"`
	QuestionType  string   `json:"question_type"`
	Text          string   `json:"text"`
	ImageURL      string   `json:"image_url,omitempty"`
	Options       []string `json:"options,omitempty"`
	OptionMapping []int    `json:"option_mapping,omitempty"`
}

// SubmittedAnswer is one answer in a test submission. SelectedIndex is the
// index into the shuffled option order the student saw; OptionMapping is the
// permutation served with the question. TextAnswer carries fill-blank and
// essay responses.
type SubmittedAnswer struct {
	QuestionID    uint   `json:"question_id"`
	SelectedIndex *int   `json:"selected_index,omitempty"`
	OptionMapping []int  `json:"option_mapping,omitempty"`
	TextAnswer    string `json:"text_answer,omitempty"`
}

// GradedAnswer is the stored per-question outcome. OriginalIndex is the
// student's selection translated back to the pre-shuffle option order.
type GradedAnswer struct {
	QuestionID    uint   `json:"question_id"`
	QuestionType  string `json:"question_type"`
	OriginalIndex *int   `json:"original_index,omitempty"`
	TextAnswer    string `json:"text_answer,omitempty"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
}

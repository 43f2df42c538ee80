package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile roles.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Question types. The type determines which optional fields must be set.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFillBlank      = "fill_blank"
	QuestionEssay          = "essay"
	QuestionImageBased     = "image_based"
)

// User is the bare authentication identity. Role and display name live on
// the Profile row.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	Profile   Profile        `json:"profile" gorm:"foreignKey:UserID"`
}

// Profile carries the role assignment. Roles are immutable after signup;
// there is no role-change endpoint.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Role      string    `json:"role" gorm:"not null"`
	FullName  string    `json:"full_name" gorm:"not null"`
}

// Reference vocabulary. Dependent rows reference these by name rather than
// by foreign key, trading referential integrity for query simplicity.

type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
}

type Class struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
}

type Term struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
}

type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
}

// TeacherAssignment authorizes a teacher to author questions for one
// (subject, class) pair. Saves from the admin UI replace a teacher's full
// assignment set.
type TeacherAssignment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	TeacherID uint      `json:"teacher_id" gorm:"index;not null"`
	Subject   string    `json:"subject" gorm:"not null"`
	Class     string    `json:"class" gorm:"not null"`
}

// Question is owned by the creating teacher. EditedBy tracks the last
// editor separately from the creator.
type Question struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	TeacherID     uint           `json:"teacher_id" gorm:"index"`
	EditedBy      *uint          `json:"edited_by,omitempty"`
	QuestionType  string         `json:"question_type" gorm:"not null"`
	Text          string         `json:"text" gorm:"not null"`
	OptionA       string         `json:"option_a"`
	OptionB       string         `json:"option_b"`
	OptionC       string         `json:"option_c"`
	OptionD       string         `json:"option_d"`
	CorrectOption *int           `json:"correct_option,omitempty"`
	CorrectText   string         `json:"correct_text,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	Subject       string         `json:"subject" gorm:"index;not null"`
	Class         string         `json:"class" gorm:"index;not null"`
	Term          string         `json:"term" gorm:"index;not null"`
}

// Options returns the answer options in original order. Types without
// options return an empty slice.
func (q Question) Options() []string {
	switch q.QuestionType {
	case QuestionTrueFalse:
		return []string{q.OptionA, q.OptionB}
	case QuestionMultipleChoice, QuestionImageBased:
		return []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
	}
	return nil
}

// AutoGradable reports whether the server can score this question type
// without teacher review.
func (q Question) AutoGradable() bool {
	return q.QuestionType != QuestionEssay
}

// TestCodeBatch is a named generation request that fans out into TotalCodes
// individual codes. Activation cascades to member codes; deletion is soft.
type TestCodeBatch struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	Name             string         `json:"name" gorm:"not null"`
	Subject          string         `json:"subject" gorm:"not null"`
	Class            string         `json:"class" gorm:"not null"`
	Term             string         `json:"term" gorm:"not null"`
	Section          string         `json:"section"`
	Session          string         `json:"session" gorm:"not null"`
	TestType         string         `json:"test_type"`
	NumQuestions     int            `json:"num_questions" gorm:"not null"`
	TimeLimit        int            `json:"time_limit" gorm:"not null"`
	ScorePerQuestion int            `json:"score_per_question" gorm:"default:1"`
	TotalCodes       int            `json:"total_codes" gorm:"not null"`
	IsActive         bool           `json:"is_active" gorm:"default:false"`
	Codes            []TestCode     `json:"codes,omitempty" gorm:"foreignKey:BatchID"`
}

// TestCode is a single-use 6-character access token. The batch configuration
// is denormalized onto the code so validation needs no join.
type TestCode struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
	Code             string         `json:"code" gorm:"uniqueIndex;not null"`
	BatchID          uint           `json:"batch_id" gorm:"index;not null"`
	IsActive         bool           `json:"is_active" gorm:"default:false"`
	Subject          string         `json:"subject"`
	Class            string         `json:"class"`
	Term             string         `json:"term"`
	Section          string         `json:"section"`
	Session          string         `json:"session"`
	TestType         string         `json:"test_type"`
	NumQuestions     int            `json:"num_questions"`
	TimeLimit        int            `json:"time_limit"`
	ScorePerQuestion int            `json:"score_per_question"`
}

// TestResult is one row per completed attempt. Answers holds the graded
// per-question entries with selections mapped back to original option
// indices; Violations holds the client-reported monitoring strings, stored
// verbatim and never acted on server-side.
type TestResult struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	CreatedAt          time.Time      `json:"created_at"`
	StudentID          uint           `json:"student_id" gorm:"index;not null"`
	TestCodeID         uint           `json:"test_code_id" gorm:"index;not null"`
	Code               string         `json:"code" gorm:"index;not null"`
	Subject            string         `json:"subject" gorm:"index"`
	Class              string         `json:"class" gorm:"index"`
	Term               string         `json:"term" gorm:"index"`
	Session            string         `json:"session" gorm:"index"`
	TestType           string         `json:"test_type"`
	Score              int            `json:"score"`
	TotalPossibleScore int            `json:"total_possible_score"`
	TimeTaken          int            `json:"time_taken"`
	Answers            datatypes.JSON `json:"answers"`
	Violations         datatypes.JSON `json:"violations,omitempty"`
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Subject{},
		&Class{},
		&Term{},
		&Session{},
		&TeacherAssignment{},
		&Question{},
		&TestCodeBatch{},
		&TestCode{},
		&TestResult{},
	}
}

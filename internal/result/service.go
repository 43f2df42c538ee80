// Package result implements test submission, server-side scoring and result
// reporting. Submission and code deactivation are deliberately atomic: the
// original client-orchestrated flow left a window where a crash between the
// two calls stranded an active code after its result was recorded.
package result

import (
	"encoding/json"
	"errors"
	"log"

	"cbt-portal/internal/models"
	"cbt-portal/pkg/realtime"

	"gorm.io/gorm"
)

var (
	ErrCodeNotFound        = errors.New("test code not found")
	ErrCodeUnavailable     = errors.New("test code is not active or was already used")
	ErrDuplicateSubmission = errors.New("a submission for this code is already in progress")
	ErrNoAnswers           = errors.New("submission contains no answers")
)

// Locker is the Redis surface the service needs: a per-code submission lock
// plus cache invalidation for the deactivated code.
type Locker interface {
	AcquireSubmitLock(code string) (bool, error)
	ReleaseSubmitLock(code string) error
	InvalidateCode(code string) error
}

// Broadcaster feeds the admin live monitor. Implemented by realtime.Hub.
type Broadcaster interface {
	Broadcast(messageType string, data interface{})
}

type Service struct {
	repo    *Repository
	locker  Locker
	monitor Broadcaster
}

func NewService(repo *Repository, locker Locker, monitor Broadcaster) *Service {
	return &Service{
		repo:    repo,
		locker:  locker,
		monitor: monitor,
	}
}

// Submission is the request payload for a completed attempt.
type Submission struct {
	Code       string                   `json:"code"`
	Answers    []models.SubmittedAnswer `json:"answers"`
	TimeTaken  int                      `json:"time_taken"`
	Violations []string                 `json:"violations,omitempty"`
}

// Submit grades the attempt, records the result and deactivates the code in
// one transaction. A Redis lock rejects concurrent duplicates early; the
// conditional code claim inside the transaction is the real guarantee.
func (s *Service) Submit(studentID uint, sub Submission) (*models.TestResult, error) {
	if len(sub.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	acquired, err := s.locker.AcquireSubmitLock(sub.Code)
	if err != nil {
		// Redis being down must not block submissions; the DB claim still
		// protects against double use.
		log.Printf("Submission lock unavailable for code %s: %v", sub.Code, err)
	} else if !acquired {
		return nil, ErrDuplicateSubmission
	} else {
		defer func() {
			if err := s.locker.ReleaseSubmitLock(sub.Code); err != nil {
				log.Printf("Error releasing submit lock for code %s: %v", sub.Code, err)
			}
		}()
	}

	codeRow, err := s.repo.GetCode(sub.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	ids := make([]uint, 0, len(sub.Answers))
	for _, a := range sub.Answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := s.repo.GetQuestions(ids, codeRow)
	if err != nil {
		return nil, err
	}

	score, totalPossible, graded := Grade(questions, sub.Answers, codeRow.ScorePerQuestion)

	answersJSON, err := json.Marshal(graded)
	if err != nil {
		return nil, err
	}
	violations := sub.Violations
	if violations == nil {
		violations = []string{}
	}
	violationsJSON, err := json.Marshal(violations)
	if err != nil {
		return nil, err
	}

	result := &models.TestResult{
		StudentID:          studentID,
		TestCodeID:         codeRow.ID,
		Code:               codeRow.Code,
		Subject:            codeRow.Subject,
		Class:              codeRow.Class,
		Term:               codeRow.Term,
		Session:            codeRow.Session,
		TestType:           codeRow.TestType,
		Score:              score,
		TotalPossibleScore: totalPossible,
		TimeTaken:          sub.TimeTaken,
		Answers:            answersJSON,
		Violations:         violationsJSON,
	}

	if err := s.repo.SubmitAtomically(result); err != nil {
		return nil, err
	}

	if err := s.locker.InvalidateCode(sub.Code); err != nil {
		log.Printf("Error invalidating cached code %s: %v", sub.Code, err)
	}

	if s.monitor != nil {
		s.monitor.Broadcast(realtime.EventTestSubmitted, map[string]interface{}{
			"student_id":  studentID,
			"code":        codeRow.Code,
			"subject":     codeRow.Subject,
			"class":       codeRow.Class,
			"score":       score,
			"total_score": totalPossible,
			"violations":  len(violations),
		})
	}

	log.Printf("Result recorded for student %d, code %s: %d/%d", studentID, codeRow.Code, score, totalPossible)
	return result, nil
}

// ListFor scopes results by role: students see their own rows, teachers and
// admins see everything.
func (s *Service) ListFor(userID uint, role string) ([]models.TestResult, error) {
	filter := Filter{}
	if role == models.RoleStudent {
		filter.StudentID = userID
	}
	return s.repo.List(filter)
}

// Filtered runs the reporting query; at least one filter must be present.
func (s *Service) Filtered(filter Filter) ([]ResultWithStudent, error) {
	if filter.Empty() {
		return nil, errors.New("at least one filter is required")
	}
	return s.repo.ListWithStudent(filter)
}

// ForExport returns the enriched rows for CSV/PDF export, unfiltered or
// filtered as given.
func (s *Service) ForExport(filter Filter) ([]ResultWithStudent, error) {
	return s.repo.ListWithStudent(filter)
}

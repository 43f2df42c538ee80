package question

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"cbt-portal/internal/models"
)

var (
	ErrNotOwner      = errors.New("question belongs to another teacher")
	ErrNotAssigned   = errors.New("teacher is not assigned to this subject and class")
	ErrInvalidFields = errors.New("invalid question fields")
)

// Authorizer answers whether a teacher may author for a (subject, class)
// pair. Implemented by the assignment service.
type Authorizer interface {
	CanAuthor(teacherID uint, subject, class string) (bool, error)
}

type Service struct {
	repo        *Repository
	assignments Authorizer
}

func NewService(repo *Repository, assignments Authorizer) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
	}
}

// Validate checks the type-specific required fields before insert. The
// client validates too, but the server is the authority.
func Validate(q *models.Question) error {
	q.QuestionType = strings.TrimSpace(q.QuestionType)
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidFields)
	}
	if q.Subject == "" || q.Class == "" || q.Term == "" {
		return fmt.Errorf("%w: subject, class and term are required", ErrInvalidFields)
	}

	switch q.QuestionType {
	case models.QuestionMultipleChoice, models.QuestionImageBased:
		for i, opt := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: option %c is required", ErrInvalidFields, 'A'+i)
			}
		}
		if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption > 3 {
			return fmt.Errorf("%w: correct_option must be between 0 and 3", ErrInvalidFields)
		}
		if q.QuestionType == models.QuestionImageBased && strings.TrimSpace(q.ImageURL) == "" {
			return fmt.Errorf("%w: image_url is required", ErrInvalidFields)
		}
	case models.QuestionTrueFalse:
		if q.OptionA == "" {
			q.OptionA = "True"
		}
		if q.OptionB == "" {
			q.OptionB = "False"
		}
		if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption > 1 {
			return fmt.Errorf("%w: correct_option must be 0 or 1", ErrInvalidFields)
		}
	case models.QuestionFillBlank:
		if strings.TrimSpace(q.CorrectText) == "" {
			return fmt.Errorf("%w: correct_text is required", ErrInvalidFields)
		}
	case models.QuestionEssay:
		// Free-form; nothing beyond text.
	default:
		return fmt.Errorf("%w: unknown question_type %q", ErrInvalidFields, q.QuestionType)
	}
	return nil
}

// authorize enforces assignment-based authoring for teachers; admins pass.
func (s *Service) authorize(userID uint, role, subject, class string) error {
	if role == models.RoleAdmin {
		return nil
	}
	ok, err := s.assignments.CanAuthor(userID, subject, class)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAssigned
	}
	return nil
}

func (s *Service) Create(userID uint, role string, q *models.Question) error {
	if err := Validate(q); err != nil {
		return err
	}
	if err := s.authorize(userID, role, q.Subject, q.Class); err != nil {
		return err
	}

	q.ID = 0
	q.TeacherID = userID
	q.EditedBy = nil
	return s.repo.Create(q)
}

func (s *Service) Update(userID uint, role string, id uint, updated *models.Question) (*models.Question, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && existing.TeacherID != userID {
		return nil, ErrNotOwner
	}
	if err := Validate(updated); err != nil {
		return nil, err
	}
	if err := s.authorize(userID, role, updated.Subject, updated.Class); err != nil {
		return nil, err
	}

	existing.QuestionType = updated.QuestionType
	existing.Text = updated.Text
	existing.OptionA = updated.OptionA
	existing.OptionB = updated.OptionB
	existing.OptionC = updated.OptionC
	existing.OptionD = updated.OptionD
	existing.CorrectOption = updated.CorrectOption
	existing.CorrectText = updated.CorrectText
	existing.ImageURL = updated.ImageURL
	existing.Subject = updated.Subject
	existing.Class = updated.Class
	existing.Term = updated.Term
	existing.EditedBy = &userID

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(userID uint, role string, id uint) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && existing.TeacherID != userID {
		return ErrNotOwner
	}
	return s.repo.Delete(id)
}

func (s *Service) Get(id uint) (*models.Question, error) {
	return s.repo.GetByID(id)
}

// List scopes teachers to their own questions; admins see everything.
func (s *Service) List(userID uint, role string, filter ListFilter) ([]models.Question, error) {
	if role != models.RoleAdmin {
		filter.TeacherID = userID
	}
	return s.repo.List(filter)
}

// ForTest assembles a test instance for an active code: random sample of up
// to NumQuestions, question order shuffled, options shuffled per question
// with the permutation recorded, correct answers withheld.
func (s *Service) ForTest(meta *models.CodeMetadata) ([]models.TestQuestion, error) {
	questions, err := s.repo.SampleForTest(meta.Subject, meta.Class, meta.Term, meta.NumQuestions)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	served := make([]models.TestQuestion, 0, len(questions))
	for _, q := range questions {
		tq := models.TestQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Text:         q.Text,
			ImageURL:     q.ImageURL,
		}
		if opts := q.Options(); len(opts) > 0 {
			tq.Options, tq.OptionMapping = ShuffleOptions(opts)
		}
		served = append(served, tq)
	}
	return served, nil
}

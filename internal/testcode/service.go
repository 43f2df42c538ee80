// Package testcode implements the test-code batch engine: generation of
// single-use access codes, batch-level activation cascades, soft deletion
// and code validation.
package testcode

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"cbt-portal/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrCodeNotFound wraps gorm.ErrRecordNotFound so handlers can map it
	// to 404 without importing this package's internals.
	ErrCodeNotFound = fmt.Errorf("test code not found: %w", gorm.ErrRecordNotFound)
	ErrCodeInactive = errors.New("test code is not active")
	ErrBadConfig    = errors.New("invalid batch configuration")
)

const codeLength = 6

// CodeCache is the metadata cache surface the service needs. Implemented by
// pkg/cache.RedisCache.
type CodeCache interface {
	GetCodeMetadata(code string) (*models.CodeMetadata, error)
	SetCodeMetadata(meta *models.CodeMetadata) error
	InvalidateCode(code string) error
}

type Service struct {
	repo  *Repository
	cache CodeCache
}

func NewService(repo *Repository, cache CodeCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// BatchConfig is the admin-supplied generation request.
type BatchConfig struct {
	Name             string `json:"name" validate:"required"`
	Subject          string `json:"subject" validate:"required"`
	Class            string `json:"class" validate:"required"`
	Term             string `json:"term" validate:"required"`
	Section          string `json:"section"`
	Session          string `json:"session" validate:"required"`
	TestType         string `json:"test_type"`
	NumQuestions     int    `json:"num_questions" validate:"required,min=1"`
	TimeLimit        int    `json:"time_limit" validate:"required,min=1"`
	ScorePerQuestion int    `json:"score_per_question" validate:"min=0"`
	NumCodes         int    `json:"num_codes" validate:"required,min=1,max=1000"`
}

// generateCode draws an independently random 6-character code from [A-Z0-9].
// No collision retry: the 36^6 space makes collisions negligible at expected
// volumes and the unique index backstops the rest.
func generateCode() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = charset[rand.Intn(len(charset))]
	}
	return string(code)
}

// CreateBatch creates the batch row and fans out NumCodes codes, all
// starting inactive with the batch configuration denormalized onto each.
func (s *Service) CreateBatch(cfg BatchConfig) (*models.TestCodeBatch, error) {
	if cfg.NumCodes < 1 || cfg.NumQuestions < 1 || cfg.TimeLimit < 1 {
		return nil, ErrBadConfig
	}
	if cfg.ScorePerQuestion <= 0 {
		cfg.ScorePerQuestion = 1
	}

	batch := &models.TestCodeBatch{
		Name:             cfg.Name,
		Subject:          cfg.Subject,
		Class:            cfg.Class,
		Term:             cfg.Term,
		Section:          cfg.Section,
		Session:          cfg.Session,
		TestType:         cfg.TestType,
		NumQuestions:     cfg.NumQuestions,
		TimeLimit:        cfg.TimeLimit,
		ScorePerQuestion: cfg.ScorePerQuestion,
		TotalCodes:       cfg.NumCodes,
		IsActive:         false,
	}

	codes := make([]models.TestCode, cfg.NumCodes)
	for i := range codes {
		codes[i] = models.TestCode{
			Code:             generateCode(),
			IsActive:         false,
			Subject:          cfg.Subject,
			Class:            cfg.Class,
			Term:             cfg.Term,
			Section:          cfg.Section,
			Session:          cfg.Session,
			TestType:         cfg.TestType,
			NumQuestions:     cfg.NumQuestions,
			TimeLimit:        cfg.TimeLimit,
			ScorePerQuestion: cfg.ScorePerQuestion,
		}
	}

	if err := s.repo.CreateBatchWithCodes(batch, codes); err != nil {
		log.Printf("Error creating code batch %q: %v", cfg.Name, err)
		return nil, err
	}
	batch.Codes = codes
	log.Printf("Created batch %d (%q) with %d codes", batch.ID, batch.Name, len(codes))
	return batch, nil
}

func (s *Service) ListBatches() ([]models.TestCodeBatch, error) {
	return s.repo.ListBatches()
}

func (s *Service) GetBatch(id uint) (*models.TestCodeBatch, error) {
	return s.repo.GetBatch(id)
}

func (s *Service) ListCodes(batchID uint) ([]models.TestCode, error) {
	return s.repo.ListCodes(batchID)
}

// SetBatchActive cascades the flag to every member code and invalidates any
// cached metadata for them.
func (s *Service) SetBatchActive(batchID uint, active bool) error {
	if err := s.repo.SetBatchActive(batchID, active); err != nil {
		return err
	}
	s.invalidateBatchCodes(batchID)
	return nil
}

func (s *Service) DeleteBatch(batchID uint) error {
	if err := s.repo.SoftDeleteBatch(batchID); err != nil {
		return err
	}
	s.invalidateBatchCodes(batchID)
	return nil
}

func (s *Service) invalidateBatchCodes(batchID uint) {
	codes, err := s.repo.ListCodes(batchID)
	if err != nil {
		log.Printf("Error listing codes for cache invalidation, batch %d: %v", batchID, err)
		return
	}
	for _, c := range codes {
		if err := s.cache.InvalidateCode(c.Code); err != nil {
			log.Printf("Error invalidating cached code %s: %v", c.Code, err)
		}
	}
}

// Validate checks a code for the test-entry flow: unknown codes surface
// ErrCodeNotFound, inactive ones ErrCodeInactive, active ones their
// metadata. Active metadata is cached briefly in Redis.
func (s *Service) Validate(code string) (*models.CodeMetadata, error) {
	if meta, err := s.cache.GetCodeMetadata(code); err == nil {
		if !meta.IsActive {
			return nil, ErrCodeInactive
		}
		return meta, nil
	}

	row, err := s.repo.GetCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if !row.IsActive {
		return nil, ErrCodeInactive
	}

	meta := row.Metadata()
	if err := s.cache.SetCodeMetadata(&meta); err != nil {
		log.Printf("Error caching code %s: %v", code, err)
	}
	return &meta, nil
}

// GetCode returns the raw code row regardless of active state.
func (s *Service) GetCode(code string) (*models.TestCode, error) {
	row, err := s.repo.GetCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return row, nil
}

// SetCodeActive flips a single code.
func (s *Service) SetCodeActive(code string, active bool) error {
	if err := s.repo.SetCodeActive(code, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeNotFound
		}
		return err
	}
	if err := s.cache.InvalidateCode(code); err != nil {
		log.Printf("Error invalidating cached code %s: %v", code, err)
	}
	return nil
}

// PurgeDeleted removes batches soft-deleted longer ago than the retention
// window. Called from the janitor.
func (s *Service) PurgeDeleted(retention time.Duration) (int64, error) {
	return s.repo.PurgeDeletedBefore(time.Now().Add(-retention))
}

package testcode

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cbt-portal/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// nopCache always misses so every lookup hits the database.
type nopCache struct{}

func (nopCache) GetCodeMetadata(string) (*models.CodeMetadata, error) {
	return nil, errors.New("cache miss")
}
func (nopCache) SetCodeMetadata(*models.CodeMetadata) error { return nil }
func (nopCache) InvalidateCode(string) error                { return nil }

func testConfig(numCodes int) BatchConfig {
	return BatchConfig{
		Name:         "Midterm Mathematics",
		Subject:      "Mathematics",
		Class:        "JSS1",
		Term:         "First Term",
		Session:      "2025/2026",
		TestType:     "midterm",
		NumQuestions: 5,
		TimeLimit:    30,
		NumCodes:     numCodes,
	}
}

func TestCreateBatchGeneratesCodes(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	const n = 25
	batch, err := svc.CreateBatch(testConfig(n))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if batch.TotalCodes != n {
		t.Fatalf("TotalCodes = %d, want %d", batch.TotalCodes, n)
	}
	if batch.IsActive {
		t.Fatalf("new batch must start inactive")
	}
	if batch.ScorePerQuestion != 1 {
		t.Fatalf("ScorePerQuestion should default to 1, got %d", batch.ScorePerQuestion)
	}

	codes, err := svc.ListCodes(batch.ID)
	if err != nil {
		t.Fatalf("ListCodes: %v", err)
	}
	if len(codes) != n {
		t.Fatalf("expected %d codes, got %d", n, len(codes))
	}

	seen := make(map[string]bool)
	for _, c := range codes {
		if c.BatchID != batch.ID {
			t.Fatalf("code %s references batch %d, want %d", c.Code, c.BatchID, batch.ID)
		}
		if c.IsActive {
			t.Fatalf("code %s must start inactive", c.Code)
		}
		if len(c.Code) != codeLength {
			t.Fatalf("code %q is not %d characters", c.Code, codeLength)
		}
		for _, ch := range c.Code {
			if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", ch) {
				t.Fatalf("code %q contains invalid character %q", c.Code, ch)
			}
		}
		if seen[c.Code] {
			t.Fatalf("duplicate code %s in batch", c.Code)
		}
		seen[c.Code] = true
		if c.Subject != "Mathematics" || c.TimeLimit != 30 || c.NumQuestions != 5 {
			t.Fatalf("batch config not denormalized onto code: %+v", c)
		}
	}
}

func TestCreateBatchRejectsBadConfig(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	cfg := testConfig(0)
	if _, err := svc.CreateBatch(cfg); !errors.Is(err, ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig for zero codes, got %v", err)
	}
}

func TestActivationCascades(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	batch, err := svc.CreateBatch(testConfig(10))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	if err := svc.SetBatchActive(batch.ID, true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	got, _ := svc.GetBatch(batch.ID)
	if !got.IsActive {
		t.Fatalf("batch not activated")
	}
	codes, _ := svc.ListCodes(batch.ID)
	for _, c := range codes {
		if !c.IsActive {
			t.Fatalf("code %s not activated with batch", c.Code)
		}
	}

	if err := svc.SetBatchActive(batch.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	codes, _ = svc.ListCodes(batch.ID)
	for _, c := range codes {
		if c.IsActive {
			t.Fatalf("code %s still active after batch deactivation", c.Code)
		}
	}
}

func TestActivateMissingBatch(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	if err := svc.SetBatchActive(999, true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestDeleteBatchIsSoft(t *testing.T) {
	db := setupDB(t)
	svc := NewService(NewRepository(db), nopCache{})

	batch, err := svc.CreateBatch(testConfig(3))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := svc.SetBatchActive(batch.ID, true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := svc.DeleteBatch(batch.ID); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}

	// Hidden from normal queries.
	if _, err := svc.GetBatch(batch.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("deleted batch still visible: %v", err)
	}

	// But preserved, inactive, for audit.
	var rows []models.TestCode
	if err := db.Unscoped().Where("batch_id = ?", batch.ID).Find(&rows).Error; err != nil {
		t.Fatalf("unscoped query: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("soft-deleted codes missing, got %d", len(rows))
	}
	for _, c := range rows {
		if c.IsActive {
			t.Fatalf("soft-deleted code %s still active", c.Code)
		}
		if !c.DeletedAt.Valid {
			t.Fatalf("code %s missing deleted_at", c.Code)
		}
	}
}

func TestValidateTrichotomy(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	batch, err := svc.CreateBatch(testConfig(1))
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	codes, _ := svc.ListCodes(batch.ID)
	code := codes[0].Code

	// Unknown code.
	if _, err := svc.Validate("NOPE99"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown code: expected not-found, got %v", err)
	}

	// Existing but inactive.
	if _, err := svc.Validate(code); !errors.Is(err, ErrCodeInactive) {
		t.Fatalf("inactive code: expected ErrCodeInactive, got %v", err)
	}

	// Active: metadata comes back.
	if err := svc.SetBatchActive(batch.ID, true); err != nil {
		t.Fatalf("activate: %v", err)
	}
	meta, err := svc.Validate(code)
	if err != nil {
		t.Fatalf("active code: %v", err)
	}
	if meta.Code != code || meta.Subject != "Mathematics" || meta.NumQuestions != 5 || meta.TimeLimit != 30 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestSingleCodeToggle(t *testing.T) {
	svc := NewService(NewRepository(setupDB(t)), nopCache{})

	batch, _ := svc.CreateBatch(testConfig(2))
	codes, _ := svc.ListCodes(batch.ID)

	if err := svc.SetCodeActive(codes[0].Code, true); err != nil {
		t.Fatalf("activate single code: %v", err)
	}

	first, _ := svc.GetCode(codes[0].Code)
	second, _ := svc.GetCode(codes[1].Code)
	if !first.IsActive {
		t.Fatalf("first code should be active")
	}
	if second.IsActive {
		t.Fatalf("sibling code must stay inactive")
	}

	if err := svc.SetCodeActive("ZZZZZZ", true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for unknown code, got %v", err)
	}
}

package testcode

import (
	"time"

	"cbt-portal/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBatchWithCodes inserts the batch row and all member codes in one
// transaction. A code collision violates the unique index and fails the
// whole insert.
func (r *Repository) CreateBatchWithCodes(batch *models.TestCodeBatch, codes []models.TestCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		for i := range codes {
			codes[i].BatchID = batch.ID
		}
		return tx.Create(&codes).Error
	})
}

func (r *Repository) ListBatches() ([]models.TestCodeBatch, error) {
	var batches []models.TestCodeBatch
	err := r.db.Order("created_at desc").Find(&batches).Error
	return batches, err
}

func (r *Repository) GetBatch(id uint) (*models.TestCodeBatch, error) {
	var batch models.TestCodeBatch
	if err := r.db.First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *Repository) ListCodes(batchID uint) ([]models.TestCode, error) {
	var codes []models.TestCode
	err := r.db.Where("batch_id = ?", batchID).Order("id asc").Find(&codes).Error
	return codes, err
}

// SetBatchActive flips the batch and cascades to every member code inside a
// transaction so batch and codes never disagree.
func (r *Repository) SetBatchActive(batchID uint, active bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TestCodeBatch{}).Where("id = ?", batchID).Update("is_active", active)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.TestCode{}).Where("batch_id = ?", batchID).Update("is_active", active).Error
	})
}

// SoftDeleteBatch marks the batch and all member codes deleted and inactive,
// preserving history for audit and export.
func (r *Repository) SoftDeleteBatch(batchID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TestCode{}).Where("batch_id = ?", batchID).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Where("batch_id = ?", batchID).Delete(&models.TestCode{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TestCodeBatch{}).Where("id = ?", batchID).Update("is_active", false).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.TestCodeBatch{}, batchID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *Repository) GetCode(code string) (*models.TestCode, error) {
	var row models.TestCode
	if err := r.db.Where("code = ?", code).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) SetCodeActive(code string, active bool) error {
	result := r.db.Model(&models.TestCode{}).Where("code = ?", code).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeDeletedBefore hard-deletes batches and codes soft-deleted before the
// cutoff. Used by the retention janitor.
func (r *Repository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		codes := tx.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(&models.TestCode{})
		if codes.Error != nil {
			return codes.Error
		}
		batches := tx.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(&models.TestCodeBatch{})
		if batches.Error != nil {
			return batches.Error
		}
		purged = codes.RowsAffected + batches.RowsAffected
		return nil
	})
	return purged, err
}

// Package repository implements submission.Repository on gorm.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"regportal-go/models"
	"regportal-go/submission"
)

type GormRepository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ submission.Repository = (*GormRepository)(nil)

func (r *GormRepository) Transaction(ctx context.Context, fn func(tx submission.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Files", "Validation", "Bank", "User").Create(sub).Error
}

func (r *GormRepository) UpdateValidation(ctx context.Context, sub *models.Submission) error {
	res := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":       sub.Status,
			"validated_at": sub.ValidatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return submission.ErrNotFound
	}
	return nil
}

// SaveReview writes status, both terminal timestamps, reviewer and comments
// in a single conditional UPDATE so concurrent reviews cannot interleave.
func (r *GormRepository) SaveReview(ctx context.Context, sub *models.Submission) error {
	res := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ? AND validated_at IS NOT NULL", sub.ID).
		Updates(map[string]interface{}{
			"status":      sub.Status,
			"approved_at": sub.ApprovedAt,
			"rejected_at": sub.RejectedAt,
			"reviewed_by": sub.ReviewedBy,
			"comments":    sub.Comments,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", sub.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return submission.ErrNotFound
	}
	return submission.ErrNotValidated
}

func (r *GormRepository) CreateFile(ctx context.Context, file *models.SubmissionFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// CreateValidationResult inserts the result and its details in one call.
func (r *GormRepository) CreateValidationResult(ctx context.Context, res *models.ValidationResult) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *GormRepository) DeleteSubmission(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)

	resultIDs := db.Model(&models.ValidationResult{}).Select("id").Where("submission_id = ?", id)
	if err := db.Where("validation_result_id IN (?)", resultIDs).Delete(&models.ValidationDetail{}).Error; err != nil {
		return err
	}
	if err := db.Where("submission_id = ?", id).Delete(&models.ValidationResult{}).Error; err != nil {
		return err
	}
	if err := db.Where("submission_id = ?", id).Delete(&models.SubmissionFile{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Submission{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (r *GormRepository) GetSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Preload("Files", orderBy("id ASC")).
		Preload("Validation").
		Preload("Validation.Details", orderBy("position ASC")).
		Preload("Bank").
		Preload("User").
		First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, submission.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *GormRepository) ListSubmissions(ctx context.Context, f submission.SubmissionFilter) ([]models.Submission, error) {
	q := r.db.WithContext(ctx).Model(&models.Submission{})
	if f.BankID != nil {
		q = q.Where("bank_id = ?", *f.BankID)
	}
	if f.ReturnType != "" {
		q = q.Where("return_type = ?", f.ReturnType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Period != "" {
		q = q.Where("period = ?", f.Period)
	}

	var subs []models.Submission
	err := paginate(q, f.Page, f.Limit).
		Preload("Bank").
		Preload("User").
		Preload("Files", orderBy("id ASC")).
		Preload("Validation").
		Order("submitted_at DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

func (r *GormRepository) GetValidationResult(ctx context.Context, submissionID uint) (*models.ValidationResult, error) {
	var res models.ValidationResult
	err := r.db.WithContext(ctx).
		Preload("Details", orderBy("position ASC")).
		Where("submission_id = ?", submissionID).
		First(&res).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, submission.ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *GormRepository) ListValidationResults(ctx context.Context, f submission.ResultFilter) ([]models.ValidationResult, error) {
	q := r.db.WithContext(ctx).Model(&models.ValidationResult{})
	if f.MinErrors > 0 {
		q = q.Where("total_errors >= ?", f.MinErrors)
	}
	if f.MinWarnings > 0 {
		q = q.Where("total_warnings >= ?", f.MinWarnings)
	}

	var results []models.ValidationResult
	err := paginate(q, f.Page, f.Limit).
		Preload("Details", orderBy("position ASC")).
		Order("validated_at DESC, id DESC").
		Find(&results).Error
	return results, err
}

func (r *GormRepository) GetFile(ctx context.Context, id uint) (*models.SubmissionFile, error) {
	var file models.SubmissionFile
	if err := r.db.WithContext(ctx).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, submission.ErrFileNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (r *GormRepository) LogAudit(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func orderBy(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	}
}

func paginate(q *gorm.DB, page, limit int) *gorm.DB {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return q.Limit(limit).Offset((page - 1) * limit)
}

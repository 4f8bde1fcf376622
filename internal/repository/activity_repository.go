package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/blog-records/internal/models"
)

type ActivityRepository struct{ db *gorm.DB }

func NewActivityRepository(db *gorm.DB) *ActivityRepository { return &ActivityRepository{db: db} }

func (r *ActivityRepository) Log(ctx context.Context, tx *gorm.DB, action, recordType string, recordID uint) error {
	entry := models.ActivityLog{Action: action, RecordType: recordType, RecordID: recordID}
	return tx.WithContext(ctx).Create(&entry).Error
}

func (r *ActivityRepository) ForRecord(ctx context.Context, recordType string, recordID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("record_type = ? AND record_id = ?", recordType, recordID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

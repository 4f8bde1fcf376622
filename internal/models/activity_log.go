package models

import "time"

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	RecordAuthor = "author"
	RecordPost   = "post"
)

type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	RecordType string    `gorm:"type:varchar(20);not null;index:idx_activity_record" json:"record_type"`
	RecordID   uint      `gorm:"not null;index:idx_activity_record" json:"record_id"`
	LoggedAt   time.Time `gorm:"autoCreateTime" json:"logged_at"`
}

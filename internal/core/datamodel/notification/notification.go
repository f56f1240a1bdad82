package notification

import "time"

type Notification struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;index"`
	Type      string     `gorm:"column:type;not null"`
	Title     string     `gorm:"column:title;not null"`
	Message   string     `gorm:"column:message"`
	TaskID    *int64     `gorm:"column:task_id;index"`
	DedupKey  string     `gorm:"column:dedup_key;uniqueIndex"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}

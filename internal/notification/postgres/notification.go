package postgres

import (
	"context"
	"time"

	notificationDatamodel "github.com/taskhive/task-management/internal/core/datamodel/notification"
	"github.com/taskhive/task-management/internal/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

// Create inserts the notification unless its dedup key already exists.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (bool, error) {
	dm := notification.ToDataModel(n)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(dm)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	n.ID = dm.ID
	return true, nil
}

func (r *NotificationRepository) GetByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*notification.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var dms []*notificationDatamodel.Notification
	if err := query.Order("created_at DESC, id DESC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return notification.FromDataModelSlice(dms), nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	var dm notificationDatamodel.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return notification.FromDataModel(&dm), nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Update("read_at", readAt).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, readAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", readAt).Error
}

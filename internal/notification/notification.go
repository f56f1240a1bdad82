package notification

import (
	"time"

	notificationDatamodel "github.com/taskhive/task-management/internal/core/datamodel/notification"
)

const (
	TypeTaskAssigned       = "TASK_ASSIGNED"
	TypeCommentAdded       = "COMMENT_ADDED"
	TypeAddedToProject     = "ADDED_TO_PROJECT"
	TypeRemovedFromProject = "REMOVED_FROM_PROJECT"
	TypeTaskArchived       = "TASK_ARCHIVED"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	TaskID    *int64     `json:"task_id,omitempty"`
	DedupKey  string     `json:"-"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TaskID:    n.TaskID,
		DedupKey:  n.DedupKey,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TaskID:    n.TaskID,
		DedupKey:  n.DedupKey,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func FromDataModelSlice(notifications []*notificationDatamodel.Notification) []*Notification {
	result := make([]*Notification, len(notifications))
	for i, n := range notifications {
		result[i] = FromDataModel(n)
	}
	return result
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	internal "github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/core/events"
)

// Repository stores notifications. Create reports whether the row was newly
// inserted; a dedup key collision yields created=false with no error.
type Repository interface {
	Create(ctx context.Context, n *Notification) (created bool, err error)
	GetByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) error
	MarkAllRead(ctx context.Context, userID int64, readAt time.Time) error
}

// DeliveryAPI is the async push side; storage never depends on it succeeding.
type DeliveryAPI interface {
	Dispatch(n *Notification) error
}

type Service struct {
	repo       Repository
	dispatcher DeliveryAPI
	logger     *slog.Logger
}

func NewService(repo Repository, dispatcher DeliveryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterEventHandlers wires the service into the event bus.
func (s *Service) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeCollaborationAdded, s.HandleCollaborationAdded)
	bus.Subscribe(events.EventTypeCollaborationRemoved, s.HandleCollaborationRemoved)
	bus.Subscribe(events.EventTypeTaskAssigned, s.HandleTaskAssigned)
	bus.Subscribe(events.EventTypeTaskCommentAdded, s.HandleTaskCommentAdded)
}

// HandleCollaborationAdded stores the "added to project" notification. The
// event's dedup key and the unique index on it guarantee at most one row per
// (project, user) pair no matter how often the event is delivered.
func (s *Service) HandleCollaborationAdded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.CollaborationAddedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	projectName := e.ProjectName
	if projectName == "" {
		projectName = fmt.Sprintf("project %d", e.ProjectID)
	}

	n := &Notification{
		UserID:    e.UserID,
		Type:      TypeAddedToProject,
		Title:     "Added to project",
		Message:   fmt.Sprintf("You have been added to %s", projectName),
		TaskID:    &e.TaskID,
		DedupKey:  e.DedupKey(),
		CreatedAt: time.Now(),
	}

	return s.store(ctx, n)
}

func (s *Service) HandleCollaborationRemoved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.CollaborationRemovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	n := &Notification{
		UserID:    e.UserID,
		Type:      TypeRemovedFromProject,
		Title:     "Removed from project",
		Message:   fmt.Sprintf("You have been removed from %s", e.ProjectName),
		DedupKey:  event.EventID(),
		CreatedAt: time.Now(),
	}

	return s.store(ctx, n)
}

func (s *Service) HandleTaskAssigned(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.TaskAssignedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	// self assignment needs no notification
	if e.AssigneeID == e.AssignedByID {
		return nil
	}

	n := &Notification{
		UserID:    e.AssigneeID,
		Type:      TypeTaskAssigned,
		Title:     "New task assignment",
		Message:   fmt.Sprintf("You have been assigned to task %d", e.TaskID),
		TaskID:    &e.TaskID,
		DedupKey:  event.EventID(),
		CreatedAt: time.Now(),
	}

	return s.store(ctx, n)
}

func (s *Service) HandleTaskCommentAdded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.TaskCommentAddedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	for _, recipientID := range e.RecipientID {
		n := &Notification{
			UserID:    recipientID,
			Type:      TypeCommentAdded,
			Title:     "New comment",
			Message:   fmt.Sprintf("New comment on task %d", e.TaskID),
			TaskID:    &e.TaskID,
			DedupKey:  fmt.Sprintf("%s:%d", event.EventID(), recipientID),
			CreatedAt: time.Now(),
		}
		if err := s.store(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) store(ctx context.Context, n *Notification) error {
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		s.logger.Error("failed to store notification",
			"error", err, "user_id", n.UserID, "type", n.Type)
		return err
	}
	if !created {
		s.logger.Debug("duplicate notification suppressed",
			"user_id", n.UserID, "type", n.Type, "dedup_key", n.DedupKey)
		return nil
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(n); err != nil {
			s.logger.Warn("notification delivery not queued",
				"error", err, "notification_id", n.ID)
		}
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]*Notification, error) {
	if userID <= 0 {
		return nil, internal.ErrNotAuthenticated
	}
	return s.repo.GetByUser(ctx, userID, unreadOnly)
}

// MarkRead marks one notification read. Users may only touch their own.
func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil || n.UserID != userID {
		return internal.NewNotFoundError("Notification not found", internal.ErrCodeNotificationNotFound)
	}
	if n.IsRead() {
		return nil
	}
	return s.repo.MarkRead(ctx, id, time.Now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return internal.ErrNotAuthenticated
	}
	return s.repo.MarkAllRead(ctx, userID, time.Now())
}

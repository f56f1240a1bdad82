package notification_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/taskhive/task-management/internal/core/events"
	"github.com/taskhive/task-management/internal/notification"
)

func TestNotificationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Service Suite")
}

type mockNotificationRepository struct {
	byDedupKey  map[string]*notification.Notification
	byID        map[int64]*notification.Notification
	createError error
	nextID      int64
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{
		byDedupKey: make(map[string]*notification.Notification),
		byID:       make(map[int64]*notification.Notification),
		nextID:     1,
	}
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *notification.Notification) (bool, error) {
	if m.createError != nil {
		return false, m.createError
	}
	if n.DedupKey != "" {
		if _, exists := m.byDedupKey[n.DedupKey]; exists {
			return false, nil
		}
	}
	n.ID = m.nextID
	m.nextID++
	if n.DedupKey != "" {
		m.byDedupKey[n.DedupKey] = n
	}
	m.byID[n.ID] = n
	return true, nil
}

func (m *mockNotificationRepository) GetByUser(ctx context.Context, userID int64, unreadOnly bool) ([]*notification.Notification, error) {
	var result []*notification.Notification
	for _, n := range m.byID {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead() {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id int64) (*notification.Notification, error) {
	return m.byID[id], nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id int64, readAt time.Time) error {
	if n := m.byID[id]; n != nil {
		n.ReadAt = &readAt
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID int64, readAt time.Time) error {
	for _, n := range m.byID {
		if n.UserID == userID && !n.IsRead() {
			at := readAt
			n.ReadAt = &at
		}
	}
	return nil
}

type mockDeliveryAPI struct {
	dispatched    []*notification.Notification
	dispatchError error
}

func (m *mockDeliveryAPI) Dispatch(n *notification.Notification) error {
	if m.dispatchError != nil {
		return m.dispatchError
	}
	m.dispatched = append(m.dispatched, n)
	return nil
}

var _ = Describe("NotificationService", func() {
	var (
		service  *notification.Service
		repo     *mockNotificationRepository
		delivery *mockDeliveryAPI
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockNotificationRepository()
		delivery = &mockDeliveryAPI{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = notification.NewService(repo, delivery, logger)
		ctx = context.Background()
	})

	Describe("HandleCollaborationAdded", func() {
		var event *events.CollaborationAddedEvent

		BeforeEach(func() {
			event = events.NewCollaborationAddedEvent(55, "Platform Revamp", 200, 7)
		})

		It("stores and dispatches one notification", func() {
			Expect(service.HandleCollaborationAdded(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(1))
			stored := repo.byDedupKey["collab:55:200"]
			Expect(stored).ToNot(BeNil())
			Expect(stored.UserID).To(Equal(int64(200)))
			Expect(stored.Type).To(Equal(notification.TypeAddedToProject))
			Expect(stored.Message).To(ContainSubstring("Platform Revamp"))
			Expect(delivery.dispatched).To(HaveLen(1))
		})

		It("suppresses a redelivered event without error", func() {
			Expect(service.HandleCollaborationAdded(ctx, event)).To(Succeed())

			redelivered := events.NewCollaborationAddedEvent(55, "Platform Revamp", 200, 7)
			Expect(service.HandleCollaborationAdded(ctx, redelivered)).To(Succeed())

			Expect(repo.byID).To(HaveLen(1))
			Expect(delivery.dispatched).To(HaveLen(1))
		})

		It("falls back to the project id when the name is empty", func() {
			unnamed := events.NewCollaborationAddedEvent(55, "", 200, 7)

			Expect(service.HandleCollaborationAdded(ctx, unnamed)).To(Succeed())

			Expect(repo.byDedupKey["collab:55:200"].Message).To(ContainSubstring("project 55"))
		})

		It("still stores the row when dispatch fails", func() {
			delivery.dispatchError = context.DeadlineExceeded

			Expect(service.HandleCollaborationAdded(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(1))
		})
	})

	Describe("HandleTaskAssigned", func() {
		It("notifies the assignee", func() {
			event := events.NewTaskAssignedEvent(7, 200, 100)

			Expect(service.HandleTaskAssigned(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(1))
			var stored *notification.Notification
			for _, n := range repo.byID {
				stored = n
			}
			Expect(stored.UserID).To(Equal(int64(200)))
			Expect(stored.Type).To(Equal(notification.TypeTaskAssigned))
		})

		It("skips self assignment", func() {
			event := events.NewTaskAssignedEvent(7, 100, 100)

			Expect(service.HandleTaskAssigned(ctx, event)).To(Succeed())

			Expect(repo.byID).To(BeEmpty())
			Expect(delivery.dispatched).To(BeEmpty())
		})
	})

	Describe("HandleTaskCommentAdded", func() {
		It("fans out one notification per recipient", func() {
			event := events.NewTaskCommentAddedEvent(7, 3, 100, []int64{200, 201})

			Expect(service.HandleTaskCommentAdded(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(2))
			Expect(delivery.dispatched).To(HaveLen(2))
		})

		It("deduplicates per recipient on redelivery", func() {
			event := events.NewTaskCommentAddedEvent(7, 3, 100, []int64{200, 201})

			Expect(service.HandleTaskCommentAdded(ctx, event)).To(Succeed())
			Expect(service.HandleTaskCommentAdded(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(2))
		})
	})

	Describe("HandleCollaborationRemoved", func() {
		It("notifies the removed user", func() {
			event := events.NewCollaborationRemovedEvent(55, "Platform Revamp", 200, 100)

			Expect(service.HandleCollaborationRemoved(ctx, event)).To(Succeed())

			Expect(repo.byID).To(HaveLen(1))
			var stored *notification.Notification
			for _, n := range repo.byID {
				stored = n
			}
			Expect(stored.UserID).To(Equal(int64(200)))
			Expect(stored.Type).To(Equal(notification.TypeRemovedFromProject))
			Expect(stored.Message).To(ContainSubstring("Platform Revamp"))
		})
	})

	Describe("ListForUser", func() {
		It("filters unread notifications on request", func() {
			readAt := time.Now()
			repo.byID[1] = &notification.Notification{ID: 1, UserID: 200, ReadAt: &readAt}
			repo.byID[2] = &notification.Notification{ID: 2, UserID: 200}

			all, err := service.ListForUser(ctx, 200, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(2))

			unread, err := service.ListForUser(ctx, 200, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(unread).To(HaveLen(1))
			Expect(unread[0].ID).To(Equal(int64(2)))
		})

		It("rejects a missing user id", func() {
			_, err := service.ListForUser(ctx, 0, false)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("User not authenticated"))
		})
	})

	Describe("MarkRead", func() {
		It("marks the user's own notification read", func() {
			repo.byID[1] = &notification.Notification{ID: 1, UserID: 200}

			Expect(service.MarkRead(ctx, 1, 200)).To(Succeed())

			Expect(repo.byID[1].IsRead()).To(BeTrue())
		})

		It("hides other users' notifications as not found", func() {
			repo.byID[1] = &notification.Notification{ID: 1, UserID: 999}

			err := service.MarkRead(ctx, 1, 200)

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Notification not found"))
		})

		It("is a no-op for an already read notification", func() {
			readAt := time.Now().Add(-time.Hour)
			repo.byID[1] = &notification.Notification{ID: 1, UserID: 200, ReadAt: &readAt}

			Expect(service.MarkRead(ctx, 1, 200)).To(Succeed())

			Expect(repo.byID[1].ReadAt).To(Equal(&readAt))
		})
	})

	Describe("MarkAllRead", func() {
		It("marks every unread notification for the user", func() {
			repo.byID[1] = &notification.Notification{ID: 1, UserID: 200}
			repo.byID[2] = &notification.Notification{ID: 2, UserID: 200}
			repo.byID[3] = &notification.Notification{ID: 3, UserID: 999}

			Expect(service.MarkAllRead(ctx, 200)).To(Succeed())

			Expect(repo.byID[1].IsRead()).To(BeTrue())
			Expect(repo.byID[2].IsRead()).To(BeTrue())
			Expect(repo.byID[3].IsRead()).To(BeFalse())
		})
	})
})

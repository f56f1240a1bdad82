package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTaskAssigned         = "task.assigned"
	EventTypeTaskCommentAdded     = "task.comment_added"
	EventTypeTaskArchived         = "task.archived"
	EventTypeCollaborationAdded   = "project.collaboration_added"
	EventTypeCollaborationRemoved = "project.collaboration_removed"
)

type TaskAssignedEvent struct {
	BaseEvent
	TaskID       int64 `json:"task_id"`
	AssigneeID   int64 `json:"assignee_id"`
	AssignedByID int64 `json:"assigned_by_id"`
}

func NewTaskAssignedEvent(taskID, assigneeID, assignedByID int64) *TaskAssignedEvent {
	return &TaskAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"task_id":        taskID,
				"assignee_id":    assigneeID,
				"assigned_by_id": assignedByID,
			},
		},
		TaskID:       taskID,
		AssigneeID:   assigneeID,
		AssignedByID: assignedByID,
	}
}

// CollaborationAddedEvent fires at most once per (project, user) pair: only
// when the collaborator row was newly inserted, never on re-assignment.
type CollaborationAddedEvent struct {
	BaseEvent
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	UserID      int64  `json:"user_id"`
	TaskID      int64  `json:"task_id"`
}

func NewCollaborationAddedEvent(projectID int64, projectName string, userID, taskID int64) *CollaborationAddedEvent {
	return &CollaborationAddedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCollaborationAdded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"project_id":   projectID,
				"project_name": projectName,
				"user_id":      userID,
				"task_id":      taskID,
			},
		},
		ProjectID:   projectID,
		ProjectName: projectName,
		UserID:      userID,
		TaskID:      taskID,
	}
}

// DedupKey identifies the logical "added to project" event so re-delivery
// cannot produce a second notification row.
func (e *CollaborationAddedEvent) DedupKey() string {
	return fmt.Sprintf("collab:%d:%d", e.ProjectID, e.UserID)
}

type CollaborationRemovedEvent struct {
	BaseEvent
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	UserID      int64  `json:"user_id"`
	RemovedByID int64  `json:"removed_by_id"`
}

func NewCollaborationRemovedEvent(projectID int64, projectName string, userID, removedByID int64) *CollaborationRemovedEvent {
	return &CollaborationRemovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCollaborationRemoved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"project_id":    projectID,
				"project_name":  projectName,
				"user_id":       userID,
				"removed_by_id": removedByID,
			},
		},
		ProjectID:   projectID,
		ProjectName: projectName,
		UserID:      userID,
		RemovedByID: removedByID,
	}
}

type TaskCommentAddedEvent struct {
	BaseEvent
	TaskID      int64   `json:"task_id"`
	CommentID   int64   `json:"comment_id"`
	AuthorID    int64   `json:"author_id"`
	RecipientID []int64 `json:"recipient_ids"`
}

func NewTaskCommentAddedEvent(taskID, commentID, authorID int64, recipients []int64) *TaskCommentAddedEvent {
	return &TaskCommentAddedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskCommentAdded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"task_id":    taskID,
				"comment_id": commentID,
				"author_id":  authorID,
			},
		},
		TaskID:      taskID,
		CommentID:   commentID,
		AuthorID:    authorID,
		RecipientID: recipients,
	}
}

type TaskArchivedEvent struct {
	BaseEvent
	TaskID      int64   `json:"task_id"`
	ArchivedIDs []int64 `json:"archived_ids"`
	ArchivedBy  int64   `json:"archived_by"`
}

func NewTaskArchivedEvent(taskID int64, archivedIDs []int64, archivedBy int64) *TaskArchivedEvent {
	return &TaskArchivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskArchived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"task_id":      taskID,
				"archived_ids": archivedIDs,
				"archived_by":  archivedBy,
			},
		},
		TaskID:      taskID,
		ArchivedIDs: archivedIDs,
		ArchivedBy:  archivedBy,
	}
}

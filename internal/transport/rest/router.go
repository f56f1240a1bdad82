package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/taskhive/task-management/internal/auth"
	"github.com/taskhive/task-management/internal/department"
	"github.com/taskhive/task-management/internal/notification"
	"github.com/taskhive/task-management/internal/project"
	"github.com/taskhive/task-management/internal/task"
	"github.com/taskhive/task-management/internal/transport/middleware"
	"github.com/taskhive/task-management/internal/transport/swagger"
	"github.com/taskhive/task-management/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Department   *department.Handler
	Task         *task.Handler
	Project      *project.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, handlers Handlers, roles *auth.RoleAuthorization, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS("*"))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if handlers.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", handlers.Auth.Login)
				sr.Post("/refresh", handlers.Auth.RefreshToken)
				sr.Post("/logout", handlers.Auth.Logout)
			})

			r.Group(func(pr chi.Router) {
				pr.Use(handlers.Auth.AuthMiddleware)

				if handlers.User != nil {
					pr.Get("/users/me", handlers.User.GetCurrentUser)
				}

				if handlers.Department != nil {
					pr.Get("/departments", handlers.Department.GetDepartments)
				}

				if handlers.Task != nil {
					pr.Route("/tasks", func(tr chi.Router) {
						tr.Post("/", handlers.Task.CreateTask)
						tr.Get("/mine", handlers.Task.GetMyTasks)
						tr.Get("/department", handlers.Task.GetDepartmentTasks)
						tr.Get("/parents", handlers.Task.GetParentCandidates)
						tr.Get("/{id}", handlers.Task.GetTask)
						tr.Get("/{id}/subtasks", handlers.Task.GetSubtasks)
						tr.Get("/{id}/departments", handlers.Task.GetInvolvedDepartments)
						tr.Post("/{id}/assignees", handlers.Task.AssignUser)
						tr.Delete("/{id}/assignees/{userID}", handlers.Task.RemoveAssignee)
						tr.Post("/{id}/comments", handlers.Task.AddComment)

						// Archive is manager-gated in the service, which owns
						// the contract message staff callers must receive.
						tr.Post("/{id}/archive", handlers.Task.ArchiveTask)

						tr.Group(func(mr chi.Router) {
							mr.Use(roles.RequireManager())
							mr.Get("/dashboard", handlers.Task.GetDashboardTasks)
						})
					})
				}

				if handlers.Project != nil {
					pr.Route("/projects", func(prj chi.Router) {
						prj.Get("/", handlers.Project.GetProjects)
						prj.Post("/", handlers.Project.CreateProject)
						prj.Get("/{id}", handlers.Project.GetProject)
						prj.Get("/{id}/collaborators", handlers.Project.GetCollaborators)

						// Collaborator removal is gated in the service, which
						// owns the manager-only contract message.
						prj.Delete("/{id}/collaborators/{userID}", handlers.Project.RemoveCollaborator)

						prj.Group(func(mr chi.Router) {
							mr.Use(roles.RequireManager())
							mr.Post("/{id}/departments", handlers.Project.GrantDepartmentAccess)
						})
					})
				}

				if handlers.Notification != nil {
					pr.Route("/notifications", func(nr chi.Router) {
						nr.Get("/", handlers.Notification.GetNotifications)
						nr.Post("/read-all", handlers.Notification.MarkAllRead)
						nr.Post("/{id}/read", handlers.Notification.MarkRead)
					})
				}
			})
		}
	})
}

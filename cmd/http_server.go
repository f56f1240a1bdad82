package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/taskhive/task-management/internal"
	"github.com/taskhive/task-management/internal/auth"
	authPostgres "github.com/taskhive/task-management/internal/auth/postgres"
	"github.com/taskhive/task-management/internal/core/events"
	"github.com/taskhive/task-management/internal/department"
	departmentPostgres "github.com/taskhive/task-management/internal/department/postgres"
	"github.com/taskhive/task-management/internal/notification"
	notificationPostgres "github.com/taskhive/task-management/internal/notification/postgres"
	"github.com/taskhive/task-management/internal/project"
	projectPostgres "github.com/taskhive/task-management/internal/project/postgres"
	"github.com/taskhive/task-management/internal/task"
	taskPostgres "github.com/taskhive/task-management/internal/task/postgres"
	"github.com/taskhive/task-management/internal/transport"
	"github.com/taskhive/task-management/internal/transport/rest"
	"github.com/taskhive/task-management/internal/user"
	userPostgres "github.com/taskhive/task-management/internal/user/postgres"
	"github.com/taskhive/task-management/pkg/logger"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	GormDB     *gorm.DB
	Router     *chi.Mux
	Handlers   rest.Handlers
	Roles      *auth.RoleAuthorization
	Dispatcher *notification.Dispatcher
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Roles, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Dispatcher.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		APIURL:          config.Notification.APIURL,
		APIKey:          config.Notification.APIKey,
		DispatchTimeout: config.Notification.DispatchTimeout,
		MaxWorkers:      config.Notification.MaxWorkers,
		JobQueueSize:    config.Notification.JobQueueSize,
		WorkerPoolSize:  config.Notification.WorkerPoolSize,
	}, lg)

	notificationRepo := notificationPostgres.NewNotificationRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, dispatcher, lg)
	notificationService.RegisterEventHandlers(eventBus)

	departmentRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	departmentService := department.NewService(departmentRepo, lg)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo)

	authRepo := authPostgres.NewRepository(gormDB)
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)

	projectRepo := projectPostgres.NewProjectRepository(gormDB)
	projectService := project.NewService(projectRepo, userService, departmentService, eventBus, lg)

	taskRepo := taskPostgres.NewTaskRepository(gormDB)
	taskService := task.NewService(taskRepo, departmentService, projectRepo, eventBus, lg)

	baseHandler := transport.NewBaseHandler(lg)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		User:         user.NewHandler(userService),
		Department:   department.NewHandler(baseHandler, departmentService),
		Task:         task.NewHandler(taskService),
		Project:      project.NewHandler(projectService),
		Notification: notification.NewHandler(notificationService),
	}

	return &Dependencies{
		Config:     config,
		Logger:     lg,
		DB:         db,
		GormDB:     gormDB,
		Router:     chi.NewRouter(),
		Handlers:   handlers,
		Roles:      auth.NewRoleAuthorization(lg),
		Dispatcher: dispatcher,
	}, nil
}

// initDB opens the plain sql connection used for health checks.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGormDB opens the gorm connection the repositories run on. SQLite keeps
// local development and tests off a postgres install.
func initGormDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = gormsqlite.Open(cfg.Source)
	default:
		dialector = gormpostgres.Open(cfg.Source)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return gormDB, nil
}

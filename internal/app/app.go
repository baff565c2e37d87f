package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/config"
	"github.com/stemcapstone/smartgoals/internal/db"
	"github.com/stemcapstone/smartgoals/internal/markdown"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
	"github.com/stemcapstone/smartgoals/internal/storage"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	AuthService         *service.AuthService
	UserService         *service.UserService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	FileService         *service.FileService
	GroupService        *service.GroupService
	ProjectService      *service.ProjectService
	GoalService         *service.GoalService
	ResourceService     *service.ResourceService
	Sessions            *service.Sessions
}

// Open connects to the database and runs pending migrations.
func Open(cfg *config.Config) (*sqlx.DB, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	groupRepository := repository.NewGroupRepository(database)
	projectRepository := repository.NewProjectRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	resourceRepository := repository.NewResourceRepository(database)

	// Storage is optional; without it file resources are disabled.
	var fileStorage storage.Storage
	s3Storage, err := storage.New(ctx, cfg)
	switch {
	case err == nil:
		fileStorage = s3Storage
	case errors.Is(err, storage.ErrNotConfigured):
		slog.Warn("file storage disabled, S3_BUCKET is not set")
	default:
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	validator := validation.New()
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	notificationService := service.NewNotificationService(userRepository, emailService, markdown.NewParser())
	fileService := service.NewFileService(fileRepository, fileStorage)
	groupService := service.NewGroupService(groupRepository, validator)
	projectService := service.NewProjectService(projectRepository, groupRepository, commentRepository, validator)
	goalService := service.NewGoalService(goalRepository, projectService, validator)
	resourceService := service.NewResourceService(resourceRepository, groupService, fileService, validator)
	sessions := service.NewSessions(goalRepository, groupRepository, notificationService, cfg.ProgressDebounce)

	return &App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry),
		UserService:         service.NewUserService(userRepository),
		EmailService:        emailService,
		NotificationService: notificationService,
		FileService:         fileService,
		GroupService:        groupService,
		ProjectService:      projectService,
		GoalService:         goalService,
		ResourceService:     resourceService,
		Sessions:            sessions,
	}, nil
}

// Close writes queued progress and closes the database.
func (a *App) Close() error {
	if a.Sessions != nil {
		a.Sessions.FlushAll()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

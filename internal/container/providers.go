// Package container provides dependency injection and lifecycle management
// for the claims portal.
package container

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/application/service"
	"github.com/garyjia/claims-portal/internal/config"
	"github.com/garyjia/claims-portal/internal/domain/event"
	"github.com/garyjia/claims-portal/internal/infrastructure/export"
	"github.com/garyjia/claims-portal/internal/infrastructure/external/crm"
	"github.com/garyjia/claims-portal/internal/infrastructure/persistence/repository"
	"github.com/garyjia/claims-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/claims-portal/internal/infrastructure/storage"
	"github.com/garyjia/claims-portal/migrations"
	"github.com/garyjia/claims-portal/pkg/database"
	"github.com/garyjia/claims-portal/pkg/utils"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Claim    port.ClaimRepository
	Document port.DocumentRepository
	Profile  port.ProfileRepository
	History  port.HistoryRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Claim        service.ClaimService
	Document     service.DocumentService
	Profile      service.ProfileService
	Notification service.NotificationService
	Export       service.ExportService
}

// ServiceDeps holds what ProvideServices needs.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Storage    port.ObjectStorage
	CRM        port.CRMNotifier
	Exporter   port.ClaimExporter
	Dispatcher dispatcher.Dispatcher
	Uploads    config.UploadsConfig
	Logger     *zap.Logger
}

// ProvideDatabase opens the database and applies pending migrations.
func ProvideDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	applied, err := database.NewMigrator(db, logger).Run(migrations.FS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Migrations applied", zap.Int("count", applied))

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &RepositoryBundle{
		Claim:    repository.NewClaimRepository(sqlDB, logger),
		Document: repository.NewDocumentRepository(sqlDB, logger),
		Profile:  repository.NewProfileRepository(sqlDB, logger),
		History:  repository.NewHistoryRepository(sqlDB, logger),
	}, nil
}

// ProvideStorage creates the configured object storage.
func ProvideStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (port.ObjectStorage, error) {
	switch cfg.Driver {
	case config.DriverS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
			PublicURL: cfg.S3.PublicURL,
			Timeout:   cfg.S3.Timeout,
		}, logger)
	case config.DriverLocal:
		return storage.NewLocalStorage(cfg.Local.BaseDir, cfg.Local.PublicURL, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// ProvideCRM creates the CRM trigger client.
func ProvideCRM(cfg *config.CRMConfig, logger *zap.Logger) (*crm.Client, error) {
	return crm.NewClient(crm.Config{
		ContactURL:    cfg.ContactURL,
		StatusURL:     cfg.StatusURL,
		SigningSecret: cfg.SigningSecret,
		Timeout:       cfg.Timeout,
	}, logger)
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(cfg *config.CRMConfig, logger *zap.Logger) dispatcher.Dispatcher {
	opts := []dispatcher.Option{dispatcher.WithLogger(utils.NewSugaredAdapter(logger))}
	if cfg.SyncTimeout > 0 {
		opts = append(opts, dispatcher.WithHandlerTimeout(cfg.SyncTimeout))
	}
	return dispatcher.NewDispatcher(opts...)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := utils.NewSugaredAdapter(deps.Logger)

	claims := service.NewClaimService(
		deps.Repos.Claim,
		deps.Repos.History,
		deps.Repos.Profile,
		deps.TxManager,
		deps.Dispatcher,
		serviceLogger,
	)

	return &ServiceBundle{
		Claim: claims,
		Document: service.NewDocumentService(
			deps.Repos.Claim,
			deps.Repos.Document,
			deps.Repos.History,
			deps.Storage,
			deps.TxManager,
			deps.Dispatcher,
			service.UploadPolicy{
				MaxFileSize:  deps.Uploads.MaxFileSize,
				MaxFiles:     deps.Uploads.MaxFiles,
				AllowedTypes: deps.Uploads.AllowedTypes,
			},
			serviceLogger,
		),
		Profile:      service.NewProfileService(deps.Repos.Profile, serviceLogger),
		Notification: service.NewNotificationService(deps.Repos.Claim, deps.CRM, serviceLogger),
		Export:       service.NewExportService(claims, deps.Exporter, serviceLogger),
	}, nil
}

// ProvideExporter creates the staff spreadsheet exporter.
func ProvideExporter(logger *zap.Logger) port.ClaimExporter {
	return export.NewXLSXExporter(logger)
}

// RegisterEventHandlers subscribes the CRM contact sync and an audit log of
// every domain event.
func RegisterEventHandlers(d dispatcher.Dispatcher, services *ServiceBundle, logger *zap.Logger) {
	services.Notification.RegisterHandlers(d)

	for _, t := range event.AllTypes() {
		d.Subscribe(t, "audit-log", func(ctx context.Context, e *event.Event) error {
			logger.Info("Domain event",
				zap.String("event_id", e.ID),
				zap.String("type", e.Type.String()),
				zap.String("claim_id", e.ClaimID),
				zap.String("actor_id", e.ActorID),
				zap.String("correlation_id", e.CorrelationID))
			return nil
		})
	}
}

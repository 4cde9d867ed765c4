package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"annoflow/internal/bootstrap/config"
	"annoflow/internal/bootstrap/database"
	"annoflow/internal/bootstrap/logging"
	"annoflow/internal/domain/audit"
	"annoflow/internal/errs"
	"annoflow/internal/infrastructure/persistence/sqlite/model"
	"annoflow/internal/infrastructure/persistence/sqlite/schema"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
	Policy audit.Policy
}

// newApp validates the audit policy against the model schemas before handing
// the app out: a policy column that does not exist on its table is a
// programming error and must abort startup, not silently freeze timestamps.
func newApp(cfg config.Config, db *gorm.DB, policy audit.Policy) (*App, error) {
	if err := schema.ValidatePolicy(policy); err != nil {
		return nil, errs.Wrap(err, "validate audit policy")
	}
	return &App{
		Config: cfg,
		DB:     db,
		Policy: policy,
	}, nil
}

// New bootstraps the app without fx, for callers that want direct control.
func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	app, err := newApp(cfg, db, audit.Default())
	if err != nil {
		return nil, err
	}

	logging.Info(logCtx, "application bootstrap completed", slog.String("database_driver", cfg.Database.Driver))
	return app, nil
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "bootstrap.app")), "database connection closed")
	return nil
}

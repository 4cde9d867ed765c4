package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"annoflow/internal/bootstrap/config"
	"annoflow/internal/bootstrap/database"
	"annoflow/internal/bootstrap/logging"
	"annoflow/internal/domain/audit"
	sqliterepo "annoflow/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "annoflow/internal/infrastructure/persistence/sqlite/uow"
	"annoflow/internal/ports"
	"annoflow/internal/usecase/workflow"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(providePolicy),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewOrganizationRepository,
			fx.As(new(ports.OrganizationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewProjectRepository,
			fx.As(new(ports.ProjectRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAnnotationRepository,
			fx.As(new(ports.AnnotationRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewExportRepository,
			fx.As(new(ports.ExportRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(workflow.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func providePolicy() audit.Policy {
	return audit.Default()
}

func provideApp(cfg config.Config, db *gorm.DB, policy audit.Policy) (*App, error) {
	return newApp(cfg, db, policy)
}

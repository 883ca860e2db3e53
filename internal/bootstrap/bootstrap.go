package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/feralmap/catwatch/internal/config"
	"github.com/feralmap/catwatch/internal/core/ports"
	"github.com/feralmap/catwatch/internal/core/usecase"
	"github.com/feralmap/catwatch/internal/infrastructure/queue/nats"
	"github.com/feralmap/catwatch/internal/infrastructure/repository/postgres"
	"github.com/feralmap/catwatch/internal/infrastructure/resilience"
	"github.com/feralmap/catwatch/internal/infrastructure/vision"
	"github.com/feralmap/catwatch/internal/infrastructure/vocabulary"
)

type App struct {
	Config config.Config

	Queue *nats.Queue
	Repo  ports.CatRepository

	IdentifyUC ports.IdentityProposer
	RecordUC   ports.SightingRecorder
	CatalogUC  ports.CatalogReader
	ActivityUC ports.ActivityApplier

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewCatRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	activityRepo := postgres.NewActivityRepository(db)

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	normalizer, err := vocabulary.Load(cfg.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	extractor := vision.NewWithOptions(cfg.VisionURL, cfg.VisionModel, vision.Options{
		HTTPTimeout: time.Duration(cfg.VisionTimeoutSeconds) * time.Second,
		Runner:      resilience.NewRunner(resilience.DefaultPolicy()),
		Normalizer:  normalizer,
	})

	identifyUC := usecase.NewIdentifyCatUseCase(repo, extractor)
	recordUC := usecase.NewRecordSightingUseCase(repo, extractor, queue)
	catalogUC := usecase.NewCatalogUseCase(repo, activityRepo)
	activityUC := usecase.NewApplyActivityUseCase(activityRepo)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IdentifyUC: identifyUC,
		RecordUC:   recordUC,
		CatalogUC:  catalogUC,
		ActivityUC: activityUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

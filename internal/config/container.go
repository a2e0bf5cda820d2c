package config

import (
	"context"
	"fmt"

	"print-ticket-server/internal/domain"
	"print-ticket-server/internal/repository"
	"print-ticket-server/internal/service"
	"print-ticket-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config        domain.Config
	Logger        domain.Logger
	JobRepository domain.JobRepository
	Sequencer     domain.TicketSequencer
	Storage       domain.Storage
	AuthVerifier  domain.AuthVerifier
	JobService    domain.JobService
}

// NewContainer creates a new dependency injection container.
// With POSTGRES_DSN set the job store and sequencer live in Postgres;
// otherwise both persist under DATA_PATH on the local disk.
func NewContainer(ctx context.Context) (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	var (
		jobRepo   domain.JobRepository
		sequencer domain.TicketSequencer
	)
	if dsn := config.GetPostgresDSN(); dsn != "" {
		pg, err := repository.NewPostgresJobRepository(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect job store: %w", err)
		}
		jobRepo = pg
		sequencer = pg.Sequencer()
		appLogger.Info("Using Postgres job store")
	} else {
		fileRepo, err := repository.NewFileJobRepository(config.GetDataPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open job store: %w", err)
		}
		fileSeq, err := repository.NewFileTicketSequencer(config.GetDataPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open ticket sequencer: %w", err)
		}
		jobRepo = fileRepo
		sequencer = fileSeq
		appLogger.Info("Using file-backed job store", "path", config.GetDataPath())
	}

	storage, err := service.NewLocalStorage(config.GetStoragePath())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare storage root: %w", err)
	}

	authVerifier, err := service.NewAuthVerifier(config, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth verifier: %w", err)
	}

	selector := service.NewStrategySelector(config)

	jobService := service.NewJobService(
		jobRepo,
		sequencer,
		storage,
		selector,
		config.GetUnitRate(),
		appLogger,
	)

	return &Container{
		Config:        config,
		Logger:        appLogger,
		JobRepository: jobRepo,
		Sequencer:     sequencer,
		Storage:       storage,
		AuthVerifier:  authVerifier,
		JobService:    jobService,
	}, nil
}

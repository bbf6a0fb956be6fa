package bootstrap

import (
	"fmt"

	"golang-dex-token-analyzer/internal/analysis"
	"golang-dex-token-analyzer/internal/config"
	"golang-dex-token-analyzer/internal/repository"
	"golang-dex-token-analyzer/internal/service"
	"golang-dex-token-analyzer/pkg/logger"
	"golang-dex-token-analyzer/pkg/postgres"
	"golang-dex-token-analyzer/pkg/redis"
	"golang-dex-token-analyzer/pkg/telegram"
)

// App holds the dependencies shared by the binaries.
type App struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *postgres.DB
	Redis  *redis.Client

	TokenRepo repository.TokenRepository
	DexRepo   repository.DexScreenerRepository

	Updater     service.TokenUpdaterService
	Query       service.TokenQueryService
	Maintenance service.MaintenanceService
	Tasks       service.TokenTaskService
}

// Options selects the optional parts of the graph.
type Options struct {
	WithRedis bool
}

// New loads the configuration and wires the repositories and services.
// The caller must call Close.
func New(configPath string, opts Options) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	appLogger = appLogger.With(logger.StringField("app", cfg.App.Name), logger.StringField("env", cfg.App.Env))

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    appLogger,
		DB:        db,
		TokenRepo: repository.NewTokenRepository(db.DB),
		DexRepo:   repository.NewDexScreenerRepository(cfg, appLogger.Named("dexscreener")),
	}

	if opts.WithRedis {
		a.Redis, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
	}

	notifier := a.newNotifier()
	reconciler := service.NewReconciler(a.TokenRepo, analysis.NewScorer(cfg.Analysis), appLogger.Named("reconciler"))
	a.Updater = service.NewTokenUpdaterService(cfg, a.DexRepo, a.TokenRepo, reconciler, notifier, appLogger.Named("updater"))
	a.Query = service.NewTokenQueryService(a.TokenRepo, a.Updater, appLogger.Named("query"))
	a.Maintenance = service.NewMaintenanceService(a.TokenRepo, appLogger.Named("maintenance"))
	if a.Redis != nil {
		a.Tasks = service.NewTokenTaskService(cfg, a.Redis.Client, a.Updater, appLogger.Named("tasks"))
	}

	return a, nil
}

// newNotifier returns nil when Telegram is disabled or cannot be reached; updates still run without it.
func (a *App) newNotifier() telegram.Notifier {
	if !a.Config.Telegram.Enabled {
		return nil
	}
	notifier, err := telegram.NewClient(a.Config.Telegram.BotToken, a.Config.Telegram.ChatID)
	if err != nil {
		a.Logger.Error("Failed to initialize Telegram notifier", logger.ErrorField(err))
		return nil
	}
	return notifier
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.Logger.Sync()
}

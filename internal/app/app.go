package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/lunchpool/pickem/external/accounts"
	"github.com/lunchpool/pickem/external/espn"
	"github.com/lunchpool/pickem/external/jobqueue"
	"github.com/lunchpool/pickem/internal/config"
	"github.com/lunchpool/pickem/internal/domain/game"
	"github.com/lunchpool/pickem/internal/domain/pick"
	"github.com/lunchpool/pickem/internal/domain/season"
	"github.com/lunchpool/pickem/internal/domain/team"
	"github.com/lunchpool/pickem/internal/domain/tiebreaker"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/domain/week"
	"github.com/lunchpool/pickem/internal/infrastructure/nflstatic"
	cacherepo "github.com/lunchpool/pickem/internal/infrastructure/repository/cache"
	"github.com/lunchpool/pickem/internal/infrastructure/repository/memory"
	"github.com/lunchpool/pickem/internal/infrastructure/repository/postgres"
	"github.com/lunchpool/pickem/internal/interfaces/httpapi"
	basecache "github.com/lunchpool/pickem/internal/platform/cache"
	"github.com/lunchpool/pickem/internal/platform/id"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/platform/resilience"
	"github.com/lunchpool/pickem/internal/usecase"
)

// Application bundles the built HTTP server with the background sync loops
// and the resources both hold.
type Application struct {
	Config       config.Config
	Logger       *logging.Logger
	Server       *http.Server
	Orchestrator *usecase.JobOrchestratorService

	db *sqlx.DB
}

type repositories struct {
	teams       team.Repository
	seasons     season.Repository
	weeks       week.Repository
	games       game.Repository
	picks       pick.Repository
	tiebreakers tiebreaker.Repository
	users       user.Repository
}

// Build wires repositories, providers, services and the router into a ready
// http.Server. DB_URL empty selects the in-memory repositories and seeds the
// roster so a fresh checkout serves real teams without any infrastructure.
func Build(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	scheduleProvider, liveProvider := buildProviders(cfg, logger)

	outcomeService := usecase.NewOutcomeService(
		repos.seasons,
		repos.weeks,
		repos.games,
		repos.picks,
		repos.tiebreakers,
		repos.users,
	)
	pickService := usecase.NewPickService(repos.weeks, repos.games, repos.picks, repos.tiebreakers, logger)
	teamService := usecase.NewTeamService(repos.teams)
	userService := usecase.NewUserService(repos.users, id.NewRandomGenerator())
	importService := usecase.NewScheduleImportService(
		scheduleProvider,
		repos.teams,
		repos.seasons,
		repos.weeks,
		repos.games,
		logger,
	)
	liveScoreService := usecase.NewLiveScoreService(
		liveProvider,
		repos.games,
		repos.seasons,
		repos.weeks,
		importService,
		usecase.LiveScoreConfig{
			CacheTTL:      cfg.LiveCacheTTL,
			NegativeTTL:   cfg.LiveNegativeTTL,
			LookBack:      cfg.LiveLookBack,
			LookAhead:     cfg.LiveLookAhead,
			MaxConcurrent: cfg.LiveMaxConcurrent,
		},
		logger,
	)

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	orchestrator := usecase.NewJobOrchestratorService(
		outcomeService,
		repos.seasons,
		repos.games,
		importService,
		liveScoreService,
		queue,
		usecase.JobOrchestratorConfig{
			ScheduleInterval: cfg.JobScheduleInterval,
			LiveInterval:     cfg.JobLiveInterval,
			PreKickoffLead:   cfg.JobPreKickoffLead,
			IdleInterval:     cfg.JobIdleInterval,
		},
		logger,
	)

	var verifier httpapi.TokenVerifier
	if cfg.AccountsEnabled {
		verifier = accounts.NewClient(accounts.ClientConfig{
			BaseURL:         cfg.AccountsBaseURL,
			IntrospectPath:  cfg.AccountsIntrospectPath,
			AdminKey:        cfg.AccountsAdminKey,
			Timeout:         cfg.AccountsTimeout,
			CacheTTL:        cfg.AccountsCacheTTL,
			CacheMaxEntries: cfg.AccountsCacheMaxEntries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AccountsCircuitEnabled,
				FailureThreshold: cfg.AccountsCircuitFailureCount,
				OpenTimeout:      cfg.AccountsCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AccountsCircuitHalfOpenMax,
			},
			Logger: logger,
		}, repos.users)
	} else {
		logger.Info("accounts verifier disabled", "reason", "ACCOUNTS_ENABLED=false")
	}

	handler := httpapi.NewHandler(
		outcomeService,
		pickService,
		teamService,
		userService,
		importService,
		liveScoreService,
		orchestrator,
		logger,
	)
	router := httpapi.NewRouter(
		handler,
		verifier,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &Application{
		Config:       cfg,
		Logger:       logger,
		Server:       server,
		Orchestrator: orchestrator,
		db:           db,
	}

	if db == nil {
		app.seedRoster(importService)
	}

	return app, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
		return repositories{
			teams:       memory.NewTeamRepository(),
			seasons:     memory.NewSeasonRepository(),
			weeks:       memory.NewWeekRepository(),
			games:       memory.NewGameRepository(),
			picks:       memory.NewPickRepository(),
			tiebreakers: memory.NewTieBreakerRepository(),
			users:       memory.NewUserRepository(),
		}, nil, nil
	}

	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	repos := repositories{
		teams:       postgres.NewTeamRepository(db),
		seasons:     postgres.NewSeasonRepository(db),
		weeks:       postgres.NewWeekRepository(db),
		games:       postgres.NewGameRepository(db),
		picks:       postgres.NewPickRepository(db),
		tiebreakers: postgres.NewTieBreakerRepository(db),
		users:       postgres.NewUserRepository(db),
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, store)
		repos.seasons = cacherepo.NewSeasonRepository(repos.seasons, store)
		repos.weeks = cacherepo.NewWeekRepository(repos.weeks, store)
		logger.Info("repository cache enabled", "ttl", cfg.CacheTTL)
	}

	logger.Info("using postgres repositories", "database", dbNameFromURL(cfg.DBURL))

	return repos, db, nil
}

func buildProviders(cfg config.Config, logger *logging.Logger) (usecase.ScheduleProvider, usecase.LiveProvider) {
	local := nflstatic.NewProvider()
	switch cfg.NFLProvider {
	case config.ProviderESPN:
	case config.ProviderLocal:
		logger.Info("nfl provider configured", "provider", local.Name())
		return local, local
	default:
		// An unrecognized key falls closed to the offline roster rather than
		// pointing an unattended process at a live upstream.
		logger.Warn("unknown NFL_PROVIDER, falling back to the static provider",
			"requested", cfg.NFLProvider, "provider", local.Name())
		return local, local
	}

	client := espn.NewClient(espn.ClientConfig{
		BaseURL:    cfg.NFLAPIBase,
		Timeout:    cfg.NFLHTTPTimeout,
		MaxRetries: cfg.NFLMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NFLCircuitEnabled,
			FailureThreshold: cfg.NFLCircuitFailureCount,
			OpenTimeout:      cfg.NFLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NFLCircuitHalfOpenMaxReq,
		},
		TeamFallback: local,
	})
	logger.Info("nfl provider configured", "provider", client.Name())

	return client, client
}

// seedRoster fills the empty in-memory team table so week imports and the
// teams endpoint work immediately. Provider errors degrade to the static
// roster inside the client, so a failure here is worth only a warning.
func (a *Application) seedRoster(importService *usecase.ScheduleImportService) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := importService.UpsertTeams(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "roster seed failed", "error", err)
		return
	}
	a.Logger.InfoContext(ctx, "roster seeded", "inserted", result.Inserted, "updated", result.Updated)
}

// StartBackgroundJobs launches the recurring sync work. With QStash enabled
// the queue drives itself after Bootstrap; otherwise in-process tickers call
// the orchestrator directly until ctx is cancelled.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	if a.Orchestrator == nil {
		return
	}

	if a.Config.QStashEnabled {
		result, err := a.Orchestrator.Bootstrap(ctx)
		if err != nil {
			a.Logger.ErrorContext(ctx, "bootstrap job queue", "error", err)
			return
		}
		a.Logger.InfoContext(ctx, "job queue bootstrapped", "queued", result.QueuedCount)
		return
	}

	a.Logger.InfoContext(ctx, "starting in-process sync tickers",
		"live_interval", a.Config.JobLiveInterval,
		"schedule_interval", a.Config.JobScheduleInterval,
	)
	go a.runTicker(ctx, "sync-live", a.Config.JobLiveInterval, func(ctx context.Context) error {
		_, err := a.Orchestrator.RunLiveSync(ctx, usecase.JobSyncInput{})
		return err
	})
	go a.runTicker(ctx, "sync-schedule", a.Config.JobScheduleInterval, func(ctx context.Context) error {
		_, err := a.Orchestrator.RunScheduleSync(ctx, usecase.JobSyncInput{})
		return err
	})
}

func (a *Application) runTicker(ctx context.Context, name string, interval time.Duration, run func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, interval)
			err := run(runCtx)
			cancel()
			if err != nil {
				a.Logger.WarnContext(ctx, "background sync failed", "job", name, "error", err)
			}
		}
	}
}

// Close releases held resources. Safe to call in memory mode.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

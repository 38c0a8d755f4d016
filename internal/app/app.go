package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/astatracker/fantacalcio-api/internal/config"
	"github.com/astatracker/fantacalcio-api/internal/domain/catalog"
	"github.com/astatracker/fantacalcio-api/internal/domain/formation"
	"github.com/astatracker/fantacalcio-api/internal/domain/league"
	cacherepo "github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/cache"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/repository/postgres"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/storage"
	"github.com/astatracker/fantacalcio-api/internal/infrastructure/token"
	"github.com/astatracker/fantacalcio-api/internal/interfaces/httpapi"
	basecache "github.com/astatracker/fantacalcio-api/internal/platform/cache"
	idgen "github.com/astatracker/fantacalcio-api/internal/platform/id"
	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
	"github.com/astatracker/fantacalcio-api/internal/platform/resilience"
	"github.com/astatracker/fantacalcio-api/internal/usecase"
)

// NewHTTPServer wires the whole service: database pool, repositories, cache
// decorators, image store, services, and the HTTP router. The returned
// cleanup closes the pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := db.Close

	userRepo := postgres.NewUserRepository(db)
	catalogRepo := usecaseCatalogRepo(cfg, db)
	leagueRepo := usecaseLeagueRepo(cfg, db)
	rosterRepo := postgres.NewRosterRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	formationRepo := postgres.NewFormationRepository(db)

	var images formation.ImageStore
	if cfg.ImageStoreEnabled {
		store, err := storage.NewS3ImageStore(ctx, storage.S3Config{
			Bucket:          cfg.ImageStoreBucket,
			Region:          cfg.ImageStoreRegion,
			Endpoint:        cfg.ImageStoreEndpoint,
			AccessKeyID:     cfg.ImageStoreAccessKeyID,
			SecretAccessKey: cfg.ImageStoreSecretAccessKey,
			ForcePathStyle:  cfg.ImageStoreForcePathStyle,
			Timeout:         cfg.ImageStoreTimeout,
			Logger:          logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ImageStoreCircuitEnabled,
				FailureThreshold: cfg.ImageStoreCircuitFailures,
				OpenTimeout:      cfg.ImageStoreCircuitOpenFor,
				HalfOpenMaxReq:   cfg.ImageStoreCircuitHalfOpen,
			},
		})
		if err != nil {
			_ = cleanup()
			return nil, nil, fmt.Errorf("build image store: %w", err)
		}
		images = store
	}

	jwtService, err := token.NewJWTService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("build token service: %w", err)
	}

	ids := idgen.NewRandomGenerator()

	authSvc := usecase.NewAuthService(userRepo, jwtService, jwtService, ids, cfg.BcryptCost)
	formationSvc := usecase.NewFormationService(formationRepo, rosterRepo, images, ids)
	leagueSvc := usecase.NewLeagueService(leagueRepo, userRepo, formationSvc, ids)
	rosterSvc := usecase.NewRosterService(rosterRepo)
	importSvc := usecase.NewImportService(catalogRepo, rosterRepo, ids, logger, cfg.ImportBatchSize, cfg.ImportMaxWorkers)
	participantSvc := usecase.NewParticipantService(participantRepo, rosterRepo, ids)

	handler := httpapi.NewHandler(authSvc, leagueSvc, rosterSvc, importSvc, participantSvc, formationSvc, logger)
	router := httpapi.NewRouter(handler, authSvc, leagueSvc, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func connectDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return db, nil
}

func usecaseCatalogRepo(cfg config.Config, db *sqlx.DB) catalog.Repository {
	repo := postgres.NewCatalogRepository(db)
	if !cfg.CacheEnabled {
		return repo
	}
	return cacherepo.NewCatalogRepository(repo, basecache.NewStore(cfg.CacheTTL))
}

func usecaseLeagueRepo(cfg config.Config, db *sqlx.DB) league.Repository {
	repo := postgres.NewLeagueRepository(db)
	if !cfg.CacheEnabled {
		return repo
	}
	return cacherepo.NewLeagueRepository(repo, basecache.NewStore(cfg.CacheTTL))
}

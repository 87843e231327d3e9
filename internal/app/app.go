package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/match-analysis/internal/config"
	"github.com/riskibarqy/match-analysis/internal/domain/club"
	"github.com/riskibarqy/match-analysis/internal/infrastructure/account/firebase"
	clubcache "github.com/riskibarqy/match-analysis/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/match-analysis/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-analysis/internal/infrastructure/secrets"
	"github.com/riskibarqy/match-analysis/internal/infrastructure/storage"
	"github.com/riskibarqy/match-analysis/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/match-analysis/internal/platform/cache"
	"github.com/riskibarqy/match-analysis/internal/platform/id"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/riskibarqy/match-analysis/internal/platform/metrics"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

// App holds the HTTP server and the resources it must release on shutdown.
type App struct {
	Server *http.Server
	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	dbURL, err := secrets.ResolveDatabaseURL(ctx, cfg.DBURL, cfg.DBSecretName, cfg.AWSRegion, cfg.DBSSLMode)
	if err != nil {
		return nil, fmt.Errorf("resolve database url: %w", err)
	}
	if cfg.DBSecretName != "" {
		logger.Info("database url resolved from secret", "secret", cfg.DBSecretName, "region", cfg.AWSRegion)
	}

	db, err := openDatabase(ctx, cfg, dbURL)
	if err != nil {
		return nil, err
	}

	router, err := buildRouter(ctx, cfg, db, logger)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		db:     db,
		logger: logger,
	}, nil
}

func buildRouter(ctx context.Context, cfg config.Config, db *sqlx.DB, logger *logging.Logger) (http.Handler, error) {
	store := postgres.NewStore(db)
	ids := id.NewUUIDGenerator()

	var clubs club.Repository = store.Clubs()
	if cfg.ClubCacheEnabled {
		clubs = clubcache.NewClubRepository(
			clubs,
			basecache.NewStore[club.Club](cfg.ClubCacheTTL),
			basecache.NewStore[[]club.Club](cfg.ClubCacheTTL),
		)
	}

	var uploader usecase.ImageUploader
	if cfg.StorageEnabled {
		s3Uploader, err := storage.NewS3Uploader(ctx, storage.Config{
			Bucket:          cfg.StorageBucket,
			Region:          cfg.StorageRegion,
			Endpoint:        cfg.StorageEndpoint,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			UsePathStyle:    cfg.StorageUsePathStyle,
			Timeout:         cfg.StorageTimeout,
			Circuit:         cfg.StorageCircuit,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build lineup image storage: %w", err)
		}
		uploader = s3Uploader
	} else {
		logger.Info("lineup image storage disabled", "reason", "STORAGE_ENABLED=false")
	}

	if cfg.FirebaseProjectID == "" {
		logger.Warn("FIREBASE_PROJECT_ID is empty, every bearer token will be rejected")
	}
	verifier := firebase.NewVerifier(firebase.Config{
		ProjectID:    cfg.FirebaseProjectID,
		CertsURL:     cfg.FirebaseCertsURL,
		Timeout:      cfg.FirebaseTimeout,
		KeysCacheTTL: cfg.FirebaseKeysCacheTTL,
		Circuit:      cfg.FirebaseCircuit,
	}, &http.Client{Timeout: cfg.FirebaseTimeout}, logger)

	handler := httpapi.NewHandler(
		usecase.NewMatchService(
			store.Users(),
			store.Matches(),
			store,
			ids,
			uploader,
			usecase.MatchListLimits{DefaultLimit: cfg.MatchListDefaultLimit, MaxLimit: cfg.MatchListMaxLimit},
			logger,
		),
		usecase.NewUserService(store.Users()),
		usecase.NewClubService(clubs, ids),
		usecase.NewPlayerProfileService(store.PlayerProfiles()),
		store,
		logger,
	)

	opts := httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		MetricsEnabled:     cfg.MetricsEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		RequestTimeout:     cfg.RequestTimeout,
	}
	if cfg.MetricsEnabled {
		opts.MetricsGatherer = newMetricsRegistry()
	}

	return httpapi.NewRouter(handler, verifier, logger, opts), nil
}

func newMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)
	return registry
}

// Close releases the database pool. Call it after the server has shut down.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	a.logger.Info("database pool closed")
	return nil
}

package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	appMigrations "github.com/yigit/registrar/internal/app/migrations"
	appRepos "github.com/yigit/registrar/internal/app/repositories"
	appServices "github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/config"
	"github.com/yigit/registrar/internal/db"
	pkgAuth "github.com/yigit/registrar/internal/pkg/auth"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/logger"
	"github.com/yigit/registrar/internal/pkg/metrics"
)

const defaultSessionExpiration = 12 * time.Hour

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   zerolog.Logger
	DB       *db.PostgresDB
	Repos    *appRepos.Repositories
	Services *appServices.Services
	Migrator *appMigrations.Migrator
	Metrics  *metrics.Metrics
	// Registry holds the counters when metrics are enabled.
	Registry *prometheus.Registry
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Nop(), err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Debug().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection pool.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Debug().Str("host", cfg.Database.Host).Str("dbname", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	return database, nil
}

// ServiceOptions translates the registration section of the config into service options.
func ServiceOptions(cfg *config.Config, lgr zerolog.Logger, m *metrics.Metrics) appServices.Options {
	return appServices.Options{
		StoreTimeout:     helpers.ParseDuration(cfg.Registration.StoreTimeout, appServices.DefaultStoreTimeout),
		AdmissionTimeout: helpers.ParseDuration(cfg.Registration.AdmissionTimeout, appServices.DefaultAdmissionTimeout),
		CycleDetection:   cfg.Registration.CycleDetection,
		Logger:           lgr.With().Str("component", "services").Logger(),
		Metrics:          m,
	}
}

// NewTokenIssuer builds the session token service from the session config.
func NewTokenIssuer(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.Session.Secret,
		Expiration:  helpers.ParseDuration(cfg.Session.Expiration, defaultSessionExpiration),
		TokenIssuer: cfg.Session.Issuer,
	})
}

// BuildDependencies loads config, connects, and wires repositories into services.
// Overrides are applied to the loaded config before anything is built.
func BuildDependencies(ctx context.Context, configPath string, overrides ...func(*config.Config)) (*Dependencies, error) {
	cfg, lgr, err := LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	database, err := SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	deps := &Dependencies{
		Config:   cfg,
		Logger:   lgr,
		DB:       database,
		Repos:    appRepos.NewRepositories(database.Pool),
		Migrator: appMigrations.NewMigrator(database.Pool, logger.Component("migrations")),
	}

	if cfg.Metrics.Enabled {
		deps.Registry = prometheus.NewRegistry()
		deps.Metrics = metrics.New(deps.Registry)
	}

	deps.Services = appServices.NewServices(
		deps.Repos.Stores(),
		pkgAuth.NewBcryptHasher(0),
		NewTokenIssuer(cfg),
		ServiceOptions(cfg, lgr, deps.Metrics),
	)

	lgr.Debug().Bool("cycleDetection", cfg.Registration.CycleDetection).Bool("metrics", cfg.Metrics.Enabled).Msg("Dependencies built")
	return deps, nil
}

// WriteMetrics dumps the collected counters in the Prometheus text format.
// It writes nothing when metrics are disabled.
func (d *Dependencies) WriteMetrics(w io.Writer) error {
	if d.Registry == nil {
		return nil
	}
	return metrics.WriteText(w, d.Registry)
}

// Close releases the database pool.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}

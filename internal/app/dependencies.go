package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Ramsey-B/verzoeken/internal/repositories/apicredential"
	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/health"
	"github.com/Ramsey-B/verzoeken/pkg/kafka"
	"github.com/Ramsey-B/verzoeken/pkg/mask"
	"github.com/Ramsey-B/verzoeken/pkg/middleware"
	"github.com/Ramsey-B/verzoeken/pkg/redis"
	"github.com/Ramsey-B/verzoeken/pkg/resource"
	"github.com/Ramsey-B/verzoeken/pkg/startup"
	"github.com/Ramsey-B/verzoeken/pkg/tracing"
	"github.com/Ramsey-B/verzoeken/pkg/tracing/exporters"
)

const (
	depTracing     = "tracing"
	depDatabase    = "database"
	depCredentials = "credentials"
	depMask        = "mask"
	depKafka       = "kafka"
	depSchemas     = "schemas"
	depAuth        = "auth"

	MaskBackendMemory = "memory"
	MaskBackendRedis  = "redis"
)

func (a *App) registerDependencies() {
	var shutdownTracing func(context.Context) error

	a.startup.AddDependency(startup.Dependency{
		Name: depTracing,
		StartFunc: func(ctx context.Context) error {
			shutdown, err := tracing.Setup(ctx, tracing.ProviderConfig{
				ServiceName:    a.cfg.AppName,
				ServiceVersion: a.cfg.Version,
				OTLPEnabled:    a.cfg.OTLPEnabled,
				OTLP: exporters.OTLPConfig{
					Endpoint: a.cfg.OTLPEndpoint,
					Protocol: a.cfg.OTLPProtocol,
					Insecure: a.cfg.OTLPInsecure,
					Timeout:  10 * time.Second,
				},
			})
			if err != nil {
				return err
			}
			shutdownTracing = shutdown
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(ctx)
		},
	})

	a.startup.AddDependency(startup.Dependency{
		Name:      depDatabase,
		StartFunc: a.startDatabase,
		StopFunc: func(context.Context) error {
			if a.db == nil {
				return nil
			}
			return a.db.Close()
		},
	})

	a.startup.AddDependency(startup.Dependency{
		Name:      depCredentials,
		Requires:  []string{depDatabase},
		StartFunc: a.ReloadCredentials,
	})

	a.startup.AddDependency(startup.Dependency{
		Name:      depMask,
		StartFunc: a.startMask,
		StopFunc: func(context.Context) error {
			if a.redis == nil {
				return nil
			}
			return a.redis.Close()
		},
	})

	if !a.cfg.NotificationsDisabled {
		a.startup.AddDependency(startup.Dependency{
			Name: depKafka,
			StartFunc: func(context.Context) error {
				a.producer = kafka.NewProducer(kafka.ParseConfig(a.cfg.KafkaBrokers, a.cfg.KafkaNotificationsTopic), a.logger)
				return nil
			},
			StopFunc: func(context.Context) error {
				if a.producer == nil {
					return nil
				}
				return a.producer.Close()
			},
		})
	}

	a.startup.AddDependency(startup.Dependency{
		Name:      depSchemas,
		StartFunc: a.loadSchemas,
	})

	if a.cfg.AuthEnabled {
		a.startup.AddDependency(startup.Dependency{
			Name: depAuth,
			StartFunc: func(ctx context.Context) error {
				verifier, err := middleware.NewOIDCVerifier(ctx, a.cfg.AuthIssuerURL, a.cfg.AuthClientID)
				if err != nil {
					return err
				}
				a.verifier = verifier
				return nil
			},
		})
	}
}

func (a *App) databaseConfig() database.Config {
	return database.Config{
		Driver:          a.cfg.DatabaseDriver,
		Host:            a.cfg.DatabaseHost,
		Port:            a.cfg.DatabasePort,
		User:            a.cfg.DatabaseUserName,
		Password:        a.cfg.DatabasePassword,
		Name:            a.cfg.DatabaseName,
		SSLMode:         a.cfg.DatabaseSSLMode,
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
	}
}

func (a *App) startDatabase(ctx context.Context) error {
	if err := a.OpenDatabase(ctx); err != nil {
		return err
	}
	a.health.Register(depDatabase, a.db)

	if !a.cfg.DatabaseMigrateOnStart {
		return nil
	}
	return a.Migrate(uint(a.cfg.DatabaseMigrationVersion), a.cfg.DatabaseMigrationForce)
}

// OpenDatabase connects the pool without running the rest of startup.
func (a *App) OpenDatabase(ctx context.Context) error {
	db, err := database.Connect(ctx, a.databaseConfig(), a.logger)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

// Database returns the pool opened by OpenDatabase or Run.
func (a *App) Database() database.DB {
	return a.db
}

// Migrate applies the migration folder to the connected database.
func (a *App) Migrate(version uint, force int) error {
	if a.db == nil {
		return fmt.Errorf("database is not connected")
	}
	migrations := database.NewMigrationService(a.logger, &database.MigrationConfig{
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             version,
		Force:               force,
		AutoRollback:        a.cfg.DatabaseMigrationAutoRollback,
	})
	return migrations.MigratePostgres(a.db.DB(), a.cfg.DatabaseName)
}

// ReloadCredentials replaces the credentials used for calls to sibling APIs with the stored ones.
func (a *App) ReloadCredentials(ctx context.Context) error {
	credentials, err := apicredential.NewRepository(a.db, a.logger).List(ctx)
	if err != nil {
		return err
	}
	a.registry.Load(credentials)
	return nil
}

func (a *App) startMask(ctx context.Context) error {
	switch a.cfg.MaskBackend {
	case MaskBackendMemory:
		a.mask = mask.NewMemory()
		return nil
	case MaskBackendRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			Host:     a.cfg.RedisHost,
			Port:     a.cfg.RedisPort,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		}, a.logger)
		if err != nil {
			return err
		}
		a.redis = client
		a.mask = mask.NewRedis(client, a.cfg.MaskKey)
		a.health.Register(MaskBackendRedis, health.PingFunc(client.Ping))
		return nil
	default:
		return fmt.Errorf("unknown mask backend %q", a.cfg.MaskBackend)
	}
}

// loadSchemas fetches the published OpenAPI documents. A location that is not configured leaves
// the shape check of that resource at a plain fetch.
func (a *App) loadSchemas(ctx context.Context) error {
	var err error
	if a.cfg.ZRCAPISpec != "" {
		if a.zrcSchemas, err = resource.LoadSchemas(ctx, a.cfg.ZRCAPISpec, a.http); err != nil {
			return err
		}
	}
	if a.cfg.DRCAPISpec != "" {
		if a.drcSchemas, err = resource.LoadSchemas(ctx, a.cfg.DRCAPISpec, a.http); err != nil {
			return err
		}
	}
	return nil
}

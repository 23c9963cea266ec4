// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/tabtrail/internal/app/system/imagehost"
	"github.com/dalemusser/tabtrail/internal/app/system/indexes"
	"github.com/dalemusser/tabtrail/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB connects to databases or other backends.
//
// WAFFLE calls this after configuration is loaded but before EnsureSchema and
// Startup. The MongoDB client and the image host client built here are stored
// in DBDeps for the rest of the lifecycle.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Configure MongoDB connection pool
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	// Image host client for screenshot uploads. No connection is opened here;
	// each upload is an independent bounded HTTP request.
	uploader := imagehost.New(imagehost.Config{
		APIURL:  appCfg.ImageHostAPIURL,
		APIKey:  appCfg.ImageHostAPIKey,
		Timeout: appCfg.ImageHostTimeout,
	}, logger)
	logger.Info("initialized image host client",
		zap.String("api_url", appCfg.ImageHostAPIURL),
		zap.Duration("timeout", appCfg.ImageHostTimeout),
	)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		ImageHost:     uploader,
	}, nil
}

// EnsureSchema sets up indexes and collection validators.
//
// This runs after ConnectDB succeeds but before Startup and before the HTTP
// handler is built. The context has a timeout based on
// coreCfg.IndexBootTimeout, so long-running work should respect cancellation.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	// Ensure collections exist and attach JSON-Schema validators.
	// This runs first so indexes can be created on existing collections.
	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	// Ensure database indexes for query performance.
	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}

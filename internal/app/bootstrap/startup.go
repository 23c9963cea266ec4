// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	historystore "github.com/dalemusser/tabtrail/internal/app/store/history"
	userstore "github.com/dalemusser/tabtrail/internal/app/store/users"
	"github.com/dalemusser/tabtrail/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Here it starts the background task runner with the scheduled retention
// sweep. The per-capture cleanup handles active users; the sweep prunes
// accounts that stopped capturing.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	users := userstore.New(deps.MongoDatabase)
	history := historystore.New(deps.MongoDatabase)
	taskRunner.Register(tasks.RetentionSweepJob(users, history, appCfg.RetentionSweepInterval, logger))

	taskRunner.Start()
}

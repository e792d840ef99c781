// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	batchesfeature "github.com/dalemusser/learnhub/internal/app/features/batches"
	healthfeature "github.com/dalemusser/learnhub/internal/app/features/health"
	recordingsfeature "github.com/dalemusser/learnhub/internal/app/features/recordings"
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	userstore "github.com/dalemusser/learnhub/internal/app/store/users"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/meetings"
	"github.com/dalemusser/learnhub/internal/app/system/objstore"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"github.com/dalemusser/learnhub/internal/app/system/tasks"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// scheduler holds the background-job scheduler between BuildHandler and
// Shutdown.
var scheduler *tasks.Scheduler

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. LearnHub wires the session
// middleware, rate limiting, and the feature routers for batch
// administration and recording views.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	store, lister, err := buildStorage(appCfg, logger)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		return nil, err
	}

	db := deps.LearnHubMongoDatabase
	batches := batchstore.New(db)
	enrollments := enrollmentstore.New(db)
	courses := coursestore.New(db)
	users := userstore.New(db)
	auditLog := auditlog.New(audit.New(db), logger)

	zoom := meetings.NewZoomClient(meetings.ZoomConfig{
		AccountID:    appCfg.ZoomAccountID,
		ClientID:     appCfg.ZoomClientID,
		ClientSecret: appCfg.ZoomClientSecret,
		APIBase:      appCfg.ZoomAPIBase,
	})
	meet := meetings.NewManager(zoom, appCfg.OperatingTimezone, logger)
	syncer := workers.NewSyncer(batches, meet, logger, nil)

	scheduler = tasks.NewScheduler(logger,
		tasks.CounterReconcileJob(batches, enrollments, logger),
	)
	scheduler.Start()

	r := chi.NewRouter()

	// Global middleware: per-IP rate limiting and session loading. The
	// session only identifies the user; authorization happens per route.
	r.Use(ratelimit.Middleware(ratelimit.New(appCfg.RateLimitPerMinute, time.Minute)))
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.LearnHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Batch administration
	batchesHandler := batchesfeature.NewHandler(batches, enrollments, courses, users, store, meet, auditLog, logger)
	r.Mount("/batches", batchesfeature.Routes(batchesHandler))

	// Correlated recording views and sync triggers
	recordingsHandler := recordingsfeature.NewHandler(batches, users, lister, store, syncer, appCfg.RecordingURLTTL, logger)
	r.Mount("/recordings", recordingsfeature.Routes(recordingsHandler))

	return r, nil
}

// buildStorage constructs the upload/presign store and the prefix
// lister for the configured backend.
func buildStorage(appCfg AppConfig, logger *zap.Logger) (storage.Store, objstore.Lister, error) {
	if appCfg.StorageType == "s3" {
		st, err := storage.NewS3(context.Background(), storage.S3Config{
			Region: appCfg.StorageS3Region,
			Bucket: appCfg.StorageS3Bucket,
		})
		if err != nil {
			return nil, nil, err
		}
		lister, err := objstore.NewS3Lister(context.Background(), appCfg.StorageS3Region, appCfg.StorageS3Bucket)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using s3 storage",
			zap.String("bucket", appCfg.StorageS3Bucket),
			zap.String("region", appCfg.StorageS3Region))
		return st, lister, nil
	}

	st, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.StorageLocalPath,
		BaseURL:  appCfg.StorageLocalURL,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using local storage", zap.String("path", appCfg.StorageLocalPath))
	return st, &objstore.DirLister{Root: appCfg.StorageLocalPath}, nil
}

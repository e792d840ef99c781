// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LearnHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_type, etc.
//   - Environment variables: LEARNHUB_MONGO_URI, LEARNHUB_STORAGE_TYPE, etc.
//   - Command-line flags: --mongo_uri, --storage_type, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "learnhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/videos", Desc: "Local storage path for uploaded recordings"},
	{Name: "storage_local_url", Default: "/files/videos", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},

	// Zoom server-to-server OAuth app
	{Name: "zoom_account_id", Default: "", Desc: "Zoom server-to-server OAuth account id"},
	{Name: "zoom_client_id", Default: "", Desc: "Zoom server-to-server OAuth client id"},
	{Name: "zoom_client_secret", Default: "", Desc: "Zoom server-to-server OAuth client secret"},
	{Name: "zoom_api_base", Default: "", Desc: "Zoom API base URL override (blank uses api.zoom.us)"},

	// Scheduling and playback
	{Name: "operating_timezone", Default: "Asia/Kolkata", Desc: "Wall-clock timezone session times are scheduled in"},
	{Name: "recording_url_ttl", Default: "15m", Desc: "Signed playback URL lifetime (e.g., 15m, 1h)"},
	{Name: "rate_limit_per_minute", Default: 300, Desc: "API requests allowed per client IP per minute"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LEARNHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEARNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionDomain:    appValues.String("session_domain"),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3
		StorageS3Region: appValues.String("storage_s3_region"),
		StorageS3Bucket: appValues.String("storage_s3_bucket"),

		// Zoom
		ZoomAccountID:    appValues.String("zoom_account_id"),
		ZoomClientID:     appValues.String("zoom_client_id"),
		ZoomClientSecret: appValues.String("zoom_client_secret"),
		ZoomAPIBase:      appValues.String("zoom_api_base"),

		// Scheduling and playback
		OperatingTimezone:  appValues.String("operating_timezone"),
		RecordingURLTTL:    appValues.Duration("recording_url_ttl", 15*time.Minute),
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// LearnHub validates the MongoDB URI format and the storage backend
// selection to catch configuration errors before connecting anywhere.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_type 'local' requires storage_local_path")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type 's3' requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}

	// Missing Zoom credentials are not fatal: sessions are still
	// schedulable, every meeting creation just records a failure for the
	// manual retry endpoint.
	if appCfg.ZoomAccountID == "" || appCfg.ZoomClientID == "" || appCfg.ZoomClientSecret == "" {
		logger.Warn("zoom credentials incomplete; meeting creation will fail until configured")
	}

	if _, err := time.LoadLocation(appCfg.OperatingTimezone); err != nil {
		return fmt.Errorf("unknown operating_timezone %q: %w", appCfg.OperatingTimezone, err)
	}

	if appCfg.RecordingURLTTL <= 0 {
		return fmt.Errorf("recording_url_ttl must be positive")
	}
	return nil
}

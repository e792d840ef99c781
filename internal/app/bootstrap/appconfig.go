// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to LearnHub:
// database connection, session cookies, file storage, the Zoom
// account, and scheduling defaults.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/videos")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/videos")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region string // AWS region
	StorageS3Bucket string // S3 bucket name

	// Zoom server-to-server OAuth credentials
	ZoomAccountID    string
	ZoomClientID     string
	ZoomClientSecret string
	ZoomAPIBase      string // override for tests/mocks; blank means the real API

	// OperatingTimezone is the wall-clock timezone session times are
	// scheduled in.
	OperatingTimezone string

	// RecordingURLTTL bounds signed playback link lifetime.
	RecordingURLTTL time.Duration

	// RateLimitPerMinute caps API requests per client IP.
	RateLimitPerMinute int
}

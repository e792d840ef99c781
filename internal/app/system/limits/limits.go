// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON API request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxRecordingUploadSize is the maximum size for manual recording
	// uploads (multipart). Session recordings are large video files.
	MaxRecordingUploadSize = 2 << 30 // 2 GB

	// MaxUploadMemory is how much of a multipart upload is buffered in
	// memory before spilling to disk.
	MaxUploadMemory = 32 << 20 // 32 MB
)

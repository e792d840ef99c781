// internal/app/bootstrap/config_test.go
package bootstrap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:           "mongodb://localhost:27017",
		MongoDatabase:      "learnhub_test",
		SessionKey:         "0123456789abcdef0123456789abcdef",
		StorageType:        "local",
		StorageLocalPath:   "./uploads/videos",
		StorageLocalURL:    "/files/videos",
		OperatingTimezone:  "Asia/Kolkata",
		RecordingURLTTL:    15 * time.Minute,
		RateLimitPerMinute: 300,
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_RejectsBadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "http://not-mongo"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid mongo URI")
	}
}

func TestValidateConfig_RejectsIncompleteS3(t *testing.T) {
	cfg := validAppConfig()
	cfg.StorageType = "s3"
	cfg.StorageS3Region = "us-east-1"
	cfg.StorageS3Bucket = ""
	err := ValidateConfig(nil, cfg, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "storage_s3_bucket") {
		t.Fatalf("expected s3 bucket error, got %v", err)
	}
}

func TestValidateConfig_RejectsUnknownStorageType(t *testing.T) {
	cfg := validAppConfig()
	cfg.StorageType = "ftp"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

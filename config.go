package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	awspkg "catalog-service/pkg/aws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all environment variables for the catalog service.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string

	StoreBackend     string // mongo or dynamodb
	MongoURI         string
	MongoDBName      string
	DDBTableProducts string

	RedisURL string

	UploadBackend  string // disk or s3
	BulkStorageDir string

	AWS                 awspkg.Options
	S3Bucket            string
	S3Prefix            string
	CloudFrontDomain    string
	ImportSNSTopicARN   string
	ImportSQSQueueURL   string
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	CloudWatchNamespace string
	UseSecrets          bool

	AuthEnabled bool
	JWTSecret   string

	UploadPerMinute int
	UploadBurst     int
}

// LoadConfig reads configuration from the environment, loading .env first
// when present. With AWS_USE_SECRETS=true, MONGO_URI and JWT_SECRET are read
// from Secrets Manager and the environment values become fallbacks.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8082"),
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "*")),

		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", "mongo")),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "catalog"),
		DDBTableProducts: getEnv("DDB_TABLE_PRODUCTS", "Products"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		UploadBackend:  strings.ToLower(getEnv("UPLOAD_BACKEND", "disk")),
		BulkStorageDir: getEnv("BULK_STORAGE_DIR", "./data/bulk_imports"),

		AWS: awspkg.Options{
			Region:    getEnv("AWS_REGION", "us-east-1"),
			Endpoint:  os.Getenv("AWS_ENDPOINT"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		S3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		S3Prefix:            getEnv("AWS_S3_PREFIX", "catalog/"),
		CloudFrontDomain:    os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
		ImportSNSTopicARN:   os.Getenv("IMPORT_SNS_TOPIC_ARN"),
		ImportSQSQueueURL:   os.Getenv("IMPORT_SQS_QUEUE_URL"),
		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/catalog/services"),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "Catalog"),
		UseSecrets:          getBool("AWS_USE_SECRETS", false),

		AuthEnabled: getBool("AUTH_ENABLED", false),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		UploadPerMinute: getInt("BULK_UPLOAD_PER_MINUTE", 10),
		UploadBurst:     getInt("BULK_UPLOAD_BURST", 5),
	}

	if cfg.UseSecrets {
		cfg.applySecrets(ctx)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applySecrets(ctx context.Context) {
	awsCfg, err := awspkg.LoadAWSConfig(ctx, c.AWS)
	if err != nil {
		zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		return
	}
	sm := awspkg.NewSecretsClient(awsCfg)

	if v, err := sm.GetSecret(ctx, "catalog/MONGO_URI"); err == nil && v != "" {
		c.MongoURI = v
	}
	if v, err := sm.GetSecret(ctx, "catalog/JWT_SECRET"); err == nil && v != "" {
		c.JWTSecret = v
	}
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case "mongo", "dynamodb":
	default:
		return fmt.Errorf("STORE_BACKEND must be mongo or dynamodb, got %q", c.StoreBackend)
	}
	switch c.UploadBackend {
	case "disk", "s3":
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be disk or s3, got %q", c.UploadBackend)
	}
	if c.UploadBackend == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("AWS_S3_BUCKET is required when UPLOAD_BACKEND=s3")
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED=true")
	}
	return nil
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c *Config) NeedsAWS() bool {
	return c.StoreBackend == "dynamodb" || c.UploadBackend == "s3" || c.ImportSNSTopicARN != "" ||
		c.ImportSQSQueueURL != "" || c.CloudWatchEnabled || c.S3Bucket != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"

	URLStylePath        = "path"
	URLStyleVirtualHost = "virtual-host"
	URLStylePrefix      = "prefix"

	UploadModePresigned = "presigned"
	UploadModeProxy     = "proxy"
)

type StorageConfig struct {
	Driver          string
	Endpoint        string // host[:port], scheme stripped
	UseSSL          bool
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	PublicURL       string // base URL asset references are built from
	URLStyle        string
}

// EndpointURL returns the endpoint with its scheme, as the aws sdk expects it.
func (s StorageConfig) EndpointURL() string {
	if s.UseSSL {
		return "https://" + s.Endpoint
	}
	return "http://" + s.Endpoint
}

type EnvConfig struct {
	Storage StorageConfig
	Upload  struct {
		Mode          string
		TargetTTL     time.Duration
		SigningKey    string
		PublicBaseURL string // where the gateway itself is reachable, used for proxy write targets
		RoutesFile    string
	}
	Delete struct {
		Concurrency int
		Timeout     time.Duration
	}
	JWT struct {
		SecretKey string
		Algorithm string
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
	ExternalService struct {
		AuthorizationServiceURL string
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}
	PrivateKey string

	Environment struct {
		Mode  string
		Group string
	}
	Port string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Object storage
	config.Storage.Driver = strings.ToLower(os.Getenv("STORAGE_DRIVER"))
	if config.Storage.Driver == "" {
		config.Storage.Driver = StorageDriverMinio
	}
	config.Storage.UseSSL = os.Getenv("STORAGE_USE_SSL") == "true"
	config.Storage.Endpoint, config.Storage.UseSSL = splitEndpoint(os.Getenv("STORAGE_ENDPOINT"), config.Storage.UseSSL)
	config.Storage.AccessKeyID = os.Getenv("STORAGE_ACCESS_KEY_ID")
	config.Storage.SecretAccessKey = os.Getenv("STORAGE_SECRET_ACCESS_KEY")
	config.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	config.Storage.Region = os.Getenv("STORAGE_REGION")
	if config.Storage.Region == "" {
		config.Storage.Region = "us-east-1"
	}
	config.Storage.PublicURL = strings.TrimSuffix(os.Getenv("STORAGE_PUBLIC_URL"), "/")
	if config.Storage.PublicURL == "" && config.Storage.Endpoint != "" {
		config.Storage.PublicURL = config.Storage.EndpointURL()
	}
	config.Storage.URLStyle = strings.ToLower(os.Getenv("STORAGE_URL_STYLE"))
	if config.Storage.URLStyle == "" {
		config.Storage.URLStyle = URLStylePath
	}

	// Upload
	config.Upload.Mode = strings.ToLower(os.Getenv("UPLOAD_MODE"))
	if config.Upload.Mode == "" {
		config.Upload.Mode = UploadModePresigned
	}
	config.Upload.TargetTTL = secondsOrDefault("UPLOAD_TARGET_TTL", 10*time.Minute)
	config.Upload.SigningKey = os.Getenv("UPLOAD_SIGNING_KEY")
	config.Upload.PublicBaseURL = strings.TrimSuffix(os.Getenv("UPLOAD_PUBLIC_BASE_URL"), "/")
	if config.Upload.PublicBaseURL == "" {
		config.Upload.PublicBaseURL = "http://localhost:8080"
	}
	config.Upload.RoutesFile = os.Getenv("UPLOAD_ROUTES_FILE")

	// Delete
	config.Delete.Concurrency, _ = strconv.Atoi(os.Getenv("DELETE_CONCURRENCY"))
	if config.Delete.Concurrency <= 0 {
		config.Delete.Concurrency = 8
	}
	config.Delete.Timeout = secondsOrDefault("DELETE_TIMEOUT", 30*time.Second)

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	// RabbitMQ is optional; an empty host disables event publishing
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}

	config.PrivateKey = os.Getenv("PRIVATE_KEY")
	config.ExternalService.AuthorizationServiceURL = strings.TrimSuffix(os.Getenv("AUTHORIZATION_SERVICE_URL"), "/")

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-media-gateway"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	return &config
}

// splitEndpoint accepts both "host:port" and "scheme://host:port".
// An explicit scheme overrides STORAGE_USE_SSL.
func splitEndpoint(raw string, useSSL bool) (string, bool) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if !strings.Contains(raw, "://") {
		return raw, useSSL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, useSSL
	}
	return u.Host, u.Scheme == "https"
}

func secondsOrDefault(key string, def time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	seconds, err := strconv.Atoi(val)
	if err != nil || seconds <= 0 {
		return def
	}
	return time.Duration(seconds) * time.Second
}

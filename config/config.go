package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	EnvConfig *EnvConfig
}

// LoadEnvFile loads ENV_FILE (or .env) into the process environment when present.
func LoadEnvFile() {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}
}

func NewConfig() *Config {
	return &Config{
		EnvConfig: LoadEnvConfig(),
	}
}

// Validate reports configuration that would make the gateway unusable.
func (c *Config) Validate() error {
	env := c.EnvConfig

	switch env.Storage.Driver {
	case StorageDriverMinio, StorageDriverS3:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", env.Storage.Driver)
	}
	if env.Storage.Endpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT is not configured")
	}
	if env.Storage.AccessKeyID == "" || env.Storage.SecretAccessKey == "" {
		return fmt.Errorf("storage credentials are not configured")
	}
	if env.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is not configured")
	}

	switch env.Storage.URLStyle {
	case URLStylePath, URLStyleVirtualHost, URLStylePrefix:
	default:
		return fmt.Errorf("unsupported STORAGE_URL_STYLE %q", env.Storage.URLStyle)
	}

	switch env.Upload.Mode {
	case UploadModePresigned:
	case UploadModeProxy:
		if env.Upload.SigningKey == "" {
			return fmt.Errorf("UPLOAD_SIGNING_KEY is required in proxy upload mode")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_MODE %q", env.Upload.Mode)
	}

	if env.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is not configured")
	}

	return nil
}

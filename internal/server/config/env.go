package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvFileVar names an alternative .env file.
const EnvFileVar = "DREAMTELLER_ENV_FILE"

// Environment variables read by parseEnv.
const (
	EnvAddr             = "DREAMTELLER_ADDR"
	EnvDatabaseDSN      = "DREAMTELLER_DATABASE_DSN"
	EnvSecretKey        = "DREAMTELLER_SECRET_KEY"
	EnvAccessTokenTTL   = "DREAMTELLER_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL  = "DREAMTELLER_REFRESH_TOKEN_TTL"
	EnvInterpretDelay   = "DREAMTELLER_INTERPRET_DELAY"
	EnvInterpretWorkers = "DREAMTELLER_INTERPRET_WORKERS"
	EnvS3User           = "DREAMTELLER_S3_USER"
	EnvS3Password       = "DREAMTELLER_S3_PASSWORD"
	EnvS3Bucket         = "DREAMTELLER_S3_BUCKET"
	EnvS3Region         = "DREAMTELLER_S3_REGION"
	EnvS3Endpoint       = "DREAMTELLER_S3_ENDPOINT"
	EnvLogLevel         = "DREAMTELLER_LOG_LEVEL"
)

// parseEnv loads .env (or $DREAMTELLER_ENV_FILE) without overriding
// variables that are already set, then overlays every DREAMTELLER_*
// variable that is present. A missing .env file is fine; a malformed one or
// a malformed value panics.
func parseEnv(config *Config) {
	file := os.Getenv(EnvFileVar)
	if file == "" {
		file = ".env"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddr, EnvAddr)
	envString(&config.DatabaseDSN, EnvDatabaseDSN)
	envString(&config.SecretKey, EnvSecretKey)
	envDuration(&config.AccessTokenValidityDuration, EnvAccessTokenTTL)
	envDuration(&config.RefreshTokenValidityDuration, EnvRefreshTokenTTL)
	envDuration(&config.InterpretDelay, EnvInterpretDelay)
	if v, ok := os.LookupEnv(EnvInterpretWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.InterpretWorkers = n
	}
	envString(&config.S3RootUser, EnvS3User)
	envString(&config.S3RootPassword, EnvS3Password)
	envString(&config.S3Bucket, EnvS3Bucket)
	envString(&config.S3Region, EnvS3Region)
	envString(&config.S3BaseEndpoint, EnvS3Endpoint)
	envString(&config.LogLevel, EnvLogLevel)
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "REPOBOARD_"

// loadDotEnv reads a .env file from the working directory, if any, without
// overriding variables that are already set, and returns a lookup function
// over the process environment.
func loadDotEnv() func(string) (string, bool) {
	_ = godotenv.Load()
	return os.LookupEnv
}

// parseEnv overlays REPOBOARD_* variables onto config.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"GRPC_ADDRESS":     &config.EndpointAddrGRPC,
		"METRICS_ADDRESS":  &config.MetricsAddr,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SECRET_KEY":       &config.SecretKey,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_BUCKET":        &config.S3Bucket,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"GITHUB_API_URL":   &config.GitHubAPIURL,
		"GITHUB_TOKEN":     &config.GitHubToken,
		"LOG_LEVEL":        &config.LogLevel,
		"LOG_FORMAT":       &config.LogFormat,
		"LOG_FILE":         &config.LogFile,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY": &config.RefreshTokenValidityDuration,
		"IMAGE_URL_TTL":          &config.ImageURLTTL,
		"GITHUB_CACHE_TTL":       &config.GitHubCacheTTL,
	}
	for name, dst := range durations {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"GITHUB_CACHE_SIZE":       &config.GitHubCacheSize,
		"GUESTBOOK_COMMENT_LIMIT": &config.GuestbookCommentLimit,
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup(envPrefix + "MAX_IMAGE_SIZE"); ok {
		n, err := parseSize(v)
		if err != nil {
			return err
		}
		config.MaxImageSize = n
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/repoboard/internal/timex"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for decoding config files. Durations accept
// "30s" or integer nanoseconds, sizes accept "10MB". Absent keys keep the
// value already in Config.
type FileConfig struct {
	EndpointAddrGRPC             *string         `yaml:"endpoint_addr_grpc"`
	MetricsAddr                  *string         `yaml:"metrics_addr"`
	DatabaseDSN                  *string         `yaml:"database_dsn"`
	SecretKey                    *string         `yaml:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `yaml:"refresh_token_validity_duration"`
	S3RootUser                   *string         `yaml:"s3_root_user"`
	S3RootPassword               *string         `yaml:"s3_root_password"`
	S3Bucket                     *string         `yaml:"s3_bucket"`
	S3Region                     *string         `yaml:"s3_region"`
	S3BaseEndpoint               *string         `yaml:"s3_base_endpoint"`
	ImageURLTTL                  *timex.Duration `yaml:"image_url_ttl"`
	MaxImageSize                 *string         `yaml:"max_image_size"`
	GitHubAPIURL                 *string         `yaml:"github_api_url"`
	GitHubToken                  *string         `yaml:"github_token"`
	GitHubCacheSize              *int            `yaml:"github_cache_size"`
	GitHubCacheTTL               *timex.Duration `yaml:"github_cache_ttl"`
	GuestbookCommentLimit        *int            `yaml:"guestbook_comment_limit"`
	LogLevel                     *string         `yaml:"log_level"`
	LogFormat                    *string         `yaml:"log_format"`
	LogFile                      *string         `yaml:"log_file"`
}

// parseFile overlays the YAML (or JSON, a YAML subset) file at path onto
// config. An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return c.apply(config)
}

func (c *FileConfig) apply(config *Config) error {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.ImageURLTTL, c.ImageURLTTL)
	setString(&config.GitHubAPIURL, c.GitHubAPIURL)
	setString(&config.GitHubToken, c.GitHubToken)
	setDuration(&config.GitHubCacheTTL, c.GitHubCacheTTL)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogFile, c.LogFile)
	if c.GitHubCacheSize != nil {
		config.GitHubCacheSize = *c.GitHubCacheSize
	}
	if c.GuestbookCommentLimit != nil {
		config.GuestbookCommentLimit = *c.GuestbookCommentLimit
	}
	if c.MaxImageSize != nil {
		n, err := parseSize(*c.MaxImageSize)
		if err != nil {
			return err
		}
		config.MaxImageSize = n
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

// parseSize accepts humanised sizes such as "10MB" or "512KiB".
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int64(n), nil
}

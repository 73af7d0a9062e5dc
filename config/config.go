// Package config loads cache stack configuration from a YAML file selected
// by APP_ENV, with environment variables overriding file values — the same
// two-step env-then-file pattern the teacher's config loader uses, just
// returning errors instead of calling log.Fatalf so a library caller can
// decide how to react to a bad config.
package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	cmdDir    = "cmd"
	configDir = "configs"
)

// Stack is the configuration for one CacheStack: driver endpoints, default
// item options, and the optional ambient collaborators (encryption,
// compression, reporting).
type Stack struct {
	Name string `mapstructure:"name"`

	RedisAddr string `mapstructure:"redis_addr"`
	MySQLDSN  string `mapstructure:"mysql_dsn"`

	L1MaxEntries    int           `mapstructure:"l1_max_entries"`
	L1JanitorPeriod time.Duration `mapstructure:"l1_janitor_period"`

	DefaultTTL                time.Duration `mapstructure:"default_ttl"`
	EarlyExpirationPercentage float64       `mapstructure:"early_expiration_percentage"`
	GraceDuration             time.Duration `mapstructure:"grace_duration"`
	GraceFallbackDuration     time.Duration `mapstructure:"grace_fallback_duration"`
	SoftTimeout               time.Duration `mapstructure:"soft_timeout"`
	HardTimeout               time.Duration `mapstructure:"hard_timeout"`
	LockTimeout               time.Duration `mapstructure:"lock_timeout"`

	CompressionAlgo string `mapstructure:"compression_algo"` // "none", "lz4", "zstd"
	AESKey          string `mapstructure:"aes_key"`
	AESIv           string `mapstructure:"aes_iv"`

	SentryDSN string `mapstructure:"sentry_dsn"`
}

// Load reads the config file named by APP_ENV from the directory
// configDirPath derives from the caller's source path, then overlays any
// matching environment variables.
func Load(cfg *Stack) error {
	return read(cfg, AppEnv(), configDirPath(2))
}

// LoadFrom reads from an explicit directory instead of auto-discovering
// one, useful for tests and non-standard layouts.
func LoadFrom(cfg *Stack, dirPath string) error {
	return read(cfg, AppEnv(), dirPath)
}

func read(cfg any, cfgName string, cfgDirPath string) error {
	v := viper.New()
	v.AutomaticEnv()

	v.SetConfigName(cfgName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfgDirPath)

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "config: read")
	}
	if err := v.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, "config: unmarshal")
	}
	return nil
}

// configDirPath takes the directory of the caller skip frames up the call
// stack, finds its first cmd/ path segment, and returns configs/ joined with
// the segments below it (cmd/<binary> gives configs/<binary>), relative to
// the working directory. Without a cmd/ segment it returns "./".
func configDirPath(skip int) string {
	_, file, _, _ := runtime.Caller(skip)
	dirList := strings.Split(filepath.ToSlash(filepath.Dir(file)), "/")
	dirPath := "./"

	for i, dir := range dirList {
		if dir == cmdDir {
			dirPath = filepath.Join(configDir, filepath.Join(dirList[i+1:]...))
			break
		}
	}
	return dirPath
}

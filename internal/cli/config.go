package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teletha/bee-sub002/pkg/cache"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/httputil"
	"github.com/teletha/bee-sub002/pkg/observability/prom"
)

// Setting keys. Each is a persistent flag, a key of the config file and an
// environment variable: "cache-dir" is read from BEE_CACHE_DIR.
const (
	keyConfig         = "config"
	keyVerbose        = "verbose"
	keyThreads        = "threads"
	keyTimeout        = "timeout"
	keyCacheDir       = "cache-dir"
	keyCacheTTL       = "cache-ttl"
	keyNoCache        = "no-cache"
	keyRefresh        = "refresh"
	keyRedisURL       = "redis-url"
	keyMetricsFile    = "metrics-file"
	keyDescriptorRepo = "descriptor-repositories"
)

// settings is the merged view of flags, environment and config file.
type settings struct {
	Verbose                bool
	Threads                int
	Timeout                time.Duration
	CacheDir               string
	CacheTTL               time.Duration
	NoCache                bool
	Refresh                bool
	RedisURL               string
	MetricsFile            string
	DescriptorRepositories bool
}

func newConfig() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags registers the persistent flags and binds them to the config.
func (c *CLI) bindFlags(root *cobra.Command) {
	fs := root.PersistentFlags()
	fs.String(keyConfig, "", "config file (default $XDG_CONFIG_HOME/bee/config.yaml)")
	fs.BoolP(keyVerbose, "v", false, "enable verbose logging")
	fs.Int(keyThreads, collect.DefaultThreads(), "concurrent resolution tasks")
	fs.Duration(keyTimeout, collect.DefaultTimeout, "give up when the graph is not collected within this time")
	fs.String(keyCacheDir, "", "cache directory (default $XDG_CACHE_HOME/bee)")
	fs.Duration(keyCacheTTL, httputil.DefaultTTL, "lifetime of cached repository files")
	fs.Bool(keyNoCache, false, "disable caching")
	fs.Bool(keyRefresh, false, "ignore cached entries and fetch again")
	fs.String(keyRedisURL, "", "share the cache through Redis (redis://host:port/db)")
	fs.String(keyMetricsFile, "", "write Prometheus metrics to this file on exit")
	fs.Bool(keyDescriptorRepo, false, "search repositories declared in POMs")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = c.config.BindPFlag(f.Name, f)
	})
}

// loadConfigFile reads the config file named by --config, or the default
// one when it exists.
func (c *CLI) loadConfigFile() error {
	path := c.config.GetString(keyConfig)
	if path == "" {
		path = defaultConfigPath()
		if path == "" {
			return nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	c.config.SetConfigFile(path)
	if err := c.config.ReadInConfig(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config file %s", path)
	}
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// defaultConfigPath returns $XDG_CONFIG_HOME/bee/config.yaml.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

func (c *CLI) settings() settings {
	v := c.config
	return settings{
		Verbose:                v.GetBool(keyVerbose),
		Threads:                v.GetInt(keyThreads),
		Timeout:                v.GetDuration(keyTimeout),
		CacheDir:               v.GetString(keyCacheDir),
		CacheTTL:               v.GetDuration(keyCacheTTL),
		NoCache:                v.GetBool(keyNoCache),
		Refresh:                v.GetBool(keyRefresh),
		RedisURL:               v.GetString(keyRedisURL),
		MetricsFile:            v.GetString(keyMetricsFile),
		DescriptorRepositories: v.GetBool(keyDescriptorRepo),
	}
}

// setup runs before every command: it reads the config file, applies the
// log level, attaches the logger to the context and installs metrics.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if err := c.loadConfigFile(); err != nil {
		return err
	}
	s := c.settings()
	level := LogInfo
	if s.Verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	if s.MetricsFile != "" {
		c.metrics = prom.New(prometheus.NewRegistry())
		c.metrics.Install()
	}
	return nil
}

// Finish writes the metrics file when one was requested. It is called once
// the command returned, whether it failed or not.
func (c *CLI) Finish() error {
	path := c.settings().MetricsFile
	if c.metrics == nil || path == "" {
		return nil
	}
	if err := c.metrics.WriteTextfile(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write metrics to %s", path)
	}
	c.Logger.Debug("wrote metrics", "path", path)
	return nil
}

// cacheDir returns the file cache directory: the configured one, or
// $XDG_CACHE_HOME/bee.
func (s settings) cacheDir() (string, error) {
	if s.CacheDir != "" {
		return s.CacheDir, nil
	}
	return cache.DefaultDir()
}

// openCache opens the configured cache backend.
func (c *CLI) openCache(cmd *cobra.Command, s settings) (cache.Cache, error) {
	switch {
	case s.NoCache:
		return cache.NewNullCache(), nil
	case s.RedisURL != "":
		rc, err := cache.NewRedisCache(cmd.Context(), s.RedisURL, appName+":")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis")
		}
		return rc, nil
	}
	dir, err := s.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open cache")
	}
	return fc, nil
}

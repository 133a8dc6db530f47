package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, database connection,
// crawler behavior, and graceful shutdown.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"sitecheck" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Crawler contains the page discovery and checking settings
	Crawler struct {
		// Timeout bounds each individual page request
		Timeout time.Duration `env:"CRAWLER_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// RequestDelay is the pause enforced between consecutive page checks
		RequestDelay time.Duration `env:"CRAWLER_REQUEST_DELAY" env-default:"500ms" yaml:"requestDelay"`
		// LocaleFilter restricts sitemap URLs to the base URL's locale segment
		LocaleFilter bool `env:"CRAWLER_LOCALE_FILTER" env-default:"true" yaml:"localeFilter"`
		// Normalization selects the URL folding policy for deduplication ("exact" or "fold")
		Normalization string `env:"CRAWLER_NORMALIZATION" env-default:"exact" yaml:"normalization"`
		// MaxSitemapDepth caps sitemap index recursion
		MaxSitemapDepth int `env:"CRAWLER_MAX_SITEMAP_DEPTH" env-default:"5" yaml:"maxSitemapDepth"`
		// Workers is the number of concurrent page checkers within one crawl (1 = sequential)
		Workers int `env:"CRAWLER_WORKERS" env-default:"1" yaml:"workers"`
		// HeadPrecheck tries a HEAD request before falling back to GET
		HeadPrecheck bool `env:"CRAWLER_HEAD_PRECHECK" env-default:"false" yaml:"headPrecheck"`
		// UserAgent overrides the default browser-like user agent string
		UserAgent string `env:"CRAWLER_USER_AGENT" env-default:"" yaml:"userAgent"`
	} `yaml:"crawler"`

	// SiteChecker contains scheduling settings for background crawl jobs
	SiteChecker struct {
		// MaxConcurrentCrawls limits how many sites are crawled simultaneously
		MaxConcurrentCrawls int `env:"SITECHECKER_MAX_CONCURRENT_CRAWLS" env-default:"2" yaml:"maxConcurrentCrawls"`
		// MaxAttempts is the maximum number of attempts the background worker makes per crawl job
		MaxAttempts int `env:"SITECHECKER_MAX_ATTEMPTS" env-default:"3" yaml:"maxAttempts"`
		// UniqueJobPeriod is the window during which duplicate crawl jobs for the same site are suppressed
		UniqueJobPeriod time.Duration `env:"SITECHECKER_UNIQUE_JOB_PERIOD" env-default:"10m" yaml:"uniqueJobPeriod"`
		// ResultRetention is how long stored crawl results are kept before cleanup
		ResultRetention time.Duration `env:"SITECHECKER_RESULT_RETENTION" env-default:"720h" yaml:"resultRetention"`
	} `yaml:"siteChecker"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

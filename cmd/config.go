package cmd

import (
	"flag"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config is read from FLAGSHIP_* environment variables, optionally set in a
// .env file. Global flags override it.
type Config struct {
	DataDir     string `envconfig:"DATA_DIR" default:".flagship"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	Remote      string `envconfig:"REMOTE" default:"jsonblob"` // jsonblob or github
	JSONBlobURL string `envconfig:"JSONBLOB_URL"`
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	GitHubRepo  string `envconfig:"GITHUB_REPO"`
	GitHubPath  string `envconfig:"GITHUB_PATH"`

	RatesURL     string `envconfig:"RATES_URL"`
	RateCurrency string `envconfig:"RATE_CURRENCY"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL"`

	Addr            string        `envconfig:"ADDR" default:":8080"`
	AutoSyncDelay   time.Duration `envconfig:"AUTOSYNC_DELAY" default:"5s"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`

	Verbose   bool   `envconfig:"VERBOSE"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // text or json
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	dataDir     = flag.String("data-dir", "", "Folder holding the shop snapshot. Overrides FLAGSHIP_DATA_DIR.")
	databaseURL = flag.String("db", "", "Postgres url to keep the snapshot in a database instead of a folder. Overrides FLAGSHIP_DATABASE_URL.")
	verbose     = flag.Bool("v", false, "Verbose logging.")
)

var (
	configOnce sync.Once
	config     Config
)

// loadConfig reads the configuration once.
func loadConfig() Config {
	configOnce.Do(func() {
		if err := godotenv.Load(); err == nil {
			log.Debug("loaded .env")
		}
		if err := envconfig.Process("flagship", &config); err != nil {
			log.WithError(err).Warn("invalid environment, using defaults")
		}
		if *dataDir != "" {
			config.DataDir = *dataDir
		}
		if *databaseURL != "" {
			config.DatabaseURL = *databaseURL
		}
		if *verbose {
			config.Verbose = true
		}
		setupLog(config)
	})
	return config
}

func setupLog(cfg Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("invalid log level")
		level = log.InfoLevel
	}
	if cfg.Verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// Config holds all pipeline settings, populated from environment variables
// (with .env support) and overridable by CLI flags.
type Config struct {
	// Object store.
	S3Endpoint string
	S3Region   string
	Bucket     string
	UseSSL     bool

	// Run selection. Prefix is derived from Date and Station unless set.
	// LocalOnly skips the selection entirely; set by commands that only
	// operate on the local tree.
	Station   string
	Date      string // YYYY-MM-DD
	Prefix    string
	LocalOnly bool

	// Local trees.
	InputRoot  string
	OutputRoot string

	// Time-of-day window, HHMMSS UTC, boundary-inclusive.
	WindowStart string
	WindowEnd   string
	Window      domain.TimeWindow

	// File naming policy.
	InvalidSuffix string
	OutputSuffix  string
	StrictNames   bool

	// Materializer / converter behavior.
	Workers        int
	FetchTimeout   time.Duration
	ConvertTimeout time.Duration
	SkipExisting   bool
	Vol2BirdPath   string

	// Optional result-event sink.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaResultsTopic string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	cfg := LoadDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefaults reads environment variables and defaults without validating;
// the CLI applies flag overrides first and validates afterwards.
func LoadDefaults() *Config {
	// A .env file is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("S3_ENDPOINT", "s3.amazonaws.com")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "noaa-nexrad-level2")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("STATION", "")
	v.SetDefault("DATE", "")
	v.SetDefault("PREFIX", "")
	v.SetDefault("INPUT_ROOT", "./data/pvol")
	v.SetDefault("OUTPUT_ROOT", "./data/vp")
	v.SetDefault("WINDOW_START", "000000")
	v.SetDefault("WINDOW_END", "235959")
	v.SetDefault("INVALID_SUFFIX", "_MDM")
	v.SetDefault("OUTPUT_SUFFIX", ".h5")
	v.SetDefault("STRICT_NAMES", false)
	v.SetDefault("WORKERS", 4)
	v.SetDefault("FETCH_TIMEOUT", "2m")
	v.SetDefault("CONVERT_TIMEOUT", "5m")
	v.SetDefault("SKIP_EXISTING", false)
	v.SetDefault("VOL2BIRD_PATH", "vol2bird")
	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_RESULTS_TOPIC", "radar-run-results")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	// A set-but-empty variable is an explicit value, not a fallback to the
	// default; KAFKA_BROKERS="" must reach validation as an empty list.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return &Config{
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3Region:          v.GetString("S3_REGION"),
		Bucket:            v.GetString("S3_BUCKET"),
		UseSSL:            v.GetBool("S3_USE_SSL"),
		Station:           v.GetString("STATION"),
		Date:              v.GetString("DATE"),
		Prefix:            v.GetString("PREFIX"),
		InputRoot:         v.GetString("INPUT_ROOT"),
		OutputRoot:        v.GetString("OUTPUT_ROOT"),
		WindowStart:       v.GetString("WINDOW_START"),
		WindowEnd:         v.GetString("WINDOW_END"),
		InvalidSuffix:     v.GetString("INVALID_SUFFIX"),
		OutputSuffix:      v.GetString("OUTPUT_SUFFIX"),
		StrictNames:       v.GetBool("STRICT_NAMES"),
		Workers:           v.GetInt("WORKERS"),
		FetchTimeout:      v.GetDuration("FETCH_TIMEOUT"),
		ConvertTimeout:    v.GetDuration("CONVERT_TIMEOUT"),
		SkipExisting:      v.GetBool("SKIP_EXISTING"),
		Vol2BirdPath:      v.GetString("VOL2BIRD_PATH"),
		KafkaEnabled:      v.GetBool("KAFKA_ENABLED"),
		KafkaBrokers:      splitBrokers(v.GetString("KAFKA_BROKERS")),
		KafkaResultsTopic: v.GetString("KAFKA_RESULTS_TOPIC"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}
}

// Validate checks cross-field constraints and materializes derived fields
// (Window, Prefix). Called again after CLI flag overrides.
func (c *Config) Validate() error {
	c.Station = strings.ToUpper(strings.TrimSpace(c.Station))
	c.Date = strings.TrimSpace(c.Date)

	if c.Bucket == "" {
		return errors.New("S3_BUCKET is required")
	}
	if c.S3Endpoint == "" {
		return errors.New("S3_ENDPOINT is required")
	}
	if c.InputRoot == "" || c.OutputRoot == "" {
		return errors.New("INPUT_ROOT and OUTPUT_ROOT are required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.FetchTimeout <= 0 || c.ConvertTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT and CONVERT_TIMEOUT must be positive")
	}
	if c.OutputSuffix == "" {
		return errors.New("OUTPUT_SUFFIX is required")
	}

	window, err := domain.ParseTimeWindow(c.WindowStart, c.WindowEnd)
	if err != nil {
		return err
	}
	c.Window = window

	if c.Prefix == "" && !c.LocalOnly {
		prefix, err := derivePrefix(c.Date, c.Station)
		if err != nil {
			return err
		}
		c.Prefix = prefix
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if c.KafkaResultsTopic == "" {
			return errors.New("KAFKA_ENABLED is true but KAFKA_RESULTS_TOPIC is empty")
		}
	}
	return nil
}

// derivePrefix maps the date+station run selection onto the archive's
// YYYY/MM/DD/SSSS/ key layout.
func derivePrefix(date, station string) (string, error) {
	if date == "" || station == "" {
		return "", errors.New("either PREFIX or both DATE and STATION are required")
	}
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("DATE must be YYYY-MM-DD: %w", err)
	}
	if len(station) != 4 {
		return "", fmt.Errorf("STATION must be a 4-letter identifier, got %q", station)
	}
	return d.Format("2006/01/02") + "/" + station + "/", nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

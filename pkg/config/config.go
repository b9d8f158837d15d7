package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the configuration for a foliage platform service
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Postgres configuration
	PostgresHost               string
	PostgresPort               int
	PostgresUser               string
	PostgresPassword           string
	PostgresDB                 string
	PostgresSSLMode            string
	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetime    time.Duration

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string

	// Dataset configuration
	DatasetName     string
	DatasetSource   string
	DatasetPath     string
	PhenologyPath   string
	OffsetSeed      int64
	OffsetRangeDays int
	ImportDataset   bool

	// Animation configuration
	StartDOY          int
	EndDOY            int
	LoopSeconds       float64
	FrameRate         int
	StateIntervalSec  int
	ControlThrottleMs int

	// Fallback coordinates when a dataset has no usable centroid
	Latitude  float64
	Longitude float64
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:    "localhost",
		MQTTPort:      1883,
		MQTTUser:      "",
		MQTTPassword:  "",
		MQTTClientID:  "",
		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,
		// Postgres defaults
		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "foliage",
		PostgresPassword:           "",
		PostgresDB:                 "foliage",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     10,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetime:    30 * time.Minute,
		ServiceName:                "foliage-agent",
		HealthPort:                 8080,
		LogLevel:                   "info",
		// Dataset defaults
		DatasetName:     "helsinki-trees",
		DatasetSource:   "file",
		DatasetPath:     "",
		PhenologyPath:   "",
		OffsetSeed:      42,
		OffsetRangeDays: 5,
		// Animation defaults: September through December in one minute
		StartDOY:          244,
		EndDOY:            365,
		LoopSeconds:       60,
		FrameRate:         15,
		StateIntervalSec:  5,
		ControlThrottleMs: 50,
		// Helsinki coordinates
		Latitude:  60.1695,
		Longitude: 24.9354,
	}
}

// LoadFromEnv loads configuration from environment variables with FOLIO_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("FOLIO_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("FOLIO_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("FOLIO_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("FOLIO_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("FOLIO_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("FOLIO_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("FOLIO_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("FOLIO_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("FOLIO_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Postgres configuration
	if v := os.Getenv("FOLIO_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("FOLIO_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_SSL_MODE"); v != "" {
		c.PostgresSSLMode = v
	}
	if v := os.Getenv("FOLIO_POSTGRES_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PostgresMaxConnections = n
		}
	}

	// Service configuration
	if v := os.Getenv("FOLIO_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("FOLIO_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Dataset configuration
	if v := os.Getenv("FOLIO_DATASET_NAME"); v != "" {
		c.DatasetName = v
	}
	if v := os.Getenv("FOLIO_DATASET_SOURCE"); v != "" {
		c.DatasetSource = v
	}
	if v := os.Getenv("FOLIO_DATASET_PATH"); v != "" {
		c.DatasetPath = v
	}
	if v := os.Getenv("FOLIO_PHENOLOGY_PATH"); v != "" {
		c.PhenologyPath = v
	}
	if v := os.Getenv("FOLIO_OFFSET_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.OffsetSeed = seed
		}
	}
	if v := os.Getenv("FOLIO_OFFSET_RANGE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			c.OffsetRangeDays = days
		}
	}
	if v := os.Getenv("FOLIO_IMPORT_DATASET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ImportDataset = b
		}
	}

	// Animation configuration
	if v := os.Getenv("FOLIO_START_DOY"); v != "" {
		if doy, err := strconv.Atoi(v); err == nil {
			c.StartDOY = doy
		}
	}
	if v := os.Getenv("FOLIO_END_DOY"); v != "" {
		if doy, err := strconv.Atoi(v); err == nil {
			c.EndDOY = doy
		}
	}
	if v := os.Getenv("FOLIO_LOOP_SECONDS"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			c.LoopSeconds = secs
		}
	}
	if v := os.Getenv("FOLIO_FRAME_RATE"); v != "" {
		if fps, err := strconv.Atoi(v); err == nil {
			c.FrameRate = fps
		}
	}
	if v := os.Getenv("FOLIO_STATE_INTERVAL_SEC"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.StateIntervalSec = secs
		}
	}
	if v := os.Getenv("FOLIO_CONTROL_THROTTLE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.ControlThrottleMs = ms
		}
	}

	// Fallback coordinates
	if v := os.Getenv("FOLIO_LATITUDE"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			c.Latitude = lat
		}
	}
	if v := os.Getenv("FOLIO_LONGITUDE"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			c.Longitude = lon
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Postgres flags
	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-ssl-mode", c.PostgresSSLMode, "Postgres SSL mode")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Dataset flags
	pflag.StringVar(&c.DatasetName, "dataset-name", c.DatasetName, "Dataset name used in topics and storage keys")
	pflag.StringVar(&c.DatasetSource, "dataset-source", c.DatasetSource, "Dataset source (file or postgres)")
	pflag.StringVar(&c.DatasetPath, "dataset-path", c.DatasetPath, "Path to the inventory CSV file")
	pflag.StringVar(&c.PhenologyPath, "phenology-path", c.PhenologyPath, "Path to the phenology YAML file (built-in rules when empty)")
	pflag.Int64Var(&c.OffsetSeed, "offset-seed", c.OffsetSeed, "Seed for generated per-tree day offsets")
	pflag.IntVar(&c.OffsetRangeDays, "offset-range-days", c.OffsetRangeDays, "Half-width of the per-tree offset range in days (0-7)")
	pflag.BoolVar(&c.ImportDataset, "import-dataset", c.ImportDataset, "Import the CSV dataset into Postgres and exit")

	// Animation flags
	pflag.IntVar(&c.StartDOY, "start-doy", c.StartDOY, "First day of year of the animation window")
	pflag.IntVar(&c.EndDOY, "end-doy", c.EndDOY, "Last day of year of the animation window")
	pflag.Float64Var(&c.LoopSeconds, "loop-seconds", c.LoopSeconds, "Wall seconds for one full window sweep at speed 1")
	pflag.IntVar(&c.FrameRate, "frame-rate", c.FrameRate, "Frame publish rate per second")
	pflag.IntVar(&c.StateIntervalSec, "state-interval", c.StateIntervalSec, "Clock state snapshot interval in seconds")
	pflag.IntVar(&c.ControlThrottleMs, "control-throttle-ms", c.ControlThrottleMs, "Minimum gap between control-forced frames (ms)")

	// Fallback coordinate flags
	pflag.Float64Var(&c.Latitude, "latitude", c.Latitude, "Fallback latitude for daylight calculation")
	pflag.Float64Var(&c.Longitude, "longitude", c.Longitude, "Fallback longitude for daylight calculation")

	pflag.Parse()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.DatasetName == "" {
		return fmt.Errorf("Dataset name is required")
	}
	if c.DatasetSource != "file" && c.DatasetSource != "postgres" {
		return fmt.Errorf("invalid dataset source: %s (must be file or postgres)", c.DatasetSource)
	}
	if c.OffsetRangeDays < 0 || c.OffsetRangeDays > 7 {
		return fmt.Errorf("offset range must be between 0 and 7 days")
	}
	if c.StartDOY < 1 || c.StartDOY > 366 {
		return fmt.Errorf("start day of year must be between 1 and 366")
	}
	if c.EndDOY < 1 || c.EndDOY > 366 {
		return fmt.Errorf("end day of year must be between 1 and 366")
	}
	if c.EndDOY <= c.StartDOY {
		return fmt.Errorf("end day of year must be after start day of year")
	}
	if c.LoopSeconds <= 0 {
		return fmt.Errorf("loop seconds must be positive")
	}
	if c.FrameRate <= 0 || c.FrameRate > 120 {
		return fmt.Errorf("frame rate must be between 1 and 120")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns the lib/pq connection string
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDB, c.PostgresSSLMode)
}

// FrameInterval returns the frame ticker period
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log         LogConfig
	Storage     StorageConfig
	Records     RecordsConfig
	Metrics     MetricsConfig
	Persistence PersistenceConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageConfig locates snapshot and export files on disk.
type StorageConfig struct {
	DataDir   string
	DataFile  string
	ExportDir string
}

// RecordsConfig bounds tutorial and assessment values.
type RecordsConfig struct {
	MaxWeeks        int
	DefaultMaxScore float64
}

// MetricsConfig controls the Prometheus textfile output. An empty path disables it.
type MetricsConfig struct {
	TextfilePath string
}

// PersistenceConfig toggles saving after each mutating command.
type PersistenceConfig struct {
	Autosave bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Storage = StorageConfig{
		DataDir:   v.GetString("DATA_DIR"),
		DataFile:  v.GetString("DATA_FILE"),
		ExportDir: v.GetString("EXPORT_DIR"),
	}

	maxWeeks := v.GetInt("MAX_WEEKS")
	if maxWeeks <= 0 {
		maxWeeks = 13
	}
	maxScore := v.GetFloat64("DEFAULT_MAX_SCORE")
	if maxScore <= 0 {
		maxScore = 100
	}
	cfg.Records = RecordsConfig{
		MaxWeeks:        maxWeeks,
		DefaultMaxScore: maxScore,
	}

	cfg.Metrics = MetricsConfig{TextfilePath: strings.TrimSpace(v.GetString("METRICS_TEXTFILE"))}

	cfg.Persistence = PersistenceConfig{Autosave: v.GetBool("AUTOSAVE")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATA_FILE", "records.json")
	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("MAX_WEEKS", 13)
	v.SetDefault("DEFAULT_MAX_SCORE", 100)

	v.SetDefault("METRICS_TEXTFILE", "")
	v.SetDefault("AUTOSAVE", true)
}

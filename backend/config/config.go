package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string
	StorageDriver string // postgres, sqlite, mongo, memory

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	MongoURI      string
	MongoDatabase string

	RedisURL        string
	SummaryCacheTTL time.Duration

	JWTSecret     string
	WebhookSecret string

	LogMode       string
	QuizPassRatio float64
	CORSOrigins   string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}
	cfg := fromViper(newViper())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.QuizPassRatio < 0 || c.QuizPassRatio > 1 {
		return errors.Errorf("QUIZ_PASS_RATIO must be between 0 and 1, got %v", c.QuizPassRatio)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "learning_platform")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "learnhub.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "learnhub")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SUMMARY_CACHE_TTL", 10*time.Minute)
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("QUIZ_PASS_RATIO", 0.6)
	v.SetDefault("CORS_ORIGINS", "*")

	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("SERVER_PORT"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		RedisURL:        v.GetString("REDIS_URL"),
		SummaryCacheTTL: v.GetDuration("SUMMARY_CACHE_TTL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		WebhookSecret:   v.GetString("WEBHOOK_SECRET"),
		LogMode:         v.GetString("LOG_MODE"),
		QuizPassRatio:   v.GetFloat64("QUIZ_PASS_RATIO"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
	}
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

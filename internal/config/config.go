package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	PatientsFile string `mapstructure:"PATIENTS_FILE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBTimeZone string `mapstructure:"DB_TIMEZONE"`

	RedisURL    string `mapstructure:"REDIS_URL"`
	RedisPrefix string `mapstructure:"REDIS_PREFIX"`

	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	ModelDriver      string `mapstructure:"MODEL_DRIVER"`
	ModelPath        string `mapstructure:"MODEL_PATH"`
	MLServiceAddress string `mapstructure:"ML_SERVICE_ADDRESS"`

	JWTSecretKey string   `mapstructure:"JWT_SECRET_KEY"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
}

var (
	StoreDrivers = []string{"file", "memory", "postgres", "redis", "mongo"}
	ModelDrivers = []string{"local", "grpc"}
)

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"STORE_DRIVER", "PATIENTS_FILE",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_TIMEZONE",
	"REDIS_URL", "REDIS_PREFIX",
	"MONGODB_URI", "MONGODB_DATABASE",
	"MODEL_DRIVER", "MODEL_PATH", "ML_SERVICE_ADDRESS",
	"JWT_SECRET_KEY", "CORS_ORIGINS",
}

// Load reads configuration from the environment. Variables in the given
// .env files (default ".env") are loaded first when the files exist; values
// already set in the environment take precedence.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		_ = godotenv.Load(file)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "file")
	v.SetDefault("PATIENTS_FILE", "patients.json")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "patients")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("REDIS_PREFIX", "patients")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "patients")
	v.SetDefault("MODEL_DRIVER", "local")
	v.SetDefault("MODEL_PATH", "model.json")
	v.SetDefault("ML_SERVICE_ADDRESS", "localhost:50051")
	v.SetDefault("CORS_ORIGINS", "*")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.ModelDriver = strings.ToLower(strings.TrimSpace(cfg.ModelDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate rejects unknown store and model drivers.
func (c *Config) Validate() error {
	if !contains(StoreDrivers, c.StoreDriver) {
		return fmt.Errorf("STORE_DRIVER must be one of %v, got %q", StoreDrivers, c.StoreDriver)
	}
	if !contains(ModelDrivers, c.ModelDriver) {
		return fmt.Errorf("MODEL_DRIVER must be one of %v, got %q", ModelDrivers, c.ModelDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// PostgresDSN builds the GORM postgres DSN from the DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s "+
			"application_name=patientms TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

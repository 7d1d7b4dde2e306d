package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/validator"
)

// ServiceName is reported by the health endpoint and used as the metrics namespace.
const ServiceName = "daisi-meal-photo-bot"

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `mapstructure:"readTimeout"`
		WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	} `mapstructure:"server"`
	Twilio TwilioConfig `mapstructure:"twilio"`
	Meta   MetaConfig   `mapstructure:"meta"`
	Vision VisionConfig `mapstructure:"vision"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN" validate:"required"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	NATS struct {
		URL               string        `mapstructure:"url"` // empty disables meal events
		Stream            string        `mapstructure:"stream"`
		MealLoggedSubject string        `mapstructure:"mealLoggedSubject"`
		MaxAge            time.Duration `mapstructure:"maxAge"`
	} `mapstructure:"nats"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
	WorkerPools struct {
		Background WorkerPoolConfig `mapstructure:"background"`
	} `mapstructure:"workerPools"`
}

// TwilioConfig holds the Twilio REST credentials and the sender used for outbound messages.
type TwilioConfig struct {
	AccountSID string `mapstructure:"accountSID" validate:"required"`
	AuthToken  string `mapstructure:"authToken" validate:"required"`
	FromNumber string `mapstructure:"fromNumber" validate:"required"` // e.g. whatsapp:+14155238886
}

// MetaConfig holds the WhatsApp Cloud API settings.
type MetaConfig struct {
	AccessToken   string        `mapstructure:"accessToken" validate:"required"`
	PhoneNumberID string        `mapstructure:"phoneNumberID" validate:"required"`
	VerifyToken   string        `mapstructure:"verifyToken" validate:"required"`
	GraphBaseURL  string        `mapstructure:"graphBaseURL" validate:"required,url"`
	HTTPTimeout   time.Duration `mapstructure:"httpTimeout"`
}

// VisionConfig configures the OpenAI-compatible vision model.
type VisionConfig struct {
	APIKey    string        `mapstructure:"apiKey" validate:"required"`
	BaseURL   string        `mapstructure:"baseURL"` // empty uses the SDK default
	Model     string        `mapstructure:"model" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=1"`
	MaxTokens int64         `mapstructure:"maxTokens"`
}

// WorkerPoolConfig holds configuration for the background task pool
type WorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize" validate:"min=1"` // Number of workers; a submit with none idle is rejected
	ExpiryTime time.Duration `mapstructure:"expiryTime"`                // Idle worker expiry time
}

// envOverrides maps conventional environment variable names onto config keys.
var envOverrides = map[string]string{
	"TWILIO_ACCOUNT_SID":     "twilio.accountSID",
	"TWILIO_AUTH_TOKEN":      "twilio.authToken",
	"TWILIO_WHATSAPP_NUMBER": "twilio.fromNumber",
	"META_ACCESS_TOKEN":      "meta.accessToken",
	"META_PHONE_NUMBER_ID":   "meta.phoneNumberID",
	"META_VERIFY_TOKEN":      "meta.verifyToken",
	"OPENAI_API_KEY":         "vision.apiKey",
	"OPENAI_BASE_URL":        "vision.baseURL",
	"OPENAI_MODEL":           "vision.model",
	"POSTGRES_DSN":           "database.postgresDSN",
	"NATS_URL":               "nats.url",
	"LOG_LEVEL":              "logLevel",
}

// LoadConfig reads configuration from a .env file, an optional default.yaml and the environment.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("meta.graphBaseURL", "https://graph.facebook.com/v18.0")
	v.SetDefault("meta.httpTimeout", 10*time.Second)
	v.SetDefault("vision.model", "gpt-4o")
	v.SetDefault("vision.timeout", 30*time.Second)
	v.SetDefault("vision.maxTokens", 1000)
	v.SetDefault("nats.stream", "meal_events")
	v.SetDefault("nats.mealLoggedSubject", "v1.meals.logged")
	v.SetDefault("nats.maxAge", 7*24*time.Hour)
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("workerPools.background.poolSize", 20)
	v.SetDefault("workerPools.background.expiryTime", time.Minute)

	v.SetConfigName("default")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/." + ServiceName)
	v.AddConfigPath("/etc/" + ServiceName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, Config{})

	for env, key := range envOverrides {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}
	// PORT is set by most container platforms.
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("%w: PORT %q is not a number", apperrors.ErrConfig, port)
		}
		v.Set("server.port", p)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// Validate fails when a credential the service cannot run without is missing.
func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrConfig, err)
	}
	return nil
}

// EventsEnabled reports whether meal events should be published to NATS.
func (c *Config) EventsEnabled() bool {
	return c.NATS.URL != ""
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(append([]string{}, parts...), tag)
		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}
		_ = v.BindEnv(strings.Join(path, "."))
	}
}

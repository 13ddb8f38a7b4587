package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"3000" validate:"required,numeric"`
	AllowedOrigin   string        `envconfig:"ALLOWED_ORIGIN" default:"*"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"20s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json pretty"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"10m"`

	BusinessName       string `envconfig:"BUSINESS_NAME" default:"Cafetería"`
	BusinessTimezone   string `envconfig:"BUSINESS_TIMEZONE" default:"America/Bogota" validate:"timezone"`
	OperatingHourStart int    `envconfig:"OPERATING_HOUR_START" default:"6" validate:"gte=0,lte=23"`
	// OperatingHourEnd is exclusive.
	OperatingHourEnd int `envconfig:"OPERATING_HOUR_END" default:"12" validate:"gtfield=OperatingHourStart,lte=24"`

	TopProductsLimit        int               `envconfig:"TOP_PRODUCTS_LIMIT" default:"8" validate:"gte=1,lte=100"`
	TopProductsWindowDays   int               `envconfig:"TOP_PRODUCTS_WINDOW_DAYS" default:"0" validate:"gte=0,lte=366"`
	TrendWindowDays         int               `envconfig:"TREND_WINDOW_DAYS" default:"7" validate:"gte=1,lte=366"`
	CategoryWindowDays      int               `envconfig:"CATEGORY_WINDOW_DAYS" default:"7" validate:"gte=1,lte=366"`
	ForecastMinDays         int               `envconfig:"FORECAST_MIN_DAYS" default:"7" validate:"gte=1,lte=30"`
	LowTransactionThreshold float64           `envconfig:"LOW_TRANSACTION_THRESHOLD" default:"10" validate:"gt=0"`
	CategoryEmoji           map[string]string `envconfig:"CATEGORY_EMOJI" default:"Postres:🍰,Lácteos:🥛,Bebidas:🥤,Snacks:🍫,General:☕"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120" validate:"gte=1"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location resolves BusinessTimezone. Load already rejected unknown zones,
// so the UTC fallback only applies to hand-built configs.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

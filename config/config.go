package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	Postgres          Postgres
	Telegram          Telegram
	Redis             Redis
	API               API
	Cache             Cache
	Jobs              Jobs
	GoogleDrive       GoogleDrive
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION" envDefault:"30m"`
	Timezone          string        `env:"TIMEZONE" envDefault:"UTC"` // для отображения истории покупок
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"5"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Telegram struct {
	Token            string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout       time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
	FileLimitInBytes int           `env:"TELEGRAM_FILE_LIMIT_IN_BYTES" envDefault:"52428800"`
	HandlerTimeout   time.Duration `env:"TELEGRAM_HANDLER_TIMEOUT" envDefault:"30s"`
	AllowedUserID    int64         `env:"ALLOWED_USER_ID"` // единственный пользователь, которому доступен бот
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable password=%s",
		p.Host, p.Port, p.User, p.DbName, p.Password,
	)
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type API struct {
	Debug        bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout      time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	CoingeckoApi CoingeckoApi
}

type CoingeckoApi struct {
	Url          string `env:"COINGECKO_API_URL" envDefault:"https://api.coingecko.com"`
	AssetID      string `env:"COINGECKO_ASSET_ID" envDefault:"bitcoin"`
	AssetSymbol  string `env:"ASSET_SYMBOL" envDefault:"BTC"`
	FiatCurrency string `env:"FIAT_CURRENCY" envDefault:"usd"`
}

type Cache struct {
	PriceExpiration time.Duration `env:"CACHE_PRICE_EXPIRATION" envDefault:"1m"`
}

type Jobs struct {
	DeleteOldFilesInterval time.Duration `env:"DELETE_OLD_FILES_JOB_INTERVAL" envDefault:"24h"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""` // пустое значение отключает google drive
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"72h"`
}

func (g GoogleDrive) Enabled() bool {
	return g.CredentialsFile != ""
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load(env.Options{})
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

// Load parses the process environment (or opts.Environment when set).
func Load(opts env.Options) (*Config, error) {
	cfg := &Config{}

	opts.RequiredIfNoDef = true

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}

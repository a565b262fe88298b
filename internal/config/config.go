package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Telegram TelegramConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// GatewayConfig holds the processor-facing settings. Rows in the
// gateway_settings table override these at read time.
type GatewayConfig struct {
	BackendURL     string
	APIKey         string
	CallbackSecret string
	Currency       string
	ReturnURL      string
	PublicDomain   string
	DedupCapacity  int
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CURRENCY", "CNY")
	viper.SetDefault("DEDUP_CAPACITY", 1000)

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			BackendURL:     viper.GetString("LAKALA_BASE_URL"),
			APIKey:         viper.GetString("LAKALA_API_KEY"),
			CallbackSecret: viper.GetString("CALLBACK_SECRET"),
			Currency:       viper.GetString("CURRENCY"),
			ReturnURL:      viper.GetString("RETURN_URL"),
			PublicDomain:   viper.GetString("PUBLIC_DOMAIN"),
			DedupCapacity:  viper.GetInt("DEDUP_CAPACITY"),
		},
		Telegram: TelegramConfig{
			Token:  viper.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID: viper.GetInt64("TELEGRAM_REPORT_CHAT"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.Gateway.CallbackSecret == "" {
		log.Println("WARNING: CALLBACK_SECRET is not set; all callbacks will be rejected")
	}
	if cfg.Gateway.PublicDomain == "" {
		log.Println("WARNING: PUBLIC_DOMAIN is not set; notify URL cannot be computed")
	}

	return cfg, nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}

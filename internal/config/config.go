package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultHRContact = "HR officer (contact details not configured yet)"
)

type Config struct {
	BotToken      string `validate:"required"`
	AdminChatID   int64  `validate:"required"`
	HRContactInfo string

	DBDriver   string `validate:"oneof=sqlite3 postgres"`
	DBPath     string `validate:"required_if=DBDriver sqlite3"`
	DBUser     string `validate:"required_if=DBDriver postgres"`
	DBPassword string `validate:"required_if=DBDriver postgres"`
	DBName     string `validate:"required_if=DBDriver postgres"`
	DBHost     string
	DBPort     string

	WebhookURL  string `validate:"omitempty,url"`
	Port        string `validate:"required,numeric"`
	MetricsAddr string

	TeamsFile   string
	EvidenceDir string  `validate:"required"`
	SendRate    float64 `validate:"gt=0"`

	LogEnv string
	LogDir string
}

var validate = validator.New()

func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("config.Load: no .env file found - using env variables")
	}

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		HRContactInfo: getEnvString("HR_CONTACT_INFO", defaultHRContact),
		DBDriver:      getEnvString("DB_DRIVER", DriverSQLite),
		DBPath:        getEnvString("DB_PATH", "hr_bot.db"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBHost:        getEnvString("DB_HOST", "localhost"),
		DBPort:        getEnvString("DB_PORT", "5432"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		Port:          getEnvString("PORT", "8080"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		TeamsFile:     os.Getenv("TEAMS_FILE"),
		EvidenceDir:   getEnvString("EVIDENCE_DIR", "evidence_files"),
		LogEnv:        getEnvString("LOG_ENV", "prod"),
		LogDir:        os.Getenv("LOG_DIR"),
	}

	cfg.SendRate, err = getEnvFloat("SEND_RATE", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: SEND_RATE must be a number: %w", err)
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("config.Load: BOT_TOKEN is required")
	}

	rawAdminID := os.Getenv("ADMIN_CHAT_ID")
	if rawAdminID == "" {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_ID is required")
	}

	cfg.AdminChatID, err = strconv.ParseInt(rawAdminID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("config.Load: ADMIN_CHAT_ID must be numeric: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config.Load: validation failed: %w", err)
	}

	return nil
}

func (c *Config) IsAdmin(userID int64) bool {
	return userID == c.AdminChatID
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}

	return strconv.ParseFloat(v, 64)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lomedigitalschool/kotiz-web/internal/models"
)

func Load() (*models.Config, error) {
	apiTimeout, err := getEnvDuration("KOTIZ_API_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return &models.Config{
		Database: models.DatabaseConfig{
			Path:            getEnvString("KOTIZ_DATABASE_PATH", "kotiz.db"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: connMaxLifetime,
			ConnMaxIdleTime: connMaxIdleTime,
			PingTimeout:     pingTimeout,
		},
		Api: models.ApiConfig{
			BaseURL: getEnvString("KOTIZ_API_BASE_URL", "http://localhost:5000/api"),
			Timeout: apiTimeout,
		},
		Store: models.StoreConfig{
			DefaultCreatorId: getEnvString("KOTIZ_DEFAULT_CREATOR_ID", "local-user"),
		},
		Notify: models.NotifyConfig{
			Channels: getEnvList("KOTIZ_NOTIFY_CHANNELS", []string{"console"}),
		},
		Payment: models.PaymentConfig{
			MethodsFile:     getEnvString("PAYMENT_METHODS_FILE", "payment_methods.yaml"),
			DefaultCountry:  getEnvString("PAYMENT_DEFAULT_COUNTRY", "SN"),
			DefaultDialCode: getEnvString("PAYMENT_DEFAULT_DIAL_CODE", "+221"),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

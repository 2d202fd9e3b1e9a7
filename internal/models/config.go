package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Api      ApiConfig
	Store    StoreConfig
	Notify   NotifyConfig
	Payment  PaymentConfig
}

// DatabaseConfig holds settings for the durable slot database
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ApiConfig holds settings for the remote cagnotte API
type ApiConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StoreConfig holds state-store behavior settings
type StoreConfig struct {
	// DefaultCreatorId is the sentinel owner assigned to cagnottes whose
	// payload carries no creator.
	DefaultCreatorId string
}

// NotifyConfig holds notification dispatch settings
type NotifyConfig struct {
	// Channels are the delivery channels used when an event does not name
	// its own. Defaults to console only.
	Channels []string
}

// PaymentConfig holds payment helper settings
type PaymentConfig struct {
	MethodsFile     string
	DefaultCountry  string
	DefaultDialCode string
}

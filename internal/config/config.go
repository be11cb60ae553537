package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Store       StoreConfig
	Shopify     ShopifyConfig
	Printful    PrintfulConfig
	Printify    PrintifyConfig
	Ikonshop    IkonshopConfig
	Paystack    PaystackConfig
	Flutterwave FlutterwaveConfig
	Crypto      CryptoConfig
	Email       EmailConfig
	Admin       AdminConfig
	Rates       RatesConfig
	Dispatch    DispatchConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Elevated role used for admin/dispatcher writes. Falls back to the
	// primary credentials when unset.
	AdminUser     string
	AdminPassword string
}

// StoreConfig carries storefront-level settings used by cart math and checkout
type StoreConfig struct {
	Domain                string
	Currency              string
	TaxRate               float64
	FlatShippingFee       float64
	FreeShippingThreshold float64
}

// ShopifyConfig is used both to verify inbound order webhooks and to backfill
// missing order data via the Admin API
type ShopifyConfig struct {
	ShopDomain    string
	AccessToken   string
	APIVersion    string
	WebhookSecret string // verify X-Shopify-Hmac-Sha256 on inbound webhooks
}

func (c ShopifyConfig) Configured() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}

type PrintfulConfig struct {
	APIKey  string
	BaseURL string
}

func (c PrintfulConfig) Configured() bool { return c.APIKey != "" }

type PrintifyConfig struct {
	APIKey  string
	ShopID  string
	BaseURL string
}

func (c PrintifyConfig) Configured() bool { return c.APIKey != "" && c.ShopID != "" }

// IkonshopConfig points at the first-party POD service
type IkonshopConfig struct {
	BaseURL string
	APIKey  string
}

func (c IkonshopConfig) Configured() bool { return c.BaseURL != "" }

type PaystackConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
}

func (c PaystackConfig) Configured() bool { return c.SecretKey != "" }

type FlutterwaveConfig struct {
	SecretKey   string
	BaseURL     string
	RedirectURL string
}

func (c FlutterwaveConfig) Configured() bool { return c.SecretKey != "" }

// CryptoConfig is used to verify on-chain payments against an RPC node
type CryptoConfig struct {
	RPCURL         string
	ReceiveAddress string
}

func (c CryptoConfig) Configured() bool { return c.RPCURL != "" && c.ReceiveAddress != "" }

// EmailConfig drives the best-effort order confirmation send (EmailJS REST)
type EmailConfig struct {
	BaseURL     string
	ServiceID   string
	TemplateID  string
	UserID      string
	AccessToken string
}

func (c EmailConfig) Configured() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.UserID != ""
}

// AdminConfig authenticates back-office calls: a JWT signed with Secret whose
// email claim must land in one of the allow-listed domains
type AdminConfig struct {
	JWTSecret           string
	AllowedEmailDomains []string
	// APIKeyHash is a bcrypt hash of a service-account key for automation
	// that cannot hold a JWT (cron jobs, CI). Generate with hash-api-key.
	APIKeyHash string
}

type RatesConfig struct {
	SyncURL      string
	SyncInterval time.Duration
}

func (c RatesConfig) Configured() bool { return c.SyncURL != "" }

type DispatchConfig struct {
	PollInterval time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			Host:          getEnvOrViper("DB_HOST", "localhost"),
			Port:          getEnvOrViper("DB_PORT", "5432"),
			User:          getEnvOrViper("DB_USER", "postgres"),
			Password:      getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:        getEnvOrViper("DB_NAME", "geekcreations"),
			SSLMode:       getEnvOrViper("DB_SSLMODE", "disable"),
			AdminUser:     strings.TrimSpace(getEnvOrViper("DB_ADMIN_USER", "")),
			AdminPassword: strings.TrimSpace(getEnvOrViper("DB_ADMIN_PASSWORD", "")),
		},
		Store: StoreConfig{
			Domain:                strings.TrimSpace(getEnvOrViper("STORE_DOMAIN", "")),
			Currency:              getEnvOrViper("STORE_CURRENCY", "NGN"),
			TaxRate:               viper.GetFloat64("STORE_TAX_RATE"),
			FlatShippingFee:       viper.GetFloat64("STORE_FLAT_SHIPPING_FEE"),
			FreeShippingThreshold: viper.GetFloat64("STORE_FREE_SHIPPING_THRESHOLD"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:    strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken:   strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:    getEnvOrViper("SHOPIFY_API_VERSION", "2024-10"),
			WebhookSecret: strings.TrimSpace(getEnvOrViper("SHOPIFY_WEBHOOK_SECRET", "")),
		},
		Printful: PrintfulConfig{
			APIKey:  strings.TrimSpace(getEnvOrViper("PRINTFUL_API_KEY", "")),
			BaseURL: getEnvOrViper("PRINTFUL_BASE_URL", "https://api.printful.com"),
		},
		Printify: PrintifyConfig{
			APIKey:  strings.TrimSpace(getEnvOrViper("PRINTIFY_API_KEY", "")),
			ShopID:  strings.TrimSpace(getEnvOrViper("PRINTIFY_SHOP_ID", "")),
			BaseURL: getEnvOrViper("PRINTIFY_BASE_URL", "https://api.printify.com/v1"),
		},
		Ikonshop: IkonshopConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("IKONSHOP_BASE_URL", "")),
			APIKey:  strings.TrimSpace(getEnvOrViper("IKONSHOP_API_KEY", "")),
		},
		Paystack: PaystackConfig{
			SecretKey:   strings.TrimSpace(getEnvOrViper("PAYSTACK_SECRET_KEY", "")),
			BaseURL:     getEnvOrViper("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: strings.TrimSpace(getEnvOrViper("PAYSTACK_CALLBACK_URL", "")),
		},
		Flutterwave: FlutterwaveConfig{
			SecretKey:   strings.TrimSpace(getEnvOrViper("FLUTTERWAVE_SECRET_KEY", "")),
			BaseURL:     getEnvOrViper("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3"),
			RedirectURL: strings.TrimSpace(getEnvOrViper("FLUTTERWAVE_REDIRECT_URL", "")),
		},
		Crypto: CryptoConfig{
			RPCURL:         strings.TrimSpace(getEnvOrViper("CRYPTO_RPC_URL", "")),
			ReceiveAddress: strings.TrimSpace(getEnvOrViper("CRYPTO_RECEIVE_ADDRESS", "")),
		},
		Email: EmailConfig{
			BaseURL:     getEnvOrViper("EMAILJS_BASE_URL", "https://api.emailjs.com/api/v1.0"),
			ServiceID:   strings.TrimSpace(getEnvOrViper("EMAILJS_SERVICE_ID", "")),
			TemplateID:  strings.TrimSpace(getEnvOrViper("EMAILJS_TEMPLATE_ID", "")),
			UserID:      strings.TrimSpace(getEnvOrViper("EMAILJS_USER_ID", "")),
			AccessToken: strings.TrimSpace(getEnvOrViper("EMAILJS_ACCESS_TOKEN", "")),
		},
		Admin: AdminConfig{
			JWTSecret:           strings.TrimSpace(getEnvOrViper("ADMIN_JWT_SECRET", "")),
			AllowedEmailDomains: splitCSV(getEnvOrViper("ADMIN_ALLOWED_EMAIL_DOMAINS", "")),
			APIKeyHash:          strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
		},
		Rates: RatesConfig{
			SyncURL:      strings.TrimSpace(getEnvOrViper("RATES_SYNC_URL", "")),
			SyncInterval: getDurationOrDefault("RATES_SYNC_INTERVAL", 6*time.Hour),
		},
		Dispatch: DispatchConfig{
			PollInterval: getDurationOrDefault("DISPATCH_POLL_INTERVAL", 5*time.Second),
		},
	}

	if cfg.Store.TaxRate == 0 {
		cfg.Store.TaxRate = 0.075
	}
	if cfg.Store.FlatShippingFee == 0 {
		cfg.Store.FlatShippingFee = 2500
	}
	if cfg.Store.FreeShippingThreshold == 0 {
		cfg.Store.FreeShippingThreshold = 50000
	}

	// Only the webhook secret is hard-required in production: without it every
	// inbound order would be rejected silently. Everything else degrades to
	// "not configured".
	if cfg.Environment == "production" && cfg.Shopify.WebhookSecret == "" {
		return nil, fmt.Errorf("SHOPIFY_WEBHOOK_SECRET is required in production")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}

package config

import (
	"github.com/spf13/viper"
)

// Config 应用配置，环境变量优先，缺省值用于本地开发
type Config struct {
	ServerPort string
	GinMode    string

	DatabaseDSN string

	JWTSecret      string
	JWTExpireHours int

	SessionCookieName string
	SessionMaxAgeDays int

	StripeSecretKey string
	StripeBaseURL   string

	StatsCronSpec string
}

// Load 读取配置
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable TimeZone=Asia/Kolkata")
	v.SetDefault("JWT_SECRET", "storefront-dev-secret")
	v.SetDefault("JWT_EXPIRE_HOURS", 72)
	v.SetDefault("SESSION_COOKIE_NAME", "sf_session")
	v.SetDefault("SESSION_MAX_AGE_DAYS", 30)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_BASE_URL", "https://api.stripe.com")
	v.SetDefault("STATS_CRON_SPEC", "0 10 0 * * *")

	return &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		GinMode:           v.GetString("GIN_MODE"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpireHours:    v.GetInt("JWT_EXPIRE_HOURS"),
		SessionCookieName: v.GetString("SESSION_COOKIE_NAME"),
		SessionMaxAgeDays: v.GetInt("SESSION_MAX_AGE_DAYS"),
		StripeSecretKey:   v.GetString("STRIPE_SECRET_KEY"),
		StripeBaseURL:     v.GetString("STRIPE_BASE_URL"),
		StatsCronSpec:     v.GetString("STATS_CRON_SPEC"),
	}
}

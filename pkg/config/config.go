package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// Upstream services
	AuthServiceURL    string `envconfig:"AUTH_SERVICE_URL" default:"http://localhost:8001"`
	CatalogServiceURL string `envconfig:"CATALOG_SERVICE_URL" default:"http://localhost:8002"`
	BookingServiceURL string `envconfig:"BOOKING_SERVICE_URL" default:"http://localhost:8003"`
	AdminServiceURL   string `envconfig:"ADMIN_SERVICE_URL" default:"http://localhost:8005"`

	// Redis (rate-limit counters)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	// Admission control
	RateLimit        int `envconfig:"RATE_LIMIT" default:"100"`
	RateWindowSecs   int `envconfig:"RATE_WINDOW_SECS" default:"60"`
	ProxyTimeoutSecs int `envconfig:"PROXY_TIMEOUT_SECS" default:"30"`

	GatewayHTTPAddr string `envconfig:"GATEWAY_HTTP_ADDR" default:":8000"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

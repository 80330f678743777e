package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillipbowles/FixItNow/pkg/cache"
	"github.com/phillipbowles/FixItNow/pkg/config"
	"github.com/phillipbowles/FixItNow/pkg/obs"
	"github.com/phillipbowles/FixItNow/services/api-gateway/internal/middlewares"
	"github.com/phillipbowles/FixItNow/services/api-gateway/internal/proxy"
	"github.com/phillipbowles/FixItNow/services/api-gateway/internal/ratelimit"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	shutdown := obs.InitTracer("api-gateway")
	defer func() { _ = shutdown(context.Background()) }()

	rdb := must(cache.New(cfg.RedisAddr))
	defer rdb.Close()

	limiter := ratelimit.New(rdb, cfg.RateLimit, time.Duration(cfg.RateWindowSecs)*time.Second)
	timeout := time.Duration(cfg.ProxyTimeoutSecs) * time.Second

	upstreams := map[string]*proxy.Upstream{
		"/auth":    must(proxy.NewUpstream(cfg.AuthServiceURL, "/auth", timeout)),
		"/catalog": must(proxy.NewUpstream(cfg.CatalogServiceURL, "/catalog", timeout)),
		"/booking": must(proxy.NewUpstream(cfg.BookingServiceURL, "/booking", timeout)),
		"/admin":   must(proxy.NewUpstream(cfg.AdminServiceURL, "/admin", timeout)),
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLog(), middlewares.RateLimit(limiter))

	r.GET("/", func(c *gin.Context) {
		routed := gin.H{}
		for prefix, up := range upstreams {
			routed[strings.TrimPrefix(prefix, "/")] = up.Target()
		}
		c.JSON(http.StatusOK, gin.H{
			"service":   "api-gateway",
			"project":   "FixItNow",
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  routed,
		})
	})

	for prefix, up := range upstreams {
		if prefix == "/admin" {
			r.Any(prefix+"/*path", middlewares.JWTAuth(), middlewares.RequireRole("admin"), up.Handler)
			continue
		}
		r.Any(prefix+"/*path", up.Handler)
	}

	log.Println("[gateway] listening on", cfg.GatewayHTTPAddr)
	log.Fatal(r.Run(cfg.GatewayHTTPAddr))
}

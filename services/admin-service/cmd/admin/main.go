package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"

	pkgcache "github.com/phillipbowles/FixItNow/pkg/cache"
	"github.com/phillipbowles/FixItNow/pkg/db"
	"github.com/phillipbowles/FixItNow/pkg/obs"
	"github.com/phillipbowles/FixItNow/services/admin-service/internal/stats"
	httptransport "github.com/phillipbowles/FixItNow/services/admin-service/internal/transport/http"
)

type Cfg struct {
	PGAdminDSN string `envconfig:"PG_ADMIN_DSN" required:"true"`
	RedisAddr  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	HTTPAddr   string `envconfig:"ADMIN_HTTP_ADDR" default:":8005"`
}

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	var cfg Cfg
	must(0, envconfig.Process("", &cfg))

	shutdown := obs.InitTracer("admin-service")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.PGAdminDSN)
	rdb := must(pkgcache.New(cfg.RedisAddr))
	defer rdb.Close()

	r := gin.Default()
	httptransport.NewHandler(stats.NewCollector(gdb, rdb)).Register(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Println("[admin] http listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Println("[admin] stopped")
}

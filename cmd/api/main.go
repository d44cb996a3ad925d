package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dhamen.org/internal/audit"
	"dhamen.org/internal/auth"
	"dhamen.org/internal/config"
	"dhamen.org/internal/httpapi"
	"dhamen.org/internal/obs"
	"dhamen.org/internal/store/kv"
	"dhamen.org/internal/store/pg"
	"dhamen.org/internal/store/redis"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", os.Getenv("DHAMEN_CONFIG"), "path to YAML config file")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// PostgreSQL holds users, claims and the audit trail.
	if cfg.Database.DSN == "" {
		log.Fatalf("database dsn is not configured")
	}
	store, err := pg.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	// Refresh token revocation lives in Redis when configured, otherwise in
	// an embedded TTL store scoped to this process.
	var sessions auth.RevocationStore
	var closeSessions func()
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancel()
		if err != nil {
			log.Fatalf("open redis: %v", err)
		}
		sessions = rs
		closeSessions = func() { _ = rs.Close() }
	} else {
		mem := kv.NewMemory()
		sessions = mem
		closeSessions = mem.Close
		log.Printf("redis not configured, refresh revocation is process-local")
	}

	opts := []auth.ServiceOption{
		auth.WithAccessTTL(cfg.AccessTTL()),
		auth.WithRefreshTTL(cfg.RefreshTTL()),
		auth.WithMFATokenTTL(cfg.MFATTL()),
	}
	if cfg.Auth.LegacySeedPassword != "" {
		opts = append(opts, auth.WithHasher(
			auth.NewHasher(auth.WithLegacySeedPassword(cfg.Auth.LegacySeedPassword))))
	}
	gateway, err := auth.NewService(store.Users(), sessions, cfg.Auth.Secret, opts...)
	if err != nil {
		log.Fatalf("build auth gateway: %v", err)
	}

	trail := audit.NewTrail(store.Audit())

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version,
		gateway, store.Users(), store.Claims(), trail)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dhamen-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	closeSessions()
	_ = store.Close()
	log.Println("Stopped")
}

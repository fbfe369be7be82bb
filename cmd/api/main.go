package main

import (
	"context"
	"log"
	"time"

	"github.com/cha-ryne/ratings-sync/config"
	"github.com/cha-ryne/ratings-sync/internal/bootstrap"
	"github.com/cha-ryne/ratings-sync/internal/identity"
	"github.com/cha-ryne/ratings-sync/internal/ratings/repository"
	"github.com/cha-ryne/ratings-sync/internal/ratings/session"
	"github.com/cha-ryne/ratings-sync/internal/ratings/store"
	"github.com/cha-ryne/ratings-sync/internal/refresh"
	"github.com/cha-ryne/ratings-sync/internal/transport"
	"github.com/redis/go-redis/v9"
)

const serviceName = "ratings-sync"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var rdb *redis.Client
	rdb, err = bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		// Degraded mode: ephemeral identity, no snapshot persistence.
		log.Printf("[warn] redis unavailable, running without durable storage: %v", err)
		rdb = nil
	}

	idp := identity.NewProvider(rdb)

	resolver := transport.NewResolver(transport.ResolverConfig{
		BaseURL:       cfg.Upstream.BaseURL,
		Relays:        cfg.Upstream.Relays,
		MaxCandidates: cfg.Upstream.MaxCandidates,
	})
	fetcher := transport.NewFetcher(resolver, cfg.Upstream.AttemptTimeout)

	var snapshots *repository.SnapshotRepository
	if rdb != nil {
		snapshots = repository.NewSnapshotRepository(rdb, "default")
	}

	st := store.NewStore(ctx, idp, fetcher, snapshots)

	// Initial load is best effort; a down backend leaves the restored
	// snapshot (or an empty view) in place.
	loadCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	if err := st.Load(loadCtx); err != nil {
		log.Printf("[warn] initial ratings load failed: %v", err)
	}
	cancel()

	scheduler := refresh.NewScheduler(cfg.Upstream.RefreshCron, st)
	if err := scheduler.Start(); err != nil {
		log.Printf("[warn] refresh scheduler not started: %v", err)
	}
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Redis:          rdb,
		Store:          st,
		Session:        session.New(st),
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}

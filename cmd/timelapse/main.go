package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"timelapse/internal/adapter/feedhttp"
	httpadapter "timelapse/internal/adapter/http"
	metricsinmem "timelapse/internal/adapter/metrics/inmemory"
	gormrepo "timelapse/internal/adapter/repo/gorm"
	memoryrepo "timelapse/internal/adapter/repo/memory"
	"timelapse/internal/app/ingest"
	"timelapse/internal/app/ports"
	"timelapse/internal/app/replay"
	"timelapse/internal/app/status"
	"timelapse/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	dsn := strings.TrimSpace(os.Getenv("TIMELAPSE_DB_DSN"))
	portals, actions, txManager := mustBuildRepos(dsn)

	feed, err := buildFeedClientFromEnv()
	if err != nil {
		log.Fatalf("build feed client: %v", err)
	}

	kpiRecorder := metricsinmem.NewRecorder()

	profiles, err := config.LoadViewProfiles(os.Getenv("TIMELAPSE_VIEW_PROFILES_PATH"))
	if err != nil {
		log.Fatalf("load view profiles: %v", err)
	}
	log.Printf("loaded %d view profile(s)", len(profiles))

	h := httpadapter.NewHandler(
		ingest.UseCase{
			Feed:       feed,
			Portals:    portals,
			Actions:    actions,
			TxManager:  txManager,
			Metrics:    kpiRecorder,
			Now:        time.Now,
			Politeness: durationMsEnv("TIMELAPSE_INGEST_POLITENESS_MS", 1500*time.Millisecond),
			Sleep:      time.Sleep,
		},
		replay.UseCase{Portals: portals, Actions: actions, Metrics: kpiRecorder},
		status.UseCase{Portals: portals, Actions: actions},
		kpiRecorder,
	)

	bindAddr := strEnv("TIMELAPSE_BIND_ADDR", ":8080")
	s := server.Default(server.WithHostPorts(bindAddr))
	h.RegisterRoutes(s)

	log.Printf("timelapse server listening on %s", bindAddr)
	s.Spin()
}

// mustBuildRepos opens a Postgres-backed history store when
// TIMELAPSE_DB_DSN is set, applying pending migrations first, and falls
// back to an in-memory store otherwise — convenient for local runs and
// for the control surface's own integration tests.
func mustBuildRepos(dsn string) (ports.PortalRepository, ports.ActionRepository, ports.TxManager) {
	if dsn == "" {
		log.Println("TIMELAPSE_DB_DSN not set, using in-memory history store")
		store := memoryrepo.NewStore()
		return memoryrepo.NewPortalRepo(store), memoryrepo.NewActionRepo(store), memoryrepo.NewTxManager(store)
	}

	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}

	migrationsDir := strEnv("TIMELAPSE_MIGRATIONS_DIR", "./migrations")
	if err := gormrepo.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	return gormrepo.NewPortalRepo(db), gormrepo.NewActionRepo(db), gormrepo.NewTxManager(db)
}

// buildFeedClientFromEnv builds the outbound feed client. A missing URL
// is not fatal at startup: /state and /replay don't need it, only
// /ingest does, so the process still starts and /ingest fails clearly
// instead of the whole server refusing to boot.
func buildFeedClientFromEnv() (ports.FeedClient, error) {
	url := strings.TrimSpace(os.Getenv("TIMELAPSE_FEED_URL"))
	if url == "" {
		log.Println("TIMELAPSE_FEED_URL not set, /ingest will fail until configured")
		return unconfiguredFeed{}, nil
	}

	basePayload := []byte(os.Getenv("TIMELAPSE_FEED_BASE_PAYLOAD"))
	timeout := time.Duration(intEnv("TIMELAPSE_FEED_TIMEOUT_SECONDS", 10)) * time.Second

	return feedhttp.New(url, basePayload, timeout)
}

type unconfiguredFeed struct{}

func (unconfiguredFeed) FetchHistory(context.Context, int64) (ports.FeedPage, error) {
	return ports.FeedPage{}, errUnconfiguredFeed
}

var errUnconfiguredFeed = errors.New("feed client not configured: set TIMELAPSE_FEED_URL")

func strEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationMsEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

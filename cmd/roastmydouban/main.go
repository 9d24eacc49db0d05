package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/cache"
	"github.com/mlorentedev/roastmydouban/internal/collection"
	"github.com/mlorentedev/roastmydouban/internal/config"
	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/douban"
	"github.com/mlorentedev/roastmydouban/internal/handler"
	"github.com/mlorentedev/roastmydouban/internal/middleware"
	"github.com/mlorentedev/roastmydouban/internal/quota"
	"github.com/mlorentedev/roastmydouban/internal/roast"
	"github.com/mlorentedev/roastmydouban/internal/router"
	"github.com/mlorentedev/roastmydouban/internal/server"
	"github.com/mlorentedev/roastmydouban/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	useMock := flag.Bool("mock", false, "use mock adapter instead of real LLM backends")
	port := flag.Int("port", 0, "override listen port")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}

	providers, defaults := buildProviders(cfg, *useMock)
	if defaults.Len() == 0 {
		log.Println("llm: no server-side credentials, callers must supply apiKeys")
	}

	// Cache and quota share one Redis. Without it the cache always misses
	// and the quota lets every request through.
	var (
		counter quota.Counter
		kv      cache.Store
		pinger  handler.Pinger
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := store.Open(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			log.Printf("redis: %v (continuing without cache and quota)", err)
		} else {
			defer rdb.Close()
			counter, kv, pinger = rdb, rdb, rdb
			log.Println("redis: connected")
		}
	} else {
		log.Println("redis: not configured (cache and quota disabled)")
	}

	guard := quota.New(counter, cfg.DailyLimit)
	loader := collection.NewService(&douban.Client{
		BaseURL: cfg.DoubanURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}, cache.New(kv))

	svc, err := roast.NewService(router.New(providers, defaults, nil))
	if err != nil {
		log.Fatalf("roast: %v", err)
	}

	h := server.SetupMux(server.Deps{
		Loader:     loader,
		Roaster:    svc,
		Quota:      guard,
		Providers:  providers,
		Defaults:   defaults,
		Store:      pinger,
		DailyLimit: guard.Limit(),
		Middleware: middleware.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			Timeout:        cfg.RequestTimeout,
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("roastmydouban api listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-done
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("server stopped")
}

// buildProviders registers every vendor so caller-supplied keys can enable it.
// Doubao is skipped without an endpoint id since the id is its model name.
func buildProviders(cfg config.Config, useMock bool) ([]adapter.Provider, credential.Set) {
	if useMock {
		log.Println("mode: mock adapter enabled")
		return []adapter.Provider{&adapter.MockAdapter{Delay: 500 * time.Millisecond}}, credential.Set{"mock": "dev"}
	}

	client := &http.Client{Timeout: 90 * time.Second}
	p := cfg.Providers

	providers := []adapter.Provider{
		adapter.NewGemini(client, p.GeminiModel),
		adapter.NewDeepSeek(client),
		adapter.NewQwen(client),
		adapter.NewZhipu(client),
		&adapter.ClaudeAdapter{Model: p.ClaudeModel, Client: client},
	}
	if p.DoubaoEndpointID != "" {
		providers = append(providers, adapter.NewDoubao(client, p.DoubaoEndpointID))
	}

	defaults := cfg.Credentials()
	for _, pr := range providers {
		if defaults.Has(pr.Name()) {
			log.Printf("llm: %s enabled (%s)", pr.Name(), pr.DisplayName())
		}
	}
	return providers, defaults
}

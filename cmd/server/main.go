package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tajirpos/internal/cache"
	"tajirpos/internal/cart"
	"tajirpos/internal/config"
	"tajirpos/internal/httpapi"
	"tajirpos/internal/insights"
	"tajirpos/internal/ledger"
	"tajirpos/internal/store"
	"tajirpos/internal/store/memory"
	pgstore "tajirpos/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var st store.Store
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		st = pg
		closers = append(closers, pg.Close)
		log.Println("store: postgres")
	} else {
		st = memory.NewSeeded()
		log.Println("store: in-memory")
	}

	cacheStore := cache.InsightsCache(cache.NoopInsightsCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisInsightsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("redis unavailable (%v), using noop cache", err)
		} else {
			cacheStore = redisCache
			closers = append(closers, redisCache.Close)
			log.Println("cache: redis")
		}
	} else {
		log.Println("cache: noop")
	}

	var advisor insights.Advisor
	if cfg.GeminiAPIKey != "" {
		advisor = insights.NewGeminiAdvisor(cfg.GeminiAPIKey, cfg.GeminiModel, "", cfg.InsightsTimeout)
		log.Println("insights: gemini")
	} else {
		log.Println("insights: disabled (no API key)")
	}

	bookkeeper := ledger.New(st)
	carts := cart.NewManager(bookkeeper)
	insightsSvc := insights.NewService(advisor, cacheStore, cfg.InsightsTTL)

	var auth *httpapi.AuthManager
	if cfg.AuthSecret != "" {
		auth = httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL, bookkeeper)
		log.Println("auth: enabled")
	} else {
		log.Println("auth: disabled (AUTH_SECRET not set)")
	}

	api := httpapi.New(bookkeeper, carts, insightsSvc, auth, cfg.AllowedOrigin, cfg.LowStockThreshold)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("POS backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close error: %v", err)
		}
	}

	log.Println("server stopped")
}

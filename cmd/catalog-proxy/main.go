// Command catalog-proxy exposes the catalog client as a small HTTP service
// with prometheus metrics.
package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/wb-catalog-client/pkg/cache"
	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
	"github.com/Sternrassler/wb-catalog-client/pkg/client"
	"github.com/Sternrassler/wb-catalog-client/pkg/logging"
)

type config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	SearchURL string `env:"SEARCH_URL"`
	DetailURL string `env:"DETAIL_URL"`
	CachePath string `env:"CACHE_PATH" envDefault:"product_cache.json"`
	RedisURL  string `env:"REDIS_URL"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.LogLevel)
	logCfg.Pretty = cfg.LogPretty
	logger := logging.Setup(logCfg)

	clientCfg := client.DefaultConfig()
	if cfg.SearchURL != "" {
		clientCfg.SearchURL = cfg.SearchURL
	}
	if cfg.DetailURL != "" {
		clientCfg.DetailURL = cfg.DetailURL
	}

	store := newStore(cfg, logger)

	catalogClient, err := client.New(clientCfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog client")
	}
	defer catalogClient.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/search", searchHandler(catalogClient))
	mux.HandleFunc("/products/", detailHandler(catalogClient))

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("Starting catalog proxy")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

// newStore picks the cache backend: redis when configured, otherwise the
// file store.
func newStore(cfg config, logger zerolog.Logger) cache.Store {
	if cfg.RedisURL == "" {
		return cache.NewFileStore(cfg.CachePath)
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	logger.Info().Str("redis", cfg.RedisURL).Msg("Using redis cache backend")
	return cache.NewRedisStore(redisClient)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// searchHandler translates query parameters into a catalog search.
// Mirrors the client contract: failures show up as an empty list.
func searchHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		query := q.Get("q")
		if query == "" {
			http.Error(w, "missing q parameter", http.StatusBadRequest)
			return
		}

		limit := intParam(q.Get("limit"), 10)
		opts := client.SearchOptions{
			MinPrice: intParam(q.Get("min_price"), 0),
			MaxPrice: intParam(q.Get("max_price"), 0),
			Discount: intParam(q.Get("discount"), 0),
			Category: q.Get("category"),
			Sort:     q.Get("sort"),
		}

		items := c.Search(r.Context(), query, limit, opts)
		if items == nil {
			items = []catalog.ProductSummary{}
		}
		writeJSON(w, items)
	}
}

// detailHandler serves /products/{id}.
func detailHandler(c *client.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		if id == "" || strings.Contains(id, "/") {
			http.Error(w, "missing product id", http.StatusBadRequest)
			return
		}

		detail := c.GetDetail(r.Context(), id)
		if detail == nil {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		writeJSON(w, detail)
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}

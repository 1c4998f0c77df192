package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"navigator/internal/auth"
	"navigator/internal/config"
	"navigator/internal/database"
	"navigator/internal/handlers"
	"navigator/internal/logging"
	"navigator/internal/middleware"
	"navigator/internal/providers"
	"navigator/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("[CONFIG] invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	issuer := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.AccessTokenTTL())
	authenticators := auth.Chain{auth.Local{Issuer: issuer}}

	driver := cfg.ResolvedStoreDriver()
	var users store.UserStore

	if driver == config.StoreFirestore || cfg.FirebaseCredentialsPath != "" || cfg.FirebaseProjectID != "" {
		firestoreClient, authClient, err := database.InitFirebase(ctx, database.FirebaseConfig{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("[DB] firebase initialization failed")
		}
		cleanup = append(cleanup, func() { _ = firestoreClient.Close() })
		authenticators = append(authenticators, auth.Firebase{Verifier: authClient})
		logging.Info().Msg("[AUTH] firebase ID tokens accepted")

		if driver == config.StoreFirestore {
			users = store.NewFirestoreStore(firestoreClient)
		}
	}

	switch driver {
	case config.StoreMongo:
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			logging.Fatal().Err(err).Msg("[DB] mongo connection failed")
		}
		cleanup = append(cleanup, func() { _ = client.Disconnect(context.Background()) })

		db := client.Database(cfg.DBName)
		logging.Info().Str("db", db.Name()).Msg("[DB] mongo connected")
		if err := database.EnsureUserIndexes(db); err != nil {
			logging.Warn().Err(err).Msg("[DB] user index warning")
		}
		users = store.NewMongoStore(db)
	case config.StoreMemory:
		logging.Warn().Msg("[DB] using in-memory store; data is lost on restart")
		users = store.NewMemoryStore()
	}
	instrumented := store.Instrument(driver, users)

	var cache providers.Cache = providers.NopCache{}
	if cfg.RedisURL != "" {
		redisCache, err := providers.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logging.Warn().Err(err).Msg("[CACHE] redis unavailable, provider responses will not be cached")
		} else {
			cleanup = append(cleanup, func() { _ = redisCache.Close() })
			cache = redisCache
		}
	}

	weather := providers.NewWeatherClient(providers.WeatherConfig{
		BaseURL:  cfg.WeatherAPIBaseURL,
		APIKey:   cfg.WeatherAPIKey,
		Timeout:  cfg.RequestTimeout(),
		CacheTTL: cfg.CacheTTL(),
		Cache:    cache,
	})
	directions := providers.NewDirectionsClient(providers.DirectionsConfig{
		BaseURL:  cfg.DirectionsAPIBaseURL,
		APIKey:   cfg.GoogleMapsAPIKey,
		Timeout:  cfg.RequestTimeout(),
		CacheTTL: cfg.RouteCacheTTL(),
		Cache:    cache,
	})

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartCleanup(time.Minute, ctx.Done())
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:          instrumented,
		StoreName:      instrumented.Backend(),
		Issuer:         issuer,
		Authenticator:  authenticators,
		Weather:        weather,
		Directions:     directions,
		RateLimiter:    limiter,
		TrustedProxies: cfg.TrustedProxies,
		MaxRecent:      cfg.MaxRecent,
		StoreTimeout:   cfg.RequestTimeout(),
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Str("store", driver).Msg("[HTTP] server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("[HTTP] server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("[HTTP] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[HTTP] graceful shutdown failed")
	}
}
